package youtube

import (
	"fmt"
	"regexp"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11}).*`),
	regexp.MustCompile(`(?:embed/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:watch\?v=)([0-9A-Za-z_-]{11})`),
}

var bareIDPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// ExtractVideoID returns the first 11-character video token found in url.
func ExtractVideoID(url string) (string, bool) {
	for _, pattern := range videoIDPatterns {
		if match := pattern.FindStringSubmatch(url); match != nil {
			return match[1], true
		}
	}
	return "", false
}

// resolveID accepts either a URL or a bare identifier.
func resolveID(urlOrID string) (string, bool) {
	if bareIDPattern.MatchString(urlOrID) {
		return urlOrID, true
	}
	return ExtractVideoID(urlOrID)
}

func WatchURL(id string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)
}

func ThumbnailURL(id string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", id)
}
