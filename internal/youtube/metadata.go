package youtube

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jetski/internal/comic"
	"jetski/pkg/httputil"
)

const (
	defaultBaseURL = "https://www.youtube.com"
	titleSuffix    = " - YouTube"
)

var (
	lengthSecondsPattern = regexp.MustCompile(`"lengthSeconds":"(\d+)"`)
	authorPattern        = regexp.MustCompile(`"author":"(.+?)"`)
)

type Metadata struct {
	ID                string `json:"video_id"`
	URL               string `json:"url"`
	Title             string `json:"title"`
	DurationSeconds   *int   `json:"duration_seconds"`
	DurationFormatted string `json:"duration_formatted,omitempty"`
	Channel           string `json:"channel"`
	ThumbnailURL      string `json:"thumbnail_url"`
	Error             string `json:"error,omitempty"`
}

// Record converts the metadata into a persistable video record.
func (m Metadata) Record(url, transcript string) comic.VideoRecord {
	return comic.VideoRecord{
		URL:             url,
		ID:              m.ID,
		Title:           m.Title,
		DurationSeconds: m.DurationSeconds,
		Channel:         m.Channel,
		ThumbnailURL:    m.ThumbnailURL,
		Transcript:      transcript,
	}
}

type MetadataFetcher struct {
	http    *httputil.Client
	baseURL string
}

func NewMetadataFetcher(client *httputil.Client, baseURL string) *MetadataFetcher {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &MetadataFetcher{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Fetch scrapes the watch page. It never fails: problems are reported
// through placeholder fields and Metadata.Error.
func (f *MetadataFetcher) Fetch(ctx context.Context, urlOrID string) Metadata {
	id, ok := resolveID(urlOrID)
	if !ok {
		return Metadata{
			URL:     urlOrID,
			Title:   "Unknown Video",
			Channel: "Unknown Channel",
			Error:   "Invalid YouTube URL",
		}
	}

	meta := Metadata{
		ID:           id,
		URL:          WatchURL(id),
		ThumbnailURL: ThumbnailURL(id),
	}

	page, err := f.http.Get(ctx, fmt.Sprintf("%s/watch?v=%s", f.baseURL, id))
	if err != nil {
		slog.Warn("Failed to fetch video page", "video_id", id, "error", err)
		meta.Title = fmt.Sprintf("YouTube Video %s", id)
		meta.Channel = "Unknown"
		meta.Error = err.Error()
		return meta
	}

	meta.Title = parseTitle(page)
	if meta.Title == "" {
		meta.Title = fmt.Sprintf("Video %s", id)
	}

	meta.Channel = "Unknown Channel"
	if match := authorPattern.FindSubmatch(page); match != nil {
		meta.Channel = string(match[1])
	}

	if match := lengthSecondsPattern.FindSubmatch(page); match != nil {
		if seconds, err := strconv.Atoi(string(match[1])); err == nil {
			meta.DurationSeconds = &seconds
			meta.DurationFormatted = FormatDuration(seconds)
		}
	}

	return meta
}

func parseTitle(page []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	title = strings.TrimSuffix(title, titleSuffix)
	if title == "YouTube" {
		return ""
	}
	return strings.TrimSpace(title)
}

// FormatDuration renders seconds as H:MM:SS, or M:SS under an hour.
func FormatDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
