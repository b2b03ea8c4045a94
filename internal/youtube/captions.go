package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"jetski/pkg/httputil"
)

var ErrLanguageNotFound = errors.New("no captions for language")

const captionTracksMarker = `"captionTracks":`

type Snippet struct {
	Text     string
	Start    float64
	Duration float64
}

// CaptionSource retrieves caption tracks for a video.
type CaptionSource interface {
	Fetch(ctx context.Context, videoID, language string) ([]Snippet, error)
	Languages(ctx context.Context, videoID string) ([]string, error)
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type timedTextResponse struct {
	Events []struct {
		StartMs    float64 `json:"tStartMs"`
		DurationMs float64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// WatchPageCaptions reads the caption track list embedded in the watch
// page player response and downloads tracks in json3 format.
type WatchPageCaptions struct {
	http    *httputil.Client
	baseURL string
}

var _ CaptionSource = (*WatchPageCaptions)(nil)

func NewWatchPageCaptions(client *httputil.Client, baseURL string) *WatchPageCaptions {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &WatchPageCaptions{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *WatchPageCaptions) Fetch(ctx context.Context, videoID, language string) ([]Snippet, error) {
	tracks, err := c.tracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track, ok := pickTrack(tracks, language)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotFound, language)
	}

	body, err := c.http.Get(ctx, withJSON3(track.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("download captions: %w", err)
	}

	var timed timedTextResponse
	if err := json.Unmarshal(body, &timed); err != nil {
		return nil, fmt.Errorf("parse captions: %w", err)
	}

	snippets := make([]Snippet, 0, len(timed.Events))
	for _, event := range timed.Events {
		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}
		clean := strings.TrimSpace(strings.ReplaceAll(text.String(), "\n", " "))
		if clean == "" {
			continue
		}
		snippets = append(snippets, Snippet{
			Text:     clean,
			Start:    event.StartMs / 1000,
			Duration: event.DurationMs / 1000,
		})
	}
	return snippets, nil
}

func (c *WatchPageCaptions) Languages(ctx context.Context, videoID string) ([]string, error) {
	tracks, err := c.tracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(tracks))
	var languages []string
	for _, track := range tracks {
		if seen[track.LanguageCode] {
			continue
		}
		seen[track.LanguageCode] = true
		languages = append(languages, track.LanguageCode)
	}
	return languages, nil
}

type trackCacheKey struct{}

// trackCache holds parsed track lists per video id for one transcript fetch.
type trackCache struct {
	mu     sync.Mutex
	tracks map[string][]captionTrack
}

func withTrackCache(ctx context.Context) context.Context {
	if _, ok := ctx.Value(trackCacheKey{}).(*trackCache); ok {
		return ctx
	}
	return context.WithValue(ctx, trackCacheKey{}, &trackCache{tracks: make(map[string][]captionTrack)})
}

func (c *WatchPageCaptions) tracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	cache, _ := ctx.Value(trackCacheKey{}).(*trackCache)
	if cache != nil {
		cache.mu.Lock()
		defer cache.mu.Unlock()
		if tracks, ok := cache.tracks[videoID]; ok {
			return tracks, nil
		}
	}

	page, err := c.http.Get(ctx, fmt.Sprintf("%s/watch?v=%s", c.baseURL, videoID))
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}
	tracks, err := parseCaptionTracks(string(page))
	if err != nil {
		return nil, err
	}

	if cache != nil {
		cache.tracks[videoID] = tracks
	}
	return tracks, nil
}

func parseCaptionTracks(page string) ([]captionTrack, error) {
	idx := strings.Index(page, captionTracksMarker)
	if idx < 0 {
		return nil, nil
	}

	var tracks []captionTrack
	decoder := json.NewDecoder(strings.NewReader(page[idx+len(captionTracksMarker):]))
	if err := decoder.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("parse caption tracks: %w", err)
	}
	return tracks, nil
}

// pickTrack prefers a manually created track over an auto-generated one.
func pickTrack(tracks []captionTrack, language string) (captionTrack, bool) {
	var generated *captionTrack
	for i := range tracks {
		if tracks[i].LanguageCode != language {
			continue
		}
		if tracks[i].Kind != "asr" {
			return tracks[i], true
		}
		if generated == nil {
			generated = &tracks[i]
		}
	}
	if generated != nil {
		return *generated, true
	}
	return captionTrack{}, false
}

func withJSON3(baseURL string) string {
	if strings.Contains(baseURL, "fmt=") {
		return baseURL
	}
	if strings.Contains(baseURL, "?") {
		return baseURL + "&fmt=json3"
	}
	return baseURL + "?fmt=json3"
}
