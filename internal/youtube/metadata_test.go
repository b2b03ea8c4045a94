package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jetski/pkg/httputil"
)

const watchPage = `<html><head><title>Never Gonna Give You Up - YouTube</title></head>
<body><script>var ytInitialPlayerResponse = {"videoDetails":{"lengthSeconds":"213","author":"Rick Astley"}};</script></body></html>`

func TestMetadataFetcherFetch(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		status      int
		body        string
		wantTitle   string
		wantChannel string
		wantSeconds int
		wantError   bool
	}{
		{
			name:        "fullPage",
			input:       "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			status:      http.StatusOK,
			body:        watchPage,
			wantTitle:   "Never Gonna Give You Up",
			wantChannel: "Rick Astley",
			wantSeconds: 213,
		},
		{
			name:        "bareID",
			input:       "dQw4w9WgXcQ",
			status:      http.StatusOK,
			body:        watchPage,
			wantTitle:   "Never Gonna Give You Up",
			wantChannel: "Rick Astley",
			wantSeconds: 213,
		},
		{
			name:        "missingMarkers",
			input:       "https://youtu.be/dQw4w9WgXcQ",
			status:      http.StatusOK,
			body:        "<html><head></head><body></body></html>",
			wantTitle:   "Video dQw4w9WgXcQ",
			wantChannel: "Unknown Channel",
		},
		{
			name:        "serverError",
			input:       "https://youtu.be/dQw4w9WgXcQ",
			status:      http.StatusInternalServerError,
			wantTitle:   "YouTube Video dQw4w9WgXcQ",
			wantChannel: "Unknown",
			wantError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/watch" || r.URL.Query().Get("v") != "dQw4w9WgXcQ" {
					t.Errorf("unexpected request %s", r.URL)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			fetcher := NewMetadataFetcher(httputil.NewClient(server.Client(), time.Second), server.URL)
			meta := fetcher.Fetch(context.Background(), tt.input)

			if meta.ID != "dQw4w9WgXcQ" {
				t.Errorf("ID = %q", meta.ID)
			}
			if meta.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", meta.Title, tt.wantTitle)
			}
			if meta.Channel != tt.wantChannel {
				t.Errorf("Channel = %q, want %q", meta.Channel, tt.wantChannel)
			}
			if meta.ThumbnailURL != "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg" {
				t.Errorf("ThumbnailURL = %q", meta.ThumbnailURL)
			}
			if tt.wantSeconds == 0 && meta.DurationSeconds != nil {
				t.Errorf("DurationSeconds = %d, want nil", *meta.DurationSeconds)
			}
			if tt.wantSeconds != 0 && (meta.DurationSeconds == nil || *meta.DurationSeconds != tt.wantSeconds) {
				t.Errorf("DurationSeconds = %v, want %d", meta.DurationSeconds, tt.wantSeconds)
			}
			if (meta.Error != "") != tt.wantError {
				t.Errorf("Error = %q, wantError %v", meta.Error, tt.wantError)
			}
		})
	}
}

func TestMetadataFetcherInvalidURL(t *testing.T) {
	fetcher := NewMetadataFetcher(httputil.NewClient(nil, time.Second), "http://127.0.0.1:1")
	meta := fetcher.Fetch(context.Background(), "https://example.com")

	if meta.Error != "Invalid YouTube URL" {
		t.Errorf("Error = %q, want Invalid YouTube URL", meta.Error)
	}
	if meta.Title != "Unknown Video" {
		t.Errorf("Title = %q, want Unknown Video", meta.Title)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    string
	}{
		{name: "underMinute", seconds: 42, want: "0:42"},
		{name: "minutes", seconds: 213, want: "3:33"},
		{name: "hours", seconds: 3725, want: "1:02:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}
