package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var ErrInvalidURL = errors.New("Invalid YouTube URL")

var DefaultLanguages = []string{"en", "en-US", "en-GB", "en-CA"}

const (
	errorPrefix      = "Error: "
	fetchErrorPrefix = "Error fetching transcript: "
)

type NoTranscriptError struct {
	Available []string
}

func (e *NoTranscriptError) Error() string {
	return fmt.Sprintf("No English transcript found. Available languages: %s", strings.Join(e.Available, ", "))
}

type TranscriptFetcher struct {
	source    CaptionSource
	languages []string
}

func NewTranscriptFetcher(source CaptionSource, languages []string) *TranscriptFetcher {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	return &TranscriptFetcher{
		source:    source,
		languages: languages,
	}
}

// Fetch returns the transcript as space-joined caption text, trying each
// preferred language once in order. Only a failure to list the available
// languages after every preference failed is returned as a fetch error.
func (f *TranscriptFetcher) Fetch(ctx context.Context, url string) (string, error) {
	id, ok := ExtractVideoID(url)
	if !ok {
		return "", ErrInvalidURL
	}
	ctx = withTrackCache(ctx)

	for _, language := range f.languages {
		snippets, err := f.source.Fetch(ctx, id, language)
		if errors.Is(err, ErrLanguageNotFound) {
			slog.Debug("No captions for language", "video_id", id, "language", language)
			continue
		}
		if err != nil {
			slog.Debug("Caption fetch failed, trying next language", "video_id", id, "language", language, "error", err)
			continue
		}

		texts := make([]string, len(snippets))
		for i, snippet := range snippets {
			texts[i] = snippet.Text
		}
		slog.Debug("Fetched transcript", "video_id", id, "language", language, "snippets", len(snippets))
		return strings.Join(texts, " "), nil
	}

	available, err := f.source.Languages(ctx, id)
	if err != nil {
		return "", fmt.Errorf("list languages: %w", err)
	}
	return "", &NoTranscriptError{Available: available}
}

// Transcript is Fetch with failures reported as an "Error..." string.
// Callers inspect the result with IsTranscriptError.
func (f *TranscriptFetcher) Transcript(ctx context.Context, url string) string {
	text, err := f.Fetch(ctx, url)
	if err == nil {
		return text
	}

	var noTranscript *NoTranscriptError
	switch {
	case errors.Is(err, ErrInvalidURL):
		return errorPrefix + err.Error()
	case errors.As(err, &noTranscript):
		return errorPrefix + noTranscript.Error()
	default:
		return fetchErrorPrefix + err.Error()
	}
}

func IsTranscriptError(s string) bool {
	return strings.HasPrefix(s, errorPrefix) || strings.HasPrefix(s, fetchErrorPrefix)
}
