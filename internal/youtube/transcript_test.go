package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeCaptions struct {
	tracks       map[string][]Snippet
	languages    []string
	err          error
	failFor      map[string]error
	languagesErr error
	requested    []string
}

func (f *fakeCaptions) Fetch(_ context.Context, _, language string) ([]Snippet, error) {
	f.requested = append(f.requested, language)
	if f.err != nil {
		return nil, f.err
	}
	if err, ok := f.failFor[language]; ok {
		return nil, err
	}
	snippets, ok := f.tracks[language]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotFound, language)
	}
	return snippets, nil
}

func (f *fakeCaptions) Languages(_ context.Context, _ string) ([]string, error) {
	if f.languagesErr != nil {
		return nil, f.languagesErr
	}
	return f.languages, nil
}

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func TestTranscriptFetcherFetch(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		source        *fakeCaptions
		want          string
		wantErr       error
		wantRequested []string
	}{
		{
			name: "english",
			url:  testURL,
			source: &fakeCaptions{tracks: map[string][]Snippet{
				"en": {{Text: "Hello"}, {Text: "world."}},
			}},
			want:          "Hello world.",
			wantRequested: []string{"en"},
		},
		{
			name: "fallsBackToRegionalEnglish",
			url:  testURL,
			source: &fakeCaptions{tracks: map[string][]Snippet{
				"en-GB": {{Text: "Cheers"}},
			}},
			want:          "Cheers",
			wantRequested: []string{"en", "en-US", "en-GB"},
		},
		{
			name:    "invalidURL",
			url:     "https://example.com",
			source:  &fakeCaptions{},
			wantErr: ErrInvalidURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := NewTranscriptFetcher(tt.source, nil)
			got, err := fetcher.Fetch(context.Background(), tt.url)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fetch() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Fetch() = %q, want %q", got, tt.want)
			}
			if strings.Join(tt.source.requested, ",") != strings.Join(tt.wantRequested, ",") {
				t.Errorf("requested = %v, want %v", tt.source.requested, tt.wantRequested)
			}
		})
	}
}

func TestTranscriptFetcherNoEnglish(t *testing.T) {
	source := &fakeCaptions{languages: []string{"de", "fr"}}
	fetcher := NewTranscriptFetcher(source, nil)

	_, err := fetcher.Fetch(context.Background(), testURL)
	var noTranscript *NoTranscriptError
	if !errors.As(err, &noTranscript) {
		t.Fatalf("Fetch() error = %v, want *NoTranscriptError", err)
	}
	if len(source.requested) != len(DefaultLanguages) {
		t.Errorf("requested %d languages, want %d", len(source.requested), len(DefaultLanguages))
	}

	text := fetcher.Transcript(context.Background(), testURL)
	want := "Error: No English transcript found. Available languages: de, fr"
	if text != want {
		t.Errorf("Transcript() = %q, want %q", text, want)
	}
	if !IsTranscriptError(text) {
		t.Error("IsTranscriptError() = false, want true")
	}
}

func TestTranscriptSentinels(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		source *fakeCaptions
		want   string
	}{
		{
			name:   "invalidURL",
			url:    "not a url",
			source: &fakeCaptions{},
			want:   "Error: Invalid YouTube URL",
		},
		{
			name: "englishDownloadFailsRegionalSucceeds",
			url:  testURL,
			source: &fakeCaptions{
				failFor: map[string]error{"en": errors.New("download captions: unexpected status 404")},
				tracks:  map[string][]Snippet{"en-US": {{Text: "Hello world."}}},
			},
			want: "Hello world.",
		},
		{
			name: "everyLanguageFails",
			url:  testURL,
			source: &fakeCaptions{
				err:       errors.New("connection reset"),
				languages: []string{"ja"},
			},
			want: "Error: No English transcript found. Available languages: ja",
		},
		{
			name: "languageListingFails",
			url:  testURL,
			source: &fakeCaptions{
				err:          errors.New("connection reset"),
				languagesErr: errors.New("connection reset"),
			},
			want: "Error fetching transcript: list languages: connection reset",
		},
		{
			name: "success",
			url:  testURL,
			source: &fakeCaptions{tracks: map[string][]Snippet{
				"en": {{Text: "Hello world."}},
			}},
			want: "Hello world.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTranscriptFetcher(tt.source, nil).Transcript(context.Background(), tt.url)
			if got != tt.want {
				t.Errorf("Transcript() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsTranscriptError(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "invalid", in: "Error: Invalid YouTube URL", want: true},
		{name: "fetch", in: "Error fetching transcript: boom", want: true},
		{name: "text", in: "Errors were made, as they say", want: false},
		{name: "empty", in: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTranscriptError(tt.in); got != tt.want {
				t.Errorf("IsTranscriptError(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
