package highlight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"jetski/internal/comic"
	"jetski/internal/llm"
	"jetski/pkg/prompts"
)

type fakeLLM struct {
	content string
	err     error
	got     llm.Request
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.got = req
	return f.content, f.err
}

const analysisJSON = `{
  "segments": [
    {"rank": 2, "score": 88, "start_time": "01:00", "end_time": "01:20", "viral_type": "funny", "hook": "second", "summary": "s2", "transcript_excerpt": "e2"},
    {"rank": 1, "score": 95, "start_time": "00:10", "end_time": "00:30", "viral_type": "surprising", "hook": "first", "summary": "s1", "transcript_excerpt": "e1"},
    {"rank": 3, "score": 70, "start_time": "02:00", "end_time": "02:15", "viral_type": "quotable", "hook": "third", "summary": "s3", "transcript_excerpt": "e3"}
  ],
  "selected": {"rank": 2, "reason": "most visual"}
}`

func testPrompts(t *testing.T) *prompts.Prompts {
	t.Helper()
	p, err := prompts.Default()
	if err != nil {
		t.Fatalf("prompts.Default() error = %v", err)
	}
	return p
}

func TestRank(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		llmErr      error
		wantErr     bool
		wantInvalid bool
	}{
		{
			name:    "validAnalysis",
			content: analysisJSON,
		},
		{
			name:    "notJSON",
			content: "Here are three moments...",
			wantErr: true,
		},
		{
			name:        "twoSegments",
			content:     `{"segments":[{"rank":1,"score":9,"hook":"a"},{"rank":2,"score":8,"hook":"b"}],"selected":{"rank":1}}`,
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:        "selectedOutOfSet",
			content:     strings.Replace(analysisJSON, `"selected": {"rank": 2`, `"selected": {"rank": 7`, 1),
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:    "llmFailure",
			llmErr:  errors.New("generate: unauthorized"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeLLM{content: tt.content, err: tt.llmErr}
			ranker := NewRanker(client, testPrompts(t), Options{Temperature: 0.7})

			got, err := ranker.Rank(context.Background(), "Hello world.")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Rank() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantInvalid && !errors.Is(err, comic.ErrInvalidAnalysis) {
				t.Errorf("Rank() error = %v, want ErrInvalidAnalysis", err)
			}
			if err != nil {
				return
			}

			if got.Selected.Rank != 2 {
				t.Errorf("Selected.Rank = %d, want 2", got.Selected.Rank)
			}
			for i, segment := range got.Segments {
				if segment.Rank != i+1 {
					t.Errorf("Segments[%d].Rank = %d, want %d", i, segment.Rank, i+1)
				}
			}
			if client.got.Schema == nil || client.got.SchemaName != "viral_analysis" {
				t.Error("request should carry the analysis schema")
			}
			if client.got.Temperature != 0.7 {
				t.Errorf("Temperature = %v, want 0.7", client.got.Temperature)
			}
		})
	}
}

func TestRankTruncatesTranscript(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		wantFull bool
	}{
		{name: "fullText", limit: 0, wantFull: true},
		{name: "truncated", limit: 10, wantFull: false},
	}

	transcript := strings.Repeat("word ", 100) + "TAIL"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeLLM{content: analysisJSON}
			ranker := NewRanker(client, testPrompts(t), Options{MaxTranscriptChars: tt.limit})

			if _, err := ranker.Rank(context.Background(), transcript); err != nil {
				t.Fatalf("Rank() error = %v", err)
			}
			if got := strings.Contains(client.got.User, "TAIL"); got != tt.wantFull {
				t.Errorf("prompt contains tail = %v, want %v", got, tt.wantFull)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo", 2); got != "hé" {
		t.Errorf("truncate() = %q, want hé", got)
	}
	if got := truncate("short", 100); got != "short" {
		t.Errorf("truncate() = %q, want short", got)
	}
}
