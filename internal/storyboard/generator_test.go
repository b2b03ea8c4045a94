package storyboard

import (
	"context"
	"errors"
	"fmt"
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

func storyboardJSON(order []int, style string) string {
	panels := make([]string, len(order))
	for i, n := range order {
		panels[i] = fmt.Sprintf(`{"panel_number":%d,"scene_description":"scene %d","character_details":"hero","action":"acts","caption":"caption %d","visual_style":"bright","composition":"wide shot"}`, n, n, n)
	}
	return fmt.Sprintf(`{"title":"The Moment","style":%q,"tone":"inspiring","panels":[%s],"narrative_arc":"rise","hashtags":["#comic"],"posting_tip":"post at noon"}`,
		style, strings.Join(panels, ","))
}

var segment = comic.ViralSegment{
	Rank:              1,
	Score:             90,
	StartTime:         "00:10",
	EndTime:           "00:30",
	ViralType:         "surprising",
	Hook:              "Nobody expected this",
	Summary:           "A surprising reveal",
	TranscriptExcerpt: "and then it happened",
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		llmErr      error
		wantErr     bool
		wantInvalid bool
		wantStyle   string
	}{
		{
			name:      "orderedPanels",
			content:   storyboardJSON([]int{1, 2, 3, 4, 5, 6}, "noir"),
			wantStyle: "noir",
		},
		{
			name:      "shuffledPanelsAreSorted",
			content:   storyboardJSON([]int{3, 1, 6, 2, 5, 4}, "noir"),
			wantStyle: "noir",
		},
		{
			name:      "missingStyleUsesDefault",
			content:   storyboardJSON([]int{1, 2, 3, 4, 5, 6}, ""),
			wantStyle: "default style",
		},
		{
			name:        "fivePanels",
			content:     storyboardJSON([]int{1, 2, 3, 4, 5}, "noir"),
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:        "duplicatePanel",
			content:     storyboardJSON([]int{1, 2, 3, 4, 5, 5}, "noir"),
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:    "notJSON",
			content: "Panel 1: ...",
			wantErr: true,
		},
		{
			name:    "llmFailure",
			llmErr:  errors.New("generate: timeout"),
			wantErr: true,
		},
	}

	p, err := prompts.Default()
	if err != nil {
		t.Fatalf("prompts.Default() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeLLM{content: tt.content, err: tt.llmErr}
			generator := NewGenerator(client, p, Options{Temperature: 0.8, DefaultStyle: "default style"})

			board, err := generator.Generate(context.Background(), segment)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Generate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantInvalid && !errors.Is(err, comic.ErrInvalidStoryboard) {
				t.Errorf("Generate() error = %v, want ErrInvalidStoryboard", err)
			}
			if err != nil {
				return
			}

			if len(board.Panels) != comic.PanelCount {
				t.Fatalf("len(Panels) = %d, want %d", len(board.Panels), comic.PanelCount)
			}
			for i, panel := range board.Panels {
				if panel.PanelNumber != i+1 {
					t.Errorf("Panels[%d].PanelNumber = %d, want %d", i, panel.PanelNumber, i+1)
				}
			}
			if board.Style != tt.wantStyle {
				t.Errorf("Style = %q, want %q", board.Style, tt.wantStyle)
			}
			if board.Tone != "inspiring" {
				t.Errorf("Tone = %q, want inspiring", board.Tone)
			}
			if !strings.Contains(client.got.User, "Nobody expected this") {
				t.Error("prompt should include the segment hook")
			}
		})
	}
}
