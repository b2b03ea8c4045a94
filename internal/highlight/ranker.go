package highlight

import (
	"context"
	"fmt"
	"log/slog"

	"jetski/internal/comic"
	"jetski/internal/llm"
	"jetski/pkg/prompts"
)

var analysisSchema = llm.GenerateSchema[comic.ViralAnalysis]()

type Options struct {
	// MaxTranscriptChars truncates the transcript; 0 sends it whole.
	MaxTranscriptChars int
	Temperature        float64
}

type Ranker struct {
	llm     llm.Client
	prompts *prompts.Prompts
	opts    Options
}

func NewRanker(client llm.Client, p *prompts.Prompts, opts Options) *Ranker {
	return &Ranker{
		llm:     client,
		prompts: p,
		opts:    opts,
	}
}

// Rank asks the model for three viral moments and validates the answer.
func (r *Ranker) Rank(ctx context.Context, transcript string) (*comic.ViralAnalysis, error) {
	text := truncate(transcript, r.opts.MaxTranscriptChars)

	prompt, err := r.prompts.RenderViral(prompts.ViralParams{Transcript: text})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := r.llm.Complete(ctx, llm.Request{
		System:            r.prompts.System.Viral,
		User:              prompt,
		Temperature:       r.opts.Temperature,
		SchemaName:        "viral_analysis",
		SchemaDescription: "Three ranked viral moments and the one selected for a comic",
		Schema:            analysisSchema,
	})
	if err != nil {
		return nil, err
	}

	var analysis comic.ViralAnalysis
	if err := llm.DecodeJSON(content, &analysis); err != nil {
		return nil, err
	}
	if err := comic.ValidateAnalysis(&analysis); err != nil {
		return nil, err
	}

	slog.Debug("Ranked viral moments", "selected", analysis.Selected.Rank, "transcript_chars", len(text))
	return &analysis, nil
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
