package storyboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"jetski/internal/comic"
	"jetski/internal/llm"
	"jetski/pkg/prompts"
)

var storyboardSchema = llm.GenerateSchema[comic.Storyboard]()

type Options struct {
	Temperature  float64
	DefaultStyle string
}

type Generator struct {
	llm     llm.Client
	prompts *prompts.Prompts
	opts    Options
}

func NewGenerator(client llm.Client, p *prompts.Prompts, opts Options) *Generator {
	return &Generator{
		llm:     client,
		prompts: p,
		opts:    opts,
	}
}

// Generate turns one viral segment into a validated six-panel storyboard.
func (g *Generator) Generate(ctx context.Context, segment comic.ViralSegment) (*comic.Storyboard, error) {
	prompt, err := g.prompts.RenderStoryboard(prompts.StoryboardParams{
		Hook:         segment.Hook,
		Summary:      segment.Summary,
		Excerpt:      segment.TranscriptExcerpt,
		ViralType:    segment.ViralType,
		StartTime:    segment.StartTime,
		EndTime:      segment.EndTime,
		DefaultStyle: g.opts.DefaultStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := g.llm.Complete(ctx, llm.Request{
		System:            g.prompts.System.Storyboard,
		User:              prompt,
		Temperature:       g.opts.Temperature,
		SchemaName:        "storyboard",
		SchemaDescription: "A six-panel comic storyboard",
		Schema:            storyboardSchema,
	})
	if err != nil {
		return nil, err
	}

	var board comic.Storyboard
	if err := llm.DecodeJSON(content, &board); err != nil {
		return nil, err
	}
	if err := comic.ValidateStoryboard(&board); err != nil {
		return nil, err
	}
	if strings.TrimSpace(board.Style) == "" {
		board.Style = g.opts.DefaultStyle
	}

	slog.Debug("Generated storyboard", "title", board.Title, "panels", len(board.Panels))
	return &board, nil
}
