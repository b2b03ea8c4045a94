package imagegen

import (
	"context"
	"encoding/base64"
	"log/slog"

	"jetski/internal/comic"
	"jetski/pkg/prompts"
)

const defaultComposition = "wide shot"

type Options struct {
	// Concurrency bounds in-flight image calls; 1 renders panels one by one.
	Concurrency  int
	DefaultStyle string
}

type Renderer struct {
	generator Generator
	prompts   *prompts.Prompts
	opts      Options
}

func NewRenderer(generator Generator, p *prompts.Prompts, opts Options) *Renderer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Renderer{
		generator: generator,
		prompts:   p,
		opts:      opts,
	}
}

// Render produces one GeneratedPanel per storyboard panel, in panel order.
// Per-panel failures are recorded on the panel and never fail the batch.
func (r *Renderer) Render(ctx context.Context, board comic.Storyboard) comic.GenerationResult {
	style := board.Style
	if style == "" {
		style = r.opts.DefaultStyle
	}

	var reference string
	if len(board.Panels) > 0 {
		reference = board.Panels[0].CharacterDetails
	}

	slog.Info("Generating comic panels", "title", board.Title, "style", style, "concurrency", r.opts.Concurrency)

	panels := make([]comic.GeneratedPanel, len(board.Panels))
	if r.opts.Concurrency == 1 {
		for i, panel := range board.Panels {
			panels[i] = r.renderPanel(ctx, panel, style, reference, len(board.Panels))
		}
	} else {
		r.renderParallel(ctx, board.Panels, panels, style, reference)
	}

	result := comic.GenerationResult{
		Title:           board.Title,
		Style:           style,
		TotalPanels:     len(board.Panels),
		GeneratedPanels: panels,
		SuccessCount:    comic.CountSuccesses(panels),
	}

	slog.Info("Generated panels", "success", result.SuccessCount, "total", result.TotalPanels)
	return result
}

func (r *Renderer) renderParallel(ctx context.Context, source []comic.StoryboardPanel, out []comic.GeneratedPanel, style, reference string) {
	type result struct {
		index int
		panel comic.GeneratedPanel
	}

	results := make(chan result, len(source))
	semaphore := make(chan struct{}, r.opts.Concurrency)

	for i, panel := range source {
		go func(index int, p comic.StoryboardPanel) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results <- result{index: index, panel: r.renderPanel(ctx, p, style, reference, len(source))}
		}(i, panel)
	}

	for range source {
		res := <-results
		out[res.index] = res.panel
	}
}

func (r *Renderer) renderPanel(ctx context.Context, panel comic.StoryboardPanel, style, reference string, total int) comic.GeneratedPanel {
	generated := comic.GeneratedPanel{
		PanelNumber: panel.PanelNumber,
		Caption:     panel.Caption,
	}

	characters := panel.CharacterDetails
	if characters == "" {
		characters = reference
	}
	composition := panel.Composition
	if composition == "" {
		composition = defaultComposition
	}

	prompt, err := r.prompts.RenderPanel(prompts.PanelParams{
		Style:              style,
		Composition:        composition,
		Scene:              panel.SceneDescription,
		Characters:         characters,
		Action:             panel.Action,
		VisualStyle:        panel.VisualStyle,
		CharacterReference: reference,
		Caption:            panel.Caption,
		PanelNumber:        panel.PanelNumber,
		TotalPanels:        total,
	})
	if err != nil {
		generated.Error = err.Error()
		return generated
	}

	slog.Debug("Generating panel", "panel", panel.PanelNumber, "total", total)
	image, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("Panel generation failed", "panel", panel.PanelNumber, "error", err)
		generated.Error = err.Error()
		return generated
	}

	generated.ImageBase64 = base64.StdEncoding.EncodeToString(image.Data)
	generated.MIMEType = image.MIMEType
	generated.PromptUsed = prompt
	return generated
}
