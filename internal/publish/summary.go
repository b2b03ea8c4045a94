package publish

import (
	"fmt"
	"strings"

	"jetski/internal/comic"
)

// Input carries everything the summary document is rendered from.
type Input struct {
	Video      comic.VideoRecord
	Analysis   *comic.ViralAnalysis
	Storyboard *comic.Storyboard
	Images     *comic.GenerationResult
}

// RenderSummary builds the markdown body of the summary document.
// Output depends only on the input.
func RenderSummary(in Input) string {
	var b strings.Builder

	title := in.Video.Title
	if in.Storyboard != nil && in.Storyboard.Title != "" {
		title = in.Storyboard.Title
	}
	fmt.Fprintf(&b, "# JetSki Comic: %s\n\n", title)

	b.WriteString("## Source Video\n\n")
	fmt.Fprintf(&b, "- Title: %s\n", in.Video.Title)
	if in.Video.Channel != "" {
		fmt.Fprintf(&b, "- Channel: %s\n", in.Video.Channel)
	}
	fmt.Fprintf(&b, "- URL: %s\n\n", in.Video.URL)

	if in.Analysis != nil {
		writeSegments(&b, in.Analysis)
	}
	if in.Storyboard != nil {
		writeStoryboard(&b, in.Storyboard)
		writeStrategy(&b, in.Analysis, in.Storyboard)
	}
	writeImages(&b, in.Images)

	return b.String()
}

func writeSegments(b *strings.Builder, a *comic.ViralAnalysis) {
	b.WriteString("## Viral Moments\n\n")
	for _, s := range a.Segments {
		marker := ""
		if s.Rank == a.Selected.Rank {
			marker = " [SELECTED]"
		}
		fmt.Fprintf(b, "%d. %s%s\n", s.Rank, s.Hook, marker)
		fmt.Fprintf(b, "   - Score: %d/100 (%s)\n", s.Score, s.ViralType)
		fmt.Fprintf(b, "   - Time: %s - %s\n", s.StartTime, s.EndTime)
		if s.Summary != "" {
			fmt.Fprintf(b, "   - Summary: %s\n", s.Summary)
		}
		if s.TranscriptExcerpt != "" {
			fmt.Fprintf(b, "   - Quote: \"%s\"\n", s.TranscriptExcerpt)
		}
	}
	if a.Selected.Reason != "" {
		fmt.Fprintf(b, "\nWhy #%d: %s\n", a.Selected.Rank, a.Selected.Reason)
	}
	b.WriteString("\n")
}

func writeStoryboard(b *strings.Builder, s *comic.Storyboard) {
	b.WriteString("## Storyboard\n\n")
	fmt.Fprintf(b, "- Style: %s\n", s.Style)
	if s.Tone != "" {
		fmt.Fprintf(b, "- Tone: %s\n", s.Tone)
	}
	if s.NarrativeArc != "" {
		fmt.Fprintf(b, "- Narrative arc: %s\n", s.NarrativeArc)
	}
	b.WriteString("\n")

	for _, p := range s.Panels {
		fmt.Fprintf(b, "### Panel %d\n\n", p.PanelNumber)
		fmt.Fprintf(b, "- Scene: %s\n", p.SceneDescription)
		if p.CharacterDetails != "" {
			fmt.Fprintf(b, "- Characters: %s\n", p.CharacterDetails)
		}
		fmt.Fprintf(b, "- Action: %s\n", p.Action)
		fmt.Fprintf(b, "- Caption: \"%s\"\n\n", p.Caption)
	}

	b.WriteString("## Suggested Captions\n\n")
	for _, p := range s.Panels {
		fmt.Fprintf(b, "%d. %s\n", p.PanelNumber, p.Caption)
	}
	b.WriteString("\n")

	if len(s.Hashtags) > 0 {
		b.WriteString("## Hashtags\n\n")
		b.WriteString(strings.Join(s.Hashtags, " "))
		b.WriteString("\n\n")
	}
}

func writeStrategy(b *strings.Builder, a *comic.ViralAnalysis, s *comic.Storyboard) {
	b.WriteString("## Posting Strategy\n\n")
	if s.PostingTip != "" {
		fmt.Fprintf(b, "- %s\n", s.PostingTip)
	}
	fmt.Fprintf(b, "- Post all %d panels as a single carousel, in order.\n", len(s.Panels))
	if a != nil {
		if selected, ok := a.SelectedSegment(); ok && selected.Hook != "" {
			fmt.Fprintf(b, "- Open the post with the hook: \"%s\"\n", selected.Hook)
		}
	}
	b.WriteString("- Credit the source video in the first comment.\n\n")
}

func writeImages(b *strings.Builder, images *comic.GenerationResult) {
	b.WriteString("## Images\n\n")
	if images == nil {
		b.WriteString("Images were not generated for this run.\n")
		return
	}

	fmt.Fprintf(b, "Generated %d of %d panels.\n", images.SuccessCount, images.TotalPanels)
	for _, p := range images.GeneratedPanels {
		if p.Error != "" {
			fmt.Fprintf(b, "- Panel %d failed: %s\n", p.PanelNumber, p.Error)
		}
	}
}
