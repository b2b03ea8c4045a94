package comic

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidAnalysis   = errors.New("invalid viral analysis")
	ErrInvalidStoryboard = errors.New("invalid storyboard")
)

// ValidateAnalysis checks model output against the three-segment contract
// and sorts the segments by rank.
func ValidateAnalysis(a *ViralAnalysis) error {
	if a == nil {
		return fmt.Errorf("%w: empty", ErrInvalidAnalysis)
	}
	if len(a.Segments) != SegmentCount {
		return fmt.Errorf("%w: got %d segments, want %d", ErrInvalidAnalysis, len(a.Segments), SegmentCount)
	}

	seen := make(map[int]bool, SegmentCount)
	for _, segment := range a.Segments {
		if segment.Rank < 1 || segment.Rank > SegmentCount {
			return fmt.Errorf("%w: rank %d out of range", ErrInvalidAnalysis, segment.Rank)
		}
		if seen[segment.Rank] {
			return fmt.Errorf("%w: duplicate rank %d", ErrInvalidAnalysis, segment.Rank)
		}
		seen[segment.Rank] = true

		if segment.Score < 0 || segment.Score > 100 {
			return fmt.Errorf("%w: rank %d score %d out of range", ErrInvalidAnalysis, segment.Rank, segment.Score)
		}
		if strings.TrimSpace(segment.Hook) == "" {
			return fmt.Errorf("%w: rank %d has no hook", ErrInvalidAnalysis, segment.Rank)
		}
	}

	if !seen[a.Selected.Rank] {
		return fmt.Errorf("%w: selected rank %d not among segments", ErrInvalidAnalysis, a.Selected.Rank)
	}

	sort.Slice(a.Segments, func(i, j int) bool {
		return a.Segments[i].Rank < a.Segments[j].Rank
	})
	return nil
}

// ValidateStoryboard checks for exactly six panels numbered 1..6 and sorts them.
func ValidateStoryboard(s *Storyboard) error {
	if s == nil {
		return fmt.Errorf("%w: empty", ErrInvalidStoryboard)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidStoryboard)
	}
	if len(s.Panels) != PanelCount {
		return fmt.Errorf("%w: got %d panels, want %d", ErrInvalidStoryboard, len(s.Panels), PanelCount)
	}

	seen := make(map[int]bool, PanelCount)
	for _, panel := range s.Panels {
		if panel.PanelNumber < 1 || panel.PanelNumber > PanelCount {
			return fmt.Errorf("%w: panel number %d out of range", ErrInvalidStoryboard, panel.PanelNumber)
		}
		if seen[panel.PanelNumber] {
			return fmt.Errorf("%w: duplicate panel number %d", ErrInvalidStoryboard, panel.PanelNumber)
		}
		seen[panel.PanelNumber] = true
	}

	sort.Slice(s.Panels, func(i, j int) bool {
		return s.Panels[i].PanelNumber < s.Panels[j].PanelNumber
	})
	return nil
}

// CountSuccesses returns how many panels carry image data.
func CountSuccesses(panels []GeneratedPanel) int {
	count := 0
	for _, p := range panels {
		if p.HasImage() {
			count++
		}
	}
	return count
}
