package app

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"jetski/internal/comic"
	"jetski/internal/store"
)

type metricStore struct {
	store.Store
	entries []comic.MetricEntry
}

func (m *metricStore) LogMetric(_ context.Context, entry comic.MetricEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func TestStepTimerHoldsEntriesUntilAttach(t *testing.T) {
	st := &metricStore{}
	timer := newStepTimer(st, slog.Default())
	ctx := context.Background()

	_ = timer.run(ctx, "metadata", func() error { return nil })
	_ = timer.run(ctx, "transcript", func() error { return nil })
	if len(st.entries) != 0 {
		t.Fatalf("entries written before attach: %d", len(st.entries))
	}

	timer.attach(ctx, 42)
	_ = timer.run(ctx, "viral_analysis", func() error { return errors.New("bad json") })

	if len(st.entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(st.entries))
	}
	for _, entry := range st.entries {
		if entry.VideoRef == nil || *entry.VideoRef != 42 {
			t.Errorf("entry %s VideoRef = %v, want 42", entry.StepName, entry.VideoRef)
		}
	}

	last := st.entries[2]
	if last.Success || last.ErrorMessage == nil || *last.ErrorMessage != "bad json" {
		t.Errorf("failed entry = %+v", last)
	}
	if len(timer.steps) != 3 || timer.steps[2].Error != "bad json" {
		t.Errorf("steps = %+v", timer.steps)
	}
}

func TestStepTimerFlushWithoutVideo(t *testing.T) {
	st := &metricStore{}
	timer := newStepTimer(st, slog.Default())
	ctx := context.Background()

	_ = timer.run(ctx, "metadata", func() error { return nil })
	_ = timer.run(ctx, "transcript", func() error { return errors.New("Error: Invalid YouTube URL") })
	timer.flush(ctx)

	if len(st.entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(st.entries))
	}
	for _, entry := range st.entries {
		if entry.VideoRef != nil {
			t.Errorf("entry %s VideoRef = %d, want nil", entry.StepName, *entry.VideoRef)
		}
	}

	timer.flush(ctx)
	if len(st.entries) != 2 {
		t.Errorf("second flush wrote again: %d entries", len(st.entries))
	}
}

func TestComicStatus(t *testing.T) {
	tests := []struct {
		name      string
		requested bool
		images    *comic.GenerationResult
		want      string
	}{
		{name: "notRequested", want: StatusSuccess},
		{name: "requestedButSkipped", requested: true, want: StatusSuccess},
		{name: "allPanels", requested: true, images: &comic.GenerationResult{TotalPanels: 6, SuccessCount: 6}, want: StatusSuccess},
		{name: "somePanels", requested: true, images: &comic.GenerationResult{TotalPanels: 6, SuccessCount: 5}, want: StatusPartial},
		{name: "noPanels", requested: true, images: &comic.GenerationResult{TotalPanels: 6}, want: StatusImagesFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := comicStatus(tt.requested, tt.images); got != tt.want {
				t.Errorf("comicStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}
