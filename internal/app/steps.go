package app

import (
	"context"
	"log/slog"
	"time"

	"jetski/internal/comic"
	"jetski/internal/metrics"
	"jetski/internal/store"
)

type StepMetric struct {
	Step            string  `json:"step"`
	DurationSeconds float64 `json:"duration_seconds"`
	Success         bool    `json:"success"`
	Error           string  `json:"error,omitempty"`
}

// stepTimer measures pipeline steps and writes them to slog, Prometheus and
// the store. Entries recorded before the video row exists are held back
// until attach or flush.
type stepTimer struct {
	store    store.Store
	logger   *slog.Logger
	videoRef *int64
	pending  []comic.MetricEntry
	steps    []StepMetric
}

func newStepTimer(st store.Store, logger *slog.Logger) *stepTimer {
	return &stepTimer{
		store:  st,
		logger: logger,
	}
}

// run times fn and records the outcome under name.
func (t *stepTimer) run(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	t.record(ctx, name, time.Since(start), err)
	return err
}

func (t *stepTimer) record(ctx context.Context, name string, elapsed time.Duration, err error) {
	seconds := elapsed.Seconds()
	step := StepMetric{
		Step:            name,
		DurationSeconds: seconds,
		Success:         err == nil,
	}

	entry := comic.MetricEntry{
		VideoRef:        t.videoRef,
		StepName:        name,
		DurationSeconds: seconds,
		Success:         err == nil,
	}
	if err != nil {
		msg := err.Error()
		step.Error = msg
		entry.ErrorMessage = &msg
		t.logger.Warn("Step failed", "step", name, "duration", elapsed.Round(time.Millisecond), "error", err)
	} else {
		t.logger.Info("Step completed", "step", name, "duration", elapsed.Round(time.Millisecond))
	}

	t.steps = append(t.steps, step)
	metrics.RecordStep(name, err == nil, seconds)

	if t.videoRef == nil {
		t.pending = append(t.pending, entry)
		return
	}
	t.write(ctx, entry)
}

// attach binds later entries to videoID and writes the held-back ones.
func (t *stepTimer) attach(ctx context.Context, videoID int64) {
	t.videoRef = &videoID
	for _, entry := range t.pending {
		entry.VideoRef = t.videoRef
		t.write(ctx, entry)
	}
	t.pending = nil
}

// flush writes held-back entries as they are, with a null video ref.
func (t *stepTimer) flush(ctx context.Context) {
	for _, entry := range t.pending {
		t.write(ctx, entry)
	}
	t.pending = nil
}

func (t *stepTimer) write(ctx context.Context, entry comic.MetricEntry) {
	if t.store == nil {
		return
	}
	if err := t.store.LogMetric(ctx, entry); err != nil {
		t.logger.Warn("Failed to log metric", "step", entry.StepName, "error", err)
	}
}
