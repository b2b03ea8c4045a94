package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jetski/internal/comic"
)

var ErrNotFound = errors.New("not found")

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ComicRecord is the final row written for a pipeline run.
type ComicRecord struct {
	StoryboardID    int64
	Images          *comic.GenerationResult
	DocURL          *string
	FolderURL       *string
	DurationSeconds float64
	Status          string
}

type VideoSummary struct {
	ID               int64     `json:"id"`
	URL              string    `json:"video_url"`
	Title            string    `json:"title"`
	CreatedAt        time.Time `json:"created_at"`
	SegmentsCount    int64     `json:"segments_count"`
	StoryboardsCount int64     `json:"storyboards_count"`
	ComicsCount      int64     `json:"comics_count"`
}

// Store records every stage of a pipeline run. Each call commits on its own.
type Store interface {
	// SaveVideo inserts the video or returns the id of the row with the same URL.
	SaveVideo(ctx context.Context, video comic.VideoRecord) (int64, error)
	// SaveSegments inserts all segments atomically and returns the selected row's id.
	SaveSegments(ctx context.Context, videoID int64, segments []comic.ViralSegment, selectedRank int) (int64, error)
	SaveStoryboard(ctx context.Context, videoID, segmentID int64, board comic.Storyboard) (int64, error)
	SaveGeneratedComic(ctx context.Context, record ComicRecord) (int64, error)
	LogMetric(ctx context.Context, entry comic.MetricEntry) error
	History(ctx context.Context, limit int) ([]VideoSummary, error)
	Close() error
}

type Options struct {
	Driver      string
	Path        string
	DatabaseURL string
}

// Open returns the adapter named by opts.Driver with its schema in place.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return NewSQLite(ctx, opts.Path)
	case DriverPostgres:
		if opts.DatabaseURL == "" {
			return nil, errors.New("postgres store requires DATABASE_URL")
		}
		return NewPostgres(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

func marshalNullable(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

func storyboardJSON(board comic.Storyboard) (panels, hashtags string, err error) {
	p, err := json.Marshal(board.Panels)
	if err != nil {
		return "", "", fmt.Errorf("marshal panels: %w", err)
	}
	h, err := json.Marshal(board.Hashtags)
	if err != nil {
		return "", "", fmt.Errorf("marshal hashtags: %w", err)
	}
	return string(p), string(h), nil
}

func imagesJSON(images *comic.GenerationResult) (*string, error) {
	if images == nil {
		return nil, nil
	}
	s, err := marshalNullable(images)
	if err != nil {
		return nil, fmt.Errorf("marshal images: %w", err)
	}
	return s, nil
}
