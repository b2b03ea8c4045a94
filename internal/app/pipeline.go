package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"jetski/internal/comic"
	"jetski/internal/metrics"
	"jetski/internal/publish"
	"jetski/internal/storage"
	"jetski/internal/store"
	"jetski/internal/youtube"
)

const (
	StatusSuccess      = "success"
	StatusPartial      = "partial"
	StatusImagesFailed = "images_failed"
)

const (
	stepMetadata   = "metadata"
	stepTranscript = "transcript"
	stepViral      = "viral_analysis"
	stepStoryboard = "storyboard"
	stepImages     = "image_generation"
	stepPublish    = "google_doc"

	stepSaveVideo      = "save_video"
	stepSaveSegments   = "save_segments"
	stepSaveStoryboard = "save_storyboard"
	stepSaveComic      = "save_comic"
)

var ErrMissingVideoURL = errors.New("video_url is required")

type Pipeline struct {
	service *Service
}

type Request struct {
	VideoURL        string `json:"video_url"`
	GenerateImages  bool   `json:"generate_images"`
	CreateGoogleDoc bool   `json:"create_google_doc"`
}

// NewRequest returns a request with the default flags: images on, document off.
func NewRequest(videoURL string) Request {
	return Request{
		VideoURL:       videoURL,
		GenerateImages: true,
	}
}

type RunMetrics struct {
	RunID            string       `json:"run_id"`
	TotalTimeSeconds float64      `json:"total_time_seconds"`
	VideoID          int64        `json:"video_id"`
	ComicID          int64        `json:"comic_id"`
	Steps            []StepMetric `json:"steps"`
}

type Result struct {
	VideoURL      string                   `json:"video_url"`
	VideoTitle    string                   `json:"video_title"`
	Video         comic.VideoRecord        `json:"video"`
	ViralAnalysis *comic.ViralAnalysis     `json:"viral_analysis"`
	Storyboard    *comic.Storyboard        `json:"storyboard"`
	Images        *comic.GenerationResult  `json:"images,omitempty"`
	GoogleDoc     *comic.PublishedDocument `json:"google_doc,omitempty"`
	Status        string                   `json:"status"`
	Metrics       RunMetrics               `json:"metrics"`
}

func NewPipeline(service *Service) *Pipeline {
	return &Pipeline{service: service}
}

// Run executes the whole pipeline for one video. Metadata only degrades;
// transcript, ranking, storyboard and persistence failures abort the run;
// image rendering and publishing failures are reported in the result.
func (pipeline *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.VideoURL) == "" {
		return nil, ErrMissingVideoURL
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := slog.With("run_id", runID)
	timer := newStepTimer(pipeline.service.store, logger)

	logger.Info("Starting pipeline", "video_url", req.VideoURL, "images", req.GenerateImages, "google_doc", req.CreateGoogleDoc)

	result, err := pipeline.run(ctx, req, runID, timer)
	// no-op once the video row exists
	timer.flush(ctx)
	if err != nil {
		metrics.RecordRun("failed")
		logger.Error("Pipeline failed", "error", err)
		return nil, err
	}

	result.Metrics.TotalTimeSeconds = time.Since(start).Seconds()
	result.Metrics.Steps = timer.steps
	metrics.RecordRun(result.Status)
	logger.Info("Pipeline completed", "status", result.Status, "duration", time.Since(start).Round(time.Millisecond))
	return result, nil
}

func (pipeline *Pipeline) run(ctx context.Context, req Request, runID string, timer *stepTimer) (*Result, error) {
	svc := pipeline.service
	start := time.Now()

	var meta youtube.Metadata
	_ = timer.run(ctx, stepMetadata, func() error {
		meta = svc.metadata.Fetch(ctx, req.VideoURL)
		if meta.Error != "" {
			return errors.New(meta.Error)
		}
		return nil
	})

	var transcript string
	err := timer.run(ctx, stepTranscript, func() error {
		transcript = svc.transcripts.Transcript(ctx, req.VideoURL)
		if youtube.IsTranscriptError(transcript) {
			return errors.New(transcript)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	video := meta.Record(req.VideoURL, transcript)
	var videoID int64
	err = timer.run(ctx, stepSaveVideo, func() error {
		id, saveErr := svc.store.SaveVideo(ctx, video)
		videoID = id
		return saveErr
	})
	if err != nil {
		return nil, fmt.Errorf("save video: %w", err)
	}
	timer.attach(ctx, videoID)

	result := &Result{
		VideoURL:   req.VideoURL,
		VideoTitle: meta.Title,
		Video:      video,
		Status:     StatusSuccess,
		Metrics: RunMetrics{
			RunID:   runID,
			VideoID: videoID,
		},
	}

	var analysis *comic.ViralAnalysis
	err = timer.run(ctx, stepViral, func() error {
		a, rankErr := svc.ranker.Rank(ctx, transcript)
		analysis = a
		return rankErr
	})
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	result.ViralAnalysis = analysis

	var segmentID int64
	err = timer.run(ctx, stepSaveSegments, func() error {
		id, saveErr := svc.store.SaveSegments(ctx, videoID, analysis.Segments, analysis.Selected.Rank)
		segmentID = id
		return saveErr
	})
	if err != nil {
		return nil, fmt.Errorf("save segments: %w", err)
	}

	selected, _ := analysis.SelectedSegment()

	var board *comic.Storyboard
	err = timer.run(ctx, stepStoryboard, func() error {
		b, boardErr := svc.storyboards.Generate(ctx, selected)
		board = b
		return boardErr
	})
	if err != nil {
		return nil, fmt.Errorf("storyboard: %w", err)
	}
	result.Storyboard = board

	var storyboardID int64
	err = timer.run(ctx, stepSaveStoryboard, func() error {
		id, saveErr := svc.store.SaveStoryboard(ctx, videoID, segmentID, *board)
		storyboardID = id
		return saveErr
	})
	if err != nil {
		return nil, fmt.Errorf("save storyboard: %w", err)
	}

	if req.GenerateImages {
		result.Images = pipeline.renderImages(ctx, timer, *board)
		if result.Images != nil {
			pipeline.archivePanels(ctx, path.Join(video.ID, runID), result.Images)
		}
	}

	if req.CreateGoogleDoc {
		_ = timer.run(ctx, stepPublish, func() error {
			doc := svc.publisher.Publish(ctx, publish.Input{
				Video:      video,
				Analysis:   analysis,
				Storyboard: board,
				Images:     result.Images,
			})
			result.GoogleDoc = &doc
			if doc.Status == comic.PublishFailed {
				return errors.New(doc.Error)
			}
			return nil
		})
	}

	result.Status = comicStatus(req.GenerateImages, result.Images)

	record := store.ComicRecord{
		StoryboardID:    storyboardID,
		Images:          result.Images,
		DurationSeconds: time.Since(start).Seconds(),
		Status:          result.Status,
	}
	if result.GoogleDoc != nil {
		record.DocURL = result.GoogleDoc.DocURL
		record.FolderURL = result.GoogleDoc.DriveFolderURL
	}

	var comicID int64
	err = timer.run(ctx, stepSaveComic, func() error {
		id, saveErr := svc.store.SaveGeneratedComic(ctx, record)
		comicID = id
		return saveErr
	})
	if err != nil {
		return nil, fmt.Errorf("save generated comic: %w", err)
	}
	result.Metrics.ComicID = comicID

	return result, nil
}

func (pipeline *Pipeline) renderImages(ctx context.Context, timer *stepTimer, board comic.Storyboard) *comic.GenerationResult {
	renderer := pipeline.service.renderer
	if renderer == nil {
		timer.logger.Warn("Skipping image generation, renderer not configured")
		return nil
	}

	var images comic.GenerationResult
	_ = timer.run(ctx, stepImages, func() error {
		images = renderer.Render(ctx, board)
		if images.SuccessCount == 0 && images.TotalPanels > 0 {
			return fmt.Errorf("no panels generated out of %d", images.TotalPanels)
		}
		return nil
	})
	metrics.RecordPanels(images.SuccessCount, images.TotalPanels)
	return &images
}

func (pipeline *Pipeline) archivePanels(ctx context.Context, dir string, images *comic.GenerationResult) {
	archive := pipeline.service.archive
	if archive == nil || images.SuccessCount == 0 {
		return
	}
	locations := storage.ArchivePanels(ctx, archive, dir, images.GeneratedPanels)
	slog.Info("Archived panels", "count", len(locations), "dir", dir)
}

// comicStatus is partial when only some panels rendered and images_failed
// when none did. A skipped image step does not lower the status.
func comicStatus(imagesRequested bool, images *comic.GenerationResult) string {
	if !imagesRequested || images == nil {
		return StatusSuccess
	}
	switch {
	case images.SuccessCount == 0 && images.TotalPanels > 0:
		return StatusImagesFailed
	case images.SuccessCount < images.TotalPanels:
		return StatusPartial
	default:
		return StatusSuccess
	}
}

// Analyze fetches the transcript and ranks its viral moments without persisting anything.
func (pipeline *Pipeline) Analyze(ctx context.Context, videoURL string) (*comic.ViralAnalysis, error) {
	if strings.TrimSpace(videoURL) == "" {
		return nil, ErrMissingVideoURL
	}

	transcript := pipeline.service.transcripts.Transcript(ctx, videoURL)
	if youtube.IsTranscriptError(transcript) {
		return nil, errors.New(transcript)
	}

	analysis, err := pipeline.service.ranker.Rank(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	return analysis, nil
}

// Storyboard turns a single segment into a storyboard without persisting it.
func (pipeline *Pipeline) Storyboard(ctx context.Context, segment comic.ViralSegment) (*comic.Storyboard, error) {
	board, err := pipeline.service.storyboards.Generate(ctx, segment)
	if err != nil {
		return nil, fmt.Errorf("storyboard: %w", err)
	}
	return board, nil
}

func (pipeline *Pipeline) History(ctx context.Context, limit int) ([]store.VideoSummary, error) {
	history, err := pipeline.service.store.History(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return history, nil
}
