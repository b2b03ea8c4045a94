package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jetski/internal/googleauth"
	"jetski/internal/highlight"
	"jetski/internal/imagegen"
	"jetski/internal/llm"
	"jetski/internal/llm/groq"
	"jetski/internal/llm/openai"
	"jetski/internal/publish"
	"jetski/internal/storage"
	"jetski/internal/store"
	"jetski/internal/storyboard"
	"jetski/internal/youtube"
	"jetski/pkg/config"
	"jetski/pkg/httputil"
	"jetski/pkg/prompts"
)

func BuildService(ctx context.Context, cfg *config.Config) (*Service, error) {
	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	llmClient, err := newLLMClient(cfg)
	if err != nil {
		return nil, err
	}

	pageClient := httputil.NewClient(nil, time.Duration(cfg.YouTube.MetadataTimeout)*time.Second)
	captionClient := httputil.NewClient(nil, 0)

	var closers []func() error

	renderer, err := newRenderer(ctx, cfg, p)
	if err != nil {
		return nil, err
	}

	archive, archiveClose, err := newArchive(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if archiveClose != nil {
		closers = append(closers, archiveClose)
	}

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		closeAll(closers)
		return nil, err
	}

	st, err := store.Open(ctx, store.Options{
		Driver:      cfg.Store.Driver,
		Path:        cfg.Store.Path,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		closeAll(closers)
		return nil, fmt.Errorf("open store: %w", err)
	}
	slog.Debug("Opened store", "driver", cfg.Store.Driver)

	return NewService(ServiceOptions{
		Config:      cfg,
		Metadata:    youtube.NewMetadataFetcher(pageClient, cfg.YouTube.BaseURL),
		Transcripts: youtube.NewTranscriptFetcher(youtube.NewWatchPageCaptions(captionClient, cfg.YouTube.BaseURL), cfg.YouTube.Languages),
		Ranker: highlight.NewRanker(llmClient, p, highlight.Options{
			MaxTranscriptChars: cfg.Ranker.MaxTranscriptChars,
			Temperature:        cfg.Ranker.Temperature,
		}),
		Storyboards: storyboard.NewGenerator(llmClient, p, storyboard.Options{
			Temperature:  cfg.Storyboard.Temperature,
			DefaultStyle: cfg.Storyboard.DefaultStyle,
		}),
		Renderer:  renderer,
		Publisher: publisher,
		Archive:   archive,
		Store:     st,
		Closers:   closers,
	}), nil
}

// closeAll releases clients opened before a later construction step failed.
func closeAll(closers []func() error) {
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			slog.Warn("Failed to close client", "error", err)
		}
	}
}

func newLLMClient(cfg *config.Config) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "groq":
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required for the groq provider")
		}
		return groq.NewClient(cfg.GroqAPIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLM.Model, cfg.LLM.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func newRenderer(ctx context.Context, cfg *config.Config, p *prompts.Prompts) (*imagegen.Renderer, error) {
	if cfg.GoogleAPIKey == "" {
		slog.Warn("Image generation not configured (missing GOOGLE_API_KEY)")
		return nil, nil
	}

	generator, err := imagegen.NewGeminiGenerator(ctx, cfg.GoogleAPIKey, cfg.Images.Model, "")
	if err != nil {
		return nil, err
	}

	return imagegen.NewRenderer(generator, p, imagegen.Options{
		Concurrency:  cfg.Images.Concurrency,
		DefaultStyle: cfg.Storyboard.DefaultStyle,
	}), nil
}

func newArchive(ctx context.Context, cfg *config.Config) (storage.PanelArchive, func() error, error) {
	var (
		archives []storage.PanelArchive
		closeFn  func() error
	)

	if cfg.Images.SaveLocal {
		archives = append(archives, storage.NewLocalStorage(cfg.Images.OutputDir))
	}

	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSStorage(ctx, cfg.GCSBucket, cfg.Images.GCSPrefix)
		if err != nil {
			return nil, nil, err
		}
		archives = append(archives, gcs)
		closeFn = gcs.Close
	}

	switch len(archives) {
	case 0:
		return nil, nil, nil
	case 1:
		return archives[0], closeFn, nil
	default:
		return storage.Multi(archives...), closeFn, nil
	}
}

// newPublisher returns a preview-only publisher unless OAuth credentials and a stored token exist.
func newPublisher(ctx context.Context, cfg *config.Config) (*publish.Publisher, error) {
	opts := publish.Options{
		DocTitlePrefix: cfg.Publish.DocTitlePrefix,
		FolderPrefix:   cfg.Publish.FolderPrefix,
	}

	if !cfg.GooglePublishingConfigured() {
		return publish.NewPublisher(nil, opts), nil
	}

	auth := googleauth.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleTokenPath)
	if !auth.HasToken() {
		slog.Warn("Google credentials set but not authorized, run 'jetski auth google'")
		return publish.NewPublisher(nil, opts), nil
	}

	client, err := auth.Client(ctx)
	if err != nil {
		return nil, err
	}

	remote, err := publish.NewGoogleRemote(ctx, client)
	if err != nil {
		return nil, err
	}
	return publish.NewPublisher(remote, opts), nil
}
