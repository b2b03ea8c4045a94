package app

import (
	"errors"

	"jetski/internal/highlight"
	"jetski/internal/imagegen"
	"jetski/internal/publish"
	"jetski/internal/storage"
	"jetski/internal/store"
	"jetski/internal/storyboard"
	"jetski/internal/youtube"
	"jetski/pkg/config"
)

type Service struct {
	cfg         *config.Config
	metadata    *youtube.MetadataFetcher
	transcripts *youtube.TranscriptFetcher
	ranker      *highlight.Ranker
	storyboards *storyboard.Generator
	renderer    *imagegen.Renderer
	publisher   *publish.Publisher
	archive     storage.PanelArchive
	store       store.Store
	closers     []func() error
}

type ServiceOptions struct {
	Config      *config.Config
	Metadata    *youtube.MetadataFetcher
	Transcripts *youtube.TranscriptFetcher
	Ranker      *highlight.Ranker
	Storyboards *storyboard.Generator
	// Renderer is nil when no image API key is configured.
	Renderer  *imagegen.Renderer
	Publisher *publish.Publisher
	// Archive is optional; rendered panels are saved there when set.
	Archive storage.PanelArchive
	Store   store.Store
	Closers []func() error
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:         opts.Config,
		metadata:    opts.Metadata,
		transcripts: opts.Transcripts,
		ranker:      opts.Ranker,
		storyboards: opts.Storyboards,
		renderer:    opts.Renderer,
		publisher:   opts.Publisher,
		archive:     opts.Archive,
		store:       opts.Store,
		closers:     opts.Closers,
	}
}

func (s *Service) Config() *config.Config {
	return s.cfg
}

// Close releases the store and any other clients opened by BuildService.
func (s *Service) Close() error {
	var errs []error
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	for _, closeFn := range s.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}
