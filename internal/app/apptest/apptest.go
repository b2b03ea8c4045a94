// Package apptest wires a Service from fakes so pipeline and HTTP tests can
// run without network access.
package apptest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"jetski/internal/app"
	"jetski/internal/highlight"
	"jetski/internal/imagegen"
	"jetski/internal/llm"
	"jetski/internal/publish"
	"jetski/internal/storage"
	"jetski/internal/store"
	"jetski/internal/storyboard"
	"jetski/internal/youtube"
	"jetski/pkg/config"
	"jetski/pkg/httputil"
	"jetski/pkg/prompts"
)

const VideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

const AnalysisJSON = `{
  "segments": [
    {"rank": 1, "score": 95, "start_time": "00:05", "end_time": "00:20", "viral_type": "surprising", "hook": "Nobody saw it coming", "summary": "The reveal", "transcript_excerpt": "Hello world."},
    {"rank": 2, "score": 88, "start_time": "00:30", "end_time": "00:50", "viral_type": "funny", "hook": "The perfect comeback", "summary": "A joke lands", "transcript_excerpt": "world"},
    {"rank": 3, "score": 71, "start_time": "01:10", "end_time": "01:25", "viral_type": "quotable", "hook": "Words to live by", "summary": "A quote", "transcript_excerpt": "hello"}
  ],
  "selected": {"rank": 2, "reason": "Strongest visual beat"}
}`

// StoryboardJSON is a valid six-panel storyboard with panels out of order.
var StoryboardJSON = func() string {
	var panels []string
	for _, n := range []int{2, 1, 3, 4, 6, 5} {
		character := ""
		if n == 1 {
			character = "a grinning host in a yellow jacket"
		}
		panels = append(panels, fmt.Sprintf(`{"panel_number":%d,"scene_description":"scene %d","character_details":%q,"action":"action %d","caption":"caption %d","visual_style":"bright","composition":"medium shot"}`, n, n, character, n, n))
	}
	return fmt.Sprintf(`{"title":"The Perfect Comeback","style":"modern editorial comic","tone":"comedic","panels":[%s],"narrative_arc":"setup to punchline","hashtags":["#comic","#funny"],"posting_tip":"Post on weekday evenings"}`, strings.Join(panels, ","))
}()

// LLM answers by schema name: the viral analysis or the storyboard.
type LLM struct {
	Analysis   string
	Storyboard string
	Err        error

	mu       sync.Mutex
	Requests []llm.Request
}

func (f *LLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	f.Requests = append(f.Requests, req)
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	switch req.SchemaName {
	case "viral_analysis":
		if f.Analysis != "" {
			return f.Analysis, nil
		}
		return AnalysisJSON, nil
	case "storyboard":
		if f.Storyboard != "" {
			return f.Storyboard, nil
		}
		return StoryboardJSON, nil
	default:
		return "", fmt.Errorf("unexpected schema %q", req.SchemaName)
	}
}

// Captions serves fixed snippets per language.
type Captions struct {
	Tracks map[string][]youtube.Snippet
}

func (c *Captions) Fetch(_ context.Context, _ string, language string) ([]youtube.Snippet, error) {
	snippets, ok := c.Tracks[language]
	if !ok {
		return nil, youtube.ErrLanguageNotFound
	}
	return snippets, nil
}

func (c *Captions) Languages(_ context.Context, _ string) ([]string, error) {
	var languages []string
	for language := range c.Tracks {
		languages = append(languages, language)
	}
	return languages, nil
}

// EnglishCaptions returns the "Hello world." transcript in English.
func EnglishCaptions() *Captions {
	return &Captions{Tracks: map[string][]youtube.Snippet{
		"en": {{Text: "Hello world.", Start: 0, Duration: 1.5}},
	}}
}

// Images fails for the listed panel numbers and succeeds otherwise.
type Images struct {
	FailPanels map[int]bool
}

func (f *Images) Generate(_ context.Context, prompt string) (*imagegen.Image, error) {
	for n := range f.FailPanels {
		if strings.Contains(prompt, fmt.Sprintf("Panel %d of", n)) {
			return nil, imagegen.ErrNoImage
		}
	}
	return &imagegen.Image{Data: []byte("png-bytes"), MIMEType: "image/png"}, nil
}

type Options struct {
	LLM      *LLM
	Captions youtube.CaptionSource
	// Images enables the renderer; nil leaves image generation unconfigured.
	Images  imagegen.Generator
	Remote  publish.Remote
	Archive storage.PanelArchive
	// WrapStore decorates the temp sqlite store, e.g. to inject failures.
	WrapStore func(store.Store) store.Store
}

// NewService builds a Service backed by a temp sqlite store and a fake watch page.
func NewService(t *testing.T, opts Options) *app.Service {
	t.Helper()

	if opts.LLM == nil {
		opts.LLM = &LLM{}
	}
	if opts.Captions == nil {
		opts.Captions = EnglishCaptions()
	}

	p, err := prompts.Default()
	if err != nil {
		t.Fatalf("prompts.Default() error = %v", err)
	}

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Never Gonna Give You Up - YouTube</title></head>
<body><script>var ytInitialPlayerResponse = {"videoDetails":{"lengthSeconds":"212","author":"Rick Astley"}};</script></body></html>`))
	}))
	t.Cleanup(page.Close)

	sqlite, err := store.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "jetski.db"))
	if err != nil {
		t.Fatalf("store.NewSQLite() error = %v", err)
	}
	var st store.Store = sqlite
	if opts.WrapStore != nil {
		st = opts.WrapStore(st)
	}

	cfg := &config.Config{}
	cfg.Storyboard.DefaultStyle = "modern editorial comic, bold lines, vibrant colors"

	var renderer *imagegen.Renderer
	if opts.Images != nil {
		renderer = imagegen.NewRenderer(opts.Images, p, imagegen.Options{Concurrency: 2, DefaultStyle: cfg.Storyboard.DefaultStyle})
	}

	svc := app.NewService(app.ServiceOptions{
		Config:      cfg,
		Metadata:    youtube.NewMetadataFetcher(httputil.NewClient(page.Client(), 0), page.URL),
		Transcripts: youtube.NewTranscriptFetcher(opts.Captions, nil),
		Ranker:      highlight.NewRanker(opts.LLM, p, highlight.Options{Temperature: 0.7}),
		Storyboards: storyboard.NewGenerator(opts.LLM, p, storyboard.Options{Temperature: 0.8, DefaultStyle: cfg.Storyboard.DefaultStyle}),
		Renderer:    renderer,
		Publisher:   publish.NewPublisher(opts.Remote, publish.Options{DocTitlePrefix: "JetSki: ", FolderPrefix: "JetSki - "}),
		Archive:     opts.Archive,
		Store:       st,
	})
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

// ErrUpstream is a generic upstream failure for fakes.
var ErrUpstream = errors.New("upstream unavailable")
