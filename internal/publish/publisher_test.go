package publish

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"jetski/internal/comic"
)

type fakeRemote struct {
	docErr    error
	uploadErr error

	docTitle string
	docBody  string
	folder   string
	uploads  []string
}

func (f *fakeRemote) CreateDocument(_ context.Context, title, body string) (Document, error) {
	if f.docErr != nil {
		return Document{}, f.docErr
	}
	f.docTitle = title
	f.docBody = body
	return Document{ID: "doc-1", URL: "https://docs.google.com/document/d/doc-1/edit"}, nil
}

func (f *fakeRemote) CreateFolder(_ context.Context, name string) (Folder, error) {
	f.folder = name
	return Folder{ID: "folder-1", URL: "https://drive.google.com/drive/folders/folder-1"}, nil
}

func (f *fakeRemote) UploadFile(_ context.Context, folderID, name, _ string, _ []byte) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, folderID+"/"+name)
	return nil
}

func testInput(images *comic.GenerationResult) Input {
	board := &comic.Storyboard{
		Title:        "Against All Odds",
		Style:        "noir",
		Tone:         "inspiring",
		NarrativeArc: "setup to payoff",
		Hashtags:     []string{"#comic", "#viral"},
		PostingTip:   "Post at 6pm",
	}
	for n := 1; n <= comic.PanelCount; n++ {
		board.Panels = append(board.Panels, comic.StoryboardPanel{
			PanelNumber:      n,
			SceneDescription: "scene",
			Action:           "action",
			Caption:          "caption " + string(rune('0'+n)),
		})
	}

	return Input{
		Video: comic.VideoRecord{
			URL:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Title:   "Big Talk",
			Channel: "Channel",
		},
		Analysis: &comic.ViralAnalysis{
			Segments: []comic.ViralSegment{
				{Rank: 1, Score: 90, Hook: "hook one"},
				{Rank: 2, Score: 80, Hook: "hook two"},
				{Rank: 3, Score: 70, Hook: "hook three"},
			},
			Selected: comic.Selection{Rank: 2, Reason: "most visual"},
		},
		Storyboard: board,
		Images:     images,
	}
}

func imagesWithFailure() *comic.GenerationResult {
	encoded := base64.StdEncoding.EncodeToString([]byte("png"))
	result := &comic.GenerationResult{TotalPanels: comic.PanelCount}
	for n := 1; n <= comic.PanelCount; n++ {
		panel := comic.GeneratedPanel{PanelNumber: n, ImageBase64: encoded, MIMEType: "image/png"}
		if n == 3 {
			panel = comic.GeneratedPanel{PanelNumber: n, Error: "No image data received from API"}
		}
		result.GeneratedPanels = append(result.GeneratedPanels, panel)
	}
	result.SuccessCount = comic.CountSuccesses(result.GeneratedPanels)
	return result
}

func TestPublishPreviewWithoutRemote(t *testing.T) {
	p := NewPublisher(nil, Options{DocTitlePrefix: "JetSki: "})

	doc := p.Publish(context.Background(), testInput(nil))

	if doc.Status != comic.PublishPreview {
		t.Errorf("Status = %q, want preview", doc.Status)
	}
	if doc.DocURL != nil {
		t.Errorf("DocURL = %v, want nil", *doc.DocURL)
	}
	if doc.Preview == "" {
		t.Error("Preview is empty")
	}
}

func TestPublish(t *testing.T) {
	tests := []struct {
		name        string
		images      *comic.GenerationResult
		remote      *fakeRemote
		wantStatus  comic.PublishStatus
		wantUploads int
		wantFolder  bool
		wantErrText string
	}{
		{
			name:        "docAndFolder",
			images:      imagesWithFailure(),
			remote:      &fakeRemote{},
			wantStatus:  comic.PublishSuccess,
			wantUploads: 5,
			wantFolder:  true,
		},
		{
			name:       "docWithoutImages",
			remote:     &fakeRemote{},
			wantStatus: comic.PublishSuccess,
		},
		{
			name:        "documentFails",
			remote:      &fakeRemote{docErr: errors.New("quota")},
			wantStatus:  comic.PublishFailed,
			wantErrText: "create document: quota",
		},
		{
			name:        "uploadFails",
			images:      imagesWithFailure(),
			remote:      &fakeRemote{uploadErr: errors.New("forbidden")},
			wantStatus:  comic.PublishFailed,
			wantErrText: "upload panel_1.png: forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPublisher(tt.remote, Options{DocTitlePrefix: "JetSki: ", FolderPrefix: "JetSki - "})
			doc := p.Publish(context.Background(), testInput(tt.images))

			if doc.Status != tt.wantStatus {
				t.Fatalf("Status = %q, want %q", doc.Status, tt.wantStatus)
			}
			if doc.Preview == "" {
				t.Error("Preview is empty")
			}

			if tt.wantStatus == comic.PublishFailed {
				if doc.Error != tt.wantErrText {
					t.Errorf("Error = %q, want %q", doc.Error, tt.wantErrText)
				}
				if doc.DocURL != nil {
					t.Errorf("DocURL = %q, want nil on failure", *doc.DocURL)
				}
				return
			}

			if doc.DocURL == nil || *doc.DocURL != "https://docs.google.com/document/d/doc-1/edit" {
				t.Errorf("DocURL = %v", doc.DocURL)
			}
			if tt.remote.docTitle != "JetSki: Big Talk" {
				t.Errorf("doc title = %q", tt.remote.docTitle)
			}
			if tt.remote.docBody != doc.Preview {
				t.Error("document body differs from preview")
			}
			if len(tt.remote.uploads) != tt.wantUploads {
				t.Errorf("uploads = %v, want %d", tt.remote.uploads, tt.wantUploads)
			}
			if (doc.DriveFolderURL != nil) != tt.wantFolder {
				t.Errorf("DriveFolderURL = %v, wantFolder %v", doc.DriveFolderURL, tt.wantFolder)
			}
			if tt.wantFolder && tt.remote.folder != "JetSki - Big Talk" {
				t.Errorf("folder = %q", tt.remote.folder)
			}
		})
	}
}

func TestRenderSummary(t *testing.T) {
	in := testInput(imagesWithFailure())

	first := RenderSummary(in)
	if first != RenderSummary(in) {
		t.Fatal("RenderSummary() is not deterministic")
	}

	for _, want := range []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"2. hook two [SELECTED]",
		"Why #2: most visual",
		"### Panel 6",
		"#comic #viral",
		"Post at 6pm",
		"## Posting Strategy",
		"Generated 5 of 6 panels.",
		"Panel 3 failed: No image data received from API",
	} {
		if !strings.Contains(first, want) {
			t.Errorf("summary missing %q", want)
		}
	}

	if strings.Contains(first, "1. hook one [SELECTED]") {
		t.Error("unselected segment marked as selected")
	}
}

func TestRenderSummaryWithoutImages(t *testing.T) {
	summary := RenderSummary(testInput(nil))
	if !strings.Contains(summary, "Images were not generated") {
		t.Errorf("summary missing image status:\n%s", summary)
	}
}
