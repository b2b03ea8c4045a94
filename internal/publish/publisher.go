package publish

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"jetski/internal/comic"
	"jetski/internal/storage"
)

type Document struct {
	ID  string
	URL string
}

type Folder struct {
	ID  string
	URL string
}

// Remote creates documents and folders in a hosted document service.
type Remote interface {
	CreateDocument(ctx context.Context, title, body string) (Document, error)
	CreateFolder(ctx context.Context, name string) (Folder, error)
	UploadFile(ctx context.Context, folderID, name, mimeType string, data []byte) error
}

type Options struct {
	DocTitlePrefix string
	FolderPrefix   string
}

type Publisher struct {
	remote Remote
	opts   Options
}

// NewPublisher returns a publisher; a nil remote puts it in preview mode.
func NewPublisher(remote Remote, opts Options) *Publisher {
	return &Publisher{
		remote: remote,
		opts:   opts,
	}
}

func (p *Publisher) Publish(ctx context.Context, in Input) comic.PublishedDocument {
	preview := RenderSummary(in)

	if p.remote == nil {
		slog.Info("Publishing credentials absent, returning preview")
		return comic.PublishedDocument{
			Status:  comic.PublishPreview,
			Preview: preview,
		}
	}

	doc, folderURL, err := p.publish(ctx, in, preview)
	if err != nil {
		slog.Warn("Publishing failed", "error", err)
		return comic.PublishedDocument{
			Status:  comic.PublishFailed,
			Preview: preview,
			Error:   err.Error(),
		}
	}

	slog.Info("Published summary document", "doc_url", doc.URL)
	return comic.PublishedDocument{
		Status:         comic.PublishSuccess,
		DocID:          doc.ID,
		DocURL:         &doc.URL,
		DriveFolderURL: folderURL,
		Preview:        preview,
	}
}

func (p *Publisher) publish(ctx context.Context, in Input, body string) (Document, *string, error) {
	doc, err := p.remote.CreateDocument(ctx, p.opts.DocTitlePrefix+in.Video.Title, body)
	if err != nil {
		return Document{}, nil, fmt.Errorf("create document: %w", err)
	}

	if in.Images == nil || in.Images.SuccessCount == 0 {
		return doc, nil, nil
	}

	folder, err := p.remote.CreateFolder(ctx, p.opts.FolderPrefix+in.Video.Title)
	if err != nil {
		return Document{}, nil, fmt.Errorf("create folder: %w", err)
	}

	for _, panel := range in.Images.GeneratedPanels {
		if !panel.HasImage() {
			continue
		}

		data, err := base64.StdEncoding.DecodeString(panel.ImageBase64)
		if err != nil {
			return Document{}, nil, fmt.Errorf("decode panel %d: %w", panel.PanelNumber, err)
		}

		mimeType := panel.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}

		name := storage.PanelName("", panel.PanelNumber, mimeType)
		if err := p.remote.UploadFile(ctx, folder.ID, name, mimeType, data); err != nil {
			return Document{}, nil, fmt.Errorf("upload %s: %w", name, err)
		}
	}

	return doc, &folder.URL, nil
}
