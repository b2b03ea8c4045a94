package publish

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	docURLFormat   = "https://docs.google.com/document/d/%s/edit"
	folderURLBase  = "https://drive.google.com/drive/folders/"
)

// GoogleRemote publishes to Google Docs and Google Drive.
type GoogleRemote struct {
	docs  *docs.Service
	drive *drive.Service
}

var _ Remote = (*GoogleRemote)(nil)

func NewGoogleRemote(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*GoogleRemote, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)

	docsService, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docs service: %w", err)
	}

	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &GoogleRemote{
		docs:  docsService,
		drive: driveService,
	}, nil
}

func (r *GoogleRemote) CreateDocument(ctx context.Context, title, body string) (Document, error) {
	doc, err := r.docs.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return Document{}, fmt.Errorf("failed to create document: %w", err)
	}

	_, err = r.docs.Documents.BatchUpdate(doc.DocumentId, &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{
			{
				InsertText: &docs.InsertTextRequest{
					Location: &docs.Location{Index: 1},
					Text:     body,
				},
			},
		},
	}).Context(ctx).Do()
	if err != nil {
		return Document{}, fmt.Errorf("failed to insert document text: %w", err)
	}

	return Document{
		ID:  doc.DocumentId,
		URL: fmt.Sprintf(docURLFormat, doc.DocumentId),
	}, nil
}

func (r *GoogleRemote) CreateFolder(ctx context.Context, name string) (Folder, error) {
	folder, err := r.drive.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
	}).Fields("id, webViewLink").Context(ctx).Do()
	if err != nil {
		return Folder{}, fmt.Errorf("failed to create folder: %w", err)
	}

	url := folder.WebViewLink
	if url == "" {
		url = folderURLBase + folder.Id
	}

	return Folder{ID: folder.Id, URL: url}, nil
}

func (r *GoogleRemote) UploadFile(ctx context.Context, folderID, name, mimeType string, data []byte) error {
	_, err := r.drive.Files.Create(&drive.File{
		Name:     name,
		MimeType: mimeType,
		Parents:  []string{folderID},
	}).Media(bytes.NewReader(data)).Fields("id").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}
