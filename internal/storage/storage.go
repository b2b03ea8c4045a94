package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"jetski/internal/comic"
)

// PanelArchive stores one rendered panel and returns where it ended up.
type PanelArchive interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// PanelName returns "panel_{n}.{ext}" for a panel inside dir.
func PanelName(dir string, panelNumber int, mimeType string) string {
	return path.Join(dir, fmt.Sprintf("panel_%d.%s", panelNumber, extension(mimeType)))
}

func extension(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}

type multiArchive []PanelArchive

// Multi saves to every archive in turn; the returned location is the last success.
func Multi(archives ...PanelArchive) PanelArchive {
	return multiArchive(archives)
}

func (m multiArchive) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	var (
		location string
		errs     []error
	)
	for _, archive := range m {
		loc, err := archive.Save(ctx, name, data, contentType)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		location = loc
	}
	return location, errors.Join(errs...)
}

// ArchivePanels saves every panel that carries image data under dir.
// Failures are logged and skipped.
func ArchivePanels(ctx context.Context, archive PanelArchive, dir string, panels []comic.GeneratedPanel) []string {
	var locations []string
	for _, panel := range panels {
		if !panel.HasImage() {
			continue
		}

		data, err := base64.StdEncoding.DecodeString(panel.ImageBase64)
		if err != nil {
			slog.Warn("Failed to decode panel image", "panel", panel.PanelNumber, "error", err)
			continue
		}

		contentType := panel.MIMEType
		if contentType == "" {
			contentType = "image/png"
		}

		location, err := archive.Save(ctx, PanelName(dir, panel.PanelNumber, contentType), data, contentType)
		if err != nil {
			slog.Warn("Failed to archive panel", "panel", panel.PanelNumber, "error", err)
		}
		if location != "" {
			slog.Debug("Archived panel", "panel", panel.PanelNumber, "location", location)
			locations = append(locations, location)
		}
	}
	return locations
}
