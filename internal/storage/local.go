package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type LocalStorage struct {
	outputDir string
}

var _ PanelArchive = (*LocalStorage)(nil)

func NewLocalStorage(outputDir string) *LocalStorage {
	return &LocalStorage{outputDir: outputDir}
}

func (s *LocalStorage) Save(_ context.Context, name string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.outputDir, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write panel file: %w", err)
	}

	return path, nil
}

// SaveFile writes an arbitrary artifact, such as a document preview, next to the panels.
func (s *LocalStorage) SaveFile(name string, data []byte) (string, error) {
	return s.Save(context.Background(), name, data, "")
}
