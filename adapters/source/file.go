package source

import (
	"context"
	"os"
	"path/filepath"

	"cytodash/domain/core"
)

// FileSource reads a measurement table from the local filesystem
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: filepath.Clean(path)}
}

// Name returns the file's base name
func (s *FileSource) Name() string {
	return filepath.Base(s.path)
}

// ReadSource reads the whole file
func (s *FileSource) ReadSource(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.NewSourceUnavailableError(s.path, err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, core.NewSourceUnavailableError(s.path, err)
	}
	return data, nil
}
