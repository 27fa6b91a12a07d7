// Package archive persists scored results: the full result as a JSON blob
// and, optionally, a row in a queryable index.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const resultContentType = "application/json"

// StorageClient abstracts blob storage for archived results. GetResult
// returns ErrNotFound for a missing blob.
type StorageClient interface {
	PutResult(ctx context.Context, variant, id string, data []byte) error
	GetResult(ctx context.Context, variant, id string) ([]byte, error)
}

// LocalStorage keeps results as files under BaseDir, one directory per
// variant. It backs the CLI and single-node deployments.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(variant, id string) string {
	return filepath.Join(s.BaseDir, variant, id+".json")
}

// PutResult writes the blob to a temporary file and renames it into place,
// so readers never see a partial result.
func (s *LocalStorage) PutResult(_ context.Context, variant, id string, data []byte) error {
	path := s.path(variant, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), id+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func (s *LocalStorage) GetResult(_ context.Context, variant, id string) ([]byte, error) {
	data, err := os.ReadFile(s.path(variant, id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}
	return data, nil
}

func objectKey(variant, id string) string {
	return variant + "/" + id + ".json"
}

func resultMetadata(variant string) map[string]string {
	return map[string]string{"variant": variant}
}
