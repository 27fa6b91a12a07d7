package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStoragePutGetResult(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	data := []byte(`{"risk_score":42}`)
	if err := s.PutResult(ctx, "algae", "res1", data); err != nil {
		t.Fatalf("PutResult: %v", err)
	}

	got, err := s.GetResult(ctx, "algae", "res1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetResult = %q, want %q", got, data)
	}

	// Verify file path layout
	expectedPath := filepath.Join(dir, "algae", "res1.json")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestLocalStorageGetNotFound(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	_, err := s.GetResult(context.Background(), "microplastic", "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestObjectKey(t *testing.T) {
	if got := objectKey("algae", "abc"); got != "algae/abc.json" {
		t.Errorf("objectKey = %q", got)
	}
}
