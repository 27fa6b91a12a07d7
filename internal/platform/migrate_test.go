package platform

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("reading embedded migrations: %v", err)
	}

	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	if up == 0 || up != down {
		t.Errorf("expected paired up/down migrations, got %d up and %d down", up, down)
	}

	data, err := fs.ReadFile(migrationsFS, "migrations/000001_assessments.up.sql")
	if err != nil {
		t.Fatalf("reading assessments migration: %v", err)
	}
	if !strings.Contains(string(data), "CREATE TABLE IF NOT EXISTS assessments") {
		t.Error("expected assessments table in first migration")
	}
}
