package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/microscan/microscan/pkg/scoring"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Vision.Timeout != 30 {
		t.Errorf("expected default vision timeout 30, got %d", cfg.Vision.Timeout)
	}
	if cfg.Storage.Backend != "none" {
		t.Errorf("expected storage backend 'none', got %q", cfg.Storage.Backend)
	}
	if cfg.Scoring.Weights == nil {
		t.Error("expected Weights map to be initialized, got nil")
	}
	if tier, err := cfg.AlertTier(); err != nil || tier != scoring.TierHigh {
		t.Errorf("default AlertTier() = %v, %v; want High", tier, err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		missing bool
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "non-existent file returns defaults",
			missing: true,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != "8080" {
					t.Errorf("expected default port, got %q", cfg.Server.Port)
				}
			},
		},
		{
			name: "valid YAML overrides defaults",
			yaml: `
server:
  port: "9090"
  cache_size: 16
vision:
  model: gemini-2.0-flash
  timeout: 5
scoring:
  weights:
    temp_high_threshold: 27
  high_risk_keywords:
    - scum
storage:
  backend: s3
  bucket: microscan-results
logging:
  format: json
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != "9090" {
					t.Errorf("expected port 9090, got %q", cfg.Server.Port)
				}
				if cfg.Server.CacheSize != 16 {
					t.Errorf("expected cache size 16, got %d", cfg.Server.CacheSize)
				}
				if cfg.Vision.Model != "gemini-2.0-flash" {
					t.Errorf("unexpected model %q", cfg.Vision.Model)
				}
				if cfg.VisionTimeout() != 5*time.Second {
					t.Errorf("expected 5s vision timeout, got %v", cfg.VisionTimeout())
				}
				if cfg.Scoring.Weights["temp_high_threshold"] != 27 {
					t.Errorf("expected temp_high_threshold 27, got %v", cfg.Scoring.Weights["temp_high_threshold"])
				}
				if cfg.Storage.Backend != "s3" || cfg.Storage.Bucket != "microscan-results" {
					t.Errorf("unexpected storage config %+v", cfg.Storage)
				}
				// Untouched sections keep their defaults.
				if cfg.Logging.Level != "info" {
					t.Errorf("expected default log level, got %q", cfg.Logging.Level)
				}
			},
		},
		{
			name:    "invalid YAML returns error",
			yaml:    "{{invalid yaml",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")

			if !tc.missing {
				if err := os.WriteFile(path, []byte(tc.yaml), 0o644); err != nil {
					t.Fatalf("write test config: %v", err)
				}
			}

			cfg, err := Load(path)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.check != nil {
				tc.check(t, cfg)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":                  "7000",
		"GEMINI_API_KEY":        "secret",
		"DATABASE_URL":          "postgres://localhost/microscan",
		"STORAGE_BACKEND":       "local",
		"LOG_LEVEL":             "debug",
		"ASSESSMENT_CACHE_SIZE": "32",
		"ALERT_WEBHOOK_URL":     "https://alerts.example.org/hook",
		"ALERT_MIN_TIER":        "critical",
		"MONGO_URI":             "mongodb://localhost:27017",
	}
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}

	if cfg.Server.Port != "7000" {
		t.Errorf("expected port 7000, got %q", cfg.Server.Port)
	}
	if cfg.Vision.APIKey != "secret" {
		t.Errorf("expected vision api key from env")
	}
	if cfg.Vision.Model != "gemini-1.5-flash" {
		t.Errorf("unset env var should keep default model, got %q", cfg.Vision.Model)
	}
	if cfg.Database.URL != "postgres://localhost/microscan" {
		t.Errorf("unexpected database url %q", cfg.Database.URL)
	}
	if cfg.Storage.Backend != "local" || cfg.Logging.Level != "debug" {
		t.Errorf("unexpected storage/logging config: %+v %+v", cfg.Storage, cfg.Logging)
	}
	if cfg.Server.CacheSize != 32 {
		t.Errorf("expected cache size 32, got %d", cfg.Server.CacheSize)
	}
	if cfg.Database.MongoURI != "mongodb://localhost:27017" || cfg.Database.MongoDatabase != "microscan" {
		t.Errorf("unexpected mongo config %+v", cfg.Database)
	}
	if cfg.Alerts.WebhookURL != "https://alerts.example.org/hook" {
		t.Errorf("unexpected alert webhook %q", cfg.Alerts.WebhookURL)
	}
	if tier, err := cfg.AlertTier(); err != nil || tier != scoring.TierCritical {
		t.Errorf("AlertTier() = %v, %v; want Critical", tier, err)
	}

	bad := DefaultConfig()
	err := bad.ApplyEnv(func(k string) string {
		if k == "ASSESSMENT_CACHE_SIZE" {
			return "lots"
		}
		return ""
	})
	if err == nil {
		t.Error("expected error for non-numeric cache size")
	}
}

func TestScoringWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scoring.Weights["ph_very_high_points"] = 40
	cfg.Scoring.ModerateRiskKeywords = []string{"duckweed"}

	w, err := cfg.ScoringWeights()
	if err != nil {
		t.Fatalf("ScoringWeights() error: %v", err)
	}
	if w.PHVeryHighPoints != 40 {
		t.Errorf("expected override 40, got %v", w.PHVeryHighPoints)
	}
	if len(w.ModerateRiskKeywords) != 1 || w.ModerateRiskKeywords[0] != "duckweed" {
		t.Errorf("expected keyword override, got %v", w.ModerateRiskKeywords)
	}
	if len(w.HighRiskKeywords) != 6 {
		t.Errorf("expected default high keywords, got %v", w.HighRiskKeywords)
	}

	cfg.Scoring.Weights["no_such_weight"] = 1
	if _, err := cfg.ScoringWeights(); err == nil {
		t.Error("expected error for unknown weight")
	}
}

func TestArchiveDir(t *testing.T) {
	dir := ArchiveDir()
	if !strings.HasSuffix(dir, filepath.Join(".cache", "microscan", "assessments")) {
		t.Errorf("unexpected archive dir %q", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Run("found in current directory", func(t *testing.T) {
		root := t.TempDir()
		configDir := filepath.Join(root, ".microscan")
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			t.Fatalf("create config dir: %v", err)
		}
		configPath := filepath.Join(configDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("{}"), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		got := FindConfigFile(root)
		if got != configPath {
			t.Errorf("FindConfigFile = %q, want %q", got, configPath)
		}
	})

	t.Run("found in parent directory", func(t *testing.T) {
		root := t.TempDir()
		configDir := filepath.Join(root, ".microscan")
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			t.Fatalf("create config dir: %v", err)
		}
		configPath := filepath.Join(configDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("{}"), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		sub := filepath.Join(root, "a", "b", "c")
		if err := os.MkdirAll(sub, 0o755); err != nil {
			t.Fatalf("create sub: %v", err)
		}

		got := FindConfigFile(sub)
		if got != configPath {
			t.Errorf("FindConfigFile = %q, want %q", got, configPath)
		}
	})

	t.Run("not found", func(t *testing.T) {
		root := t.TempDir()
		got := FindConfigFile(root)
		if got != "" {
			t.Errorf("FindConfigFile = %q, want empty", got)
		}
	})
}
