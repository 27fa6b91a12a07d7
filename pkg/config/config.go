// Package config handles loading and managing MicroScan configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/microscan/microscan/pkg/scoring"
)

// Config is the top-level configuration for MicroScan.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Vision   VisionConfig   `yaml:"vision"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Alerts   AlertsConfig   `yaml:"alerts"`
}

// ServerConfig controls the HTTP service.
type ServerConfig struct {
	Port      string `yaml:"port"`
	APIKey    string `yaml:"api_key"`    // required in X-API-Key for write endpoints when set
	CacheSize int    `yaml:"cache_size"` // vision assessments kept in memory
	RedisURL  string `yaml:"redis_url"`  // shared assessment cache; replaces the in-memory one
}

// VisionConfig controls the AI vision client.
type VisionConfig struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
	Timeout  int    `yaml:"timeout"` // seconds
}

// ScoringConfig controls scoring behavior.
type ScoringConfig struct {
	Weights              map[string]float64 `yaml:"weights"`
	HighRiskKeywords     []string           `yaml:"high_risk_keywords"`
	ModerateRiskKeywords []string           `yaml:"moderate_risk_keywords"`
	// ProjectionSeed pins the projection jitter. Zero means random.
	ProjectionSeed uint64 `yaml:"projection_seed"`
}

// StorageConfig selects where archived results are written.
type StorageConfig struct {
	Backend   string `yaml:"backend"` // none, local, s3, gcs
	Bucket    string `yaml:"bucket"`
	LocalPath string `yaml:"local_path"`
	Region    string `yaml:"region"`   // s3 only
	Endpoint  string `yaml:"endpoint"` // s3-compatible stores such as MinIO
}

// DatabaseConfig points at the assessment index. Postgres wins when both
// URLs are set.
type DatabaseConfig struct {
	URL           string `yaml:"url"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

// AlertsConfig controls advisory webhooks. Alerts are off without a URL.
type AlertsConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Secret     string `yaml:"secret"`   // HMAC-SHA256 signing key
	MinTier    string `yaml:"min_tier"` // Low, Moderate, High, Critical
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      "8080",
			CacheSize: 256,
		},
		Vision: VisionConfig{
			Model:    "gemini-1.5-flash",
			Endpoint: "https://generativelanguage.googleapis.com/v1beta",
			Timeout:  30,
		},
		Scoring: ScoringConfig{
			Weights: map[string]float64{},
		},
		Storage: StorageConfig{
			Backend: "none",
		},
		Database: DatabaseConfig{
			MongoDatabase: "microscan",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Alerts: AlertsConfig{
			MinTier: "High",
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Scoring.Weights == nil {
		cfg.Scoring.Weights = map[string]float64{}
	}

	return cfg, nil
}

// ApplyEnv overlays environment variables on the config. getenv is usually
// os.Getenv; empty values leave the config untouched.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Port, "PORT")
	set(&c.Server.APIKey, "MICROSCAN_API_KEY")
	set(&c.Vision.APIKey, "GEMINI_API_KEY")
	set(&c.Vision.Model, "GEMINI_MODEL")
	set(&c.Database.URL, "DATABASE_URL")
	set(&c.Database.MongoURI, "MONGO_URI")
	set(&c.Database.MongoDatabase, "MONGO_DATABASE")
	set(&c.Server.RedisURL, "REDIS_URL")
	set(&c.Storage.Backend, "STORAGE_BACKEND")
	set(&c.Storage.Bucket, "STORAGE_BUCKET")
	set(&c.Storage.LocalPath, "LOCAL_STORAGE_PATH")
	set(&c.Storage.Region, "STORAGE_REGION")
	set(&c.Storage.Endpoint, "STORAGE_ENDPOINT")
	set(&c.Logging.Level, "LOG_LEVEL")
	set(&c.Logging.Format, "LOG_FORMAT")
	set(&c.Alerts.WebhookURL, "ALERT_WEBHOOK_URL")
	set(&c.Alerts.Secret, "ALERT_WEBHOOK_SECRET")
	set(&c.Alerts.MinTier, "ALERT_MIN_TIER")

	if v := getenv("ASSESSMENT_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing ASSESSMENT_CACHE_SIZE: %w", err)
		}
		c.Server.CacheSize = n
	}
	return nil
}

// ScoringWeights returns the default weights with this config's overrides
// and keyword lists applied.
func (c *Config) ScoringWeights() (scoring.Weights, error) {
	w := scoring.Defaults()
	if err := w.Override(c.Scoring.Weights); err != nil {
		return w, fmt.Errorf("applying scoring weights: %w", err)
	}
	if len(c.Scoring.HighRiskKeywords) > 0 {
		w.HighRiskKeywords = c.Scoring.HighRiskKeywords
	}
	if len(c.Scoring.ModerateRiskKeywords) > 0 {
		w.ModerateRiskKeywords = c.Scoring.ModerateRiskKeywords
	}
	return w, nil
}

// AlertTier returns the minimum tier that triggers an advisory webhook.
func (c *Config) AlertTier() (scoring.Tier, error) {
	t, err := scoring.ParseTier(c.Alerts.MinTier)
	if err != nil {
		return t, fmt.Errorf("parsing alerts.min_tier: %w", err)
	}
	return t, nil
}

// VisionTimeout returns the per-request vision timeout.
func (c *Config) VisionTimeout() time.Duration {
	if c.Vision.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Vision.Timeout) * time.Second
}

// FindConfigFile looks for .microscan/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".microscan", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns the per-user directory MicroScan writes local state to.
func CacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "microscan")
}

// ArchiveDir returns the default local archive directory.
func ArchiveDir() string {
	return filepath.Join(CacheDir(), "assessments")
}
