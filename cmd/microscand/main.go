// Command microscand is the MicroScan HTTP service. It serves the analyze
// and algae scoring endpoints, the assessment archive and a health check.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/microscan/microscan/internal/alert"
	"github.com/microscan/microscan/internal/api"
	"github.com/microscan/microscan/internal/archive"
	"github.com/microscan/microscan/internal/logging"
	"github.com/microscan/microscan/internal/platform"
	"github.com/microscan/microscan/internal/vision"
	"github.com/microscan/microscan/pkg/config"
	"github.com/microscan/microscan/pkg/projection"
	"github.com/microscan/microscan/pkg/scoring"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path := os.Getenv("MICROSCAN_CONFIG")
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.FindConfigFile(wd)
		}
	}

	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Init(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logger := logging.New("microscand")

	weights, err := cfg.ScoringWeights()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.Database.URL != "" {
		db, err = platform.OpenDB(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := platform.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	store, closeStore, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	var arch *archive.Service
	if store != nil {
		index, closeIndex, err := openIndex(ctx, cfg.Database, db)
		if err != nil {
			return err
		}
		defer closeIndex()
		arch = archive.NewService(store, index)
		logger.Info("archive enabled", "backend", cfg.Storage.Backend, "index", fmt.Sprintf("%T", index))
	}

	var cache api.Cache = api.NewAssessmentCache(cfg.Server.CacheSize)
	if cfg.Server.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Server.RedisURL)
		if err != nil {
			return fmt.Errorf("parsing redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		cache = api.NewRedisCache(rdb, 0)
		logger.Info("using redis assessment cache", "addr", opts.Addr)
	}

	var alerts alert.Notifier
	if cfg.Alerts.WebhookURL != "" {
		minTier, err := cfg.AlertTier()
		if err != nil {
			return err
		}
		alerts = alert.NewWebhookPublisher(cfg.Alerts.WebhookURL, []byte(cfg.Alerts.Secret), minTier)
		logger.Info("advisory webhook enabled", "min_tier", minTier)
	}

	jitter := projection.NewRandomJitter()
	if cfg.Scoring.ProjectionSeed != 0 {
		jitter = projection.NewSeededJitter(cfg.Scoring.ProjectionSeed)
	}
	sim := projection.NewSimulatorFor(weights)
	sim.Jitter = jitter

	vcfg := vision.Config{
		APIKey:   cfg.Vision.APIKey,
		Model:    cfg.Vision.Model,
		Endpoint: cfg.Vision.Endpoint,
		Timeout:  cfg.VisionTimeout(),
	}
	if !vcfg.Enabled() {
		logger.Warn("GEMINI_API_KEY not set, vision analysis returns demo assessments")
	}

	h := api.NewHandler(api.Deps{
		Optical: scoring.NewOpticalEngine(weights),
		Algae:   scoring.NewAlgaeEngine(weights, sim),
		Vision:  vision.NewClient(vcfg),
		Archive: arch,
		Alerts:  alerts,
		Cache:   cache,
		DB:      db,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           h.Routes(cfg.Server.APIKey),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting microscand", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return nil
}

// openIndex picks the assessment index: Postgres when a database is open,
// then MongoDB, then an in-process index.
func openIndex(ctx context.Context, cfg config.DatabaseConfig, db *sql.DB) (archive.Index, func(), error) {
	noop := func() {}
	switch {
	case db != nil:
		return archive.NewPostgresIndex(db), noop, nil
	case cfg.MongoURI != "":
		client, mdb, err := archive.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, noop, err
		}
		index := archive.NewMongoIndex(mdb)
		if err := index.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, noop, err
		}
		return index, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				slog.Warn("disconnecting mongo", "error", err)
			}
		}, nil
	default:
		return archive.NewMemoryIndex(), noop, nil
	}
}

// openStorage returns the configured archive backend, or nil when archiving
// is disabled. The returned close func is always safe to call.
func openStorage(ctx context.Context, cfg config.StorageConfig) (archive.StorageClient, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case "", "none":
		return nil, noop, nil
	case "local":
		path := cfg.LocalPath
		if path == "" {
			path = config.ArchiveDir()
		}
		return archive.NewLocalStorage(path), noop, nil
	case "s3":
		s, err := archive.NewS3Storage(ctx, archive.S3Config{
			Bucket:   cfg.Bucket,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
		})
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case "gcs":
		s, err := archive.NewGCSStorage(ctx, cfg.Bucket)
		if err != nil {
			return nil, noop, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				slog.Warn("closing gcs client", "error", err)
			}
		}, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
