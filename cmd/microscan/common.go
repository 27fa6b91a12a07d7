package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/microscan/microscan/internal/logging"
	"github.com/microscan/microscan/internal/vision"
	"github.com/microscan/microscan/pkg/config"
	"github.com/microscan/microscan/pkg/projection"
	"github.com/microscan/microscan/pkg/scoring"
	"github.com/microscan/microscan/pkg/signal"
	"github.com/microscan/microscan/pkg/surface"
)

// globalOpts holds flags shared by every scoring command.
type globalOpts struct {
	configPath string
	format     string
}

// env bundles what a scoring command needs once config has been resolved.
type env struct {
	cfg      *config.Config
	weights  scoring.Weights
	renderer surface.Renderer
}

func setup(opts *globalOpts) (*env, error) {
	renderer := surface.ForFormat(opts.format)
	if renderer == nil {
		return nil, fmt.Errorf("unknown output format %q (want text, json or markdown)", opts.format)
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	// Logs go to stderr so they never mix with rendered output.
	logging.Init(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format, os.Stderr)

	weights, err := cfg.ScoringWeights()
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, weights: weights, renderer: renderer}, nil
}

// loadConfig reads an explicit config path, or the nearest
// .microscan/config.yaml, then applies environment overrides.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err == nil {
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

func (e *env) algaeEngine() *scoring.Engine {
	sim := projection.NewSimulatorFor(e.weights)
	if e.cfg.Scoring.ProjectionSeed != 0 {
		sim.Jitter = projection.NewSeededJitter(e.cfg.Scoring.ProjectionSeed)
	}
	return scoring.NewAlgaeEngine(e.weights, sim)
}

func (e *env) opticalEngine() *scoring.Engine {
	return scoring.NewOpticalEngine(e.weights)
}

// assessment resolves the vision input for a command: a saved assessment
// file wins over an image, and neither means no assessment.
func (e *env) assessment(ctx context.Context, variant scoring.Variant, assessmentPath, imagePath string) (*signal.Assessment, error) {
	switch {
	case assessmentPath != "":
		a, err := signal.LoadAssessment(assessmentPath)
		if err != nil {
			return nil, err
		}
		return &a, nil
	case imagePath != "":
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		client := vision.NewClient(vision.Config{
			APIKey:   e.cfg.Vision.APIKey,
			Model:    e.cfg.Vision.Model,
			Endpoint: e.cfg.Vision.Endpoint,
			Timeout:  e.cfg.VisionTimeout(),
		})
		fmt.Fprintf(os.Stderr, "Analyzing %s with %s...\n", imagePath, e.cfg.Vision.Model)
		a := client.Analyze(ctx, variant, base64.StdEncoding.EncodeToString(data))
		return &a, nil
	default:
		return nil, nil
	}
}

func (e *env) render(w io.Writer, result *scoring.RiskResult) error {
	if err := e.renderer.Render(w, result); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	return nil
}
