package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/microscan/microscan/internal/logging"
	"github.com/microscan/microscan/pkg/scoring"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ErrNoIndex is returned by List when the service has no index.
var ErrNoIndex = errors.New("assessment index not configured")

// Record is the archived form of a scored result.
type Record struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
	Result    *scoring.RiskResult `json:"result"`
}

// Service writes results to blob storage and the index.
type Service struct {
	storage StorageClient
	index   Index
	now     func() time.Time
	logger  *slog.Logger
}

// NewService creates an archive service. index may be nil, in which case
// only blobs are written and List is unavailable.
func NewService(storage StorageClient, index Index) *Service {
	return &Service{
		storage: storage,
		index:   index,
		now:     time.Now,
		logger:  logging.New("archive"),
	}
}

// Record archives result and returns its new id.
func (s *Service) Record(ctx context.Context, result *scoring.RiskResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("record assessment: result is nil")
	}

	rec := Record{
		ID:        uuid.New().String(),
		CreatedAt: s.now().UTC(),
		Result:    result,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal assessment: %w", err)
	}

	if err := s.storage.PutResult(ctx, string(result.Variant), rec.ID, data); err != nil {
		return "", fmt.Errorf("store assessment: %w", err)
	}

	if s.index != nil {
		err := s.index.Insert(ctx, Entry{
			ID:            rec.ID,
			Variant:       string(result.Variant),
			RiskScore:     result.Score,
			RiskLevel:     result.Tier.String(),
			PrimaryAction: result.PrimaryAction,
			CreatedAt:     rec.CreatedAt,
		})
		if err != nil {
			return "", fmt.Errorf("index assessment: %w", err)
		}
	}

	s.logger.Debug("archived assessment", "id", rec.ID, "variant", result.Variant, "score", result.Score)
	return rec.ID, nil
}

// List returns the most recent index entries, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Entry, error) {
	if s.index == nil {
		return nil, ErrNoIndex
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	return s.index.List(ctx, limit)
}

// Get loads an archived record by id.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	variants := []scoring.Variant{scoring.VariantAlgae, scoring.VariantMicroplastic}
	if s.index != nil {
		e, err := s.index.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		variants = []scoring.Variant{scoring.Variant(e.Variant)}
	}

	for _, v := range variants {
		data, err := s.storage.GetResult(ctx, string(v), id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal assessment %s: %w", id, err)
		}
		return &rec, nil
	}
	return nil, ErrNotFound
}
