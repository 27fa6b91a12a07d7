package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when an archived result does not exist.
var ErrNotFound = errors.New("assessment not found")

// Entry is one row of the assessment index.
type Entry struct {
	ID            string    `json:"id" bson:"_id"`
	Variant       string    `json:"variant" bson:"variant"`
	RiskScore     int       `json:"risk_score" bson:"risk_score"`
	RiskLevel     string    `json:"risk_level" bson:"risk_level"`
	PrimaryAction string    `json:"action" bson:"action"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// Index records and queries archived results.
type Index interface {
	Insert(ctx context.Context, e Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
	Get(ctx context.Context, id string) (*Entry, error)
}

// PostgresIndex implements Index over the assessments table.
type PostgresIndex struct {
	db *sql.DB
}

// NewPostgresIndex creates an index backed by db. The schema is expected to
// be migrated already.
func NewPostgresIndex(db *sql.DB) *PostgresIndex {
	return &PostgresIndex{db: db}
}

func (x *PostgresIndex) Insert(ctx context.Context, e Entry) error {
	_, err := x.db.ExecContext(ctx,
		`INSERT INTO assessments (id, variant, risk_score, risk_level, primary_action, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Variant, e.RiskScore, e.RiskLevel, e.PrimaryAction, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (x *PostgresIndex) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT id, variant, risk_score, risk_level, primary_action, created_at
		 FROM assessments
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Variant, &e.RiskScore, &e.RiskLevel, &e.PrimaryAction, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (x *PostgresIndex) Get(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	err := x.db.QueryRowContext(ctx,
		`SELECT id, variant, risk_score, risk_level, primary_action, created_at
		 FROM assessments WHERE id = $1`, id,
	).Scan(&e.ID, &e.Variant, &e.RiskScore, &e.RiskLevel, &e.PrimaryAction, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	return &e, nil
}

// MemoryIndex is an in-process Index. History is lost on restart.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryIndex returns an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]Entry)}
}

func (x *MemoryIndex) Insert(_ context.Context, e Entry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries[e.ID] = e
	return nil
}

func (x *MemoryIndex) List(_ context.Context, limit int) ([]Entry, error) {
	x.mu.RLock()
	entries := make([]Entry, 0, len(x.entries))
	for _, e := range x.entries {
		entries = append(entries, e)
	}
	x.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (x *MemoryIndex) Get(_ context.Context, id string) (*Entry, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}
