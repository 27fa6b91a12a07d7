// Package api implements the MicroScan REST API: image analysis for the
// microplastic variant, sensor plus image fusion for algal blooms, and the
// optional assessment history.
package api

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/microscan/microscan/internal/alert"
	"github.com/microscan/microscan/internal/archive"
	"github.com/microscan/microscan/internal/logging"
	"github.com/microscan/microscan/internal/vision"
	"github.com/microscan/microscan/pkg/scoring"
)

// maxBodyBytes bounds request bodies, which carry base64 images.
const maxBodyBytes = 16 << 20

const rootMessage = "MicroScan AI Backend is running. Disclaimer: This tool does not replace laboratory testing."

// Deps are the collaborators a Handler needs. Archive, Alerts and DB are
// optional.
type Deps struct {
	Optical *scoring.Engine
	Algae   *scoring.Engine
	Vision  vision.Analyzer
	Archive *archive.Service
	Alerts  alert.Notifier
	Cache   Cache // defaults to an in-process LRU
	DB      *sql.DB // pinged by /healthz when set
}

// Handler is the top-level API handler for the MicroScan service.
type Handler struct {
	optical *scoring.Engine
	algae   *scoring.Engine
	vision  vision.Analyzer
	archive *archive.Service
	alerts  alert.Notifier
	cache   Cache
	db      *sql.DB
	logger  *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	if d.Cache == nil {
		d.Cache = NewAssessmentCache(0)
	}
	return &Handler{
		optical: d.Optical,
		algae:   d.Algae,
		vision:  d.Vision,
		archive: d.Archive,
		alerts:  d.Alerts,
		cache:   d.Cache,
		db:      d.DB,
		logger:  logging.New("api"),
	}
}

// Routes returns the complete API wrapped in CORS and request logging.
// When apiKey is set, write endpoints require it in X-API-Key.
func (h *Handler) Routes(apiKey string) http.Handler {
	auth := APIKeyAuth(apiKey)

	mux := http.NewServeMux()

	// Write endpoints (auth-protected)
	mux.Handle("POST /api/v1/analyze", auth(http.HandlerFunc(h.handleAnalyze)))
	mux.Handle("POST /api/v1/algae", auth(http.HandlerFunc(h.handleAlgae)))

	// Read endpoints
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /api/v1/assessments", h.handleListAssessments)
	mux.HandleFunc("GET /api/v1/assessments/{id}", h.handleGetAssessment)

	return LogRequests(h.logger, CORS(mux))
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": rootMessage})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"archive": h.archive != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}
