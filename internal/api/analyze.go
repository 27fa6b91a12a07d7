package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/microscan/microscan/pkg/scoring"
	"github.com/microscan/microscan/pkg/signal"
)

type opticalMetrics struct {
	TurbidityScore *float64 `json:"turbidityScore"`
	EdgeDensity    *float64 `json:"edgeDensity"`
	LabVariance    *float64 `json:"labVariance"`
}

func (m *opticalMetrics) complete() bool {
	return m != nil && m.TurbidityScore != nil && m.EdgeDensity != nil && m.LabVariance != nil
}

// analyzeRequest is the JSON body for POST /api/v1/analyze.
type analyzeRequest struct {
	ImageBase64    string          `json:"image_base64"`
	OpticalMetrics *opticalMetrics `json:"optical_metrics"`
	GeoLat         *float64        `json:"geo_lat"`
	GeoLon         *float64        `json:"geo_lon"`
	Embeddings     []float64       `json:"embeddings"`
}

type geminiAnalysis struct {
	Mode            string               `json:"mode_detected"`
	Severity        string               `json:"severity_level"`
	Reasoning       string               `json:"reasoning"`
	VisualAnalysis  string               `json:"visual_analysis"`
	ScoreBreakdown  []signal.FactorScore `json:"score_breakdown"`
	PotentialHarms  []string             `json:"potential_harms"`
	Recommendations []string             `json:"recommendations"`
	Details         string               `json:"details"`
	Tags            []string             `json:"tags"`
}

type analyzeResponse struct {
	Status             string             `json:"status"`
	ID                 string             `json:"id,omitempty"`
	RiskScore          int                `json:"risk_score"`
	RiskLevel          scoring.Tier       `json:"risk_level"`
	Drivers            []scoring.Driver   `json:"drivers"`
	Action             string             `json:"action"`
	ManagementActions  []string           `json:"management_actions"`
	GeminiAnalysis     geminiAnalysis     `json:"gemini_analysis"`
	TechnicalBreakdown map[string]float64 `json:"technical_breakdown"`
}

// technicalKeys maps response keys to the optical rule keys behind them.
var technicalKeys = map[string]string{
	"turbidity_contribution":    "turbidity_contribution",
	"edge_contribution":         "edge_contribution",
	"lab_variance_contribution": "lab_variance_contribution",
	"ai_expert_contribution":    "ai_expert",
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ImageBase64 == "" {
		writeError(w, http.StatusBadRequest, "image_base64 is required")
		return
	}
	if !req.OpticalMetrics.complete() {
		writeError(w, http.StatusBadRequest, "optical_metrics requires turbidityScore, edgeDensity and labVariance")
		return
	}

	assessment := h.assess(r.Context(), scoring.VariantMicroplastic, req.ImageBase64)

	m := req.OpticalMetrics
	result, err := h.optical.Score(scoring.Input{
		Signals:    signal.OpticalSignals(*m.TurbidityScore, *m.EdgeDensity, *m.LabVariance),
		Assessment: &assessment,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "scoring failed: "+err.Error())
		return
	}

	resp := analyzeResponse{
		Status:             "success",
		ID:                 h.record(r.Context(), result),
		RiskScore:          result.Score,
		RiskLevel:          result.Tier,
		Drivers:            result.Drivers,
		Action:             result.PrimaryAction,
		ManagementActions:  result.Actions,
		GeminiAnalysis:     toGeminiAnalysis(assessment),
		TechnicalBreakdown: make(map[string]float64, len(technicalKeys)),
	}
	for name, key := range technicalKeys {
		resp.TechnicalBreakdown[name] = result.Points(key)
	}

	writeJSON(w, http.StatusOK, resp)
}

func toGeminiAnalysis(a signal.Assessment) geminiAnalysis {
	g := geminiAnalysis{
		Mode:            a.Mode,
		Severity:        a.Severity,
		Reasoning:       a.Reasoning,
		VisualAnalysis:  a.VisualAnalysis,
		ScoreBreakdown:  a.Breakdown,
		PotentialHarms:  a.Harms,
		Recommendations: a.Recommendations,
		Details:         a.Details,
		Tags:            a.Tags,
	}
	if g.Mode == "" {
		g.Mode = "Unknown"
	}
	if g.Severity == "" {
		g.Severity = "Unknown"
	}
	if g.ScoreBreakdown == nil {
		g.ScoreBreakdown = []signal.FactorScore{}
	}
	if g.PotentialHarms == nil {
		g.PotentialHarms = []string{}
	}
	if g.Recommendations == nil {
		g.Recommendations = []string{}
	}
	return g
}

// assess runs the vision analysis, consulting the cache first. Degraded
// assessments are not cached so a transient failure is retried next time.
func (h *Handler) assess(ctx context.Context, variant scoring.Variant, image string) signal.Assessment {
	key := ImageKey(variant, image)
	if a, ok := h.cache.Get(ctx, key); ok {
		return a
	}
	a := h.vision.Analyze(ctx, variant, image)
	if !a.Degraded {
		h.cache.Put(ctx, key, a)
	}
	return a
}

// record archives result when an archive is configured and passes it to the
// alert notifier. Failures are logged; an unarchived result has an empty id.
func (h *Handler) record(ctx context.Context, result *scoring.RiskResult) string {
	var id string
	if h.archive != nil {
		var err error
		if id, err = h.archive.Record(ctx, result); err != nil {
			h.logger.Warn("archiving assessment failed", "variant", result.Variant, "error", err)
			id = ""
		}
	}
	if h.alerts != nil {
		if err := h.alerts.Notify(ctx, id, result); err != nil {
			h.logger.Warn("publishing advisory failed", "variant", result.Variant, "error", err)
		}
	}
	return id
}

// rawPresent reports whether an optional JSON field carried a value.
func rawPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
