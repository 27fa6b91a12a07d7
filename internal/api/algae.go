package api

import (
	"encoding/json"
	"net/http"

	"github.com/microscan/microscan/pkg/scoring"
	"github.com/microscan/microscan/pkg/signal"
)

// algaeRequest is the JSON body for POST /api/v1/algae.
type algaeRequest struct {
	USGSData       *signal.SensorReport `json:"usgs_data"`
	GeminiAnalysis json.RawMessage      `json:"gemini_analysis"`
	ImageBase64    string               `json:"image_base64"`
}

type algaeResponse struct {
	ID       string `json:"id,omitempty"`
	SiteName string `json:"site_name,omitempty"`
	SiteCode string `json:"site_code,omitempty"`
	*scoring.RiskResult
}

func (h *Handler) handleAlgae(w http.ResponseWriter, r *http.Request) {
	var req algaeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	in := scoring.Input{Signals: signal.NewSet()}
	if req.USGSData != nil {
		in.Signals = signal.ExtractWaterQuality(req.USGSData.Parameters)
	}

	switch {
	case rawPresent(req.GeminiAnalysis):
		var a signal.Assessment
		if err := json.Unmarshal(req.GeminiAnalysis, &a); err != nil {
			writeError(w, http.StatusBadRequest, "gemini_analysis must be an object: "+err.Error())
			return
		}
		in.Assessment = &a
	case req.ImageBase64 != "":
		a := h.assess(r.Context(), scoring.VariantAlgae, req.ImageBase64)
		in.Assessment = &a
	}

	result, err := h.algae.Score(in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "scoring failed: "+err.Error())
		return
	}

	resp := algaeResponse{
		ID:         h.record(r.Context(), result),
		RiskResult: result,
	}
	if req.USGSData != nil {
		resp.SiteName = req.USGSData.SiteName
		resp.SiteCode = req.USGSData.SiteCode
	}
	writeJSON(w, http.StatusOK, resp)
}
