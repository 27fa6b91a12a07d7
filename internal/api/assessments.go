package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/microscan/microscan/internal/archive"
)

func (h *Handler) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "assessment archive is not enabled")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.archive.List(r.Context(), limit)
	if errors.Is(err, archive.ErrNoIndex) {
		writeError(w, http.StatusNotImplemented, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assessments: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"assessments": entries})
}

func (h *Handler) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "assessment archive is not enabled")
		return
	}

	rec, err := h.archive.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, archive.ErrNotFound) {
		writeError(w, http.StatusNotFound, "assessment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load assessment: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
