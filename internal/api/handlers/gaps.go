package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/services"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// GapHandler handles gap report endpoints
type GapHandler struct {
	gaps   *services.GapService
	logger *logger.Logger
}

// NewGapHandler creates a new GapHandler
func NewGapHandler(gaps *services.GapService, log *logger.Logger) *GapHandler {
	return &GapHandler{
		gaps:   gaps,
		logger: log.WithComponent("gap-handler"),
	}
}

// Get handles GET /api/v1/orgs/{id}/gaps. ?refresh=true bypasses the
// cached report.
func (h *GapHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid org id")
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"
	report, err := h.gaps.Report(r.Context(), orgID, refresh)
	if err != nil {
		h.logger.Error().Err(err).Str("org_id", orgID.String()).Msg("failed to compute gap report")
		writeError(w, http.StatusInternalServerError, "failed to compute gap report")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
