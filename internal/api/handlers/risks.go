package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/infrastructure/database/repository"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// RisksHandler handles risk register read endpoints
type RisksHandler struct {
	repos  *repository.Repositories
	logger *logger.Logger
}

// NewRisksHandler creates a new RisksHandler
func NewRisksHandler(repos *repository.Repositories, log *logger.Logger) *RisksHandler {
	return &RisksHandler{
		repos:  repos,
		logger: log.WithComponent("risks"),
	}
}

// ListByOrg handles GET /api/v1/orgs/{id}/risks
func (h *RisksHandler) ListByOrg(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid org id")
		return
	}

	limit, offset := pagination(r)
	risks, err := h.repos.Risks.ListByOrg(r.Context(), orgID, limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Str("org_id", orgID.String()).Msg("failed to list risks")
		writeError(w, http.StatusInternalServerError, "failed to list risks")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"data":  risks,
		"total": len(risks),
	})
}
