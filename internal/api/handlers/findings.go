package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/infrastructure/database/repository"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// FindingsHandler handles finding read endpoints
type FindingsHandler struct {
	repos  *repository.Repositories
	logger *logger.Logger
}

// NewFindingsHandler creates a new FindingsHandler
func NewFindingsHandler(repos *repository.Repositories, log *logger.Logger) *FindingsHandler {
	return &FindingsHandler{
		repos:  repos,
		logger: log.WithComponent("findings"),
	}
}

// ListByAccount handles GET /api/v1/accounts/{id}/findings
func (h *FindingsHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	limit, offset := pagination(r)
	findings, err := h.repos.Findings.ListByAccount(r.Context(), accountID, limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Str("account_id", accountID.String()).Msg("failed to list findings")
		writeError(w, http.StatusInternalServerError, "failed to list findings")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"data":  findings,
		"total": len(findings),
	})
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 100
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 1000 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
