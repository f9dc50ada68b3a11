package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/services"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/infrastructure/database/repository"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/credentials"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// ScanHandler handles scan trigger endpoints
type ScanHandler struct {
	scans  *services.ScanService
	logger *logger.Logger
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(scans *services.ScanService, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		scans:  scans,
		logger: log.WithComponent("scan-handler"),
	}
}

// Trigger handles POST /api/v1/accounts/{id}/scan. The scan runs
// synchronously; the response carries this run's findings and per-area
// statuses so callers can tell a partial scan from a full one.
func (h *ScanHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	summary, err := h.scans.Scan(r.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "account not found")
		case errors.Is(err, services.ErrScanInProgress):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, credentials.ErrNoUsableCredentials):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.Error().Err(err).Str("account_id", accountID.String()).Msg("scan failed")
			writeError(w, http.StatusBadGateway, "scan failed: "+err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
