package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/api/middleware"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/service"
)

type IngestHandler struct {
	ingest     *service.IngestService
	satellites *service.SatelliteRunner
	// defaultExtractors applies when a request omits extractor_ids entirely.
	// An explicit empty list still means extraction off.
	defaultExtractors []string
	logger            *zap.Logger
}

func NewIngestHandler(ingest *service.IngestService, satellites *service.SatelliteRunner, defaultExtractors []string, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{
		ingest:            ingest,
		satellites:        satellites,
		defaultExtractors: defaultExtractors,
		logger:            logger,
	}
}

type ingestResponse struct {
	Record     *domain.DecisionRecord             `json:"record"`
	Plan       domain.WritePlan                   `json:"plan"`
	Exec       *domain.ExecResult                 `json:"exec,omitempty"`
	DryRun     bool                               `json:"dry_run"`
	Satellites map[string]*domain.SatelliteResult `json:"satellites,omitempty"`
}

// Ingest runs one engine turn over the posted message and persists the
// resulting write plan, unless dry_run previews it instead.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeError(w, http.StatusUnauthorized, "account not found in context")
		return
	}

	var req service.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ExtractorIDs == nil {
		req.ExtractorIDs = h.defaultExtractors
	}

	result, err := h.ingest.Ingest(r.Context(), account.ID, req)
	if err != nil {
		if errors.Is(err, service.ErrIngestUserIDMissing) || errors.Is(err, service.ErrIngestTextMissing) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("ingest failed", zap.String("user_id", req.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "ingest failed")
		return
	}

	resp := ingestResponse{
		Record: result.Record,
		Plan:   result.Plan,
		Exec:   result.Exec,
		DryRun: result.DryRun,
	}
	if h.satellites != nil && !result.DryRun {
		resp.Satellites = h.satellites.Run(r.Context(), account.ID, result.Record)
	}

	writeJSON(w, http.StatusOK, resp)
}
