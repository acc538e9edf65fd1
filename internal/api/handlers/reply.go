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

type ReplyHandler struct {
	ingest            *service.IngestService
	reply             *service.ReplyService
	defaultExtractors []string
	logger            *zap.Logger
}

func NewReplyHandler(ingest *service.IngestService, reply *service.ReplyService, defaultExtractors []string, logger *zap.Logger) *ReplyHandler {
	return &ReplyHandler{
		ingest:            ingest,
		reply:             reply,
		defaultExtractors: defaultExtractors,
		logger:            logger,
	}
}

type replyResponse struct {
	Record *domain.DecisionRecord `json:"record"`
	Reply  string                 `json:"reply"`
}

// Generate runs one engine turn and renders the decision into user-facing
// text at the decided intervention level.
func (h *ReplyHandler) Generate(w http.ResponseWriter, r *http.Request) {
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

	reply, err := h.reply.Generate(r.Context(), result.Record)
	if err != nil {
		if errors.Is(err, service.ErrReplyClientMissing) {
			writeError(w, http.StatusServiceUnavailable, "reply generation not configured")
			return
		}
		writeError(w, http.StatusBadGateway, "reply generation failed")
		return
	}

	writeJSON(w, http.StatusOK, replyResponse{Record: result.Record, Reply: reply})
}
