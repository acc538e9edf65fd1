package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/api/middleware"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/store"
)

type ConflictHandler struct {
	conflicts domain.ConflictStore
	logger    *zap.Logger
}

func NewConflictHandler(conflicts domain.ConflictStore, logger *zap.Logger) *ConflictHandler {
	return &ConflictHandler{conflicts: conflicts, logger: logger}
}

// List returns the open conflict tickets for a user.
func (h *ConflictHandler) List(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeError(w, http.StatusUnauthorized, "account not found in context")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	tickets, err := h.conflicts.ListOpen(r.Context(), account.ID, userID)
	if err != nil {
		h.logger.Error("list conflicts", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list conflicts")
		return
	}
	if tickets == nil {
		tickets = []domain.ConflictTicket{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"conflicts": tickets, "count": len(tickets)})
}

// Resolve closes an open ticket. The winning fact, if any, reaches the
// knowledge base through a fresh ingest with user confirmation, not here.
func (h *ConflictHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeError(w, http.StatusUnauthorized, "account not found in context")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conflict id")
		return
	}

	if err := h.conflicts.Resolve(r.Context(), account.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "open conflict not found")
			return
		}
		h.logger.Error("resolve conflict", zap.String("id", id.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to resolve conflict")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}
