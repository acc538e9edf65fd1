package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/api/middleware"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/store"
)

type HaltungHandler struct {
	haltung domain.HaltungStore
	logger  *zap.Logger
}

func NewHaltungHandler(haltung domain.HaltungStore, logger *zap.Logger) *HaltungHandler {
	return &HaltungHandler{haltung: haltung, logger: logger}
}

// Get returns the user's current stance. A user the system has never
// adjusted for gets the default state rather than a 404.
func (h *HaltungHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeError(w, http.StatusUnauthorized, "account not found in context")
		return
	}

	userID := chi.URLParam(r, "userID")
	stance, err := h.haltung.Get(r.Context(), account.ID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			def := domain.DefaultStance()
			writeJSON(w, http.StatusOK, def)
			return
		}
		h.logger.Error("get haltung", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get haltung")
		return
	}

	writeJSON(w, http.StatusOK, stance)
}
