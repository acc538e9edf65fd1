package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/api/middleware"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/store"
)

// EntityReader is the read side of the entity store.
type EntityReader interface {
	GetByID(ctx context.Context, accountID uuid.UUID, id string) (*domain.Entity, error)
	ListByUser(ctx context.Context, accountID uuid.UUID, userID string) ([]domain.Entity, error)
}

type EntityHandler struct {
	entities EntityReader
	logger   *zap.Logger
}

func NewEntityHandler(entities EntityReader, logger *zap.Logger) *EntityHandler {
	return &EntityHandler{entities: entities, logger: logger}
}

func (h *EntityHandler) List(w http.ResponseWriter, r *http.Request) {
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

	entities, err := h.entities.ListByUser(r.Context(), account.ID, userID)
	if err != nil {
		h.logger.Error("list entities", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list entities")
		return
	}
	if entities == nil {
		entities = []domain.Entity{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"entities": entities, "count": len(entities)})
}

func (h *EntityHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeError(w, http.StatusUnauthorized, "account not found in context")
		return
	}

	id := chi.URLParam(r, "id")
	entity, err := h.entities.GetByID(r.Context(), account.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "entity not found")
			return
		}
		h.logger.Error("get entity", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get entity")
		return
	}

	writeJSON(w, http.StatusOK, entity)
}
