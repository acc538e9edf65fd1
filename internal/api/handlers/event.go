package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/api/middleware"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/store"
)

const defaultEventLimit = 50

type EventHandler struct {
	events domain.RawEventStore
	logger *zap.Logger
}

func NewEventHandler(events domain.RawEventStore, logger *zap.Logger) *EventHandler {
	return &EventHandler{events: events, logger: logger}
}

// List returns the most recent raw events for a user.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
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

	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	events, err := h.events.ListByUser(r.Context(), account.ID, userID, limit)
	if err != nil {
		h.logger.Error("list events", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []domain.RawEvent{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

// Get returns one raw event by its content id.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeError(w, http.StatusUnauthorized, "account not found in context")
		return
	}

	id := chi.URLParam(r, "id")
	event, err := h.events.GetByID(r.Context(), account.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		h.logger.Error("get event", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}

	writeJSON(w, http.StatusOK, event)
}
