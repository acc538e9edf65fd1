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

type FactHandler struct {
	facts    domain.FactStore
	embedder domain.EmbeddingClient
	logger   *zap.Logger
}

func NewFactHandler(facts domain.FactStore, embedder domain.EmbeddingClient, logger *zap.Logger) *FactHandler {
	return &FactHandler{facts: facts, embedder: embedder, logger: logger}
}

// List returns the active facts for a user.
func (h *FactHandler) List(w http.ResponseWriter, r *http.Request) {
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

	facts, err := h.facts.ListActiveByUser(r.Context(), account.ID, userID)
	if err != nil {
		h.logger.Error("list facts", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list facts")
		return
	}
	if facts == nil {
		facts = []domain.Fact{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"facts": facts, "count": len(facts)})
}

// Get returns a single fact by its content id.
func (h *FactHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeError(w, http.StatusUnauthorized, "account not found in context")
		return
	}

	id := chi.URLParam(r, "id")
	fact, err := h.facts.GetByID(r.Context(), account.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "fact not found")
			return
		}
		h.logger.Error("get fact", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get fact")
		return
	}

	writeJSON(w, http.StatusOK, fact)
}

// Search finds facts semantically close to a free-text query via the
// embedding index.
func (h *FactHandler) Search(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeError(w, http.StatusUnauthorized, "account not found in context")
		return
	}
	if h.embedder == nil {
		writeError(w, http.StatusServiceUnavailable, "search not configured")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	vec, err := h.embedder.Embed(r.Context(), query)
	if err != nil {
		h.logger.Error("embed search query", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to embed query")
		return
	}

	results, err := h.facts.FindSimilar(r.Context(), account.ID, vec, limit)
	if err != nil {
		h.logger.Error("search facts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to search facts")
		return
	}
	if results == nil {
		results = []domain.FactWithScore{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

// ListByEntity returns all stored facts about one entity, current and
// superseded alike.
func (h *FactHandler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		writeError(w, http.StatusUnauthorized, "account not found in context")
		return
	}

	entityID := chi.URLParam(r, "id")
	facts, err := h.facts.ListByEntity(r.Context(), account.ID, entityID)
	if err != nil {
		h.logger.Error("list facts by entity", zap.String("entity_id", entityID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list facts")
		return
	}
	if facts == nil {
		facts = []domain.Fact{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"facts": facts, "count": len(facts)})
}
