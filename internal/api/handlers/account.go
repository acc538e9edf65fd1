package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/api/middleware"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

type AccountHandler struct {
	accounts domain.AccountStore
	logger   *zap.Logger
}

func NewAccountHandler(accounts domain.AccountStore, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

type createAccountRequest struct {
	Name string `json:"name"`
}

type createAccountResponse struct {
	Account *domain.Account `json:"account"`
	// APIKey is shown exactly once. Only its hash is stored.
	APIKey string `json:"api_key"`
}

// Create bootstraps a new account and returns the generated API key.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	key, err := generateAPIKey()
	if err != nil {
		h.logger.Error("generate api key", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	account := &domain.Account{
		Name:       strings.TrimSpace(req.Name),
		APIKeyHash: middleware.HashAPIKey(key),
	}
	if err := h.accounts.Create(r.Context(), account); err != nil {
		h.logger.Error("create account", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, createAccountResponse{Account: account, APIKey: key})
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "ak_" + hex.EncodeToString(buf), nil
}
