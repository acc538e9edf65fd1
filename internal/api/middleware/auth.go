package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

type contextKey string

const accountContextKey contextKey = "account"

func AccountFromContext(ctx context.Context) *domain.Account {
	a, _ := ctx.Value(accountContextKey).(*domain.Account)
	return a
}

// APIKeyAuth authenticates requests by the SHA-256 hash of the presented
// bearer key and stores the account on the request context.
func APIKeyAuth(accounts domain.AccountStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "invalid authorization header format")
				return
			}

			account, err := accounts.GetByAPIKeyHash(r.Context(), hashAPIKey(parts[1]))
			if err != nil {
				unauthorized(w, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), accountContextKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// HashAPIKey is exported for use when creating accounts.
func HashAPIKey(key string) string {
	return hashAPIKey(key)
}

// unauthorized rejects the request with a 401 JSON body. Auth runs before
// the handler layer, so it cannot borrow the handlers' response helpers
// without an import cycle; rejection is the only error this package writes.
func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
