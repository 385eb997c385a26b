package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type contextKey string

// ClaimsKey is the request-context key holding validated *Claims.
const ClaimsKey contextKey = "auth_claims"

// Middleware guards the dashboard routes with bearer-token authentication.
// When verification is disabled it is a pass-through.
type Middleware struct {
	verifier Verifier
	enabled  bool
	logger   *zap.Logger
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(verifier Verifier, enabled bool, logger *zap.Logger) *Middleware {
	return &Middleware{verifier: verifier, enabled: enabled, logger: logger}
}

// RequireAuth validates the Authorization bearer token and puts the claims in
// the request context for downstream handlers.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			m.unauthorized(w, "Authentication required")
			return
		}

		claims, err := m.verifier.ValidateToken(token)
		if err != nil {
			m.logger.Debug("Token validation failed", zap.Error(err))
			m.unauthorized(w, "Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// GetClaims returns the validated claims from the request context, if any.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}
