package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"guild-backend/internal/model"
)

type contextKey string

// claimsContextKey is where validated token claims live in the request context.
const claimsContextKey contextKey = "claims"

// Middleware enforces bearer-token authentication on HTTP routes.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Authenticate validates the Authorization header and injects the claims
// into the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.claimsFromRequest(r)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin validates the token and additionally requires the admin role.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.claimsFromRequest(r)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if claims.Role != model.RoleAdmin {
			log.Warn().
				Str("user_id", claims.UserID.String()).
				Str("path", r.URL.Path).
				Msg("Admin route denied for non-admin user")
			writeAuthError(w, http.StatusForbidden, "admin access required")
			return
		}
		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) claimsFromRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errMissingToken
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return nil, errMalformedHeader
	}
	claims, err := m.tokens.Validate(token)
	if err != nil {
		return nil, errInvalidToken
	}
	return claims, nil
}

// ClaimsFromContext returns the claims injected by the middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"kind":    kindForStatus(status),
			"message": message,
		},
	})
}

func kindForStatus(status int) string {
	if status == http.StatusForbidden {
		return "forbidden"
	}
	return "unauthorized"
}
