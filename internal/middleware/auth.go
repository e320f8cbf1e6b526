package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nberthet/depotvente/internal/auth"
	"github.com/nberthet/depotvente/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// tokenKey is the context key for the authenticated token.
const tokenKey contextKey = "auth_token"

// TokenFrom extracts the authenticated token from the context.
// Returns nil if the request was not authenticated.
func TokenFrom(ctx context.Context) *auth.Token {
	tok, _ := ctx.Value(tokenKey).(*auth.Token)
	return tok
}

// writeAuthError responds with the same JSON envelope the handlers use
// for error bodies.
func writeAuthError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "kind": "unauthorized"})
}

// RequireAuth validates the bearer token and adds the authenticated
// identity to the request context. Requests without a valid token get 401.
func RequireAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, err := tokenFromHeader(tokens, r)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tokenKey, tok)))
		})
	}
}

// RequireRole is RequireAuth plus a role check; other roles get 403.
func RequireRole(tokens *auth.TokenManager, roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, err := tokenFromHeader(tokens, r)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, err.Error())
				return
			}
			if !allowed[tok.Role] {
				writeAuthError(w, http.StatusForbidden, "forbidden for role "+string(tok.Role))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tokenKey, tok)))
		})
	}
}

// OptionalAuth adds the identity to the context when a valid token is
// present but lets unauthenticated requests through. Used on the public
// listing endpoint.
func OptionalAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok, err := tokenFromHeader(tokens, r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), tokenKey, tok))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromHeader(tokens *auth.TokenManager, r *http.Request) (*auth.Token, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, auth.ErrInvalidToken
	}
	return tokens.Validate(parts[1])
}
