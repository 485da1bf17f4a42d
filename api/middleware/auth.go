package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielsaucedo/partstracker-backend/api/responses"
	pkgerrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
	"github.com/danielsaucedo/partstracker-backend/pkg/logger"
)

// TokenResolver maps an opaque bearer token to an authenticated identity.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (userID, username, role string, err error)
}

// BearerToken extracts the token from the Authorization header; empty string
// when the header is missing or malformed.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

// Auth validates the bearer token against the token store and seeds the
// request context with the user's identity.
func Auth(resolver TokenResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			userID, username, role, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUser(r.Context(), userID, username, role)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    userID,
					"actor_role": role,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
