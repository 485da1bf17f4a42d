package controllers

import (
	"context"
	"net/http"

	"github.com/danielsaucedo/partstracker-backend/api/middleware"
	"github.com/danielsaucedo/partstracker-backend/api/responses"
	"github.com/danielsaucedo/partstracker-backend/api/validators"
	authsvc "github.com/danielsaucedo/partstracker-backend/internal/auth"
	pkgerrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
	"github.com/danielsaucedo/partstracker-backend/pkg/logger"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthLogin exchanges credentials for an opaque bearer token.
func AuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload.Username, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AuthLogout discards the presented bearer token.
func AuthLogout(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context(), middleware.BearerToken(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"logged_out": true})
	}
}

// AuthMe returns the authenticated identity from the request context.
func AuthMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"user": map[string]string{
				"id":       userID,
				"username": middleware.UsernameFromContext(r.Context()),
				"role":     middleware.RoleFromContext(r.Context()),
			},
		})
	}
}

// TokenResolver adapts the auth service to the middleware contract.
type TokenResolver struct {
	Svc authsvc.Service
}

func (t TokenResolver) Resolve(ctx context.Context, token string) (string, string, string, error) {
	user, err := t.Svc.ResolveToken(ctx, token)
	if err != nil {
		return "", "", "", err
	}
	return user.ID.String(), user.Username, user.Role.String(), nil
}
