package controllers

import (
	"net/http"
	"time"

	"github.com/danielsaucedo/partstracker-backend/api/responses"
	"github.com/danielsaucedo/partstracker-backend/pkg/config"
)

func Health(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"status": "ok",
			"env":    cfg.App.Env,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
