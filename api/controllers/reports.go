package controllers

import (
	"net/http"

	"github.com/danielsaucedo/partstracker-backend/api/responses"
	reportsvc "github.com/danielsaucedo/partstracker-backend/internal/reports"
	"github.com/danielsaucedo/partstracker-backend/pkg/logger"
)

// InventorySummary returns catalog-wide counts and the inventory value.
func InventorySummary(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// SlowMovers lists the parts with the least outbound movement.
func SlowMovers(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.SlowMovers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}

// LowStockAlerts lists parts at or below their reorder level.
func LowStockAlerts(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.LowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}
