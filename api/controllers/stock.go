package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/danielsaucedo/partstracker-backend/api/middleware"
	"github.com/danielsaucedo/partstracker-backend/api/responses"
	"github.com/danielsaucedo/partstracker-backend/api/validators"
	"github.com/danielsaucedo/partstracker-backend/internal/ledger"
	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
	"github.com/danielsaucedo/partstracker-backend/pkg/logger"
)

type stockMovementRequest struct {
	PartID   uuid.UUID `json:"part_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
	Note     *string   `json:"note,omitempty"`
}

// StockIn adds quantity to a part through the ledger.
func StockIn(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return stockMovement(svc, logg, enums.MovementTypeIn)
}

// StockOut removes quantity from a part through the ledger, respecting the
// reservation soft hold.
func StockOut(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return stockMovement(svc, logg, enums.MovementTypeOut)
}

func stockMovement(svc ledger.Service, logg *logger.Logger, direction enums.MovementType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload stockMovementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		newQty, err := svc.ApplyManualMovement(r.Context(), ledger.ManualMovementInput{
			PartID:    payload.PartID,
			Direction: direction,
			Quantity:  payload.Quantity,
			Note:      payload.Note,
			ActorID:   middleware.ActorUUID(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"new_quantity": newQty})
	}
}

// ListStockMovements returns the newest audit records, optionally filtered to
// one part.
func ListStockMovements(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partID, err := validators.ParseQueryUUID(r, "part_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListMovements(r.Context(), partID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}
