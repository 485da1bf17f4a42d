package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/danielsaucedo/partstracker-backend/api/middleware"
	"github.com/danielsaucedo/partstracker-backend/api/responses"
	"github.com/danielsaucedo/partstracker-backend/api/validators"
	"github.com/danielsaucedo/partstracker-backend/internal/ledger"
	ressvc "github.com/danielsaucedo/partstracker-backend/internal/reservations"
	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
	apperrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
	"github.com/danielsaucedo/partstracker-backend/pkg/logger"
)

type createReservationRequest struct {
	PartID        uuid.UUID `json:"part_id" validate:"required"`
	ReservedQty   int       `json:"reserved_qty" validate:"required,gt=0"`
	ReferenceCode *string   `json:"reference_code,omitempty"`
	Note          *string   `json:"note,omitempty"`
}

type reservationStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListReservations returns recent reservations with their part names.
func ListReservations(svc ressvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListReservations(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}

// CreateReservation places a soft hold on a part.
func CreateReservation(svc ressvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createReservationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.CreateReservation(r.Context(), ressvc.CreateInput{
			PartID:        payload.PartID,
			ReservedQty:   payload.ReservedQty,
			ReferenceCode: payload.ReferenceCode,
			Note:          payload.Note,
			CreatedBy:     middleware.ActorUUID(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reservation)
	}
}

// TransitionReservation moves a reservation through its lifecycle. Fulfilling
// stocks out the held quantity through the inventory ledger.
func TransitionReservation(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reservationStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseReservationStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				apperrors.New(apperrors.CodeValidation, err.Error()))
			return
		}

		result, err := svc.TransitionReservationStatus(r.Context(), ledger.TransitionInput{
			ReservationID: id,
			NewStatus:     status,
			ActorID:       middleware.ActorUUID(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
