package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danielsaucedo/partstracker-backend/api/responses"
	"github.com/danielsaucedo/partstracker-backend/api/validators"
	partsvc "github.com/danielsaucedo/partstracker-backend/internal/parts"
	"github.com/danielsaucedo/partstracker-backend/pkg/logger"
	"github.com/danielsaucedo/partstracker-backend/pkg/pagination"
)

// ListParts handles the filtered, paginated parts listing.
func ListParts(svc partsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "page_size", pagination.DefaultPageSize, 1, pagination.MaxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := validators.ParseQueryUUID(r, "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lowOnly, err := validators.ParseQueryBool(r, "low_only")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		active, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := partsvc.ListFilter{
			Search:     r.URL.Query().Get("search"),
			SupplierID: supplierID,
			LowOnly:    lowOnly != nil && *lowOnly,
			Active:     active,
			Page:       pagination.Params{Page: page, PageSize: pageSize},
		}

		result, err := svc.ListParts(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetPart returns one part by id.
func GetPart(svc partsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		part, err := svc.GetPart(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, part)
	}
}

type createPartRequest struct {
	Name         string           `json:"name" validate:"required"`
	SKU          string           `json:"sku" validate:"required"`
	Description  string           `json:"description"`
	Quantity     int              `json:"quantity" validate:"min=0"`
	ReorderLevel *int             `json:"reorder_level,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	SupplierID   *uuid.UUID       `json:"supplier_id,omitempty"`
	Barcode      *string          `json:"barcode,omitempty"`
	Location     *string          `json:"location,omitempty"`
	LeadTimeDays int              `json:"lead_time_days" validate:"min=0"`
	IsActive     *bool            `json:"is_active,omitempty"`
}

// CreatePart inserts a new catalog entry.
func CreatePart(svc partsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createPartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		part, err := svc.CreatePart(r.Context(), partsvc.CreatePartInput{
			Name:         payload.Name,
			SKU:          payload.SKU,
			Description:  payload.Description,
			Quantity:     payload.Quantity,
			ReorderLevel: payload.ReorderLevel,
			Price:        payload.Price,
			SupplierID:   payload.SupplierID,
			Barcode:      payload.Barcode,
			Location:     payload.Location,
			LeadTimeDays: payload.LeadTimeDays,
			IsActive:     payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, part)
	}
}

type updatePartRequest struct {
	Name         *string          `json:"name,omitempty"`
	SKU          *string          `json:"sku,omitempty"`
	Description  *string          `json:"description,omitempty"`
	ReorderLevel *int             `json:"reorder_level,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	SupplierID   *uuid.UUID       `json:"supplier_id,omitempty"`
	Barcode      *string          `json:"barcode,omitempty"`
	Location     *string          `json:"location,omitempty"`
	LeadTimeDays *int             `json:"lead_time_days,omitempty"`
	IsActive     *bool            `json:"is_active,omitempty"`
}

// UpdatePart applies a partial update to the catalog entry. Quantity is not
// accepted here; stock changes go through /stock.
func UpdatePart(svc partsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		part, err := svc.UpdatePart(r.Context(), id, partsvc.UpdatePartInput{
			Name:         payload.Name,
			SKU:          payload.SKU,
			Description:  payload.Description,
			ReorderLevel: payload.ReorderLevel,
			Price:        payload.Price,
			SupplierID:   payload.SupplierID,
			Barcode:      payload.Barcode,
			Location:     payload.Location,
			LeadTimeDays: payload.LeadTimeDays,
			IsActive:     payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, part)
	}
}

// DeletePart removes the catalog entry. Admin only, enforced by the route.
func DeletePart(svc partsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeletePart(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
