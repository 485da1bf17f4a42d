package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danielsaucedo/partstracker-backend/api/middleware"
	"github.com/danielsaucedo/partstracker-backend/api/responses"
	"github.com/danielsaucedo/partstracker-backend/api/validators"
	"github.com/danielsaucedo/partstracker-backend/internal/ledger"
	posvc "github.com/danielsaucedo/partstracker-backend/internal/purchaseorders"
	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
	"github.com/danielsaucedo/partstracker-backend/pkg/logger"
)

type orderItemRequest struct {
	PartID uuid.UUID        `json:"part_id" validate:"required"`
	Qty    int              `json:"qty_ordered" validate:"required,gt=0"`
	Price  *decimal.Decimal `json:"price,omitempty"`
}

type createOrderRequest struct {
	SupplierID   *uuid.UUID         `json:"supplier_id,omitempty"`
	Status       string             `json:"status,omitempty"`
	ExpectedDate *time.Time         `json:"expected_date,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
	Items        []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type updateOrderRequest struct {
	SupplierID   *uuid.UUID `json:"supplier_id,omitempty"`
	Status       *string    `json:"status,omitempty"`
	ExpectedDate *time.Time `json:"expected_date,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

// Zero and negative qty_received pass through so the ledger can report them
// as skipped lines; an absent items array is a status-only receive.
type receiveItemRequest struct {
	PartID uuid.UUID `json:"part_id" validate:"required"`
	Qty    int       `json:"qty_received"`
}

type receiveOrderRequest struct {
	Items  []receiveItemRequest `json:"items,omitempty" validate:"dive"`
	Status string               `json:"status,omitempty"`
}

// ListPurchaseOrders returns recent orders with their supplier names.
func ListPurchaseOrders(svc posvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListOrders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}

// GetPurchaseOrder returns one order with its lines.
func GetPurchaseOrder(svc posvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// CreatePurchaseOrder inserts an order header plus its lines atomically.
func CreatePurchaseOrder(svc posvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := posvc.CreateOrderInput{
			SupplierID:   payload.SupplierID,
			Status:       enums.PurchaseOrderStatus(payload.Status),
			ExpectedDate: payload.ExpectedDate,
			Notes:        payload.Notes,
			CreatedBy:    middleware.ActorUUID(r.Context()),
		}
		for _, item := range payload.Items {
			input.Items = append(input.Items, posvc.OrderItemInput{
				PartID: item.PartID,
				Qty:    item.Qty,
				Price:  item.Price,
			})
		}

		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// UpdatePurchaseOrder mutates the order header. Lines are immutable here.
func UpdatePurchaseOrder(svc posvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := posvc.UpdateOrderInput{
			SupplierID:   payload.SupplierID,
			ExpectedDate: payload.ExpectedDate,
			Notes:        payload.Notes,
		}
		if payload.Status != nil {
			status := enums.PurchaseOrderStatus(*payload.Status)
			input.Status = &status
		}

		order, err := svc.UpdateOrder(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ReceivePurchaseOrder books deliveries against the order's open lines through
// the inventory ledger.
func ReceivePurchaseOrder(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload receiveOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ledger.ReceiveInput{
			PurchaseOrderID: id,
			Status:          enums.PurchaseOrderStatus(payload.Status),
			ActorID:         middleware.ActorUUID(r.Context()),
		}
		for _, item := range payload.Items {
			input.Items = append(input.Items, ledger.ReceiveItem{
				PartID: item.PartID,
				Qty:    item.Qty,
			})
		}

		result, err := svc.ReceivePurchaseOrderItems(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
