package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
	pkgerrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// auditLogger receives best-effort audit events after a ledger transaction
// commits. Implementations must never fail the caller.
type auditLogger interface {
	Event(ctx context.Context, level, message string, fields map[string]any)
}

// Service serializes and validates every operation that changes a part's
// on-hand quantity, keeping the movement audit trail consistent with the live
// count and enforcing the reservation soft hold.
type Service interface {
	ApplyManualMovement(ctx context.Context, input ManualMovementInput) (int, error)
	ReceivePurchaseOrderItems(ctx context.Context, input ReceiveInput) (*ReceiveResult, error)
	TransitionReservationStatus(ctx context.Context, input TransitionInput) (*TransitionResult, error)
	ListMovements(ctx context.Context, partID *uuid.UUID, limit int) ([]MovementRecord, error)
}

// ManualMovementInput describes a manual stock in/out request.
type ManualMovementInput struct {
	PartID    uuid.UUID
	Direction enums.MovementType
	Quantity  int
	Note      *string
	ActorID   *uuid.UUID
}

// ReceiveItem is one requested line receipt on a purchase order.
type ReceiveItem struct {
	PartID uuid.UUID
	Qty    int
}

// ReceiveInput describes a purchase-order receiving request.
type ReceiveInput struct {
	PurchaseOrderID uuid.UUID
	Items           []ReceiveItem
	Status          enums.PurchaseOrderStatus
	ActorID         *uuid.UUID
}

// ReceiveItemResult reports the per-line outcome of a receive request.
// Lines are never fatal: unknown or already-complete lines are skipped with a
// reason instead of aborting the transaction.
type ReceiveItemResult struct {
	PartID  uuid.UUID `json:"part_id"`
	Applied int       `json:"applied"`
	Skipped bool      `json:"skipped"`
	Reason  string    `json:"reason,omitempty"`
}

// ReceiveResult is the aggregate outcome of a receive request.
type ReceiveResult struct {
	Received bool                `json:"received"`
	Items    []ReceiveItemResult `json:"items"`
}

// TransitionInput describes a reservation status-transition request.
type TransitionInput struct {
	ReservationID uuid.UUID
	NewStatus     enums.ReservationStatus
	ActorID       *uuid.UUID
}

// TransitionResult reports the applied transition and any stock side effect.
type TransitionResult struct {
	Updated     bool                    `json:"updated"`
	Status      enums.ReservationStatus `json:"status"`
	NewQuantity *int                    `json:"new_quantity,omitempty"`
}

type service struct {
	tx    txRunner
	repo  *Repository
	audit auditLogger
}

// NewService builds the inventory ledger.
func NewService(tx txRunner, repo *Repository, audit auditLogger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository required")
	}
	return &service{tx: tx, repo: repo, audit: audit}, nil
}

// ApplyManualMovement moves stock in or out of a part under the part's row
// lock. Stock-outs respect the reservation soft hold: open reservations
// reduce what a manual withdrawal may take even though they have not been
// deducted from the on-hand count yet.
func (s *service) ApplyManualMovement(ctx context.Context, input ManualMovementInput) (int, error) {
	if input.PartID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "part_id required")
	}
	if !input.Direction.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "direction must be in or out")
	}
	if input.Quantity <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}

	var newQuantity int
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		part, err := repo.LockPart(ctx, input.PartID)
		if err != nil {
			return err
		}

		if input.Direction == enums.MovementTypeOut {
			openReserved, err := repo.OpenReservationTotal(ctx, input.PartID)
			if err != nil {
				return err
			}
			available := part.Quantity - openReserved
			if input.Quantity > available {
				return pkgerrors.New(pkgerrors.CodeInsufficientAvailable,
					"insufficient available stock (reservations applied)").
					WithDetails(map[string]any{
						"available": available,
						"requested": input.Quantity,
					})
			}
			newQuantity = part.Quantity - input.Quantity
		} else {
			newQuantity = part.Quantity + input.Quantity
		}

		// The available check already covers stock-outs; this guards the
		// quantity >= 0 invariant directly.
		if newQuantity < 0 {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock")
		}

		if err := repo.SetPartQuantity(ctx, input.PartID, newQuantity); err != nil {
			return err
		}
		return repo.AppendMovement(ctx, &models.StockMovement{
			PartID:     input.PartID,
			ChangeType: input.Direction,
			Quantity:   input.Quantity,
			Note:       input.Note,
			UserID:     input.ActorID,
		})
	})
	if err != nil {
		return 0, err
	}

	s.auditEvent(ctx, "info", "stock_"+input.Direction.String(), map[string]any{
		"part_id":      input.PartID.String(),
		"qty":          input.Quantity,
		"new_quantity": newQuantity,
	})
	return newQuantity, nil
}

// ReceivePurchaseOrderItems applies incremental receipts to a purchase order
// inside one transaction. Each line receives at most its remaining balance;
// excess requests are clipped, and unknown or complete lines are skipped with
// a per-item reason. The PO status is then set to the caller-supplied label.
func (s *service) ReceivePurchaseOrderItems(ctx context.Context, input ReceiveInput) (*ReceiveResult, error) {
	if input.PurchaseOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase order id required")
	}
	status := input.Status
	if status == "" {
		status = enums.PurchaseOrderStatusReceived
	}

	result := &ReceiveResult{Received: true, Items: make([]ReceiveItemResult, 0, len(input.Items))}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		exists, err := repo.PurchaseOrderExists(ctx, input.PurchaseOrderID)
		if err != nil {
			return err
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}

		for _, item := range input.Items {
			outcome, err := s.receiveOne(ctx, repo, input, item)
			if err != nil {
				return err
			}
			result.Items = append(result.Items, outcome)
		}

		return repo.SetPurchaseOrderStatus(ctx, input.PurchaseOrderID, status)
	})
	if err != nil {
		return nil, err
	}

	s.auditEvent(ctx, "info", "po_received", map[string]any{
		"po_id":  input.PurchaseOrderID.String(),
		"status": status.String(),
		"items":  len(result.Items),
	})
	return result, nil
}

func (s *service) receiveOne(ctx context.Context, repo *Repository, input ReceiveInput, item ReceiveItem) (ReceiveItemResult, error) {
	outcome := ReceiveItemResult{PartID: item.PartID}

	if item.Qty <= 0 {
		outcome.Skipped = true
		outcome.Reason = "non-positive quantity"
		return outcome, nil
	}

	line, err := repo.LockPurchaseOrderItem(ctx, input.PurchaseOrderID, item.PartID)
	if err != nil {
		return outcome, err
	}
	if line == nil {
		outcome.Skipped = true
		outcome.Reason = "no matching order line"
		return outcome, nil
	}

	apply := line.Remaining()
	if apply > item.Qty {
		apply = item.Qty
	}
	if apply <= 0 {
		outcome.Skipped = true
		outcome.Reason = "already fully received"
		return outcome, nil
	}

	part, err := repo.LockPart(ctx, item.PartID)
	if err != nil {
		return outcome, err
	}

	if err := repo.AddReceivedQuantity(ctx, line.ID, apply); err != nil {
		return outcome, err
	}
	if err := repo.SetPartQuantity(ctx, item.PartID, part.Quantity+apply); err != nil {
		return outcome, err
	}

	note := fmt.Sprintf("PO #%s", input.PurchaseOrderID)
	if err := repo.AppendMovement(ctx, &models.StockMovement{
		PartID:     item.PartID,
		ChangeType: enums.MovementTypeIn,
		Quantity:   apply,
		Note:       &note,
		UserID:     input.ActorID,
	}); err != nil {
		return outcome, err
	}

	outcome.Applied = apply
	return outcome, nil
}

// TransitionReservationStatus applies the reservation state machine. The
// transition table is total: same-status requests are accepted as no-ops,
// open reservations may be fulfilled (stock-out side effect) or cancelled,
// and both fulfilled and cancelled are terminal.
func (s *service) TransitionReservationStatus(ctx context.Context, input TransitionInput) (*TransitionResult, error) {
	if input.ReservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	if !input.NewStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be open, fulfilled or cancelled")
	}

	result := &TransitionResult{Status: input.NewStatus}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		reservation, err := repo.LockReservation(ctx, input.ReservationID)
		if err != nil {
			return err
		}

		switch {
		case reservation.Status == enums.ReservationStatusFulfilled:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "already fulfilled")

		case reservation.Status == input.NewStatus:
			// Repeating the current status is accepted without touching stock.
			result.Status = reservation.Status
			return nil

		case reservation.Status == enums.ReservationStatusCancelled:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reservation is cancelled")

		case input.NewStatus == enums.ReservationStatusFulfilled:
			newQty, err := s.fulfill(ctx, repo, reservation, input.ActorID)
			if err != nil {
				return err
			}
			result.NewQuantity = &newQty
			result.Updated = true
			return repo.SetReservationStatus(ctx, reservation.ID, input.NewStatus)

		default:
			// open -> cancelled: pure status write, no stock effect.
			result.Updated = true
			return repo.SetReservationStatus(ctx, reservation.ID, input.NewStatus)
		}
	})
	if err != nil {
		return nil, err
	}

	s.auditEvent(ctx, "info", "reservation_status", map[string]any{
		"reservation_id": input.ReservationID.String(),
		"status":         input.NewStatus.String(),
	})
	return result, nil
}

func (s *service) fulfill(ctx context.Context, repo *Repository, reservation *models.Reservation, actorID *uuid.UUID) (int, error) {
	part, err := repo.LockPart(ctx, reservation.PartID)
	if err != nil {
		return 0, err
	}
	if reservation.ReservedQty > part.Quantity {
		return 0, pkgerrors.New(pkgerrors.CodeInsufficientStock,
			"insufficient stock to fulfill reservation").
			WithDetails(map[string]any{
				"on_hand":  part.Quantity,
				"reserved": reservation.ReservedQty,
			})
	}

	newQty := part.Quantity - reservation.ReservedQty
	if err := repo.SetPartQuantity(ctx, reservation.PartID, newQty); err != nil {
		return 0, err
	}

	note := fmt.Sprintf("Reservation #%s", reservation.ID)
	if err := repo.AppendMovement(ctx, &models.StockMovement{
		PartID:     reservation.PartID,
		ChangeType: enums.MovementTypeOut,
		Quantity:   reservation.ReservedQty,
		Note:       &note,
		UserID:     actorID,
	}); err != nil {
		return 0, err
	}
	return newQty, nil
}

// ListMovements returns the newest audit records, optionally for one part.
func (s *service) ListMovements(ctx context.Context, partID *uuid.UUID, limit int) ([]MovementRecord, error) {
	if limit < 1 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	return s.repo.ListMovements(ctx, partID, limit)
}

// auditEvent fires after the primary transaction commits; the audit sink is
// best effort and must never surface an error here.
func (s *service) auditEvent(ctx context.Context, level, message string, fields map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Event(ctx, level, message, fields)
}
