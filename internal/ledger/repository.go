package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
	pkgerrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
)

// Repository wraps the row-level data access the ledger performs inside its
// transactions.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// forUpdate adds a SELECT ... FOR UPDATE clause on Postgres. SQLite rejects
// the syntax and serializes writers at the database level anyway, so the
// clause is skipped there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// LockPart loads the part under an exclusive row lock held until commit.
func (r *Repository) LockPart(ctx context.Context, partID uuid.UUID) (*models.Part, error) {
	var part models.Part
	err := forUpdate(r.db.WithContext(ctx)).First(&part, "id = ?", partID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
	}
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// OpenReservationTotal sums reserved quantities across open reservations for
// the part. Callers must already hold the part's row lock so the sum cannot
// drift before commit.
func (r *Repository) OpenReservationTotal(ctx context.Context, partID uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("part_id = ? AND status = ?", partID, enums.ReservationStatusOpen).
		Select("COALESCE(SUM(reserved_qty), 0)").
		Scan(&total).
		Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

// SetPartQuantity writes the new on-hand count and refreshes updated_at.
func (r *Repository) SetPartQuantity(ctx context.Context, partID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Part{}).
		Where("id = ?", partID).
		UpdateColumns(map[string]any{
			"quantity":   quantity,
			"updated_at": time.Now().UTC(),
		}).
		Error
}

// AppendMovement inserts the immutable audit record for a quantity change.
func (r *Repository) AppendMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// PurchaseOrderExists reports whether the PO header row is present.
func (r *Repository) PurchaseOrderExists(ctx context.Context, poID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ?", poID).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LockPurchaseOrderItem loads a PO line under an exclusive row lock. A nil
// result with nil error means the line does not exist.
func (r *Repository) LockPurchaseOrderItem(ctx context.Context, poID, partID uuid.UUID) (*models.PurchaseOrderItem, error) {
	var item models.PurchaseOrderItem
	err := forUpdate(r.db.WithContext(ctx)).
		First(&item, "purchase_order_id = ? AND part_id = ?", poID, partID).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddReceivedQuantity increments qty_received on the locked PO line.
func (r *Repository) AddReceivedQuantity(ctx context.Context, itemID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.PurchaseOrderItem{}).
		Where("id = ?", itemID).
		UpdateColumn("qty_received", gorm.Expr("qty_received + ?", qty)).
		Error
}

// SetPurchaseOrderStatus writes the caller-supplied status label.
func (r *Repository) SetPurchaseOrderStatus(ctx context.Context, poID uuid.UUID, status enums.PurchaseOrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ?", poID).
		UpdateColumns(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).
		Error
}

// LockReservation loads the reservation under an exclusive row lock.
func (r *Repository) LockReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	err := forUpdate(r.db.WithContext(ctx)).First(&reservation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// SetReservationStatus writes the reservation's new status.
func (r *Repository) SetReservationStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).
		Error
}

// MovementRecord is a movement row joined with part and user names for the
// history listing.
type MovementRecord struct {
	ID         uuid.UUID          `json:"id"`
	PartID     uuid.UUID          `json:"part_id"`
	PartName   string             `json:"part_name"`
	ChangeType enums.MovementType `json:"change_type"`
	Quantity   int                `json:"quantity"`
	Note       *string            `json:"note"`
	Username   *string            `json:"username"`
	CreatedAt  time.Time          `json:"created_at"`
}

// ListMovements returns the newest movements, optionally scoped to one part.
func (r *Repository) ListMovements(ctx context.Context, partID *uuid.UUID, limit int) ([]MovementRecord, error) {
	qb := r.db.WithContext(ctx).
		Table("stock_movements sm").
		Select("sm.id, sm.part_id, p.name AS part_name, sm.change_type, sm.quantity, sm.note, u.username, sm.created_at").
		Joins("JOIN parts p ON p.id = sm.part_id").
		Joins("LEFT JOIN users u ON u.id = sm.user_id").
		Order("sm.created_at DESC").
		Limit(limit)
	if partID != nil {
		qb = qb.Where("sm.part_id = ?", *partID)
	}

	var rows []MovementRecord
	if err := qb.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
