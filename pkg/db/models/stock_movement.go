package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
)

// StockMovement is an append-only audit record of a quantity change. Rows are
// written exactly once per successful ledger operation and never updated.
type StockMovement struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PartID     uuid.UUID          `gorm:"column:part_id;type:uuid;not null;index" json:"part_id"`
	ChangeType enums.MovementType `gorm:"column:change_type;not null" json:"change_type"`
	Quantity   int                `gorm:"column:quantity;not null" json:"quantity"`
	Note       *string            `gorm:"column:note" json:"note"`
	UserID     *uuid.UUID         `gorm:"column:user_id;type:uuid" json:"user_id"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// SignedQuantity folds the direction into the quantity for replay sums.
func (m StockMovement) SignedQuantity() int {
	if m.ChangeType == enums.MovementTypeOut {
		return -m.Quantity
	}
	return m.Quantity
}
