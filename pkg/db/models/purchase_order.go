package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
)

// PurchaseOrder aggregates ordered line items received incrementally.
type PurchaseOrder struct {
	ID           uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SupplierID   *uuid.UUID                `gorm:"column:supplier_id;type:uuid" json:"supplier_id"`
	Status       enums.PurchaseOrderStatus `gorm:"column:status;not null;default:draft" json:"status"`
	ExpectedDate *time.Time                `gorm:"column:expected_date" json:"expected_date"`
	Notes        *string                   `gorm:"column:notes" json:"notes"`
	CreatedBy    *uuid.UUID                `gorm:"column:created_by;type:uuid" json:"created_by"`
	Items        []PurchaseOrderItem       `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (p *PurchaseOrder) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PurchaseOrderItem is one ordered part on a PO. QtyReceived is monotonically
// non-decreasing and never exceeds QtyOrdered; the ledger clips receipts to
// the remaining amount.
type PurchaseOrderItem struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseOrderID uuid.UUID        `gorm:"column:purchase_order_id;type:uuid;not null;index:idx_po_items_po_part,unique" json:"purchase_order_id"`
	PartID          uuid.UUID        `gorm:"column:part_id;type:uuid;not null;index:idx_po_items_po_part,unique" json:"part_id"`
	QtyOrdered      int              `gorm:"column:qty_ordered;not null" json:"qty_ordered"`
	QtyReceived     int              `gorm:"column:qty_received;not null;default:0" json:"qty_received"`
	Price           *decimal.Decimal `gorm:"column:price;type:numeric(12,2)" json:"price"`
}

func (i *PurchaseOrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Remaining returns the undelivered balance on the line.
func (i PurchaseOrderItem) Remaining() int {
	if remaining := i.QtyOrdered - i.QtyReceived; remaining > 0 {
		return remaining
	}
	return 0
}
