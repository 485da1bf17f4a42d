package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Part is a trackable inventory item. Quantity is the live on-hand count and
// is only ever mutated by the ledger; the stock_movements table is the audit
// trail it must stay consistent with.
type Part struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string           `gorm:"column:name;not null" json:"name"`
	SKU          string           `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Description  string           `gorm:"column:description;not null;default:''" json:"description"`
	Quantity     int              `gorm:"column:quantity;not null;default:0" json:"quantity"`
	ReorderLevel *int             `gorm:"column:reorder_level" json:"reorder_level"`
	Price        *decimal.Decimal `gorm:"column:price;type:numeric(12,2)" json:"price"`
	SupplierID   *uuid.UUID       `gorm:"column:supplier_id;type:uuid" json:"supplier_id"`
	Barcode      *string          `gorm:"column:barcode" json:"barcode"`
	Location     *string          `gorm:"column:location" json:"location"`
	LeadTimeDays int              `gorm:"column:lead_time_days;not null;default:0" json:"lead_time_days"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns an ID when the dialect has no uuid default (sqlite).
func (p *Part) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsLowStock reports whether the part sits at or below its reorder level.
func (p Part) IsLowStock() bool {
	return p.ReorderLevel != nil && p.Quantity <= *p.ReorderLevel
}
