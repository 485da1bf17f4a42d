package parts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
)

// PartDTO is the part payload returned to clients. IsLowStock is derived from
// quantity and reorder_level at read time.
type PartDTO struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	SKU          string           `json:"sku"`
	Description  string           `json:"description"`
	Quantity     int              `json:"quantity"`
	ReorderLevel *int             `json:"reorder_level,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	SupplierID   *uuid.UUID       `json:"supplier_id,omitempty"`
	Barcode      *string          `json:"barcode,omitempty"`
	Location     *string          `json:"location,omitempty"`
	LeadTimeDays int              `json:"lead_time_days"`
	IsActive     bool             `json:"is_active"`
	IsLowStock   bool             `json:"is_low_stock"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewPartDTO builds a DTO from the persisted model.
func NewPartDTO(part *models.Part) *PartDTO {
	return &PartDTO{
		ID:           part.ID,
		Name:         part.Name,
		SKU:          part.SKU,
		Description:  part.Description,
		Quantity:     part.Quantity,
		ReorderLevel: part.ReorderLevel,
		Price:        part.Price,
		SupplierID:   part.SupplierID,
		Barcode:      part.Barcode,
		Location:     part.Location,
		LeadTimeDays: part.LeadTimeDays,
		IsActive:     part.IsActive,
		IsLowStock:   part.IsLowStock(),
		CreatedAt:    part.CreatedAt,
		UpdatedAt:    part.UpdatedAt,
	}
}

// PartListResult is one page of parts with the total match count.
type PartListResult struct {
	Items    []PartDTO `json:"items"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}
