package reports

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	pkgerrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
)

// Service exposes read-only inventory reports.
type Service interface {
	Summary(ctx context.Context) (*SummaryDTO, error)
	SlowMovers(ctx context.Context) ([]SlowMoverRow, error)
	LowStock(ctx context.Context) ([]LowStockRow, error)
}

// SummaryDTO aggregates catalog-wide counts and the inventory value at
// current prices.
type SummaryDTO struct {
	Parts          int64           `json:"parts"`
	Suppliers      int64           `json:"suppliers"`
	LowStock       int64           `json:"low_stock"`
	TotalQuantity  int64           `json:"total_quantity"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

// SlowMoverRow is one part with its lifetime outbound volume.
type SlowMoverRow struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	SKU      string    `json:"sku"`
	MovedOut int       `json:"moved_out"`
}

// LowStockRow is one part at or below its reorder level.
type LowStockRow struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Quantity     int       `json:"quantity"`
	ReorderLevel int       `json:"reorder_level"`
}

const slowMoverLimit = 20

const lowStockCondition = "reorder_level IS NOT NULL AND quantity <= reorder_level"

type service struct {
	db *gorm.DB
}

// NewService constructs a report service instance.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &service{db: db}, nil
}

// Summary returns overall catalog counts and the priced stock value.
func (s *service) Summary(ctx context.Context) (*SummaryDTO, error) {
	summary := &SummaryDTO{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Part{}).Count(&summary.Parts).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count parts")
	}
	if err := db.Model(&models.Supplier{}).Count(&summary.Suppliers).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count suppliers")
	}
	if err := db.Model(&models.Part{}).Where(lowStockCondition).Count(&summary.LowStock).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count low stock")
	}

	var totals struct {
		TotalQuantity  int64
		InventoryValue decimal.Decimal
	}
	err := db.Model(&models.Part{}).
		Select("COALESCE(SUM(quantity), 0) AS total_quantity, COALESCE(SUM(quantity * COALESCE(price, 0)), 0) AS inventory_value").
		Scan(&totals).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum inventory")
	}
	summary.TotalQuantity = totals.TotalQuantity
	summary.InventoryValue = totals.InventoryValue
	return summary, nil
}

// SlowMovers returns the 20 parts with the least outbound movement, quietest
// first. Parts with no movements at all rank first.
func (s *service) SlowMovers(ctx context.Context) ([]SlowMoverRow, error) {
	var rows []SlowMoverRow
	err := s.db.WithContext(ctx).
		Table("parts AS p").
		Select("p.id, p.name, p.sku, COALESCE(SUM(CASE WHEN sm.change_type = 'out' THEN sm.quantity ELSE 0 END), 0) AS moved_out").
		Joins("LEFT JOIN stock_movements sm ON sm.part_id = p.id").
		Group("p.id, p.name, p.sku").
		Order("moved_out ASC").
		Limit(slowMoverLimit).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: slow movers")
	}
	return rows, nil
}

// LowStock returns every part at or below its reorder level, emptiest first.
func (s *service) LowStock(ctx context.Context) ([]LowStockRow, error) {
	var rows []LowStockRow
	err := s.db.WithContext(ctx).
		Model(&models.Part{}).
		Select("id, name, sku, quantity, reorder_level").
		Where(lowStockCondition).
		Order("quantity ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: low stock")
	}
	return rows, nil
}
