package purchaseorders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
)

// Repository wires purchase-order persistence helpers.
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

// ListRow is one purchase order in the listing with its supplier name joined.
type ListRow struct {
	models.PurchaseOrder
	SupplierName *string `json:"supplier_name"`
}

// List returns the newest purchase orders, capped at limit.
func (r *Repository) List(ctx context.Context, limit int) ([]ListRow, error) {
	var rows []ListRow
	err := r.db.WithContext(ctx).
		Table("purchase_orders AS po").
		Select("po.*, s.name AS supplier_name").
		Joins("LEFT JOIN suppliers s ON s.id = po.supplier_id").
		Order("po.created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads the purchase order header.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	if err := r.db.WithContext(ctx).First(&po, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

// ItemRow is one PO line with its part identity joined.
type ItemRow struct {
	models.PurchaseOrderItem
	PartName string `json:"part_name"`
	PartSKU  string `json:"part_sku"`
}

// ListItems returns the order's lines with part names.
func (r *Repository) ListItems(ctx context.Context, poID uuid.UUID) ([]ItemRow, error) {
	var rows []ItemRow
	err := r.db.WithContext(ctx).
		Table("purchase_order_items AS i").
		Select("i.*, p.name AS part_name, p.sku AS part_sku").
		Joins("JOIN parts p ON p.id = i.part_id").
		Where("i.purchase_order_id = ?", poID).
		Order("p.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts the header row only; lines are inserted separately so the
// item-level checks stay in the service.
func (r *Repository) Create(ctx context.Context, po *models.PurchaseOrder) (*models.PurchaseOrder, error) {
	if err := r.db.WithContext(ctx).Omit("Items").Create(po).Error; err != nil {
		return nil, err
	}
	return po, nil
}

// CreateItem inserts one order line.
func (r *Repository) CreateItem(ctx context.Context, item *models.PurchaseOrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update persists the header columns.
func (r *Repository) Update(ctx context.Context, po *models.PurchaseOrder) (*models.PurchaseOrder, error) {
	if err := r.db.WithContext(ctx).Omit("Items").Save(po).Error; err != nil {
		return nil, err
	}
	return po, nil
}

// SupplierExists reports whether the supplier row is present.
func (r *Repository) SupplierExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Supplier{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PartExists reports whether the part row is present.
func (r *Repository) PartExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Part{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
