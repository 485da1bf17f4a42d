package parts

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	"github.com/danielsaucedo/partstracker-backend/pkg/pagination"
)

// Repository wires part persistence helpers.
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

// ListFilter narrows the part listing.
type ListFilter struct {
	Search     string
	SupplierID *uuid.UUID
	LowOnly    bool
	Active     *bool
	Page       pagination.Params
}

func (r *Repository) listQuery(ctx context.Context, filter ListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Part{})
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"lower(name) LIKE ? OR lower(sku) LIKE ? OR lower(barcode) LIKE ?",
			like, like, like,
		)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.LowOnly {
		query = query.Where("reorder_level IS NOT NULL AND quantity <= reorder_level")
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	return query
}

// List returns one page of parts plus the total row count for the filter.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Part, int64, error) {
	var total int64
	if err := r.listQuery(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Part
	err := r.listQuery(ctx, filter).
		Order("name ASC").
		Offset(filter.Page.Offset()).
		Limit(filter.Page.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByID loads a single part.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Part, error) {
	var part models.Part
	if err := r.db.WithContext(ctx).First(&part, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

// Create inserts the part.
func (r *Repository) Create(ctx context.Context, part *models.Part) (*models.Part, error) {
	if err := r.db.WithContext(ctx).Create(part).Error; err != nil {
		return nil, err
	}
	return part, nil
}

// Update persists every column of the part.
func (r *Repository) Update(ctx context.Context, part *models.Part) (*models.Part, error) {
	if err := r.db.WithContext(ctx).Save(part).Error; err != nil {
		return nil, err
	}
	return part, nil
}

// Delete removes the part row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Part{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
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
