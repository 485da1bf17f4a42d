package reservations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
)

// Repository wires reservation persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListRow is one reservation with its part name joined.
type ListRow struct {
	models.Reservation
	PartName string `json:"part_name"`
}

// List returns the newest reservations, capped at limit.
func (r *Repository) List(ctx context.Context, limit int) ([]ListRow, error) {
	var rows []ListRow
	err := r.db.WithContext(ctx).
		Table("reservations AS r").
		Select("r.*, p.name AS part_name").
		Joins("JOIN parts p ON p.id = r.part_id").
		Order("r.created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts the reservation.
func (r *Repository) Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
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
