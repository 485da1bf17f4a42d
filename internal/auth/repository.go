package auth

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
)

// Repository wires user and token persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindUserByUsername loads the user for credential checks.
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateToken inserts the bearer token row.
func (r *Repository) CreateToken(ctx context.Context, token *models.AuthToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// FindToken loads a token row by its opaque value; missing rows return
// gorm.ErrRecordNotFound.
func (r *Repository) FindToken(ctx context.Context, token string) (*models.AuthToken, error) {
	var row models.AuthToken
	if err := r.db.WithContext(ctx).First(&row, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindUserByID loads the user behind a token.
func (r *Repository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteToken removes the token row; deleting an unknown token is a no-op.
func (r *Repository) DeleteToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Delete(&models.AuthToken{}, "token = ?", token).Error
}

// DeleteExpiredTokens clears rows past their expiry and reports how many were
// removed.
func (r *Repository) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.AuthToken{}, "expires_at < CURRENT_TIMESTAMP")
	return result.RowsAffected, result.Error
}
