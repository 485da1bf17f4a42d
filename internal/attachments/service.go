package attachments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
	pkgerrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
)

// Service tracks file metadata attached to parts, suppliers, and purchase
// orders. Only metadata rows are stored; file content lives behind FileURL.
type Service interface {
	ListAttachments(ctx context.Context, entity enums.AttachmentEntity, entityID uuid.UUID) ([]models.Attachment, error)
	CreateAttachment(ctx context.Context, input CreateInput) (*models.Attachment, error)
}

// CreateInput holds the validated payload to record an attachment.
type CreateInput struct {
	EntityType enums.AttachmentEntity
	EntityID   uuid.UUID
	FileName   string
	FileURL    string
	MimeType   *string
}

type service struct {
	db *gorm.DB
}

// NewService constructs an attachment service instance.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &service{db: db}, nil
}

// ListAttachments returns the entity's attachments, newest first.
func (s *service) ListAttachments(ctx context.Context, entity enums.AttachmentEntity, entityID uuid.UUID) ([]models.Attachment, error) {
	if !entity.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity must be part, supplier or purchase_order")
	}
	if entityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity id required")
	}

	var rows []models.Attachment
	err := s.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entity, entityID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list attachments")
	}
	return rows, nil
}

// CreateAttachment records one metadata row.
func (s *service) CreateAttachment(ctx context.Context, input CreateInput) (*models.Attachment, error) {
	if !input.EntityType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity_type must be part, supplier or purchase_order")
	}
	if input.EntityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity_id required")
	}
	input.FileName = strings.TrimSpace(input.FileName)
	input.FileURL = strings.TrimSpace(input.FileURL)
	if input.FileName == "" || input.FileURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name and file_url are required")
	}

	row := &models.Attachment{
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		FileName:   input.FileName,
		FileURL:    input.FileURL,
		MimeType:   input.MimeType,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert attachment")
	}
	return row, nil
}
