package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
)

// Attachment stores file metadata for a part, supplier, or purchase order.
// The file itself lives wherever FileURL points; only metadata is tracked.
type Attachment struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EntityType enums.AttachmentEntity `gorm:"column:entity_type;not null;index:idx_attachments_entity" json:"entity_type"`
	EntityID   uuid.UUID              `gorm:"column:entity_id;type:uuid;not null;index:idx_attachments_entity" json:"entity_id"`
	FileName   string                 `gorm:"column:file_name;not null" json:"file_name"`
	FileURL    string                 `gorm:"column:file_url;not null" json:"file_url"`
	MimeType   *string                `gorm:"column:mime_type" json:"mime_type"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (a *Attachment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
