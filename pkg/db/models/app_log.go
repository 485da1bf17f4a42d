package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppLog is a best-effort audit row. Writes happen after the primary
// transaction commits and failures are swallowed, so rows may be missing but
// never block an operation.
type AppLog struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Level     string          `gorm:"column:level;not null" json:"level"`
	Message   string          `gorm:"column:message;not null" json:"message"`
	Context   json.RawMessage `gorm:"column:context;type:jsonb" json:"context"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (l *AppLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
