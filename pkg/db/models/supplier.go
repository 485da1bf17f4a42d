package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier is a vendor parts can be sourced from.
type Supplier struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	ContactName *string   `gorm:"column:contact_name" json:"contact_name"`
	Phone       *string   `gorm:"column:phone" json:"phone"`
	Email       *string   `gorm:"column:email" json:"email"`
	Address     *string   `gorm:"column:address" json:"address"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (s *Supplier) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
