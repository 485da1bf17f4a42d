package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
)

// Reservation is a soft hold against a part's future availability. Open
// reservations reduce the part's available quantity without touching the
// stored on-hand count; fulfillment performs the actual stock-out.
type Reservation struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PartID        uuid.UUID               `gorm:"column:part_id;type:uuid;not null;index" json:"part_id"`
	ReservedQty   int                     `gorm:"column:reserved_qty;not null" json:"reserved_qty"`
	Status        enums.ReservationStatus `gorm:"column:status;not null;default:open" json:"status"`
	ReferenceCode *string                 `gorm:"column:reference_code" json:"reference_code"`
	Note          *string                 `gorm:"column:note" json:"note"`
	CreatedBy     *uuid.UUID              `gorm:"column:created_by;type:uuid" json:"created_by"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (r *Reservation) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
