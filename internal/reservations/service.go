package reservations

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
	pkgerrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
)

// Service exposes reservation creation and listing. Status transitions are
// owned by the ledger because fulfilling a reservation moves stock.
type Service interface {
	ListReservations(ctx context.Context) ([]ListRow, error)
	CreateReservation(ctx context.Context, input CreateInput) (*models.Reservation, error)
}

// CreateInput holds the validated payload to create a reservation. The hold
// is soft: no stock is moved until the reservation is fulfilled.
type CreateInput struct {
	PartID        uuid.UUID
	ReservedQty   int
	ReferenceCode *string
	Note          *string
	CreatedBy     *uuid.UUID
}

const listLimit = 200

type service struct {
	repo *Repository
}

// NewService constructs a reservation service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	return &service{repo: repo}, nil
}

// ListReservations returns the newest 200 reservations with part names.
func (s *service) ListReservations(ctx context.Context) ([]ListRow, error) {
	rows, err := s.repo.List(ctx, listLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list reservations")
	}
	return rows, nil
}

// CreateReservation opens a hold on the part. Over-reserving is allowed; the
// ledger enforces availability when stock actually moves.
func (s *service) CreateReservation(ctx context.Context, input CreateInput) (*models.Reservation, error) {
	if input.PartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "part_id required")
	}
	if input.ReservedQty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reserved_qty must be a positive integer")
	}

	exists, err := s.repo.PartExists(ctx, input.PartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check part")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
	}

	created, err := s.repo.Create(ctx, &models.Reservation{
		PartID:        input.PartID,
		ReservedQty:   input.ReservedQty,
		Status:        enums.ReservationStatusOpen,
		ReferenceCode: input.ReferenceCode,
		Note:          input.Note,
		CreatedBy:     input.CreatedBy,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert reservation")
	}
	return created, nil
}
