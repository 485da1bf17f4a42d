package parts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/db"
	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	pkgerrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
)

// Service exposes part catalog management. Quantity is intentionally absent
// from the update input: every stock change goes through the ledger.
type Service interface {
	ListParts(ctx context.Context, filter ListFilter) (*PartListResult, error)
	GetPart(ctx context.Context, id uuid.UUID) (*PartDTO, error)
	CreatePart(ctx context.Context, input CreatePartInput) (*PartDTO, error)
	UpdatePart(ctx context.Context, id uuid.UUID, input UpdatePartInput) (*PartDTO, error)
	DeletePart(ctx context.Context, id uuid.UUID) error
}

// CreatePartInput holds the validated payload to create a part. Quantity seeds
// the opening count; subsequent changes must come from stock movements.
type CreatePartInput struct {
	Name         string
	SKU          string
	Description  string
	Quantity     int
	ReorderLevel *int
	Price        *decimal.Decimal
	SupplierID   *uuid.UUID
	Barcode      *string
	Location     *string
	LeadTimeDays int
	IsActive     *bool
}

// UpdatePartInput holds optional mutation values for a part.
type UpdatePartInput struct {
	Name         *string
	SKU          *string
	Description  *string
	ReorderLevel *int
	Price        *decimal.Decimal
	SupplierID   *uuid.UUID
	Barcode      *string
	Location     *string
	LeadTimeDays *int
	IsActive     *bool
}

type service struct {
	repo *Repository
}

// NewService constructs a part service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("part repository required")
	}
	return &service{repo: repo}, nil
}

// ListParts returns one page of parts matching the filter.
func (s *service) ListParts(ctx context.Context, filter ListFilter) (*PartListResult, error) {
	filter.Page = filter.Page.Normalize()

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list parts")
	}

	items := make([]PartDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *NewPartDTO(&rows[i]))
	}
	return &PartListResult{
		Items:    items,
		Total:    total,
		Page:     filter.Page.Page,
		PageSize: filter.Page.PageSize,
	}, nil
}

// GetPart loads one part by id.
func (s *service) GetPart(ctx context.Context, id uuid.UUID) (*PartDTO, error) {
	part, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load part")
	}
	return NewPartDTO(part), nil
}

// CreatePart inserts a part after checking the SKU and supplier.
func (s *service) CreatePart(ctx context.Context, input CreatePartInput) (*PartDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.SKU = strings.TrimSpace(input.SKU)
	if input.Name == "" || input.SKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and sku are required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if err := s.ensureSupplier(ctx, input.SupplierID); err != nil {
		return nil, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	part := &models.Part{
		Name:         input.Name,
		SKU:          input.SKU,
		Description:  input.Description,
		Quantity:     input.Quantity,
		ReorderLevel: input.ReorderLevel,
		Price:        input.Price,
		SupplierID:   input.SupplierID,
		Barcode:      input.Barcode,
		Location:     input.Location,
		LeadTimeDays: input.LeadTimeDays,
		IsActive:     active,
	}

	created, err := s.repo.Create(ctx, part)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert part")
	}
	return NewPartDTO(created), nil
}

// UpdatePart applies the provided fields. Quantity is never touched here.
func (s *service) UpdatePart(ctx context.Context, id uuid.UUID, input UpdatePartInput) (*PartDTO, error) {
	part, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load part")
	}

	if input.SupplierID != nil {
		if err := s.ensureSupplier(ctx, input.SupplierID); err != nil {
			return nil, err
		}
	}

	applyUpdate(part, input)
	if part.Name == "" || part.SKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and sku cannot be empty")
	}

	updated, err := s.repo.Update(ctx, part)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update part")
	}
	return NewPartDTO(updated), nil
}

// DeletePart removes the part row.
func (s *service) DeletePart(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete part")
	}
	return nil
}

func (s *service) ensureSupplier(ctx context.Context, supplierID *uuid.UUID) error {
	if supplierID == nil {
		return nil
	}
	exists, err := s.repo.SupplierExists(ctx, *supplierID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check supplier")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier not found")
	}
	return nil
}

func applyUpdate(part *models.Part, input UpdatePartInput) {
	if input.Name != nil {
		part.Name = strings.TrimSpace(*input.Name)
	}
	if input.SKU != nil {
		part.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Description != nil {
		part.Description = *input.Description
	}
	if input.ReorderLevel != nil {
		part.ReorderLevel = input.ReorderLevel
	}
	if input.Price != nil {
		part.Price = input.Price
	}
	if input.SupplierID != nil {
		part.SupplierID = input.SupplierID
	}
	if input.Barcode != nil {
		part.Barcode = input.Barcode
	}
	if input.Location != nil {
		part.Location = input.Location
	}
	if input.LeadTimeDays != nil {
		part.LeadTimeDays = *input.LeadTimeDays
	}
	if input.IsActive != nil {
		part.IsActive = *input.IsActive
	}
}
