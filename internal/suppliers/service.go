package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	pkgerrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
)

// Service exposes supplier management operations.
type Service interface {
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	CreateSupplier(ctx context.Context, input SupplierInput) (*models.Supplier, error)
	UpdateSupplier(ctx context.Context, id uuid.UUID, input SupplierInput) (*models.Supplier, error)
	DeleteSupplier(ctx context.Context, id uuid.UUID) error
}

// SupplierInput carries the supplier payload for create and update.
type SupplierInput struct {
	Name        string
	ContactName *string
	Phone       *string
	Email       *string
	Address     *string
}

type service struct {
	repo *Repository
}

// NewService constructs a supplier service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list suppliers")
	}
	return rows, nil
}

func (s *service) CreateSupplier(ctx context.Context, input SupplierInput) (*models.Supplier, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	created, err := s.repo.Create(ctx, &models.Supplier{
		Name:        input.Name,
		ContactName: input.ContactName,
		Phone:       input.Phone,
		Email:       input.Email,
		Address:     input.Address,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert supplier")
	}
	return created, nil
}

func (s *service) UpdateSupplier(ctx context.Context, id uuid.UUID, input SupplierInput) (*models.Supplier, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load supplier")
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	supplier.Name = input.Name
	supplier.ContactName = input.ContactName
	supplier.Phone = input.Phone
	supplier.Email = input.Email
	supplier.Address = input.Address

	updated, err := s.repo.Update(ctx, supplier)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update supplier")
	}
	return updated, nil
}

// DeleteSupplier removes the supplier; parts that referenced it are detached
// by the schema's ON DELETE SET NULL.
func (s *service) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete supplier")
	}
	return nil
}
