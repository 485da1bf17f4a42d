package purchaseorders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
	pkgerrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes purchase-order management. Receiving stock against an order
// is owned by the ledger, not this service.
type Service interface {
	ListOrders(ctx context.Context) ([]ListRow, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderDetail, error)
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDetail, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*OrderDetail, error)
}

// OrderItemInput is one requested line on a new purchase order.
type OrderItemInput struct {
	PartID uuid.UUID
	Qty    int
	Price  *decimal.Decimal
}

// CreateOrderInput holds the validated payload to create an order.
type CreateOrderInput struct {
	SupplierID   *uuid.UUID
	Status       enums.PurchaseOrderStatus
	ExpectedDate *time.Time
	Notes        *string
	CreatedBy    *uuid.UUID
	Items        []OrderItemInput
}

// UpdateOrderInput holds optional header mutations. Lines are immutable after
// creation; deliveries adjust qty_received through the ledger.
type UpdateOrderInput struct {
	SupplierID   *uuid.UUID
	Status       *enums.PurchaseOrderStatus
	ExpectedDate *time.Time
	Notes        *string
}

// OrderDetail is the full order payload with joined line data.
type OrderDetail struct {
	models.PurchaseOrder
	SupplierName *string   `json:"supplier_name,omitempty"`
	Lines        []ItemRow `json:"items"`
}

const listLimit = 200

type service struct {
	tx   txRunner
	repo *Repository
}

// NewService constructs a purchase-order service instance.
func NewService(tx txRunner, repo *Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("purchase order repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

// ListOrders returns the newest 200 orders with supplier names.
func (s *service) ListOrders(ctx context.Context) ([]ListRow, error) {
	rows, err := s.repo.List(ctx, listLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list purchase orders")
	}
	return rows, nil
}

// GetOrder loads the header plus its lines with part names.
func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	po, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load purchase order")
	}

	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load purchase order items")
	}

	detail := &OrderDetail{PurchaseOrder: *po, Lines: items}
	if po.SupplierID != nil {
		detail.SupplierName, err = s.supplierName(ctx, *po.SupplierID)
		if err != nil {
			return nil, err
		}
	}
	return detail, nil
}

// CreateOrder writes the header and every line in one transaction. Every
// invalid line is reported, not just the first.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDetail, error) {
	if err := s.validateCreate(ctx, input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = enums.PurchaseOrderStatusDraft
	}

	po := &models.PurchaseOrder{
		SupplierID:   input.SupplierID,
		Status:       status,
		ExpectedDate: input.ExpectedDate,
		Notes:        input.Notes,
		CreatedBy:    input.CreatedBy,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.Create(ctx, po); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert purchase order")
		}
		for _, item := range input.Items {
			line := &models.PurchaseOrderItem{
				PurchaseOrderID: po.ID,
				PartID:          item.PartID,
				QtyOrdered:      item.Qty,
				Price:           item.Price,
			}
			if err := txRepo.CreateItem(ctx, line); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert purchase order item")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(ctx, po.ID)
}

// UpdateOrder applies header mutations.
func (s *service) UpdateOrder(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*OrderDetail, error) {
	po, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load purchase order")
	}

	if input.SupplierID != nil {
		if err := s.ensureSupplier(ctx, *input.SupplierID); err != nil {
			return nil, err
		}
		po.SupplierID = input.SupplierID
	}
	if input.Status != nil {
		po.Status = *input.Status
	}
	if input.ExpectedDate != nil {
		po.ExpectedDate = input.ExpectedDate
	}
	if input.Notes != nil {
		po.Notes = input.Notes
	}

	if _, err := s.repo.Update(ctx, po); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update purchase order")
	}
	return s.GetOrder(ctx, id)
}

// validateCreate checks the whole payload and aggregates every line problem
// into a single validation error.
func (s *service) validateCreate(ctx context.Context, input CreateOrderInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	if input.SupplierID != nil {
		if err := s.ensureSupplier(ctx, *input.SupplierID); err != nil {
			return err
		}
	}

	var problems error
	seen := map[uuid.UUID]bool{}
	for i, item := range input.Items {
		if item.PartID == uuid.Nil {
			problems = multierr.Append(problems, fmt.Errorf("items[%d]: part_id required", i))
			continue
		}
		if seen[item.PartID] {
			problems = multierr.Append(problems, fmt.Errorf("items[%d]: duplicate part", i))
		}
		seen[item.PartID] = true

		if item.Qty <= 0 {
			problems = multierr.Append(problems, fmt.Errorf("items[%d]: qty must be positive", i))
		}
		exists, err := s.repo.PartExists(ctx, item.PartID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check part")
		}
		if !exists {
			problems = multierr.Append(problems, fmt.Errorf("items[%d]: part not found", i))
		}
	}
	if problems != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, problems.Error())
	}
	return nil
}

func (s *service) ensureSupplier(ctx context.Context, id uuid.UUID) error {
	exists, err := s.repo.SupplierExists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check supplier")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier not found")
	}
	return nil
}

func (s *service) supplierName(ctx context.Context, id uuid.UUID) (*string, error) {
	var supplier models.Supplier
	err := s.repo.db.WithContext(ctx).First(&supplier, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load supplier")
	}
	return &supplier.Name, nil
}
