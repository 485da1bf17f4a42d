package parts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	pkgerrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
	"github.com/danielsaucedo/partstracker-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:parts_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Supplier{}, &models.Part{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func uuidPtr(v uuid.UUID) *uuid.UUID { return &v }

func TestCreateAndGetPart(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	price := decimal.RequireFromString("12.50")
	created, err := svc.CreatePart(ctx, CreatePartInput{
		Name:         "  Oil Filter ",
		SKU:          " OF-100 ",
		Quantity:     10,
		ReorderLevel: intPtr(12),
		Price:        &price,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Oil Filter" || created.SKU != "OF-100" {
		t.Fatalf("expected trimmed fields, got %q %q", created.Name, created.SKU)
	}
	if !created.IsLowStock {
		t.Fatalf("10 on hand with reorder level 12 must be low stock")
	}

	got, err := svc.GetPart(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SKU != "OF-100" || got.Price == nil || !got.Price.Equal(price) {
		t.Fatalf("unexpected part %+v", got)
	}

	_, err = svc.GetPart(ctx, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreatePartRejectsDuplicateSKU(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	if _, err := svc.CreatePart(ctx, CreatePartInput{Name: "A", SKU: "DUP-1"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreatePart(ctx, CreatePartInput{Name: "B", SKU: "DUP-1"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for duplicate sku, got %v", err)
	}
}

func TestCreatePartChecksSupplier(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	_, err := svc.CreatePart(ctx, CreatePartInput{
		Name: "Spark Plug", SKU: "SP-1", SupplierID: uuidPtr(uuid.New()),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown supplier, got %v", err)
	}

	supplier := &models.Supplier{ID: uuid.New(), Name: "Bosch"}
	if err := db.Create(supplier).Error; err != nil {
		t.Fatalf("seed supplier: %v", err)
	}
	created, err := svc.CreatePart(ctx, CreatePartInput{
		Name: "Spark Plug", SKU: "SP-1", SupplierID: &supplier.ID,
	})
	if err != nil {
		t.Fatalf("create with supplier: %v", err)
	}
	if created.SupplierID == nil || *created.SupplierID != supplier.ID {
		t.Fatalf("unexpected supplier on part %+v", created)
	}
}

func TestUpdatePartNeverTouchesQuantity(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	created, err := svc.CreatePart(ctx, CreatePartInput{Name: "Belt", SKU: "BL-1", Quantity: 7})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdatePart(ctx, created.ID, UpdatePartInput{
		Name:     strPtr("Timing Belt"),
		Location: strPtr("A-14"),
		IsActive: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Timing Belt" || updated.IsActive {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if updated.Quantity != 7 {
		t.Fatalf("update must not change quantity, got %d", updated.Quantity)
	}
}

func TestDeletePart(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	created, err := svc.CreatePart(ctx, CreatePartInput{Name: "Hose", SKU: "HS-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeletePart(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err = svc.DeletePart(ctx, created.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestListPartsFilters(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	supplier := &models.Supplier{ID: uuid.New(), Name: "NGK"}
	if err := db.Create(supplier).Error; err != nil {
		t.Fatalf("seed supplier: %v", err)
	}

	seed := []models.Part{
		{ID: uuid.New(), Name: "Brake Pad Front", SKU: "BPF-1", Quantity: 2, ReorderLevel: intPtr(5), IsActive: true, SupplierID: &supplier.ID},
		{ID: uuid.New(), Name: "Brake Pad Rear", SKU: "BPR-1", Quantity: 50, ReorderLevel: intPtr(5), IsActive: true},
		{ID: uuid.New(), Name: "Wiper Blade", SKU: "WB-1", Quantity: 9, IsActive: false, Barcode: strPtr("4902030")},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed part: %v", err)
		}
	}

	result, err := svc.ListParts(ctx, ListFilter{Search: "brake PAD"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Total != 2 || len(result.Items) != 2 {
		t.Fatalf("expected 2 brake pads, got %+v", result)
	}

	result, err = svc.ListParts(ctx, ListFilter{Search: "4902030"})
	if err != nil {
		t.Fatalf("barcode search: %v", err)
	}
	if result.Total != 1 || result.Items[0].SKU != "WB-1" {
		t.Fatalf("expected barcode match, got %+v", result)
	}

	result, err = svc.ListParts(ctx, ListFilter{LowOnly: true})
	if err != nil {
		t.Fatalf("low only: %v", err)
	}
	if result.Total != 1 || result.Items[0].SKU != "BPF-1" || !result.Items[0].IsLowStock {
		t.Fatalf("expected one low-stock part, got %+v", result)
	}

	result, err = svc.ListParts(ctx, ListFilter{SupplierID: &supplier.ID})
	if err != nil {
		t.Fatalf("supplier filter: %v", err)
	}
	if result.Total != 1 || result.Items[0].SKU != "BPF-1" {
		t.Fatalf("expected one supplier part, got %+v", result)
	}

	result, err = svc.ListParts(ctx, ListFilter{Active: boolPtr(false)})
	if err != nil {
		t.Fatalf("active filter: %v", err)
	}
	if result.Total != 1 || result.Items[0].SKU != "WB-1" {
		t.Fatalf("expected one inactive part, got %+v", result)
	}
}

func TestListPartsPagination(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		part := models.Part{
			ID:       uuid.New(),
			Name:     "Filter " + string(rune('A'+i)),
			SKU:      "F-" + uuid.NewString()[:8],
			IsActive: true,
		}
		if err := db.Create(&part).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	result, err := svc.ListParts(ctx, ListFilter{Page: pagination.Params{Page: 2, PageSize: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Total != 5 || len(result.Items) != 2 {
		t.Fatalf("expected total 5 with 2 rows, got %+v", result)
	}
	if result.Page != 2 || result.PageSize != 2 {
		t.Fatalf("expected normalized page echo, got %+v", result)
	}
	if result.Items[0].Name != "Filter C" {
		t.Fatalf("expected name-ordered second page, got %q", result.Items[0].Name)
	}
}
