package reports

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
)

func newTestEnv(t *testing.T) (*gorm.DB, Service) {
	t.Helper()
	dsn := "file:reports_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Supplier{}, &models.Part{}, &models.StockMovement{}))

	svc, err := NewService(db)
	require.NoError(t, err)
	return db, svc
}

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestSummary(t *testing.T) {
	t.Parallel()

	db, svc := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Supplier{ID: uuid.New(), Name: "Bosch"}).Error)
	seed := []models.Part{
		{ID: uuid.New(), Name: "Pads", SKU: "P-1", Quantity: 4, ReorderLevel: intPtr(5), Price: decPtr("10.00")},
		{ID: uuid.New(), Name: "Discs", SKU: "D-1", Quantity: 6, Price: decPtr("25.50")},
		{ID: uuid.New(), Name: "Fluid", SKU: "F-1", Quantity: 10},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, summary.Parts)
	require.EqualValues(t, 1, summary.Suppliers)
	require.EqualValues(t, 1, summary.LowStock)
	require.EqualValues(t, 20, summary.TotalQuantity)
	// 4*10.00 + 6*25.50; the unpriced part contributes nothing.
	require.True(t, summary.InventoryValue.Equal(decimal.RequireFromString("193")),
		"got %s", summary.InventoryValue)
}

func TestSlowMoversRanksQuietPartsFirst(t *testing.T) {
	t.Parallel()

	db, svc := newTestEnv(t)
	ctx := context.Background()

	busy := models.Part{ID: uuid.New(), Name: "Busy", SKU: "B-1", Quantity: 50}
	quiet := models.Part{ID: uuid.New(), Name: "Quiet", SKU: "Q-1", Quantity: 50}
	idle := models.Part{ID: uuid.New(), Name: "Idle", SKU: "I-1", Quantity: 50}
	for _, part := range []*models.Part{&busy, &quiet, &idle} {
		require.NoError(t, db.Create(part).Error)
	}

	movements := []models.StockMovement{
		{ID: uuid.New(), PartID: busy.ID, ChangeType: enums.MovementTypeOut, Quantity: 30},
		{ID: uuid.New(), PartID: busy.ID, ChangeType: enums.MovementTypeIn, Quantity: 99},
		{ID: uuid.New(), PartID: quiet.ID, ChangeType: enums.MovementTypeOut, Quantity: 2},
	}
	for i := range movements {
		require.NoError(t, db.Create(&movements[i]).Error)
	}

	rows, err := svc.SlowMovers(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, idle.ID, rows[0].ID)
	require.Equal(t, 0, rows[0].MovedOut)
	require.Equal(t, quiet.ID, rows[1].ID)
	require.Equal(t, 2, rows[1].MovedOut)
	require.Equal(t, busy.ID, rows[2].ID)
	require.Equal(t, 30, rows[2].MovedOut, "inbound movements must not count")
}

func TestLowStockOrdersByQuantity(t *testing.T) {
	t.Parallel()

	db, svc := newTestEnv(t)
	ctx := context.Background()

	seed := []models.Part{
		{ID: uuid.New(), Name: "Nearly Out", SKU: "NO-1", Quantity: 1, ReorderLevel: intPtr(5)},
		{ID: uuid.New(), Name: "Low", SKU: "LO-1", Quantity: 4, ReorderLevel: intPtr(5)},
		{ID: uuid.New(), Name: "Healthy", SKU: "HE-1", Quantity: 50, ReorderLevel: intPtr(5)},
		{ID: uuid.New(), Name: "Untracked", SKU: "UN-1", Quantity: 0},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	rows, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Nearly Out", rows[0].Name)
	require.Equal(t, "Low", rows[1].Name)
	require.Equal(t, 5, rows[0].ReorderLevel)
}
