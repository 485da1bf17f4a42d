package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
	pkgerrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
)

func newTestEnv(t *testing.T) (*gorm.DB, Service) {
	t.Helper()
	dsn := "file:reservations_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Part{}, &models.Reservation{}))

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return db, svc
}

func seedPart(t *testing.T, db *gorm.DB) *models.Part {
	t.Helper()
	part := &models.Part{ID: uuid.New(), Name: "Clutch Kit", SKU: "CK-" + uuid.NewString()[:8], Quantity: 3}
	require.NoError(t, db.Create(part).Error)
	return part
}

func TestCreateReservation(t *testing.T) {
	t.Parallel()

	db, svc := newTestEnv(t)
	ctx := context.Background()
	part := seedPart(t, db)

	ref := "WO-1042"
	created, err := svc.CreateReservation(ctx, CreateInput{
		PartID:        part.ID,
		ReservedQty:   2,
		ReferenceCode: &ref,
	})
	require.NoError(t, err)
	require.Equal(t, enums.ReservationStatusOpen, created.Status)
	require.Equal(t, 2, created.ReservedQty)

	// Reserving beyond the on-hand count is allowed; the hold is soft.
	over, err := svc.CreateReservation(ctx, CreateInput{PartID: part.ID, ReservedQty: 50})
	require.NoError(t, err)
	require.Equal(t, 50, over.ReservedQty)
}

func TestCreateReservationValidation(t *testing.T) {
	t.Parallel()

	db, svc := newTestEnv(t)
	ctx := context.Background()
	part := seedPart(t, db)

	_, err := svc.CreateReservation(ctx, CreateInput{PartID: part.ID, ReservedQty: 0})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.CreateReservation(ctx, CreateInput{PartID: uuid.New(), ReservedQty: 1})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListReservationsNewestFirst(t *testing.T) {
	t.Parallel()

	db, svc := newTestEnv(t)
	ctx := context.Background()
	part := seedPart(t, db)

	first, err := svc.CreateReservation(ctx, CreateInput{PartID: part.ID, ReservedQty: 1})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Reservation{}).
		Where("id = ?", first.ID).
		Update("created_at", first.CreatedAt.Add(-time.Second)).Error)

	second, err := svc.CreateReservation(ctx, CreateInput{PartID: part.ID, ReservedQty: 2})
	require.NoError(t, err)

	rows, err := svc.ListReservations(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, second.ID, rows[0].ID)
	require.Equal(t, "Clutch Kit", rows[0].PartName)
	require.Equal(t, first.ID, rows[1].ID)
}
