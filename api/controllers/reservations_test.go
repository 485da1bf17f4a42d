package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	ressvc "github.com/danielsaucedo/partstracker-backend/internal/reservations"
	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
)

type fakeReservationService struct {
	created *ressvc.CreateInput
}

func (f *fakeReservationService) ListReservations(context.Context) ([]ressvc.ListRow, error) {
	return nil, nil
}

func (f *fakeReservationService) CreateReservation(_ context.Context, input ressvc.CreateInput) (*models.Reservation, error) {
	f.created = &input
	return &models.Reservation{}, nil
}

func TestCreateReservationAcceptsReservedQtyField(t *testing.T) {
	svc := &fakeReservationService{}
	partID := uuid.New()

	body := `{"part_id":"` + partID.String() + `","reserved_qty":2,"reference_code":"WO-11"}`
	rec := postJSON(t, CreateReservation(svc, nil), "/reservations", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.created == nil {
		t.Fatal("reservation never reached the service")
	}
	if svc.created.PartID != partID || svc.created.ReservedQty != 2 {
		t.Fatalf("unexpected create input %+v", svc.created)
	}
	if svc.created.ReferenceCode == nil || *svc.created.ReferenceCode != "WO-11" {
		t.Fatalf("reference code lost: %+v", svc.created)
	}
}

func TestCreateReservationRequiresPositiveReservedQty(t *testing.T) {
	svc := &fakeReservationService{}

	rec := postJSON(t, CreateReservation(svc, nil), "/reservations", `{"part_id":"`+uuid.NewString()+`","reserved_qty":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.created != nil {
		t.Fatal("invalid payload should not reach the service")
	}
}

func TestTransitionReservationParsesStatus(t *testing.T) {
	svc := &fakeLedgerService{}
	id := uuid.New()

	rec := putJSONWithID(t, TransitionReservation(svc, nil), "/reservations/x/status", id, `{"status":"fulfilled"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.transition == nil {
		t.Fatal("transition never reached the ledger")
	}
	if svc.transition.ReservationID != id || svc.transition.NewStatus != enums.ReservationStatusFulfilled {
		t.Fatalf("unexpected transition input %+v", svc.transition)
	}
}

func TestTransitionReservationRejectsUnknownStatus(t *testing.T) {
	svc := &fakeLedgerService{}

	rec := putJSONWithID(t, TransitionReservation(svc, nil), "/reservations/x/status", uuid.New(), `{"status":"pending"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.transition != nil {
		t.Fatal("invalid status should not reach the ledger")
	}
}
