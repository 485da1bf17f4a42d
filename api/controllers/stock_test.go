package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/danielsaucedo/partstracker-backend/internal/ledger"
)

type fakeLedgerService struct {
	movement   *ledger.ManualMovementInput
	receive    *ledger.ReceiveInput
	transition *ledger.TransitionInput
}

func (f *fakeLedgerService) ApplyManualMovement(_ context.Context, input ledger.ManualMovementInput) (int, error) {
	f.movement = &input
	return 7, nil
}

func (f *fakeLedgerService) ReceivePurchaseOrderItems(_ context.Context, input ledger.ReceiveInput) (*ledger.ReceiveResult, error) {
	f.receive = &input
	result := &ledger.ReceiveResult{Received: true}
	for _, item := range input.Items {
		outcome := ledger.ReceiveItemResult{PartID: item.PartID, Applied: item.Qty}
		if item.Qty <= 0 {
			outcome = ledger.ReceiveItemResult{PartID: item.PartID, Skipped: true, Reason: "non-positive quantity"}
		}
		result.Items = append(result.Items, outcome)
	}
	return result, nil
}

func (f *fakeLedgerService) TransitionReservationStatus(_ context.Context, input ledger.TransitionInput) (*ledger.TransitionResult, error) {
	f.transition = &input
	return &ledger.TransitionResult{Updated: true, Status: input.NewStatus}, nil
}

func (f *fakeLedgerService) ListMovements(context.Context, *uuid.UUID, int) ([]ledger.MovementRecord, error) {
	return nil, nil
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestStockInAcceptsQuantityField(t *testing.T) {
	svc := &fakeLedgerService{}
	partID := uuid.New()

	rec := postJSON(t, StockIn(svc, nil), "/stock/in", `{"part_id":"`+partID.String()+`","quantity":3,"note":"restock"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.movement == nil {
		t.Fatal("movement never reached the ledger")
	}
	if svc.movement.Quantity != 3 || svc.movement.PartID != partID {
		t.Fatalf("unexpected movement input %+v", svc.movement)
	}
	if !strings.Contains(rec.Body.String(), `"new_quantity":7`) {
		t.Fatalf("response missing new_quantity: %s", rec.Body.String())
	}
}

func TestStockOutRejectsUnknownQuantityKey(t *testing.T) {
	svc := &fakeLedgerService{}

	rec := postJSON(t, StockOut(svc, nil), "/stock/out", `{"part_id":"`+uuid.NewString()+`","qty":3}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
	if svc.movement != nil {
		t.Fatal("invalid payload should not reach the ledger")
	}
}

func TestStockMovementRequiresPositiveQuantity(t *testing.T) {
	svc := &fakeLedgerService{}

	rec := postJSON(t, StockIn(svc, nil), "/stock/in", `{"part_id":"`+uuid.NewString()+`","quantity":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
