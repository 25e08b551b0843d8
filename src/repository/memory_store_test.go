package repository

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"swaprouter/src/model"
)

func pendingOrder(id, submitter string) *model.Order {
	return &model.Order{
		ID:            id,
		Submitter:     submitter,
		TokenIn:       "0x0000000000000000000000000000000000000011",
		TokenOut:      "0x0000000000000000000000000000000000000022",
		TotalAmountIn: model.NewBigInt(big.NewInt(1000)),
		MinTotalOut:   model.NewBigInt(big.NewInt(500)),
		Deadline:      time.Now().Add(time.Hour),
		Status:        model.OrderStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestMemoryOrderStoreCreateIsCompareAndRegister(t *testing.T) {
	store := NewMemoryOrderStore()
	ctx := context.Background()

	order := pendingOrder("0x01", "0xaa")
	if err := store.CreateOrder(ctx, order, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Second registration of the same id must lose.
	err := store.CreateOrder(ctx, pendingOrder("0x01", "0xbb"), nil)
	if !errors.Is(err, model.ErrDuplicateOrder) {
		t.Fatalf("expected ErrDuplicateOrder, got %v", err)
	}

	count, _ := store.CountOrders(ctx)
	if count != 1 {
		t.Fatalf("expected 1 order, got %d", count)
	}
}

func TestMemoryOrderStoreAdvancesNonceOnCreate(t *testing.T) {
	store := NewMemoryOrderStore()
	ctx := context.Background()

	nonce, _ := store.CurrentNonce(ctx, "0xaa")
	if nonce != 0 {
		t.Fatalf("unseen submitter must start at 0, got %d", nonce)
	}

	if err := store.CreateOrder(ctx, pendingOrder("0x01", "0xaa"), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.CreateOrder(ctx, pendingOrder("0x02", "0xaa"), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nonce, _ = store.CurrentNonce(ctx, "0xaa")
	if nonce != 2 {
		t.Fatalf("expected nonce 2, got %d", nonce)
	}

	other, _ := store.CurrentNonce(ctx, "0xbb")
	if other != 0 {
		t.Fatalf("nonces must be per submitter, got %d", other)
	}
}

func TestMemoryOrderStoreTerminalTransitions(t *testing.T) {
	store := NewMemoryOrderStore()
	ctx := context.Background()

	routes := []model.RouteSplit{{OrderID: "0x01", VenueID: "uni-v2", AmountIn: model.NewBigInt(big.NewInt(1000)), MinAmountOut: model.NewBigInt(big.NewInt(500))}}
	if err := store.CreateOrder(ctx, pendingOrder("0x01", "0xaa"), routes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	executedAt := time.Now().UTC()
	realized := []*model.BigInt{model.NewBigInt(big.NewInt(980))}
	if err := store.MarkExecuted(ctx, "0x01", executedAt, realized); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order, _ := store.GetOrder(ctx, "0x01")
	if !order.Executed || order.Status != model.OrderStatusExecuted || order.ExecutedAt == nil {
		t.Fatalf("unexpected order after execute: %+v", order)
	}

	stored, _ := store.GetRoutes(ctx, "0x01")
	if len(stored) != 1 || !stored[0].Executed {
		t.Fatalf("routes must flip to executed: %+v", stored)
	}
	if stored[0].RealizedOut == nil || stored[0].RealizedOut.Big().Int64() != 980 {
		t.Fatalf("expected realized output 980, got %v", stored[0].RealizedOut)
	}
}

func TestMemoryOrderStoreRefund(t *testing.T) {
	store := NewMemoryOrderStore()
	ctx := context.Background()

	if err := store.CreateOrder(ctx, pendingOrder("0x01", "0xaa"), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.MarkRefunded(ctx, "0x01", model.NewBigInt(big.NewInt(1000))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order, _ := store.GetOrder(ctx, "0x01")
	if !order.Refunded || order.Status != model.OrderStatusRefunded {
		t.Fatalf("unexpected order after refund: %+v", order)
	}
	if order.RefundAmount.Big().Int64() != 1000 {
		t.Fatalf("expected refund amount 1000, got %s", order.RefundAmount)
	}
}

func TestMemoryOrderStoreResults(t *testing.T) {
	store := NewMemoryOrderStore()
	ctx := context.Background()

	result, _ := store.GetResult(ctx, "0x01")
	if result != nil {
		t.Fatalf("expected nil result for unknown order")
	}

	saved := &model.ExecutionResult{OrderID: "0x01", Success: true, Output: model.NewBigInt(big.NewInt(600))}
	if err := store.SaveResult(ctx, saved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, _ = store.GetResult(ctx, "0x01")
	if result == nil || !result.Success || result.Output.Big().Int64() != 600 {
		t.Fatalf("unexpected stored result: %+v", result)
	}
}

func TestMemoryOrderStoreGetUnknown(t *testing.T) {
	store := NewMemoryOrderStore()
	order, err := store.GetOrder(context.Background(), "0xmissing")
	if err != nil || order != nil {
		t.Fatalf("expected (nil, nil) for unknown order, got %v, %v", order, err)
	}
}

func TestMemoryVenueStoreUpsertPreservesSeq(t *testing.T) {
	store := NewMemoryVenueStore()
	ctx := context.Background()

	created, err := store.UpsertVenue(ctx, &model.Venue{ID: "uni-v2", Router: "0x01"})
	if err != nil || !created {
		t.Fatalf("expected fresh insert, created=%v err=%v", created, err)
	}
	if _, err := store.UpsertVenue(ctx, &model.Venue{ID: "sushi", Router: "0x02"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, err = store.UpsertVenue(ctx, &model.Venue{ID: "uni-v2", Router: "0x03"})
	if err != nil || created {
		t.Fatalf("expected update, created=%v err=%v", created, err)
	}

	venues, _ := store.ListVenues(ctx)
	if len(venues) != 2 {
		t.Fatalf("expected 2 venues, got %d", len(venues))
	}
	if venues[0].ID != "uni-v2" || venues[1].ID != "sushi" {
		t.Fatalf("enumeration order changed: %s, %s", venues[0].ID, venues[1].ID)
	}
	if venues[0].Router != "0x03" {
		t.Fatalf("expected updated router, got %s", venues[0].Router)
	}

	count, _ := store.CountVenues(ctx)
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
}

func TestMemoryVenueStoreGetUnknown(t *testing.T) {
	store := NewMemoryVenueStore()
	venue, err := store.GetVenue(context.Background(), "missing")
	if err != nil || venue != nil {
		t.Fatalf("expected (nil, nil) for unknown venue, got %v, %v", venue, err)
	}
}
