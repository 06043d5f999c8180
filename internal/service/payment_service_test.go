package service

import (
	"context"
	"math"
	"testing"

	"duitsplit/internal/models"
)

func TestGenerateSettlementsCreatorAutoPaid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	billID := setupSettledBill(t, store, "carol", []string{"dan", "erin"}, 30)

	own, err := store.GetSettlement(ctx, billID, "carol")
	if err != nil {
		t.Fatalf("failed to get settlement: %v", err)
	}
	if own == nil || own.Status != models.SettlementPaid {
		t.Fatalf("expected creator settlement to be paid, got %+v", own)
	}
	if math.Abs(own.AmountPaid-own.AmountOwed) > 0.01 {
		t.Errorf("expected amount_paid == amount_owed, got %f / %f", own.AmountPaid, own.AmountOwed)
	}

	other, err := store.GetSettlement(ctx, billID, "dan")
	if err != nil {
		t.Fatalf("failed to get settlement: %v", err)
	}
	if other == nil || other.Status != models.SettlementUnpaid {
		t.Fatalf("expected dan's settlement to be unpaid, got %+v", other)
	}
	if math.Abs(other.AmountOwed-10) > 0.01 {
		t.Errorf("expected dan to owe 10, got %f", other.AmountOwed)
	}
}

func TestPayAndApproveCompletesBill(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := NewPaymentService(store)

	billID := setupSettledBill(t, store, "carol", []string{"dan", "erin"}, 30)

	resp, err := svc.Pay(ctx, "dan", billID)
	if err != nil {
		t.Fatalf("failed to pay: %v", err)
	}
	if resp.Status != string(models.SettlementPending) {
		t.Errorf("expected pending status, got %s", resp.Status)
	}

	// Paying twice is a conflict while the first payment is pending.
	_, err = svc.Pay(ctx, "dan", billID)
	assertKind(t, err, KindConflict)

	pending, err := svc.PendingApprovals(ctx, "carol", billID)
	if err != nil {
		t.Fatalf("failed to list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].PayerID != "dan" {
		t.Fatalf("expected dan pending, got %v", pending)
	}

	settlement, err := svc.Approve(ctx, "carol", billID, "dan")
	if err != nil {
		t.Fatalf("failed to approve: %v", err)
	}
	if settlement.Status != models.SettlementPaid {
		t.Errorf("expected paid status, got %s", settlement.Status)
	}

	// One participant still owes; the bill stays open.
	bill, err := store.GetBill(ctx, billID)
	if err != nil {
		t.Fatalf("failed to get bill: %v", err)
	}
	if bill.Status != models.BillOpen {
		t.Errorf("expected bill to remain open, got %s", bill.Status)
	}

	// Force-settling the last participant completes the bill.
	if err := svc.Settle(ctx, "carol", billID, "erin"); err != nil {
		t.Fatalf("failed to settle: %v", err)
	}
	bill, err = store.GetBill(ctx, billID)
	if err != nil {
		t.Fatalf("failed to get bill: %v", err)
	}
	if bill.Status != models.BillCompleted {
		t.Errorf("expected bill completed, got %s", bill.Status)
	}
}

func TestApproveRequiresPending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := NewPaymentService(store)

	billID := setupSettledBill(t, store, "carol", []string{"dan"}, 20)

	// dan never marked intent to pay.
	_, err := svc.Approve(ctx, "carol", billID, "dan")
	assertKind(t, err, KindInvalid)

	_, err = svc.ApproveAll(ctx, "carol", billID)
	assertKind(t, err, KindInvalid)
}

func TestApproveCreatorOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := NewPaymentService(store)

	billID := setupSettledBill(t, store, "carol", []string{"dan"}, 20)

	if _, err := svc.Pay(ctx, "dan", billID); err != nil {
		t.Fatalf("failed to pay: %v", err)
	}
	_, err := svc.Approve(ctx, "dan", billID, "dan")
	assertKind(t, err, KindForbidden)
}

func TestRequestPreservesPaid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := NewPaymentService(store)

	billID := setupSettledBill(t, store, "carol", []string{"dan"}, 20)

	if err := svc.Settle(ctx, "carol", billID, "dan"); err != nil {
		t.Fatalf("failed to settle: %v", err)
	}

	// Requesting payment from an already-settled participant is
	// rejected and the paid row stays untouched.
	err := svc.Request(ctx, "carol", billID, RequestPaymentRequest{PayerID: "dan", Amount: 10})
	assertKind(t, err, KindConflict)

	settlement, err := store.GetSettlement(ctx, billID, "dan")
	if err != nil {
		t.Fatalf("failed to get settlement: %v", err)
	}
	if settlement.Status != models.SettlementPaid {
		t.Errorf("expected settlement to remain paid, got %s", settlement.Status)
	}
}

func TestRequestAllSkipsPaidAndCreator(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := NewPaymentService(store)

	billID := setupSettledBill(t, store, "carol", []string{"dan", "erin"}, 30)

	if err := svc.Settle(ctx, "carol", billID, "dan"); err != nil {
		t.Fatalf("failed to settle: %v", err)
	}

	err := svc.RequestAll(ctx, "carol", billID, RequestAllRequest{
		Totals: map[string]float64{"carol": 10, "dan": 10, "erin": 10},
	})
	if err != nil {
		t.Fatalf("failed to request all: %v", err)
	}

	dan, err := store.GetSettlement(ctx, billID, "dan")
	if err != nil {
		t.Fatalf("failed to get settlement: %v", err)
	}
	if dan.Status != models.SettlementPaid {
		t.Errorf("expected dan to remain paid, got %s", dan.Status)
	}
}

func TestPayRequiresVisibleBill(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	payments := NewPaymentService(store)
	bills := NewBillService(store)

	billID := setupSettledBill(t, store, "carol", []string{"dan"}, 20)

	if err := bills.SetVisibility(ctx, "carol", billID, false); err != nil {
		t.Fatalf("failed to hide bill: %v", err)
	}
	_, err := payments.Pay(ctx, "dan", billID)
	assertKind(t, err, KindForbidden)
}

func TestPayRequiresSettlement(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	payments := NewPaymentService(store)
	bills := NewBillService(store)

	makeFriends(t, store, "carol", "dan")
	bill, err := bills.Create(ctx, "carol", CreateBillRequest{
		Name:           "Trip",
		Date:           "2025-07-01",
		ParticipantIDs: []string{"dan"},
	})
	if err != nil {
		t.Fatalf("failed to create bill: %v", err)
	}

	// No settlements generated yet.
	_, err = payments.Pay(ctx, "dan", bill.ID)
	assertKind(t, err, KindNotFound)

	// Outsiders cannot pay at all.
	seedUser(t, store, "mallory", "mallory")
	_, err = payments.Pay(ctx, "mallory", bill.ID)
	assertKind(t, err, KindForbidden)
}
