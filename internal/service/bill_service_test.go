package service

import (
	"context"
	"math"
	"testing"

	"duitsplit/internal/models"
)

func TestCreateBillRequiresFriendship(t *testing.T) {
	store := newTestStore(t)
	svc := NewBillService(store)
	ctx := context.Background()

	seedUser(t, store, "alice", "alice")
	seedUser(t, store, "stranger", "stranger")

	_, err := svc.Create(ctx, "alice", CreateBillRequest{
		Name:           "Lunch",
		Date:           "2025-05-01",
		ParticipantIDs: []string{"stranger"},
	})
	assertKind(t, err, KindInvalid)

	makeFriends(t, store, "alice", "stranger")
	bill, err := svc.Create(ctx, "alice", CreateBillRequest{
		Name:           "Lunch",
		Date:           "2025-05-01",
		ParticipantIDs: []string{"stranger"},
	})
	if err != nil {
		t.Fatalf("failed to create bill: %v", err)
	}
	if bill.Status != models.BillOpen || !bill.Visible {
		t.Errorf("expected open visible bill, got status=%s visible=%v", bill.Status, bill.Visible)
	}

	participants, err := store.ListParticipants(ctx, bill.ID)
	if err != nil {
		t.Fatalf("failed to list participants: %v", err)
	}
	if len(participants) != 2 {
		t.Errorf("expected creator plus one participant, got %d", len(participants))
	}
}

func TestBillDetailsTotalsByCurrency(t *testing.T) {
	store := newTestStore(t)
	bills := NewBillService(store)
	expenses := NewExpenseService(store)
	ctx := context.Background()

	makeFriends(t, store, "alice", "bob")
	bill, err := bills.Create(ctx, "alice", CreateBillRequest{
		Name:           "Holiday",
		Date:           "2025-08-10",
		ParticipantIDs: []string{"bob"},
	})
	if err != nil {
		t.Fatalf("failed to create bill: %v", err)
	}

	if _, err := expenses.Add(ctx, "alice", bill.ID, AddExpenseRequest{Name: "Hotel", Amount: 200}); err != nil {
		t.Fatalf("failed to add expense: %v", err)
	}
	if _, err := expenses.Add(ctx, "alice", bill.ID, AddExpenseRequest{Name: "Taxi", Amount: 15.50}); err != nil {
		t.Fatalf("failed to add expense: %v", err)
	}
	meal, err := expenses.Add(ctx, "alice", bill.ID, AddExpenseRequest{Name: "Meal", Amount: 100, Currency: "SGD"})
	if err != nil {
		t.Fatalf("failed to add expense: %v", err)
	}
	// Converting moves the expense into the target currency bucket.
	if _, err := expenses.Convert(ctx, "alice", meal.ID, ConvertExpenseRequest{Rate: 3.3, Currency: "RM"}); err != nil {
		t.Fatalf("failed to convert expense: %v", err)
	}

	details, err := bills.Details(ctx, bill.ID)
	if err != nil {
		t.Fatalf("failed to get details: %v", err)
	}
	if math.Abs(details.TotalsByCurrency["RM"]-545.50) > 0.01 {
		t.Errorf("expected RM total 545.50, got %f", details.TotalsByCurrency["RM"])
	}
	if _, ok := details.TotalsByCurrency["SGD"]; ok {
		t.Errorf("expected no SGD bucket after conversion, got %v", details.TotalsByCurrency)
	}
}

func TestSoftDeleteRequiresCompleted(t *testing.T) {
	store := newTestStore(t)
	bills := NewBillService(store)
	payments := NewPaymentService(store)
	ctx := context.Background()

	billID := setupSettledBill(t, store, "carol", []string{"dan"}, 20)

	err := bills.SoftDelete(ctx, "carol", billID)
	assertKind(t, err, KindInvalid)

	if err := payments.SettleAll(ctx, "carol", billID); err != nil {
		t.Fatalf("failed to settle all: %v", err)
	}
	if err := bills.SoftDelete(ctx, "carol", billID); err != nil {
		t.Fatalf("failed to soft delete: %v", err)
	}

	// Soft-deleted bills disappear from detail views.
	_, err = bills.Details(ctx, billID)
	assertKind(t, err, KindNotFound)
}

func TestHardDeleteCascades(t *testing.T) {
	store := newTestStore(t)
	bills := NewBillService(store)
	payments := NewPaymentService(store)
	ctx := context.Background()

	billID := setupSettledBill(t, store, "carol", []string{"dan"}, 20)

	if err := payments.SettleAll(ctx, "carol", billID); err != nil {
		t.Fatalf("failed to settle all: %v", err)
	}

	// Only the creator may hard-delete.
	err := bills.HardDelete(ctx, "dan", billID)
	assertKind(t, err, KindForbidden)

	if err := bills.HardDelete(ctx, "carol", billID); err != nil {
		t.Fatalf("failed to hard delete: %v", err)
	}

	bill, err := store.GetBill(ctx, billID)
	if err != nil {
		t.Fatalf("failed to get bill: %v", err)
	}
	if bill != nil {
		t.Errorf("expected bill row gone, got %+v", bill)
	}
	rows, err := store.ListBillSettlements(ctx, billID)
	if err != nil {
		t.Fatalf("failed to list settlements: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected settlements gone, got %d rows", len(rows))
	}
}

func TestWithTotalsParticipantShares(t *testing.T) {
	store := newTestStore(t)
	bills := NewBillService(store)
	ctx := context.Background()

	billID := setupSettledBill(t, store, "carol", []string{"dan", "erin"}, 30)

	view, err := bills.WithTotals(ctx, billID)
	if err != nil {
		t.Fatalf("failed to get bill with totals: %v", err)
	}
	if math.Abs(view.TotalAmount-30) > 0.01 {
		t.Errorf("expected total 30, got %f", view.TotalAmount)
	}
	for _, id := range []string{"carol", "dan", "erin"} {
		if math.Abs(view.ParticipantTotals[id]-10) > 0.01 {
			t.Errorf("expected %s share 10, got %f", id, view.ParticipantTotals[id])
		}
	}
}

func TestReceipt(t *testing.T) {
	store := newTestStore(t)
	bills := NewBillService(store)
	ctx := context.Background()

	billID := setupSettledBill(t, store, "carol", []string{"dan"}, 20)

	receipt, err := bills.Receipt(ctx, billID)
	if err != nil {
		t.Fatalf("failed to get receipt: %v", err)
	}
	if receipt.CreatedBy != "carol" {
		t.Errorf("expected creator carol, got %s", receipt.CreatedBy)
	}
	if len(receipt.Participants) != 2 {
		t.Errorf("expected 2 settlement rows, got %d", len(receipt.Participants))
	}
	if len(receipt.Expenses) != 1 || len(receipt.Expenses[0].SplitWith) != 2 {
		t.Fatalf("expected one expense split two ways, got %+v", receipt.Expenses)
	}
}
