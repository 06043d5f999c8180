package sqlite

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"duitsplit/internal/calculator"
	"duitsplit/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, store *SQLiteStore, id string) {
	t.Helper()
	if err := store.EnsureUser(context.Background(), &models.User{ID: id, Username: id}); err != nil {
		t.Fatalf("failed to seed user %s: %v", id, err)
	}
}

func seedBill(t *testing.T, store *SQLiteStore, creator string, participants ...string) int64 {
	t.Helper()
	ctx := context.Background()
	seedUser(t, store, creator)
	for _, p := range participants {
		seedUser(t, store, p)
	}
	bill := &models.Bill{
		Name:      "Test bill",
		Date:      "2025-01-15",
		CreatorID: creator,
		Currency:  models.DefaultCurrency,
		Status:    models.BillOpen,
		Visible:   true,
	}
	if err := store.CreateBill(ctx, bill, participants); err != nil {
		t.Fatalf("failed to create bill: %v", err)
	}
	return bill.ID
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.EnsureUser(ctx, &models.User{ID: "u1", Username: "first"}); err != nil {
		t.Fatalf("failed to ensure user: %v", err)
	}
	if err := store.EnsureUser(ctx, &models.User{ID: "u1", Username: "second"}); err != nil {
		t.Fatalf("failed to re-ensure user: %v", err)
	}

	u, err := store.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if u.Username != "first" {
		t.Errorf("expected first write to win, got %s", u.Username)
	}
}

func TestGetFriendshipEitherDirection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedUser(t, store, "a")
	seedUser(t, store, "b")
	f := &models.Friendship{RequesterID: "a", ReceiverID: "b"}
	if err := store.CreateFriendship(ctx, f); err != nil {
		t.Fatalf("failed to create friendship: %v", err)
	}

	forward, err := store.GetFriendship(ctx, "a", "b")
	if err != nil {
		t.Fatalf("failed to get friendship: %v", err)
	}
	reverse, err := store.GetFriendship(ctx, "b", "a")
	if err != nil {
		t.Fatalf("failed to get friendship: %v", err)
	}
	if forward == nil || reverse == nil {
		t.Fatal("expected the edge to be found from both directions")
	}
	if forward.ID != reverse.ID {
		t.Errorf("expected the same row, got %d and %d", forward.ID, reverse.ID)
	}
}

func TestReplaceSettlementsResetsRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	billID := seedBill(t, store, "creator", "payer")
	drafts := []calculator.SettlementDraft{
		{PayerID: "creator", AmountOwed: 10, AmountPaid: 10, Paid: true},
		{PayerID: "payer", AmountOwed: 10},
	}
	totals := models.BillTotals{TotalBill: 20, TotalAmount: 20}

	if err := store.ReplaceSettlements(ctx, billID, "creator", drafts, totals, "RM"); err != nil {
		t.Fatalf("failed to replace settlements: %v", err)
	}
	if _, err := store.MarkSettlementPaid(ctx, billID, "payer", false); err != nil {
		t.Fatalf("failed to mark paid: %v", err)
	}

	// Regeneration drops the paid state along with the old rows.
	if err := store.ReplaceSettlements(ctx, billID, "creator", drafts, totals, "RM"); err != nil {
		t.Fatalf("failed to regenerate settlements: %v", err)
	}
	st, err := store.GetSettlement(ctx, billID, "payer")
	if err != nil {
		t.Fatalf("failed to get settlement: %v", err)
	}
	if st.Status != models.SettlementUnpaid {
		t.Errorf("expected unpaid after regeneration, got %s", st.Status)
	}

	bill, err := store.GetBill(ctx, billID)
	if err != nil {
		t.Fatalf("failed to get bill: %v", err)
	}
	if math.Abs(bill.TotalBill-20) > 0.01 {
		t.Errorf("expected total_bill 20, got %f", bill.TotalBill)
	}
}

func TestUpsertSettlementRequestPreservesPaid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	billID := seedBill(t, store, "creator", "payer")
	if err := store.UpsertSettlementRequest(ctx, billID, "payer", "creator", 15); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if _, err := store.MarkSettlementPaid(ctx, billID, "payer", false); err != nil {
		t.Fatalf("failed to mark paid: %v", err)
	}

	// Re-requesting refreshes the owed amount but keeps paid state.
	if err := store.UpsertSettlementRequest(ctx, billID, "payer", "creator", 20); err != nil {
		t.Fatalf("failed to re-upsert: %v", err)
	}
	st, err := store.GetSettlement(ctx, billID, "payer")
	if err != nil {
		t.Fatalf("failed to get settlement: %v", err)
	}
	if st.Status != models.SettlementPaid {
		t.Errorf("expected paid status preserved, got %s", st.Status)
	}
	if math.Abs(st.AmountOwed-20) > 0.01 {
		t.Errorf("expected owed amount refreshed to 20, got %f", st.AmountOwed)
	}
	if math.Abs(st.AmountPaid-15) > 0.01 {
		t.Errorf("expected paid amount kept at 15, got %f", st.AmountPaid)
	}
}

func TestMarkSettlementPaidPendingOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	billID := seedBill(t, store, "creator", "payer")
	if err := store.UpsertSettlementRequest(ctx, billID, "payer", "creator", 15); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	// An unpaid row does not satisfy the pending-only transition.
	n, err := store.MarkSettlementPaid(ctx, billID, "payer", true)
	if err != nil {
		t.Fatalf("failed to mark paid: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no rows updated, got %d", n)
	}

	if err := store.MarkSettlementPending(ctx, billID, "payer"); err != nil {
		t.Fatalf("failed to mark pending: %v", err)
	}
	n, err = store.MarkSettlementPaid(ctx, billID, "payer", true)
	if err != nil {
		t.Fatalf("failed to mark paid: %v", err)
	}
	if n != 1 {
		t.Errorf("expected one row updated, got %d", n)
	}
}

func TestReplaceSplitsIsAtomicSwap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	billID := seedBill(t, store, "creator", "payer")
	expense := &models.Expense{BillID: billID, Name: "Item", Amount: 30}
	if err := store.AddExpense(ctx, expense); err != nil {
		t.Fatalf("failed to add expense: %v", err)
	}

	first := map[string]float64{"creator": 10, "payer": 20}
	if err := store.ReplaceSplits(ctx, expense.ID, first); err != nil {
		t.Fatalf("failed to replace splits: %v", err)
	}
	second := map[string]float64{"creator": 15, "payer": 15}
	if err := store.ReplaceSplits(ctx, expense.ID, second); err != nil {
		t.Fatalf("failed to replace splits: %v", err)
	}

	splits, err := store.ListSplits(ctx, expense.ID)
	if err != nil {
		t.Fatalf("failed to list splits: %v", err)
	}
	if len(splits) != 2 {
		t.Fatalf("expected 2 splits, got %d", len(splits))
	}
	for _, split := range splits {
		if math.Abs(split.Amount-15) > 0.01 {
			t.Errorf("expected share 15, got %f for %s", split.Amount, split.UserID)
		}
	}
}

func TestHardDeleteBillRemovesEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	billID := seedBill(t, store, "creator", "payer")
	expense := &models.Expense{BillID: billID, Name: "Item", Amount: 30}
	if err := store.AddExpense(ctx, expense); err != nil {
		t.Fatalf("failed to add expense: %v", err)
	}
	if err := store.ReplaceSplits(ctx, expense.ID, map[string]float64{"payer": 30}); err != nil {
		t.Fatalf("failed to replace splits: %v", err)
	}
	if err := store.UpsertSettlementRequest(ctx, billID, "payer", "creator", 30); err != nil {
		t.Fatalf("failed to upsert settlement: %v", err)
	}

	if err := store.HardDeleteBill(ctx, billID); err != nil {
		t.Fatalf("failed to hard delete: %v", err)
	}

	bill, err := store.GetBill(ctx, billID)
	if err != nil {
		t.Fatalf("failed to get bill: %v", err)
	}
	if bill != nil {
		t.Error("expected bill gone")
	}
	e, err := store.GetExpense(ctx, expense.ID)
	if err != nil {
		t.Fatalf("failed to get expense: %v", err)
	}
	if e != nil {
		t.Error("expected expense gone")
	}
	st, err := store.GetSettlement(ctx, billID, "payer")
	if err != nil {
		t.Fatalf("failed to get settlement: %v", err)
	}
	if st != nil {
		t.Error("expected settlement gone")
	}
}
