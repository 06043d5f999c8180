package service

import (
	"context"
	"math"
	"testing"
)

func TestOwedViewsGroupPerCounterparty(t *testing.T) {
	store := newTestStore(t)
	views := NewViewService(store)
	ctx := context.Background()

	// carol fronts two bills; dan owes 10 on each.
	setupSettledBill(t, store, "carol", []string{"dan"}, 20)
	setupSettledBill(t, store, "carol", []string{"dan"}, 20)

	owed, err := views.OwedToMe(ctx, "carol")
	if err != nil {
		t.Fatalf("failed to get owed-to-me: %v", err)
	}
	if len(owed) != 1 {
		t.Fatalf("expected one counterparty, got %d", len(owed))
	}
	if owed[0].UserID != "dan" {
		t.Errorf("expected dan, got %s", owed[0].UserID)
	}
	if len(owed[0].Amounts) != 1 {
		t.Fatalf("expected one currency bucket, got %d", len(owed[0].Amounts))
	}
	if math.Abs(owed[0].Amounts[0].Total-20) > 0.01 {
		t.Errorf("expected dan to owe 20 across both bills, got %f", owed[0].Amounts[0].Total)
	}

	// The same balance shows up from dan's side.
	owing, err := views.OwedByMe(ctx, "dan")
	if err != nil {
		t.Fatalf("failed to get owed-by-me: %v", err)
	}
	if len(owing) != 1 || owing[0].UserID != "carol" {
		t.Fatalf("expected carol as dan's creditor, got %v", owing)
	}
	if math.Abs(owing[0].Amounts[0].Total-20) > 0.01 {
		t.Errorf("expected dan to owe carol 20, got %f", owing[0].Amounts[0].Total)
	}
}

func TestOwedByBillGroups(t *testing.T) {
	store := newTestStore(t)
	views := NewViewService(store)
	ctx := context.Background()

	first := setupSettledBill(t, store, "carol", []string{"dan", "erin"}, 30)

	groups, err := views.OwedToMeByBill(ctx, "carol")
	if err != nil {
		t.Fatalf("failed to get owed-to-me by bill: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected one bill group, got %d", len(groups))
	}
	if groups[0].BillID != first {
		t.Errorf("expected bill %d, got %d", first, groups[0].BillID)
	}
	if len(groups[0].Entries) != 2 {
		t.Fatalf("expected two debtors, got %d", len(groups[0].Entries))
	}
	for _, e := range groups[0].Entries {
		if math.Abs(e.Amount-10) > 0.01 {
			t.Errorf("expected each debtor to owe 10, got %f for %s", e.Amount, e.UserID)
		}
	}
}

func TestPartialPaymentShrinksOutstanding(t *testing.T) {
	store := newTestStore(t)
	views := NewViewService(store)
	payments := NewPaymentService(store)
	ctx := context.Background()

	billID := setupSettledBill(t, store, "carol", []string{"dan", "erin"}, 30)

	if err := payments.Settle(ctx, "carol", billID, "dan"); err != nil {
		t.Fatalf("failed to settle: %v", err)
	}

	owed, err := views.OwedToMe(ctx, "carol")
	if err != nil {
		t.Fatalf("failed to get owed-to-me: %v", err)
	}
	if len(owed) != 1 || owed[0].UserID != "erin" {
		t.Fatalf("expected only erin outstanding, got %v", owed)
	}
}

func TestCompletedViews(t *testing.T) {
	store := newTestStore(t)
	views := NewViewService(store)
	payments := NewPaymentService(store)
	ctx := context.Background()

	billID := setupSettledBill(t, store, "carol", []string{"dan"}, 20)

	// Nothing completed yet.
	groups, err := views.CompletedOwedByMe(ctx, "dan")
	if err != nil {
		t.Fatalf("failed to get completed view: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("expected no completed bills, got %d", len(groups))
	}

	if err := payments.SettleAll(ctx, "carol", billID); err != nil {
		t.Fatalf("failed to settle all: %v", err)
	}

	groups, err = views.CompletedOwedByMe(ctx, "dan")
	if err != nil {
		t.Fatalf("failed to get completed view: %v", err)
	}
	if len(groups) != 1 || groups[0].BillID != billID {
		t.Fatalf("expected the settled bill, got %v", groups)
	}
	if math.Abs(groups[0].Entries[0].Amount-10) > 0.01 {
		t.Errorf("expected dan's paid share 10, got %f", groups[0].Entries[0].Amount)
	}

	// The creator's collected history excludes their own row.
	collected, err := views.CompletedOwedToMe(ctx, "carol")
	if err != nil {
		t.Fatalf("failed to get collected view: %v", err)
	}
	if len(collected) != 1 || len(collected[0].Entries) != 1 {
		t.Fatalf("expected one entry for dan only, got %v", collected)
	}
	if collected[0].Entries[0].UserID != "dan" {
		t.Errorf("expected dan, got %s", collected[0].Entries[0].UserID)
	}
}
