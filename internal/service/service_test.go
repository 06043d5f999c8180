package service

import (
	"context"
	"path/filepath"
	"testing"

	"duitsplit/internal/models"
	"duitsplit/internal/storage"
	"duitsplit/internal/storage/sqlite"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, store storage.Store, id, username string) {
	t.Helper()
	err := store.EnsureUser(context.Background(), &models.User{ID: id, Username: username})
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", id, err)
	}
}

// makeFriends seeds both users and establishes an accepted friendship.
// A no-op when the edge already exists.
func makeFriends(t *testing.T, store storage.Store, a, b string) {
	t.Helper()
	ctx := context.Background()
	seedUser(t, store, a, a)
	seedUser(t, store, b, b)
	existing, err := store.GetFriendship(ctx, a, b)
	if err != nil {
		t.Fatalf("failed to check friendship: %v", err)
	}
	if existing != nil {
		return
	}
	f := &models.Friendship{RequesterID: a, ReceiverID: b}
	if err := store.CreateFriendship(ctx, f); err != nil {
		t.Fatalf("failed to create friendship: %v", err)
	}
	if _, err := store.AcceptFriendship(ctx, a, b); err != nil {
		t.Fatalf("failed to accept friendship: %v", err)
	}
}

// setupSettledBill creates a bill by creator with the given
// participants, adds one expense of amount split equally across
// everyone (creator included), and generates settlements. Returns the
// bill ID.
func setupSettledBill(t *testing.T, store storage.Store, creator string, participants []string, amount float64) int64 {
	t.Helper()
	ctx := context.Background()

	for _, p := range participants {
		makeFriends(t, store, creator, p)
	}

	bills := NewBillService(store)
	bill, err := bills.Create(ctx, creator, CreateBillRequest{
		Name:           "Dinner",
		Date:           "2025-06-01",
		ParticipantIDs: participants,
	})
	if err != nil {
		t.Fatalf("failed to create bill: %v", err)
	}

	expenses := NewExpenseService(store)
	expense, err := expenses.Add(ctx, creator, bill.ID, AddExpenseRequest{
		Name:   "Food",
		Amount: amount,
	})
	if err != nil {
		t.Fatalf("failed to add expense: %v", err)
	}

	splitter := NewSplitService(store)
	everyone := append([]string{creator}, participants...)
	if _, err := splitter.EqualSplit(ctx, creator, expense.ID, EqualSplitRequest{ParticipantIDs: everyone}); err != nil {
		t.Fatalf("failed to split expense: %v", err)
	}

	shares, err := store.ListBillSplits(ctx, bill.ID)
	if err != nil {
		t.Fatalf("failed to list splits: %v", err)
	}
	if _, err := splitter.GenerateSettlements(ctx, creator, bill.ID, GenerateSettlementsRequest{Splits: shares}); err != nil {
		t.Fatalf("failed to generate settlements: %v", err)
	}
	return bill.ID
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %d, got nil", want)
	}
	svcErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if svcErr.Kind != want {
		t.Errorf("expected kind %d, got %d (%s)", want, svcErr.Kind, svcErr.Message)
	}
}
