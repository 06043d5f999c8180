// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"duitsplit/internal/calculator"
	"duitsplit/internal/models"
)

// Get* methods return (nil, nil) when the row does not exist; callers
// map that to their own not-found errors.

// UserStore persists user profiles keyed by the external principal ID.
type UserStore interface {
	// EnsureUser inserts the user if no row exists for its ID.
	// Existing rows are left untouched.
	EnsureUser(ctx context.Context, user *models.User) error

	GetUser(ctx context.Context, id string) (*models.User, error)

	UserExists(ctx context.Context, id string) (bool, error)

	// UpdateProfile applies a partial update; nil fields keep the
	// stored value.
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) error

	GetPINHash(ctx context.Context, id string) (string, error)

	SetPINHash(ctx context.Context, id, hash string) error

	// SearchUsers matches usernames by prefix, excluding the searching
	// user, ordered by username.
	SearchUsers(ctx context.Context, query, excludeID string, limit int) ([]*models.User, error)
}

// FriendshipStore persists the friendship state machine.
type FriendshipStore interface {
	// GetFriendship finds the edge between two users in either
	// direction.
	GetFriendship(ctx context.Context, a, b string) (*models.Friendship, error)

	// HasRequest reports whether the exact ordered pair already has a
	// row, regardless of status.
	HasRequest(ctx context.Context, requesterID, receiverID string) (bool, error)

	CreateFriendship(ctx context.Context, f *models.Friendship) error

	// AcceptFriendship flips the pending (requester, receiver) row to
	// accepted. Returns nil when no such row exists.
	AcceptFriendship(ctx context.Context, requesterID, receiverID string) (*models.Friendship, error)

	// DeleteFriendship removes the edge in both directions and returns
	// the number of rows deleted.
	DeleteFriendship(ctx context.Context, a, b string) (int64, error)

	ListIncomingRequests(ctx context.Context, receiverID string) ([]*models.FriendRequest, error)

	ListOutgoingRequests(ctx context.Context, requesterID string) ([]*models.FriendRequest, error)

	// ListFriends returns the accepted counterparties of a user,
	// ordered by username.
	ListFriends(ctx context.Context, userID string) ([]*models.User, error)
}

// BillStore persists bills and their participant sets.
type BillStore interface {
	// CreateBill inserts the bill along with its participant rows; the
	// creator is always included. bill.ID is populated.
	CreateBill(ctx context.Context, bill *models.Bill, participantIDs []string) error

	GetBill(ctx context.Context, billID int64) (*models.Bill, error)

	AddParticipants(ctx context.Context, billID int64, userIDs []string) error

	IsParticipant(ctx context.Context, billID int64, userID string) (bool, error)

	ListParticipants(ctx context.Context, billID int64) ([]*models.User, error)

	// ListParticipantSettlements joins participants with their
	// settlement rows, defaulting missing rows to unpaid zero.
	ListParticipantSettlements(ctx context.Context, billID int64) ([]*models.ParticipantSettlement, error)

	// ListUnpaidParticipants returns non-creator participants whose
	// settlement is not paid.
	ListUnpaidParticipants(ctx context.Context, billID int64) ([]*models.ParticipantSettlement, error)

	SetBillVisibility(ctx context.Context, billID int64, visible bool) error

	SetBillStatus(ctx context.Context, billID int64, status models.BillStatus) error

	SoftDeleteBill(ctx context.Context, billID int64) error

	// HardDeleteBill removes the bill and all dependent rows (expenses,
	// splits, participants, settlements) in one transaction.
	HardDeleteBill(ctx context.Context, billID int64) error
}

// ExpenseStore persists expenses and their splits.
type ExpenseStore interface {
	AddExpense(ctx context.Context, expense *models.Expense) error

	GetExpense(ctx context.Context, expenseID int64) (*models.Expense, error)

	ListExpenses(ctx context.Context, billID int64) ([]*models.Expense, error)

	SetExpenseConversion(ctx context.Context, expenseID int64, converted float64, currency string, rate float64) error

	DeleteExpense(ctx context.Context, expenseID int64) error

	// ReplaceSplits swaps the full split set of an expense atomically.
	ReplaceSplits(ctx context.Context, expenseID int64, shares map[string]float64) error

	ListSplits(ctx context.Context, expenseID int64) ([]*models.Split, error)

	// ListSplitShares joins splits with usernames, ordered by username.
	ListSplitShares(ctx context.Context, expenseID int64) ([]*models.SplitShare, error)

	// ListBillSplits returns every split of a bill as
	// expense ID -> user ID -> amount.
	ListBillSplits(ctx context.Context, billID int64) (map[int64]map[string]float64, error)
}

// SettlementStore persists per-payer settlement rows and serves the
// aggregation views.
type SettlementStore interface {
	// ReplaceSettlements deletes all settlement rows of a bill, inserts
	// the drafts, and updates the bill's totals and currency, all in
	// one transaction.
	ReplaceSettlements(ctx context.Context, billID int64, payeeID string, drafts []calculator.SettlementDraft, totals models.BillTotals, currency string) error

	GetSettlement(ctx context.Context, billID int64, payerID string) (*models.Settlement, error)

	// UpsertSettlementRequest inserts or refreshes a settlement's
	// amount_owed while preserving an already-paid status.
	UpsertSettlementRequest(ctx context.Context, billID int64, payerID, payeeID string, amount float64) error

	// MarkSettlementPending moves a settlement to pending.
	MarkSettlementPending(ctx context.Context, billID int64, payerID string) error

	// MarkSettlementPaid marks one payer's settlement paid, setting
	// amount_paid = amount_owed. With pendingOnly, only a pending row
	// transitions. Returns the number of rows updated.
	MarkSettlementPaid(ctx context.Context, billID int64, payerID string, pendingOnly bool) (int64, error)

	// MarkAllSettlementsPaid marks every non-paid (or, with
	// pendingOnly, every pending) settlement of the bill paid.
	MarkAllSettlementsPaid(ctx context.Context, billID int64, pendingOnly bool) (int64, error)

	// CountUnpaidSettlements counts settlement rows whose status is not
	// paid.
	CountUnpaidSettlements(ctx context.Context, billID int64) (int, error)

	ListPendingSettlements(ctx context.Context, billID int64) ([]*models.SettlementDetail, error)

	// ListBillSettlements returns all settlement rows of a bill joined
	// with payer profiles, ordered by username.
	ListBillSettlements(ctx context.Context, billID int64) ([]*models.SettlementDetail, error)

	// ListOutstandingByPayee aggregates unpaid balances owed TO the
	// given user, grouped per payer and currency.
	ListOutstandingByPayee(ctx context.Context, payeeID string) ([]*models.OutstandingRow, error)

	// ListOutstandingByPayer aggregates unpaid balances owed BY the
	// given user, grouped per payee and currency.
	ListOutstandingByPayer(ctx context.Context, payerID string) ([]*models.OutstandingRow, error)

	// ListOutstandingRowsForPayee returns each unpaid settlement owed
	// to the user with bill context, ordered by bill date descending
	// then settlement id.
	ListOutstandingRowsForPayee(ctx context.Context, payeeID string) ([]*models.BillSettlementRow, error)

	ListOutstandingRowsForPayer(ctx context.Context, payerID string) ([]*models.BillSettlementRow, error)

	// ListCompletedRowsForPayer returns the user's settlements on
	// completed bills, excluding self-owed rows.
	ListCompletedRowsForPayer(ctx context.Context, payerID string) ([]*models.BillSettlementRow, error)

	ListCompletedRowsForPayee(ctx context.Context, payeeID string) ([]*models.BillSettlementRow, error)
}

// Store is the full persistence interface for duitsplit. This
// abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	UserStore
	FriendshipStore
	BillStore
	ExpenseStore
	SettlementStore

	// Close releases any resources held by the store.
	Close() error
}
