package service

import (
	"context"
	"fmt"
	"log/slog"

	"duitsplit/internal/calculator"
	"duitsplit/internal/models"
	"duitsplit/internal/storage"
)

// SplitService assigns expense shares to participants and folds them
// into per-payer settlements.
type SplitService struct {
	store storage.Store
}

func NewSplitService(store storage.Store) *SplitService {
	return &SplitService{store: store}
}

// EqualSplitRequest splits an expense evenly across the listed users.
type EqualSplitRequest struct {
	ParticipantIDs []string `json:"participants" binding:"required,min=1"`
}

// CustomSplitRequest assigns explicit per-user shares. The shares must
// sum to the expense's effective amount.
type CustomSplitRequest struct {
	Shares map[string]float64 `json:"splits" binding:"required"`
}

// GenerateSettlementsRequest folds per-expense splits into settlement
// rows. Splits are keyed by expense ID; currency applies to the bill
// totals and defaults to models.DefaultCurrency.
type GenerateSettlementsRequest struct {
	Splits   map[int64]map[string]float64
	Currency string
}

// GenerateSettlementsResponse reports the recomputed bill totals.
type GenerateSettlementsResponse struct {
	BillID      int64   `json:"bill_id"`
	Currency    string  `json:"currency"`
	TotalBill   float64 `json:"total_bill"`
	TotalAmount float64 `json:"total_amount"`
	TotalNet    float64 `json:"total_net"`
}

// EqualSplit replaces the splits of an expense with an even division
// across the listed participants.
func (s *SplitService) EqualSplit(ctx context.Context, principal string, expenseID int64, req EqualSplitRequest) ([]*models.Split, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	if len(req.ParticipantIDs) == 0 {
		return nil, invalid("participants required")
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if expense == nil {
		return nil, notFound("Expense not found")
	}

	shares, err := calculator.EqualSplit(expense.EffectiveAmount(), req.ParticipantIDs)
	if err != nil {
		return nil, invalid(err.Error())
	}
	if err := s.store.ReplaceSplits(ctx, expenseID, shares); err != nil {
		return nil, fmt.Errorf("failed to replace splits: %w", err)
	}

	splits, err := s.store.ListSplits(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	return splits, nil
}

// CustomSplit replaces the splits of an expense with caller-supplied
// shares, validated to sum to the effective amount.
func (s *SplitService) CustomSplit(ctx context.Context, principal string, expenseID int64, req CustomSplitRequest) ([]*models.Split, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if expense == nil {
		return nil, notFound("Expense not found")
	}

	if err := calculator.ValidateCustomSplit(expense.EffectiveAmount(), req.Shares); err != nil {
		return nil, invalid(err.Error())
	}
	if err := s.store.ReplaceSplits(ctx, expenseID, req.Shares); err != nil {
		return nil, fmt.Errorf("failed to replace splits: %w", err)
	}

	splits, err := s.store.ListSplits(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	return splits, nil
}

// Splits returns the current shares of an expense.
func (s *SplitService) Splits(ctx context.Context, expenseID int64) ([]*models.Split, error) {
	splits, err := s.store.ListSplits(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	return splits, nil
}

// GenerateSettlements rebuilds the settlement rows of a bill from the
// supplied splits. All existing rows are dropped first, so regeneration
// is idempotent; the creator's own row comes back already paid.
func (s *SplitService) GenerateSettlements(ctx context.Context, principal string, billID int64, req GenerateSettlementsRequest) (*GenerateSettlementsResponse, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	if len(req.Splits) == 0 {
		return nil, invalid("No splits provided")
	}

	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	if bill == nil || bill.Deleted {
		return nil, notFound("Bill not found")
	}
	if bill.CreatorID != principal {
		return nil, forbidden("Only the bill creator can generate settlements")
	}

	expenseAmounts := make(map[int64]float64, len(req.Splits))
	for expenseID := range req.Splits {
		expense, err := s.store.GetExpense(ctx, expenseID)
		if err != nil {
			return nil, fmt.Errorf("failed to get expense: %w", err)
		}
		if expense != nil {
			expenseAmounts[expenseID] = expense.EffectiveAmount()
		}
	}

	totals, drafts, err := calculator.GenerateSettlements(bill.CreatorID, expenseAmounts, req.Splits)
	if err != nil {
		return nil, invalid(err.Error())
	}

	currency := req.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	billTotals := models.BillTotals{
		TotalBill:   totals.TotalBill,
		TotalAmount: totals.TotalAmount,
		TotalNet:    totals.TotalNet,
	}
	if err := s.store.ReplaceSettlements(ctx, billID, bill.CreatorID, drafts, billTotals, currency); err != nil {
		slog.Error("failed to replace settlements", "bill_id", billID, "error", err)
		return nil, fmt.Errorf("failed to replace settlements: %w", err)
	}

	return &GenerateSettlementsResponse{
		BillID:      billID,
		Currency:    currency,
		TotalBill:   totals.TotalBill,
		TotalAmount: totals.TotalAmount,
		TotalNet:    totals.TotalNet,
	}, nil
}
