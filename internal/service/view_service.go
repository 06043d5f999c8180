package service

import (
	"context"
	"fmt"

	"duitsplit/internal/calculator"
	"duitsplit/internal/models"
	"duitsplit/internal/storage"
)

// ViewService serves the cross-bill aggregation views: what the caller
// owes, what the caller is owed, and the completed-bill history. All
// amounts are rounded to 2 decimal places.
type ViewService struct {
	store storage.Store
}

func NewViewService(store storage.Store) *ViewService {
	return &ViewService{store: store}
}

// CurrencyAmount is one currency bucket of a counterparty balance.
type CurrencyAmount struct {
	Currency string  `json:"currency"`
	Total    float64 `json:"total"`
}

// CounterpartyBalance groups outstanding amounts per counterparty, one
// bucket per currency.
type CounterpartyBalance struct {
	UserID    string           `json:"user_id"`
	Username  string           `json:"username"`
	AvatarURL string           `json:"avatar_url"`
	Amounts   []CurrencyAmount `json:"amounts"`
}

// BillGroupEntry is one counterparty line within a bill group.
type BillGroupEntry struct {
	UserID    string  `json:"user_id"`
	Username  string  `json:"username"`
	AvatarURL string  `json:"avatar_url"`
	Amount    float64 `json:"amount"`
}

// BillGroup groups settlement rows under their bill, newest bill first.
type BillGroup struct {
	BillID    int64            `json:"bill_id"`
	BillName  string           `json:"bill_name"`
	BillDate  string           `json:"bill_date"`
	Currency  string           `json:"currency"`
	TotalBill float64          `json:"total_bill"`
	Entries   []BillGroupEntry `json:"entries"`
}

// groupByCounterparty folds aggregated rows into one balance per
// counterparty, preserving the rows' username ordering.
func groupByCounterparty(rows []*models.OutstandingRow) []*CounterpartyBalance {
	balances := make([]*CounterpartyBalance, 0)
	index := make(map[string]*CounterpartyBalance)
	for _, row := range rows {
		b, ok := index[row.CounterpartyID]
		if !ok {
			b = &CounterpartyBalance{
				UserID:    row.CounterpartyID,
				Username:  row.Username,
				AvatarURL: row.AvatarURL,
			}
			index[row.CounterpartyID] = b
			balances = append(balances, b)
		}
		b.Amounts = append(b.Amounts, CurrencyAmount{
			Currency: row.Currency,
			Total:    calculator.Round2(row.Total),
		})
	}
	return balances
}

// groupByBill folds settlement rows into per-bill groups, preserving
// the rows' bill ordering (date descending, then row id).
func groupByBill(rows []*models.BillSettlementRow) []*BillGroup {
	groups := make([]*BillGroup, 0)
	index := make(map[int64]*BillGroup)
	for _, row := range rows {
		g, ok := index[row.BillID]
		if !ok {
			g = &BillGroup{
				BillID:    row.BillID,
				BillName:  row.BillName,
				BillDate:  row.BillDate,
				Currency:  row.Currency,
				TotalBill: row.TotalBill,
			}
			index[row.BillID] = g
			groups = append(groups, g)
		}
		g.Entries = append(g.Entries, BillGroupEntry{
			UserID:    row.CounterpartyID,
			Username:  row.Username,
			AvatarURL: row.AvatarURL,
			Amount:    calculator.Round2(row.Amount),
		})
	}
	return groups
}

// OwedToMe aggregates what others still owe the caller, per payer and
// currency.
func (s *ViewService) OwedToMe(ctx context.Context, principal string) ([]*CounterpartyBalance, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	rows, err := s.store.ListOutstandingByPayee(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to list outstanding by payee: %w", err)
	}
	return groupByCounterparty(rows), nil
}

// OwedByMe aggregates what the caller still owes, per payee and
// currency.
func (s *ViewService) OwedByMe(ctx context.Context, principal string) ([]*CounterpartyBalance, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	rows, err := s.store.ListOutstandingByPayer(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to list outstanding by payer: %w", err)
	}
	return groupByCounterparty(rows), nil
}

// OwedToMeByBill breaks the owed-to-me view down per bill.
func (s *ViewService) OwedToMeByBill(ctx context.Context, principal string) ([]*BillGroup, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	rows, err := s.store.ListOutstandingRowsForPayee(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to list outstanding rows: %w", err)
	}
	return groupByBill(rows), nil
}

// OwedByMeByBill breaks the owed-by-me view down per bill.
func (s *ViewService) OwedByMeByBill(ctx context.Context, principal string) ([]*BillGroup, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	rows, err := s.store.ListOutstandingRowsForPayer(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to list outstanding rows: %w", err)
	}
	return groupByBill(rows), nil
}

// CompletedOwedByMe lists what the caller paid on completed bills,
// grouped per bill.
func (s *ViewService) CompletedOwedByMe(ctx context.Context, principal string) ([]*BillGroup, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	rows, err := s.store.ListCompletedRowsForPayer(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed rows: %w", err)
	}
	return groupByBill(rows), nil
}

// CompletedOwedToMe lists what the caller collected on completed
// bills, grouped per bill.
func (s *ViewService) CompletedOwedToMe(ctx context.Context, principal string) ([]*BillGroup, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	rows, err := s.store.ListCompletedRowsForPayee(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed rows: %w", err)
	}
	return groupByBill(rows), nil
}
