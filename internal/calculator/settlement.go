package calculator

import (
	"fmt"
	"sort"
)

// Totals is the aggregate triple for a bill.
type Totals struct {
	// TotalBill is the sum of all expense amounts.
	TotalBill float64
	// TotalAmount is the sum of all split shares.
	TotalAmount float64
	// TotalNet is TotalAmount - TotalBill. Zero when every expense is
	// fully split; nonzero signals over- or under-assignment.
	TotalNet float64
}

// SettlementDraft is one payer's aggregated balance, ready for insertion.
type SettlementDraft struct {
	PayerID    string
	AmountOwed float64
	AmountPaid float64
	Paid       bool
}

// GenerateSettlements folds per-expense splits into one settlement per
// payer. expenseAmounts maps expense ID to its effective amount; splits
// maps expense ID to that expense's per-user shares.
//
// The creator's own draft is marked paid immediately (self-owed is
// trivially settled); everyone else starts unpaid. Zero and negative
// shares are skipped. Amounts are rounded to 2 decimal places, and the
// drafts come back ordered by payer ID so regeneration is deterministic.
func GenerateSettlements(creatorID string, expenseAmounts map[int64]float64, splits map[int64]map[string]float64) (Totals, []SettlementDraft, error) {
	if len(splits) == 0 {
		return Totals{}, nil, fmt.Errorf("no splits provided")
	}

	var totals Totals
	payerTotals := make(map[string]float64)

	for expenseID, shares := range splits {
		totals.TotalBill += expenseAmounts[expenseID]
		for payerID, amount := range shares {
			if amount <= 0 {
				continue
			}
			totals.TotalAmount += amount
			payerTotals[payerID] += amount
		}
	}

	totals.TotalBill = Round2(totals.TotalBill)
	totals.TotalAmount = Round2(totals.TotalAmount)
	totals.TotalNet = Round2(totals.TotalAmount - totals.TotalBill)

	payers := make([]string, 0, len(payerTotals))
	for p := range payerTotals {
		payers = append(payers, p)
	}
	sort.Strings(payers)

	drafts := make([]SettlementDraft, 0, len(payers))
	for _, payerID := range payers {
		owed := Round2(payerTotals[payerID])
		draft := SettlementDraft{PayerID: payerID, AmountOwed: owed}
		if payerID == creatorID {
			draft.AmountPaid = owed
			draft.Paid = true
		}
		drafts = append(drafts, draft)
	}

	return totals, drafts, nil
}
