package models

// SettlementStatus is the per-payer payment state.
//
// Transitions: unpaid -> pending (payer marks intent to pay),
// pending -> paid (creator approves), and unpaid/pending -> paid when
// the creator force-settles.
type SettlementStatus string

const (
	SettlementUnpaid  SettlementStatus = "unpaid"
	SettlementPending SettlementStatus = "pending"
	SettlementPaid    SettlementStatus = "paid"
)

// Settlement aggregates everything one payer owes the bill creator
// across all expenses of a bill. Exactly one row exists per
// (bill, payer); the creator's own row is paid from the moment it is
// generated.
type Settlement struct {
	ID         int64            `json:"id"`
	BillID     int64            `json:"bill_id"`
	PayerID    string           `json:"payer_id"`
	PayeeID    string           `json:"payee_id"`
	AmountOwed float64          `json:"amount_owed"`
	AmountPaid float64          `json:"amount_paid"`
	Status     SettlementStatus `json:"status"`
	CreatedAt  int64            `json:"-"`
	UpdatedAt  int64            `json:"-"`
}

// ParticipantSettlement is a bill participant joined with their
// settlement row, defaulting to an unpaid zero settlement when none has
// been generated yet.
type ParticipantSettlement struct {
	UserID     string           `json:"user_id"`
	Username   string           `json:"username"`
	AvatarURL  string           `json:"avatar_url"`
	AmountOwed float64          `json:"amount_owed"`
	AmountPaid float64          `json:"amount_paid"`
	Status     SettlementStatus `json:"status"`
}

// SettlementDetail is a settlement row joined with the payer's profile.
type SettlementDetail struct {
	PayerID    string           `json:"payer_id"`
	PayeeID    string           `json:"payee_id"`
	Username   string           `json:"username"`
	AvatarURL  string           `json:"avatar_url"`
	AmountOwed float64          `json:"amount_owed"`
	AmountPaid float64          `json:"amount_paid"`
	Status     SettlementStatus `json:"status"`
}

// OutstandingRow is an unpaid balance aggregated per counterparty and
// currency, as produced by the owed-to-me and owed-by-me views.
type OutstandingRow struct {
	CounterpartyID string  `json:"user_id"`
	Username       string  `json:"username"`
	AvatarURL      string  `json:"avatar_url"`
	Currency       string  `json:"currency"`
	Total          float64 `json:"total"`
}

// BillSettlementRow is a single settlement joined with its bill and the
// counterparty's profile, used by the grouped-by-bill views. Amount is
// the outstanding remainder (owed - paid) for open views and the full
// owed amount for completed views.
type BillSettlementRow struct {
	SettlementID   int64   `json:"-"`
	BillID         int64   `json:"bill_id"`
	BillName       string  `json:"bill_name"`
	BillDate       string  `json:"bill_date"`
	Currency       string  `json:"currency"`
	TotalBill      float64 `json:"total_bill"`
	CounterpartyID string  `json:"user_id"`
	Username       string  `json:"username"`
	AvatarURL      string  `json:"avatar_url"`
	Amount         float64 `json:"amount"`
}
