package models

// Expense is a single cost item within a bill. An expense may carry a
// currency conversion: ConvertedAmount = Amount * Rate in
// ConvertedCurrency. Splitting and settlement always work on the
// effective amount.
type Expense struct {
	ID          int64  `json:"id"`
	BillID      int64  `json:"bill_id"`
	Name        string `json:"expense_name"`
	Date        string `json:"expense_date,omitempty"`
	Description string `json:"description,omitempty"`

	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`

	ConvertedAmount   *float64 `json:"converted_amount,omitempty"`
	ConvertedCurrency *string  `json:"converted_currency,omitempty"`
	Rate              *float64 `json:"rate,omitempty"`

	CreatedAt int64 `json:"-"`
}

// EffectiveAmount returns the converted amount when a conversion has
// been applied, otherwise the original amount.
func (e *Expense) EffectiveAmount() float64 {
	if e.ConvertedAmount != nil {
		return *e.ConvertedAmount
	}
	return e.Amount
}

// Split is one participant's share of an expense. The shares of an
// expense always sum to its effective amount.
type Split struct {
	ExpenseID int64   `json:"expense_id"`
	UserID    string  `json:"user_id"`
	Amount    float64 `json:"amount"`
}

// SplitShare is a split joined with the participant's username, used in
// receipt views.
type SplitShare struct {
	Username string  `json:"username"`
	Amount   float64 `json:"share"`
}
