package models

// DefaultCurrency is used when a bill or expense omits a currency code.
const DefaultCurrency = "RM"

// BillStatus is the lifecycle state of a bill.
type BillStatus string

const (
	// BillOpen is the initial state; settlements may still be outstanding.
	BillOpen BillStatus = "open"
	// BillCompleted is reached exactly when every settlement row is paid.
	BillCompleted BillStatus = "completed"
)

// Bill is a shared expense event. The creator is the payee of every
// settlement generated for the bill.
type Bill struct {
	ID          int64  `json:"id"`
	Name        string `json:"bill_name"`
	Date        string `json:"bill_date"` // YYYY-MM-DD
	Description string `json:"description"`
	CreatorID   string `json:"creator_id"`

	// Currency applies to the aggregate totals below. Individual
	// expenses carry their own currency.
	Currency string `json:"currency"`

	// TotalBill is the sum of all expense amounts, TotalAmount the sum
	// of all split shares, and TotalNet their difference
	// (TotalAmount - TotalBill). All are set by settlement generation.
	TotalBill   float64 `json:"total_bill"`
	TotalAmount float64 `json:"total_amount"`
	TotalNet    float64 `json:"total_net"`

	Status BillStatus `json:"status"`

	// Visible gates whether participants may mark payments on the bill.
	Visible bool `json:"is_visible"`
	// Deleted marks a soft-deleted bill; such bills are hidden from
	// detail views but their settlement history survives.
	Deleted bool `json:"is_deleted"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// BillTotals is the aggregate triple recomputed by settlement generation.
type BillTotals struct {
	TotalBill   float64 `json:"total_bill"`
	TotalAmount float64 `json:"total_amount"`
	TotalNet    float64 `json:"total_net"`
}
