package service

import (
	"context"
	"fmt"
	"log/slog"

	"duitsplit/internal/calculator"
	"duitsplit/internal/models"
	"duitsplit/internal/storage"
)

// BillService manages the bill lifecycle: creation, participant
// assignment, detail views, receipts, visibility and deletion.
type BillService struct {
	store storage.Store
}

func NewBillService(store storage.Store) *BillService {
	return &BillService{store: store}
}

// CreateBillRequest creates a bill owned by the caller. Participants
// must be accepted friends of the creator; the creator is always a
// participant and need not be listed.
type CreateBillRequest struct {
	Name           string   `json:"bill_name" binding:"required"`
	Date           string   `json:"bill_date" binding:"required"`
	Description    string   `json:"description"`
	ParticipantIDs []string `json:"participants"`
}

// BillDetails is the bill with its expenses, participants and per-
// currency expense totals.
type BillDetails struct {
	Bill             *models.Bill       `json:"bill"`
	Expenses         []*models.Expense  `json:"expenses"`
	Participants     []*models.User     `json:"participants"`
	TotalsByCurrency map[string]float64 `json:"totals_by_currency"`
}

// BillWithTotals is the settlement-oriented bill view: participants
// joined with their settlement state and each participant's total share
// across all expense splits.
type BillWithTotals struct {
	Bill              *models.Bill                    `json:"bill"`
	Expenses          []*models.Expense               `json:"expenses"`
	Participants      []*models.ParticipantSettlement `json:"participants"`
	SplitData         map[int64]map[string]float64    `json:"split_data"`
	ParticipantTotals map[string]float64              `json:"participant_totals"`
	TotalAmount       float64                         `json:"total_amount"`
}

// ReceiptExpense is an expense row with the usernames it was split
// with.
type ReceiptExpense struct {
	Name      string               `json:"expense_name"`
	Amount    float64              `json:"amount"`
	Currency  string               `json:"currency"`
	SplitWith []*models.SplitShare `json:"split_with"`
}

// Receipt is the read-only summary shown after a bill is settled.
type Receipt struct {
	BillID       int64                      `json:"bill_id"`
	BillName     string                     `json:"bill_name"`
	BillDate     string                     `json:"bill_date"`
	Currency     string                     `json:"currency"`
	Status       models.BillStatus          `json:"status"`
	CreatedBy    string                     `json:"created_by"`
	TotalBill    float64                    `json:"total_bill"`
	Participants []*models.SettlementDetail `json:"participants"`
	Expenses     []*ReceiptExpense          `json:"expenses"`
}

// requireFriends verifies every id is an accepted friend of creatorID.
// The creator itself is always allowed.
func (s *BillService) requireFriends(ctx context.Context, creatorID string, userIDs []string) error {
	for _, id := range userIDs {
		if id == creatorID {
			continue
		}
		f, err := s.store.GetFriendship(ctx, creatorID, id)
		if err != nil {
			return fmt.Errorf("failed to get friendship: %w", err)
		}
		if f == nil || f.Status != models.FriendshipAccepted {
			return invalid(fmt.Sprintf("user %s is not an accepted friend", id))
		}
	}
	return nil
}

// Create inserts a new open, visible bill with the caller as creator
// and participant.
func (s *BillService) Create(ctx context.Context, principal string, req CreateBillRequest) (*models.Bill, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	if req.Name == "" || req.Date == "" {
		return nil, invalid("bill_name and bill_date required")
	}
	if err := s.requireFriends(ctx, principal, req.ParticipantIDs); err != nil {
		return nil, err
	}

	if err := s.store.EnsureUser(ctx, &models.User{ID: principal}); err != nil {
		return nil, fmt.Errorf("failed to ensure creator: %w", err)
	}

	bill := &models.Bill{
		Name:        req.Name,
		Date:        req.Date,
		Description: req.Description,
		CreatorID:   principal,
		Currency:    models.DefaultCurrency,
		Status:      models.BillOpen,
		Visible:     true,
	}
	if err := s.store.CreateBill(ctx, bill, req.ParticipantIDs); err != nil {
		slog.Error("failed to create bill", "error", err)
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}
	return bill, nil
}

// Candidates lists the caller's accepted friends, the only users who
// can be added to a bill.
func (s *BillService) Candidates(ctx context.Context, principal string) ([]*models.User, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	friends, err := s.store.ListFriends(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return friends, nil
}

// AssignParticipants adds accepted friends of the creator to an
// existing bill. Already-present participants are skipped.
func (s *BillService) AssignParticipants(ctx context.Context, principal string, billID int64, userIDs []string) error {
	if principal == "" {
		return unauthorized("Unauthorized")
	}
	if len(userIDs) == 0 {
		return invalid("participants required")
	}

	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return fmt.Errorf("failed to get bill: %w", err)
	}
	if bill == nil || bill.Deleted {
		return notFound("Bill not found")
	}
	if bill.CreatorID != principal {
		return forbidden("Only the bill creator can assign participants")
	}
	if err := s.requireFriends(ctx, bill.CreatorID, userIDs); err != nil {
		return err
	}

	if err := s.store.AddParticipants(ctx, billID, userIDs); err != nil {
		return fmt.Errorf("failed to add participants: %w", err)
	}
	return nil
}

// Details returns the bill with its expenses, participant profiles and
// expense totals grouped per currency.
func (s *BillService) Details(ctx context.Context, billID int64) (*BillDetails, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	if bill == nil || bill.Deleted {
		return nil, notFound("Bill not found")
	}

	expenses, err := s.store.ListExpenses(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	participants, err := s.store.ListParticipants(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	totals := make(map[string]float64)
	for _, e := range expenses {
		currency := e.Currency
		amount := e.Amount
		if e.ConvertedAmount != nil && e.ConvertedCurrency != nil {
			currency = *e.ConvertedCurrency
			amount = *e.ConvertedAmount
		}
		totals[currency] = calculator.Round2(totals[currency] + amount)
	}

	return &BillDetails{
		Bill:             bill,
		Expenses:         expenses,
		Participants:     participants,
		TotalsByCurrency: totals,
	}, nil
}

// WithTotals returns the settlement-oriented view: each participant's
// settlement state and their summed share across all splits.
func (s *BillService) WithTotals(ctx context.Context, billID int64) (*BillWithTotals, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	if bill == nil || bill.Deleted {
		return nil, notFound("Bill not found or has been deleted")
	}

	expenses, err := s.store.ListExpenses(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	participants, err := s.store.ListParticipantSettlements(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participant settlements: %w", err)
	}
	splits, err := s.store.ListBillSplits(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}

	participantTotals := make(map[string]float64, len(participants))
	for _, p := range participants {
		participantTotals[p.UserID] = 0
	}
	for _, shares := range splits {
		for userID, amount := range shares {
			participantTotals[userID] = calculator.Round2(participantTotals[userID] + amount)
		}
	}

	var totalAmount float64
	for _, e := range expenses {
		totalAmount += e.EffectiveAmount()
	}

	return &BillWithTotals{
		Bill:              bill,
		Expenses:          expenses,
		Participants:      participants,
		SplitData:         splits,
		ParticipantTotals: participantTotals,
		TotalAmount:       calculator.Round2(totalAmount),
	}, nil
}

// UnpaidParticipants lists non-creator participants whose settlement is
// still outstanding.
func (s *BillService) UnpaidParticipants(ctx context.Context, billID int64) ([]*models.ParticipantSettlement, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	if bill == nil {
		return nil, notFound("Bill not found")
	}
	unpaid, err := s.store.ListUnpaidParticipants(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid participants: %w", err)
	}
	return unpaid, nil
}

// Receipt builds the read-only summary of a bill: who paid what and
// how each expense was split.
func (s *BillService) Receipt(ctx context.Context, billID int64) (*Receipt, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	if bill == nil {
		return nil, notFound("Bill not found")
	}

	creator, err := s.store.GetUser(ctx, bill.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	createdBy := bill.CreatorID
	if creator != nil {
		createdBy = creator.Username
	}

	settlements, err := s.store.ListBillSettlements(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	expenses, err := s.store.ListExpenses(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	receiptExpenses := make([]*ReceiptExpense, 0, len(expenses))
	for _, e := range expenses {
		shares, err := s.store.ListSplitShares(ctx, e.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list split shares: %w", err)
		}
		currency := e.Currency
		if e.ConvertedCurrency != nil {
			currency = *e.ConvertedCurrency
		}
		receiptExpenses = append(receiptExpenses, &ReceiptExpense{
			Name:      e.Name,
			Amount:    e.EffectiveAmount(),
			Currency:  currency,
			SplitWith: shares,
		})
	}

	return &Receipt{
		BillID:       bill.ID,
		BillName:     bill.Name,
		BillDate:     bill.Date,
		Currency:     bill.Currency,
		Status:       bill.Status,
		CreatedBy:    createdBy,
		TotalBill:    bill.TotalBill,
		Participants: settlements,
		Expenses:     receiptExpenses,
	}, nil
}

// SetVisibility opens or closes the bill for participant payments.
// Creator only.
func (s *BillService) SetVisibility(ctx context.Context, principal string, billID int64, visible bool) error {
	if principal == "" {
		return unauthorized("Unauthorized")
	}
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return fmt.Errorf("failed to get bill: %w", err)
	}
	if bill == nil || bill.Deleted {
		return notFound("Bill not found")
	}
	if bill.CreatorID != principal {
		return forbidden("Only the bill creator can change visibility")
	}
	if err := s.store.SetBillVisibility(ctx, billID, visible); err != nil {
		return fmt.Errorf("failed to set visibility: %w", err)
	}
	return nil
}

// SoftDelete hides a completed bill from detail views while keeping
// its settlement history.
func (s *BillService) SoftDelete(ctx context.Context, principal string, billID int64) error {
	if principal == "" {
		return unauthorized("Unauthorized")
	}
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return fmt.Errorf("failed to get bill: %w", err)
	}
	if bill == nil || bill.Deleted {
		return notFound("Bill not found")
	}
	if bill.Status != models.BillCompleted {
		return invalid("Only completed bills can be deleted")
	}
	if err := s.store.SoftDeleteBill(ctx, billID); err != nil {
		return fmt.Errorf("failed to soft delete bill: %w", err)
	}
	return nil
}

// HardDelete removes a completed bill and everything under it. Creator
// only.
func (s *BillService) HardDelete(ctx context.Context, principal string, billID int64) error {
	if principal == "" {
		return unauthorized("Unauthorized")
	}
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return fmt.Errorf("failed to get bill: %w", err)
	}
	if bill == nil {
		return notFound("Bill not found")
	}
	if bill.CreatorID != principal {
		return forbidden("Only the bill creator can delete the bill")
	}
	if bill.Status != models.BillCompleted {
		return invalid("Only completed bills can be deleted")
	}
	if err := s.store.HardDeleteBill(ctx, billID); err != nil {
		slog.Error("failed to hard delete bill", "bill_id", billID, "error", err)
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return nil
}
