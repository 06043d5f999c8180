package service

import (
	"context"
	"fmt"
	"log/slog"

	"duitsplit/internal/models"
	"duitsplit/internal/storage"
)

// PaymentService drives the settlement state machine: the creator
// requests payment, a payer marks intent to pay, and the creator
// approves or force-settles. A bill completes exactly when its last
// outstanding settlement turns paid.
type PaymentService struct {
	store storage.Store
}

func NewPaymentService(store storage.Store) *PaymentService {
	return &PaymentService{store: store}
}

// RequestPaymentRequest asks one participant to pay their share.
type RequestPaymentRequest struct {
	PayerID string  `json:"payer_id" binding:"required"`
	Amount  float64 `json:"amount" binding:"required,gt=0"`
}

// RequestAllRequest asks every listed participant to pay at once.
// Totals maps payer ID to the amount owed.
type RequestAllRequest struct {
	Totals map[string]float64 `json:"totals" binding:"required"`
}

// PayResponse confirms a payer's pending payment.
type PayResponse struct {
	BillID     int64   `json:"bill_id"`
	AmountOwed float64 `json:"amount_owed"`
	Status     string  `json:"status"`
}

// completeIfSettled flips the bill to completed when no settlement row
// remains outstanding. The unpaid count is re-queried after each paying
// mutation rather than tracked, so regeneration cannot leave a stale
// status behind.
func (s *PaymentService) completeIfSettled(ctx context.Context, billID int64) error {
	count, err := s.store.CountUnpaidSettlements(ctx, billID)
	if err != nil {
		return fmt.Errorf("failed to count unpaid settlements: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := s.store.SetBillStatus(ctx, billID, models.BillCompleted); err != nil {
		return fmt.Errorf("failed to complete bill: %w", err)
	}
	slog.Info("bill completed", "bill_id", billID)
	return nil
}

// requireCreator loads the bill and verifies the caller owns it.
func (s *PaymentService) requireCreator(ctx context.Context, principal string, billID int64) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	if bill == nil {
		return nil, notFound("Bill not found")
	}
	if bill.CreatorID != principal {
		return nil, forbidden("Only the bill creator can perform this action")
	}
	return bill, nil
}

// Request sends (or refreshes) a payment request for one participant.
// A settlement that is already paid is left untouched.
func (s *PaymentService) Request(ctx context.Context, principal string, billID int64, req RequestPaymentRequest) error {
	if principal == "" {
		return unauthorized("Unauthorized")
	}
	if req.PayerID == "" || req.Amount <= 0 {
		return invalid("Invalid request data")
	}

	bill, err := s.requireCreator(ctx, principal, billID)
	if err != nil {
		return err
	}

	existing, err := s.store.GetSettlement(ctx, billID, req.PayerID)
	if err != nil {
		return fmt.Errorf("failed to get settlement: %w", err)
	}
	if existing != nil && existing.Status == models.SettlementPaid {
		return conflict("Payment already settled for this participant")
	}

	if err := s.store.UpsertSettlementRequest(ctx, billID, req.PayerID, bill.CreatorID, req.Amount); err != nil {
		return fmt.Errorf("failed to upsert settlement: %w", err)
	}
	return nil
}

// RequestAll sends payment requests to every payer in req.Totals.
// Zero amounts, the creator's own row and already-paid settlements are
// skipped.
func (s *PaymentService) RequestAll(ctx context.Context, principal string, billID int64, req RequestAllRequest) error {
	if principal == "" {
		return unauthorized("Unauthorized")
	}
	if len(req.Totals) == 0 {
		return invalid("Invalid request data")
	}

	bill, err := s.requireCreator(ctx, principal, billID)
	if err != nil {
		return err
	}

	for payerID, amount := range req.Totals {
		if amount <= 0 || payerID == bill.CreatorID {
			continue
		}
		existing, err := s.store.GetSettlement(ctx, billID, payerID)
		if err != nil {
			return fmt.Errorf("failed to get settlement: %w", err)
		}
		if existing != nil && existing.Status == models.SettlementPaid {
			continue
		}
		if err := s.store.UpsertSettlementRequest(ctx, billID, payerID, bill.CreatorID, amount); err != nil {
			return fmt.Errorf("failed to upsert settlement: %w", err)
		}
	}
	return nil
}

// Pay marks the caller's settlement pending, recording their intent to
// pay. The bill must be visible and the caller a participant with an
// outstanding settlement.
func (s *PaymentService) Pay(ctx context.Context, principal string, billID int64) (*PayResponse, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}

	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	if bill == nil || bill.Deleted {
		return nil, notFound("Bill not found")
	}
	if !bill.Visible {
		return nil, forbidden("Bill is not open for payment")
	}

	isParticipant, err := s.store.IsParticipant(ctx, billID, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to check participant: %w", err)
	}
	if !isParticipant {
		return nil, forbidden("You are not a participant of this bill")
	}

	settlement, err := s.store.GetSettlement(ctx, billID, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	if settlement == nil {
		return nil, notFound("No settlement found for this user")
	}
	switch settlement.Status {
	case models.SettlementPaid:
		return nil, conflict("You have already paid this bill")
	case models.SettlementPending:
		return nil, conflict("Payment is already pending approval")
	}

	if err := s.store.MarkSettlementPending(ctx, billID, principal); err != nil {
		return nil, fmt.Errorf("failed to mark settlement pending: %w", err)
	}
	return &PayResponse{
		BillID:     billID,
		AmountOwed: settlement.AmountOwed,
		Status:     string(models.SettlementPending),
	}, nil
}

// Settle force-marks one payer's settlement paid regardless of whether
// the payer confirmed. Creator only.
func (s *PaymentService) Settle(ctx context.Context, principal string, billID int64, payerID string) error {
	if principal == "" {
		return unauthorized("Unauthorized")
	}
	if payerID == "" {
		return invalid("payer_id required")
	}
	if _, err := s.requireCreator(ctx, principal, billID); err != nil {
		return err
	}

	if _, err := s.store.MarkSettlementPaid(ctx, billID, payerID, false); err != nil {
		return fmt.Errorf("failed to mark settlement paid: %w", err)
	}
	return s.completeIfSettled(ctx, billID)
}

// SettleAll force-marks every outstanding settlement of the bill paid.
// Creator only.
func (s *PaymentService) SettleAll(ctx context.Context, principal string, billID int64) error {
	if principal == "" {
		return unauthorized("Unauthorized")
	}
	if _, err := s.requireCreator(ctx, principal, billID); err != nil {
		return err
	}

	if _, err := s.store.MarkAllSettlementsPaid(ctx, billID, false); err != nil {
		return fmt.Errorf("failed to mark settlements paid: %w", err)
	}
	return s.completeIfSettled(ctx, billID)
}

// PendingApprovals lists settlements awaiting the creator's approval.
func (s *PaymentService) PendingApprovals(ctx context.Context, principal string, billID int64) ([]*models.SettlementDetail, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	if _, err := s.requireCreator(ctx, principal, billID); err != nil {
		return nil, err
	}
	pending, err := s.store.ListPendingSettlements(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending settlements: %w", err)
	}
	return pending, nil
}

// Approve confirms one payer's pending payment. Only a pending
// settlement transitions; anything else is rejected.
func (s *PaymentService) Approve(ctx context.Context, principal string, billID int64, payerID string) (*models.Settlement, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	if payerID == "" {
		return nil, invalid("payer_id required")
	}
	if _, err := s.requireCreator(ctx, principal, billID); err != nil {
		return nil, err
	}

	n, err := s.store.MarkSettlementPaid(ctx, billID, payerID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to mark settlement paid: %w", err)
	}
	if n == 0 {
		return nil, invalid("No pending payment found for this participant")
	}
	if err := s.completeIfSettled(ctx, billID); err != nil {
		return nil, err
	}

	settlement, err := s.store.GetSettlement(ctx, billID, payerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ApproveAll confirms every pending payment on the bill at once.
func (s *PaymentService) ApproveAll(ctx context.Context, principal string, billID int64) (int64, error) {
	if principal == "" {
		return 0, unauthorized("Unauthorized")
	}
	if _, err := s.requireCreator(ctx, principal, billID); err != nil {
		return 0, err
	}

	n, err := s.store.MarkAllSettlementsPaid(ctx, billID, true)
	if err != nil {
		return 0, fmt.Errorf("failed to mark settlements paid: %w", err)
	}
	if n == 0 {
		return 0, invalid("No pending payments to approve")
	}
	if err := s.completeIfSettled(ctx, billID); err != nil {
		return 0, err
	}
	return n, nil
}
