package service

import (
	"context"
	"fmt"

	"duitsplit/internal/calculator"
	"duitsplit/internal/models"
	"duitsplit/internal/storage"
)

// ExpenseService manages the cost items within a bill and their
// currency conversions.
type ExpenseService struct {
	store storage.Store
}

func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// AddExpenseRequest adds an expense to a bill. Currency defaults to
// models.DefaultCurrency when empty.
type AddExpenseRequest struct {
	Name        string  `json:"expense_name" binding:"required"`
	Date        string  `json:"expense_date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}

// ConvertExpenseRequest applies a currency conversion to an expense.
type ConvertExpenseRequest struct {
	Rate     float64 `json:"rate" binding:"required,gt=0"`
	Currency string  `json:"currency" binding:"required,currencycode"`
}

// Add inserts an expense into an open bill.
func (s *ExpenseService) Add(ctx context.Context, principal string, billID int64, req AddExpenseRequest) (*models.Expense, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	if req.Name == "" {
		return nil, invalid("expense_name required")
	}
	if req.Amount < 0 {
		return nil, invalid("amount cannot be negative")
	}
	if !calculator.ValidAmount(req.Amount) {
		return nil, invalid("amount cannot have more than 2 decimal places")
	}

	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	if bill == nil || bill.Deleted {
		return nil, notFound("Bill not found")
	}

	expense := &models.Expense{
		BillID:      billID,
		Name:        req.Name,
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
	}
	if err := s.store.AddExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to add expense: %w", err)
	}
	return expense, nil
}

// Get returns a single expense.
func (s *ExpenseService) Get(ctx context.Context, expenseID int64) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if expense == nil {
		return nil, notFound("Expense not found")
	}
	return expense, nil
}

// List returns the expenses of a bill in insertion order.
func (s *ExpenseService) List(ctx context.Context, billID int64) ([]*models.Expense, error) {
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
	return expenses, nil
}

// Convert stores a currency conversion on the expense. The converted
// amount becomes the effective amount used by splitting and settlement.
func (s *ExpenseService) Convert(ctx context.Context, principal string, expenseID int64, req ConvertExpenseRequest) (*models.Expense, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	if req.Rate <= 0 {
		return nil, invalid("rate must be positive")
	}
	if req.Currency == "" {
		return nil, invalid("currency required")
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if expense == nil {
		return nil, notFound("Expense not found")
	}

	converted := expense.Amount * req.Rate
	if err := s.store.SetExpenseConversion(ctx, expenseID, converted, req.Currency, req.Rate); err != nil {
		return nil, fmt.Errorf("failed to set conversion: %w", err)
	}

	updated, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return updated, nil
}

// Delete removes an expense; its splits are cascaded away with it.
func (s *ExpenseService) Delete(ctx context.Context, principal string, expenseID int64) error {
	if principal == "" {
		return unauthorized("Unauthorized")
	}
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("failed to get expense: %w", err)
	}
	if expense == nil {
		return notFound("Expense not found")
	}
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}
