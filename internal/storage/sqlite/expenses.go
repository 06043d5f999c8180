package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"duitsplit/internal/models"
)

const expenseColumns = `id, bill_id, expense_name, expense_date, description,
	amount, currency, converted_amount, converted_currency, rate, created_at`

func scanExpense(row interface{ Scan(...any) error }) (*models.Expense, error) {
	e := &models.Expense{}
	var converted sql.NullFloat64
	var convertedCurrency sql.NullString
	var rate sql.NullFloat64

	err := row.Scan(
		&e.ID,
		&e.BillID,
		&e.Name,
		&e.Date,
		&e.Description,
		&e.Amount,
		&e.Currency,
		&converted,
		&convertedCurrency,
		&rate,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if converted.Valid {
		e.ConvertedAmount = &converted.Float64
	}
	if convertedCurrency.Valid {
		e.ConvertedCurrency = &convertedCurrency.String
	}
	if rate.Valid {
		e.Rate = &rate.Float64
	}
	return e, nil
}

// AddExpense inserts a new expense row and populates its ID.
func (s *SQLiteStore) AddExpense(ctx context.Context, expense *models.Expense) error {
	expense.CreatedAt = time.Now().Unix()
	if expense.Currency == "" {
		expense.Currency = models.DefaultCurrency
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (bill_id, expense_name, expense_date, description,
			amount, currency, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.BillID, expense.Name, expense.Date, expense.Description,
		expense.Amount, expense.Currency, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	expense.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read expense id: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID int64) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// ListExpenses returns a bill's expenses ordered by id.
func (s *SQLiteStore) ListExpenses(ctx context.Context, billID int64) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE bill_id = ? ORDER BY id", billID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// SetExpenseConversion records a currency conversion on the expense.
func (s *SQLiteStore) SetExpenseConversion(ctx context.Context, expenseID int64, converted float64, currency string, rate float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET converted_amount = ?, converted_currency = ?, rate = ?
		 WHERE id = ?`,
		converted, currency, rate, expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to set expense conversion: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense not found: %d", expenseID)
	}
	return nil
}

// DeleteExpense removes an expense; its splits go with it via cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

// ReplaceSplits swaps the full split set of an expense in one
// transaction, so a failed write never leaves a partial split.
func (s *SQLiteStore) ReplaceSplits(ctx context.Context, expenseID int64, shares map[string]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM expense_participants WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to clear splits: %w", err)
	}

	userIDs := make([]string, 0, len(shares))
	for userID := range shares {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	for _, userID := range userIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expense_participants (expense_id, user_id, split_amount)
			 VALUES (?, ?, ?)`,
			expenseID, userID, shares[userID],
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListSplits returns the split rows of an expense.
func (s *SQLiteStore) ListSplits(ctx context.Context, expenseID int64) ([]*models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, user_id, split_amount
		 FROM expense_participants WHERE expense_id = ? ORDER BY user_id`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var splits []*models.Split
	for rows.Next() {
		split := &models.Split{}
		if err := rows.Scan(&split.ExpenseID, &split.UserID, &split.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

// ListSplitShares joins splits with usernames for receipt views.
func (s *SQLiteStore) ListSplitShares(ctx context.Context, expenseID int64) ([]*models.SplitShare, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.username, ep.split_amount
		 FROM expense_participants ep
		 JOIN users u ON u.id = ep.user_id
		 WHERE ep.expense_id = ?
		 ORDER BY u.username`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list split shares: %w", err)
	}
	defer rows.Close()

	var shares []*models.SplitShare
	for rows.Next() {
		share := &models.SplitShare{}
		if err := rows.Scan(&share.Username, &share.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan split share: %w", err)
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate split shares: %w", err)
	}
	return shares, nil
}

// ListBillSplits returns every split of a bill keyed by expense and
// user.
func (s *SQLiteStore) ListBillSplits(ctx context.Context, billID int64) (map[int64]map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ep.expense_id, ep.user_id, ep.split_amount
		 FROM expense_participants ep
		 JOIN expenses e ON e.id = ep.expense_id
		 WHERE e.bill_id = ?`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bill splits: %w", err)
	}
	defer rows.Close()

	splits := make(map[int64]map[string]float64)
	for rows.Next() {
		var expenseID int64
		var userID string
		var amount float64
		if err := rows.Scan(&expenseID, &userID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan bill split: %w", err)
		}
		if splits[expenseID] == nil {
			splits[expenseID] = make(map[string]float64)
		}
		splits[expenseID][userID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill splits: %w", err)
	}
	return splits, nil
}
