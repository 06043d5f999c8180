package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"duitsplit/internal/models"
)

const billColumns = `id, bill_name, bill_date, description, creator_id, currency,
	total_bill, total_amount, total_net, status, is_visible, is_deleted,
	created_at, updated_at`

func scanBill(row interface{ Scan(...any) error }) (*models.Bill, error) {
	bill := &models.Bill{}
	err := row.Scan(
		&bill.ID,
		&bill.Name,
		&bill.Date,
		&bill.Description,
		&bill.CreatorID,
		&bill.Currency,
		&bill.TotalBill,
		&bill.TotalAmount,
		&bill.TotalNet,
		&bill.Status,
		&bill.Visible,
		&bill.Deleted,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// CreateBill inserts the bill and its participant rows in one
// transaction. The creator is always added as a participant.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill, participantIDs []string) error {
	now := time.Now().Unix()
	bill.CreatedAt = now
	bill.UpdatedAt = now
	if bill.Currency == "" {
		bill.Currency = models.DefaultCurrency
	}
	if bill.Status == "" {
		bill.Status = models.BillOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bills (bill_name, bill_date, description, creator_id, currency,
			status, is_visible, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.Name, bill.Date, bill.Description, bill.CreatorID, bill.Currency,
		bill.Status, bill.Visible, bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	bill.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read bill id: %w", err)
	}

	ids := append([]string{bill.CreatorID}, participantIDs...)
	for _, userID := range ids {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bill_participants (bill_id, user_id) VALUES (?, ?)
			 ON CONFLICT (bill_id, user_id) DO NOTHING`,
			bill.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ID, including soft-deleted rows; callers
// decide whether a deleted bill is visible for their operation.
func (s *SQLiteStore) GetBill(ctx context.Context, billID int64) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+billColumns+" FROM bills WHERE id = ?", billID)
	bill, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// AddParticipants assigns users to the bill, ignoring existing pairs.
func (s *SQLiteStore) AddParticipants(ctx context.Context, billID int64, userIDs []string) error {
	for _, userID := range userIDs {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO bill_participants (bill_id, user_id) VALUES (?, ?)
			 ON CONFLICT (bill_id, user_id) DO NOTHING`,
			billID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}

// IsParticipant reports whether the user belongs to the bill.
func (s *SQLiteStore) IsParticipant(ctx context.Context, billID int64, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM bill_participants WHERE bill_id = ? AND user_id = ?",
		billID, userID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return true, nil
}

// ListParticipants returns the bill's participants ordered by username.
func (s *SQLiteStore) ListParticipants(ctx context.Context, billID int64) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+` FROM users u
		 JOIN bill_participants bp ON bp.user_id = u.id
		 WHERE bp.bill_id = ?
		 ORDER BY u.username`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return users, nil
}

func (s *SQLiteStore) queryParticipantSettlements(ctx context.Context, query string, args ...any) ([]*models.ParticipantSettlement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participant settlements: %w", err)
	}
	defer rows.Close()

	var result []*models.ParticipantSettlement
	for rows.Next() {
		p := &models.ParticipantSettlement{}
		if err := rows.Scan(&p.UserID, &p.Username, &p.AvatarURL, &p.AmountOwed, &p.AmountPaid, &p.Status); err != nil {
			return nil, fmt.Errorf("failed to scan participant settlement: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participant settlements: %w", err)
	}
	return result, nil
}

// ListParticipantSettlements joins participants with their settlement
// rows, defaulting missing rows to unpaid zero.
func (s *SQLiteStore) ListParticipantSettlements(ctx context.Context, billID int64) ([]*models.ParticipantSettlement, error) {
	return s.queryParticipantSettlements(ctx,
		`SELECT u.id, u.username, u.avatar_url,
			COALESCE(bs.amount_owed, 0), COALESCE(bs.amount_paid, 0),
			COALESCE(bs.status, 'unpaid')
		 FROM bill_participants bp
		 JOIN users u ON bp.user_id = u.id
		 LEFT JOIN bill_settlements bs ON bs.bill_id = bp.bill_id AND bs.payer_id = u.id
		 WHERE bp.bill_id = ?
		 ORDER BY u.username`,
		billID)
}

// ListUnpaidParticipants returns non-creator participants whose
// settlement is not paid yet.
func (s *SQLiteStore) ListUnpaidParticipants(ctx context.Context, billID int64) ([]*models.ParticipantSettlement, error) {
	return s.queryParticipantSettlements(ctx,
		`SELECT u.id, u.username, u.avatar_url,
			COALESCE(bs.amount_owed, 0), COALESCE(bs.amount_paid, 0),
			COALESCE(bs.status, 'unpaid')
		 FROM bill_participants bp
		 JOIN users u ON bp.user_id = u.id
		 LEFT JOIN bill_settlements bs ON bs.bill_id = bp.bill_id AND bs.payer_id = u.id
		 WHERE bp.bill_id = ?
		   AND COALESCE(bs.status, 'unpaid') != 'paid'
		   AND u.id != (SELECT creator_id FROM bills WHERE id = ?)
		 ORDER BY u.username`,
		billID, billID)
}

// SetBillVisibility toggles the payment-visibility flag.
func (s *SQLiteStore) SetBillVisibility(ctx context.Context, billID int64, visible bool) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE bills SET is_visible = ?, updated_at = ? WHERE id = ?",
		visible, time.Now().Unix(), billID,
	)
	if err != nil {
		return fmt.Errorf("failed to set bill visibility: %w", err)
	}
	return nil
}

// SetBillStatus updates the lifecycle status.
func (s *SQLiteStore) SetBillStatus(ctx context.Context, billID int64, status models.BillStatus) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE bills SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().Unix(), billID,
	)
	if err != nil {
		return fmt.Errorf("failed to set bill status: %w", err)
	}
	return nil
}

// SoftDeleteBill marks the bill deleted without touching its history.
func (s *SQLiteStore) SoftDeleteBill(ctx context.Context, billID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE bills SET is_deleted = 1, updated_at = ? WHERE id = ?",
		time.Now().Unix(), billID,
	)
	if err != nil {
		return fmt.Errorf("failed to soft delete bill: %w", err)
	}
	return nil
}

// HardDeleteBill removes the bill and all dependent rows in one
// transaction.
func (s *SQLiteStore) HardDeleteBill(ctx context.Context, billID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM expense_participants WHERE expense_id IN
			(SELECT id FROM expenses WHERE bill_id = ?)`,
		"DELETE FROM expenses WHERE bill_id = ?",
		"DELETE FROM bill_settlements WHERE bill_id = ?",
		"DELETE FROM bill_participants WHERE bill_id = ?",
		"DELETE FROM bills WHERE id = ?",
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, billID); err != nil {
			return fmt.Errorf("failed to hard delete bill: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
