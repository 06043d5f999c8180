package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"duitsplit/internal/calculator"
	"duitsplit/internal/models"
)

// ReplaceSettlements recomputes a bill's settlement rows from scratch:
// delete everything, insert the drafts, and store the new totals and
// currency on the bill. One transaction, so readers never observe a
// half-regenerated bill.
func (s *SQLiteStore) ReplaceSettlements(ctx context.Context, billID int64, payeeID string, drafts []calculator.SettlementDraft, totals models.BillTotals, currency string) error {
	now := time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM bill_settlements WHERE bill_id = ?", billID); err != nil {
		return fmt.Errorf("failed to clear settlements: %w", err)
	}

	for _, draft := range drafts {
		status := models.SettlementUnpaid
		if draft.Paid {
			status = models.SettlementPaid
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bill_settlements (bill_id, payer_id, payee_id,
				amount_owed, amount_paid, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			billID, draft.PayerID, payeeID,
			draft.AmountOwed, draft.AmountPaid, status, now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bills SET total_bill = ?, total_amount = ?, total_net = ?,
			currency = ?, updated_at = ?
		 WHERE id = ?`,
		totals.TotalBill, totals.TotalAmount, totals.TotalNet, currency, now, billID,
	); err != nil {
		return fmt.Errorf("failed to update bill totals: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSettlement retrieves the settlement row for one payer on a bill.
func (s *SQLiteStore) GetSettlement(ctx context.Context, billID int64, payerID string) (*models.Settlement, error) {
	st := &models.Settlement{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, bill_id, payer_id, payee_id, amount_owed, amount_paid,
			status, created_at, updated_at
		 FROM bill_settlements WHERE bill_id = ? AND payer_id = ?`,
		billID, payerID,
	).Scan(&st.ID, &st.BillID, &st.PayerID, &st.PayeeID, &st.AmountOwed,
		&st.AmountPaid, &st.Status, &st.CreatedAt, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return st, nil
}

// UpsertSettlementRequest inserts or refreshes a settlement's owed
// amount. A paid row keeps its status and amount_paid, which makes
// re-requesting payment idempotent; any other row is reset to unpaid.
func (s *SQLiteStore) UpsertSettlementRequest(ctx context.Context, billID int64, payerID, payeeID string, amount float64) error {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bill_settlements (bill_id, payer_id, payee_id,
			amount_owed, amount_paid, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, 'unpaid', ?, ?)
		 ON CONFLICT (bill_id, payer_id) DO UPDATE SET
			amount_owed = excluded.amount_owed,
			amount_paid = CASE WHEN bill_settlements.status = 'paid'
				THEN bill_settlements.amount_paid ELSE 0 END,
			status = CASE WHEN bill_settlements.status = 'paid'
				THEN bill_settlements.status ELSE 'unpaid' END,
			updated_at = excluded.updated_at`,
		billID, payerID, payeeID, amount, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settlement: %w", err)
	}
	return nil
}

// MarkSettlementPending moves a payer's settlement to pending.
func (s *SQLiteStore) MarkSettlementPending(ctx context.Context, billID int64, payerID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE bill_settlements SET status = 'pending', updated_at = ?
		 WHERE bill_id = ? AND payer_id = ?`,
		time.Now().Unix(), billID, payerID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark settlement pending: %w", err)
	}
	return nil
}

// MarkSettlementPaid marks one payer's settlement paid with
// amount_paid = amount_owed. With pendingOnly only a pending row
// transitions; otherwise any non-paid row does.
func (s *SQLiteStore) MarkSettlementPaid(ctx context.Context, billID int64, payerID string, pendingOnly bool) (int64, error) {
	condition := "status != 'paid'"
	if pendingOnly {
		condition = "status = 'pending'"
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE bill_settlements SET status = 'paid', amount_paid = amount_owed, updated_at = ?
		 WHERE bill_id = ? AND payer_id = ? AND `+condition,
		time.Now().Unix(), billID, payerID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark settlement paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count settled rows: %w", err)
	}
	return n, nil
}

// MarkAllSettlementsPaid settles every outstanding (or, with
// pendingOnly, every pending) row of the bill.
func (s *SQLiteStore) MarkAllSettlementsPaid(ctx context.Context, billID int64, pendingOnly bool) (int64, error) {
	condition := "status != 'paid'"
	if pendingOnly {
		condition = "status = 'pending'"
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE bill_settlements SET status = 'paid', amount_paid = amount_owed, updated_at = ?
		 WHERE bill_id = ? AND `+condition,
		time.Now().Unix(), billID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark settlements paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count settled rows: %w", err)
	}
	return n, nil
}

// CountUnpaidSettlements counts rows whose status is not paid.
func (s *SQLiteStore) CountUnpaidSettlements(ctx context.Context, billID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bill_settlements WHERE bill_id = ? AND status != 'paid'",
		billID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unpaid settlements: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) querySettlementDetails(ctx context.Context, query string, args ...any) ([]*models.SettlementDetail, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	var details []*models.SettlementDetail
	for rows.Next() {
		d := &models.SettlementDetail{}
		if err := rows.Scan(&d.PayerID, &d.PayeeID, &d.Username, &d.AvatarURL,
			&d.AmountOwed, &d.AmountPaid, &d.Status); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return details, nil
}

// ListPendingSettlements returns the bill's pending rows joined with
// payer profiles.
func (s *SQLiteStore) ListPendingSettlements(ctx context.Context, billID int64) ([]*models.SettlementDetail, error) {
	return s.querySettlementDetails(ctx,
		`SELECT bs.payer_id, bs.payee_id, u.username, u.avatar_url,
			bs.amount_owed, bs.amount_paid, bs.status
		 FROM bill_settlements bs
		 JOIN users u ON bs.payer_id = u.id
		 WHERE bs.bill_id = ? AND bs.status = 'pending'
		 ORDER BY u.username, bs.id`,
		billID)
}

// ListBillSettlements returns all of a bill's settlement rows joined
// with payer profiles, ordered by username.
func (s *SQLiteStore) ListBillSettlements(ctx context.Context, billID int64) ([]*models.SettlementDetail, error) {
	return s.querySettlementDetails(ctx,
		`SELECT bs.payer_id, bs.payee_id, u.username, u.avatar_url,
			bs.amount_owed, bs.amount_paid, bs.status
		 FROM bill_settlements bs
		 JOIN users u ON bs.payer_id = u.id
		 WHERE bs.bill_id = ?
		 ORDER BY u.username, bs.id`,
		billID)
}

func (s *SQLiteStore) queryOutstandingRows(ctx context.Context, query string, args ...any) ([]*models.OutstandingRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outstanding balances: %w", err)
	}
	defer rows.Close()

	var result []*models.OutstandingRow
	for rows.Next() {
		r := &models.OutstandingRow{}
		if err := rows.Scan(&r.CounterpartyID, &r.Username, &r.AvatarURL, &r.Currency, &r.Total); err != nil {
			return nil, fmt.Errorf("failed to scan outstanding balance: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outstanding balances: %w", err)
	}
	return result, nil
}

// ListOutstandingByPayee aggregates unpaid balances owed TO the user,
// one row per payer and currency.
func (s *SQLiteStore) ListOutstandingByPayee(ctx context.Context, payeeID string) ([]*models.OutstandingRow, error) {
	return s.queryOutstandingRows(ctx,
		`SELECT bs.payer_id, u.username, u.avatar_url, b.currency,
			SUM(bs.amount_owed - bs.amount_paid)
		 FROM bill_settlements bs
		 JOIN users u ON bs.payer_id = u.id
		 JOIN bills b ON bs.bill_id = b.id
		 WHERE bs.payee_id = ? AND bs.status != 'paid'
		 GROUP BY bs.payer_id, u.username, u.avatar_url, b.currency
		 ORDER BY u.username, b.currency`,
		payeeID)
}

// ListOutstandingByPayer aggregates unpaid balances owed BY the user,
// one row per payee and currency.
func (s *SQLiteStore) ListOutstandingByPayer(ctx context.Context, payerID string) ([]*models.OutstandingRow, error) {
	return s.queryOutstandingRows(ctx,
		`SELECT bs.payee_id, u.username, u.avatar_url, b.currency,
			SUM(bs.amount_owed - bs.amount_paid)
		 FROM bill_settlements bs
		 JOIN users u ON bs.payee_id = u.id
		 JOIN bills b ON bs.bill_id = b.id
		 WHERE bs.payer_id = ? AND bs.status != 'paid'
		 GROUP BY bs.payee_id, u.username, u.avatar_url, b.currency
		 ORDER BY u.username, b.currency`,
		payerID)
}

func (s *SQLiteStore) queryBillSettlementRows(ctx context.Context, query string, args ...any) ([]*models.BillSettlementRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement rows: %w", err)
	}
	defer rows.Close()

	var result []*models.BillSettlementRow
	for rows.Next() {
		r := &models.BillSettlementRow{}
		if err := rows.Scan(&r.SettlementID, &r.BillID, &r.BillName, &r.BillDate,
			&r.Currency, &r.TotalBill, &r.CounterpartyID, &r.Username,
			&r.AvatarURL, &r.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan settlement row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement rows: %w", err)
	}
	return result, nil
}

// ListOutstandingRowsForPayee returns each unpaid settlement owed to
// the user with bill context, newest bill first, ties broken by row id.
func (s *SQLiteStore) ListOutstandingRowsForPayee(ctx context.Context, payeeID string) ([]*models.BillSettlementRow, error) {
	return s.queryBillSettlementRows(ctx,
		`SELECT bs.id, bs.bill_id, b.bill_name, b.bill_date, b.currency, b.total_bill,
			bs.payer_id, u.username, u.avatar_url, (bs.amount_owed - bs.amount_paid)
		 FROM bill_settlements bs
		 JOIN bills b ON bs.bill_id = b.id
		 JOIN users u ON bs.payer_id = u.id
		 WHERE bs.payee_id = ? AND bs.status != 'paid'
		 ORDER BY b.bill_date DESC, bs.id ASC`,
		payeeID)
}

// ListOutstandingRowsForPayer is the payer-side counterpart of
// ListOutstandingRowsForPayee.
func (s *SQLiteStore) ListOutstandingRowsForPayer(ctx context.Context, payerID string) ([]*models.BillSettlementRow, error) {
	return s.queryBillSettlementRows(ctx,
		`SELECT bs.id, bs.bill_id, b.bill_name, b.bill_date, b.currency, b.total_bill,
			bs.payee_id, u.username, u.avatar_url, (bs.amount_owed - bs.amount_paid)
		 FROM bill_settlements bs
		 JOIN bills b ON bs.bill_id = b.id
		 JOIN users u ON bs.payee_id = u.id
		 WHERE bs.payer_id = ? AND bs.status != 'paid'
		 ORDER BY b.bill_date DESC, bs.id ASC`,
		payerID)
}

// ListCompletedRowsForPayer returns the user's settlements on completed
// bills, excluding self-owed rows.
func (s *SQLiteStore) ListCompletedRowsForPayer(ctx context.Context, payerID string) ([]*models.BillSettlementRow, error) {
	return s.queryBillSettlementRows(ctx,
		`SELECT bs.id, bs.bill_id, b.bill_name, b.bill_date, b.currency, b.total_bill,
			bs.payee_id, u.username, u.avatar_url, bs.amount_owed
		 FROM bill_settlements bs
		 JOIN bills b ON bs.bill_id = b.id
		 JOIN users u ON bs.payee_id = u.id
		 WHERE bs.payer_id = ? AND bs.payer_id != bs.payee_id AND b.status = 'completed'
		 ORDER BY b.bill_date DESC, bs.id ASC`,
		payerID)
}

// ListCompletedRowsForPayee is the payee-side counterpart of
// ListCompletedRowsForPayer.
func (s *SQLiteStore) ListCompletedRowsForPayee(ctx context.Context, payeeID string) ([]*models.BillSettlementRow, error) {
	return s.queryBillSettlementRows(ctx,
		`SELECT bs.id, bs.bill_id, b.bill_name, b.bill_date, b.currency, b.total_bill,
			bs.payer_id, u.username, u.avatar_url, bs.amount_owed
		 FROM bill_settlements bs
		 JOIN bills b ON bs.bill_id = b.id
		 JOIN users u ON bs.payer_id = u.id
		 WHERE bs.payee_id = ? AND bs.payer_id != bs.payee_id AND b.status = 'completed'
		 ORDER BY b.bill_date DESC, bs.id ASC`,
		payeeID)
}
