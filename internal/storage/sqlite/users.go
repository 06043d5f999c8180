package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"duitsplit/internal/models"
)

const userColumns = `id, username, display_name, email, phone, bank, bank_acc,
	avatar_url, qr_bank, push_notify, pin_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.Email,
		&user.Phone,
		&user.Bank,
		&user.BankAcc,
		&user.AvatarURL,
		&user.QRBank,
		&user.PushNotify,
		&user.PINHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureUser inserts the user if no row exists for its ID. Existing rows
// are left untouched, so repeated first-contact provisioning is a no-op.
func (s *SQLiteStore) EnsureUser(ctx context.Context, user *models.User) error {
	now := time.Now().Unix()
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}
	if user.AvatarURL == "" {
		user.AvatarURL = models.DefaultAvatar
	}
	if user.Username == "" {
		user.Username = user.ID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, display_name, email, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		user.ID, user.Username, user.DisplayName, user.Email, user.AvatarURL, user.CreatedAt, now,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by principal ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UserExists reports whether a row exists for the principal ID.
func (s *SQLiteStore) UserExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return true, nil
}

// UpdateProfile applies a partial profile update; nil fields keep the
// stored value via COALESCE.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) error {
	var pushNotify *int
	if update.PushNotify != nil {
		v := 0
		if *update.PushNotify {
			v = 1
		}
		pushNotify = &v
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET
			username = COALESCE(?, username),
			phone = COALESCE(?, phone),
			bank = COALESCE(?, bank),
			bank_acc = COALESCE(?, bank_acc),
			avatar_url = COALESCE(?, avatar_url),
			qr_bank = COALESCE(?, qr_bank),
			push_notify = COALESCE(?, push_notify),
			updated_at = ?
		 WHERE id = ?`,
		update.Username, update.Phone, update.Bank, update.BankAcc,
		update.AvatarURL, update.QRBank, pushNotify, time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// GetPINHash returns the stored PIN hash, empty when no PIN is set.
func (s *SQLiteStore) GetPINHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT pin_hash FROM users WHERE id = ?", id).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("user not found: %s", id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get pin hash: %w", err)
	}
	return hash, nil
}

// SetPINHash stores a new PIN hash.
func (s *SQLiteStore) SetPINHash(ctx context.Context, id, hash string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET pin_hash = ?, updated_at = ? WHERE id = ?",
		hash, time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set pin hash: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// SearchUsers matches usernames by prefix, excluding the searching user.
func (s *SQLiteStore) SearchUsers(ctx context.Context, query, excludeID string, limit int) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+` FROM users
		 WHERE username LIKE ? || '%' AND id != ?
		 ORDER BY username LIMIT ?`,
		query, excludeID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
