package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"duitsplit/internal/models"
)

// GetFriendship finds the edge between two users in either direction.
func (s *SQLiteStore) GetFriendship(ctx context.Context, a, b string) (*models.Friendship, error) {
	f := &models.Friendship{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, requester_id, receiver_id, status, created_at, updated_at
		 FROM friendships
		 WHERE (requester_id = ? AND receiver_id = ?)
		    OR (requester_id = ? AND receiver_id = ?)
		 LIMIT 1`,
		a, b, b, a,
	).Scan(&f.ID, &f.RequesterID, &f.ReceiverID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	return f, nil
}

// HasRequest reports whether the exact ordered pair already has a row.
func (s *SQLiteStore) HasRequest(ctx context.Context, requesterID, receiverID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM friendships WHERE requester_id = ? AND receiver_id = ?",
		requesterID, receiverID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check friendship request: %w", err)
	}
	return true, nil
}

// CreateFriendship inserts a new pending request edge.
func (s *SQLiteStore) CreateFriendship(ctx context.Context, f *models.Friendship) error {
	now := time.Now().Unix()
	if f.Status == "" {
		f.Status = models.FriendshipPending
	}
	f.CreatedAt = now
	f.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO friendships (requester_id, receiver_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		f.RequesterID, f.ReceiverID, f.Status, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert friendship: %w", err)
	}
	f.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read friendship id: %w", err)
	}
	return nil
}

// AcceptFriendship flips the (requester, receiver) row to accepted.
// Returns nil when no such row exists.
func (s *SQLiteStore) AcceptFriendship(ctx context.Context, requesterID, receiverID string) (*models.Friendship, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE friendships SET status = ?, updated_at = ?
		 WHERE requester_id = ? AND receiver_id = ?`,
		models.FriendshipAccepted, time.Now().Unix(), requesterID, receiverID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to accept friendship: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return s.GetFriendship(ctx, requesterID, receiverID)
}

// DeleteFriendship removes the edge in both directions.
func (s *SQLiteStore) DeleteFriendship(ctx context.Context, a, b string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM friendships
		 WHERE (requester_id = ? AND receiver_id = ?)
		    OR (requester_id = ? AND receiver_id = ?)`,
		a, b, b, a,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete friendship: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted friendships: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) listRequests(ctx context.Context, query, userID string) ([]*models.FriendRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.FriendRequest
	for rows.Next() {
		r := &models.FriendRequest{}
		if err := rows.Scan(&r.ID, &r.UserID, &r.Username, &r.DisplayName, &r.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friend requests: %w", err)
	}
	return requests, nil
}

// ListIncomingRequests returns pending requests sent to the user,
// joined with the requester's profile.
func (s *SQLiteStore) ListIncomingRequests(ctx context.Context, receiverID string) ([]*models.FriendRequest, error) {
	return s.listRequests(ctx,
		`SELECT f.id, u.id, u.username, u.display_name, u.avatar_url
		 FROM friendships f
		 JOIN users u ON f.requester_id = u.id
		 WHERE f.receiver_id = ? AND f.status = 'pending'
		 ORDER BY f.id`,
		receiverID)
}

// ListOutgoingRequests returns pending requests the user has sent,
// joined with the receiver's profile.
func (s *SQLiteStore) ListOutgoingRequests(ctx context.Context, requesterID string) ([]*models.FriendRequest, error) {
	return s.listRequests(ctx,
		`SELECT f.id, u.id, u.username, u.display_name, u.avatar_url
		 FROM friendships f
		 JOIN users u ON f.receiver_id = u.id
		 WHERE f.requester_id = ? AND f.status = 'pending'
		 ORDER BY f.id`,
		requesterID)
}

// ListFriends returns the accepted counterparties of a user.
func (s *SQLiteStore) ListFriends(ctx context.Context, userID string) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+` FROM users
		 WHERE id IN (
			SELECT CASE WHEN f.requester_id = ? THEN f.receiver_id ELSE f.requester_id END
			FROM friendships f
			WHERE (f.requester_id = ? OR f.receiver_id = ?) AND f.status = 'accepted'
		 )
		 ORDER BY username`,
		userID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	return friends, nil
}
