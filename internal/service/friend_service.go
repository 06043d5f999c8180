package service

import (
	"context"
	"fmt"
	"log/slog"

	"duitsplit/internal/models"
	"duitsplit/internal/storage"
)

// FriendService manages friendship requests and the accepted-friend
// list used to populate bill participants.
type FriendService struct {
	store storage.Store
}

func NewFriendService(store storage.Store) *FriendService {
	return &FriendService{store: store}
}

// Search finds users whose username starts with the query and
// annotates each with their friendship status relative to the caller.
func (s *FriendService) Search(ctx context.Context, principal, query string) ([]*models.UserSearchResult, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	if query == "" {
		return nil, invalid("Query required")
	}

	users, err := s.store.SearchUsers(ctx, query, principal, 20)
	if err != nil {
		slog.Error("failed to search users", "error", err)
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	results := make([]*models.UserSearchResult, 0, len(users))
	for _, u := range users {
		f, err := s.store.GetFriendship(ctx, principal, u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get friendship: %w", err)
		}
		status := "none"
		switch {
		case f == nil:
		case f.Status == models.FriendshipAccepted:
			status = "friend"
		default:
			status = "pending"
		}
		results = append(results, &models.UserSearchResult{
			UserID:      u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			AvatarURL:   u.AvatarURL,
			Status:      status,
		})
	}
	return results, nil
}

// Request creates a pending friendship from the caller to receiverID.
// Both users are provisioned on first contact so a request can target
// an identity that has never opened the app.
func (s *FriendService) Request(ctx context.Context, principal, receiverID string) (*models.Friendship, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	if receiverID == "" {
		return nil, invalid("receiver_id required")
	}
	if receiverID == principal {
		return nil, invalid("Cannot send a request to yourself")
	}

	if err := s.store.EnsureUser(ctx, &models.User{ID: principal}); err != nil {
		return nil, fmt.Errorf("failed to ensure requester: %w", err)
	}
	if err := s.store.EnsureUser(ctx, &models.User{ID: receiverID}); err != nil {
		return nil, fmt.Errorf("failed to ensure receiver: %w", err)
	}

	exists, err := s.store.HasRequest(ctx, principal, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to check request: %w", err)
	}
	if exists {
		return nil, conflict("Request already exists")
	}

	f := &models.Friendship{RequesterID: principal, ReceiverID: receiverID}
	if err := s.store.CreateFriendship(ctx, f); err != nil {
		slog.Error("failed to create friendship", "error", err)
		return nil, fmt.Errorf("failed to create friendship: %w", err)
	}
	return f, nil
}

// Accept flips a pending request addressed to the caller to accepted.
func (s *FriendService) Accept(ctx context.Context, principal, requesterID string) (*models.Friendship, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	if requesterID == "" {
		return nil, invalid("requester_id required")
	}

	f, err := s.store.AcceptFriendship(ctx, requesterID, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to accept friendship: %w", err)
	}
	if f == nil {
		return nil, notFound("Request not found")
	}
	return f, nil
}

// Cancel removes the friendship edge between two users in either
// direction. Only one of the two members may issue the cancellation.
func (s *FriendService) Cancel(ctx context.Context, principal, requesterID, receiverID string) error {
	if principal == "" {
		return unauthorized("Unauthorized")
	}
	if requesterID == "" || receiverID == "" {
		return invalid("requester_id and receiver_id required")
	}
	if principal != requesterID && principal != receiverID {
		return forbidden("Not a member of this friendship")
	}

	n, err := s.store.DeleteFriendship(ctx, requesterID, receiverID)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	if n == 0 {
		return notFound("Friendship not found")
	}
	return nil
}

func (s *FriendService) IncomingRequests(ctx context.Context, principal string) ([]*models.FriendRequest, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	reqs, err := s.store.ListIncomingRequests(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming requests: %w", err)
	}
	return reqs, nil
}

func (s *FriendService) OutgoingRequests(ctx context.Context, principal string) ([]*models.FriendRequest, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	reqs, err := s.store.ListOutgoingRequests(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to list outgoing requests: %w", err)
	}
	return reqs, nil
}

func (s *FriendService) Friends(ctx context.Context, principal string) ([]*models.User, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	friends, err := s.store.ListFriends(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return friends, nil
}
