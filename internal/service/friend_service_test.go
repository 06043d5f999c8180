package service

import (
	"context"
	"testing"

	"duitsplit/internal/models"
)

func TestFriendRequestLifecycle(t *testing.T) {
	store := newTestStore(t)
	svc := NewFriendService(store)
	ctx := context.Background()

	f, err := svc.Request(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("failed to send request: %v", err)
	}
	if f.Status != models.FriendshipPending {
		t.Errorf("expected pending status, got %s", f.Status)
	}

	// Duplicate request from the same direction is rejected.
	_, err = svc.Request(ctx, "alice", "bob")
	assertKind(t, err, KindConflict)

	incoming, err := svc.IncomingRequests(ctx, "bob")
	if err != nil {
		t.Fatalf("failed to list incoming: %v", err)
	}
	if len(incoming) != 1 || incoming[0].UserID != "alice" {
		t.Fatalf("expected one incoming request from alice, got %v", incoming)
	}

	accepted, err := svc.Accept(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("failed to accept: %v", err)
	}
	if accepted.Status != models.FriendshipAccepted {
		t.Errorf("expected accepted status, got %s", accepted.Status)
	}

	friends, err := svc.Friends(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to list friends: %v", err)
	}
	if len(friends) != 1 || friends[0].ID != "bob" {
		t.Fatalf("expected bob as alice's friend, got %v", friends)
	}
}

func TestFriendRequestValidation(t *testing.T) {
	store := newTestStore(t)
	svc := NewFriendService(store)
	ctx := context.Background()

	tests := []struct {
		name      string
		principal string
		receiver  string
		wantKind  Kind
	}{
		{"missing principal", "", "bob", KindUnauthorized},
		{"missing receiver", "alice", "", KindInvalid},
		{"self request", "alice", "alice", KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Request(ctx, tt.principal, tt.receiver)
			assertKind(t, err, tt.wantKind)
		})
	}
}

func TestFriendAcceptMissing(t *testing.T) {
	store := newTestStore(t)
	svc := NewFriendService(store)

	_, err := svc.Accept(context.Background(), "bob", "alice")
	assertKind(t, err, KindNotFound)
}

func TestFriendCancel(t *testing.T) {
	store := newTestStore(t)
	svc := NewFriendService(store)
	ctx := context.Background()

	if _, err := svc.Request(ctx, "alice", "bob"); err != nil {
		t.Fatalf("failed to send request: %v", err)
	}

	// A third party cannot cancel someone else's friendship.
	err := svc.Cancel(ctx, "mallory", "alice", "bob")
	assertKind(t, err, KindForbidden)

	// The receiver can cancel (reject) an incoming request.
	if err := svc.Cancel(ctx, "bob", "alice", "bob"); err != nil {
		t.Fatalf("failed to cancel: %v", err)
	}

	// After rejection the pair may request again.
	if _, err := svc.Request(ctx, "alice", "bob"); err != nil {
		t.Fatalf("failed to re-request after cancel: %v", err)
	}
}

func TestSearchAnnotatesStatus(t *testing.T) {
	store := newTestStore(t)
	svc := NewFriendService(store)
	ctx := context.Background()

	seedUser(t, store, "alice", "alice")
	seedUser(t, store, "bobby", "bobby")
	seedUser(t, store, "bonnie", "bonnie")
	makeFriends(t, store, "alice", "bobby")
	if _, err := svc.Request(ctx, "alice", "bonnie"); err != nil {
		t.Fatalf("failed to send request: %v", err)
	}

	results, err := svc.Search(ctx, "alice", "bo")
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	statuses := make(map[string]string, len(results))
	for _, r := range results {
		statuses[r.UserID] = r.Status
	}
	if statuses["bobby"] != "friend" {
		t.Errorf("expected bobby to be friend, got %q", statuses["bobby"])
	}
	if statuses["bonnie"] != "pending" {
		t.Errorf("expected bonnie to be pending, got %q", statuses["bonnie"])
	}
}
