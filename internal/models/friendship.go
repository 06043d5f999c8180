package models

// FriendshipStatus is the state of a friendship edge.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// Friendship is a directed request edge between two users. The pair
// (requester, receiver) is unique. Rejection is modeled by deleting the
// row rather than storing a rejected status, so a rejected pair can
// request again later.
type Friendship struct {
	ID          int64            `json:"id"`
	RequesterID string           `json:"requester_id"`
	ReceiverID  string           `json:"receiver_id"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   int64            `json:"created_at"`
	UpdatedAt   int64            `json:"updated_at"`
}

// FriendRequest is a pending request joined with the counterparty's
// profile, as shown in incoming/outgoing request lists.
type FriendRequest struct {
	ID          int64  `json:"id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// UserSearchResult is a directory search hit annotated with the
// friendship state relative to the searching user: "none", "pending"
// or "friend".
type UserSearchResult struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Status      string `json:"status"`
}
