package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest carries a snapshot of the requester's profile taken at
// submission time so the inbox renders without extra lookups.
type FriendRequest struct {
	ID                 uuid.UUID           `json:"id"`
	RequesterID        uuid.UUID           `json:"requester_id"`
	TargetID           uuid.UUID           `json:"target_id"`
	RequesterUsername  string              `json:"requester_username"`
	RequesterEmail     string              `json:"requester_email"`
	RequesterAvatarURL string              `json:"requester_avatar_url"`
	Status             FriendRequestStatus `json:"status"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// FriendEdge is one direction of an established friendship. Accepting a
// request creates two of these, one per participant.
type FriendEdge struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	FriendID    uuid.UUID `json:"friend_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	AvatarURL   string    `json:"avatar_url"`
	Bio         string    `json:"bio"`
	IsOnline    bool      `json:"is_online"`
	CreatedAt   time.Time `json:"created_at"`
}
