package models

import "time"

// FriendStatus represents the status of a friend request
type FriendStatus string

const (
	FriendStatusPending  FriendStatus = "pending"
	FriendStatusAccepted FriendStatus = "accepted"
	FriendStatusRejected FriendStatus = "rejected"
)

// FriendRequest represents a friend request between two users
type FriendRequest struct {
	ID             FlexibleID   `json:"id"`
	FromUser       string       `json:"from_user"`
	FromUserID     FlexibleID   `json:"from_user_id"`
	FromUserName   string       `json:"from_user_name"`
	FromUserAvatar string       `json:"from_user_avatar,omitempty"`
	ToUser         string       `json:"to_user"`
	Status         FriendStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
}

// FriendAction is the body of an accept or reject call
type FriendAction struct {
	Action string `json:"action"` // "accept", "reject"
}
