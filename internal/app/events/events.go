// Package events names the domain events delivered to connected clients and their payloads.
package events

import "guildchat/internal/app/model"

// Event type names as seen by clients.
const (
	MessagePosted         = "new_message"
	FriendRequestSent     = "friend_request"
	FriendRequestAccepted = "friend_request_accepted"
	UserStatusChange      = "user_status_change"
)

// NewMessage is published to the channel room after the message is stored.
type NewMessage struct {
	ChannelID string        `json:"channelId"`
	Message   model.Message `json:"message"`
}

// FriendRequest is published to the recipient's personal room.
type FriendRequest struct {
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
}

// FriendAccepted is published once to each participant's personal room.
// UserID is the recipient of that delivery and FriendID the other participant.
type FriendAccepted struct {
	UserID      string `json:"userId"`
	FriendID    string `json:"friendId"`
	DMChannelID string `json:"dmChannelId"`
}

// StatusChange is broadcast to every connection.
type StatusChange struct {
	UserID string       `json:"userId"`
	Status model.Status `json:"status"`
}
