/*
Package model defines the persisted records of the chat backend: users, servers with their
channels and roles, and channel messages.

Records carry their JSON wire names so the same values are written to storage and returned
to clients. The only field never returned to clients is the password hash, see User.Public.
*/
package model

import (
	"slices"
	"time"
)

// Status is a user's presence.
type Status string

const (
	StatusOnline  Status = "Online"
	StatusOffline Status = "Offline"
)

// FriendRequestPending is the only state a stored friend request can be in.
// Answered requests are removed from the recipient's list.
const FriendRequestPending = "pending"

// DefaultUserRole is the global role assigned on registration.
const DefaultUserRole = "member"

// FriendRequest is a pending incoming request stored on the recipient.
type FriendRequest struct {
	FromUserID string `json:"fromUserId"`
	Status     string `json:"status"`
	Timestamp  int64  `json:"timestamp"`
}

// User is a registered account.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash,omitempty"`

	Avatar        *string `json:"avatar"`
	Status        Status  `json:"status"`
	CustomStatus  string  `json:"customStatus"`
	Role          string  `json:"role"`
	Pronouns      string  `json:"pronouns"`
	BannerURL     *string `json:"bannerUrl"`
	ProfileEffect *string `json:"profileEffect"`
	AboutMe       string  `json:"aboutMe"`

	Friends        []string        `json:"friends"`
	FriendRequests []FriendRequest `json:"friendRequests"`

	CreatedAt time.Time `json:"createdAt"`
}

// Public returns a copy of u without its credential.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// IsFriend reports whether userID is in u's friend list.
func (u *User) IsFriend(userID string) bool {
	return slices.Contains(u.Friends, userID)
}

// PendingRequestFrom returns the index of the pending request sent by userID, or -1.
func (u *User) PendingRequestFrom(userID string) int {
	return slices.IndexFunc(u.FriendRequests, func(r FriendRequest) bool {
		return r.FromUserID == userID
	})
}

// AddFriend adds userID to the friend list unless it is already there.
func (u *User) AddFriend(userID string) {
	if !u.IsFriend(userID) {
		u.Friends = append(u.Friends, userID)
	}
}

// FindUser returns the index of the user with id, or -1.
func FindUser(users []User, id string) int {
	return slices.IndexFunc(users, func(u User) bool { return u.ID == id })
}

// FindUserByEmail returns the index of the user registered with email, or -1.
func FindUserByEmail(users []User, email string) int {
	return slices.IndexFunc(users, func(u User) bool { return u.Email == email })
}
