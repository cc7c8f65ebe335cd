/*
Package store is the persistence gateway of the chat backend.

Three record collections are kept: users, servers (with their channels), and one
append-only message log per channel. A Backend persists whole collections; the Gateway
serializes every read-modify-write sequence on a collection behind that collection's mutex
and returns only after the backend reports the write durable.
*/
package store

import (
	"context"
	"errors"

	"guildchat/internal/app/model"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflicts with an existing record")
)

// Backend is a storage technology able to hold the three collections.
// Implementations need not be safe for concurrent read-modify-write sequences; the Gateway
// provides that.
type Backend interface {
	LoadUsers(ctx context.Context) ([]model.User, error)

	// SaveUsers replaces the stored user collection with users.
	SaveUsers(ctx context.Context, users []model.User) error

	LoadServers(ctx context.Context) ([]model.Server, error)

	// SaveServers replaces the stored server collection with servers.
	SaveServers(ctx context.Context, servers []model.Server) error

	// LoadMessages returns the log of channelID in append order and whether the log exists.
	LoadMessages(ctx context.Context, channelID string) ([]model.Message, bool, error)

	// EnsureLog creates an empty log for channelID unless one exists.
	EnsureLog(ctx context.Context, channelID string) error

	// AppendMessage appends msg to the existing log of channelID.
	AppendMessage(ctx context.Context, channelID string, msg model.Message) error

	Close() error
}
