/*
Package randx generates record identifiers.

Ids are a short type prefix followed by the first hex characters of a random UUID v4,
e.g. "user3f9a0c1b2d4e". The prefix keeps ids of different collections visually distinct
and guarantees a user id can never collide with a channel id when both are used as room ids.
*/
package randx

import (
	"strings"

	"github.com/google/uuid"
)

const (
	PrefixUser    = "user"
	PrefixServer  = "server"
	PrefixChannel = "ch"
	PrefixMessage = "msg"
	PrefixRole    = "role"

	// idHexLength is the number of random hex characters after the prefix.
	idHexLength = 12
)

func newID(prefix string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + hex[:idHexLength]
}

// UserID returns a new user id.
func UserID() string { return newID(PrefixUser) }

// ServerID returns a new server id.
func ServerID() string { return newID(PrefixServer) }

// ChannelID returns a new channel id.
func ChannelID() string { return newID(PrefixChannel) }

// MessageID returns a new message id.
func MessageID() string { return newID(PrefixMessage) }

// RoleID returns a new custom role id.
func RoleID() string { return newID(PrefixRole) }

// HasPrefix reports whether id was generated with prefix and has the expected shape.
func HasPrefix(id, prefix string) bool {
	if !strings.HasPrefix(id, prefix) {
		return false
	}

	rest := id[len(prefix):]
	if len(rest) != idHexLength {
		return false
	}

	for _, c := range rest {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}

	return true
}
