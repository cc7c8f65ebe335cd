/*
Package service implements the REST-facing operations of the chat backend on top of the
persistence gateway. Every operation that changes state publishes its event only after
the change is durable.
*/
package service

import (
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"guildchat/internal/app/store"
	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/logx"
)

// MaxContentBytes is the maximum allowed size (in bytes) for message content.
const MaxContentBytes = 5000

// Publisher delivers an event to the current subscribers of a room.
type Publisher interface {
	Publish(roomID, eventType string, payload any) int
}

// Options tunes a Service.
type Options struct {
	// AttachmentsEnabled allows messages to reference uploaded files.
	AttachmentsEnabled bool

	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Service bundles the user, server, message and friend operations.
type Service struct {
	store     *store.Gateway
	publisher Publisher
	access    *RoomAccess

	attachmentsEnabled bool
	bcryptCost         int

	logger zerolog.Logger
}

// New creates a Service publishing through publisher.
func New(gw *store.Gateway, publisher Publisher, access *RoomAccess, opts Options) *Service {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &Service{
		store:              gw,
		publisher:          publisher,
		access:             access,
		attachmentsEnabled: opts.AttachmentsEnabled,
		bcryptCost:         cost,
		logger:             logx.Component("service"),
	}
}

// storeError maps gateway sentinels to client-facing errors. Anything else passes through
// and ends up as an internal error.
func storeError(err error, notFoundCode, conflictCode int) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound) && notFoundCode != 0:
		return errs.NewError(notFoundCode)
	case errors.Is(err, store.ErrConflict) && conflictCode != 0:
		return errs.NewError(conflictCode)
	default:
		return err
	}
}
