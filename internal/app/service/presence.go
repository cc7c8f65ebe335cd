package service

import (
	"context"

	"guildchat/internal/app/model"
	"guildchat/internal/app/store"
	"guildchat/internal/pkg/errs"
)

// Presence persists user status changes made by the connection lifecycle.
type Presence struct {
	store *store.Gateway
}

// NewPresence creates a Presence writing through gw.
func NewPresence(gw *store.Gateway) *Presence {
	return &Presence{store: gw}
}

// SetStatus stores status on userID.
func (p *Presence) SetStatus(ctx context.Context, userID string, status model.Status) error {
	return setStatus(ctx, p.store, userID, status)
}

func setStatus(ctx context.Context, gw *store.Gateway, userID string, status model.Status) error {
	return gw.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		i := model.FindUser(users, userID)
		if i < 0 {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}

		users[i].Status = status
		return users, nil
	})
}
