package service

import (
	"context"

	"guildchat/internal/app/model"
	"guildchat/internal/app/store"
	"guildchat/internal/pkg/errs"
)

// RoomAccess decides which rooms and channels a user may see.
type RoomAccess struct {
	store *store.Gateway
}

// NewRoomAccess creates a RoomAccess reading through gw.
func NewRoomAccess(gw *store.Gateway) *RoomAccess {
	return &RoomAccess{store: gw}
}

// CanJoin allows a user to subscribe to their own personal room, to direct-message channels
// they take part in, and to servers and server channels they are a member of.
func (a *RoomAccess) CanJoin(ctx context.Context, userID, roomID string) error {
	if roomID == userID {
		return nil
	}

	if model.IsDMChannel(roomID) {
		return a.CanAccessChannel(ctx, userID, roomID)
	}

	servers, err := a.store.ReadServers(ctx)
	if err != nil {
		return err
	}

	if i := model.FindServer(servers, roomID); i >= 0 {
		if !servers[i].HasMember(userID) {
			return errs.NewError(errs.ErrRoomForbidden)
		}
		return nil
	}

	if i := model.FindChannelServer(servers, roomID); i >= 0 {
		if !servers[i].HasMember(userID) {
			return errs.NewError(errs.ErrRoomForbidden)
		}
		return nil
	}

	users, err := a.store.ReadUsers(ctx)
	if err != nil {
		return err
	}
	if model.FindUser(users, roomID) >= 0 {
		return errs.NewError(errs.ErrRoomForbidden)
	}

	return errs.NewError(errs.ErrRoomNotFound)
}

// CanAccessChannel checks that userID may read and post in channelID: a direct-message
// channel the user takes part in, or a channel of a server the user is a member of.
func (a *RoomAccess) CanAccessChannel(ctx context.Context, userID, channelID string) error {
	if first, second, ok := model.ParseDMChannelID(channelID); ok {
		if userID != first && userID != second {
			return errs.NewError(errs.ErrRoomForbidden)
		}
		return nil
	}

	servers, err := a.store.ReadServers(ctx)
	if err != nil {
		return err
	}

	i := model.FindChannelServer(servers, channelID)
	if i < 0 {
		return errs.NewError(errs.ErrChannelNotFound)
	}
	if !servers[i].HasMember(userID) {
		return errs.NewError(errs.ErrNotServerMember)
	}

	return nil
}
