package service

import (
	"context"
	"slices"
	"time"

	"guildchat/internal/app/events"
	"guildchat/internal/app/model"
	"guildchat/internal/app/store"
	"guildchat/internal/pkg/errs"
)

// Answers to a friend request.
const (
	FriendActionAccept  = "accept"
	FriendActionDecline = "decline"
)

// FriendRequestInput is the payload of a friend request.
type FriendRequestInput struct {
	TargetUserID string `json:"targetUserId" validate:"required"`
}

// FriendResponseInput is the payload of an answer to a friend request.
type FriendResponseInput struct {
	Action string `json:"action" validate:"required"`
}

// FriendResponse describes the outcome of an answered request.
type FriendResponse struct {
	Action      string `json:"action"`
	FriendID    string `json:"friendId"`
	DMChannelID string `json:"dmChannelId,omitempty"`
}

// SendFriendRequest stores a pending request from fromID on toID and notifies toID's
// personal room.
func (s *Service) SendFriendRequest(ctx context.Context, fromID, toID string) error {
	if fromID == toID {
		return errs.NewError(errs.ErrCannotFriendSelf)
	}

	return s.store.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		from := model.FindUser(users, fromID)
		to := model.FindUser(users, toID)
		if from < 0 || to < 0 {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}

		if users[from].IsFriend(toID) {
			return nil, errs.NewError(errs.ErrAlreadyFriends)
		}
		if users[to].PendingRequestFrom(fromID) >= 0 {
			return nil, errs.NewError(errs.ErrFriendRequestExists)
		}

		users[to].FriendRequests = append(users[to].FriendRequests, model.FriendRequest{
			FromUserID: fromID,
			Status:     model.FriendRequestPending,
			Timestamp:  time.Now().UnixMilli(),
		})
		return users, nil
	}, func() {
		s.publisher.Publish(toID, events.FriendRequestSent, events.FriendRequest{
			FromUserID: fromID,
			ToUserID:   toID,
		})
	})
}

// RespondFriendRequest answers the pending request fromID sent to userID. Accepting makes
// both users friends, creates their direct-message log, and notifies both personal rooms
// with the direct-message channel id.
func (s *Service) RespondFriendRequest(ctx context.Context, userID, fromID, action string) (FriendResponse, error) {
	if action != FriendActionAccept && action != FriendActionDecline {
		return FriendResponse{}, errs.NewError(errs.ErrInvalidFriendAction)
	}

	result := FriendResponse{Action: action, FriendID: fromID}

	var hooks []store.CommitHook
	if action == FriendActionAccept {
		result.DMChannelID = model.DMChannelID(userID, fromID)
		hooks = append(hooks, func() {
			s.publisher.Publish(userID, events.FriendRequestAccepted, events.FriendAccepted{
				UserID:      userID,
				FriendID:    fromID,
				DMChannelID: result.DMChannelID,
			})
			s.publisher.Publish(fromID, events.FriendRequestAccepted, events.FriendAccepted{
				UserID:      fromID,
				FriendID:    userID,
				DMChannelID: result.DMChannelID,
			})
		})
	}

	err := s.store.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		me := model.FindUser(users, userID)
		if me < 0 {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}

		req := users[me].PendingRequestFrom(fromID)
		if req < 0 {
			return nil, errs.NewError(errs.ErrFriendRequestNotFound)
		}

		requester := model.FindUser(users, fromID)
		if requester < 0 {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}

		users[me].FriendRequests = slices.Delete(users[me].FriendRequests, req, req+1)

		if action == FriendActionAccept {
			users[me].AddFriend(fromID)
			users[requester].AddFriend(userID)
		}
		return users, nil
	}, hooks...)
	if err != nil {
		return FriendResponse{}, err
	}

	if action == FriendActionDecline {
		return result, nil
	}

	if err := s.store.EnsureLog(ctx, result.DMChannelID); err != nil {
		// the first message to the channel creates the log as well
		s.logger.Warn().Err(err).Str("channel_id", result.DMChannelID).Msg("Failed to create DM log")
	}

	s.logger.Info().Str("user_id", userID).Str("friend_id", fromID).Msg("Friend request accepted")
	return result, nil
}
