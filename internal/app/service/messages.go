package service

import (
	"context"
	"strings"
	"time"

	"guildchat/internal/app/events"
	"guildchat/internal/app/model"
	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/randx"
)

// PostInput is the payload of a new message.
type PostInput struct {
	Content string            `json:"content"`
	File    *model.Attachment `json:"file"`
}

// History returns the log of channelID. Channels the user cannot see are rejected; an id
// matching no known channel has an empty history.
func (s *Service) History(ctx context.Context, userID, channelID string) ([]model.Message, error) {
	if err := s.access.CanAccessChannel(ctx, userID, channelID); err != nil {
		if errs.IsCode(err, errs.ErrChannelNotFound) {
			return []model.Message{}, nil
		}
		return nil, err
	}

	return s.store.ReadMessages(ctx, channelID)
}

// PostMessage appends a message by userID to channelID and publishes it to the channel room.
// The message is stored even when nobody is subscribed to the room.
func (s *Service) PostMessage(ctx context.Context, userID, channelID string, in PostInput) (model.Message, error) {
	content := strings.TrimSpace(in.Content)

	if len(in.Content) > MaxContentBytes {
		return model.Message{}, errs.NewError(errs.ErrMessageContentTooLong)
	}
	if content == "" && in.File == nil {
		return model.Message{}, errs.NewError(errs.ErrMessageEmpty)
	}

	if in.File != nil {
		if !s.attachmentsEnabled {
			return model.Message{}, errs.NewError(errs.ErrAttachmentsDisabled)
		}
		if err := in.File.Validate(channelID); err != nil {
			return model.Message{}, err
		}
	}

	if err := s.access.CanAccessChannel(ctx, userID, channelID); err != nil {
		return model.Message{}, err
	}

	author, err := s.GetUser(ctx, userID)
	if err != nil {
		return model.Message{}, err
	}

	msg := model.Message{
		ID:         randx.MessageID(),
		Content:    in.Content,
		UserID:     author.ID,
		UserName:   author.Username,
		UserAvatar: author.Avatar,
		Timestamp:  time.Now().UnixMilli(),
		File:       in.File,
	}

	return s.store.AppendMessage(ctx, channelID, msg, func(stored model.Message) {
		delivered := s.publisher.Publish(channelID, events.MessagePosted, events.NewMessage{
			ChannelID: channelID,
			Message:   stored,
		})

		s.logger.Debug().
			Str("channel_id", channelID).
			Str("message_id", stored.ID).
			Int("delivered", delivered).
			Msg("Message published")
	})
}
