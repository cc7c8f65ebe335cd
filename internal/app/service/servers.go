package service

import (
	"context"
	"strings"
	"time"

	"guildchat/internal/app/model"
	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/randx"
)

// CreateServerInput is the payload of a server creation.
type CreateServerInput struct {
	Name      string  `json:"name" validate:"required,min=1,max=100"`
	Icon      string  `json:"icon" validate:"omitempty,max=2048"`
	BannerURL *string `json:"bannerUrl" validate:"omitempty,max=2048"`
}

// ServerUpdate carries the server fields an owner may change. Nil fields are left as is.
type ServerUpdate struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	Icon      *string `json:"icon" validate:"omitempty,max=2048"`
	BannerURL *string `json:"bannerUrl" validate:"omitempty,max=2048"`
}

// CreateChannelInput is the payload of a channel creation.
type CreateChannelInput struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Type        string `json:"type" validate:"omitempty,oneof=text voice"`
	Description string `json:"description" validate:"omitempty,max=1024"`
}

// CreateServer creates a server owned by ownerID with the default roles and a general
// channel, and creates that channel's empty log.
func (s *Service) CreateServer(ctx context.Context, ownerID string, in CreateServerInput) (model.Server, error) {
	icon := in.Icon
	if icon == "" {
		icon = model.DefaultServerIcon
	}

	server := model.Server{
		ID:        randx.ServerID(),
		Name:      strings.TrimSpace(in.Name),
		Icon:      icon,
		OwnerID:   ownerID,
		BannerURL: in.BannerURL,
		Roles:     model.DefaultRoles(),
		Channels: []model.Channel{{
			ID:          randx.ChannelID(),
			Name:        model.DefaultChannelName,
			Type:        model.ChannelTypeText,
			Description: "General discussion",
		}},
		Members:   []string{ownerID},
		CreatedAt: time.Now().UTC(),
	}

	err := s.store.UpdateServers(ctx, func(servers []model.Server) ([]model.Server, error) {
		return append(servers, server), nil
	})
	if err != nil {
		return model.Server{}, err
	}

	if err := s.store.EnsureLog(ctx, server.Channels[0].ID); err != nil {
		return model.Server{}, err
	}

	s.logger.Info().Str("server_id", server.ID).Str("owner_id", ownerID).Msg("Server created")
	return server, nil
}

// ListServers returns every server.
func (s *Service) ListServers(ctx context.Context) ([]model.Server, error) {
	return s.store.ReadServers(ctx)
}

// GetServer returns one server.
func (s *Service) GetServer(ctx context.Context, serverID string) (model.Server, error) {
	servers, err := s.store.ReadServers(ctx)
	if err != nil {
		return model.Server{}, err
	}

	i := model.FindServer(servers, serverID)
	if i < 0 {
		return model.Server{}, errs.NewError(errs.ErrServerNotFound)
	}
	return servers[i], nil
}

// mutateOwnedServer runs fn on serverID after checking that actorID owns it.
func (s *Service) mutateOwnedServer(
	ctx context.Context,
	actorID, serverID string,
	fn func(server *model.Server) error,
) (model.Server, error) {
	var result model.Server

	err := s.store.UpdateServers(ctx, func(servers []model.Server) ([]model.Server, error) {
		i := model.FindServer(servers, serverID)
		if i < 0 {
			return nil, errs.NewError(errs.ErrServerNotFound)
		}
		if servers[i].OwnerID != actorID {
			return nil, errs.NewError(errs.ErrNotServerOwner)
		}

		if err := fn(&servers[i]); err != nil {
			return nil, err
		}

		result = servers[i]
		return servers, nil
	})

	return result, err
}

// UpdateServer applies in to serverID. Only the owner may update a server.
func (s *Service) UpdateServer(ctx context.Context, actorID, serverID string, in ServerUpdate) (model.Server, error) {
	return s.mutateOwnedServer(ctx, actorID, serverID, func(server *model.Server) error {
		if in.Name != nil {
			server.Name = strings.TrimSpace(*in.Name)
		}
		if in.Icon != nil {
			server.Icon = *in.Icon
		}
		if in.BannerURL != nil {
			server.BannerURL = in.BannerURL
		}
		return nil
	})
}

// JoinServer adds userID to the members of serverID. Joining twice is a no-op.
func (s *Service) JoinServer(ctx context.Context, userID, serverID string) (model.Server, error) {
	var result model.Server

	err := s.store.UpdateServers(ctx, func(servers []model.Server) ([]model.Server, error) {
		i := model.FindServer(servers, serverID)
		if i < 0 {
			return nil, errs.NewError(errs.ErrServerNotFound)
		}

		if !servers[i].HasMember(userID) {
			servers[i].Members = append(servers[i].Members, userID)
		}

		result = servers[i]
		return servers, nil
	})

	return result, err
}

// CreateChannel adds a channel to serverID and creates its empty log. Only the owner may
// create channels. The name is stored as a slug.
func (s *Service) CreateChannel(ctx context.Context, actorID, serverID string, in CreateChannelInput) (model.Channel, error) {
	channel := model.Channel{
		ID:          randx.ChannelID(),
		Name:        model.ChannelSlug(in.Name),
		Type:        in.Type,
		Description: in.Description,
	}
	if channel.Type == "" {
		channel.Type = model.ChannelTypeText
	}
	if channel.Description == "" {
		channel.Description = strings.TrimSpace(in.Name) + " channel"
	}

	_, err := s.mutateOwnedServer(ctx, actorID, serverID, func(server *model.Server) error {
		server.Channels = append(server.Channels, channel)
		return nil
	})
	if err != nil {
		return model.Channel{}, err
	}

	if err := s.store.EnsureLog(ctx, channel.ID); err != nil {
		return model.Channel{}, err
	}

	return channel, nil
}
