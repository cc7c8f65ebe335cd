package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"guildchat/internal/app/model"
	"guildchat/internal/pkg/logx"
)

// CommitHook runs after a write is durable and before the collection lock is released.
// Hooks must not block and must not call back into the Gateway.
type CommitHook func()

// MessageHook is the CommitHook of an append; it receives the message as stored.
type MessageHook func(msg model.Message)

// Gateway serializes access to a Backend with one mutex per collection.
type Gateway struct {
	backend Backend

	usersMu    sync.Mutex
	serversMu  sync.Mutex
	messagesMu sync.Mutex

	// lastStamp caches the newest timestamp of every log appended to. Guarded by messagesMu.
	lastStamp map[string]int64

	logger zerolog.Logger
}

// NewGateway wraps backend.
func NewGateway(backend Backend) *Gateway {
	return &Gateway{
		backend:   backend,
		lastStamp: make(map[string]int64),
		logger:    logx.Component("store"),
	}
}

// ReadUsers returns a snapshot of the user collection.
func (g *Gateway) ReadUsers(ctx context.Context) ([]model.User, error) {
	g.usersMu.Lock()
	defer g.usersMu.Unlock()

	return g.backend.LoadUsers(ctx)
}

// WriteUsers replaces the user collection.
func (g *Gateway) WriteUsers(ctx context.Context, users []model.User) error {
	g.usersMu.Lock()
	defer g.usersMu.Unlock()

	return g.backend.SaveUsers(ctx, users)
}

// UpdateUsers runs fn on the current user collection and stores its result atomically with
// respect to every other Gateway user operation. When fn fails nothing is written.
// The hooks run in order once the write is durable.
func (g *Gateway) UpdateUsers(
	ctx context.Context,
	fn func(users []model.User) ([]model.User, error),
	hooks ...CommitHook,
) error {
	g.usersMu.Lock()
	defer g.usersMu.Unlock()

	users, err := g.backend.LoadUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	updated, err := fn(users)
	if err != nil {
		return err
	}

	if err := g.backend.SaveUsers(ctx, updated); err != nil {
		g.logger.Error().Err(err).Msg("Failed to save users")
		return fmt.Errorf("save users: %w", err)
	}

	runHooks(hooks)
	return nil
}

// ReadServers returns a snapshot of the server collection.
func (g *Gateway) ReadServers(ctx context.Context) ([]model.Server, error) {
	g.serversMu.Lock()
	defer g.serversMu.Unlock()

	return g.backend.LoadServers(ctx)
}

// WriteServers replaces the server collection.
func (g *Gateway) WriteServers(ctx context.Context, servers []model.Server) error {
	g.serversMu.Lock()
	defer g.serversMu.Unlock()

	return g.backend.SaveServers(ctx, servers)
}

// UpdateServers is the server collection counterpart of UpdateUsers.
func (g *Gateway) UpdateServers(
	ctx context.Context,
	fn func(servers []model.Server) ([]model.Server, error),
	hooks ...CommitHook,
) error {
	g.serversMu.Lock()
	defer g.serversMu.Unlock()

	servers, err := g.backend.LoadServers(ctx)
	if err != nil {
		return fmt.Errorf("load servers: %w", err)
	}

	updated, err := fn(servers)
	if err != nil {
		return err
	}

	if err := g.backend.SaveServers(ctx, updated); err != nil {
		g.logger.Error().Err(err).Msg("Failed to save servers")
		return fmt.Errorf("save servers: %w", err)
	}

	runHooks(hooks)
	return nil
}

// ReadMessages returns the log of channelID. A channel without a log has no messages.
func (g *Gateway) ReadMessages(ctx context.Context, channelID string) ([]model.Message, error) {
	g.messagesMu.Lock()
	defer g.messagesMu.Unlock()

	msgs, _, err := g.backend.LoadMessages(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}

// EnsureLog creates an empty log for channelID unless one exists.
func (g *Gateway) EnsureLog(ctx context.Context, channelID string) error {
	g.messagesMu.Lock()
	defer g.messagesMu.Unlock()

	return g.backend.EnsureLog(ctx, channelID)
}

// AppendMessage appends msg to the log of channelID, creating the log first when needed.
// The stored timestamp never goes below the previous message of the same log.
// hook, when not nil, receives the stored message once the append is durable; appends to
// every log are serialized, so hooks observe the same order as the log.
func (g *Gateway) AppendMessage(
	ctx context.Context,
	channelID string,
	msg model.Message,
	hook MessageHook,
) (model.Message, error) {
	g.messagesMu.Lock()
	defer g.messagesMu.Unlock()

	last, ok := g.lastStamp[channelID]
	if !ok {
		msgs, exists, err := g.backend.LoadMessages(ctx, channelID)
		if err != nil {
			return model.Message{}, fmt.Errorf("load messages: %w", err)
		}

		if !exists {
			if err := g.backend.EnsureLog(ctx, channelID); err != nil {
				return model.Message{}, fmt.Errorf("create message log: %w", err)
			}
		}

		if n := len(msgs); n > 0 {
			last = msgs[n-1].Timestamp
		}
	}

	if msg.Timestamp < last {
		msg.Timestamp = last
	}

	if err := g.backend.AppendMessage(ctx, channelID, msg); err != nil {
		g.logger.Error().Err(err).Str("channel_id", channelID).Msg("Failed to append message")
		return model.Message{}, fmt.Errorf("append message: %w", err)
	}

	g.lastStamp[channelID] = msg.Timestamp

	if hook != nil {
		hook(msg)
	}

	return msg, nil
}

// Close closes the backend.
func (g *Gateway) Close() error {
	return g.backend.Close()
}

func runHooks(hooks []CommitHook) {
	for _, hook := range hooks {
		if hook != nil {
			hook()
		}
	}
}
