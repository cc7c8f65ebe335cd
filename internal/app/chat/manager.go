/*
Package chat contains the real-time core: room membership, event fan-out to connected
sessions, and the connection lifecycle.

This file defines the Manager struct, which drives every session from connect to disconnect:
it binds identities, auto-joins personal rooms, and turns a user's first and last
connection into presence changes.
*/
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"guildchat/internal/app/events"
	"guildchat/internal/app/model"
	"guildchat/internal/configs"
	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/logx"
)

const (
	// cleanupTimeout bounds the presence write performed when a session ends.
	cleanupTimeout = 5 * time.Second

	defaultQueueSize    = 256
	defaultWriteTimeout = 10 * time.Second
)

// PresenceStore persists a user's presence.
type PresenceStore interface {
	SetStatus(ctx context.Context, userID string, status model.Status) error
}

// Authorizer decides whether a user may subscribe to a room. A nil error allows it.
type Authorizer interface {
	CanJoin(ctx context.Context, userID, roomID string) error
}

// Manager coordinates sessions, the Registry and the Router.
type Manager struct {
	registry *Registry
	router   *Router

	presence   PresenceStore
	authorizer Authorizer

	queueSize    int
	writeTimeout time.Duration

	// mu serializes presence transitions and guards userConns.
	mu sync.Mutex

	// userConns counts live sessions per bound user.
	userConns map[string]int

	// wg tracks sessions being served so Shutdown can wait for their cleanup.
	// serveMu orders wg.Add against the closing flag set by Shutdown.
	wg      sync.WaitGroup
	serveMu sync.Mutex
	closing bool

	// structured logger with Manager context.
	logger zerolog.Logger
}

// NewManager constructs a Manager. authorizer is ignored when room authorization is
// disabled in cfg; presence may be nil when presence is not persisted.
func NewManager(cfg *configs.AppConfig, presence PresenceStore, authorizer Authorizer) *Manager {
	registry := NewRegistry()

	m := &Manager{
		registry:     registry,
		router:       NewRouter(registry),
		presence:     presence,
		queueSize:    cfg.SendQueueSize,
		writeTimeout: cfg.WriteTimeout,
		userConns:    make(map[string]int),
		logger:       logx.Component("manager"),
	}

	if m.queueSize <= 0 {
		m.queueSize = defaultQueueSize
	}
	if m.writeTimeout <= 0 {
		m.writeTimeout = defaultWriteTimeout
	}

	if cfg.RoomAuthorization {
		m.authorizer = authorizer
	}

	return m
}

// Publish delivers an event to the current subscribers of roomID.
func (m *Manager) Publish(roomID, eventType string, payload any) int {
	return m.router.Publish(roomID, eventType, payload)
}

// Broadcast delivers an event to every connected session.
func (m *Manager) Broadcast(eventType string, payload any) int {
	return m.router.Broadcast(eventType, payload)
}

// Registry exposes room membership, mainly for inspection.
func (m *Manager) Registry() *Registry { return m.registry }

// SessionCount returns the number of connected sessions.
func (m *Manager) SessionCount() int { return m.router.SessionCount() }

// Connect registers a new session. When userID is not empty the session is bound to that
// identity and subscribed to its personal room; the user's first session marks them Online.
func (m *Manager) Connect(ctx context.Context, userID string) *Session {
	s := &Session{
		id:           uuid.NewString(),
		userID:       userID,
		manager:      m,
		send:         make(chan []byte, m.queueSize),
		done:         make(chan struct{}),
		writeTimeout: m.writeTimeout,
	}
	s.logger = logx.Logger().With().
		Str("session_id", s.id).
		Str("user_id", userID).
		Logger()

	m.router.attach(s)

	if userID == "" {
		s.logger.Info().Msg("Anonymous session connected")
		return s
	}

	m.registry.Join(userID, s.id)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.userConns[userID]++
	if m.userConns[userID] == 1 {
		m.changePresence(ctx, userID, model.StatusOnline)
	}

	s.logger.Info().Int("user_sessions", m.userConns[userID]).Msg("Session connected")
	return s
}

// JoinRoom subscribes s to roomID after checking that its identity may see the room.
func (m *Manager) JoinRoom(ctx context.Context, s *Session, roomID string) error {
	if s.userID == "" {
		return errs.NewError(errs.ErrUnauthorized)
	}
	if roomID == "" {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if m.authorizer != nil {
		if err := m.authorizer.CanJoin(ctx, s.userID, roomID); err != nil {
			s.logger.Debug().Err(err).Str("room_id", roomID).Msg("Room join rejected")
			return err
		}
	}

	if m.registry.Join(roomID, s.id) {
		s.logger.Debug().Str("room_id", roomID).Msg("Joined room")
	}
	return nil
}

// LeaveRoom unsubscribes s from roomID. Leaving a room that was never joined is not an error.
func (m *Manager) LeaveRoom(s *Session, roomID string) error {
	if s.userID == "" {
		return errs.NewError(errs.ErrUnauthorized)
	}
	if roomID == "" {
		return errs.NewError(errs.ErrInvalidParams)
	}

	m.registry.Leave(roomID, s.id)
	return nil
}

// Serve runs the session's read and write loops on conn and disconnects it when the
// connection ends. It blocks until then.
func (m *Manager) Serve(s *Session, conn *websocket.Conn) {
	m.serveMu.Lock()
	if m.closing {
		m.serveMu.Unlock()

		s.Close(websocket.CloseGoingAway, "server shutting down")
		s.WritePump(conn)

		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		m.Disconnect(ctx, s)
		return
	}
	m.wg.Add(1)
	m.serveMu.Unlock()
	defer m.wg.Done()

	go s.WritePump(conn)
	s.ReadPump(conn)

	// ReadPump ended on its own; make sure the write loop stops too
	s.Close(websocket.CloseNormalClosure, "")

	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	m.Disconnect(ctx, s)
}

// Disconnect ends s: it stops receiving events, the user's last session marks them Offline
// and announces it to everyone, and all of its subscriptions are removed. A failed presence
// write is logged and does not prevent the cleanup. Disconnecting twice is a no-op.
func (m *Manager) Disconnect(ctx context.Context, s *Session) {
	if !m.router.detach(s) {
		return
	}
	s.Close(websocket.CloseNormalClosure, "")

	if s.userID != "" {
		m.mu.Lock()
		if n, ok := m.userConns[s.userID]; ok {
			if n <= 1 {
				delete(m.userConns, s.userID)
				m.changePresence(ctx, s.userID, model.StatusOffline)
			} else {
				m.userConns[s.userID] = n - 1
			}
		}
		m.mu.Unlock()
	}

	left := m.registry.LeaveAll(s.id)
	s.logger.Info().Int("rooms_left", len(left)).Msg("Session disconnected")
}

// changePresence persists status and broadcasts it. Callers hold m.mu.
func (m *Manager) changePresence(ctx context.Context, userID string, status model.Status) {
	if m.presence != nil {
		if err := m.presence.SetStatus(ctx, userID, status); err != nil {
			m.logger.Error().Err(err).
				Str("user_id", userID).
				Str("status", string(status)).
				Msg("Failed to persist presence")
		}
	}

	m.router.Broadcast(events.UserStatusChange, events.StatusChange{UserID: userID, Status: status})
}

// Shutdown closes every session and waits for the served ones to finish their cleanup.
func (m *Manager) Shutdown() {
	m.logger.Info().Msg("Shutting down sessions...")

	m.serveMu.Lock()
	m.closing = true
	m.serveMu.Unlock()

	m.router.mu.RLock()
	sessions := make([]*Session, 0, len(m.router.sessions))
	for _, s := range m.router.sessions {
		sessions = append(sessions, s)
	}
	m.router.mu.RUnlock()

	for _, s := range sessions {
		s.Close(websocket.CloseGoingAway, "server shutting down")
	}

	m.wg.Wait()

	m.logger.Info().Int("sessions_closed", len(sessions)).Msg("Manager shutdown complete.")
}
