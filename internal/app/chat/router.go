package chat

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"guildchat/internal/pkg/logx"
)

// Envelope is the frame every event is delivered in. Room is empty for global broadcasts.
type Envelope struct {
	Type    string `json:"type"`
	Room    string `json:"room,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Router delivers events to the sessions currently subscribed to a room.
// Delivery is best effort: nothing is retried or stored, and a session whose send queue is
// full is dropped instead of stalling the publisher.
type Router struct {
	registry *Registry

	mu       sync.RWMutex
	sessions map[string]*Session

	logger zerolog.Logger
}

// NewRouter creates a Router resolving rooms through registry.
func NewRouter(registry *Registry) *Router {
	return &Router{
		registry: registry,
		sessions: make(map[string]*Session),
		logger:   logx.Component("router"),
	}
}

func (r *Router) attach(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.id] = s
}

// detach reports whether s was attached.
func (r *Router) detach(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.id]; !ok {
		return false
	}
	delete(r.sessions, s.id)
	return true
}

// SessionCount returns the number of attached sessions.
func (r *Router) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Publish delivers an event to every session subscribed to roomID at the time of the call
// and returns how many sessions accepted it. Publishing to an empty room is a no-op.
func (r *Router) Publish(roomID, eventType string, payload any) int {
	data, err := json.Marshal(Envelope{Type: eventType, Room: roomID, Payload: payload})
	if err != nil {
		r.logger.Error().Err(err).Str("event", eventType).Msg("Failed to encode event")
		return 0
	}

	subscribers := r.registry.Subscribers(roomID)
	if len(subscribers) == 0 {
		return 0
	}

	targets := make([]*Session, 0, len(subscribers))
	r.mu.RLock()
	for _, id := range subscribers {
		if s, ok := r.sessions[id]; ok {
			targets = append(targets, s)
		}
	}
	r.mu.RUnlock()

	return r.deliver(targets, data, eventType)
}

// Broadcast delivers an event to every attached session regardless of room membership.
func (r *Router) Broadcast(eventType string, payload any) int {
	data, err := json.Marshal(Envelope{Type: eventType, Payload: payload})
	if err != nil {
		r.logger.Error().Err(err).Str("event", eventType).Msg("Failed to encode event")
		return 0
	}

	r.mu.RLock()
	targets := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		targets = append(targets, s)
	}
	r.mu.RUnlock()

	return r.deliver(targets, data, eventType)
}

func (r *Router) deliver(targets []*Session, data []byte, eventType string) int {
	delivered := 0

	for _, s := range targets {
		err := s.enqueue(data)
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, errQueueFull):
			r.logger.Warn().
				Str("session_id", s.id).
				Str("user_id", s.userID).
				Str("event", eventType).
				Msg("Send queue full, dropping slow session")
			s.Close(CloseCodeSlowConsumer, "send queue overflow")
		}
	}

	return delivered
}
