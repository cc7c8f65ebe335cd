/*
Package chat contains the real-time core: room membership, event fan-out to connected
sessions, and the connection lifecycle.

A room is any id events are published to: a server channel, a direct-message channel, or a
user id acting as that user's personal notification room.
*/
package chat

import "sync"

// Registry maps rooms to the sessions subscribed to them. One lock guards both directions
// of the mapping so every operation is linearizable.
type Registry struct {
	mu sync.RWMutex

	// rooms maps a room id to its subscribed session ids.
	rooms map[string]map[string]struct{}

	// memberships maps a session id to the rooms it is subscribed to.
	memberships map[string]map[string]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:       make(map[string]map[string]struct{}),
		memberships: make(map[string]map[string]struct{}),
	}
}

// Join subscribes sessionID to roomID. It reports whether the subscription is new.
func (r *Registry) Join(roomID, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[roomID] = members
	}

	if _, ok := members[sessionID]; ok {
		return false
	}
	members[sessionID] = struct{}{}

	joined, ok := r.memberships[sessionID]
	if !ok {
		joined = make(map[string]struct{})
		r.memberships[sessionID] = joined
	}
	joined[roomID] = struct{}{}

	return true
}

// Leave unsubscribes sessionID from roomID. It reports whether a subscription was removed.
func (r *Registry) Leave(roomID, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.leave(roomID, sessionID)
}

func (r *Registry) leave(roomID, sessionID string) bool {
	members, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	if _, ok := members[sessionID]; !ok {
		return false
	}

	delete(members, sessionID)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}

	if joined, ok := r.memberships[sessionID]; ok {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(r.memberships, sessionID)
		}
	}

	return true
}

// LeaveAll removes every subscription of sessionID and returns the rooms it left.
func (r *Registry) LeaveAll(sessionID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined := r.memberships[sessionID]
	left := make([]string, 0, len(joined))

	for roomID := range joined {
		left = append(left, roomID)
	}
	for _, roomID := range left {
		r.leave(roomID, sessionID)
	}

	return left
}

// Subscribers returns a snapshot of the sessions subscribed to roomID, in no particular order.
// A room nobody joined has no subscribers.
func (r *Registry) Subscribers(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomID]
	out := make([]string, 0, len(members))
	for sessionID := range members {
		out = append(out, sessionID)
	}
	return out
}

// Rooms returns a snapshot of the rooms sessionID is subscribed to.
func (r *Registry) Rooms(sessionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	joined := r.memberships[sessionID]
	out := make([]string, 0, len(joined))
	for roomID := range joined {
		out = append(out, roomID)
	}
	return out
}

// RoomCount returns the number of rooms with at least one subscriber.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
