/*
Package chat contains the real-time core: room membership, event fan-out to connected
sessions, and the connection lifecycle.

This file defines the Session struct, representing one WebSocket connection. It owns the
connection's outbound queue and its read and write loops.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"guildchat/internal/pkg/errs"
)

const (
	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 4096

	// bound for handling one inbound frame, including the room access check.
	inboundTimeout = 5 * time.Second

	// CloseCodeSlowConsumer is a custom WebSocket Close Code (4000-4999 range) telling the
	// client it was dropped because it did not keep up with its events.
	CloseCodeSlowConsumer = 4001
)

// Frame types exchanged with the client besides domain events.
const (
	FrameJoin   = "join"
	FrameLeave  = "leave"
	FrameJoined = "joined"
	FrameLeft   = "left"
	FrameError  = "error"
)

var (
	errQueueFull     = errors.New("session send queue full")
	errSessionClosed = errors.New("session closed")
)

// inboundFrame is a client request to change its room subscriptions.
type inboundFrame struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// Session is the live state of one client connection.
type Session struct {
	id string

	// userID is the bound identity; empty for anonymous connections.
	userID string

	manager *Manager

	// send is never closed; done signals shutdown to both loops instead.
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once

	// closeCode and closeReason are written once inside closeOnce.
	closeCode   int
	closeReason string

	writeTimeout time.Duration

	logger zerolog.Logger
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// UserID returns the bound identity, or "" for an anonymous session.
func (s *Session) UserID() string { return s.userID }

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// enqueue queues data for the write loop without blocking.
func (s *Session) enqueue(data []byte) error {
	select {
	case <-s.done:
		return errSessionClosed
	default:
	}

	select {
	case s.send <- data:
		return nil
	default:
		return errQueueFull
	}
}

// sendFrame queues a control frame for this session only.
func (s *Session) sendFrame(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode frame")
		return
	}

	if err := s.enqueue(data); errors.Is(err, errQueueFull) {
		s.Close(CloseCodeSlowConsumer, "send queue overflow")
	}
}

// sendError queues an error frame describing err.
func (s *Session) sendError(roomID string, err error) {
	s.sendFrame(Envelope{Type: FrameError, Room: roomID, Payload: errs.From(err)})
}

// Close stops the session. The write loop sends a close frame with code and reason.
// Only the first call has an effect.
func (s *Session) Close(code int, reason string) {
	s.closeOnce.Do(func() {
		s.closeCode = code
		s.closeReason = reason
		close(s.done)
	})
}

// ReadPump handles reading frames from the WebSocket connection until it fails or closes.
func (s *Session) ReadPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			return
		}

		s.processInbound(data)
	}
}

// processInbound handles one raw frame received from the client.
func (s *Session) processInbound(data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		s.sendError("", errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), inboundTimeout)
	defer cancel()

	switch frame.Type {
	case FrameJoin:
		if err := s.manager.JoinRoom(ctx, s, frame.Room); err != nil {
			s.sendError(frame.Room, err)
			return
		}
		s.sendFrame(Envelope{Type: FrameJoined, Room: frame.Room})

	case FrameLeave:
		if err := s.manager.LeaveRoom(s, frame.Room); err != nil {
			s.sendError(frame.Room, err)
			return
		}
		s.sendFrame(Envelope{Type: FrameLeft, Room: frame.Room})

	default:
		s.logger.Warn().Str("frame_type", frame.Type).Msg("Client sent unsupported frame type")
		s.sendError(frame.Room, errs.NewError(errs.ErrInvalidParams))
	}
}

// WritePump writes queued frames to the connection and keeps it alive with pings.
// Every write is bounded by the write timeout, so an unresponsive client ends the loop.
func (s *Session) WritePump(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit so ReadPump unblocks
		if err := conn.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case message := <-s.send:
			if !s.write(conn, websocket.TextMessage, message) {
				s.Close(websocket.CloseAbnormalClosure, "write failed")
				return
			}

		case <-ticker.C:
			if !s.write(conn, websocket.PingMessage, nil) {
				s.Close(websocket.CloseAbnormalClosure, "ping failed")
				return
			}

		case <-s.done:
			s.write(conn, websocket.CloseMessage, websocket.FormatCloseMessage(s.closeCode, s.closeReason))
			return
		}
	}
}

// write sends one frame within the write timeout. It reports whether the loop may continue.
func (s *Session) write(conn *websocket.Conn, messageType int, data []byte) bool {
	if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := conn.WriteMessage(messageType, data); err != nil {
		s.logger.Debug().Err(err).Int("message_type", messageType).Msg("Error writing frame")
		return false
	}

	return true
}
