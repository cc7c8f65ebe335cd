package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"guildchat/internal/app/events"
	"guildchat/internal/app/model"
	"guildchat/internal/pkg/errs"
)

// startServer serves the manager over a WebSocket endpoint binding the "user" query value.
func startServer(t *testing.T, m *Manager) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s := m.Connect(r.Context(), r.URL.Query().Get("user"))
		m.Serve(s, conn)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// readUntil reads frames until one of type want arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want string) Envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("waiting for %q: %v", want, err)
		}
		if env.Type == want {
			return env
		}
	}
}

func TestWebSocketJoinAndReceive(t *testing.T) {
	m := newTestManager(t, 16, newFakePresence(), nil)
	srv := startServer(t, m)

	conn := dial(t, srv, "usera")

	if err := conn.WriteJSON(inboundFrame{Type: FrameJoin, Room: "ch1"}); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}
	joined := readUntil(t, conn, FrameJoined)
	if joined.Room != "ch1" {
		t.Errorf("joined room = %q", joined.Room)
	}

	msg := events.NewMessage{ChannelID: "ch1", Message: model.Message{ID: "msg1", Content: "hello"}}
	if n := m.Publish("ch1", events.MessagePosted, msg); n != 1 {
		t.Fatalf("Publish() delivered to %d, want 1", n)
	}

	got := readUntil(t, conn, events.MessagePosted)
	payload, ok := got.Payload.(map[string]any)
	if !ok || payload["channelId"] != "ch1" {
		t.Errorf("payload = %#v", got.Payload)
	}
}

func TestWebSocketAnonymousJoinIsRejected(t *testing.T) {
	m := newTestManager(t, 16, nil, nil)
	srv := startServer(t, m)

	conn := dial(t, srv, "")
	conn.WriteJSON(inboundFrame{Type: FrameJoin, Room: "ch1"})

	env := readUntil(t, conn, FrameError)
	payload, _ := env.Payload.(map[string]any)
	if code, _ := payload["code"].(float64); int(code) != errs.ErrUnauthorized {
		t.Errorf("error payload = %#v", env.Payload)
	}
}

func TestWebSocketCloseMarksOffline(t *testing.T) {
	presence := newFakePresence()
	m := newTestManager(t, 16, presence, nil)
	srv := startServer(t, m)

	observer := dial(t, srv, "userb")
	readUntil(t, observer, events.UserStatusChange)

	leaving := dial(t, srv, "usera")
	readUntil(t, observer, events.UserStatusChange)

	leaving.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	leaving.Close()

	env := readUntil(t, observer, events.UserStatusChange)
	payload, _ := env.Payload.(map[string]any)
	if payload["userId"] != "usera" || payload["status"] != string(model.StatusOffline) {
		t.Errorf("payload = %#v", env.Payload)
	}

	deadline := time.Now().Add(time.Second)
	for presence.status("usera") != model.StatusOffline {
		if time.Now().After(deadline) {
			t.Fatalf("stored status = %q, want Offline", presence.status("usera"))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	m := newTestManager(t, 16, nil, nil)
	srv := startServer(t, m)

	conn := dial(t, srv, "usera")
	readUntil(t, conn, events.UserStatusChange)

	done := make(chan struct{})
	go func() {
		m.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown() did not return")
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage() error = %v, want going-away close", err)
	}
	if m.SessionCount() != 0 {
		t.Errorf("SessionCount() = %d after shutdown", m.SessionCount())
	}
}

func TestServeAfterShutdownRefusesSession(t *testing.T) {
	m := newTestManager(t, 16, newFakePresence(), nil)
	srv := startServer(t, m)

	m.Shutdown()

	conn := dial(t, srv, "usera")
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var err error
	for err == nil {
		_, _, err = conn.ReadMessage()
	}
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage() error = %v, want going-away close", err)
	}

	deadline := time.Now().Add(time.Second)
	for m.SessionCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if m.SessionCount() != 0 {
		t.Errorf("SessionCount() = %d after refused session", m.SessionCount())
	}
}
