package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"guildchat/internal/app/chat"
	"guildchat/internal/app/events"
	"guildchat/internal/app/model"
	"guildchat/internal/app/service"
	"guildchat/internal/app/store"
	"guildchat/internal/configs"
	"guildchat/internal/pkg/cache"
	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/logx"
)

func TestMain(m *testing.M) {
	logx.Silence()
	os.Exit(m.Run())
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	*httptest.Server
	manager *chat.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:       "development",
		JWTSecret:         "test-secret",
		RoomAuthorization: true,
		SendQueueSize:     32,
		WriteTimeout:      time.Second,
	}

	backend, err := store.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend() failed: %v", err)
	}
	gw := store.NewGateway(backend)

	access := service.NewRoomAccess(gw)
	manager := chat.NewManager(cfg, service.NewPresence(gw), access)
	svc := service.New(gw, manager, access, service.Options{BcryptCost: bcrypt.MinCost})

	c := cache.NewLocal()
	t.Cleanup(func() { c.Close() })

	srv := httptest.NewServer(Router(&AppDeps{
		Config:  cfg,
		Service: svc,
		Access:  access,
		Manager: manager,
		Cache:   c,
	}))
	t.Cleanup(func() {
		srv.Close()
		manager.Shutdown()
	})

	return &testServer{Server: srv, manager: manager}
}

func (ts *testServer) call(t *testing.T, method, path, token string, body any) (int, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("NewRequest() failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer res.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return res.StatusCode, out
}

// register signs up name and returns its token and user.
func (ts *testServer) register(t *testing.T, name string) (string, model.User) {
	t.Helper()

	status, res := ts.call(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": name,
		"email":    name + "@example.com",
		"password": "correct horse",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %+v", name, status, res)
	}

	var data struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	if err := json.Unmarshal(res.Data, &data); err != nil {
		t.Fatalf("decode register data: %v", err)
	}
	return data.Token, data.User
}

func (ts *testServer) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type frame struct {
	Type    string          `json:"type"`
	Room    string          `json:"room"`
	Payload json.RawMessage `json:"payload"`
}

func readFrame(t *testing.T, conn *websocket.Conn, want string) frame {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("waiting for %q: %v", want, err)
		}
		if f.Type == want {
			return f
		}
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	status, res := ts.call(t, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK || res.Code != 0 {
		t.Errorf("GET /health = %d %+v", status, res)
	}
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	token, alice := ts.register(t, "alice")

	if alice.PasswordHash != "" {
		t.Error("register response leaked the password hash")
	}

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       any
		wantStatus int
		wantCode   int
	}{
		{
			name: "duplicate email", method: http.MethodPost, path: "/api/auth/register",
			body:       map[string]string{"username": "alice2", "email": "alice@example.com", "password": "correct horse"},
			wantStatus: http.StatusConflict, wantCode: errs.ErrEmailAlreadyExists,
		},
		{
			name: "invalid email", method: http.MethodPost, path: "/api/auth/register",
			body:       map[string]string{"username": "carol", "email": "nope", "password": "correct horse"},
			wantStatus: http.StatusBadRequest, wantCode: errs.ErrValidationFailed,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/api/auth/login",
			body:       map[string]string{"email": "alice@example.com", "password": "incorrect"},
			wantStatus: http.StatusUnauthorized, wantCode: errs.ErrInvalidCredentials,
		},
		{
			name: "login", method: http.MethodPost, path: "/api/auth/login",
			body:       map[string]string{"email": "alice@example.com", "password": "correct horse"},
			wantStatus: http.StatusOK,
		},
		{
			name: "anonymous listing", method: http.MethodGet, path: "/api/users",
			wantStatus: http.StatusUnauthorized, wantCode: errs.ErrUnauthorized,
		},
		{
			name: "listing", method: http.MethodGet, path: "/api/users", token: token,
			wantStatus: http.StatusOK,
		},
		{
			name: "unknown user", method: http.MethodGet, path: "/api/users/usermissing", token: token,
			wantStatus: http.StatusNotFound, wantCode: errs.ErrUserNotFound,
		},
		{
			name: "attachments disabled", method: http.MethodPost, path: "/api/files/presign-upload", token: token,
			body:       map[string]any{"channelId": "ch1", "fileName": "a.png", "mimeType": "image/png", "fileSize": 10},
			wantStatus: http.StatusNotFound, wantCode: errs.ErrAttachmentsDisabled,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, res := ts.call(t, tc.method, tc.path, tc.token, tc.body)
			if status != tc.wantStatus || res.Code != tc.wantCode {
				t.Errorf("%s %s = %d code %d, want %d code %d", tc.method, tc.path, status, res.Code, tc.wantStatus, tc.wantCode)
			}
		})
	}
}

func TestMessageDeliveredToChannelSubscriber(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, _ := ts.register(t, "alice")
	bobToken, _ := ts.register(t, "bob")

	status, res := ts.call(t, http.MethodPost, "/api/servers", aliceToken, map[string]string{"name": "Gophers"})
	if status != http.StatusCreated {
		t.Fatalf("create server: %d %+v", status, res)
	}
	var server model.Server
	if err := json.Unmarshal(res.Data, &server); err != nil {
		t.Fatalf("decode server: %v", err)
	}
	channelID := server.Channels[0].ID

	bob := ts.dial(t, bobToken)

	bob.WriteJSON(map[string]string{"type": chat.FrameJoin, "room": channelID})
	rejected := readFrame(t, bob, chat.FrameError)
	if rejected.Room != channelID {
		t.Errorf("error frame room = %q", rejected.Room)
	}

	if status, res := ts.call(t, http.MethodPost, "/api/servers/"+server.ID+"/join", bobToken, nil); status != http.StatusOK {
		t.Fatalf("join server: %d %+v", status, res)
	}

	bob.WriteJSON(map[string]string{"type": chat.FrameJoin, "room": channelID})
	readFrame(t, bob, chat.FrameJoined)

	status, res = ts.call(t, http.MethodPost, "/api/messages/"+channelID, aliceToken, map[string]string{"content": "hello bob"})
	if status != http.StatusCreated {
		t.Fatalf("post message: %d %+v", status, res)
	}

	got := readFrame(t, bob, events.MessagePosted)
	var payload events.NewMessage
	if err := json.Unmarshal(got.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.Room != channelID || payload.Message.Content != "hello bob" {
		t.Errorf("new_message frame = %+v, payload %+v", got, payload)
	}

	status, res = ts.call(t, http.MethodGet, "/api/messages/"+channelID, bobToken, nil)
	var history []model.Message
	if err := json.Unmarshal(res.Data, &history); err != nil || status != http.StatusOK || len(history) != 1 {
		t.Errorf("history = %d %s (%v)", status, res.Data, err)
	}
}

func TestFriendAcceptReachesBothPersonalRooms(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, alice := ts.register(t, "alice")
	bobToken, bob := ts.register(t, "bob")

	aliceConn := ts.dial(t, aliceToken)
	bobConn := ts.dial(t, bobToken)

	if status, res := ts.call(t, http.MethodPost, "/api/friends/request", aliceToken, map[string]string{"targetUserId": bob.ID}); status != http.StatusOK {
		t.Fatalf("friend request: %d %+v", status, res)
	}
	request := readFrame(t, bobConn, events.FriendRequestSent)
	if request.Room != bob.ID {
		t.Errorf("friend_request delivered to %q", request.Room)
	}

	path := "/api/friends/request/" + alice.ID + "/respond"
	if status, res := ts.call(t, http.MethodPost, path, bobToken, map[string]string{"action": "accept"}); status != http.StatusOK {
		t.Fatalf("accept: %d %+v", status, res)
	}

	wantDM := model.DMChannelID(alice.ID, bob.ID)
	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		f := readFrame(t, conn, events.FriendRequestAccepted)

		var payload events.FriendAccepted
		if err := json.Unmarshal(f.Payload, &payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.DMChannelID != wantDM {
			t.Errorf("dmChannelId = %q, want %q", payload.DMChannelID, wantDM)
		}
	}
}

func TestWebSocketBrokenTokenIsAnonymous(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.register(t, "alice")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + token + "x"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() with a broken token failed: %v", err)
	}
	defer conn.Close()

	conn.WriteJSON(map[string]string{"type": chat.FrameJoin, "room": "anything"})
	f := readFrame(t, conn, chat.FrameError)
	if f.Room != "anything" {
		t.Errorf("error frame room = %q", f.Room)
	}
}
