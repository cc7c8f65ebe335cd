package service

import (
	"context"
	"os"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"guildchat/internal/app/model"
	"guildchat/internal/app/store"
	"guildchat/internal/pkg/logx"
)

func TestMain(m *testing.M) {
	logx.Silence()
	os.Exit(m.Run())
}

type publishedEvent struct {
	Room    string
	Type    string
	Payload any
}

// recordingPublisher remembers every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(roomID, eventType string, payload any) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, publishedEvent{Room: roomID, Type: eventType, Payload: payload})
	return 0
}

func (p *recordingPublisher) inRoom(roomID, eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []publishedEvent
	for _, e := range p.events {
		if e.Room == roomID && e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// typesInRoom returns the event types delivered to roomID in publish order.
func (p *recordingPublisher) typesInRoom(roomID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []string
	for _, e := range p.events {
		if e.Room == roomID {
			out = append(out, e.Type)
		}
	}
	return out
}

type fixture struct {
	svc       *Service
	store     *store.Gateway
	publisher *recordingPublisher
	access    *RoomAccess
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend, err := store.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend() failed: %v", err)
	}

	gw := store.NewGateway(backend)
	publisher := &recordingPublisher{}
	access := NewRoomAccess(gw)

	return &fixture{
		svc: New(gw, publisher, access, Options{
			AttachmentsEnabled: true,
			BcryptCost:         bcrypt.MinCost,
		}),
		store:     gw,
		publisher: publisher,
		access:    access,
	}
}

func (f *fixture) register(t *testing.T, name string) model.User {
	t.Helper()

	u, err := f.svc.Register(context.Background(), RegisterInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", name, err)
	}
	return u
}
