package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"guildchat/internal/app/db"
	"guildchat/internal/app/model"
	"guildchat/internal/pkg/logx"
)

func TestMain(m *testing.M) {
	logx.Silence()
	os.Exit(m.Run())
}

type backendFactory func(t *testing.T) Backend

func fileBackend(t *testing.T) Backend {
	t.Helper()

	b, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend() failed: %v", err)
	}
	return b
}

func sqliteBackend(t *testing.T) Backend {
	t.Helper()

	sqlDB, err := db.OpenSQL(context.Background(), db.DialectSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQL() failed: %v", err)
	}

	b, err := NewSQLBackend(sqlDB, db.DialectSQLite)
	if err != nil {
		t.Fatalf("NewSQLBackend() failed: %v", err)
	}
	return b
}

var backends = map[string]backendFactory{
	"file":   fileBackend,
	"sqlite": sqliteBackend,
}

func forEachBackend(t *testing.T, fn func(t *testing.T, g *Gateway)) {
	for name, factory := range backends {
		t.Run(name, func(t *testing.T) {
			g := NewGateway(factory(t))
			t.Cleanup(func() { g.Close() })
			fn(t, g)
		})
	}
}

func TestReadMessagesOfMissingLogIsEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g *Gateway) {
		msgs, err := g.ReadMessages(context.Background(), "ch-unknown")
		if err != nil {
			t.Fatalf("ReadMessages() failed: %v", err)
		}
		if msgs == nil || len(msgs) != 0 {
			t.Errorf("ReadMessages() = %v, want empty non-nil slice", msgs)
		}
	})
}

func TestAppendCreatesLogAndKeepsOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g *Gateway) {
		ctx := context.Background()

		for i := range 3 {
			msg := model.Message{ID: fmt.Sprintf("msg%d", i), Content: "hi", Timestamp: int64(100 + i)}
			if _, err := g.AppendMessage(ctx, "ch1", msg, nil); err != nil {
				t.Fatalf("AppendMessage() failed: %v", err)
			}
		}

		msgs, err := g.ReadMessages(ctx, "ch1")
		if err != nil {
			t.Fatalf("ReadMessages() failed: %v", err)
		}
		if len(msgs) != 3 {
			t.Fatalf("got %d messages, want 3", len(msgs))
		}
		for i, m := range msgs {
			if m.ID != fmt.Sprintf("msg%d", i) {
				t.Errorf("message %d has id %q", i, m.ID)
			}
		}
	})
}

func TestAppendClampsTimestamps(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g *Gateway) {
		ctx := context.Background()

		if _, err := g.AppendMessage(ctx, "ch1", model.Message{ID: "msg1", Timestamp: 500}, nil); err != nil {
			t.Fatalf("AppendMessage() failed: %v", err)
		}

		stored, err := g.AppendMessage(ctx, "ch1", model.Message{ID: "msg2", Timestamp: 400}, nil)
		if err != nil {
			t.Fatalf("AppendMessage() failed: %v", err)
		}
		if stored.Timestamp != 500 {
			t.Errorf("stored timestamp = %d, want 500", stored.Timestamp)
		}
	})
}

func TestConcurrentAppendsMatchHookOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g *Gateway) {
		ctx := context.Background()

		const writers = 20

		var (
			mu       sync.Mutex
			observed []string
			wg       sync.WaitGroup
		)

		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				msg := model.Message{ID: fmt.Sprintf("msg%02d", i), Timestamp: 1}
				_, err := g.AppendMessage(ctx, "ch1", msg, func(stored model.Message) {
					mu.Lock()
					observed = append(observed, stored.ID)
					mu.Unlock()
				})
				if err != nil {
					t.Errorf("AppendMessage() failed: %v", err)
				}
			}()
		}
		wg.Wait()

		msgs, err := g.ReadMessages(ctx, "ch1")
		if err != nil {
			t.Fatalf("ReadMessages() failed: %v", err)
		}
		if len(msgs) != writers || len(observed) != writers {
			t.Fatalf("got %d stored and %d observed, want %d", len(msgs), len(observed), writers)
		}
		for i := range msgs {
			if msgs[i].ID != observed[i] {
				t.Fatalf("position %d: log has %q, hook saw %q", i, msgs[i].ID, observed[i])
			}
		}
	})
}

func TestUpdateUsersIsAtomic(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g *Gateway) {
		ctx := context.Background()

		if err := g.WriteUsers(ctx, []model.User{{ID: "usera", Email: "a@example.com"}}); err != nil {
			t.Fatalf("WriteUsers() failed: %v", err)
		}

		const writers = 10
		var wg sync.WaitGroup
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := g.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
					users[0].AddFriend(fmt.Sprintf("user%d", i))
					return users, nil
				})
				if err != nil {
					t.Errorf("UpdateUsers() failed: %v", err)
				}
			}()
		}
		wg.Wait()

		users, err := g.ReadUsers(ctx)
		if err != nil {
			t.Fatalf("ReadUsers() failed: %v", err)
		}
		if got := len(users[0].Friends); got != writers {
			t.Errorf("friends = %d, want %d (lost update)", got, writers)
		}
	})
}

func TestUpdateUsersAbortsOnError(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g *Gateway) {
		ctx := context.Background()
		hookRan := false
		sentinel := errors.New("abort")

		err := g.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
			return append(users, model.User{ID: "userx", Email: "x@example.com"}), sentinel
		}, func() { hookRan = true })

		if !errors.Is(err, sentinel) {
			t.Fatalf("UpdateUsers() error = %v, want sentinel", err)
		}
		if hookRan {
			t.Error("hook ran for an aborted update")
		}

		users, _ := g.ReadUsers(ctx)
		if len(users) != 0 {
			t.Errorf("aborted update was stored: %v", users)
		}
	})
}

func TestDuplicateEmailConflicts(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g *Gateway) {
		err := g.WriteUsers(context.Background(), []model.User{
			{ID: "usera", Email: "same@example.com"},
			{ID: "userb", Email: "same@example.com"},
		})
		if !errors.Is(err, ErrConflict) {
			t.Errorf("WriteUsers() error = %v, want ErrConflict", err)
		}
	})
}

func TestServersRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g *Gateway) {
		ctx := context.Background()
		server := model.Server{
			ID:       "server1",
			Name:     "Test",
			OwnerID:  "usera",
			Roles:    model.DefaultRoles(),
			Channels: []model.Channel{{ID: "ch1", Name: "general", Type: model.ChannelTypeText}},
			Members:  []string{"usera"},
		}

		if err := g.WriteServers(ctx, []model.Server{server}); err != nil {
			t.Fatalf("WriteServers() failed: %v", err)
		}

		servers, err := g.ReadServers(ctx)
		if err != nil {
			t.Fatalf("ReadServers() failed: %v", err)
		}
		if len(servers) != 1 || !servers[0].HasChannel("ch1") || !servers[0].HasMember("usera") {
			t.Errorf("ReadServers() = %+v", servers)
		}
	})
}

func TestEnsureLogIsIdempotent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g *Gateway) {
		ctx := context.Background()

		if err := g.EnsureLog(ctx, "dm_usera_userb"); err != nil {
			t.Fatalf("EnsureLog() failed: %v", err)
		}
		if _, err := g.AppendMessage(ctx, "dm_usera_userb", model.Message{ID: "msg1"}, nil); err != nil {
			t.Fatalf("AppendMessage() failed: %v", err)
		}
		if err := g.EnsureLog(ctx, "dm_usera_userb"); err != nil {
			t.Fatalf("second EnsureLog() failed: %v", err)
		}

		msgs, _ := g.ReadMessages(ctx, "dm_usera_userb")
		if len(msgs) != 1 {
			t.Errorf("EnsureLog() reset an existing log: %v", msgs)
		}
	})
}
