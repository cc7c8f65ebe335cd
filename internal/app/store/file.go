package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"guildchat/internal/app/model"
)

const (
	usersFile    = "users.json"
	serversFile  = "servers.json"
	messagesFile = "messages.json"
)

// FileBackend keeps each collection in a JSON document under a data directory:
// users.json and servers.json hold arrays, messages.json maps channel ids to logs.
type FileBackend struct {
	dir string
}

// NewFileBackend creates dir and the empty collection files that are missing.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	b := &FileBackend{dir: dir}

	initial := map[string]any{
		usersFile:    []model.User{},
		serversFile:  []model.Server{},
		messagesFile: map[string][]model.Message{},
	}

	for name, empty := range initial {
		_, err := os.Stat(b.path(name))
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		if err := b.write(name, empty); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, name)
}

func (b *FileBackend) read(name string, dst any) error {
	data, err := os.ReadFile(b.path(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// write replaces the file through a rename so readers never observe a partial document.
func (b *FileBackend) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(b.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), b.path(name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

func (b *FileBackend) LoadUsers(_ context.Context) ([]model.User, error) {
	var users []model.User
	if err := b.read(usersFile, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (b *FileBackend) SaveUsers(_ context.Context, users []model.User) error {
	seen := make(map[string]struct{}, len(users))
	for _, u := range users {
		if _, dup := seen[u.Email]; dup {
			return fmt.Errorf("email %q: %w", u.Email, ErrConflict)
		}
		seen[u.Email] = struct{}{}
	}

	if users == nil {
		users = []model.User{}
	}
	return b.write(usersFile, users)
}

func (b *FileBackend) LoadServers(_ context.Context) ([]model.Server, error) {
	var servers []model.Server
	if err := b.read(serversFile, &servers); err != nil {
		return nil, err
	}
	return servers, nil
}

func (b *FileBackend) SaveServers(_ context.Context, servers []model.Server) error {
	if servers == nil {
		servers = []model.Server{}
	}
	return b.write(serversFile, servers)
}

func (b *FileBackend) loadLogs() (map[string][]model.Message, error) {
	logs := map[string][]model.Message{}
	if err := b.read(messagesFile, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (b *FileBackend) LoadMessages(_ context.Context, channelID string) ([]model.Message, bool, error) {
	logs, err := b.loadLogs()
	if err != nil {
		return nil, false, err
	}

	msgs, ok := logs[channelID]
	return msgs, ok, nil
}

func (b *FileBackend) EnsureLog(_ context.Context, channelID string) error {
	logs, err := b.loadLogs()
	if err != nil {
		return err
	}

	if _, ok := logs[channelID]; ok {
		return nil
	}

	logs[channelID] = []model.Message{}
	return b.write(messagesFile, logs)
}

func (b *FileBackend) AppendMessage(_ context.Context, channelID string, msg model.Message) error {
	logs, err := b.loadLogs()
	if err != nil {
		return err
	}

	msgs, ok := logs[channelID]
	if !ok {
		return fmt.Errorf("message log %q: %w", channelID, ErrNotFound)
	}

	logs[channelID] = append(msgs, msg)
	return b.write(messagesFile, logs)
}

// Close is a no-op; every write is already flushed.
func (b *FileBackend) Close() error {
	return nil
}
