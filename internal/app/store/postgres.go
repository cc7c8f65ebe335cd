package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guildchat/internal/app/db"
	"guildchat/internal/app/model"
)

// PostgresBackend stores collections in PostgreSQL as JSONB documents.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend wraps a pool returned by db.NewPool.
func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

func collectDocs[T any](rows pgx.Rows) ([]T, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		var (
			doc []byte
			v   T
		)
		if err := row.Scan(&doc); err != nil {
			return v, err
		}
		if err := json.Unmarshal(doc, &v); err != nil {
			return v, fmt.Errorf("failed to decode stored record: %w", err)
		}
		return v, nil
	})
}

// replaceAll deletes every row of table and batch-inserts the new rows in a transaction.
func (b *PostgresBackend) replaceAll(ctx context.Context, table, insert string, rows [][]any) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	batch := &pgx.Batch{}
	for _, args := range rows {
		batch.Queue(insert, args...)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w", table, ErrConflict)
		}
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	return tx.Commit(ctx)
}

func (b *PostgresBackend) LoadUsers(ctx context.Context) ([]model.User, error) {
	rows, err := b.pool.Query(ctx, "SELECT doc FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	return collectDocs[model.User](rows)
}

func (b *PostgresBackend) SaveUsers(ctx context.Context, users []model.User) error {
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		doc, err := json.Marshal(u)
		if err != nil {
			return err
		}
		rows = append(rows, []any{u.ID, u.Email, doc})
	}

	return b.replaceAll(ctx, "users", "INSERT INTO users (id, email, doc) VALUES ($1, $2, $3)", rows)
}

func (b *PostgresBackend) LoadServers(ctx context.Context) ([]model.Server, error) {
	rows, err := b.pool.Query(ctx, "SELECT doc FROM servers ORDER BY id")
	if err != nil {
		return nil, err
	}
	return collectDocs[model.Server](rows)
}

func (b *PostgresBackend) SaveServers(ctx context.Context, servers []model.Server) error {
	rows := make([][]any, 0, len(servers))
	for _, s := range servers {
		doc, err := json.Marshal(s)
		if err != nil {
			return err
		}
		rows = append(rows, []any{s.ID, s.OwnerID, doc})
	}

	return b.replaceAll(ctx, "servers", "INSERT INTO servers (id, owner_id, doc) VALUES ($1, $2, $3)", rows)
}

func (b *PostgresBackend) LoadMessages(ctx context.Context, channelID string) ([]model.Message, bool, error) {
	var found string
	err := b.pool.QueryRow(ctx, "SELECT channel_id FROM message_logs WHERE channel_id = $1", channelID).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := b.pool.Query(ctx, "SELECT doc FROM messages WHERE channel_id = $1 ORDER BY seq", channelID)
	if err != nil {
		return nil, false, err
	}

	msgs, err := collectDocs[model.Message](rows)
	if err != nil {
		return nil, false, err
	}
	return msgs, true, nil
}

func (b *PostgresBackend) EnsureLog(ctx context.Context, channelID string) error {
	_, err := b.pool.Exec(ctx,
		"INSERT INTO message_logs (channel_id) VALUES ($1) ON CONFLICT (channel_id) DO NOTHING", channelID)
	return err
}

func (b *PostgresBackend) AppendMessage(ctx context.Context, channelID string, msg model.Message) error {
	doc, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	_, err = b.pool.Exec(ctx,
		"INSERT INTO messages (channel_id, id, doc) VALUES ($1, $2, $3)", channelID, msg.ID, doc)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("message %q: %w", msg.ID, ErrConflict)
	}
	return err
}

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
