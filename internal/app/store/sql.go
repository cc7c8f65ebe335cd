package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"guildchat/internal/app/db"
	"guildchat/internal/app/model"
)

// SQLBackend stores collections in SQLite or MySQL through database/sql.
// Records are kept as JSON documents next to the columns their constraints need.
type SQLBackend struct {
	db *sql.DB

	// insertLogIgnore creates a message log row unless it exists.
	insertLogIgnore string
}

// NewSQLBackend wraps an open handle of dialect, see db.OpenSQL.
func NewSQLBackend(sqlDB *sql.DB, dialect string) (*SQLBackend, error) {
	b := &SQLBackend{db: sqlDB}

	switch dialect {
	case db.DialectSQLite:
		b.insertLogIgnore = "INSERT OR IGNORE INTO message_logs (channel_id) VALUES (?)"
	case db.DialectMySQL:
		b.insertLogIgnore = "INSERT IGNORE INTO message_logs (channel_id) VALUES (?)"
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}

	return b, nil
}

func loadDocs[T any](ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}, query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}

		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, fmt.Errorf("failed to decode stored record: %w", err)
		}
		out = append(out, v)
	}

	return out, rows.Err()
}

// replaceAll deletes every row of table and inserts one row per record in a transaction.
func (b *SQLBackend) replaceAll(ctx context.Context, table, insert string, rows [][]any) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for _, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("%s: %w", table, ErrConflict)
			}
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	return tx.Commit()
}

func (b *SQLBackend) LoadUsers(ctx context.Context) ([]model.User, error) {
	return loadDocs[model.User](ctx, b.db, "SELECT doc FROM users ORDER BY id")
}

func (b *SQLBackend) SaveUsers(ctx context.Context, users []model.User) error {
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		doc, err := json.Marshal(u)
		if err != nil {
			return err
		}
		rows = append(rows, []any{u.ID, u.Email, string(doc)})
	}

	return b.replaceAll(ctx, "users", "INSERT INTO users (id, email, doc) VALUES (?, ?, ?)", rows)
}

func (b *SQLBackend) LoadServers(ctx context.Context) ([]model.Server, error) {
	return loadDocs[model.Server](ctx, b.db, "SELECT doc FROM servers ORDER BY id")
}

func (b *SQLBackend) SaveServers(ctx context.Context, servers []model.Server) error {
	rows := make([][]any, 0, len(servers))
	for _, s := range servers {
		doc, err := json.Marshal(s)
		if err != nil {
			return err
		}
		rows = append(rows, []any{s.ID, s.OwnerID, string(doc)})
	}

	return b.replaceAll(ctx, "servers", "INSERT INTO servers (id, owner_id, doc) VALUES (?, ?, ?)", rows)
}

func (b *SQLBackend) LoadMessages(ctx context.Context, channelID string) ([]model.Message, bool, error) {
	var found string
	err := b.db.QueryRowContext(ctx, "SELECT channel_id FROM message_logs WHERE channel_id = ?", channelID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	msgs, err := loadDocs[model.Message](ctx, b.db,
		"SELECT doc FROM messages WHERE channel_id = ? ORDER BY seq", channelID)
	if err != nil {
		return nil, false, err
	}
	return msgs, true, nil
}

func (b *SQLBackend) EnsureLog(ctx context.Context, channelID string) error {
	_, err := b.db.ExecContext(ctx, b.insertLogIgnore, channelID)
	return err
}

func (b *SQLBackend) AppendMessage(ctx context.Context, channelID string, msg model.Message) error {
	doc, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	_, err = b.db.ExecContext(ctx,
		"INSERT INTO messages (channel_id, id, doc) VALUES (?, ?, ?)", channelID, msg.ID, string(doc))
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("message %q: %w", msg.ID, ErrConflict)
	}
	return err
}

func (b *SQLBackend) Close() error {
	return b.db.Close()
}
