package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MikeSquared-Agency/wayfarer/internal/conversation"
)

// SQLiteStore is the local durable store. All rows are scoped to a fixed
// namespace so several installs can share one file.
type SQLiteStore struct {
	db        *sql.DB
	namespace string
}

func NewSQLite(path, namespace string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, namespace: namespace}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			namespace  TEXT NOT NULL,
			id         TEXT NOT NULL,
			title      TEXT NOT NULL,
			messages   TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			seq        INTEGER NOT NULL,
			PRIMARY KEY (namespace, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_recency ON conversations(namespace, seq DESC)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			namespace  TEXT PRIMARY KEY,
			name       TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			home_city  TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL
		)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveConversation(ctx context.Context, c *conversation.Conversation) error {
	messages, err := json.Marshal(c.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Timestamps are stored as unix millis; truncate so the values written
	// back to c match what a reload returns.
	now := time.Now().UTC().Truncate(time.Millisecond)
	created := c.CreatedAt.UTC().Truncate(time.Millisecond)
	if created.IsZero() {
		created = now
	}

	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT created_at FROM conversations WHERE namespace = ? AND id = ?`,
		s.namespace, c.ID,
	).Scan(&existing)
	switch {
	case err == nil:
		created = time.UnixMilli(existing).UTC()
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("lookup conversation: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (namespace, id, title, messages, created_at, updated_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM conversations WHERE namespace = ?))
		ON CONFLICT (namespace, id) DO UPDATE SET
			title = excluded.title,
			messages = excluded.messages,
			updated_at = excluded.updated_at,
			seq = excluded.seq`,
		s.namespace, c.ID, c.Title, string(messages), created.UnixMilli(), now.UnixMilli(), s.namespace,
	)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	c.CreatedAt = created
	c.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) GetConversations(ctx context.Context) ([]conversation.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, messages, created_at, updated_at
		FROM conversations
		WHERE namespace = ?
		ORDER BY seq DESC`,
		s.namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []conversation.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) GetConversation(ctx context.Context, id string) (*conversation.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, messages, created_at, updated_at
		FROM conversations
		WHERE namespace = ? AND id = ?`,
		s.namespace, id,
	)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*conversation.Conversation, error) {
	var (
		c                conversation.Conversation
		messages         string
		created, updated int64
	)
	if err := row.Scan(&c.ID, &c.Title, &messages, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	if err := json.Unmarshal([]byte(messages), &c.Messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	c.CreatedAt = time.UnixMilli(created).UTC()
	c.UpdatedAt = time.UnixMilli(updated).UTC()
	return &c, nil
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, p *Profile) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (namespace, name, email, phone, home_city, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (namespace) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			home_city = excluded.home_city,
			updated_at = excluded.updated_at`,
		s.namespace, p.Name, p.Email, p.Phone, p.HomeCity, now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	p.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context) (*Profile, error) {
	var (
		p       Profile
		updated int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT name, email, phone, home_city, updated_at FROM profiles WHERE namespace = ?`,
		s.namespace,
	).Scan(&p.Name, &p.Email, &p.Phone, &p.HomeCity, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.UpdatedAt = time.UnixMilli(updated).UTC()
	return &p, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
