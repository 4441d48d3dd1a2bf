package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/wayfarer/internal/conversation"
)

//go:embed migrations/postgres.sql
var postgresSchema string

// PostgresStore shares conversations across instances through Postgres.
type PostgresStore struct {
	pool      *pgxpool.Pool
	namespace string
}

func NewPostgres(ctx context.Context, databaseURL, namespace string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresStore{pool: pool, namespace: namespace}, nil
}

func (s *PostgresStore) SaveConversation(ctx context.Context, c *conversation.Conversation) error {
	messages, err := json.Marshal(c.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO wayfarer_conversations (namespace, id, title, messages, created_at, updated_at, seq)
		VALUES ($1, $2, $3, $4::jsonb, COALESCE($5, now()), now(), nextval('wayfarer_conversation_seq'))
		ON CONFLICT (namespace, id) DO UPDATE SET
			title = EXCLUDED.title,
			messages = EXCLUDED.messages,
			updated_at = now(),
			seq = nextval('wayfarer_conversation_seq')
		RETURNING created_at, updated_at`,
		s.namespace, c.ID, c.Title, string(messages), nullTime(c),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return nil
}

func nullTime(c *conversation.Conversation) any {
	if c.CreatedAt.IsZero() {
		return nil
	}
	return c.CreatedAt
}

func (s *PostgresStore) GetConversations(ctx context.Context) ([]conversation.Conversation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, messages, created_at, updated_at
		FROM wayfarer_conversations
		WHERE namespace = $1
		ORDER BY seq DESC`,
		s.namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []conversation.Conversation
	for rows.Next() {
		c, err := scanPgConversation(rows)
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

func (s *PostgresStore) GetConversation(ctx context.Context, id string) (*conversation.Conversation, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, title, messages, created_at, updated_at
		FROM wayfarer_conversations
		WHERE namespace = $1 AND id = $2`,
		s.namespace, id,
	)
	c, err := scanPgConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func scanPgConversation(row pgx.Row) (*conversation.Conversation, error) {
	var (
		c        conversation.Conversation
		messages []byte
	)
	if err := row.Scan(&c.ID, &c.Title, &messages, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	if err := json.Unmarshal(messages, &c.Messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, p *Profile) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO wayfarer_profiles (namespace, name, email, phone, home_city, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (namespace) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			home_city = EXCLUDED.home_city,
			updated_at = now()
		RETURNING updated_at`,
		s.namespace, p.Name, p.Email, p.Phone, p.HomeCity,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	err := s.pool.QueryRow(ctx, `
		SELECT name, email, phone, home_city, updated_at
		FROM wayfarer_profiles WHERE namespace = $1`,
		s.namespace,
	).Scan(&p.Name, &p.Email, &p.Phone, &p.HomeCity, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
