package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/conversation"
)

// ErrNotFound is returned when a conversation or profile does not exist.
var ErrNotFound = errors.New("not found")

// Store persists conversations and the user profile for one namespace.
//
// SaveConversation upserts by id. It refreshes UpdatedAt and keeps the
// CreatedAt of the first save; both are written back to c.
// GetConversations lists every conversation, most recently saved first.
type Store interface {
	SaveConversation(ctx context.Context, c *conversation.Conversation) error
	GetConversations(ctx context.Context) ([]conversation.Conversation, error)
	GetConversation(ctx context.Context, id string) (*conversation.Conversation, error)
	SaveProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context) (*Profile, error)
	Close() error
}

// Profile is the traveller record shown in the navigation header.
type Profile struct {
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	HomeCity  string    `json:"home_city,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options selects and configures a Store implementation.
type Options struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
	Namespace   string
}

// Open returns the Store named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return NewSQLite(opts.SQLitePath, opts.Namespace)
	case DriverPostgres:
		if opts.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres store")
		}
		return NewPostgres(ctx, opts.DatabaseURL, opts.Namespace)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
