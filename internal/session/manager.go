package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/conversation"
	"github.com/MikeSquared-Agency/wayfarer/internal/ids"
	"github.com/MikeSquared-Agency/wayfarer/internal/store"
)

// DefaultRecent is how many conversations the sidebar lists.
const DefaultRecent = 3

// ConversationStore is the slice of store.Store the manager needs.
type ConversationStore interface {
	Saver
	GetConversations(ctx context.Context) ([]conversation.Conversation, error)
	GetConversation(ctx context.Context, id string) (*conversation.Conversation, error)
}

// Manager owns one Controller per open conversation.
type Manager struct {
	store   ConversationStore
	planner Planner
	events  Publisher
	opts    Options
	recent  int
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Controller
}

func NewManager(st ConversationStore, p Planner, events Publisher, opts Options, recent int, logger *slog.Logger) *Manager {
	if recent <= 0 {
		recent = DefaultRecent
	}
	return &Manager{
		store:    st,
		planner:  p,
		events:   events,
		opts:     opts,
		recent:   recent,
		logger:   logger,
		sessions: make(map[string]*Controller),
	}
}

// Create starts an empty conversation. It is persisted with its first message.
func (m *Manager) Create() *Controller {
	conv := conversation.New(ids.NewString(), m.now())
	ctrl := NewController(*conv, m.planner, m.store, m.events, m.opts, m.logger)

	m.mu.Lock()
	m.sessions[conv.ID] = ctrl
	m.mu.Unlock()

	m.logger.Info("conversation created", "conversation_id", conv.ID)
	return ctrl
}

// Get returns the controller for id, loading the conversation from the store
// with a fresh selection when it is not open yet.
func (m *Manager) Get(ctx context.Context, id string) (*Controller, error) {
	m.mu.Lock()
	ctrl, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		return ctrl, nil
	}

	conv, err := m.store.GetConversation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have loaded it meanwhile.
	if ctrl, ok := m.sessions[id]; ok {
		return ctrl, nil
	}
	ctrl = NewController(*conv, m.planner, m.store, m.events, m.opts, m.logger)
	m.sessions[id] = ctrl
	return ctrl, nil
}

// Open switches to id. The selection is reset, the transcript is kept.
func (m *Manager) Open(ctx context.Context, id string) (*Controller, error) {
	ctrl, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ctrl.ResetSelection()
	return ctrl, nil
}

// Recent lists stored conversations newest first, capped at n. A
// non-positive n uses the configured default.
func (m *Manager) Recent(ctx context.Context, n int) ([]conversation.Conversation, error) {
	if n <= 0 {
		n = m.recent
	}
	all, err := m.store.GetConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (m *Manager) now() time.Time {
	return m.opts.withDefaults().Now()
}
