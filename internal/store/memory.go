package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/conversation"
)

type memoryEntry struct {
	conv conversation.Conversation
	seq  int64
}

// MemoryStore keeps everything in process. Used by tests and STORE_DRIVER=memory.
type MemoryStore struct {
	mu            sync.RWMutex
	seq           int64
	conversations map[string]memoryEntry
	profile       *Profile
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) SaveConversation(ctx context.Context, c *conversation.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := s.conversations[c.ID]; ok {
		c.CreatedAt = existing.conv.CreatedAt
	} else if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	s.seq++
	s.conversations[c.ID] = memoryEntry{conv: c.Clone(), seq: s.seq}
	return nil
}

func (s *MemoryStore) GetConversations(ctx context.Context) ([]conversation.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]memoryEntry, 0, len(s.conversations))
	for _, e := range s.conversations {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq > entries[j].seq })

	out := make([]conversation.Conversation, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.conv.Clone())
	}
	return out, nil
}

func (s *MemoryStore) GetConversation(ctx context.Context, id string) (*conversation.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := e.conv.Clone()
	return &c, nil
}

func (s *MemoryStore) SaveProfile(ctx context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.UpdatedAt = time.Now().UTC()
	cp := *p
	s.profile = &cp
	return nil
}

func (s *MemoryStore) GetProfile(ctx context.Context) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.profile == nil {
		return nil, ErrNotFound
	}
	cp := *s.profile
	return &cp, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
