package conversation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

// DefaultTitle is used until the first user message arrives.
const DefaultTitle = "New Trip"

const maxTitleRunes = 50

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. Results is set only on assistant messages
// that carried a result set.
type Message struct {
	ID        uuid.UUID       `json:"id"`
	Role      Role            `json:"role"`
	Content   string          `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
	Results   *trip.ResultSet `json:"results,omitempty"`
}

// NewMessage builds a message with a fresh id.
func NewMessage(role Role, content string, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		Timestamp: at,
	}
}

// Attach binds a result set to m, stamping the set with its own id and the
// owning message id.
func (m *Message) Attach(set trip.ResultSet) {
	if set.ID == uuid.Nil {
		set.ID = uuid.New()
	}
	set.MessageID = m.ID
	m.Results = &set
}

// Conversation is an ordered transcript.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New starts an empty conversation.
func New(id string, now time.Time) *Conversation {
	return &Conversation{
		ID:        id,
		Title:     DefaultTitle,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds m to the transcript and derives the title from the first user
// message if the conversation still has the default one.
func (c *Conversation) Append(m Message) {
	c.Messages = append(c.Messages, m)
	if c.Title == "" || c.Title == DefaultTitle {
		c.Title = c.DeriveTitle()
	}
}

// DeriveTitle returns the first user message truncated to 50 characters.
func (c *Conversation) DeriveTitle() string {
	first := strings.TrimSpace(c.FirstUserMessage())
	if first == "" {
		return DefaultTitle
	}
	if utf8.RuneCountInString(first) <= maxTitleRunes {
		return first
	}
	return string([]rune(first)[:maxTitleRunes])
}

// FirstUserMessage returns the content of the earliest user message.
func (c *Conversation) FirstUserMessage() string {
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			return m.Content
		}
	}
	return ""
}

// FindResultSet returns the position of the message owning the result set id.
func (c *Conversation) FindResultSet(id uuid.UUID) (int, bool) {
	for i := range c.Messages {
		if r := c.Messages[i].Results; r != nil && r.ID == id {
			return i, true
		}
	}
	return -1, false
}

// ReplaceResultSet swaps in set for the message that owns it.
func (c *Conversation) ReplaceResultSet(set trip.ResultSet) bool {
	for i := range c.Messages {
		if c.Messages[i].ID == set.MessageID {
			s := set
			c.Messages[i].Results = &s
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices or result sets with c.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	for i, m := range c.Messages {
		if m.Results != nil {
			r := m.Results.Clone()
			m.Results = &r
		}
		out.Messages[i] = m
	}
	return out
}
