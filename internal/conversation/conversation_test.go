package conversation

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

func TestAppend_DerivesTitleFromFirstUserMessage(t *testing.T) {
	now := time.Now().UTC()
	c := New("1", now)
	if c.Title != DefaultTitle {
		t.Fatalf("expected default title, got %q", c.Title)
	}

	c.Append(NewMessage(RoleAssistant, "Hi there", now))
	if c.Title != DefaultTitle {
		t.Errorf("assistant message should not set the title, got %q", c.Title)
	}

	c.Append(NewMessage(RoleUser, "Plan a 3 day trip to Jaipur", now))
	if c.Title != "Plan a 3 day trip to Jaipur" {
		t.Errorf("unexpected title %q", c.Title)
	}

	c.Append(NewMessage(RoleUser, "Also show flights", now))
	if c.Title != "Plan a 3 day trip to Jaipur" {
		t.Errorf("title should stick to the first user message, got %q", c.Title)
	}
}

func TestDeriveTitle_Truncates(t *testing.T) {
	c := New("1", time.Now())
	long := strings.Repeat("é", 80)
	c.Append(NewMessage(RoleUser, long, time.Now()))

	if got := []rune(c.Title); len(got) != 50 {
		t.Errorf("expected 50 runes, got %d", len(got))
	}
}

func TestAttach_SetsForeignKey(t *testing.T) {
	m := NewMessage(RoleAssistant, "Here are 2 flight options for you:", time.Now())
	m.Attach(trip.ResultSet{Kind: trip.KindFlight, Flights: []trip.Flight{{ID: "a"}, {ID: "b"}}})

	if m.Results == nil {
		t.Fatal("expected results to be attached")
	}
	if m.Results.MessageID != m.ID {
		t.Errorf("expected message id %s, got %s", m.ID, m.Results.MessageID)
	}
	if m.Results.ID == uuid.Nil {
		t.Error("expected a result set id")
	}
}

func TestFindAndReplaceResultSet(t *testing.T) {
	c := New("1", time.Now())
	c.Append(NewMessage(RoleUser, "bus to goa", time.Now()))
	m := NewMessage(RoleAssistant, "routes", time.Now())
	m.Attach(trip.ResultSet{Kind: trip.KindBus, BusRoutes: []trip.BusRoute{{Name: "A"}, {Name: "B"}}})
	c.Append(m)

	idx, ok := c.FindResultSet(m.Results.ID)
	if !ok || idx != 1 {
		t.Fatalf("expected result set at message 1, got %d %v", idx, ok)
	}
	if _, ok := c.FindResultSet(uuid.New()); ok {
		t.Error("expected unknown id to be missing")
	}

	updated, err := m.Results.WithBusRoute(1, trip.BusRoute{Name: "B'"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.ReplaceResultSet(updated) {
		t.Fatal("expected replace to find the owning message")
	}
	if got := c.Messages[1].Results.BusRoutes[1].Name; got != "B'" {
		t.Errorf("expected B', got %q", got)
	}
}

func TestClone_DoesNotAlias(t *testing.T) {
	c := New("1", time.Now())
	m := NewMessage(RoleAssistant, "stays", time.Now())
	m.Attach(trip.ResultSet{Kind: trip.KindAccommodation, Accommodations: []trip.Accommodation{{Name: "Taj"}}})
	c.Append(m)

	cp := c.Clone()
	cp.Messages[0].Results.Accommodations[0].Name = "Changed"
	cp.Messages[0].Content = "changed"

	if c.Messages[0].Results.Accommodations[0].Name != "Taj" {
		t.Error("clone aliased result slices")
	}
	if c.Messages[0].Content != "stays" {
		t.Error("clone aliased messages")
	}
}
