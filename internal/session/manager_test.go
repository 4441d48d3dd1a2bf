package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/MikeSquared-Agency/wayfarer/internal/planner"
	"github.com/MikeSquared-Agency/wayfarer/internal/store"
)

func newManager(t *testing.T, fp *fakePlanner) (*Manager, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemory()
	return NewManager(st, fp, nil, Options{}, 0, discardLogger()), st
}

func TestManager_CreateAndGet(t *testing.T) {
	fp := &fakePlanner{chat: replyWith(planner.ChatResponse{ResponseType: planner.ResponseChat, Message: "Hello"})}
	m, _ := newManager(t, fp)
	ctx := context.Background()

	ctrl := m.Create()
	if ctrl.ID() == "" {
		t.Fatal("expected a conversation id")
	}
	got, err := m.Get(ctx, ctrl.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != ctrl {
		t.Error("expected the open controller to be reused")
	}

	if _, err := m.Get(ctx, "does-not-exist"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ReloadFromStore(t *testing.T) {
	fp := &fakePlanner{chat: replyWith(planner.ChatResponse{ResponseType: planner.ResponsePlans, Plans: json.RawMessage(threePlansJSON)})}
	m, st := newManager(t, fp)
	ctx := context.Background()

	ctrl := m.Create()
	if err := ctrl.SendMessage(ctx, "Plan Jaipur"); err != nil {
		t.Fatal(err)
	}
	set := lastMessage(ctrl.Snapshot()).Results
	if err := ctrl.ToggleLike(Ref{set.ID, 0}); err != nil {
		t.Fatal(err)
	}

	// A fresh manager over the same store simulates a restart.
	m2 := NewManager(st, fp, nil, Options{}, 0, discardLogger())
	reloaded, err := m2.Get(ctx, ctrl.ID())
	if err != nil {
		t.Fatalf("Get after restart: %v", err)
	}
	s := reloaded.Snapshot()
	if s.Conversation.ID != ctrl.ID() || len(s.Conversation.Messages) != 2 {
		t.Errorf("unexpected reloaded conversation %+v", s.Conversation)
	}
	if len(s.Selection.Liked) != 0 {
		t.Error("selection must not survive a reload")
	}
	if err := reloaded.ToggleLike(Ref{set.ID, 0}); err != nil {
		t.Errorf("result set ids should survive a reload: %v", err)
	}
}

func TestManager_OpenResetsSelection(t *testing.T) {
	fp := &fakePlanner{chat: replyWith(planner.ChatResponse{ResponseType: planner.ResponseFlights, FlightOptions: json.RawMessage(flightsJSON)})}
	m, _ := newManager(t, fp)
	ctx := context.Background()

	ctrl := m.Create()
	if err := ctrl.SendMessage(ctx, "flights to Goa"); err != nil {
		t.Fatal(err)
	}
	set := lastMessage(ctrl.Snapshot()).Results
	ctrl.ToggleCompare(Ref{set.ID, 0})

	opened, err := m.Open(ctx, ctrl.ID())
	if err != nil {
		t.Fatal(err)
	}
	s := opened.Snapshot()
	if len(s.Selection.Compared) != 0 {
		t.Error("expected compare set reset on open")
	}
	if len(s.Conversation.Messages) != 2 {
		t.Error("transcript should be kept on open")
	}
}

func TestManager_Recent(t *testing.T) {
	fp := &fakePlanner{chat: replyWith(planner.ChatResponse{ResponseType: planner.ResponseChat, Message: "ok"})}
	m, _ := newManager(t, fp)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		ctrl := m.Create()
		if err := ctrl.SendMessage(ctx, fmt.Sprintf("question %d", i)); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, ctrl.ID())
	}
	// Never-messaged conversations are not listed.
	m.Create()

	recent, err := m.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != DefaultRecent {
		t.Fatalf("expected %d recent, got %d", DefaultRecent, len(recent))
	}
	if recent[0].ID != ids[4] || recent[2].ID != ids[2] {
		t.Errorf("expected newest first, got %s %s", recent[0].ID, recent[2].ID)
	}

	all, _ := m.Recent(ctx, 10)
	if len(all) != 5 {
		t.Errorf("expected 5 with a larger limit, got %d", len(all))
	}
}
