package session

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/conversation"
	"github.com/MikeSquared-Agency/wayfarer/internal/planner"
	"github.com/MikeSquared-Agency/wayfarer/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const threePlansJSON = `[
  {"trip_details": {"itinerary_name": "Jaipur Heritage", "duration_days": 2},
   "optimized_routes": {"Day 1": {"optimized_order": [{"spot_name": "Amber Fort", "lat": 26.98, "long": 75.85}]}}},
  {"trip_details": {"itinerary_name": "Jaipur Markets", "duration_days": 2},
   "optimized_routes": {"Day 1": {"optimized_order": [{"spot_name": "Johari Bazaar"}]}}},
  {"trip_details": {"itinerary_name": "Jaipur Forts", "duration_days": 2},
   "optimized_routes": {"Day 1": {"optimized_order": [{"spot_name": "Nahargarh"}]}}}
]`

const flightsJSON = `[
  {"id": "F1", "carrier": "IndiGo", "flight_number": "6E-1", "duration": "2h 30m", "price_inr": 5000},
  {"id": "F2", "carrier": "Air India", "flight_number": "AI-2", "duration": "1h 45m", "price_inr": 7000}
]`

const busJSON = `{
  "Route A": {"start": "Pune", "destination": "Goa", "BUS 1": {"name": "Neeta", "route": "Pune → Goa"}},
  "Route B": {"start": "Pune", "destination": "Kolhapur", "BUS1": {"name": "MSRTC"}}
}`

const staysJSON = `[
  {"Name": "Taj Lake Palace", "Address": "Lake Pichola", "Rating": 4.8},
  {"Name": "Zostel Udaipur", "Address": "Old City", "Rating": 4.1}
]`

// fakePlanner answers from the configured funcs and counts every call.
type fakePlanner struct {
	mu    sync.Mutex
	calls int

	queries  []string
	planReqs []planner.EnhancePlanRequest
	busReqs  []planner.EnhanceBusRequest

	chat        func(ctx context.Context, query string) (*planner.ChatResponse, error)
	enhancePlan func(ctx context.Context, req planner.EnhancePlanRequest) (json.RawMessage, error)
	enhanceBus  func(ctx context.Context, req planner.EnhanceBusRequest) (json.RawMessage, error)
}

func (f *fakePlanner) Chat(ctx context.Context, query string) (*planner.ChatResponse, error) {
	f.mu.Lock()
	f.calls++
	f.queries = append(f.queries, query)
	fn := f.chat
	f.mu.Unlock()
	return fn(ctx, query)
}

func (f *fakePlanner) EnhancePlan(ctx context.Context, req planner.EnhancePlanRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls++
	f.planReqs = append(f.planReqs, req)
	fn := f.enhancePlan
	f.mu.Unlock()
	return fn(ctx, req)
}

func (f *fakePlanner) EnhanceBus(ctx context.Context, req planner.EnhanceBusRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls++
	f.busReqs = append(f.busReqs, req)
	fn := f.enhanceBus
	f.mu.Unlock()
	return fn(ctx, req)
}

func (f *fakePlanner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func replyWith(resp planner.ChatResponse) func(context.Context, string) (*planner.ChatResponse, error) {
	return func(context.Context, string) (*planner.ChatResponse, error) {
		r := resp
		return &r, nil
	}
}

type published struct {
	subject string
	data    any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(subject string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{subject, data})
	return nil
}

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.subject)
	}
	return out
}

type harness struct {
	ctrl    *Controller
	planner *fakePlanner
	store   *store.MemoryStore
	events  *recordingPublisher
}

func newHarness(t *testing.T, fp *fakePlanner, opts Options) *harness {
	t.Helper()
	st := store.NewMemory()
	pub := &recordingPublisher{}
	conv := conversation.New("42", time.Now().UTC())
	return &harness{
		ctrl:    NewController(*conv, fp, st, pub, opts, discardLogger()),
		planner: fp,
		store:   st,
		events:  pub,
	}
}

// seed sends query and returns the result set attached to the reply.
func (h *harness) seed(t *testing.T, resp planner.ChatResponse) Ref {
	t.Helper()
	prev := h.planner.chat
	h.planner.chat = replyWith(resp)
	defer func() { h.planner.chat = prev }()

	if err := h.ctrl.SendMessage(context.Background(), "show me options"); err != nil {
		t.Fatalf("seed SendMessage: %v", err)
	}
	msgs := h.ctrl.Snapshot().Conversation.Messages
	last := msgs[len(msgs)-1]
	if last.Results == nil {
		t.Fatalf("seed reply carried no results: %q", last.Content)
	}
	return Ref{ResultSetID: last.Results.ID}
}

func lastMessage(s State) conversation.Message {
	return s.Conversation.Messages[len(s.Conversation.Messages)-1]
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
