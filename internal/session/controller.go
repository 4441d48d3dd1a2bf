package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/conversation"
	"github.com/MikeSquared-Agency/wayfarer/internal/hermes"
	"github.com/MikeSquared-Agency/wayfarer/internal/normalize"
	"github.com/MikeSquared-Agency/wayfarer/internal/planner"
	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrBusy            = errors.New("a request is already in flight")
	ErrTooManyWords    = errors.New("message exceeds the word limit")
	ErrResultNotFound  = errors.New("result not found")
	ErrNotEnhanceable  = errors.New("result kind cannot be enhanced")
	ErrNotFinalizable  = errors.New("only itineraries can be finalized")
	ErrCompareFull     = errors.New("compare already holds two results")
	ErrSessionNotFound = errors.New("conversation not found")
)

// MaxCompared is the most cards the compare view holds at once.
const MaxCompared = 2

const (
	DefaultMaxWords        = 1200
	DefaultLoadingInterval = 500 * time.Millisecond
	saveTimeout            = 10 * time.Second

	ConnectionErrorMessage = "Connection error. Please ensure the planning server is reachable."
	NoMessageText          = "Sorry, I didn't get a clear message from the server."
	EnhanceFailedMessage   = "Sorry, I couldn't apply that enhancement. Please try again."
	ClearedMessage         = "✨ All cards have been cleared. You can start fresh with new queries!"
	finalizedSuffix        = " Finalized Trip"
)

// DefaultFollowUps seeds the suggestion chips until the planner sends its own.
var DefaultFollowUps = []string{
	"Tell me more about accommodations",
	"What's the best time to visit?",
	"Show transport options",
	"Suggest local foods",
	"Any nearby attractions?",
}

// LoadingSteps are cycled while a planning query is outstanding.
var LoadingSteps = []string{
	"Translating user language → English",
	"Started planning",
	"Finding the best places",
	"Checking weather",
	"Stitching the plans",
	"Translating back to user language",
	"Perfect plans found!",
}

// Planner is the planning backend.
type Planner interface {
	Chat(ctx context.Context, query string) (*planner.ChatResponse, error)
	EnhancePlan(ctx context.Context, req planner.EnhancePlanRequest) (json.RawMessage, error)
	EnhanceBus(ctx context.Context, req planner.EnhanceBusRequest) (json.RawMessage, error)
}

// Publisher emits lifecycle events. *hermes.Client satisfies it.
type Publisher interface {
	Publish(subject string, data any) error
}

// Saver persists a conversation, writing its timestamps back.
type Saver interface {
	SaveConversation(ctx context.Context, c *conversation.Conversation) error
}

// Options tunes a Controller. Zero values fall back to defaults.
type Options struct {
	MaxWords        int
	LoadingInterval time.Duration
	Now             func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MaxWords <= 0 {
		o.MaxWords = DefaultMaxWords
	}
	if o.LoadingInterval <= 0 {
		o.LoadingInterval = DefaultLoadingInterval
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	return o
}

// Controller drives one conversation. Every planner round-trip, whether a
// send or an enhance, goes through the single busy lane.
type Controller struct {
	planner Planner
	saver   Saver
	events  Publisher
	logger  *slog.Logger
	opts    Options

	busy atomic.Bool

	mu    sync.Mutex
	state State

	saveMu sync.Mutex
}

func NewController(c conversation.Conversation, p Planner, saver Saver, events Publisher, opts Options, logger *slog.Logger) *Controller {
	return &Controller{
		planner: p,
		saver:   saver,
		events:  events,
		logger:  logger.With("conversation_id", c.ID),
		opts:    opts.withDefaults(),
		state:   newState(c.Clone()),
	}
}

// ID returns the conversation id.
func (c *Controller) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Conversation.ID
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Busy reports whether a planner request is outstanding.
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

func (c *Controller) dispatch(a action) {
	c.mu.Lock()
	c.state = reduce(c.state, a)
	c.mu.Unlock()
}

// SendMessage submits one user query and records the reply. Rejected input
// returns a sentinel error without touching the planner. Backend failures are
// recorded as assistant messages and do not produce an error.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.busy.Store(false)

	if words := len(strings.Fields(text)); words > c.opts.MaxWords {
		c.dispatch(setNotice{fmt.Sprintf("Message exceeds %d word limit. Please shorten your message.", c.opts.MaxWords)})
		return ErrTooManyWords
	}

	c.dispatch(acceptQuery{conversation.NewMessage(conversation.RoleUser, text, c.opts.Now())})
	defer c.dispatch(setLoading{false})
	c.persist(ctx)

	if isPlanQuery(text) {
		stop := c.startLoadingSteps()
		defer stop()
	}

	resp, err := c.planner.Chat(ctx, text)
	if err != nil {
		c.logger.Error("planner chat failed", "error", err)
		c.reply(ctx, ConnectionErrorMessage, nil)
		return nil
	}

	c.dispatch(setFollowUps{resp.FollowUpQuestions})
	content, set := interpret(resp)
	c.logger.Info("planner replied", "response_type", resp.ResponseType, "results", resultCount(set))
	c.reply(ctx, content, set)
	return nil
}

// interpret maps a chat response onto the assistant message it produces.
func interpret(resp *planner.ChatResponse) (string, *trip.ResultSet) {
	var res normalize.Result
	switch resp.ResponseType {
	case planner.ResponsePlans:
		if blank(resp.Plans) {
			return chatText(resp), nil
		}
		res = normalize.Itineraries(resp.Plans)
	case planner.ResponseFlights:
		if blank(resp.FlightOptions) {
			return chatText(resp), nil
		}
		res = normalize.Flights(resp.FlightOptions)
	case planner.ResponseBookings:
		if blank(resp.TravelBookings) {
			return chatText(resp), nil
		}
		res = normalize.BusRoutes(resp.TravelBookings)
	case planner.ResponseAccommodation:
		if blank(resp.Accommodation) {
			return chatText(resp), nil
		}
		res = normalize.Accommodations(resp.Accommodation)
	default:
		return chatText(resp), nil
	}

	if res.Empty() {
		return res.Summary, nil
	}
	set := res.Set
	return res.Summary, &set
}

func chatText(resp *planner.ChatResponse) string {
	if msg := strings.TrimSpace(resp.Message); msg != "" {
		return resp.Message
	}
	return NoMessageText
}

func blank(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func resultCount(set *trip.ResultSet) int {
	if set == nil {
		return 0
	}
	return set.Len()
}

func isPlanQuery(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range []string{"plan", "itinerary", "trip"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// startLoadingSteps advances LoadingStep on a ticker, holding on the last
// step. The returned func stops the ticker and waits for it to exit.
func (c *Controller) startLoadingSteps() func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	c.dispatch(setLoadingStep{LoadingSteps[0]})
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(c.opts.LoadingInterval)
		defer ticker.Stop()

		step := 0
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if step < len(LoadingSteps)-1 {
					step++
					c.dispatch(setLoadingStep{LoadingSteps[step]})
				}
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}

// reply appends an assistant message, optionally carrying a result set, and
// persists the conversation.
func (c *Controller) reply(ctx context.Context, content string, set *trip.ResultSet) {
	msg := conversation.NewMessage(conversation.RoleAssistant, content, c.opts.Now())
	if set != nil {
		msg.Attach(*set)
	}
	c.dispatch(appendMessage{msg})
	c.persist(ctx)
}

// persist saves the latest conversation. Saves are serialized so an older
// snapshot never overwrites a newer one. The save outlives a cancelled
// caller so a reply recorded in memory is always written.
func (c *Controller) persist(ctx context.Context) {
	if c.saver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	conv := c.Snapshot().Conversation
	if err := c.saver.SaveConversation(ctx, &conv); err != nil {
		c.logger.Error("failed to save conversation", "error", err)
		return
	}
	c.dispatch(markSaved{createdAt: conv.CreatedAt, updatedAt: conv.UpdatedAt})
	c.publish(hermes.SubjectConversationSaved, hermes.ConversationSaved{
		ConversationID: conv.ID,
		Title:          conv.Title,
		MessageCount:   len(conv.Messages),
		UpdatedAt:      conv.UpdatedAt,
	})
}

func (c *Controller) publish(subject string, data any) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(subject, data); err != nil {
		c.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

// ToggleLike flips the liked mark on ref.
func (c *Controller) ToggleLike(ref Ref) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.hasRef(ref) {
		return ErrResultNotFound
	}
	c.state = reduce(c.state, toggleLike{ref})
	return nil
}

// ToggleCompare flips ref in the compare set, which holds at most two refs.
func (c *Controller) ToggleCompare(ref Ref) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.hasRef(ref) {
		return ErrResultNotFound
	}
	if !contains(c.state.Selection.Compared, ref) && len(c.state.Selection.Compared) >= MaxCompared {
		return ErrCompareFull
	}
	c.state = reduce(c.state, toggleCompare{ref})
	return nil
}

// ClearResults drops every like and compare mark and tells the user.
func (c *Controller) ClearResults(ctx context.Context) {
	c.dispatch(clearSelection{})
	c.reply(ctx, ClearedMessage, nil)
}

// ResetSelection drops the selection without touching the transcript. Used
// when a client switches back to this conversation.
func (c *Controller) ResetSelection() {
	c.dispatch(clearSelection{})
}

// Finalize marks the itinerary at ref as the chosen plan and retitles the
// conversation after it.
func (c *Controller) Finalize(ctx context.Context, ref Ref) (trip.Itinerary, error) {
	snap := c.Snapshot()
	if !snap.hasRef(ref) {
		return trip.Itinerary{}, ErrResultNotFound
	}
	set, _ := snap.resultSet(ref.ResultSetID)
	if set.Kind != trip.KindItinerary {
		return trip.Itinerary{}, ErrNotFinalizable
	}
	it := set.Itineraries[ref.Index]

	c.dispatch(retitle{it.Title + finalizedSuffix})
	c.reply(ctx, fmt.Sprintf("✅ Your **%s** has been finalized and saved! The next step is to process bookings. How would you like to proceed?", it.Title), nil)
	c.logger.Info("plan finalized", "title", it.Title)
	c.publish(hermes.SubjectPlanFinalized, hermes.PlanFinalized{
		ConversationID: snap.Conversation.ID,
		ResultSetID:    ref.ResultSetID.String(),
		Index:          ref.Index,
		Title:          it.Title,
	})
	return it, nil
}
