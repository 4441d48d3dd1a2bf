package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/wayfarer/internal/hermes"
	"github.com/MikeSquared-Agency/wayfarer/internal/normalize"
	"github.com/MikeSquared-Agency/wayfarer/internal/planner"
	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

// errTransport marks a planner round-trip that never produced a reply.
var errTransport = errors.New("planner unreachable")

// Enhance asks the planner to revise the card at ref and swaps the revision
// into the owning result set. Only that index changes.
func (c *Controller) Enhance(ctx context.Context, ref Ref, instruction string) error {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return ErrEmptyMessage
	}

	snap := c.Snapshot()
	if !snap.hasRef(ref) {
		return ErrResultNotFound
	}
	set, _ := snap.resultSet(ref.ResultSetID)
	if set.Kind == trip.KindFlight {
		return ErrNotEnhanceable
	}
	if contains(snap.Selection.Enhancing, ref) {
		return ErrBusy
	}

	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.busy.Store(false)

	c.dispatch(beginEnhance{ref})
	defer c.dispatch(endEnhance{ref})

	logger := c.logger.With("result_set_id", ref.ResultSetID, "index", ref.Index, "kind", set.Kind)
	logger.Info("enhancing result")

	var (
		updated trip.ResultSet
		label   string
		noun    string
		err     error
	)
	switch set.Kind {
	case trip.KindItinerary:
		noun = "itinerary"
		updated, label, err = c.enhanceItinerary(ctx, snap, set, ref.Index, instruction)
	case trip.KindBus:
		noun = "bus route"
		updated, label, err = c.enhanceBusRoute(ctx, set, ref.Index, instruction)
	case trip.KindAccommodation:
		noun = "hotel"
		updated, label, err = c.enhanceAccommodation(ctx, set, ref.Index, instruction)
	default:
		return ErrNotEnhanceable
	}

	switch {
	case errors.Is(err, errTransport):
		logger.Error("enhance request failed", "error", err)
		c.reply(ctx, ConnectionErrorMessage, nil)
		return nil
	case err != nil:
		logger.Warn("enhance reply rejected", "error", err)
		c.reply(ctx, EnhanceFailedMessage, nil)
		return nil
	}

	c.dispatch(replaceResults{updated})
	c.reply(ctx, fmt.Sprintf("✨ Your %s \"%s\" has been enhanced with your preferences!", noun, label), nil)
	c.publish(hermes.SubjectResultsEnhanced, hermes.ResultsEnhanced{
		ConversationID: snap.Conversation.ID,
		ResultSetID:    ref.ResultSetID.String(),
		Index:          ref.Index,
		Kind:           string(set.Kind),
		Label:          label,
		Instruction:    instruction,
	})
	return nil
}

func (c *Controller) enhanceItinerary(ctx context.Context, snap State, set trip.ResultSet, index int, instruction string) (trip.ResultSet, string, error) {
	prev := set.Itineraries[index]
	raw, err := c.planner.EnhancePlan(ctx, planner.EnhancePlanRequest{
		PlanDetails: normalize.PlanDetails(prev, c.opts.Now()),
		QueryEN:     snap.Conversation.FirstUserMessage(),
		UserEnhance: instruction,
		CardIndex:   index,
	})
	if err != nil {
		return set, "", fmt.Errorf("%w: %w", errTransport, err)
	}

	it, err := normalize.EnhancedItinerary(raw, index, prev)
	if err != nil {
		return set, "", err
	}
	updated, err := set.WithItinerary(index, it)
	return updated, it.Title, err
}

func (c *Controller) enhanceBusRoute(ctx context.Context, set trip.ResultSet, index int, instruction string) (trip.ResultSet, string, error) {
	prev := set.BusRoutes[index]
	raw, err := c.planner.EnhanceBus(ctx, planner.EnhanceBusRequest{
		RouteDetails: normalize.RouteDetails(prev),
		UserEnhance:  instruction,
		CardIndex:    index,
	})
	if err != nil {
		return set, "", fmt.Errorf("%w: %w", errTransport, err)
	}

	route, err := normalize.EnhancedBusRoute(raw, index, prev)
	if err != nil {
		return set, "", err
	}
	updated, err := set.WithBusRoute(index, route)
	return updated, route.Name, err
}

// enhanceAccommodation has no dedicated endpoint; it asks the chat endpoint
// for alternatives and takes the first one.
func (c *Controller) enhanceAccommodation(ctx context.Context, set trip.ResultSet, index int, instruction string) (trip.ResultSet, string, error) {
	prev := set.Accommodations[index]
	query := fmt.Sprintf("Find better hotel accommodations with these preferences: \"%s\". Current hotel: %s at %s with rating %.1f. Please provide better alternatives.",
		instruction, prev.Name, prev.Address, prev.Rating)

	resp, err := c.planner.Chat(ctx, query)
	if err != nil {
		return set, "", fmt.Errorf("%w: %w", errTransport, err)
	}
	c.dispatch(setFollowUps{resp.FollowUpQuestions})

	res := normalize.Accommodations(resp.Accommodation)
	if res.Empty() {
		return set, "", normalize.ErrNoEnhancement
	}
	stay := res.Set.Accommodations[0]
	updated, err := set.WithAccommodation(index, stay)
	return updated, stay.Name, err
}
