package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/MikeSquared-Agency/wayfarer/internal/planner"
	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

const enhancedShortDesc = "Enhanced Custom Trip Plan"

var (
	// ErrNoEnhancement means the reply carried nothing usable.
	ErrNoEnhancement = errors.New("enhancement reply carried no result")
	// ErrCardIndexMismatch means the reply was produced for a different card.
	ErrCardIndexMismatch = errors.New("enhancement reply is for a different card")
)

// PlanDetails re-encodes an itinerary in the shape /api/enhance expects.
// Itineraries without planner trip details get synthesized ones starting
// today.
func PlanDetails(it trip.Itinerary, now time.Time) planner.PlanPayload {
	p := planner.PlanPayload{
		OptimizedRoutes: make(map[string]planner.DayPayload, len(it.Days)),
		Itinerary:       make(map[string][]planner.SpotPayload, len(it.Days)),
	}

	if d := it.Details; d != nil {
		p.TripDetails = &planner.TripDetailsPayload{
			TripName:      d.TripName,
			ItineraryName: d.ItineraryName,
			StartDate:     d.StartDate,
			EndDate:       d.EndDate,
			DurationDays:  planner.Int(d.DurationDays),
			Destination:   d.Destination,
		}
	} else {
		days := it.DurationDays
		if days < 1 {
			days = 1
		}
		p.TripDetails = &planner.TripDetailsPayload{
			TripName:      orDefault(it.ShortDescription, it.Title),
			ItineraryName: it.Title,
			StartDate:     now.Format(time.DateOnly),
			EndDate:       now.AddDate(0, 0, days).Format(time.DateOnly),
			DurationDays:  planner.Int(days),
			Destination:   it.Title,
		}
	}

	if h := it.Hotel; h != nil {
		p.Hotel = &planner.HotelPayload{
			Name:    h.Name,
			Lat:     planner.Float(h.Lat),
			Lng:     planner.Float(h.Lng),
			Rating:  planner.Float(h.Rating),
			Types:   h.Types,
			OpenNow: h.OpenNow,
		}
	}

	for _, d := range it.Days {
		spots := make([]planner.SpotPayload, 0, len(d.Stops))
		for _, s := range d.Stops {
			spots = append(spots, planner.SpotPayload{
				SpotName:           s.Name,
				Lat:                planner.Float(s.Lat),
				Long:               planner.Float(s.Lng),
				Description:        s.Description,
				EstimatedTimeSpent: s.DwellTime,
				Weather:            s.Weather,
			})
		}
		p.OptimizedRoutes[d.Label] = planner.DayPayload{OptimizedOrder: spots, Polyline: d.Polyline}
		p.Itinerary[d.Label] = spots
	}
	return p
}

// EnhancedItinerary decodes an /api/enhance reply into a replacement for
// previous. The reply may be one plan or a list; the plan whose card_index
// matches index is preferred.
func EnhancedItinerary(raw json.RawMessage, index int, previous trip.Itinerary) (trip.Itinerary, error) {
	plan, err := pickPlan(raw, index)
	if err != nil {
		return previous, err
	}

	var days []trip.DayRoute
	switch {
	case len(plan.Itinerary) > 0:
		days = daysFromSpotMap(plan.Itinerary)
	case len(plan.OptimizedRoutes) > 0:
		days = daysFromRoutes(plan.OptimizedRoutes)
	default:
		days = previous.Days
	}

	out := trip.Itinerary{
		Title:            previous.Title,
		Budget:           orDefault(previous.Budget, defaultBudget),
		ShortDescription: enhancedShortDesc,
		Highlights:       highlights(days),
		Days:             days,
		DurationDays:     len(days),
		Details:          previous.Details,
		Hotel:            previous.Hotel,
	}
	if len(out.Highlights) == 0 {
		out.Highlights = previous.Highlights
	}
	if out.DurationDays == 0 {
		out.DurationDays = previous.DurationDays
	}
	if d := plan.TripDetails; d != nil {
		out.Details = detailsFromPayload(d)
		if d.ItineraryName != "" {
			out.Title = d.ItineraryName
		}
		if d.TripName != "" {
			out.ShortDescription = d.TripName
		}
		if d.DurationDays > 0 {
			out.DurationDays = int(d.DurationDays)
		}
	}
	if h := hotelFromPayload(plan.Hotel); h != nil {
		out.Hotel = h
	}
	out.Duration = durationLabel(out.DurationDays)
	return out, nil
}

func pickPlan(raw json.RawMessage, index int) (planner.PlanPayload, error) {
	if isBlank(raw) {
		return planner.PlanPayload{}, ErrNoEnhancement
	}

	var plans []planner.PlanPayload
	if err := json.Unmarshal(raw, &plans); err != nil {
		var single planner.PlanPayload
		if err := json.Unmarshal(raw, &single); err != nil {
			return planner.PlanPayload{}, fmt.Errorf("decode enhanced plan: %w", err)
		}
		plans = []planner.PlanPayload{single}
	}
	if len(plans) == 0 {
		return planner.PlanPayload{}, ErrNoEnhancement
	}

	chosen := plans[0]
	for _, p := range plans {
		if p.CardIndex != nil && *p.CardIndex == index {
			chosen = p
			break
		}
	}
	if chosen.CardIndex != nil && *chosen.CardIndex != index {
		return planner.PlanPayload{}, fmt.Errorf("%w: got %d, want %d", ErrCardIndexMismatch, *chosen.CardIndex, index)
	}
	if chosen.TripDetails == nil && chosen.Hotel == nil && len(chosen.Itinerary) == 0 && len(chosen.OptimizedRoutes) == 0 {
		return planner.PlanPayload{}, ErrNoEnhancement
	}
	return chosen, nil
}

// EnhancedBusRoute decodes an /api/enhance-bus reply. enhanced_bus_data may
// be a single route or an object keyed by route name.
func EnhancedBusRoute(raw json.RawMessage, index int, previous trip.BusRoute) (trip.BusRoute, error) {
	if !gjson.ValidBytes(raw) {
		return previous, ErrNoEnhancement
	}
	data := gjson.GetBytes(raw, "enhanced_bus_data")
	if !data.Exists() {
		return previous, ErrNoEnhancement
	}
	doc, err := parseObject([]byte(data.Raw))
	if err != nil {
		return previous, ErrNoEnhancement
	}

	route := doc
	if !looksLikeRoute(doc) {
		var candidates []gjson.Result
		doc.ForEach(func(_, value gjson.Result) bool {
			if value.IsObject() {
				candidates = append(candidates, value)
			}
			return true
		})
		if len(candidates) == 0 {
			return previous, ErrNoEnhancement
		}
		route = candidates[0]
		for _, c := range candidates {
			if ci := c.Get("card_index"); ci.Exists() && int(ci.Int()) == index {
				route = c
				break
			}
		}
	}

	if ci := route.Get("card_index"); ci.Exists() && int(ci.Int()) != index {
		return previous, fmt.Errorf("%w: got %d, want %d", ErrCardIndexMismatch, ci.Int(), index)
	}

	var p planner.BusRoutePayload
	if err := json.Unmarshal([]byte(route.Raw), &p); err != nil {
		return previous, fmt.Errorf("decode enhanced bus route: %w", err)
	}
	return busRouteFromPayload(p, previous.RouteNo), nil
}

func looksLikeRoute(doc gjson.Result) bool {
	for _, k := range []string{"start", "destination", "type", "time_for_trip"} {
		if doc.Get(k).Exists() {
			return true
		}
	}
	for _, k := range []string{"BUS 1", "BUS1", "BUS 2", "BUS2"} {
		if doc.Get(k).Exists() {
			return true
		}
	}
	return false
}
