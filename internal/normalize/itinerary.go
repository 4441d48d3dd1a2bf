package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/wayfarer/internal/planner"
	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

const (
	dayPrefix        = "Day "
	maxHighlights    = 4
	defaultBudget    = "Custom"
	defaultShortDesc = "Generated Custom Trip Plan"
)

// Itineraries normalizes the plans payload. Plans whose optimized_routes is
// absent or null are dropped; an empty object still counts as present.
// Survivors keep their relative order.
func Itineraries(raw json.RawMessage) Result {
	if isBlank(raw) {
		return emptyResult(trip.KindItinerary, "Sorry, the planner didn't return any itinerary plans.")
	}

	var plans []planner.PlanPayload
	if err := json.Unmarshal(raw, &plans); err != nil {
		return emptyResult(trip.KindItinerary, "Sorry, I couldn't read the itinerary plans from the server.")
	}

	out := make([]trip.Itinerary, 0, len(plans))
	for _, p := range plans {
		if p.OptimizedRoutes == nil {
			continue
		}
		out = append(out, itineraryFromPlan(p, len(out)))
	}

	if len(out) == 0 {
		return emptyResult(trip.KindItinerary, "Sorry, none of the returned plans included a route I could show.")
	}
	return Result{
		Set:     trip.ResultSet{Kind: trip.KindItinerary, Itineraries: out},
		Summary: fmt.Sprintf("📋 Here are %d itinerary options for you:", len(out)),
	}
}

func itineraryFromPlan(p planner.PlanPayload, position int) trip.Itinerary {
	days := daysFromRoutes(p.OptimizedRoutes)

	it := trip.Itinerary{
		Title:            fmt.Sprintf("Plan %d: Trip", position+1),
		Budget:           defaultBudget,
		ShortDescription: defaultShortDesc,
		Highlights:       highlights(days),
		Days:             days,
		DurationDays:     len(days),
		Hotel:            hotelFromPayload(p.Hotel),
	}

	if d := p.TripDetails; d != nil {
		it.Details = detailsFromPayload(d)
		if d.ItineraryName != "" {
			it.Title = d.ItineraryName
		} else if d.Destination != "" {
			it.Title = fmt.Sprintf("Plan %d: %s", position+1, d.Destination)
		}
		if d.TripName != "" {
			it.ShortDescription = d.TripName
		}
		if d.DurationDays > 0 {
			it.DurationDays = int(d.DurationDays)
		}
	}
	it.Duration = durationLabel(it.DurationDays)
	return it
}

func durationLabel(days int) string {
	return fmt.Sprintf("%d Days", days)
}

func daysFromRoutes(routes map[string]planner.DayPayload) []trip.DayRoute {
	days := make([]trip.DayRoute, 0, len(routes))
	for label, route := range routes {
		days = append(days, trip.DayRoute{
			Label:    label,
			Day:      parseDayLabel(label),
			Stops:    stopsFromSpots(route.OptimizedOrder),
			Polyline: route.Polyline,
		})
	}
	sortDays(days)
	return days
}

func daysFromSpotMap(spots map[string][]planner.SpotPayload) []trip.DayRoute {
	days := make([]trip.DayRoute, 0, len(spots))
	for label, list := range spots {
		days = append(days, trip.DayRoute{
			Label: label,
			Day:   parseDayLabel(label),
			Stops: stopsFromSpots(list),
		})
	}
	sortDays(days)
	return days
}

// sortDays orders by parsed day number. Labels that don't parse go last,
// ordered by label.
func sortDays(days []trip.DayRoute) {
	sort.SliceStable(days, func(i, j int) bool {
		a, b := days[i], days[j]
		switch {
		case a.Day > 0 && b.Day > 0:
			if a.Day != b.Day {
				return a.Day < b.Day
			}
			return a.Label < b.Label
		case a.Day > 0:
			return true
		case b.Day > 0:
			return false
		}
		return a.Label < b.Label
	})
}

// parseDayLabel returns N for "Day N", or 0 if the label has no number.
func parseDayLabel(label string) int {
	s := strings.TrimSpace(label)
	s = strings.TrimSpace(strings.TrimPrefix(s, dayPrefix))
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func highlights(days []trip.DayRoute) []string {
	out := make([]string, 0, maxHighlights)
	for _, d := range days {
		if len(out) == maxHighlights {
			break
		}
		if len(d.Stops) > 0 && d.Stops[0].Name != "" {
			out = append(out, d.Label+": "+d.Stops[0].Name)
		} else {
			out = append(out, d.Label)
		}
	}
	return out
}

func stopsFromSpots(spots []planner.SpotPayload) []trip.Stop {
	stops := make([]trip.Stop, 0, len(spots))
	for _, s := range spots {
		stops = append(stops, trip.Stop{
			Name:        s.SpotName,
			Lat:         float64(s.Lat),
			Lng:         float64(s.Long),
			Description: s.Description,
			DwellTime:   s.EstimatedTimeSpent,
			Weather:     s.Weather,
		})
	}
	return stops
}

func detailsFromPayload(d *planner.TripDetailsPayload) *trip.TripDetails {
	if d == nil {
		return nil
	}
	return &trip.TripDetails{
		TripName:      d.TripName,
		ItineraryName: d.ItineraryName,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
		DurationDays:  int(d.DurationDays),
		Destination:   d.Destination,
	}
}

func hotelFromPayload(h *planner.HotelPayload) *trip.Hotel {
	if h == nil || h.Name == "" {
		return nil
	}
	return &trip.Hotel{
		Name:    h.Name,
		Lat:     float64(h.Lat),
		Lng:     float64(h.Lng),
		Rating:  float64(h.Rating),
		Types:   h.Types,
		OpenNow: h.OpenNow,
	}
}
