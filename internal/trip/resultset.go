package trip

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrIndexOutOfRange is returned when a result index does not exist in a set.
var ErrIndexOutOfRange = errors.New("result index out of range")

// ResultSet is the tagged union of results attached to an assistant message.
// Only the slice matching Kind is populated. MessageID points back at the
// owning message so results can be targeted without scanning the transcript.
type ResultSet struct {
	ID             uuid.UUID       `json:"id"`
	MessageID      uuid.UUID       `json:"message_id"`
	Kind           Kind            `json:"kind"`
	Itineraries    []Itinerary     `json:"itineraries,omitempty"`
	Flights        []Flight        `json:"flights,omitempty"`
	BusRoutes      []BusRoute      `json:"bus_routes,omitempty"`
	Accommodations []Accommodation `json:"accommodations,omitempty"`
}

// Len returns the number of results of the set's kind.
func (r ResultSet) Len() int {
	switch r.Kind {
	case KindItinerary:
		return len(r.Itineraries)
	case KindFlight:
		return len(r.Flights)
	case KindBus:
		return len(r.BusRoutes)
	case KindAccommodation:
		return len(r.Accommodations)
	}
	return 0
}

// Label returns a human name for the result at index i, or "" if there is none.
func (r ResultSet) Label(i int) string {
	if i < 0 || i >= r.Len() {
		return ""
	}
	switch r.Kind {
	case KindItinerary:
		return r.Itineraries[i].Title
	case KindFlight:
		f := r.Flights[i]
		return f.Carrier + " " + f.FlightNumber
	case KindBus:
		return r.BusRoutes[i].Name
	case KindAccommodation:
		return r.Accommodations[i].Name
	}
	return ""
}

// Clone returns a deep copy of r.
func (r ResultSet) Clone() ResultSet {
	out := r
	out.Itineraries = cloneEach(r.Itineraries, Itinerary.Clone)
	out.Flights = cloneSlice(r.Flights)
	out.BusRoutes = cloneEach(r.BusRoutes, BusRoute.Clone)
	out.Accommodations = cloneSlice(r.Accommodations)
	return out
}

// Clone returns a deep copy of it.
func (it Itinerary) Clone() Itinerary {
	out := it
	out.Highlights = cloneSlice(it.Highlights)
	out.Days = cloneEach(it.Days, DayRoute.Clone)
	if it.Details != nil {
		d := *it.Details
		out.Details = &d
	}
	if it.Hotel != nil {
		h := *it.Hotel
		h.Types = cloneSlice(it.Hotel.Types)
		out.Hotel = &h
	}
	return out
}

func (d DayRoute) Clone() DayRoute {
	d.Stops = cloneSlice(d.Stops)
	return d
}

func (b BusRoute) Clone() BusRoute {
	b.Legs = cloneSlice(b.Legs)
	return b
}

// cloneSlice copies s, keeping nil as nil.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func cloneEach[T any](s []T, clone func(T) T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	for i, v := range s {
		out[i] = clone(v)
	}
	return out
}

// WithItinerary returns a copy of r with only index i replaced.
func (r ResultSet) WithItinerary(i int, it Itinerary) (ResultSet, error) {
	if r.Kind != KindItinerary {
		return r, fmt.Errorf("replace itinerary in %s set", r.Kind)
	}
	items, err := replaceAt(r.Itineraries, i, it)
	if err != nil {
		return r, err
	}
	out := r.Clone()
	out.Itineraries = items
	return out, nil
}

// WithBusRoute returns a copy of r with only index i replaced.
func (r ResultSet) WithBusRoute(i int, route BusRoute) (ResultSet, error) {
	if r.Kind != KindBus {
		return r, fmt.Errorf("replace bus route in %s set", r.Kind)
	}
	items, err := replaceAt(r.BusRoutes, i, route)
	if err != nil {
		return r, err
	}
	out := r.Clone()
	out.BusRoutes = items
	return out, nil
}

// WithAccommodation returns a copy of r with only index i replaced.
func (r ResultSet) WithAccommodation(i int, a Accommodation) (ResultSet, error) {
	if r.Kind != KindAccommodation {
		return r, fmt.Errorf("replace accommodation in %s set", r.Kind)
	}
	items, err := replaceAt(r.Accommodations, i, a)
	if err != nil {
		return r, err
	}
	out := r.Clone()
	out.Accommodations = items
	return out, nil
}

func replaceAt[T any](items []T, i int, v T) ([]T, error) {
	if i < 0 || i >= len(items) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(items))
	}
	out := make([]T, len(items))
	copy(out, items)
	out[i] = v
	return out, nil
}
