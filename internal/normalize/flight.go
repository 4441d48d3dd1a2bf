package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/MikeSquared-Agency/wayfarer/internal/planner"
	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

var (
	hoursRe   = regexp.MustCompile(`(\d+)h`)
	minutesRe = regexp.MustCompile(`(\d+)m`)
)

// Flights normalizes flight_options, shortest first.
func Flights(raw json.RawMessage) Result {
	if isBlank(raw) {
		return emptyResult(trip.KindFlight, "Sorry, no flights were found for your search.")
	}

	var payload []planner.FlightPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return emptyResult(trip.KindFlight, "Sorry, I couldn't read the flight options from the server.")
	}
	if len(payload) == 0 {
		return emptyResult(trip.KindFlight, "Sorry, no flights were found for your search.")
	}

	flights := make([]trip.Flight, 0, len(payload))
	for _, f := range payload {
		flights = append(flights, trip.Flight{
			ID:              string(f.ID),
			Carrier:         f.Carrier,
			FlightNumber:    string(f.FlightNumber),
			DepartureTime:   f.DepartureTime,
			ArrivalTime:     f.ArrivalTime,
			OriginIATA:      f.OriginIATA,
			DestinationIATA: f.DestinationIATA,
			Duration:        f.Duration,
			PriceINR:        float64(f.PriceINR),
			IsDirect:        f.IsDirect,
		})
	}
	SortFlights(flights)

	return Result{
		Set:     trip.ResultSet{Kind: trip.KindFlight, Flights: flights},
		Summary: fmt.Sprintf("✈️ Here are %d flight options for you:", len(flights)),
	}
}

// SortFlights orders flights by total duration, keeping input order on ties.
func SortFlights(flights []trip.Flight) {
	sort.SliceStable(flights, func(i, j int) bool {
		return DurationMinutes(flights[i].Duration) < DurationMinutes(flights[j].Duration)
	})
}

// DurationMinutes parses "Xh Ym" style durations. A missing part counts as 0.
func DurationMinutes(d string) int {
	return firstInt(hoursRe, d)*60 + firstInt(minutesRe, d)
}

func firstInt(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
