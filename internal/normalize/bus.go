package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/MikeSquared-Agency/wayfarer/internal/planner"
	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

const (
	busTypeDirect      = "Direct Bus"
	defaultBusDuration = "8 hours"
	directBusPrice     = "₹450"
	connectingBusPrice = "₹380"
	defaultDeparture   = "08:00 AM"
	defaultArrival     = "04:00 PM"
	unknownDistance    = "N/A"
	firstLegOperator   = "Bus Service"
	secondLegOperator  = "Connecting Bus"
	secondLegFrom      = "Transfer Point"
	secondLegTripTime  = "2 hours"
	routeArrow         = "→"
)

var errNotObject = errors.New("bus payload is not an object")

// BusRoutes normalizes travel_bookings. The payload may be an object keyed
// by route name or a JSON string holding one. Routes keep document order.
// Anything unreadable, or an empty result, yields the sample routes.
func BusRoutes(raw json.RawMessage) Result {
	routes, err := decodeBusRoutes(raw)
	if err != nil || len(routes) == 0 {
		return fallbackResult()
	}
	return Result{
		Set:     trip.ResultSet{Kind: trip.KindBus, BusRoutes: routes},
		Summary: fmt.Sprintf("🚌 Here are %d bus route options for you:", len(routes)),
	}
}

func decodeBusRoutes(raw json.RawMessage) ([]trip.BusRoute, error) {
	doc, err := parseObject(raw)
	if err != nil {
		return nil, err
	}

	var routes []trip.BusRoute
	var decodeErr error
	doc.ForEach(func(_, value gjson.Result) bool {
		if !value.IsObject() {
			return true
		}
		var p planner.BusRoutePayload
		if err := json.Unmarshal([]byte(value.Raw), &p); err != nil {
			decodeErr = fmt.Errorf("decode bus route: %w", err)
			return false
		}
		routes = append(routes, busRouteFromPayload(p, len(routes)+1))
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return routes, nil
}

// parseObject accepts an object or a string containing one.
func parseObject(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, errNotObject
	}
	doc := gjson.ParseBytes(raw)
	if doc.Type == gjson.String {
		inner := doc.String()
		if !gjson.Valid(inner) {
			return gjson.Result{}, errNotObject
		}
		doc = gjson.Parse(inner)
	}
	if !doc.IsObject() {
		return gjson.Result{}, errNotObject
	}
	return doc, nil
}

func busRouteFromPayload(p planner.BusRoutePayload, routeNo int) trip.BusRoute {
	r := trip.BusRoute{
		RouteNo:       routeNo,
		Name:          p.Name,
		Type:          p.Type,
		Start:         p.Start,
		Destination:   p.Destination,
		Distance:      unknownDistance,
		Duration:      p.TimeForTrip,
		DepartureTime: defaultDeparture,
		ArrivalTime:   defaultArrival,
	}
	if r.Type == "" {
		r.Type = busTypeDirect
	}
	if r.Duration == "" {
		r.Duration = defaultBusDuration
	}
	if r.Name == "" {
		r.Name = fmt.Sprintf("%s to %s", p.Start, p.Destination)
	}
	if r.Type == busTypeDirect {
		r.Price = directBusPrice
	} else {
		r.Price = connectingBusPrice
	}

	if l := p.Leg1; l != nil {
		from, to := splitRoute(string(l.Route))
		r.Legs = append(r.Legs, trip.BusLeg{
			Operator: orDefault(string(l.Name), firstLegOperator),
			From:     orDefault(from, p.Start),
			To:       orDefault(to, p.Destination),
			TripTime: orDefault(string(l.BusTripTime), r.Duration),
		})
	} else {
		r.Legs = append(r.Legs, trip.BusLeg{
			Operator: firstLegOperator,
			From:     p.Start,
			To:       p.Destination,
			TripTime: r.Duration,
		})
	}

	if l := p.Leg2; l != nil {
		from, to := splitRoute(string(l.Route))
		r.Legs = append(r.Legs, trip.BusLeg{
			Operator: orDefault(string(l.Name), secondLegOperator),
			From:     orDefault(from, secondLegFrom),
			To:       orDefault(to, p.Destination),
			TripTime: orDefault(string(l.BusTripTime), secondLegTripTime),
		})
	}
	return r
}

// RouteDetails re-encodes a route in the backend's shape.
func RouteDetails(r trip.BusRoute) planner.BusRoutePayload {
	p := planner.BusRoutePayload{
		Name:        r.Name,
		Start:       r.Start,
		Destination: r.Destination,
		Type:        r.Type,
		TimeForTrip: r.Duration,
	}
	if len(r.Legs) > 0 {
		p.Leg1 = legPayload(r.Legs[0])
	}
	if len(r.Legs) > 1 {
		p.Leg2 = legPayload(r.Legs[1])
	}
	return p
}

func legPayload(l trip.BusLeg) *planner.BusLegPayload {
	return &planner.BusLegPayload{
		Name:        planner.Text(l.Operator),
		Route:       planner.Text(l.From + " " + routeArrow + " " + l.To),
		BusTripTime: planner.Text(l.TripTime),
	}
}

func splitRoute(route string) (string, string) {
	from, to, found := strings.Cut(route, routeArrow)
	if !found {
		return strings.TrimSpace(route), ""
	}
	return strings.TrimSpace(from), strings.TrimSpace(to)
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func fallbackResult() Result {
	routes := FallbackBusRoutes()
	return Result{
		Set:      trip.ResultSet{Kind: trip.KindBus, BusRoutes: routes},
		Summary:  fmt.Sprintf("🚌 I couldn't read the bus routes from the server, so here are %d sample routes:", len(routes)),
		Fallback: true,
	}
}

// FallbackBusRoutes returns the fixed sample routes shown when the planner's
// bus data is unusable.
func FallbackBusRoutes() []trip.BusRoute {
	return []trip.BusRoute{
		{
			RouteNo:       1,
			Name:          "Delhi to Mumbai Express",
			Type:          "Connecting Bus",
			Start:         "Delhi",
			Destination:   "Mumbai",
			Distance:      unknownDistance,
			Duration:      "18 hr 30 min",
			Price:         "₹1200",
			DepartureTime: "08:00 PM",
			ArrivalTime:   "02:30 PM",
			Legs: []trip.BusLeg{
				{Operator: "RedBus Express", From: "Delhi ISBT"},
				{Operator: "Volvo AC Sleeper", From: "Gurgaon"},
			},
		},
		{
			RouteNo:       2,
			Name:          "Bangalore to Chennai Route",
			Type:          "Connecting Bus",
			Start:         "Bangalore",
			Destination:   "Chennai",
			Distance:      unknownDistance,
			Duration:      "6 hr 45 min",
			Price:         "₹450",
			DepartureTime: "11:00 PM",
			ArrivalTime:   "05:45 AM",
			Legs: []trip.BusLeg{
				{Operator: "KPN Travels", From: "Bangalore Majestic"},
				{Operator: "SRS Travels", From: "Electronic City"},
			},
		},
		{
			RouteNo:       3,
			Name:          "Pune to Goa Coastal",
			Type:          "Connecting Bus",
			Start:         "Pune",
			Destination:   "Goa",
			Distance:      unknownDistance,
			Duration:      "12 hr 15 min",
			Price:         "₹800",
			DepartureTime: "09:30 PM",
			ArrivalTime:   "09:45 AM",
			Legs: []trip.BusLeg{
				{Operator: "Neeta Travels", From: "Pune Station"},
				{Operator: "Paulo Travels", From: "Shivaji Nagar"},
			},
		},
	}
}
