package planner

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ResponseType discriminates the payload carried by a chat response.
type ResponseType string

const (
	ResponsePlans         ResponseType = "plans"
	ResponseFlights       ResponseType = "flights"
	ResponseBookings      ResponseType = "bookings"
	ResponseAccommodation ResponseType = "acomdation" // spelled as the backend sends it
	ResponseChat          ResponseType = "chat"
	ResponseError         ResponseType = "error"
)

type chatRequest struct {
	Query string `json:"query"`
}

// ChatResponse is the tagged reply from /api/chat. Only the payload field
// matching ResponseType is expected to be set; payloads stay raw so the
// normalizers can degrade on bad shapes instead of failing the whole reply.
type ChatResponse struct {
	ResponseType      ResponseType    `json:"response_type"`
	Message           string          `json:"message"`
	FollowUpQuestions []string        `json:"follow_up_questions,omitempty"`
	Plans             json.RawMessage `json:"plans,omitempty"`
	FlightOptions     json.RawMessage `json:"flight_options,omitempty"`
	TravelBookings    json.RawMessage `json:"travel_bookings,omitempty"`
	Accommodation     json.RawMessage `json:"acomdation,omitempty"`
}

// EnhancePlanRequest is the body for /api/enhance.
type EnhancePlanRequest struct {
	PlanDetails PlanPayload `json:"plan_details"`
	QueryEN     string      `json:"query_en"`
	UserEnhance string      `json:"user_enhance"`
	CardIndex   int         `json:"card_index"`
}

// EnhanceBusRequest is the body for /api/enhance-bus.
type EnhanceBusRequest struct {
	RouteDetails BusRoutePayload `json:"route_details"`
	UserEnhance  string          `json:"user_enhance"`
	CardIndex    int             `json:"card_index"`
}

// PlanPayload is a generated plan as the backend shapes it.
type PlanPayload struct {
	CardIndex       *int                     `json:"card_index,omitempty"`
	TripDetails     *TripDetailsPayload      `json:"trip_details,omitempty"`
	Hotel           *HotelPayload            `json:"hotel,omitempty"`
	OptimizedRoutes map[string]DayPayload    `json:"optimized_routes,omitempty"`
	Itinerary       map[string][]SpotPayload `json:"itinerary,omitempty"`
}

type TripDetailsPayload struct {
	TripName      string `json:"trip_name,omitempty"`
	ItineraryName string `json:"itinerary_name,omitempty"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	DurationDays  Int    `json:"duration_days,omitempty"`
	Destination   string `json:"destination,omitempty"`
}

type HotelPayload struct {
	Name    string   `json:"name"`
	Lat     Float    `json:"lat"`
	Lng     Float    `json:"lng"`
	Rating  Float    `json:"rating,omitempty"`
	Types   []string `json:"types,omitempty"`
	OpenNow bool     `json:"open_now,omitempty"`
}

type DayPayload struct {
	OptimizedOrder []SpotPayload `json:"optimized_order"`
	Polyline       string        `json:"polyline"`
}

// SpotPayload is one stop. The backend has used several spellings for the
// same fields; UnmarshalJSON folds them into the canonical ones.
type SpotPayload struct {
	SpotName           string `json:"spot_name"`
	Lat                Float  `json:"lat"`
	Long               Float  `json:"long"`
	Description        string `json:"description,omitempty"`
	EstimatedTimeSpent string `json:"estimated_time_spent,omitempty"`
	Weather            string `json:"weather,omitempty"`
}

func (s *SpotPayload) UnmarshalJSON(data []byte) error {
	var aux struct {
		SpotName           string `json:"spot_name"`
		Name               string `json:"name"`
		Lat                Float  `json:"lat"`
		Long               *Float `json:"long"`
		Lng                *Float `json:"lng"`
		Lon                *Float `json:"lon"`
		Description        string `json:"description"`
		EstimatedTimeSpent string `json:"estimated_time_spent"`
		Time               string `json:"time"`
		Weather            any    `json:"weather"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = SpotPayload{
		SpotName:           firstNonEmpty(aux.SpotName, aux.Name),
		Lat:                aux.Lat,
		Description:        aux.Description,
		EstimatedTimeSpent: firstNonEmpty(aux.EstimatedTimeSpent, aux.Time),
		Weather:            weatherText(aux.Weather),
	}
	for _, lng := range []*Float{aux.Long, aux.Lng, aux.Lon} {
		if lng != nil {
			s.Long = *lng
			break
		}
	}
	return nil
}

// BusLegPayload is a leg under a "BUS 1"/"BUS1" style key.
type BusLegPayload struct {
	Name        Text `json:"name,omitempty"`
	Route       Text `json:"route,omitempty"` // "A → B"
	BusTripTime Text `json:"bus_trip_time,omitempty"`
}

// BusRoutePayload is one value of the travel_bookings object. Leg keys are
// normalized on decode; encoding always uses the spaced spelling.
type BusRoutePayload struct {
	Name        string         `json:"name,omitempty"`
	Start       string         `json:"start,omitempty"`
	Destination string         `json:"destination,omitempty"`
	Type        string         `json:"type,omitempty"`
	TimeForTrip string         `json:"time_for_trip,omitempty"`
	Leg1        *BusLegPayload `json:"BUS 1,omitempty"`
	Leg2        *BusLegPayload `json:"BUS 2,omitempty"`
}

var (
	leg1Keys = []string{"BUS 1", "BUS1"}
	leg2Keys = []string{"BUS 2", "BUS2"}
)

func (b *BusRoutePayload) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var out BusRoutePayload
	for key, dst := range map[string]*string{
		"name":          &out.Name,
		"start":         &out.Start,
		"destination":   &out.Destination,
		"type":          &out.Type,
		"time_for_trip": &out.TimeForTrip,
	} {
		if raw, ok := fields[key]; ok {
			*dst = scalarText(raw)
		}
	}
	var err error
	if out.Leg1, err = probeLeg(fields, leg1Keys); err != nil {
		return err
	}
	if out.Leg2, err = probeLeg(fields, leg2Keys); err != nil {
		return err
	}
	*b = out
	return nil
}

func probeLeg(fields map[string]json.RawMessage, keys []string) (*BusLegPayload, error) {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var leg BusLegPayload
		if err := json.Unmarshal(raw, &leg); err != nil {
			return nil, err
		}
		return &leg, nil
	}
	return nil, nil
}

// FlightPayload is one entry of flight_options.
type FlightPayload struct {
	ID              Text   `json:"id"`
	Carrier         string `json:"carrier"`
	FlightNumber    Text   `json:"flight_number"`
	DepartureTime   string `json:"departure_time"`
	ArrivalTime     string `json:"arrival_time"`
	OriginIATA      string `json:"origin_iata"`
	DestinationIATA string `json:"destination_iata"`
	Duration        string `json:"duration"`
	PriceINR        Float  `json:"price_inr"`
	IsDirect        bool   `json:"is_direct"`
}

// AccommodationPayload is a stay record from the acomdation list.
type AccommodationPayload struct {
	Name           string `json:"Name"`
	Address        string `json:"Address"`
	Rating         Float  `json:"Rating"`
	Website        string `json:"Website"`
	GoogleMapsLink string `json:"Google Maps Link"`
}

// Float decodes from a JSON number or a numeric string. Anything else
// decodes as zero.
type Float float64

func (f *Float) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = Float(v)
	return nil
}

// Int decodes from a JSON number or a numeric string.
type Int int

func (n *Int) UnmarshalJSON(data []byte) error {
	var f Float
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	*n = Int(f)
	return nil
}

// Text decodes from a JSON string or any scalar, keeping its literal form.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text(scalarText(data))
	return nil
}

func scalarText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	t := strings.TrimSpace(string(raw))
	if t == "null" {
		return ""
	}
	return t
}

// weatherText flattens the weather field, which is sometimes a string and
// sometimes an object with a summary.
func weatherText(v any) string {
	switch w := v.(type) {
	case string:
		return w
	case map[string]any:
		for _, k := range []string{"summary", "description", "condition"} {
			if s, ok := w[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
