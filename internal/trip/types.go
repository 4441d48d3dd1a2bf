package trip

// Kind tags which result list a ResultSet carries.
type Kind string

const (
	KindItinerary     Kind = "itinerary"
	KindFlight        Kind = "flight"
	KindBus           Kind = "bus"
	KindAccommodation Kind = "accommodation"
)

// Stop is one visit on a day route.
type Stop struct {
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Description string  `json:"description,omitempty"`
	DwellTime   string  `json:"dwell_time,omitempty"` // e.g. "2 hours"
	Weather     string  `json:"weather,omitempty"`
}

// DayRoute is the ordered stop list for a single "Day N" label.
type DayRoute struct {
	Label    string `json:"label"`
	Day      int    `json:"day"` // parsed from Label, 0 when unparsable
	Stops    []Stop `json:"stops"`
	Polyline string `json:"polyline,omitempty"`
}

// TripDetails is the planner's header for a generated plan.
type TripDetails struct {
	TripName      string `json:"trip_name,omitempty"`
	ItineraryName string `json:"itinerary_name,omitempty"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	DurationDays  int    `json:"duration_days,omitempty"`
	Destination   string `json:"destination,omitempty"`
}

// Hotel is the base stay the planner optimized routes around.
type Hotel struct {
	Name    string   `json:"name"`
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Rating  float64  `json:"rating,omitempty"`
	Types   []string `json:"types,omitempty"`
	OpenNow bool     `json:"open_now,omitempty"`
}

// Itinerary is a multi-day plan ready for rendering as a card.
type Itinerary struct {
	Title            string       `json:"title"`
	DurationDays     int          `json:"duration_days"`
	Duration         string       `json:"duration"`
	Budget           string       `json:"budget"`
	ShortDescription string       `json:"short_description"`
	Highlights       []string     `json:"highlights"`
	Days             []DayRoute   `json:"days"`
	Details          *TripDetails `json:"trip_details,omitempty"`
	Hotel            *Hotel       `json:"hotel,omitempty"`
}

// Flight is a single flight option. Field names follow the planner's flat records.
type Flight struct {
	ID              string  `json:"id"`
	Carrier         string  `json:"carrier"`
	FlightNumber    string  `json:"flight_number"`
	DepartureTime   string  `json:"departure_time"`
	ArrivalTime     string  `json:"arrival_time"`
	OriginIATA      string  `json:"origin_iata"`
	DestinationIATA string  `json:"destination_iata"`
	Duration        string  `json:"duration"` // "Xh Ym"
	PriceINR        float64 `json:"price_inr"`
	IsDirect        bool    `json:"is_direct"`
}

// BusLeg is one segment of a bus route.
type BusLeg struct {
	Operator string `json:"operator"`
	From     string `json:"from"`
	To       string `json:"to"`
	TripTime string `json:"trip_time"`
}

// BusRoute is a bus option with one or two sequential legs.
type BusRoute struct {
	RouteNo       int      `json:"route_no"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Start         string   `json:"start"`
	Destination   string   `json:"destination"`
	Distance      string   `json:"distance"`
	Duration      string   `json:"duration"`
	Price         string   `json:"price"`
	DepartureTime string   `json:"departure_time"`
	ArrivalTime   string   `json:"arrival_time"`
	Legs          []BusLeg `json:"legs"`
}

// Accommodation is a stay option passed through from the planner.
type Accommodation struct {
	Name    string  `json:"name"`
	Address string  `json:"address,omitempty"`
	Rating  float64 `json:"rating,omitempty"`
	Website string  `json:"website,omitempty"`
	MapsURL string  `json:"maps_url,omitempty"`
}
