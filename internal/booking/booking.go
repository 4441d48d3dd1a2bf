package booking

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

var (
	ErrInvalidRequest  = errors.New("invalid booking request")
	ErrBookingNotFound = errors.New("booking not found")
	ErrPaymentDeclined = errors.New("payment declined")
)

// Kind is the thing being booked.
type Kind string

const (
	KindFlight Kind = "flight"
	KindBus    Kind = "bus"
	KindHotel  Kind = "hotel"
)

const (
	flightTaxRate = 0.12
	hotelTaxRate  = 0.18
	busFlatTaxINR = 50

	defaultBusFareINR = 450
	defaultClass      = "economy"
)

// Per-booking limits. They keep every fare product well inside int64.
const (
	MaxPassengers  = 9
	MaxRooms       = 9
	MaxNights      = 30
	MaxUnitFareINR = 10_000_000
)

func (k Kind) prefix() string {
	switch k {
	case KindFlight:
		return "FLT"
	case KindBus:
		return "BUS"
	case KindHotel:
		return "HTL"
	}
	return "BKG"
}

func (k Kind) title() string {
	switch k {
	case KindFlight:
		return "Flight"
	case KindBus:
		return "Bus"
	case KindHotel:
		return "Hotel"
	}
	return "Booking"
}

// Request is what a client submits to book one card.
type Request struct {
	Kind           Kind                `json:"kind"`
	ConversationID string              `json:"conversation_id,omitempty"`
	TravelDate     string              `json:"travel_date,omitempty"`
	Passengers     int                 `json:"passengers,omitempty"`
	Class          string              `json:"class,omitempty"`
	Flight         *trip.Flight        `json:"flight,omitempty"`
	Bus            *trip.BusRoute      `json:"bus,omitempty"`
	Hotel          *trip.Accommodation `json:"hotel,omitempty"`
	PricePerNight  int64               `json:"price_per_night,omitempty"`
	CheckIn        string              `json:"check_in,omitempty"`
	CheckOut       string              `json:"check_out,omitempty"`
	Rooms          int                 `json:"rooms,omitempty"`
}

// Fare amounts are whole rupees.
type Fare struct {
	Base  int64 `json:"base_inr"`
	Taxes int64 `json:"taxes_inr"`
	Total int64 `json:"total_inr"`
}

// Booking is a confirmed, paid booking.
type Booking struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	Holder        string    `json:"holder"`
	Request       Request   `json:"request"`
	Nights        int       `json:"nights,omitempty"`
	Fare          Fare      `json:"fare"`
	TransactionID string    `json:"transaction_id"`
	PaidAt        time.Time `json:"paid_at"`
}

// Item names the booked card for summaries and events.
func (b Booking) Item() string {
	switch b.Kind {
	case KindFlight:
		return strings.TrimSpace(b.Request.Flight.Carrier + " " + b.Request.Flight.FlightNumber)
	case KindBus:
		return b.Request.Bus.Name
	case KindHotel:
		return b.Request.Hotel.Name
	}
	return ""
}

// normalize fills defaults and rejects incomplete requests.
func (r Request) normalize() (Request, error) {
	if r.Passengers <= 0 {
		r.Passengers = 1
	}
	if r.Rooms <= 0 {
		r.Rooms = 1
	}
	if r.Class == "" {
		r.Class = defaultClass
	}
	if r.Passengers > MaxPassengers {
		return r, fmt.Errorf("%w: at most %d passengers", ErrInvalidRequest, MaxPassengers)
	}
	if r.Rooms > MaxRooms {
		return r, fmt.Errorf("%w: at most %d rooms", ErrInvalidRequest, MaxRooms)
	}

	switch r.Kind {
	case KindFlight:
		if r.Flight == nil {
			return r, fmt.Errorf("%w: flight is required", ErrInvalidRequest)
		}
		if r.Flight.PriceINR <= 0 {
			return r, fmt.Errorf("%w: flight has no price", ErrInvalidRequest)
		}
		if r.Flight.PriceINR > MaxUnitFareINR {
			return r, fmt.Errorf("%w: flight price exceeds ₹%d", ErrInvalidRequest, MaxUnitFareINR)
		}
	case KindBus:
		if r.Bus == nil {
			return r, fmt.Errorf("%w: bus route is required", ErrInvalidRequest)
		}
		if busFare(r.Bus.Price) > MaxUnitFareINR {
			return r, fmt.Errorf("%w: bus price exceeds ₹%d", ErrInvalidRequest, MaxUnitFareINR)
		}
	case KindHotel:
		if r.Hotel == nil || r.Hotel.Name == "" {
			return r, fmt.Errorf("%w: hotel is required", ErrInvalidRequest)
		}
		if r.PricePerNight <= 0 {
			return r, fmt.Errorf("%w: price_per_night must be positive", ErrInvalidRequest)
		}
		if r.PricePerNight > MaxUnitFareINR {
			return r, fmt.Errorf("%w: price_per_night exceeds ₹%d", ErrInvalidRequest, MaxUnitFareINR)
		}
		n, err := nights(r.CheckIn, r.CheckOut)
		if err != nil {
			return r, err
		}
		if n > MaxNights {
			return r, fmt.Errorf("%w: at most %d nights", ErrInvalidRequest, MaxNights)
		}
	default:
		return r, fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, r.Kind)
	}
	return r, nil
}

// Quote computes the fare and, for hotels, the number of nights.
func Quote(r Request) (Fare, int, error) {
	r, err := r.normalize()
	if err != nil {
		return Fare{}, 0, err
	}

	var (
		f Fare
		n int
	)
	switch r.Kind {
	case KindFlight:
		// Fares are whole rupees; paise round to the nearest rupee.
		f.Base = int64(math.Round(r.Flight.PriceINR)) * int64(r.Passengers)
		f.Taxes = int64(math.Round(float64(f.Base) * flightTaxRate))
	case KindBus:
		f.Base = busFare(r.Bus.Price) * int64(r.Passengers)
		f.Taxes = busFlatTaxINR
	case KindHotel:
		n, _ = nights(r.CheckIn, r.CheckOut)
		f.Base = r.PricePerNight * int64(n) * int64(r.Rooms)
		f.Taxes = int64(math.Round(float64(f.Base) * hotelTaxRate))
	}
	f.Total = f.Base + f.Taxes
	return f, n, nil
}

// busFare reads the rupee amount out of a display price such as "₹1,200".
func busFare(price string) int64 {
	var digits strings.Builder
	for _, r := range price {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil || n <= 0 {
		return defaultBusFareINR
	}
	return n
}

func nights(checkIn, checkOut string) (int, error) {
	in, err := time.Parse(time.DateOnly, checkIn)
	if err != nil {
		return 0, fmt.Errorf("%w: check_in must be YYYY-MM-DD", ErrInvalidRequest)
	}
	out, err := time.Parse(time.DateOnly, checkOut)
	if err != nil {
		return 0, fmt.Errorf("%w: check_out must be YYYY-MM-DD", ErrInvalidRequest)
	}
	n := int(math.Ceil(out.Sub(in).Hours() / 24))
	if n <= 0 {
		return 0, fmt.Errorf("%w: check_out must be after check_in", ErrInvalidRequest)
	}
	return n, nil
}
