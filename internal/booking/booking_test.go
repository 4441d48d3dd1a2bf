package booking

import (
	"errors"
	"testing"

	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		name       string
		req        Request
		want       Fare
		wantNights int
	}{
		{
			name: "flight 12 percent",
			req:  Request{Kind: KindFlight, Flight: &trip.Flight{PriceINR: 4567}},
			want: Fare{Base: 4567, Taxes: 548, Total: 5115},
		},
		{
			name: "flight per passenger",
			req:  Request{Kind: KindFlight, Passengers: 2, Flight: &trip.Flight{PriceINR: 5000}},
			want: Fare{Base: 10000, Taxes: 1200, Total: 11200},
		},
		{
			name: "flight paise rounded",
			req:  Request{Kind: KindFlight, Passengers: 3, Flight: &trip.Flight{PriceINR: 4999.6}},
			want: Fare{Base: 15000, Taxes: 1800, Total: 16800},
		},
		{
			name: "bus flat tax",
			req:  Request{Kind: KindBus, Bus: &trip.BusRoute{Price: "₹1,200"}},
			want: Fare{Base: 1200, Taxes: 50, Total: 1250},
		},
		{
			name: "bus without price",
			req:  Request{Kind: KindBus, Bus: &trip.BusRoute{Price: "TBD"}},
			want: Fare{Base: 450, Taxes: 50, Total: 500},
		},
		{
			name:       "hotel 18 percent GST",
			req:        Request{Kind: KindHotel, Hotel: &trip.Accommodation{Name: "Taj"}, PricePerNight: 3333, CheckIn: "2026-12-20", CheckOut: "2026-12-23"},
			want:       Fare{Base: 9999, Taxes: 1800, Total: 11799},
			wantNights: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := Quote(tt.req)
			if err != nil {
				t.Fatalf("Quote: %v", err)
			}
			if got != tt.want {
				t.Errorf("fare = %+v, want %+v", got, tt.want)
			}
			if n != tt.wantNights {
				t.Errorf("nights = %d, want %d", n, tt.wantNights)
			}
		})
	}
}

func TestQuote_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"unknown kind", Request{Kind: "train"}},
		{"flight missing", Request{Kind: KindFlight}},
		{"flight unpriced", Request{Kind: KindFlight, Flight: &trip.Flight{}}},
		{"bus missing", Request{Kind: KindBus}},
		{"hotel missing price", Request{Kind: KindHotel, Hotel: &trip.Accommodation{Name: "x"}, CheckIn: "2026-01-01", CheckOut: "2026-01-02"}},
		{"hotel bad dates", Request{Kind: KindHotel, Hotel: &trip.Accommodation{Name: "x"}, PricePerNight: 100, CheckIn: "01/01/2026", CheckOut: "2026-01-02"}},
		{"too many passengers", Request{Kind: KindFlight, Passengers: MaxPassengers + 1, Flight: &trip.Flight{PriceINR: 5000}}},
		{"flight price too large", Request{Kind: KindFlight, Flight: &trip.Flight{PriceINR: 1e30}}},
		{"bus price too large", Request{Kind: KindBus, Bus: &trip.BusRoute{Price: "₹99,999,999"}}},
		{"too many rooms", Request{Kind: KindHotel, Hotel: &trip.Accommodation{Name: "x"}, PricePerNight: 100, Rooms: MaxRooms + 1, CheckIn: "2026-01-01", CheckOut: "2026-01-02"}},
		{"stay too long", Request{Kind: KindHotel, Hotel: &trip.Accommodation{Name: "x"}, PricePerNight: 100, CheckIn: "2026-01-01", CheckOut: "2027-01-01"}},
		{"hotel reversed dates", Request{Kind: KindHotel, Hotel: &trip.Accommodation{Name: "x"}, PricePerNight: 100, CheckIn: "2026-01-05", CheckOut: "2026-01-02"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Quote(tt.req); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestFormatINR(t *testing.T) {
	tests := map[int64]string{
		0:       "0",
		950:     "950",
		1250:    "1,250",
		1234567: "1,234,567",
		-4500:   "-4,500",
	}
	for in, want := range tests {
		if got := formatINR(in); got != want {
			t.Errorf("formatINR(%d) = %q, want %q", in, got, want)
		}
	}
}
