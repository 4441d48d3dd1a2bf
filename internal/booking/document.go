package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

// DocumentKind selects which document to render for a booking.
type DocumentKind string

const (
	DocumentTicket  DocumentKind = "ticket"
	DocumentReceipt DocumentKind = "receipt"
)

// Document is a rendered download.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// DocumentRenderer turns a booking into a downloadable document.
type DocumentRenderer interface {
	Render(kind DocumentKind, b Booking) (Document, error)
}

const (
	heavyRule = "═══════════════════════════════════════"
	lightRule = "──────────────────────────────────────"
)

// TextRenderer renders plain-text tickets and receipts.
type TextRenderer struct {
	Brand string
	Now   func() time.Time
}

func (r TextRenderer) Render(kind DocumentKind, b Booking) (Document, error) {
	w := &textDoc{}
	switch kind {
	case DocumentTicket:
		r.ticket(w, b)
	case DocumentReceipt:
		r.receipt(w, b)
	default:
		return Document{}, fmt.Errorf("unknown document kind %q", kind)
	}
	w.blank()
	w.line("Generated on: %s", r.now().Format("2006-01-02 15:04:05 MST"))

	name := "Ticket"
	if kind == DocumentReceipt {
		name = "Receipt"
	}
	return Document{
		Filename:    fmt.Sprintf("%s_%s_%s.txt", b.Kind.title(), name, b.ID),
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(w.String()),
	}, nil
}

func (r TextRenderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r TextRenderer) brand() string {
	if r.Brand != "" {
		return r.Brand
	}
	return "Wayfarer"
}

func (r TextRenderer) ticket(w *textDoc, b Booking) {
	req := b.Request
	switch b.Kind {
	case KindFlight:
		fl := req.Flight
		w.header("FLIGHT TICKET")
		w.line("✈️ %s", fl.Carrier)
		w.line("Booking ID: %s", b.ID)
		w.line("Passenger: %s", b.Holder)
		w.section("FLIGHT DETAILS")
		w.line("Flight: %s", b.Item())
		w.line("From: %s", fl.OriginIATA)
		w.line("To: %s", fl.DestinationIATA)
		w.line("Date: %s", orDash(req.TravelDate))
		w.line("Departure: %s", fl.DepartureTime)
		w.line("Arrival: %s", fl.ArrivalTime)
		w.line("Duration: %s", fl.Duration)
		w.section("PASSENGER DETAILS")
		w.line("Passengers: %d", req.Passengers)
		w.line("Class: %s", strings.ToUpper(req.Class))
		w.fare(b.Fare, "Base Fare", "Total Amount")
		w.info(
			"Please arrive at airport 2 hours before departure",
			"Carry valid photo ID for domestic flights",
			"Web check-in available 24 hours before departure",
		)
	case KindBus:
		bus := req.Bus
		w.header("BUS TICKET")
		w.line("🚌 %s", operator(bus))
		w.line("Booking ID: %s", b.ID)
		w.line("Passenger: %s", b.Holder)
		w.section("JOURNEY DETAILS")
		w.line("Route: %s", bus.Name)
		w.line("From: %s", bus.Start)
		w.line("To: %s", bus.Destination)
		w.line("Date: %s", orDash(req.TravelDate))
		w.line("Departure: %s", bus.DepartureTime)
		w.line("Arrival: %s", bus.ArrivalTime)
		w.line("Duration: %s", bus.Duration)
		w.section("PASSENGER DETAILS")
		w.line("Passengers: %d", req.Passengers)
		w.line("Bus Type: %s", bus.Type)
		w.fare(b.Fare, "Base Fare", "Total Amount")
		w.info(
			"Report at boarding point 30 minutes before departure",
			"Carry valid photo ID for verification",
			"Keep this ticket for the entire journey",
		)
	case KindHotel:
		h := req.Hotel
		w.header("HOTEL BOOKING CONFIRMATION")
		w.line("🏨 %s", h.Name)
		w.line("Booking ID: %s", b.ID)
		w.line("Guest: %s", b.Holder)
		w.section("HOTEL DETAILS")
		w.line("Hotel: %s", h.Name)
		w.line("Rating: %s ⭐", strconv.FormatFloat(h.Rating, 'f', -1, 64))
		w.line("Address: %s", orDash(h.Address))
		w.section("BOOKING DETAILS")
		w.line("Check-in: %s", req.CheckIn)
		w.line("Check-out: %s", req.CheckOut)
		w.line("Duration: %s", nightsLabel(b.Nights))
		w.line("Guests: %d", req.Passengers)
		w.line("Rooms: %d", req.Rooms)
		w.fare(b.Fare, fmt.Sprintf("Room Rate (%d nights)", b.Nights), "Total Amount")
		w.info(
			"Check-in time: 2:00 PM",
			"Check-out time: 12:00 PM",
			"Carry valid photo ID for check-in",
		)
	}
	w.blank()
	w.line("Thank you for choosing %s!", r.brand())
}

func (r TextRenderer) receipt(w *textDoc, b Booking) {
	w.header("PAYMENT RECEIPT")
	w.line("%s - %s Booking", r.brand(), b.Kind.title())
	w.line("Receipt No: RCP%s", b.ID)
	w.line("Date: %s", b.PaidAt.Format(time.DateOnly))
	w.line("Time: %s", b.PaidAt.Format("15:04:05 MST"))

	w.section("BOOKING DETAILS")
	w.line("Booking ID: %s", b.ID)
	w.line("Service: %s Booking", b.Kind.title())
	w.line("Booked by: %s", b.Holder)
	switch b.Kind {
	case KindFlight:
		w.line("Airline: %s", b.Request.Flight.Carrier)
		w.line("Route: %s → %s", b.Request.Flight.OriginIATA, b.Request.Flight.DestinationIATA)
		w.line("Travel Date: %s", orDash(b.Request.TravelDate))
	case KindBus:
		w.line("Operator: %s", operator(b.Request.Bus))
		w.line("Route: %s", b.Request.Bus.Name)
		w.line("Travel Date: %s", orDash(b.Request.TravelDate))
	case KindHotel:
		w.line("Hotel: %s", b.Request.Hotel.Name)
		w.line("Check-in: %s", b.Request.CheckIn)
		w.line("Check-out: %s", b.Request.CheckOut)
	}

	base := "Base Fare"
	if b.Kind == KindHotel {
		base = fmt.Sprintf("Room Rate (%d nights)", b.Nights)
	}
	w.section("PAYMENT BREAKDOWN")
	w.line("%s: ₹%s", base, formatINR(b.Fare.Base))
	w.line("Taxes & Fees: ₹%s", formatINR(b.Fare.Taxes))
	w.line(lightRule)
	w.line("Total Paid: ₹%s", formatINR(b.Fare.Total))

	w.section("PAYMENT METHOD")
	w.line("Payment Status: SUCCESSFUL")
	w.line("Transaction ID: %s", b.TransactionID)
	w.line("Payment Date: %s", b.PaidAt.Format(time.DateOnly))
	w.blank()
	w.line("This is a computer generated receipt.")
	w.line("No signature required.")
}

func operator(r *trip.BusRoute) string {
	if len(r.Legs) > 0 && r.Legs[0].Operator != "" {
		return r.Legs[0].Operator
	}
	return "Bus Service"
}

func nightsLabel(n int) string {
	if n == 1 {
		return "1 night"
	}
	return fmt.Sprintf("%d nights", n)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatINR groups thousands with commas: 12345 -> "12,345".
func formatINR(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var out strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	if neg {
		return "-" + out.String()
	}
	return out.String()
}

type textDoc struct {
	strings.Builder
}

func (d *textDoc) line(format string, args ...any) {
	fmt.Fprintf(d, format, args...)
	d.WriteByte('\n')
}

func (d *textDoc) blank() {
	d.WriteByte('\n')
}

func (d *textDoc) header(title string) {
	d.line("%s", title)
	d.line(heavyRule)
	d.blank()
}

func (d *textDoc) section(title string) {
	d.blank()
	d.line("%s", title)
	d.line(lightRule)
}

func (d *textDoc) fare(f Fare, baseLabel, totalLabel string) {
	d.section("FARE BREAKDOWN")
	d.line("%s: ₹%s", baseLabel, formatINR(f.Base))
	d.line("Taxes & Fees: ₹%s", formatINR(f.Taxes))
	d.line("%s: ₹%s", totalLabel, formatINR(f.Total))
}

func (d *textDoc) info(items ...string) {
	d.section("IMPORTANT INFORMATION")
	for _, it := range items {
		d.line("• %s", it)
	}
}
