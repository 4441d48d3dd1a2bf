package slack

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/wayfarer/internal/booking"
	"github.com/MikeSquared-Agency/wayfarer/internal/trip"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func hotelBooking() booking.Booking {
	return booking.Booking{
		ID:     "HTL42",
		Kind:   booking.KindHotel,
		Holder: "Asha",
		Request: booking.Request{
			Kind:     booking.KindHotel,
			Hotel:    &trip.Accommodation{Name: "Taj Lake Palace"},
			CheckIn:  "2026-05-10",
			CheckOut: "2026-05-12",
		},
		Nights:        2,
		Fare:          booking.Fare{Base: 20000, Taxes: 3600, Total: 23600},
		TransactionID: "TXN1",
	}
}

func TestFormatBookingMessage(t *testing.T) {
	msg := formatBookingMessage(hotelBooking())

	for _, want := range []string{"*New hotel booking* `HTL42`", "Taj Lake Palace", "*Holder:* Asha", "(2 nights)", "₹23600"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in message, got %q", want, msg)
		}
	}
	if strings.Contains(msg, "*Date:*") {
		t.Error("hotel booking without travel date should omit the date line")
	}
}

func TestNotifyBooking_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer xoxb-test" {
			t.Errorf("expected Bearer xoxb-test, got %q", r.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)

		if payload["channel"] != "C123" {
			t.Errorf("expected channel C123, got %v", payload["channel"])
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"ts": "1234567890.123456",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	ts, err := p.NotifyBooking(context.Background(), hotelBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != "1234567890.123456" {
		t.Errorf("expected ts 1234567890.123456, got %q", ts)
	}
}

func TestNotifyBooking_SlackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":    false,
			"error": "channel_not_found",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	_, err := p.NotifyBooking(context.Background(), hotelBooking())
	if err == nil {
		t.Fatal("expected error for slack error response")
	}
}
