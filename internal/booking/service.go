package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/hermes"
	"github.com/MikeSquared-Agency/wayfarer/internal/ids"
	"github.com/MikeSquared-Agency/wayfarer/internal/store"
)

// GuestName is shown when no profile name is set.
const GuestName = "Guest"

const requestTimeout = 30 * time.Second

// Publisher emits the booking confirmed event.
type Publisher interface {
	Publish(subject string, data any) error
}

// Notifier announces a confirmed booking outside the app. *slack.Poster
// satisfies it.
type Notifier interface {
	NotifyBooking(ctx context.Context, b Booking) (string, error)
}

// ProfileSource supplies the booking holder's name.
type ProfileSource interface {
	GetProfile(ctx context.Context) (*store.Profile, error)
}

// Service books cards and keeps confirmed bookings in memory.
type Service struct {
	payments PaymentProvider
	renderer DocumentRenderer
	profiles ProfileSource
	events   Publisher
	notifier Notifier
	logger   *slog.Logger

	mu       sync.RWMutex
	bookings map[string]Booking
}

func NewService(payments PaymentProvider, renderer DocumentRenderer, profiles ProfileSource, events Publisher, logger *slog.Logger) *Service {
	return &Service{
		payments: payments,
		renderer: renderer,
		profiles: profiles,
		events:   events,
		logger:   logger,
		bookings: make(map[string]Booking),
	}
}

// SetNotifier attaches an optional notifier called after each booking.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Book validates req, charges the fare and records the booking.
func (s *Service) Book(ctx context.Context, req Request) (Booking, error) {
	req, err := req.normalize()
	if err != nil {
		return Booking{}, err
	}
	fare, nights, err := Quote(req)
	if err != nil {
		return Booking{}, err
	}

	b := Booking{
		ID:      req.Kind.prefix() + ids.NewString(),
		Kind:    req.Kind,
		Holder:  s.holder(ctx),
		Request: req,
		Nights:  nights,
		Fare:    fare,
	}

	receipt, err := s.payments.Charge(ctx, Charge{
		BookingID:   b.ID,
		AmountINR:   fare.Total,
		Description: fmt.Sprintf("%s booking: %s", b.Kind.title(), b.Item()),
	})
	if err != nil {
		s.logger.Warn("payment failed", "booking_id", b.ID, "error", err)
		return Booking{}, fmt.Errorf("charge booking: %w", err)
	}
	b.TransactionID = receipt.TransactionID
	b.PaidAt = receipt.PaidAt

	s.mu.Lock()
	s.bookings[b.ID] = b
	s.mu.Unlock()

	s.logger.Info("booking confirmed", "booking_id", b.ID, "kind", b.Kind, "total_inr", fare.Total)
	if s.events != nil {
		if err := s.events.Publish(hermes.SubjectBookingConfirmed, hermes.BookingConfirmed{
			BookingID:     b.ID,
			Kind:          string(b.Kind),
			Item:          b.Item(),
			TotalINR:      float64(fare.Total),
			TransactionID: b.TransactionID,
		}); err != nil {
			s.logger.Warn("failed to publish booking event", "booking_id", b.ID, "error", err)
		}
	}
	if s.notifier != nil {
		if _, err := s.notifier.NotifyBooking(ctx, b); err != nil {
			s.logger.Warn("failed to notify booking", "booking_id", b.ID, "error", err)
		}
	}
	return b, nil
}

func (s *Service) holder(ctx context.Context) string {
	if s.profiles == nil {
		return GuestName
	}
	p, err := s.profiles.GetProfile(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to load profile", "error", err)
		}
		return GuestName
	}
	if p.Name == "" {
		return GuestName
	}
	return p.Name
}

// Get returns a confirmed booking.
func (s *Service) Get(id string) (Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return Booking{}, ErrBookingNotFound
	}
	return b, nil
}

// Document renders the ticket or receipt for booking id.
func (s *Service) Document(id string, kind DocumentKind) (Document, error) {
	b, err := s.Get(id)
	if err != nil {
		return Document{}, err
	}
	doc, err := s.renderer.Render(kind, b)
	if err != nil {
		return Document{}, fmt.Errorf("render %s: %w", kind, err)
	}
	return doc, nil
}

// HandleBookingRequested books a request delivered over NATS. Failures are
// logged; the confirmed event is the only reply.
func (s *Service) HandleBookingRequested(subject string, data []byte) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Warn("invalid booking request", "subject", subject, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if _, err := s.Book(ctx, req); err != nil {
		s.logger.Warn("booking request failed", "subject", subject, "kind", req.Kind, "error", err)
	}
}
