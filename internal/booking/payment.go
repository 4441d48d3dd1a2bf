package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/ids"
)

// Charge is one payment attempt.
type Charge struct {
	BookingID   string
	AmountINR   int64
	Description string
}

// Receipt confirms a successful charge.
type Receipt struct {
	TransactionID string    `json:"transaction_id"`
	AmountINR     int64     `json:"amount_inr"`
	PaidAt        time.Time `json:"paid_at"`
}

// PaymentProvider takes money.
type PaymentProvider interface {
	Charge(ctx context.Context, c Charge) (Receipt, error)
}

// SimulatedProvider approves every positive charge after Delay.
type SimulatedProvider struct {
	Delay time.Duration
}

func (p SimulatedProvider) Charge(ctx context.Context, c Charge) (Receipt, error) {
	if c.AmountINR <= 0 {
		return Receipt{}, fmt.Errorf("%w: amount must be positive", ErrPaymentDeclined)
	}

	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Receipt{}, fmt.Errorf("charge %s: %w", c.BookingID, ctx.Err())
		case <-timer.C:
		}
	}

	return Receipt{
		TransactionID: "TXN" + ids.NewString(),
		AmountINR:     c.AmountINR,
		PaidAt:        time.Now().UTC(),
	}, nil
}
