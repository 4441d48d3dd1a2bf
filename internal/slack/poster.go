package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/booking"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// Poster announces confirmed bookings in a Slack channel.
type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// NotifyBooking posts the booking summary and returns the message timestamp.
func (p *Poster) NotifyBooking(ctx context.Context, b booking.Booking) (string, error) {
	text := formatBookingMessage(b)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{
						"type": "mrkdwn",
						"text": fmt.Sprintf("Transaction %s", b.TransactionID),
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted booking to slack", "ts", slackResp.TS, "booking_id", b.ID)
	return slackResp.TS, nil
}

func formatBookingMessage(b booking.Booking) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*New %s booking* `%s`\n", b.Kind, b.ID)
	fmt.Fprintf(&sb, "*Item:* %s\n", b.Item())
	fmt.Fprintf(&sb, "*Holder:* %s\n", b.Holder)
	if b.Request.TravelDate != "" {
		fmt.Fprintf(&sb, "*Date:* %s\n", b.Request.TravelDate)
	}
	if b.Nights > 0 {
		fmt.Fprintf(&sb, "*Stay:* %s to %s (%d nights)\n", b.Request.CheckIn, b.Request.CheckOut, b.Nights)
	}
	fmt.Fprintf(&sb, "*Total:* ₹%d (base ₹%d + taxes ₹%d)", b.Fare.Total, b.Fare.Base, b.Fare.Taxes)

	return sb.String()
}
