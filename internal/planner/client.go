package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	chatPath       = "/api/chat"
	enhancePath    = "/api/enhance"
	enhanceBusPath = "/api/enhance-bus"
)

// Client talks to the trip planning backend.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend root the client posts to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx reply from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("planner error %d: %s", e.StatusCode, e.Message)
}

type errorResponse struct {
	ResponseType string `json:"response_type"`
	Message      string `json:"message"`
	Error        string `json:"error"`
}

// Chat sends a free-text query and returns the tagged response.
func (c *Client) Chat(ctx context.Context, query string) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.post(ctx, chatPath, chatRequest{Query: query}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EnhancePlan asks the backend to revise one plan. The reply is either a
// single plan object or a list of them, so it is returned undecoded.
func (c *Client) EnhancePlan(ctx context.Context, req EnhancePlanRequest) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.post(ctx, enhancePath, req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// EnhanceBus asks the backend to revise one bus route.
func (c *Client) EnhanceBus(ctx context.Context, req EnhanceBusRequest) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.post(ctx, enhanceBusPath, req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("planner call %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil {
			if errResp.Error != "" {
				apiErr.Message = errResp.Error
			} else if errResp.Message != "" {
				apiErr.Message = errResp.Message
			}
		}
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
