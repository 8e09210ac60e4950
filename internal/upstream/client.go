package upstream

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

// maxResponseBytes caps the upstream body; larger replies are an error,
// never a truncated body.
const maxResponseBytes = 10 << 20 // 10 MiB

// ErrResponseTooLarge is returned when upstream sends more than maxResponseBytes.
var ErrResponseTooLarge = fmt.Errorf("upstream: response exceeds %d bytes", maxResponseBytes)

// Response is the raw upstream reply; Body is not interpreted here.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client posts JSON payloads to a single fixed endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient returns a Client for endpoint. A zero timeout means no client
// timeout; the request context still applies.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return NewClientWithHTTP(endpoint, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP lets callers (and tests) supply their own *http.Client.
func NewClientWithHTTP(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: httpClient,
	}
}

// Endpoint returns the configured URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Post sends payload as JSON and returns the status and body. Non-2xx
// statuses are not errors; only transport and encoding failures are.
func (c *Client) Post(ctx context.Context, payload any) (Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("upstream: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("upstream: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return Response{}, fmt.Errorf("upstream: read body: %w", err)
	}
	if len(raw) > maxResponseBytes {
		return Response{}, ErrResponseTooLarge
	}
	return Response{StatusCode: resp.StatusCode, Body: raw}, nil
}
