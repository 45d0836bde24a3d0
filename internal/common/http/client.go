// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pizza-storefront/internal/common/observability"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

type Client struct {
	httpClient *http.Client
	obs        *observability.Observability
}

func NewClient(timeout time.Duration, obs *observability.Observability) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		obs: obs,
	}
}

// NewClientWith wraps an existing *http.Client, e.g. an httptest server client.
func NewClientWith(hc *http.Client, obs *observability.Observability) *Client {
	return &Client{httpClient: hc, obs: obs}
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

// Send executes req on behalf of a named operation. It stamps a fresh correlation id
// unless the caller already set one and records the call duration and status.
func (c *Client) Send(ctx context.Context, operation string, req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}

	start := time.Now()
	resp, err := c.DoWithContext(ctx, req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.obs.RecordRequest(ctx, operation, status, time.Since(start))

	return resp, err
}
