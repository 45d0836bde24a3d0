// internal/common/pizza/client.go
package pizza

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pizza-storefront/internal/common/errors"
	commonhttp "pizza-storefront/internal/common/http"
	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/common/validation"
)

// Config addresses the pizza service. Verification lives on the factory, which may be
// a different host.
type Config struct {
	BaseURL    string
	FactoryURL string
}

// TokenSource yields the current session token, or "" when signed out.
type TokenSource interface {
	Token() string
}

// Client is the HTTP client for the pizza service.
type Client struct {
	baseURL    string
	factoryURL string
	http       *commonhttp.Client
	tokens     TokenSource
	logger     logger.Logger
}

func NewClient(cfg Config, hc *commonhttp.Client, tokens TokenSource, log logger.Logger) *Client {
	factory := cfg.FactoryURL
	if factory == "" {
		factory = cfg.BaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		factoryURL: strings.TrimSuffix(factory, "/"),
		http:       hc,
		tokens:     tokens,
		logger:     log,
	}
}

// failureMode says how an operation reports a failed exchange.
type failureMode int

const (
	// standard maps 400/409/422 to VALIDATION_FAILED, 404 to NOT_FOUND and
	// 5xx or transport errors to SERVICE_UNAVAILABLE.
	standard failureMode = iota
	// checkout reports every non-access failure as CHECKOUT_FAILED.
	checkout
	// verification reports every non-access failure as VERIFICATION_FAILED.
	verification
)

type call struct {
	operation string
	method    string
	url       string
	body      interface{}
	out       interface{}
	contract  *validation.Contract
	resource  string
	field     string
	mode      failureMode
}

// errorBody covers both shapes the service uses for failures.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) apiURL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, cl call) error {
	var body io.Reader
	if cl.body != nil {
		jsonData, err := json.Marshal(cl.body)
		if err != nil {
			return errors.NewInternalError(fmt.Errorf("failed to serialize %s request: %w", cl.operation, err))
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, cl.url, body)
	if err != nil {
		return errors.NewInternalError(fmt.Errorf("failed to create %s request: %w", cl.operation, err))
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Send(ctx, cl.operation, req)
	if err != nil {
		c.logger.Warn("Pizza service request failed", map[string]interface{}{
			"operation": cl.operation,
			"error":     err.Error(),
		})
		return c.transportError(cl, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportError(cl, err)
	}

	c.logger.Debug("Pizza service responded", map[string]interface{}{
		"operation":  cl.operation,
		"status":     resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
		"requestId":  req.Header.Get(commonhttp.RequestIDHeader),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(cl, resp.StatusCode, respBody)
	}

	if cl.out == nil {
		return nil
	}
	if cl.contract != nil {
		if err := cl.contract.Check(respBody); err != nil {
			c.logger.Error("Pizza service response broke its contract", map[string]interface{}{
				"operation": cl.operation,
				"error":     err.Error(),
			})
			return c.decodeError(cl, err)
		}
	}
	if err := json.Unmarshal(respBody, cl.out); err != nil {
		return c.decodeError(cl, fmt.Errorf("failed to decode %s response: %w", cl.operation, err))
	}
	return nil
}

// decodeError classifies an unreadable 2xx reply. An accepted order may already exist.
func (c *Client) decodeError(cl call, err error) error {
	if cl.mode == checkout {
		return errors.NewOrderStatusUnknownError(err)
	}
	return errors.NewInternalError(err)
}

func (c *Client) transportError(cl call, err error) error {
	switch cl.mode {
	case checkout:
		return errors.NewCheckoutFailedError(err)
	case verification:
		return errors.NewVerificationFailedError(err.Error())
	default:
		return errors.NewServiceUnavailableError(cl.operation, err)
	}
}

func (c *Client) statusError(cl call, status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	details := fmt.Sprintf("%s returned status %d: %s", cl.operation, status, msg)

	switch status {
	case http.StatusUnauthorized:
		return errors.NewAuthenticationFailedError(details)
	case http.StatusForbidden:
		return errors.NewForbiddenError(details)
	}

	switch cl.mode {
	case checkout:
		return errors.NewCheckoutFailedError(fmt.Errorf("%s", details))
	case verification:
		return errors.NewVerificationFailedError(details)
	}

	switch {
	case status == http.StatusNotFound:
		return errors.NewNotFoundError(cl.resource, details)
	case status == http.StatusBadRequest || status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return errors.NewValidationFailedError(cl.field, details)
	default:
		return errors.NewServiceUnavailableError(cl.operation, fmt.Errorf("%s", details))
	}
}

func pageQuery(page, limit int, name string) url.Values {
	q := url.Values{}
	if page < 0 {
		page = 0
	}
	q.Set("page", fmt.Sprintf("%d", page))
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	if name == "" {
		name = "*"
	}
	q.Set("name", name)
	return q
}
