package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

const (
	networkErrorMessage  = "Network error: Could not connect to the server"
	defaultErrorMessage  = "An error occurred"
	invalidResponseError = "Invalid response from server"
)

// TokenSource provides the bearer token for outgoing calls and forgets it
// when the server rejects it. *session.Manager satisfies it.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
	Clear(ctx context.Context) error
}

// Notifier publishes user-facing messages. *notify.Bus satisfies it.
type Notifier interface {
	Success(message string) string
	Error(message string) string
}

// Navigator tracks the current page and moves to another.
type Navigator interface {
	Path() string
	Navigate(path string)
}

// HTTPClient performs authenticated JSON calls against the auth server.
type HTTPClient struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	notifier Notifier
	nav      Navigator
	logger   logging.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource, notifier Notifier, nav Navigator, logger logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		tokens:   tokens,
		notifier: notifier,
		nav:      nav,
		logger:   logger,
	}
}

func (c *HTTPClient) Get(ctx context.Context, endpoint string, out any) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *HTTPClient) Post(ctx context.Context, endpoint string, body, out any) error {
	return c.Do(ctx, http.MethodPost, endpoint, body, out)
}

func (c *HTTPClient) Patch(ctx context.Context, endpoint string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, endpoint, body, out)
}

func (c *HTTPClient) Delete(ctx context.Context, endpoint string, out any) error {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, out)
}

func (c *HTTPClient) url(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + endpoint
}

// Do sends one request and decodes a 2xx JSON body into out (out may be nil).
//
// Every failed call publishes exactly one error notification and returns
// either an error wrapping common.ErrNetwork or an *APIError. A 401 also
// clears the session and navigates to the login page. Nothing is retried.
func (c *HTTPClient) Do(ctx context.Context, method, endpoint string, body, out any) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(endpoint), payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token, ok := c.tokens.Token(ctx); ok {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "request failed", "method", method, "endpoint", endpoint, "error", err)
		c.notifier.Error(networkErrorMessage)
		return fmt.Errorf("%s %s: %w: %v", method, endpoint, common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn(ctx, "reading response failed", "method", method, "endpoint", endpoint, "error", err)
		c.notifier.Error(networkErrorMessage)
		return fmt.Errorf("%s %s: %w: %v", method, endpoint, common.ErrNetwork, err)
	}

	c.logger.Debug(ctx, "response", "method", method, "endpoint", endpoint, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(ctx, resp.StatusCode, raw)
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if msg, ok := serverMessage(raw); ok {
		c.notifier.Success(msg)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.notifier.Error(invalidResponseError)
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) fail(ctx context.Context, status int, raw []byte) error {
	apiErr := &APIError{Status: status, Message: errorMessage(raw)}

	if status == http.StatusUnauthorized {
		if err := c.tokens.Clear(ctx); err != nil {
			c.logger.Error(ctx, "clearing session failed", "error", err)
		}
	}

	c.notifier.Error(strconv.Itoa(status) + " | " + apiErr.Message)

	if status == http.StatusUnauthorized && !strings.HasPrefix(c.nav.Path(), common.LoginPath) {
		c.nav.Navigate(common.LoginPath)
	}

	return apiErr
}

// serverMessage returns the body's "message" field when it is a string.
func serverMessage(raw []byte) (string, bool) {
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Message) == 0 {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(body.Message, &msg); err != nil {
		return "", false
	}
	return msg, true
}

// errorMessage extracts "message" from an error body. Validation failures may
// carry a list of messages, which are joined.
func errorMessage(raw []byte) string {
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Message) == 0 {
		return defaultErrorMessage
	}

	var msg string
	if err := json.Unmarshal(body.Message, &msg); err == nil {
		if msg == "" {
			return defaultErrorMessage
		}
		return msg
	}

	var list []string
	if err := json.Unmarshal(body.Message, &list); err == nil && len(list) > 0 {
		return strings.Join(list, ", ")
	}

	return defaultErrorMessage
}

// IsNoResult reports whether err means the call produced no result, either
// because the server was unreachable or because it answered with an error.
func IsNoResult(err error) bool {
	var apiErr *APIError
	return errors.Is(err, common.ErrNetwork) || errors.As(err, &apiErr)
}
