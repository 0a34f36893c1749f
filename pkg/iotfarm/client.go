// Package iotfarm is the HTTP client for the remote IoT Farm API. Every call takes the
// caller's bearer token explicitly; the client holds no per-user state.
package iotfarm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
)

const (
	defaultTimeout        = 15 * time.Second
	responseBodyLimit     = 4 << 20
	errorBodyLimit  int64 = 4096
)

var errBaseURLRequired = errors.New("iot farm api base url is required")

// CallObserver receives one sample per remote call.
type CallObserver interface {
	ObserveCall(action string, status int, duration time.Duration)
}

// Client wraps the IoT Farm REST endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	observer   CallObserver
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithObserver records call latency, typically into Prometheus.
func WithObserver(observer CallObserver) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// NewClient builds the API client for baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	client := &Client{
		baseURL:    strings.TrimSpace(baseURL),
		httpClient: &http.Client{Timeout: defaultTimeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.baseURL == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(client.baseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return client, nil
}

// request describes one remote call. action is the user-facing verb phrase used in
// fallback error messages, e.g. "Cancel order".
type request struct {
	action string
	method string
	path   string
	query  url.Values
	token  string
	body   any
}

// send executes req and returns the raw 2xx body. Non-2xx and transport failures are
// returned as coded errors.
func (c *Client) send(ctx context.Context, req request) ([]byte, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "iot farm client not configured")
	}

	var reader io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal "+strings.ToLower(req.action)+" request")
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.buildURL(req.path, req.query), reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build "+strings.ToLower(req.action)+" request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := strings.TrimSpace(req.token); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := c.now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(req.action, 0, start)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fallbackMessage(req.action))
	}
	defer func() { _ = resp.Body.Close() }()
	c.observe(req.action, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, newAPIError(req.action, resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fallbackMessage(req.action))
	}
	return body, nil
}

func (c *Client) observe(action string, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveCall(action, status, c.now().Sub(start))
}

func (c *Client) buildURL(path string, query url.Values) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	full := fmt.Sprintf("%s/%s", trimmed, path)
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}

// call sends req and decodes the {data: T} envelope.
func call[T any](ctx context.Context, c *Client, req request) (T, error) {
	var zero T
	body, err := c.send(ctx, req)
	if err != nil {
		return zero, err
	}
	return decodeEnvelope[T](body)
}

// exec sends req and ignores the response body.
func exec(ctx context.Context, c *Client, req request) error {
	_, err := c.send(ctx, req)
	return err
}

func pathf(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(strings.TrimSpace(id))
	}
	return fmt.Sprintf(format, args...)
}

func requireID(action, name, value string) error {
	if strings.TrimSpace(value) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s: %s is required", strings.ToLower(action), name))
	}
	return nil
}
