package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is an outbound HTTP client for collaborator APIs. GET requests are
// retried with exponential backoff because they are idempotent; mutating
// requests are sent exactly once.
type Client struct {
	http       *http.Client
	token      string
	maxRetries int
	backoff    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithToken sets the bearer token attached to every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetries sets the retry budget and initial backoff for GETs
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = n
		c.backoff = backoff
	}
}

// New creates a client with sane defaults
func New(opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{Timeout: 15 * time.Second},
		maxRetries: 3,
		backoff:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON issues a GET and decodes the JSON response into dest. Transport
// errors and 5xx responses are retried up to the configured budget.
func (c *Client) GetJSON(ctx context.Context, url string, dest interface{}) error {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		err := c.do(ctx, http.MethodGet, url, nil, dest)
		if err == nil {
			return nil
		}
		lastErr = err

		var se *StatusError
		if ok := asStatusError(err, &se); ok && se.Code < 500 {
			// 4xx will not get better on retry
			return err
		}
	}

	return lastErr
}

// PostJSON issues a single-shot POST with a JSON body
func (c *Client) PostJSON(ctx context.Context, url string, body, dest interface{}) error {
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(raw)
	}
	return c.do(ctx, http.MethodPost, url, buf, dest)
}

// StatusError reports a non-2xx response
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func asStatusError(err error, target **StatusError) bool {
	se, ok := err.(*StatusError)
	if ok {
		*target = se
	}
	return ok
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
