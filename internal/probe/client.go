package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	maxErrorBody = 256
	userAgent    = "cheese-engine"
)

// StatusError is a non-2xx answer from a probe service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("probe status %d: %s", e.Code, e.Body)
}

// Temporary reports whether another attempt may succeed.
func (e *StatusError) Temporary() bool {
	switch e.Code {
	case fasthttp.StatusTooManyRequests, fasthttp.StatusInternalServerError, fasthttp.StatusBadGateway,
		fasthttp.StatusServiceUnavailable, fasthttp.StatusGatewayTimeout:
		return true
	}
	return false
}

// Client issues GET requests against one probe service.
type Client struct {
	endpoint string
	http     *fasthttp.Client
	timeout  time.Duration
	attempts int
}

type Option func(*Client)

// WithTimeout bounds a single attempt. The caller's ctx deadline still wins
// when it is earlier.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetry sets the total number of attempts per request.
func WithRetry(n int) Option {
	return func(c *Client) { c.attempts = max(n, 1) }
}

// WithDial replaces the dialer, used to point the client at an in-memory
// listener.
func WithDial(dial func(addr string) (net.Conn, error)) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http: &fasthttp.Client{
			Name:            userAgent,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			MaxConnsPerHost: 8,
		},
		timeout:  3 * time.Second,
		attempts: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getRaw GETs the endpoint with query args, retrying transport failures and
// temporary statuses with backoff.
func (c *Client) getRaw(ctx context.Context, args map[string]string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.endpoint)
	q := req.URI().QueryArgs()
	for k, v := range args {
		q.Set(k, v)
	}

	var err error
	for attempt := 1; ; attempt++ {
		var body []byte
		body, err = c.attempt(ctx, req)
		if err == nil {
			return body, nil
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Temporary() {
			return nil, err
		}
		if attempt >= c.attempts {
			return nil, err
		}
		if waitErr := wait(ctx, backoffDuration(attempt)); waitErr != nil {
			return nil, err
		}
	}
}

func (c *Client) attempt(ctx context.Context, req *fasthttp.Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("probe request: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		body := resp.Body()
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{Code: code, Body: string(body)}
	}
	return append([]byte(nil), resp.Body()...), nil
}

func (c *Client) getJSON(ctx context.Context, args map[string]string, out any) error {
	body, err := c.getRaw(ctx, args)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoffDuration doubles from 50ms and stops growing after the fourth try.
func backoffDuration(attempt int) time.Duration {
	attempt = min(max(attempt, 1), 4)
	return (50 * time.Millisecond) << (attempt - 1)
}
