// Package apiclient calls the session-scheduling backend over HTTP+JSON on
// behalf of a dashboard viewer.
//
// Every failure returned by Client.Do has already been logged and surfaced
// to the viewer through the notifier bound to the context.
package apiclient

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

	"github.com/example/study-dashboard/internal/logging"
	"github.com/example/study-dashboard/internal/toast"
)

const defaultAPIPrefix = "/api"

// Client is the backend HTTP client. It holds no per-viewer state; the
// viewer's cookies travel in the request context.
type Client struct {
	origin    string
	apiPrefix string
	http      *http.Client
	logger    *slog.Logger
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithAPIPrefix overrides the "/api" path prefix.
func WithAPIPrefix(prefix string) Option {
	return func(c *Client) {
		if prefix = strings.TrimRight(prefix, "/"); prefix != "" {
			c.apiPrefix = prefix
		}
	}
}

// WithTimeout bounds each request. Zero leaves the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New returns a client for the backend at origin (scheme and host).
func New(origin string, opts ...Option) *Client {
	c := &Client{
		origin:    strings.TrimRight(origin, "/"),
		apiPrefix: defaultAPIPrefix,
		http:      http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Origin is the backend origin.
func (c *Client) Origin() string { return c.origin }

// APIRoot is the origin joined with the API prefix.
func (c *Client) APIRoot() string { return c.origin + c.apiPrefix }

type cookiesKey struct{}

// ContextWithCookies attaches the viewer's cookies so they are forwarded to
// the backend.
func ContextWithCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	if len(cookies) == 0 {
		return ctx
	}
	return context.WithValue(ctx, cookiesKey{}, cookies)
}

func cookiesFrom(ctx context.Context) []*http.Cookie {
	cookies, _ := ctx.Value(cookiesKey{}).([]*http.Cookie)
	return cookies
}

// Do sends a JSON request to the API root plus endpoint and returns the
// parsed envelope. An empty method means GET. Non-2xx statuses, transport
// failures and unparseable bodies are reported to the viewer, logged and
// returned.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any) (env Envelope, err error) {
	if method == "" {
		method = http.MethodGet
	}
	url := c.APIRoot() + endpoint
	logger := logging.Component(ctx, c.logger, "apiclient", "do", "method", method, "endpoint", endpoint)

	defer func() {
		if err == nil {
			logger.DebugContext(ctx, "backend request completed")
			return
		}
		logger.ErrorContext(ctx, "backend request failed", "error", err, "error_kind", ErrorKind(err))
		toast.FromContext(ctx).Notify(ctx, toast.LevelError, UserMessage(err))
		err = notifiedError{err}
	}()

	var payload io.Reader
	if body != nil && method != http.MethodGet && method != http.MethodDelete {
		encoded, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			err = fmt.Errorf("encode request body: %w", marshalErr)
			return
		}
		payload = bytes.NewReader(encoded)
	}

	status, raw, err := c.send(ctx, method, url, payload)
	if err != nil {
		return
	}

	if status < 200 || status > 299 {
		err = &RequestFailedError{Status: status, Message: failureMessage(raw)}
		return
	}
	if decodeErr := json.Unmarshal(raw, &env); decodeErr != nil {
		err = &DecodeError{Status: status, Err: decodeErr}
		return
	}
	return env, nil
}

func (c *Client) send(ctx context.Context, method, url string, payload io.Reader) (int, []byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return 0, nil, &TransportError{Method: method, URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for _, cookie := range cookiesFrom(ctx) {
		req.AddCookie(cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Method: method, URL: url, Err: err}
	}
	return resp.StatusCode, raw, nil
}

func failureMessage(raw []byte) string {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil || strings.TrimSpace(env.Message) == "" {
		return FallbackMessage
	}
	return env.Message
}

// CheckAuth asks the backend whether the viewer's session is valid. The
// check lives outside the API root and never notifies the viewer; it fails
// only when no JSON answer was obtained.
func (c *Client) CheckAuth(ctx context.Context) (status AuthStatus, err error) {
	url := c.origin + "/auth/check"
	logger := logging.Component(ctx, c.logger, "apiclient", "check_auth")

	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "auth check failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "auth check completed", "authenticated", status.Authenticated)
	}()

	code, raw, err := c.send(ctx, http.MethodGet, url, nil)
	if err != nil {
		return status, err
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		User    *struct {
			Name string `json:"name"`
		} `json:"user"`
	}
	if decodeErr := json.Unmarshal(raw, &body); decodeErr != nil {
		err = &DecodeError{Status: code, Err: decodeErr}
		return status, err
	}

	status = AuthStatus{Authenticated: body.Success, Message: body.Message}
	if body.User != nil {
		status.UserName = body.User.Name
	}
	return status, nil
}
