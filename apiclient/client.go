// Package apiclient is the single path every backend call takes. It attaches the session
// credential to outgoing requests and tears the session down when the backend rejects it.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-journal-client/internal/errors"
	"github.com/jrsteele09/go-journal-client/internal/events"
	"github.com/jrsteele09/go-journal-client/session"
)

const (
	authorizationHeader = "Authorization"
	requestIDHeader     = "X-Request-ID"
	bearerPrefix        = "Bearer "
)

// SessionInvalidated is emitted after the backend answered 401 and the credential was cleared.
type SessionInvalidated struct {
	Method     string
	Path       string
	StatusCode int
	At         time.Time
}

type Option func(*Client)

// WithHTTPClient sets the transport. The default client has no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClock overrides the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// Client is the authenticated API client.
type Client struct {
	rc          *resty.Client
	httpClient  *http.Client
	store       session.Store
	invalidated *events.Bus[SessionInvalidated]
	now         func() time.Time
}

func New(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{},
		store:       store,
		invalidated: events.NewBus[SessionInvalidated](),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	rc := resty.NewWithClient(c.httpClient)
	rc.SetBaseURL(strings.TrimRight(baseURL, "/"))
	rc.SetRetryCount(0)
	rc.SetLogger(restyLogger{})
	rc.OnBeforeRequest(encodeBody)
	rc.OnBeforeRequest(c.attachCredential)
	rc.OnAfterResponse(c.enforceAuthorization)
	c.rc = rc
	return c
}

// BaseURL is the backend address every path is resolved against.
func (c *Client) BaseURL() string {
	return c.rc.BaseURL
}

// Store returns the session store the client reads the credential from.
func (c *Client) Store() session.Store {
	return c.store
}

// OnSessionInvalidated registers callback for 401 teardowns and returns its unsubscribe func.
func (c *Client) OnSessionInvalidated(callback func(SessionInvalidated)) func() {
	sub := c.invalidated.Subscribe(callback)
	return func() { c.invalidated.Unsubscribe(sub) }
}

func (c *Client) NewRequest(queryParams map[string]string, body any) *resty.Request {
	req := c.rc.NewRequest().SetQueryParams(queryParams)
	if body != nil {
		req.SetBody(body)
	}
	return req
}

func (c *Client) Get(ctx context.Context, path string, req *resty.Request, res any) error {
	return c.send(ctx, resty.MethodGet, path, req, res)
}

func (c *Client) Post(ctx context.Context, path string, req *resty.Request, res any) error {
	return c.send(ctx, resty.MethodPost, path, req, res)
}

func (c *Client) Put(ctx context.Context, path string, req *resty.Request, res any) error {
	return c.send(ctx, resty.MethodPut, path, req, res)
}

func (c *Client) Delete(ctx context.Context, path string, req *resty.Request, res any) error {
	return c.send(ctx, resty.MethodDelete, path, req, res)
}

func (c *Client) send(ctx context.Context, method, path string, req *resty.Request, res any) error {
	if req == nil {
		req = c.rc.NewRequest()
	}
	req.SetContext(ctx)

	resp, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Wrapf(ctxErr, "%s %s", method, path)
		}
		log.Err(err).Str("method", method).Str("path", path).Msg("backend unreachable")
		return fmt.Errorf("%w: %s %s: %w", errors.ErrTransport, method, path, err)
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode()).
		Dur("elapsed", resp.Time()).
		Msg("backend call")

	if !resp.IsSuccess() {
		return newError(method, path, resp.StatusCode(), resp.Body())
	}
	if res == nil || len(bytes.TrimSpace(resp.Body())) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), res); err != nil {
		return errors.Wrapf(err, "decoding %s %s response", method, path)
	}
	return nil
}

// attachCredential reads the store on every request so a login or logout takes effect
// for the very next call.
func (c *Client) attachCredential(_ *resty.Client, req *resty.Request) error {
	req.Header.Del(authorizationHeader)
	if token, ok := c.store.Get(); ok {
		req.Header.Set(authorizationHeader, bearerPrefix+token)
	}
	req.Header.Set(requestIDHeader, uuid.NewString())
	return nil
}

// enforceAuthorization applies to every response regardless of endpoint. The typed error
// for the caller is built in send.
func (c *Client) enforceAuthorization(_ *resty.Client, resp *resty.Response) error {
	if resp.StatusCode() != http.StatusUnauthorized {
		return nil
	}
	evt := SessionInvalidated{
		Method:     resp.Request.Method,
		Path:       requestPath(resp),
		StatusCode: resp.StatusCode(),
		At:         c.now(),
	}
	if err := c.store.Clear(); err != nil {
		log.Err(err).Msg("clearing session after unauthorized response")
	}
	log.Warn().Str("method", evt.Method).Str("path", evt.Path).Msg("session invalidated by backend")
	c.invalidated.Emit(evt)
	return nil
}

func requestPath(resp *resty.Response) string {
	if resp.Request.RawRequest != nil && resp.Request.RawRequest.URL != nil {
		return resp.Request.RawRequest.URL.Path
	}
	return resp.Request.URL
}

func encodeBody(_ *resty.Client, req *resty.Request) error {
	if req.Body == nil {
		return nil
	}
	switch req.Body.(type) {
	case []byte, string:
		return nil
	}
	data, err := json.Marshal(req.Body)
	if err != nil {
		return errors.Wrapf(err, "encoding request body")
	}
	req.Body = data
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return nil
}

// restyLogger routes resty's own diagnostics into zerolog.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	log.Error().Msgf(strings.TrimSpace(format), v...)
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	log.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	log.Debug().Msgf(strings.TrimSpace(format), v...)
}
