// Package oauth runs the browser redirect handshake with the identity provider. The client
// only starts the flow and relays the returned code; the backend redeems it.
package oauth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-journal-client/internal/errors"
	"github.com/jrsteele09/go-journal-client/session"
)

const (
	DefaultSuccessRoute = "/dashboard"
	defaultFlowTTL      = 10 * time.Minute
)

// CodeExchanger redeems an authorization code at the backend. An empty token with a nil
// error means the backend accepted the code without issuing a credential.
type CodeExchanger interface {
	ExchangeGoogleCode(ctx context.Context, code string) (string, error)
}

// Result of a completed callback.
type Result struct {
	// TokenStored reports whether the backend issued a credential that is now stored.
	TokenStored bool
	// Next is the route to show after a successful exchange.
	Next string
}

type Option func(*Handshake)

// WithFlowRepo replaces the in-memory pending flow store.
func WithFlowRepo(flows FlowRepo) Option {
	return func(h *Handshake) {
		h.flows = flows
	}
}

// WithNowTime sets the time source (primarily for testing).
func WithNowTime(now func() time.Time) Option {
	return func(h *Handshake) {
		h.now = now
	}
}

// WithFlowTTL bounds how long a started flow may wait for its callback.
func WithFlowTTL(ttl time.Duration) Option {
	return func(h *Handshake) {
		h.flowTTL = ttl
	}
}

// Handshake starts and completes the OAuth redirect flow.
type Handshake struct {
	config    *oauth2.Config
	exchanger CodeExchanger
	store     session.Store
	flows     FlowRepo
	now       func() time.Time
	flowTTL   time.Duration
}

func NewHandshake(config *oauth2.Config, exchanger CodeExchanger, store session.Store, opts ...Option) *Handshake {
	h := &Handshake{
		config:    config,
		exchanger: exchanger,
		store:     store,
		flows:     NewInMemoryFlowRepo(),
		now:       time.Now,
		flowTTL:   defaultFlowTTL,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RedirectURL is the fixed callback address registered with the provider.
func (h *Handshake) RedirectURL() string {
	return h.config.RedirectURL
}

// Configured reports whether a client id is set, which Begin needs.
func (h *Handshake) Configured() bool {
	return h.config != nil && h.config.ClientID != ""
}

// Begin records a pending flow and returns the provider authorization URL to send the user to.
// returnRoute overrides where a successful callback leads; empty means the dashboard.
func (h *Handshake) Begin(returnRoute string) (string, error) {
	if returnRoute == "" {
		returnRoute = DefaultSuccessRoute
	}
	if p, ok := h.flows.(interface{ Prune(time.Time) int }); ok && h.flowTTL > 0 {
		p.Prune(h.now().Add(-h.flowTTL))
	}
	state := uuid.NewString()
	if err := h.flows.Upsert(state, &FlowState{ReturnRoute: returnRoute, CreatedAt: h.now()}); err != nil {
		return "", errors.Wrapf(err, "recording oauth flow")
	}
	authURL := h.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	log.Debug().Str("state", state).Msg("oauth flow started")
	return authURL, nil
}

// Complete handles the provider's redirect back to the client. Each call makes at most one
// exchange request; repeated callbacks with the same code are not deduplicated.
func (h *Handshake) Complete(ctx context.Context, query url.Values) (*Result, error) {
	code := strings.TrimSpace(query.Get("code"))
	if code == "" {
		if providerErr := query.Get("error"); providerErr != "" {
			log.Warn().Str("error", providerErr).Msg("provider returned no authorization code")
			return nil, fmt.Errorf("%w: provider returned %s: %w", errors.ErrCodeNotFound, providerErr, errors.ErrProviderDenied)
		}
		return nil, errors.ErrCodeNotFound
	}

	next := h.consumeState(query.Get("state"))

	token, err := h.exchanger.ExchangeGoogleCode(ctx, code)
	if err != nil {
		log.Err(err).Msg("authorization code exchange failed")
		return nil, err
	}

	res := &Result{Next: next}
	if token != "" {
		if err := h.store.Set(token); err != nil {
			return nil, errors.Wrapf(err, "storing credential")
		}
		res.TokenStored = true
	}
	log.Info().Bool("token_stored", res.TokenStored).Msg("oauth login completed")
	return res, nil
}

// consumeState removes the pending flow named by state and returns its return route. The
// state only picks the route: a missing, unknown or expired state falls back to the
// dashboard and the code is still exchanged, so the backend decides whether it is valid.
func (h *Handshake) consumeState(state string) string {
	if state == "" {
		return DefaultSuccessRoute
	}
	flow, err := h.flows.Get(state)
	if err != nil {
		log.Warn().Str("state", state).Msg("callback state does not match a pending flow")
		return DefaultSuccessRoute
	}
	if err := h.flows.Delete(state); err != nil {
		log.Warn().Err(err).Str("state", state).Msg("removing oauth flow")
	}
	if h.flowTTL > 0 && h.now().Sub(flow.CreatedAt) > h.flowTTL {
		log.Warn().Str("state", state).Msg("callback state belongs to an expired flow")
		return DefaultSuccessRoute
	}
	return flow.ReturnRoute
}
