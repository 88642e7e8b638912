package oauth_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-journal-client/apiclient"
	"github.com/jrsteele09/go-journal-client/auth"
	"github.com/jrsteele09/go-journal-client/internal/errors"
	"github.com/jrsteele09/go-journal-client/internal/fakebackend"
	"github.com/jrsteele09/go-journal-client/oauth"
	"github.com/jrsteele09/go-journal-client/session"
)

const (
	testClientID    = "client-123.apps.googleusercontent.com"
	testRedirectURL = "http://localhost:5173/login/auth/google/callback"
	testCode        = "4/0AX-good-code"
	testUsername    = "jane"
)

type testFixture struct {
	backend   *fakebackend.Backend
	store     *session.MemoryStore
	flows     *oauth.InMemoryFlowRepo
	now       time.Time
	handshake *oauth.Handshake
}

func testConfig(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    testClientID,
		RedirectURL: redirectURL,
		Scopes:      []string{"email", "profile"},
		Endpoint:    oauth.GoogleEndpoint(),
	}
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	return setupTestFixtureWithRedirect(t, testRedirectURL)
}

func setupTestFixtureWithRedirect(t *testing.T, redirectURL string) *testFixture {
	t.Helper()
	f := &testFixture{
		backend: fakebackend.New(t),
		store:   session.NewMemoryStore(),
		flows:   oauth.NewInMemoryFlowRepo(),
		now:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	exchanger := auth.NewService(apiclient.New(f.backend.URL, f.store))
	f.handshake = oauth.NewHandshake(testConfig(redirectURL), exchanger, f.store,
		oauth.WithFlowRepo(f.flows),
		oauth.WithNowTime(func() time.Time { return f.now }),
	)
	return f
}

func (f *testFixture) exchangeCalls() int {
	return len(f.backend.Calls(http.MethodGet, auth.GoogleCallbackPath))
}

func TestBegin(t *testing.T) {
	f := setupTestFixture(t)

	raw, err := f.handshake.Begin("")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "accounts.google.com", u.Host)
	require.Equal(t, "/o/oauth2/v2/auth", u.Path)

	q := u.Query()
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, testRedirectURL, q.Get("redirect_uri"))
	require.Equal(t, "email profile", q.Get("scope"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "offline", q.Get("access_type"))
	require.Equal(t, "consent", q.Get("prompt"))
	require.NotEmpty(t, q.Get("state"))

	flow, err := f.flows.Get(q.Get("state"))
	require.NoError(t, err)
	require.Equal(t, oauth.DefaultSuccessRoute, flow.ReturnRoute)
	require.Zero(t, f.exchangeCalls(), "initiation never calls the backend")
}

func TestComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing code fails without a backend call", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.handshake.Complete(ctx, url.Values{})
		require.True(t, errors.Is(err, errors.ErrCodeNotFound))
		require.False(t, errors.Is(err, errors.ErrProviderDenied))

		_, err = f.handshake.Complete(ctx, url.Values{"error": {"access_denied"}})
		require.True(t, errors.Is(err, errors.ErrCodeNotFound))
		require.True(t, errors.Is(err, errors.ErrProviderDenied))
		require.Contains(t, err.Error(), "access_denied")

		require.Zero(t, f.exchangeCalls())
		require.Equal(t, session.Anonymous, session.StateOf(f.store))
	})

	t.Run("Valid code is exchanged exactly once and stored", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.AddOAuthCode(testCode, testUsername)

		res, err := f.handshake.Complete(ctx, url.Values{"code": {testCode}})
		require.NoError(t, err)
		require.True(t, res.TokenStored)
		require.Equal(t, oauth.DefaultSuccessRoute, res.Next)
		require.Equal(t, 1, f.exchangeCalls())
		require.Equal(t, session.Authenticated, session.StateOf(f.store))

		calls := f.backend.Calls(http.MethodGet, auth.GoogleCallbackPath)
		require.Equal(t, "code="+url.QueryEscape(testCode), calls[0].Query)
	})

	t.Run("Success without a token still completes", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.AddOAuthCode(testCode, testUsername)
		f.backend.WithholdTokens(true)

		res, err := f.handshake.Complete(ctx, url.Values{"code": {testCode}})
		require.NoError(t, err)
		require.False(t, res.TokenStored)
		require.Equal(t, oauth.DefaultSuccessRoute, res.Next)
		require.Equal(t, session.Anonymous, session.StateOf(f.store))
	})

	t.Run("Invalid code stores nothing and surfaces the backend message", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.handshake.Complete(ctx, url.Values{"code": {"bogus"}})
		require.Error(t, err)
		require.Equal(t, "Invalid authorization code", apiclient.MessageOr(err, "Google login failed."))
		require.Equal(t, 1, f.exchangeCalls())
		require.Equal(t, session.Anonymous, session.StateOf(f.store))
	})

	t.Run("Failure without a message uses the fallback", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.FailNext(http.MethodGet, auth.GoogleCallbackPath, http.StatusBadGateway, "")

		_, err := f.handshake.Complete(ctx, url.Values{"code": {testCode}})
		require.Equal(t, "Google login failed.", apiclient.MessageOr(err, "Google login failed."))
	})

	t.Run("Repeated callbacks are not deduplicated", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.AddOAuthCode(testCode, testUsername)

		_, err := f.handshake.Complete(ctx, url.Values{"code": {testCode}})
		require.NoError(t, err)
		require.NoError(t, f.store.Clear())

		_, err = f.handshake.Complete(ctx, url.Values{"code": {testCode}})
		require.Error(t, err, "the stale code reaches the backend and its rejection is surfaced")
		require.Equal(t, 2, f.exchangeCalls())
		require.Equal(t, session.Anonymous, session.StateOf(f.store))
	})

	t.Run("Known state is consumed and selects the return route", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.AddOAuthCode(testCode, testUsername)

		raw, err := f.handshake.Begin("/entry/new")
		require.NoError(t, err)
		u, _ := url.Parse(raw)
		state := u.Query().Get("state")

		res, err := f.handshake.Complete(ctx, url.Values{"code": {testCode}, "state": {state}})
		require.NoError(t, err)
		require.Equal(t, "/entry/new", res.Next)

		_, err = f.flows.Get(state)
		require.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("Unknown state still exchanges the code", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.AddOAuthCode(testCode, testUsername)

		res, err := f.handshake.Complete(ctx, url.Values{"code": {testCode}, "state": {"forged"}})
		require.NoError(t, err)
		require.True(t, res.TokenStored)
		require.Equal(t, oauth.DefaultSuccessRoute, res.Next)
		require.Equal(t, 1, f.exchangeCalls())
	})

	t.Run("Expired flow falls back to the dashboard", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.AddOAuthCode(testCode, testUsername)
		raw, err := f.handshake.Begin("/entry/new")
		require.NoError(t, err)
		u, _ := url.Parse(raw)
		state := u.Query().Get("state")

		f.now = f.now.Add(time.Hour)
		res, err := f.handshake.Complete(ctx, url.Values{"code": {testCode}, "state": {state}})
		require.NoError(t, err)
		require.Equal(t, oauth.DefaultSuccessRoute, res.Next)
		require.Equal(t, 1, f.exchangeCalls())

		_, err = f.flows.Get(state)
		require.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("Callback after a restart reaches the backend", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.AddOAuthCode(testCode, testUsername)
		raw, err := f.handshake.Begin("")
		require.NoError(t, err)
		u, _ := url.Parse(raw)

		restarted := oauth.NewHandshake(testConfig(testRedirectURL),
			auth.NewService(apiclient.New(f.backend.URL, f.store)), f.store)
		res, err := restarted.Complete(ctx, url.Values{"code": {testCode}, "state": {u.Query().Get("state")}})
		require.NoError(t, err)
		require.True(t, res.TokenStored)
		require.Equal(t, 1, f.exchangeCalls())
		require.Equal(t, session.Authenticated, session.StateOf(f.store))
	})

	t.Run("Stale code with unknown state fails at the backend", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.handshake.Complete(ctx, url.Values{"code": {"used-code"}, "state": {"forged"}})
		require.True(t, errors.Is(err, errors.ErrRequestFailed))
		require.Equal(t, "Invalid authorization code", apiclient.MessageOr(err, ""))
		require.Equal(t, 1, f.exchangeCalls())
		require.Equal(t, session.Anonymous, session.StateOf(f.store))
	})

	t.Run("Session teardown applies to the exchange call", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.store.Set("stale"))
		f.backend.FailNext(http.MethodGet, auth.GoogleCallbackPath, http.StatusUnauthorized, "Unauthorized")

		_, err := f.handshake.Complete(ctx, url.Values{"code": {testCode}})
		require.True(t, errors.Is(err, errors.ErrSessionInvalidated))
		require.Equal(t, session.Anonymous, session.StateOf(f.store))
	})
}

func TestFlowRepo(t *testing.T) {
	repo := oauth.NewInMemoryFlowRepo()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Error(t, repo.Upsert("", &oauth.FlowState{}))
	require.Error(t, repo.Upsert("s", nil))
	require.NoError(t, repo.Upsert("old", &oauth.FlowState{CreatedAt: start}))
	require.NoError(t, repo.Upsert("new", &oauth.FlowState{CreatedAt: start.Add(time.Hour), ReturnRoute: "/dashboard"}))

	got, err := repo.Get("new")
	require.NoError(t, err)
	got.ReturnRoute = "/mutated"
	again, _ := repo.Get("new")
	require.Equal(t, "/dashboard", again.ReturnRoute, "repo hands out copies")

	require.Equal(t, 1, repo.Prune(start.Add(30*time.Minute)))
	_, err = repo.Get("old")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, repo.Delete("new"))
	require.Error(t, repo.Delete(""))
}
