package oauth_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-journal-client/internal/errors"
	"github.com/jrsteele09/go-journal-client/oauth"
	"github.com/jrsteele09/go-journal-client/session"
)

func freeLoopbackRedirect(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return fmt.Sprintf("http://%s/login/auth/google/callback", addr)
}

// browser simulates the provider redirecting the user back with the given extra query.
func browser(t *testing.T, redirectURL string, extra url.Values, pages chan<- string) func(string) error {
	t.Helper()
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		q := url.Values{"state": {u.Query().Get("state")}}
		for k, v := range extra {
			q[k] = v
		}
		go func() {
			resp, err := http.Get(redirectURL + "?" + q.Encode())
			if err != nil {
				pages <- err.Error()
				return
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			pages <- string(body)
		}()
		return nil
	}
}

func waitResult(t *testing.T, s *oauth.LoopbackSession) oauth.LoopbackResult {
	t.Helper()
	select {
	case res := <-s.Result:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the oauth callback")
		return oauth.LoopbackResult{}
	}
}

func TestRunLoopback(t *testing.T) {
	t.Run("Completes on callback", func(t *testing.T) {
		redirect := freeLoopbackRedirect(t)
		f := setupTestFixtureWithRedirect(t, redirect)
		f.backend.AddOAuthCode(testCode, testUsername)
		pages := make(chan string, 1)

		s, err := oauth.RunLoopback(f.handshake, "", browser(t, redirect, url.Values{"code": {testCode}}, pages))
		require.NoError(t, err)
		require.Contains(t, s.AuthURL, "state=")

		res := waitResult(t, s)
		require.NoError(t, res.Err)
		require.True(t, res.Result.TokenStored)
		require.Equal(t, oauth.DefaultSuccessRoute, res.Result.Next)
		require.Contains(t, <-pages, "Authentication successful")
		require.Equal(t, session.Authenticated, session.StateOf(f.store))
		s.Cancel()
	})

	t.Run("Reports a provider denial", func(t *testing.T) {
		redirect := freeLoopbackRedirect(t)
		f := setupTestFixtureWithRedirect(t, redirect)
		pages := make(chan string, 1)

		s, err := oauth.RunLoopback(f.handshake, "", browser(t, redirect, url.Values{"error": {"access_denied"}}, pages))
		require.NoError(t, err)

		res := waitResult(t, s)
		require.True(t, errors.Is(res.Err, errors.ErrCodeNotFound))
		require.True(t, errors.Is(res.Err, errors.ErrProviderDenied))
		require.Contains(t, <-pages, "Sign-in was denied")
		require.Zero(t, f.exchangeCalls())
	})

	t.Run("Reports a missing code", func(t *testing.T) {
		redirect := freeLoopbackRedirect(t)
		f := setupTestFixtureWithRedirect(t, redirect)
		pages := make(chan string, 1)

		s, err := oauth.RunLoopback(f.handshake, "", browser(t, redirect, url.Values{}, pages))
		require.NoError(t, err)

		res := waitResult(t, s)
		require.True(t, errors.Is(res.Err, errors.ErrCodeNotFound))
		require.False(t, errors.Is(res.Err, errors.ErrProviderDenied))
		require.Contains(t, <-pages, "Authentication failed")
		require.Zero(t, f.exchangeCalls())
	})

	t.Run("Cancel delivers a cancellation", func(t *testing.T) {
		redirect := freeLoopbackRedirect(t)
		f := setupTestFixtureWithRedirect(t, redirect)
		opened := ""

		s, err := oauth.RunLoopback(f.handshake, "", func(u string) error {
			opened = u
			return fmt.Errorf("no browser available")
		})
		require.NoError(t, err)
		require.Equal(t, s.AuthURL, opened)

		s.Cancel()
		s.Cancel()
		res := waitResult(t, s)
		require.True(t, errors.Is(res.Err, errors.ErrCancelled))
	})

	t.Run("Address in use", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer l.Close()

		f := setupTestFixtureWithRedirect(t, "http://"+l.Addr().String()+"/callback")
		_, err = oauth.RunLoopback(f.handshake, "", func(string) error { return nil })
		require.Error(t, err)
	})
}

// blockingExchanger holds every exchange until released.
type blockingExchanger struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingExchanger) ExchangeGoogleCode(context.Context, string) (string, error) {
	b.calls.Add(1)
	b.entered <- struct{}{}
	<-b.release
	return "tok-google", nil
}

func TestRunLoopbackHandlesOneCallback(t *testing.T) {
	redirect := freeLoopbackRedirect(t)
	store := session.NewMemoryStore()
	exchanger := &blockingExchanger{entered: make(chan struct{}, 2), release: make(chan struct{})}
	h := oauth.NewHandshake(testConfig(redirect), exchanger, store)
	pages := make(chan string, 1)

	s, err := oauth.RunLoopback(h, "", browser(t, redirect, url.Values{"code": {testCode}}, pages))
	require.NoError(t, err)
	defer s.Cancel()

	select {
	case <-exchanger.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first callback never reached the exchange")
	}

	resp, err := http.Get(redirect + "?code=" + url.QueryEscape(testCode))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, string(body), "Authentication already handled")

	close(exchanger.release)
	res := waitResult(t, s)
	require.NoError(t, res.Err)
	require.True(t, res.Result.TokenStored)
	require.Contains(t, <-pages, "Authentication successful")
	require.Equal(t, int32(1), exchanger.calls.Load())
}
