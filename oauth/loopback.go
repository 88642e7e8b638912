package oauth

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-journal-client/internal/errors"
)

const (
	callbackServerShutdownTimeout = 5 * time.Second
	callbackReadHeaderTimeout     = 10 * time.Second
)

// LoopbackResult is delivered once per loopback session.
type LoopbackResult struct {
	Result *Result
	Err    error
}

// LoopbackSession is a running callback listener.
type LoopbackSession struct {
	// AuthURL is where the user has been sent.
	AuthURL string
	// Result receives exactly one value.
	Result <-chan LoopbackResult
	// Cancel stops waiting. It is idempotent.
	Cancel func()
}

// closeWindowHTML renders the page the browser lands on after the redirect.
func closeWindowHTML(message string) string {
	return fmt.Sprintf(`<html><script>window.close()</script><body>%s. You can close this window.</body></html>`,
		html.EscapeString(message))
}

// RunLoopback listens on the handshake's redirect address, starts a flow and opens the
// browser. The first callback completes the handshake and shuts the listener down.
func RunLoopback(h *Handshake, returnRoute string, openBrowser func(string) error) (*LoopbackSession, error) {
	redirect, err := url.Parse(h.RedirectURL())
	if err != nil || redirect.Host == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "redirect url %q", h.RedirectURL())
	}
	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, errors.Wrapf(err, "listening for oauth callback on %s", redirect.Host)
	}
	authURL, err := h.Begin(returnRoute)
	if err != nil {
		listener.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	resultChan := make(chan LoopbackResult, 1)
	session := &LoopbackSession{
		AuthURL: authURL,
		Result:  resultChan,
		Cancel: func() {
			select {
			case <-ctx.Done():
			default:
				cancel()
				select {
				case resultChan <- LoopbackResult{Err: errors.ErrCancelled}:
				default:
				}
			}
		},
	}

	go serveCallback(ctx, cancel, h, listener, redirect.Path, resultChan)

	if err := openBrowser(authURL); err != nil {
		// The user can still open the URL by hand.
		log.Warn().Err(err).Str("url", authURL).Msg("failed to open browser automatically")
	}
	return session, nil
}

func serveCallback(ctx context.Context, cancel context.CancelFunc, h *Handshake, listener net.Listener, path string, resultChan chan<- LoopbackResult) {
	defer cancel()
	if path == "" {
		path = "/"
	}

	var (
		once           sync.Once
		wg             sync.WaitGroup
		claimed        atomic.Bool
		shutdownSignal = make(chan struct{})
	)
	deliver := func(res LoopbackResult) {
		once.Do(func() {
			select {
			case resultChan <- res:
			default:
			}
			close(shutdownSignal)
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+path, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-ctx.Done():
			http.Error(w, closeWindowHTML("Authentication cancelled"), http.StatusServiceUnavailable)
			return
		default:
		}
		// Only the first callback runs the exchange.
		if !claimed.CompareAndSwap(false, true) {
			http.Error(w, closeWindowHTML("Authentication already handled"), http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		res, err := h.Complete(r.Context(), r.URL.Query())
		if err != nil {
			message := "Authentication failed"
			if errors.Is(err, errors.ErrProviderDenied) {
				message = "Sign-in was denied"
			}
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprint(w, closeWindowHTML(message))
			deliver(LoopbackResult{Err: err})
			return
		}
		_, _ = fmt.Fprint(w, closeWindowHTML("Authentication successful"))
		deliver(LoopbackResult{Result: res})
	})

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: callbackReadHeaderTimeout,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Debug().Str("addr", listener.Addr().String()).Msg("oauth callback server started")
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			deliver(LoopbackResult{Err: errors.Wrapf(err, "callback server")})
		}
		log.Debug().Msg("oauth callback server stopped")
	}()

	select {
	case <-shutdownSignal:
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), callbackServerShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Debug().Err(err).Msg("oauth callback server shutdown")
		_ = server.Close()
	}
	wg.Wait()
}
