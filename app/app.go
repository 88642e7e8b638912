// Package app is the presentation layer: it owns the current route, shows notices and
// turns user actions into calls on the domain services.
package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-journal-client/apiclient"
	"github.com/jrsteele09/go-journal-client/auth"
	"github.com/jrsteele09/go-journal-client/journal"
	"github.com/jrsteele09/go-journal-client/oauth"
	"github.com/jrsteele09/go-journal-client/session"
	"github.com/jrsteele09/go-journal-client/users"
)

// SessionWatcher reports credential changes made by other processes.
type SessionWatcher interface {
	OnChange(callback func(session.Changed)) func()
}

type Options struct {
	// Handshake enables Google login. Nil disables it.
	Handshake *oauth.Handshake
	// OpenBrowser sends the user to the provider. Defaults to doing nothing.
	OpenBrowser func(string) error
	// SessionChanges, when set, tears down protected views after an external logout.
	SessionChanges SessionWatcher
}

type App struct {
	api         *apiclient.Client
	auth        *auth.Service
	users       *users.Service
	journal     *journal.Service
	handshake   *oauth.Handshake
	openBrowser func(string) error
	nav         *Navigator
	notifier    Notifier

	mu          sync.Mutex
	username    string
	unsubscribe []func()
}

func New(api *apiclient.Client, notifier Notifier, opts Options) *App {
	a := &App{
		api:         api,
		auth:        auth.NewService(api),
		users:       users.NewService(api),
		journal:     journal.NewService(api),
		handshake:   opts.Handshake,
		openBrowser: opts.OpenBrowser,
		notifier:    notifier,
	}
	if a.openBrowser == nil {
		a.openBrowser = func(string) error { return nil }
	}

	start := RouteLogin
	if session.StateOf(api.Store()) == session.Authenticated {
		start = RouteDashboard
	}
	a.nav = NewNavigator(start)

	a.unsubscribe = append(a.unsubscribe, api.OnSessionInvalidated(a.onSessionInvalidated))
	if opts.SessionChanges != nil {
		a.unsubscribe = append(a.unsubscribe, opts.SessionChanges.OnChange(a.onSessionChanged))
	}
	return a
}

// Close detaches the app from session events.
func (a *App) Close() {
	a.mu.Lock()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()
	for _, u := range unsubscribe {
		u()
	}
}

func (a *App) Navigator() *Navigator {
	return a.nav
}

func (a *App) State() session.State {
	return a.auth.State()
}

// Open shows route, redirecting anonymous users away from protected routes.
func (a *App) Open(route string) string {
	route = Resolve(route)
	if IsProtected(route) && a.State() == session.Anonymous {
		a.notify(LevelError, MsgLoginRequired)
		return a.nav.Navigate(RouteLogin)
	}
	return a.nav.Navigate(route)
}

func (a *App) onSessionInvalidated(evt apiclient.SessionInvalidated) {
	log.Info().Str("path", evt.Path).Msg("returning to login after session invalidation")
	a.forgetUser()
	if a.nav.Current() != RouteLogin {
		a.notify(LevelError, MsgSessionExpired)
	}
	a.nav.Navigate(RouteLogin)
}

func (a *App) onSessionChanged(c session.Changed) {
	if c.State == session.Authenticated {
		return
	}
	a.forgetUser()
	if IsProtected(a.nav.Current()) {
		a.notify(LevelInfo, MsgLoggedOutElsewhere)
		a.nav.Navigate(RouteLogin)
	}
}

func (a *App) notify(level Level, msg string) {
	a.notifier.Notify(Notice{Level: level, Message: msg})
}

func (a *App) forgetUser() {
	a.mu.Lock()
	a.username = ""
	a.mu.Unlock()
}

func (a *App) rememberUser(username string) {
	a.mu.Lock()
	a.username = username
	a.mu.Unlock()
}

func (a *App) cachedUser() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.username
}
