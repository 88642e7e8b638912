package app

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-journal-client/internal/errors"
	"github.com/jrsteele09/go-journal-client/journal"
	"github.com/jrsteele09/go-journal-client/oauth"
	"github.com/jrsteele09/go-journal-client/session"
)

// DashboardView is what the dashboard shows.
type DashboardView struct {
	Username string
	Entries  []journal.Entry
}

// StatusView describes the current session for display.
type StatusView struct {
	State  session.State
	Route  string
	Claims *session.Claims
}

func (a *App) Login(ctx context.Context, username, password string) error {
	a.nav.Navigate(RouteLogin)
	if err := a.auth.Login(ctx, username, password); err != nil {
		a.notify(LevelError, describe(err, MsgLoginFailed))
		return err
	}
	a.forgetUser()
	a.notify(LevelSuccess, MsgLoginOK)
	a.Open(RouteDashboard)
	return nil
}

func (a *App) SignUp(ctx context.Context, email, username, password string) error {
	a.nav.Navigate(RouteSignup)
	if err := a.auth.SignUp(ctx, email, username, password); err != nil {
		a.notify(LevelError, describe(err, MsgSignupFailed))
		return err
	}
	a.forgetUser()
	a.notify(LevelSuccess, MsgSignupOK)
	a.Open(RouteDashboard)
	return nil
}

// Logout always leaves the client anonymous on the login route.
func (a *App) Logout() error {
	err := a.auth.Logout()
	a.forgetUser()
	a.nav.Navigate(RouteLogin)
	if err != nil {
		a.notify(LevelError, err.Error())
		return err
	}
	a.notify(LevelInfo, MsgLoggedOut)
	return nil
}

// GoogleEnabled reports whether Google login can be started.
func (a *App) GoogleEnabled() bool {
	return a.handshake != nil && a.handshake.Configured()
}

// BeginGoogleLogin opens the provider consent page and listens for its callback.
func (a *App) BeginGoogleLogin() (*oauth.LoopbackSession, error) {
	if !a.GoogleEnabled() {
		a.notify(LevelError, MsgGoogleOff)
		return nil, errors.Wrapf(errors.ErrInvalidInput, "google login is not configured")
	}
	s, err := oauth.RunLoopback(a.handshake, RouteDashboard, a.openBrowser)
	if err != nil {
		a.notify(LevelError, describe(err, MsgGoogleFailed))
		return nil, err
	}
	a.nav.Navigate(RouteOAuthCallback)
	a.notify(LevelInfo, MsgGoogleWaiting)
	return s, nil
}

// AwaitGoogleLogin waits for the loopback session started by BeginGoogleLogin.
func (a *App) AwaitGoogleLogin(ctx context.Context, s *oauth.LoopbackSession) error {
	select {
	case res := <-s.Result:
		return a.finishGoogleLogin(res.Result, res.Err)
	case <-ctx.Done():
		s.Cancel()
		return a.finishGoogleLogin(nil, errors.Wrapf(errors.ErrCancelled, "%v", ctx.Err()))
	}
}

// CompleteGoogleLogin handles a callback address pasted by the user. It accepts the full
// callback URL or just its query string.
func (a *App) CompleteGoogleLogin(ctx context.Context, callback string) error {
	if a.handshake == nil {
		a.notify(LevelError, MsgGoogleOff)
		return errors.Wrapf(errors.ErrInvalidInput, "google login is not configured")
	}
	a.nav.Navigate(RouteOAuthCallback)
	res, err := a.handshake.Complete(ctx, callbackQuery(callback))
	return a.finishGoogleLogin(res, err)
}

func (a *App) finishGoogleLogin(res *oauth.Result, err error) error {
	if err != nil {
		a.notify(LevelError, describe(err, MsgGoogleFailed))
		a.nav.Navigate(RouteLogin)
		return err
	}
	a.forgetUser()
	a.notify(LevelSuccess, MsgGoogleOK)
	a.Open(res.Next)
	return nil
}

func callbackQuery(callback string) url.Values {
	callback = strings.TrimSpace(callback)
	if u, err := url.Parse(callback); err == nil && (u.Scheme != "" || strings.HasPrefix(callback, "/")) {
		return u.Query()
	}
	q, err := url.ParseQuery(strings.TrimPrefix(callback, "?"))
	if err != nil {
		return url.Values{}
	}
	return q
}

// Dashboard loads the user and their entries. Each failure is reported on its own; the
// view is returned with whatever could be loaded.
func (a *App) Dashboard(ctx context.Context) (*DashboardView, error) {
	if a.Open(RouteDashboard) != RouteDashboard {
		return nil, errors.ErrNotLoggedIn
	}
	view := &DashboardView{Entries: []journal.Entry{}}

	u, err := a.users.Me(ctx)
	if err != nil {
		a.notify(LevelError, MsgUserFailed)
		if errors.Is(err, errors.ErrSessionInvalidated) {
			return nil, err
		}
	} else {
		a.rememberUser(u.Username)
		view.Username = u.Username
	}

	entries, err := a.journal.List(ctx)
	if err != nil {
		a.notify(LevelError, MsgEntriesFailed)
		return view, err
	}
	view.Entries = entries
	return view, nil
}

// NewEntry shows the blank entry form.
func (a *App) NewEntry() bool {
	return a.Open(RouteNewEntry) == RouteNewEntry
}

// OpenEntry shows the edit form for id, loaded with the stored entry.
func (a *App) OpenEntry(ctx context.Context, id journal.EntryID) (*journal.Entry, error) {
	route := EditEntryRoute(id)
	if strings.TrimSpace(id.String()) == "" {
		a.notify(LevelError, MsgEntryIDUndefined)
		return nil, errors.ErrInvalidEntryID
	}
	if a.Open(route) != route {
		return nil, errors.ErrNotLoggedIn
	}
	e, err := a.journal.Get(ctx, id)
	if err != nil {
		a.notify(LevelError, MsgEntryFailed)
		return nil, err
	}
	return e, nil
}

// SaveEntry submits the entry form: a create when id is empty, else an update.
func (a *App) SaveEntry(ctx context.Context, id journal.EntryID, d journal.Draft) error {
	if a.State() == session.Anonymous {
		a.Open(RouteNewEntry)
		return errors.ErrNotLoggedIn
	}
	var err error
	if id == "" {
		_, err = a.journal.Create(ctx, d)
	} else {
		err = a.journal.Update(ctx, id, d)
	}
	if err != nil {
		msg := MsgSaveFailed
		if errors.Is(err, errors.ErrEmptyEntry) {
			msg = describe(err, MsgSaveFailed)
		}
		a.notify(LevelError, msg)
		return err
	}
	if id == "" {
		a.notify(LevelSuccess, MsgEntryCreated)
	} else {
		a.notify(LevelSuccess, MsgEntryUpdated)
	}
	a.Open(RouteDashboard)
	return nil
}

// UpdateEntry saves an inline dashboard edit through the owner-scoped route.
func (a *App) UpdateEntry(ctx context.Context, id journal.EntryID, d journal.Draft) error {
	if strings.TrimSpace(id.String()) == "" {
		a.notify(LevelError, MsgEntryIDUndefined)
		return errors.ErrInvalidEntryID
	}
	username, err := a.currentUsername(ctx)
	if err == nil {
		err = a.journal.UpdateOwned(ctx, username, id, d)
	}
	if err != nil {
		a.notify(LevelError, "Error: "+describe(err, MsgUpdateFailed))
		return err
	}
	a.notify(LevelSuccess, MsgEntryUpdated)
	return nil
}

func (a *App) DeleteEntry(ctx context.Context, id journal.EntryID) error {
	username, err := a.currentUsername(ctx)
	if err == nil {
		err = a.journal.Delete(ctx, username, id)
	}
	if err != nil {
		a.notify(LevelError, "Error: "+describe(err, MsgDeleteFailed))
		return err
	}
	a.notify(LevelSuccess, MsgEntryDeleted)
	return nil
}

func (a *App) DeleteAll(ctx context.Context) error {
	if err := a.journal.DeleteAll(ctx); err != nil {
		a.notify(LevelError, "Error: "+describe(err, MsgDeleteFailed))
		return err
	}
	a.notify(LevelSuccess, MsgAllDeleted)
	return nil
}

// Status reports the session state and, for JWT credentials, the decoded claims.
func (a *App) Status() StatusView {
	view := StatusView{State: a.State(), Route: a.nav.Current()}
	if token, ok := a.api.Store().Get(); ok {
		if claims, err := session.DecodeClaims(token); err == nil {
			view.Claims = claims
		}
	}
	return view
}

func (a *App) currentUsername(ctx context.Context) (string, error) {
	if username := a.cachedUser(); username != "" {
		return username, nil
	}
	if a.State() == session.Anonymous {
		return "", errors.ErrNotLoggedIn
	}
	u, err := a.users.Me(ctx)
	if err != nil {
		return "", err
	}
	if u.Username == "" {
		return "", errors.ErrNotLoggedIn
	}
	a.rememberUser(u.Username)
	return u.Username, nil
}
