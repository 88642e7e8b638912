package app

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/go-journal-client/journal"
)

const (
	RouteLogin         = "/login"
	RouteSignup        = "/signup"
	RouteOAuthCallback = "/login/auth/google/callback"
	RouteDashboard     = "/dashboard"
	RouteNewEntry      = "/entry/new"

	editEntryPrefix = "/entry/edit/"
)

var publicRoutes = map[string]struct{}{
	RouteLogin:         {},
	RouteSignup:        {},
	RouteOAuthCallback: {},
}

// EditEntryRoute returns the edit route for id.
func EditEntryRoute(id journal.EntryID) string {
	return editEntryPrefix + url.PathEscape(id.String())
}

// EntryIDFromRoute extracts the entry id from an edit route.
func EntryIDFromRoute(route string) (journal.EntryID, bool) {
	raw, ok := strings.CutPrefix(route, editEntryPrefix)
	if !ok || raw == "" || strings.Contains(raw, "/") {
		return "", false
	}
	id, err := url.PathUnescape(raw)
	if err != nil || id == "" {
		return "", false
	}
	return journal.EntryID(id), true
}

// Resolve maps a requested route onto a known one. Anything unknown lands on the login route.
func Resolve(route string) string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	if _, ok := publicRoutes[route]; ok {
		return route
	}
	switch route {
	case RouteDashboard, RouteNewEntry:
		return route
	}
	if _, ok := EntryIDFromRoute(route); ok {
		return route
	}
	return RouteLogin
}

// IsProtected reports whether route requires a stored credential.
func IsProtected(route string) bool {
	_, public := publicRoutes[Resolve(route)]
	return !public
}
