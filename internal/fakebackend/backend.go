// Package fakebackend is an in-process journal backend for tests.
package fakebackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

// Call is one request the backend received.
type Call struct {
	Method        string
	Path          string
	Query         string
	Authorization string
}

type user struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	password string
}

// Entry is the stored form of a journal entry.
type Entry struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Sentiment string `json:"sentiment"`
	Date      string `json:"date,omitempty"`
}

type failure struct {
	status  int
	message string
}

// Backend mimics the journal service's HTTP contract.
type Backend struct {
	*httptest.Server

	mu            sync.Mutex
	users         map[string]*user
	tokens        map[string]string
	codes         map[string]string
	entries       map[string][]Entry
	calls         []Call
	failures      map[string]failure
	withholdToken bool
}

func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		users:    make(map[string]*user),
		tokens:   make(map[string]string),
		codes:    make(map[string]string),
		entries:  make(map[string][]Entry),
		failures: make(map[string]failure),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /public/login", b.login)
	mux.HandleFunc("POST /public/sign-up", b.signUp)
	mux.HandleFunc("GET /auth/google/callback", b.googleCallback)
	mux.HandleFunc("GET /user/me", b.authenticated(b.me))
	mux.HandleFunc("GET /journal", b.authenticated(b.listEntries))
	mux.HandleFunc("POST /journal", b.authenticated(b.createEntry))
	mux.HandleFunc("DELETE /journal/delete-all", b.authenticated(b.deleteAll))
	mux.HandleFunc("GET /journal/{id}", b.authenticated(b.getEntry))
	mux.HandleFunc("PUT /journal/{id}", b.authenticated(b.updateEntry))
	mux.HandleFunc("PUT /journal/{username}/{id}", b.authenticated(b.updateOwnedEntry))
	mux.HandleFunc("DELETE /journal/{username}/{id}", b.authenticated(b.deleteOwnedEntry))

	b.Server = httptest.NewServer(b.record(mux))
	t.Cleanup(b.Server.Close)
	return b
}

// AddUser registers an account directly.
func (b *Backend) AddUser(email, username, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[username] = &user{ID: uuid.NewString(), Email: email, Username: username, password: password}
}

// IssueToken returns a valid credential for username.
func (b *Backend) IssueToken(username string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked(username)
}

// Revoke makes token invalid, as an expiry on the server would.
func (b *Backend) Revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.tokens, token)
}

// AddOAuthCode registers a single-use authorization code for username.
func (b *Backend) AddOAuthCode(code, username string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.codes[code] = username
}

// WithholdTokens makes login and code exchange succeed without returning a credential.
func (b *Backend) WithholdTokens(withhold bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.withholdToken = withhold
}

// FailNext makes the next request to method and path fail with status and message.
func (b *Backend) FailNext(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, message: message}
}

// AddEntry stores an entry for username and returns its id.
func (b *Backend) AddEntry(username, title, content, sentiment string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := Entry{ID: uuid.NewString(), Title: title, Content: content, Sentiment: sentiment, Date: "2025-03-01T10:00:00"}
	b.entries[username] = append(b.entries[username], e)
	return e.ID
}

// Entries returns a copy of username's entries.
func (b *Backend) Entries(username string) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Entry(nil), b.entries[username]...)
}

// Calls returns requests matching method and path. Empty filters match everything.
func (b *Backend) Calls(method, path string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if (method == "" || c.Method == method) && (path == "" || c.Path == path) {
			out = append(out, c)
		}
	}
	return out
}

func (b *Backend) issueLocked(username string) string {
	token := "tok-" + uuid.NewString()
	b.tokens[token] = username
	return token
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, Call{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
		})
		key := r.Method + " " + r.URL.Path
		f, failing := b.failures[key]
		delete(b.failures, key)
		b.mu.Unlock()

		if failing {
			writeMessage(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticated(next func(w http.ResponseWriter, r *http.Request, username string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		username, valid := b.tokens[token]
		b.mu.Unlock()
		if !ok || !valid {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r, username)
	}
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[body.Username]
	if !ok || u.password != body.Password {
		writeMessage(w, http.StatusBadRequest, "Incorrect username or password")
		return
	}
	if b.withholdToken {
		writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": b.issueLocked(u.Username)})
}

func (b *Backend) signUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[body.Username]; exists {
		writeMessage(w, http.StatusConflict, "Username already exists")
		return
	}
	b.users[body.Username] = &user{ID: uuid.NewString(), Email: body.Email, Username: body.Username, password: body.Password}
	w.WriteHeader(http.StatusCreated)
}

func (b *Backend) googleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	b.mu.Lock()
	defer b.mu.Unlock()
	username, ok := b.codes[code]
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid authorization code")
		return
	}
	delete(b.codes, code)
	if _, exists := b.users[username]; !exists {
		b.users[username] = &user{ID: uuid.NewString(), Email: username + "@gmail.com", Username: username}
	}
	if b.withholdToken {
		writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": b.issueLocked(username)})
}

func (b *Backend) me(w http.ResponseWriter, _ *http.Request, username string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[username]
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) listEntries(w http.ResponseWriter, _ *http.Request, username string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := append([]Entry{}, b.entries[username]...)
	writeJSON(w, http.StatusOK, entries)
}

func (b *Backend) getEntry(w http.ResponseWriter, r *http.Request, username string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(username, r.PathValue("id"))
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Entry not found")
		return
	}
	writeJSON(w, http.StatusOK, b.entries[username][i])
}

func (b *Backend) createEntry(w http.ResponseWriter, r *http.Request, username string) {
	var e Entry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request")
		return
	}
	e.ID = uuid.NewString()
	b.mu.Lock()
	b.entries[username] = append(b.entries[username], e)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, e)
}

func (b *Backend) updateEntry(w http.ResponseWriter, r *http.Request, username string) {
	b.update(w, r, username, r.PathValue("id"))
}

func (b *Backend) updateOwnedEntry(w http.ResponseWriter, r *http.Request, username string) {
	if r.PathValue("username") != username {
		writeMessage(w, http.StatusForbidden, "You can only edit your own entries")
		return
	}
	b.update(w, r, username, r.PathValue("id"))
}

func (b *Backend) update(w http.ResponseWriter, r *http.Request, username, id string) {
	var patch Entry
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(username, id)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Entry not found")
		return
	}
	e := &b.entries[username][i]
	e.Title, e.Content = patch.Title, patch.Content
	if patch.Sentiment != "" {
		e.Sentiment = patch.Sentiment
	}
	writeJSON(w, http.StatusOK, *e)
}

func (b *Backend) deleteOwnedEntry(w http.ResponseWriter, r *http.Request, username string) {
	if r.PathValue("username") != username {
		writeMessage(w, http.StatusForbidden, "You can only delete your own entries")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(username, r.PathValue("id"))
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Entry not found")
		return
	}
	list := b.entries[username]
	b.entries[username] = append(list[:i:i], list[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) deleteAll(w http.ResponseWriter, _ *http.Request, username string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, username)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) indexLocked(username, id string) int {
	for i, e := range b.entries[username] {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message, "error": fmt.Sprint(status)})
}
