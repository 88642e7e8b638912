package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jrsteele09/go-journal-client/app"
	"github.com/jrsteele09/go-journal-client/internal/utils"
	"github.com/jrsteele09/go-journal-client/journal"
	"github.com/jrsteele09/go-journal-client/session"
)

const helpText = `Available commands:
  login                 log in with username and password
  signup                create an account
  google                log in with Google in the browser
  callback <url>        finish a Google login from a pasted callback address
  logout                forget the stored credential
  whoami | status       show the session
  list                  show the dashboard
  show <id>             show one entry
  new                   write an entry
  edit <id>             edit an entry in the form
  update <id>           edit an entry inline
  delete <id>           delete an entry
  delete-all            delete every entry
  help                  show this text
  exit                  quit`

const previewLength = 60

// shell is the interactive front end. Every command goes through the app so routing and
// notices behave the same as in any other front end.
type shell struct {
	app             *app.App
	scanner         *bufio.Scanner
	out             io.Writer
	colour          bool
	callbackTimeout time.Duration
	readPassword    func() (string, error)
}

func newShell(a *app.App, in io.Reader, out io.Writer, colour bool) *shell {
	s := &shell{
		app:             a,
		scanner:         bufio.NewScanner(in),
		out:             out,
		colour:          colour,
		callbackTimeout: 5 * time.Minute,
	}
	s.readPassword = func() (string, error) {
		line, _ := s.readLine()
		return line, nil
	}
	return s
}

// Run reads commands until input ends or exit is typed.
func (s *shell) Run(ctx context.Context) error {
	for {
		fmt.Fprintf(s.out, "journal:%s> ", s.app.Navigator().Current())
		line, ok := s.readLine()
		if !ok {
			return s.scanner.Err()
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}
		s.dispatch(ctx, args[0], args[1:])
	}
}

func (s *shell) dispatch(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "login":
		username := s.prompt("Username: ")
		fmt.Fprint(s.out, "Password: ")
		password, err := s.readPassword()
		if err != nil {
			return
		}
		if s.app.Login(ctx, username, password) == nil {
			s.list(ctx)
		}
	case "signup":
		email := s.prompt("Email: ")
		username := s.prompt("Username: ")
		fmt.Fprint(s.out, "Password: ")
		password, err := s.readPassword()
		if err != nil {
			return
		}
		if s.app.SignUp(ctx, email, username, password) == nil {
			s.list(ctx)
		}
	case "google":
		s.google(ctx)
	case "callback":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Usage: callback <url>")
			return
		}
		if s.app.CompleteGoogleLogin(ctx, args[0]) == nil {
			s.list(ctx)
		}
	case "logout":
		_ = s.app.Logout()
	case "whoami", "status":
		s.status()
	case "list", "dashboard":
		s.list(ctx)
	case "show":
		if id, ok := s.entryID(args, "show"); ok {
			if e, err := s.app.OpenEntry(ctx, id); err == nil {
				s.printEntry(*e)
			}
		}
	case "new":
		if !s.app.NewEntry() {
			return
		}
		if d, ok := s.draft(journal.Draft{}); ok {
			_ = s.app.SaveEntry(ctx, "", d)
		}
	case "edit":
		id, ok := s.entryID(args, "edit")
		if !ok {
			return
		}
		e, err := s.app.OpenEntry(ctx, id)
		if err != nil {
			return
		}
		if d, ok := s.draft(journal.DraftOf(*e)); ok {
			_ = s.app.SaveEntry(ctx, id, d)
		}
	case "update":
		id, ok := s.entryID(args, "update")
		if !ok {
			return
		}
		if d, ok := s.draft(journal.Draft{}); ok {
			_ = s.app.UpdateEntry(ctx, id, d)
		}
	case "delete":
		id, ok := s.entryID(args, "delete")
		if ok && s.confirm("Delete this entry?") {
			_ = s.app.DeleteEntry(ctx, id)
		}
	case "delete-all":
		if s.confirm("Are you sure you want to delete all entries?") {
			_ = s.app.DeleteAll(ctx)
		}
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type help for the list.\n", cmd)
	}
}

func (s *shell) google(ctx context.Context) {
	ls, err := s.app.BeginGoogleLogin()
	if err != nil {
		return
	}
	fmt.Fprintf(s.out, "If the browser did not open, visit:\n  %s\n", ls.AuthURL)

	waitCtx, cancel := context.WithTimeout(ctx, s.callbackTimeout)
	defer cancel()
	if s.app.AwaitGoogleLogin(waitCtx, ls) == nil {
		s.list(ctx)
	}
}

func (s *shell) list(ctx context.Context) {
	view, err := s.app.Dashboard(ctx)
	if view == nil {
		return
	}
	if view.Username != "" {
		fmt.Fprintf(s.out, "Welcome, %s\n", view.Username)
	}
	if err != nil {
		return
	}
	if len(view.Entries) == 0 {
		fmt.Fprintln(s.out, "No entries yet. Type new to write one.")
		return
	}
	for _, e := range view.Entries {
		sentiment := app.Colourise(s.colour, app.SentimentColour(string(e.Sentiment)), e.Sentiment.Label())
		fmt.Fprintf(s.out, "%s  %-24s %s  %s\n",
			e.ID, utils.Truncate(e.Title, 24), sentiment, utils.Truncate(e.Content, previewLength))
	}
}

func (s *shell) printEntry(e journal.Entry) {
	fmt.Fprintf(s.out, "%s\n", app.Colourise(s.colour, app.Cyan, e.Title))
	if e.Date != "" {
		fmt.Fprintf(s.out, "%s\n", app.Colourise(s.colour, app.Gray, e.Date))
	}
	fmt.Fprintf(s.out, "Mood: %s\n\n%s\n",
		app.Colourise(s.colour, app.SentimentColour(string(e.Sentiment)), e.Sentiment.Label()), e.Content)
}

func (s *shell) status() {
	st := s.app.Status()
	fmt.Fprintf(s.out, "Session: %s\nRoute:   %s\n", st.State, st.Route)
	if st.State != session.Authenticated || st.Claims == nil {
		return
	}
	if st.Claims.Username != "" {
		fmt.Fprintf(s.out, "User:    %s\n", st.Claims.Username)
	}
	if st.Claims.ExpiresAt != nil {
		suffix := ""
		if st.Claims.Expired() {
			suffix = " (expired, the next request will end the session)"
		}
		fmt.Fprintf(s.out, "Expires: %s%s\n", st.Claims.ExpiresAt.Local().Format(time.RFC1123), suffix)
	}
}

// draft asks for entry fields. Blank answers keep the current values.
func (s *shell) draft(current journal.Draft) (journal.Draft, bool) {
	d := current
	d.Title = utils.FirstNonEmpty(s.prompt(withDefault("Title", current.Title)), current.Title)
	d.Content = utils.FirstNonEmpty(s.prompt(withDefault("Content", utils.Truncate(current.Content, previewLength))), current.Content)

	var names []string
	for _, m := range journal.Sentiments() {
		names = append(names, m.Label())
	}
	fallback := string(current.Sentiment)
	answer := s.prompt(withDefault("Mood ("+strings.Join(names, ", ")+")", current.Sentiment.Label()))
	sentiment, err := journal.ParseSentiment(utils.FirstNonEmpty(answer, fallback))
	if err != nil {
		fmt.Fprintln(s.out, err)
		return d, false
	}
	d.Sentiment = sentiment
	return d, true
}

func (s *shell) entryID(args []string, cmd string) (journal.EntryID, bool) {
	if len(args) < 1 {
		fmt.Fprintf(s.out, "Usage: %s <id>\n", cmd)
		return "", false
	}
	return journal.EntryID(args[0]), true
}

func (s *shell) confirm(question string) bool {
	answer := strings.ToLower(s.prompt(question + " [y/N] "))
	return answer == "y" || answer == "yes"
}

func (s *shell) prompt(label string) string {
	fmt.Fprint(s.out, label)
	line, _ := s.readLine()
	return line
}

func (s *shell) readLine() (string, bool) {
	if !s.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.scanner.Text()), true
}

func withDefault(label, current string) string {
	if current == "" {
		return label + ": "
	}
	return fmt.Sprintf("%s [%s]: ", label, current)
}
