package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/term"

	"github.com/jrsteele09/go-journal-client/apiclient"
	"github.com/jrsteele09/go-journal-client/app"
	"github.com/jrsteele09/go-journal-client/auth"
	"github.com/jrsteele09/go-journal-client/internal/config"
	"github.com/jrsteele09/go-journal-client/internal/logging"
	"github.com/jrsteele09/go-journal-client/oauth"
	"github.com/jrsteele09/go-journal-client/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running client: %s\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	closer, err := logging.Setup(c.GetLogLevel(), c.GetLogFile())
	if err != nil {
		return fmt.Errorf("logging.Setup: %w", err)
	}
	defer closer.Close()

	colour := term.IsTerminal(int(os.Stdout.Fd()))
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := session.NewFileStore(c.GetSessionFile(), c.GetSessionKey())
	opts := app.Options{OpenBrowser: openBrowser}
	if c.GetWatchSession() {
		if err := store.Watch(); err != nil {
			log.Warn().Err(err).Str("path", store.Path()).Msg("session file is not watched")
		} else {
			opts.SessionChanges = store
		}
	}
	defer store.Close()

	api := apiclient.New(c.GetBackendURL(), store)
	opts.Handshake = oauth.NewHandshake(oauthConfig(ctx, c), auth.NewService(api), store)

	a := app.New(api, app.NewTerminalNotifier(os.Stdout, colour), opts)
	defer a.Close()

	log.Info().
		Str("env", c.GetEnv()).
		Str("backend", api.BaseURL()).
		Str("session", store.Path()).
		Bool("google", a.GoogleEnabled()).
		Msg("client started")

	sh := newShell(a, os.Stdin, os.Stdout, colour)
	sh.callbackTimeout = c.GetOAuthCallbackTimeout()
	if term.IsTerminal(int(os.Stdin.Fd())) {
		sh.readPassword = func() (string, error) {
			b, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stdout)
			return string(b), err
		}
	}

	done := make(chan error, 1)
	go func() { done <- sh.Run(ctx) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		fmt.Fprintln(os.Stdout)
		return nil
	}
}

// oauthConfig falls back to an unconfigured handshake so the rest of the client still works
// without Google credentials.
func oauthConfig(ctx context.Context, c config.Config) *oauth2.Config {
	cfg, err := oauth.NewConfig(ctx, c)
	if err == nil {
		return cfg
	}
	log.Warn().Err(err).Msg("google login disabled")
	return &oauth2.Config{
		RedirectURL: c.GetOAuthRedirectURL(),
		Scopes:      c.GetOAuthScopes(),
		Endpoint:    oauth.GoogleEndpoint(),
	}
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening browser: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
