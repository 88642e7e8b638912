package app_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-journal-client/app"
	"github.com/jrsteele09/go-journal-client/journal"
)

func TestTerminalNotifier(t *testing.T) {
	t.Run("Plain", func(t *testing.T) {
		var buf bytes.Buffer
		n := app.NewTerminalNotifier(&buf, false)
		n.Notify(app.Notice{Level: app.LevelSuccess, Message: "Login successful!"})
		n.Notify(app.Notice{Level: app.LevelError, Message: "Login failed."})
		require.Equal(t, "✔ Login successful!\n✘ Login failed.\n", buf.String())
	})

	t.Run("Coloured", func(t *testing.T) {
		var buf bytes.Buffer
		app.NewTerminalNotifier(&buf, true).Notify(app.Notice{Level: app.LevelError, Message: "nope"})
		out := buf.String()
		require.True(t, strings.HasPrefix(out, app.Red))
		require.Contains(t, out, app.ResetColor)
	})
}

func TestSentimentColour(t *testing.T) {
	for _, s := range journal.Sentiments() {
		require.NotEmpty(t, app.SentimentColour(string(s)), s)
	}
	require.Empty(t, app.SentimentColour("BORED"))
	require.Equal(t, "plain", app.Colourise(true, app.SentimentColour("BORED"), "plain"))
	require.Equal(t, app.Blue+"sad"+app.ResetColor, app.Colourise(true, app.SentimentColour("SAD"), "sad"))
}
