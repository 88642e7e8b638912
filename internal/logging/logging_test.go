package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-journal-client/internal/logging"
)

func TestSetup(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "journal.log")
		closer, err := logging.Setup("debug", path)
		require.NoError(t, err)

		log.Debug().Msg("hello from the test")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Contains(t, string(data), "hello from the test")
		require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})

	t.Run("Unknown level falls back to info", func(t *testing.T) {
		closer, err := logging.Setup("loud", logging.Stderr)
		require.NoError(t, err)
		require.NoError(t, closer.Close())
		require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})
}
