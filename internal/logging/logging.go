// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Stderr selects console logging instead of a rotated file.
const Stderr = "-"

// Setup points the global logger at dest and returns a closer for the underlying writer.
// Stdout belongs to the interactive shell, so logs never go there.
func Setup(level, dest string) (io.Closer, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	w, closer, err := writer(dest)
	if err != nil {
		return nil, err
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return closer, nil
}

func writer(dest string) (io.Writer, io.Closer, error) {
	if dest == "" || dest == Stderr {
		cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		return cw, nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, nil, err
	}
	lj := &lumberjack.Logger{
		Filename:   dest,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   false,
	}
	return lj, lj, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
