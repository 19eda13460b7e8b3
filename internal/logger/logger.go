// Package logger constructs the zerolog diagnostic sink shared by the
// keychain gateway and the CLI. Diagnostics carry non-fatal failure detail
// only; results always travel through return values.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a logger writing human-readable output to w at the given
// level. Unknown level strings fall back to "warn".
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	out := zerolog.ConsoleWriter{Out: w}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// NewStderr returns a logger writing to standard error.
func NewStderr(level string) zerolog.Logger {
	return New(os.Stderr, level)
}

// Nop returns a logger that discards everything. Intended for tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
