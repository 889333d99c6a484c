// Package logging provides the package-default structured logger used
// by sockjs.SessionRegistry to report unexpected session terminations.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// Default is the package-wide logger, writing human-readable output to
// stderr. Callers that want JSON output or a different sink can
// replace it wholesale before constructing a SessionRegistry.
var Default = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
	With().Timestamp().Logger()

// Scoped returns a child logger tagged with component=name, so log
// lines from the registry are distinguishable from any other
// component sharing the same sink.
func Scoped(name string) zerolog.Logger {
	return Default.With().Str("component", name).Logger()
}
