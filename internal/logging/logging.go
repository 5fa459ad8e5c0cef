// Package logging builds the cosmossdk.io/log.Logger used throughout the
// gateway, matching the teacher's own logger setup in
// evmd/cmd/evmd/cmd/root.go (zerolog-backed, level configurable, plain or
// JSON format).
package logging

import (
	"io"
	"os"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
)

// Options configures logger construction.
type Options struct {
	// JSON selects structured JSON output over the human-readable console
	// writer; services deployed behind log aggregation should set this.
	JSON bool
	// Level is one of "debug", "info", "warn", "error".
	Level string
	Out   io.Writer
}

// New builds a root logger. Every component receives it (or a .With(...)
// derivative) via constructor injection, never a package-level global,
// matching the teacher's srvCtx.Logger threading.
func New(opts Options) log.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	logOpts := []log.Option{log.LevelOption(parseLevel(opts.Level))}
	if opts.JSON {
		logOpts = append(logOpts, log.OutputJSONOption())
	}

	return log.NewLogger(out, logOpts...)
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
