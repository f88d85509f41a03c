// Package logging builds the daemon's slog handler. Output goes to the
// systemd journal when one is reachable and to stderr otherwise.
package logging

import (
	"io"
	"log/slog"
)

// Options selects the handler.
type Options struct {
	Level   *slog.LevelVar
	Format  string // "text" | "json"
	Journal bool   // prefer the journal when available
}

// New returns a handler for opts writing to w when the journal is not
// used. The level is read through opts.Level on every record, so it can be
// changed at runtime.
func New(w io.Writer, opts Options) slog.Handler {
	if opts.Level == nil {
		opts.Level = new(slog.LevelVar)
	}
	if opts.Journal && JournalAvailable() {
		return NewJournalHandler(opts.Level)
	}
	ho := &slog.HandlerOptions{Level: opts.Level}
	if opts.Format == "json" {
		return slog.NewJSONHandler(w, ho)
	}
	return slog.NewTextHandler(w, ho)
}
