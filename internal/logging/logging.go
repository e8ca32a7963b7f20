// Package logging wires the run's two log sinks: a full-detail log file
// that is truncated on every run, and a terse console stream that only
// carries INFO and above.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Setup opens logFile (truncating any previous run's log) and returns a
// logger that writes every record to the file and INFO-and-above to
// console. The returned closer flushes and closes the file. A nil console
// defaults to standard output.
func Setup(logFile string, console io.Writer) (*slog.Logger, func() error, error) {
	if console == nil {
		console = os.Stdout
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	closer := func() error {
		if err := f.Sync(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return slog.New(NewHandler(f, console)), closer, nil
}

// NewHandler builds the two-tier handler directly so tests can inject
// buffers for both sinks. Either writer may be nil to disable that tier.
func NewHandler(file, console io.Writer) slog.Handler {
	return &tierHandler{mu: &sync.Mutex{}, file: file, console: console}
}

// tierHandler renders records as plain lines. File lines carry a
// timestamp; console lines do not. Groups become dotted key prefixes.
type tierHandler struct {
	mu      *sync.Mutex
	file    io.Writer
	console io.Writer

	// prefix is the dotted group path applied to attrs added after
	// WithGroup; preAttrs holds WithAttrs output already rendered.
	prefix   string
	preAttrs string
}

func (h *tierHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelDebug
}

func (h *tierHandler) Handle(_ context.Context, r slog.Record) error {
	line := h.renderLine(r)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file != nil {
		stamp := r.Time.Format("2006-01-02 15:04:05")
		if _, err := fmt.Fprintf(h.file, "%s %s\n", stamp, line); err != nil {
			return err
		}
	}
	if h.console != nil && r.Level >= slog.LevelInfo {
		if _, err := fmt.Fprintln(h.console, line); err != nil {
			return err
		}
	}
	return nil
}

func (h *tierHandler) renderLine(r slog.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %s", r.Level.String(), r.Message)
	b.WriteString(h.preAttrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.prefix, a)
		return true
	})
	return b.String()
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	fmt.Fprintf(b, " %s=%v", key, a.Value)
}

func (h *tierHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	var b strings.Builder
	b.WriteString(h.preAttrs)
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	clone.preAttrs = b.String()
	return &clone
}

func (h *tierHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.prefix == "" {
		clone.prefix = name
	} else {
		clone.prefix += "." + name
	}
	return &clone
}
