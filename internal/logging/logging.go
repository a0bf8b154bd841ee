// Package logging provides the two-severity logger used by fixture tasks.
//
// Info marks an action that changed persisted state. Warn marks a no-op
// (the target state already held) or a reconciliation shortfall. There is
// no error severity: failures are returned, not logged.
package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Logger is the logger contract every task and engine receives.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
}

// Level filters which severities are written.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelSilent
)

// ParseLevel maps a config string to a Level. Unknown values fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warn", "warning":
		return LevelWarn
	case "silent", "off", "none":
		return LevelSilent
	default:
		return LevelInfo
	}
}

var (
	infoColor = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
)

// Writer writes one line per entry to an io.Writer.
type Writer struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// New creates a Writer logging at or above level.
func New(out io.Writer, level Level) *Writer {
	return &Writer{out: out, level: level}
}

// Info logs an action that was taken.
func (w *Writer) Info(format string, args ...any) {
	if w.level > LevelInfo {
		return
	}
	w.write(infoColor.Sprint("info"), format, args...)
}

// Warn logs a no-op or a shortfall.
func (w *Writer) Warn(format string, args ...any) {
	if w.level > LevelWarn {
		return
	}
	w.write(warnColor.Sprint("warn"), format, args...)
}

func (w *Writer) write(tag, format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "%s %s\n", tag, fmt.Sprintf(format, args...))
}

type discard struct{}

func (discard) Info(string, ...any) {}
func (discard) Warn(string, ...any) {}

// Discard drops every entry.
var Discard Logger = discard{}

var _ Logger = (*Writer)(nil)
