// Package logging is a small stderr logger decorated with
// github.com/fatih/color severity prefixes, in the style of the teacher's
// LOUD/RED/BOLD ANSI helpers (eutils/utils.go) rather than a structured
// logging framework the teacher never reaches for.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	infoPrefix  = color.New(color.FgCyan, color.Bold).SprintFunc()
	warnPrefix  = color.New(color.FgYellow, color.Bold).SprintFunc()
	errorPrefix = color.New(color.FgRed, color.Bold).SprintFunc()
	matchGood   = color.New(color.FgGreen).SprintFunc()
	matchBad    = color.New(color.FgRed).SprintFunc()
)

// Logger writes one line per event to an underlying writer (normally
// os.Stderr). It holds no other state and is safe for concurrent use; a
// single Logger is shared across the document-level worker pool described
// in spec.md §5.
type Logger struct {
	mu  sync.Mutex
	out io.Writer
}

// New returns a Logger writing to os.Stderr with color auto-detected by
// fatih/color (disabled when stderr is not a TTY or NO_COLOR is set).
func New() *Logger {
	return &Logger{out: os.Stderr}
}

// NewTo returns a Logger writing to an arbitrary writer, used by tests.
func NewTo(w io.Writer) *Logger {
	return &Logger{out: w}
}

// NewNoColor returns a Logger writing to os.Stderr with fatih/color's
// output disabled process-wide, for the CLI's --log-color=false flag and
// for non-TTY redirects where ANSI codes would just pollute captured
// output.
func NewNoColor() *Logger {
	color.NoColor = true
	return New()
}

func (l *Logger) line(prefix, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

// Infof logs routine progress: documents/mentions processed counts
// (spec.md §7).
func (l *Logger) Infof(format string, args ...any) {
	l.line(infoPrefix("[info]"), format, args...)
}

// Warnf logs a recoverable failure: a dropped parse, a retried external
// call.
func (l *Logger) Warnf(format string, args ...any) {
	l.line(warnPrefix("[warn]"), format, args...)
}

// Errorf logs a failure the caller could not recover from for a single
// record (a discarded write, an exhausted retry budget), without aborting
// the document or corpus.
func (l *Logger) Errorf(format string, args ...any) {
	l.line(errorPrefix("[error]"), format, args...)
}

// Fatalf logs a configuration failure. Callers are expected to exit with
// a non-zero status immediately afterward (spec.md §7); Fatalf itself
// never calls os.Exit so that it remains testable.
func (l *Logger) Fatalf(format string, args ...any) {
	l.line(errorPrefix("[fatal]"), format, args...)
}

// Match logs the single summary line required for every mention once its
// match_quality is final (spec.md §7): green for a match, red for "No
// match"/"MISS".
func (l *Logger) Match(docURL, verbatim, matchQuality string) {
	if matchQuality == "" || matchQuality == "No match" || matchQuality == "MISS" {
		l.line(infoPrefix("[match]"), "%s %s -> %s", docURL, verbatim, matchBad(matchQuality))
		return
	}
	l.line(infoPrefix("[match]"), "%s %s -> %s", docURL, verbatim, matchGood(matchQuality))
}
