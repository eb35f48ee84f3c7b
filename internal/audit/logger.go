// Package audit provides the pluggable logger the vault reports to.
// Logging is fire-and-forget: no logger error ever affects vault control
// flow, and secret material is never passed to a logger.
package audit

import (
	"fmt"
	"io"
	"time"
)

// Logger receives diagnostic messages from the vault. Hosts may supply
// their own implementation or use NoOp to silence the core entirely.
type Logger interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// NoOp discards everything. It is the default for library consumers.
type NoOp struct{}

func (NoOp) Info(string)  {}
func (NoOp) Warn(string)  {}
func (NoOp) Error(string) {}

// Writer logs timestamped lines to an io.Writer, typically stderr.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Logger printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (l *Writer) Info(msg string)  { l.write("INFO", msg) }
func (l *Writer) Warn(msg string)  { l.write("WARN", msg) }
func (l *Writer) Error(msg string) { l.write("ERROR", msg) }

func (l *Writer) write(level, msg string) {
	fmt.Fprintf(l.w, "%s %-5s %s\n", time.Now().Format(time.RFC3339), level, msg)
}
