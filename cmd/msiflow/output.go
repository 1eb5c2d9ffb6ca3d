package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// printer writes console output. Colors follow color.NoColor.
type printer struct {
	out    io.Writer
	errOut io.Writer
}

// Info prints an informational message in default color.
func (p *printer) Info(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Warn prints a warning message in yellow.
func (p *printer) Warn(format string, args ...any) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(p.errOut, "Warning: "+format+"\n", args...)
}

// Error prints an error message in red.
func (p *printer) Error(format string, args ...any) {
	red := color.New(color.FgRed)
	red.Fprintf(p.errOut, "Error: "+format+"\n", args...)
}

// Success prints a success message in green with checkmark.
func (p *printer) Success(format string, args ...any) {
	green := color.New(color.FgGreen)
	green.Fprintf(p.out, "✓ "+format+"\n", args...)
}

// Field prints an aligned "label: value" line.
func (p *printer) Field(label, value string) {
	bold := color.New(color.Bold)
	bold.Fprintf(p.out, "%-12s", label+":")
	fmt.Fprintln(p.out, value)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// consoleSink shows step progress on the console. Output is written when the
// whole percent or the status changes: one line per change, or a single
// line redrawn in place when the output is a terminal.
type consoleSink struct {
	p       *printer
	inPlace bool

	mu         sync.Mutex
	lastPct    int
	lastStatus string
}

func newConsoleSink(p *printer) *consoleSink {
	return &consoleSink{p: p, inPlace: isTerminal(p.out), lastPct: -1}
}

func (s *consoleSink) Update(percent float64, status string) {
	pct := int(math.Floor(percent))
	s.mu.Lock()
	defer s.mu.Unlock()
	if pct == s.lastPct && status == s.lastStatus {
		return
	}
	s.lastPct, s.lastStatus = pct, status

	if s.inPlace {
		// Carriage return and erase to end of line.
		fmt.Fprint(s.p.out, "\r\x1b[K")
	}
	cyan := color.New(color.FgCyan)
	cyan.Fprintf(s.p.out, "[%3d%%] ", pct)
	if s.inPlace && pct < 100 {
		fmt.Fprint(s.p.out, status)
		return
	}
	fmt.Fprintln(s.p.out, status)
}

// Cancelled is always false; the console cancels through the context.
func (s *consoleSink) Cancelled() bool {
	return false
}
