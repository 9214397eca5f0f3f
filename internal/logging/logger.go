// Package logging writes human-readable progress lines to stderr.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Logger is the logging surface used across plancours
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Console prefixes each line with its level. Debug lines are dropped unless
// verbose is set.
type Console struct {
	out     *log.Logger
	verbose bool
}

// New creates a Console logger writing to w
func New(w io.Writer, verbose bool) *Console {
	return &Console{
		out:     log.New(w, "", log.LstdFlags),
		verbose: verbose,
	}
}

func (c *Console) Debugf(format string, args ...any) {
	if c.verbose {
		c.printf("DEBUG", format, args...)
	}
}

func (c *Console) Infof(format string, args ...any)  { c.printf("INFO", format, args...) }
func (c *Console) Warnf(format string, args ...any)  { c.printf("WARN", format, args...) }
func (c *Console) Errorf(format string, args ...any) { c.printf("ERROR", format, args...) }

func (c *Console) printf(level, format string, args ...any) {
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	c.out.Printf("%-5s %s", level, line)
}

// Nop discards everything
type Nop struct{}

func (Nop) Debugf(string, ...any) {}
func (Nop) Infof(string, ...any)  {}
func (Nop) Warnf(string, ...any)  {}
func (Nop) Errorf(string, ...any) {}

// OrNop returns l, or Nop when l is nil
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop{}
	}
	return l
}
