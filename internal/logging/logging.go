package logging

// Package logging builds the charm logger shared by the command line,
// web and terminal front ends.

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// timestampWriter prefixes each flushed line with an RFC3339 timestamp.
type timestampWriter struct {
	w   io.Writer
	buf bytes.Buffer
	mu  sync.Mutex
	now func() time.Time
}

// Write buffers bytes until a newline is found; for each full line, write a timestamped
// line to the underlying writer. Partial lines are kept in the buffer.
func (t *timestampWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			// put the partial line back for the next write
			t.buf.WriteString(line)
			break
		}
		ts := t.now().Format(time.RFC3339)
		if _, err := io.WriteString(t.w, ts+" "+line); err != nil {
			return n, err
		}
	}
	return n, nil
}

// terminalWriter exposes an Fd method so charm log keeps TTY detection
// when the output is wrapped.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

func (tw *terminalWriter) Fd() uintptr { return tw.fd }

// Options select where logs go and how verbose they are.
type Options struct {
	// File, when set, receives a copy of every line in append mode.
	File    string
	Level   string
	Verbose bool
	Prefix  string
	// Stderr defaults to os.Stderr.
	Stderr *os.File
	// NoStderr sends logs only to File, or nowhere without one. The
	// terminal UI owns the screen.
	NoStderr bool
}

// ParseLevel maps a config level to a charm level. Unknown values report
// ok=false and fall back to info.
func ParseLevel(s string) (log.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, true
	case "info", "":
		return log.InfoLevel, true
	case "warn", "warning":
		return log.WarnLevel, true
	case "error":
		return log.ErrorLevel, true
	default:
		return log.InfoLevel, false
	}
}

// New returns a logger and a close func for the optional log file.
func New(o Options) (*log.Logger, func() error) {
	stderr := o.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	var out io.Writer = stderr
	if o.NoStderr {
		out = io.Discard
	}
	closer := func() error { return nil }
	var fileErr error
	if o.File != "" {
		f, err := os.OpenFile(o.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		switch {
		case err != nil:
			fileErr = err
		case o.NoStderr:
			out = f
			closer = f.Close
		default:
			// write to both stderr and file so running interactively still shows logs
			out = io.MultiWriter(stderr, f)
			closer = f.Close
		}
	}
	tw := &timestampWriter{w: out, now: time.Now}
	logger := log.NewWithOptions(&terminalWriter{w: tw, fd: stderr.Fd()}, log.Options{Prefix: o.Prefix})

	level, ok := ParseLevel(o.Level)
	if o.Verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	if !ok && !o.Verbose {
		logger.Warn("unknown log_level in config.json, defaulting to info", "provided", o.Level)
	}
	if fileErr != nil {
		logger.Warn("log_file specified but could not be opened; logging to stderr only", "path", o.File, "err", fileErr)
	}
	return logger, closer
}
