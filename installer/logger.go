package installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Logger writes a timestamped install log to a file and keeps a copy in
// memory. It is safe for concurrent use; engine messages arrive on the
// installer's own threads.
//
// All methods are no-ops on a nil *Logger, so a nil logger can be passed
// wherever logging is optional, including as a progress.Logger.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	mirror   io.Writer
	path     string
	messages []string
	debug    bool
}

// NewLogger creates a Logger writing to {prefix}-{timestamp}.log in the temp
// directory.
//
// Example:
//
//	log, err := installer.NewLogger("msiflow-install")
//	if err != nil {
//	    return err
//	}
//	defer log.Close()
//	log.Info("Installing %s", packagePath)
func NewLogger(prefix string) (*Logger, error) {
	timestamp := time.Now().Format("20060102-150405")
	logPath := filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s.log", prefix, timestamp))

	f, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	l := &Logger{
		file:     f,
		path:     logPath,
		messages: make([]string, 0, 100),
	}

	l.Info("=== %s log ===", prefix)
	l.Info("Started: %s", time.Now().Format(time.RFC3339))
	l.Info("Log file: %s", logPath)

	return l, nil
}

// NewLoggerToFile creates a Logger that appends to logPath. Use it to
// continue a log started by an earlier run.
func NewLoggerToFile(logPath string) (*Logger, error) {
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Logger{
		file:     f,
		path:     logPath,
		messages: make([]string, 0, 100),
	}, nil
}

// NewMemoryLogger creates a Logger that keeps lines in memory only.
func NewMemoryLogger() *Logger {
	return &Logger{messages: make([]string, 0, 100)}
}

// Close writes a trailer and closes the log file.
func (l *Logger) Close() {
	if l == nil || l.file == nil {
		return
	}
	l.Info("=== Log ended: %s ===", time.Now().Format(time.RFC3339))

	l.mu.Lock()
	defer l.mu.Unlock()
	l.file.Close()
	l.file = nil
}

// Path returns the path to the log file, or "" for a memory logger.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Content returns every line logged so far.
func (l *Logger) Content() string {
	if l == nil {
		return ""
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.messages, "\n")
}

// SetMirror copies every line to w as well, e.g. os.Stderr for verbose
// console output. A nil w stops mirroring.
func (l *Logger) SetMirror(w io.Writer) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mirror = w
}

// SetDebug enables DEBUG lines. Dropped progress messages are logged at this
// level.
func (l *Logger) SetDebug(enabled bool) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = enabled
}

// Debug logs a diagnostic message when debug output is enabled.
func (l *Logger) Debug(format string, args ...any) {
	l.log("DEBUG", format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.log("INFO", format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log("ERROR", format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.log("WARN", format, args...)
}

// Step logs the start of an installation step.
func (l *Logger) Step(format string, args ...any) {
	l.log("STEP", format, args...)
}

func (l *Logger) log(level, format string, args ...any) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if level == "DEBUG" && !l.debug {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	line := fmt.Sprintf("[%s] %s: %s", timestamp, level, fmt.Sprintf(format, args...))

	l.messages = append(l.messages, line)

	if l.file != nil {
		fmt.Fprintln(l.file, line)
		l.file.Sync()
	}
	if l.mirror != nil {
		fmt.Fprintln(l.mirror, line)
	}
}
