// Package log provides structured file logging for release-tui.
// Lines look like "2025-12-06T10:45:00 [ERROR] [store] message key=value".
// Nothing is written until Init (or SetOutput) is called, so the TUI never
// draws over its own log output.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatRegistry Category = "registry" // Release registry mutations
	CatStore    Category = "store"    // Snapshot persistence
	CatManifest Category = "manifest" // Remote manifest fetches
	CatUpdate   Category = "update"   // Update checks and reconciliation
	CatConfig   Category = "config"   // Configuration loading/saving
	CatUI       Category = "ui"       // TUI events
	CatServer   Category = "server"   // Manifest publisher
	CatWatcher  Category = "watcher"  // Data directory watcher
)

type logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	minLevel Level
}

var std = &logger{minLevel: LevelInfo}

// Init opens path for appending through tea.LogToFile and starts logging.
// The returned function closes the file.
func Init(path string) (func(), error) {
	f, err := tea.LogToFile(path, "release-tui")
	if err != nil {
		return nil, err
	}

	std.mu.Lock()
	std.file = f
	std.writer = f
	std.mu.Unlock()

	return func() {
		std.mu.Lock()
		defer std.mu.Unlock()
		if std.file != nil {
			_ = std.file.Close()
			std.file = nil
			std.writer = nil
		}
	}, nil
}

// SetOutput directs log lines to w. A nil writer disables logging.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	std.writer = w
	std.mu.Unlock()
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	std.mu.Lock()
	std.minLevel = level
	std.mu.Unlock()
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	std.mu.Lock()
	defer std.mu.Unlock()

	if std.writer == nil || level < std.minLevel {
		return
	}

	entry := fmt.Sprintf("%s [%s] [%s] %s", time.Now().Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		entry += fmt.Sprintf(" %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		entry += fmt.Sprintf(" %v=<missing>", fields[len(fields)-1])
	}
	entry += "\n"

	_, _ = io.WriteString(std.writer, entry)
}
