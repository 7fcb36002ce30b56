// Package activity records what happened during a session.
// The log is append-only and kept in chronological order; views that want
// the newest entry on top use Recent.
package activity

import "time"

// Severity of an activity entry.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Entry is one line of the activity log.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
}

// IsError reports whether the entry records a failure.
func (e Entry) IsError() bool {
	return e.Severity == SeverityError
}

// Option configures a Log.
type Option func(*Log)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLimit caps the number of retained entries. The oldest go first.
func WithLimit(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.limit = n
		}
	}
}

// Log is an append-only activity log. It is not safe for concurrent use.
type Log struct {
	entries []Entry
	now     func() time.Time
	limit   int
}

// NewLog creates an empty log.
func NewLog(opts ...Option) *Log {
	l := &Log{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Info appends an informational entry.
func (l *Log) Info(msg string) Entry {
	return l.Append(SeverityInfo, msg)
}

// Error appends an error entry.
func (l *Log) Error(msg string) Entry {
	return l.Append(SeverityError, msg)
}

// Append adds an entry stamped with the current time in UTC.
func (l *Log) Append(sev Severity, msg string) Entry {
	e := Entry{Timestamp: l.now().UTC(), Message: msg, Severity: sev}
	l.entries = append(l.entries, e)
	l.trim()
	return e
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns a chronological copy of the log.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Recent returns up to n entries, newest first. n <= 0 returns all of them.
func (l *Log) Recent(n int) []Entry {
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Replace swaps the content, as when rehydrating from a snapshot.
func (l *Log) Replace(entries []Entry) {
	l.entries = make([]Entry, len(entries))
	copy(l.entries, entries)
	l.trim()
}

func (l *Log) trim() {
	if l.limit > 0 && len(l.entries) > l.limit {
		l.entries = append([]Entry(nil), l.entries[len(l.entries)-l.limit:]...)
	}
}
