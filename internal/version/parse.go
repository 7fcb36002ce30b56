package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrMalformed is matched by every MalformedVersionError.
var ErrMalformed = errors.New("malformed version")

// MalformedVersionError reports a label that cannot be parsed.
type MalformedVersionError struct {
	Label  string
	Reason string
}

func (e *MalformedVersionError) Error() string {
	return fmt.Sprintf("malformed version %q: %s", e.Label, e.Reason)
}

// Is lets errors.Is(err, ErrMalformed) match.
func (e *MalformedVersionError) Is(target error) bool {
	return target == ErrMalformed
}

// Parsed is a version label broken into its numeric segments.
type Parsed struct {
	prefix   string
	segments []int
}

// Parse parses labels such as "v1.0.10", "1.2" or "r7".
//
// One leading non-digit rune is treated as a prefix and kept for
// re-rendering. Every dot separated segment must be a plain base-10
// number; anything else is rejected rather than truncated.
func Parse(label string) (Parsed, error) {
	s := strings.TrimSpace(label)
	if s == "" {
		return Parsed{}, &MalformedVersionError{Label: label, Reason: "empty"}
	}

	var prefix string
	if r, size := utf8.DecodeRuneInString(s); r < '0' || r > '9' {
		prefix = s[:size]
		s = s[size:]
	}
	if s == "" {
		return Parsed{}, &MalformedVersionError{Label: label, Reason: "no numeric segment"}
	}

	parts := strings.Split(s, ".")
	segments := make([]int, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			return Parsed{}, &MalformedVersionError{Label: label, Reason: fmt.Sprintf("segment %d is empty", i+1)}
		}
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				return Parsed{}, &MalformedVersionError{Label: label, Reason: fmt.Sprintf("segment %q is not a number", part)}
			}
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Parsed{}, &MalformedVersionError{Label: label, Reason: fmt.Sprintf("segment %q out of range", part)}
		}
		segments = append(segments, n)
	}

	return Parsed{prefix: prefix, segments: segments}, nil
}

// MustParse is like Parse but panics on error. Meant for constants and tests.
func MustParse(label string) Parsed {
	p, err := Parse(label)
	if err != nil {
		panic(err)
	}
	return p
}

// Valid reports whether label parses.
func Valid(label string) bool {
	_, err := Parse(label)
	return err == nil
}

// Prefix returns the stripped leading rune, or "" when there was none.
func (p Parsed) Prefix() string {
	return p.prefix
}

// Segments returns a copy of the numeric segments.
func (p Parsed) Segments() []int {
	out := make([]int, len(p.segments))
	copy(out, p.segments)
	return out
}

// String renders the version with its prefix and normalized segments.
func (p Parsed) String() string {
	var b strings.Builder
	b.WriteString(p.prefix)
	for i, n := range p.segments {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
