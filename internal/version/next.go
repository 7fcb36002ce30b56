package version

import (
	"math"
	"strings"
)

// DefaultSeed is the version Next counts up from when nothing has been released.
const DefaultSeed = "v0.0.0"

// Next returns the label that follows label: the last segment is bumped by
// one and nothing carries into earlier segments, so v1.0.9 becomes v1.0.10.
// The prefix and the number of segments are preserved.
func Next(label string) (string, error) {
	p, err := Parse(label)
	if err != nil {
		return "", err
	}
	last := len(p.segments) - 1
	if p.segments[last] == math.MaxInt {
		return "", &MalformedVersionError{Label: label, Reason: "last segment cannot be incremented"}
	}

	next := Parsed{prefix: p.prefix, segments: p.Segments()}
	next.segments[last]++
	return next.String(), nil
}

// NextAfter is Next with DefaultSeed standing in for a blank latest label.
func NextAfter(latest string) (string, error) {
	if strings.TrimSpace(latest) == "" {
		latest = DefaultSeed
	}
	return Next(latest)
}
