package version

import (
	"errors"
	"slices"
)

// Compare returns -1, 0 or +1 as a is older than, equal to, or newer than b.
// The shorter segment list is padded with zeros, so v1.2 equals v1.2.0.
// Prefixes do not take part in the ordering.
func Compare(a, b Parsed) int {
	n := len(a.segments)
	if len(b.segments) > n {
		n = len(b.segments)
	}
	for i := 0; i < n; i++ {
		ai := segmentAt(a.segments, i)
		bi := segmentAt(b.segments, i)
		switch {
		case ai > bi:
			return 1
		case ai < bi:
			return -1
		}
	}
	return 0
}

func segmentAt(segments []int, i int) int {
	if i < len(segments) {
		return segments[i]
	}
	return 0
}

// Equal reports whether a and b denote the same version.
func Equal(a, b Parsed) bool {
	return Compare(a, b) == 0
}

// CompareLabels parses both labels and compares them.
func CompareLabels(a, b string) (int, error) {
	pa, err := Parse(a)
	if err != nil {
		return 0, err
	}
	pb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return Compare(pa, pb), nil
}

// Max returns the item whose label is the greatest version.
// Ties keep the item that appears first. Items whose label does not parse
// are skipped and reported through err; ok is false when no item parsed.
func Max[T any](items []T, label func(T) string) (best T, index int, ok bool, err error) {
	var (
		bestParsed Parsed
		errs       []error
	)
	index = -1
	for i, item := range items {
		p, perr := Parse(label(item))
		if perr != nil {
			errs = append(errs, perr)
			continue
		}
		if !ok || Compare(p, bestParsed) > 0 {
			best, bestParsed, index, ok = item, p, i, true
		}
	}
	return best, index, ok, errors.Join(errs...)
}

// SortDescending returns items ordered newest first. The sort is stable,
// so equal versions keep their input order. Items whose label does not
// parse are appended after the sorted ones, in input order, and reported
// through err.
func SortDescending[T any](items []T, label func(T) string) ([]T, error) {
	type keyed struct {
		item   T
		parsed Parsed
	}

	valid := make([]keyed, 0, len(items))
	var (
		invalid []T
		errs    []error
	)
	for _, item := range items {
		p, err := Parse(label(item))
		if err != nil {
			invalid = append(invalid, item)
			errs = append(errs, err)
			continue
		}
		valid = append(valid, keyed{item: item, parsed: p})
	}

	slices.SortStableFunc(valid, func(a, b keyed) int {
		return Compare(b.parsed, a.parsed)
	})

	out := make([]T, 0, len(items))
	for _, k := range valid {
		out = append(out, k.item)
	}
	out = append(out, invalid...)
	return out, errors.Join(errs...)
}
