package release

import (
	"strings"

	"github.com/litescript/ls-release-tui/internal/version"
)

// Registry is the ordered list of known releases.
// It is not safe for concurrent use.
type Registry struct {
	entries []Entry
}

// NewRegistry creates a registry holding a copy of entries.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{}
	r.Replace(entries)
	return r
}

func entryVersion(e Entry) string { return e.Version }
func itemVersion(i Item) string   { return i.Version }

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the entries in insertion order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Replace swaps the whole content, as when rehydrating from a snapshot.
func (r *Registry) Replace(entries []Entry) {
	r.entries = make([]Entry, len(entries))
	copy(r.entries, entries)
}

// Get returns the entry at pos.
func (r *Registry) Get(pos int) (Entry, error) {
	if err := r.check(pos); err != nil {
		return Entry{}, err
	}
	return r.entries[pos], nil
}

// Add appends e and returns its position.
func (r *Registry) Add(e Entry) int {
	r.entries = append(r.entries, e)
	return len(r.entries) - 1
}

// Edit replaces the version label of the entry at pos and returns the entry
// as it was before. Date and download location are left alone.
func (r *Registry) Edit(pos int, label string) (Entry, error) {
	if err := r.check(pos); err != nil {
		return Entry{}, err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return Entry{}, &ValidationError{Field: "version", Reason: "must not be blank"}
	}

	old := r.entries[pos]
	r.entries[pos].Version = label
	return old, nil
}

// Remove deletes the entry at pos. Later entries move down one position.
func (r *Registry) Remove(pos int) (Entry, error) {
	if err := r.check(pos); err != nil {
		return Entry{}, err
	}
	old := r.entries[pos]
	r.entries = append(r.entries[:pos], r.entries[pos+1:]...)
	return old, nil
}

// Latest returns the entry with the greatest version. Entries whose version
// does not parse are skipped and reported through err.
func (r *Registry) Latest() (Entry, bool, error) {
	best, _, ok, err := version.Max(r.entries, entryVersion)
	return best, ok, err
}

// All returns the entries newest first, each tagged with its position.
// Entries whose version does not parse come last and are reported through err.
func (r *Registry) All() ([]Item, error) {
	items := make([]Item, len(r.entries))
	for i, e := range r.entries {
		items[i] = Item{Position: i, Entry: e}
	}
	return version.SortDescending(items, itemVersion)
}

func (r *Registry) check(pos int) error {
	if pos < 0 || pos >= len(r.entries) {
		return &OutOfRangeError{Position: pos, Len: len(r.entries)}
	}
	return nil
}
