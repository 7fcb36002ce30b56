// Package release holds the registry of known release entries.
//
// The registry is a plain positional list: positions shift when an entry is
// removed, and nothing stops two entries from carrying the same version.
// Ordering by version is delegated to the version package.
package release

import (
	"path"
	"path/filepath"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for release dates.
const DateLayout = "2006-01-02"

// Entry is one registered release.
type Entry struct {
	Version     string `json:"version" yaml:"version"`
	Date        string `json:"date" yaml:"date"`
	DownloadURL string `json:"download_url" yaml:"download_url"`
}

// ReleasedAt parses Date.
func (e Entry) ReleasedAt() (time.Time, error) {
	return time.Parse(DateLayout, e.Date)
}

// Item is an entry together with its current registry position.
type Item struct {
	Position int
	Entry
}

// DefaultEntries returns the releases a brand new registry starts with.
func DefaultEntries() []Entry {
	return []Entry{
		{Version: "v1.0.0", Date: "2023-10-26", DownloadURL: "#"},
		{Version: "v0.0.1", Date: "2023-09-15", DownloadURL: "#"},
	}
}

// ArchiveExt is the only package format accepted by NewUpload.
const ArchiveExt = ".zip"

// NewUpload builds the entry for a packaged release.
// Both the version and the archive name are required and the archive must
// be a .zip. The download location is download/<version>/<archive>.
func NewUpload(label, fileName string, now time.Time) (Entry, error) {
	label = strings.TrimSpace(label)
	fileName = strings.TrimSpace(fileName)

	if label == "" {
		return Entry{}, &ValidationError{Field: "version", Reason: "must not be blank"}
	}
	if fileName == "" {
		return Entry{}, &ValidationError{Field: "file", Reason: "must not be blank"}
	}
	base := filepath.Base(fileName)
	if !strings.EqualFold(filepath.Ext(base), ArchiveExt) {
		return Entry{}, &ValidationError{Field: "file", Reason: "must be a " + ArchiveExt + " archive"}
	}

	return Entry{
		Version:     label,
		Date:        now.Format(DateLayout),
		DownloadURL: path.Join("download", label, base),
	}, nil
}
