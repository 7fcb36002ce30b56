package session

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/litescript/ls-release-tui/internal/activity"
	"github.com/litescript/ls-release-tui/internal/release"
	"github.com/litescript/ls-release-tui/internal/store"
)

// Store keys of a snapshot.
const (
	KeyReleases       = "releases"
	KeyActivity       = "activity"
	KeyCurrentVersion = "current_version"
)

// Snapshot is the persisted state of a session.
type Snapshot struct {
	Releases       []release.Entry
	Activity       []activity.Entry
	CurrentVersion string
}

// Equal reports whether two snapshots hold the same data.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.CurrentVersion == o.CurrentVersion &&
		slices.Equal(s.Releases, o.Releases) &&
		slices.EqualFunc(s.Activity, o.Activity, func(a, b activity.Entry) bool {
			return a.Timestamp.Equal(b.Timestamp) && a.Message == b.Message && a.Severity == b.Severity
		})
}

// SaveSnapshot writes every key of snap to st.
func SaveSnapshot(st store.Store, snap Snapshot) error {
	releases := snap.Releases
	if releases == nil {
		releases = []release.Entry{}
	}
	entries := snap.Activity
	if entries == nil {
		entries = []activity.Entry{}
	}

	values := []struct {
		key string
		v   any
	}{
		{KeyReleases, releases},
		{KeyActivity, entries},
		{KeyCurrentVersion, snap.CurrentVersion},
	}
	for _, kv := range values {
		data, err := json.Marshal(kv.v)
		if err != nil {
			return &store.PersistenceError{Op: "save", Key: kv.key, Err: err}
		}
		if err := st.Save(kv.key, data); err != nil {
			return err
		}
	}
	return nil
}

// LoadSnapshot reads a snapshot from st. found is false when no releases
// were ever saved. A key that is present but unreadable is an error.
func LoadSnapshot(st store.Store) (snap Snapshot, found bool, err error) {
	data, ok, err := st.Load(KeyReleases)
	if err != nil {
		return Snapshot{}, false, err
	}
	if !ok {
		return Snapshot{}, false, nil
	}
	if err := decodeKey(KeyReleases, data, &snap.Releases); err != nil {
		return Snapshot{}, false, err
	}

	if data, ok, err = st.Load(KeyActivity); err != nil {
		return Snapshot{}, false, err
	} else if ok {
		if err := decodeKey(KeyActivity, data, &snap.Activity); err != nil {
			return Snapshot{}, false, err
		}
	}

	if data, ok, err = st.Load(KeyCurrentVersion); err != nil {
		return Snapshot{}, false, err
	} else if ok {
		if err := decodeKey(KeyCurrentVersion, data, &snap.CurrentVersion); err != nil {
			return Snapshot{}, false, err
		}
	}

	return snap, true, nil
}

func decodeKey(key string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &store.PersistenceError{Op: "load", Key: key, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
