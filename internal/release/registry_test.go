package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-release-tui/internal/version"
)

func newTestRegistry() *Registry {
	return NewRegistry(
		Entry{Version: "v1.0.0", Date: "2023-10-26", DownloadURL: "#"},
		Entry{Version: "v0.0.1", Date: "2023-09-15", DownloadURL: "#"},
		Entry{Version: "v1.0.10", Date: "2024-02-01", DownloadURL: "download/v1.0.10/app.zip"},
		Entry{Version: "v1.0.9", Date: "2024-01-10", DownloadURL: "download/v1.0.9/app.zip"},
	)
}

func versions(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Version
	}
	return out
}

func TestRegistry_LatestAndAll(t *testing.T) {
	r := newTestRegistry()

	latest, ok, err := r.Latest()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1.0.10", latest.Version)

	all, err := r.All()
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.0.10", "v1.0.9", "v1.0.0", "v0.0.1"}, versions(all))
	assert.Equal(t, []int{2, 3, 0, 1}, []int{all[0].Position, all[1].Position, all[2].Position, all[3].Position})
}

func TestRegistry_LatestEmpty(t *testing.T) {
	_, ok, err := NewRegistry().Latest()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistry_AddAllowsDuplicates(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Add(Entry{Version: "v1.0.0"}))
	assert.Equal(t, 1, r.Add(Entry{Version: "v1.0.0"}))
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Edit(t *testing.T) {
	r := newTestRegistry()

	old, err := r.Edit(1, " v0.0.2 ")
	require.NoError(t, err)
	assert.Equal(t, "v0.0.1", old.Version)

	got, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, Entry{Version: "v0.0.2", Date: "2023-09-15", DownloadURL: "#"}, got)
}

func TestRegistry_EditOutOfRange(t *testing.T) {
	r := newTestRegistry()
	before := r.Entries()

	for _, pos := range []int{-1, 4, 100} {
		_, err := r.Edit(pos, "v9")
		require.ErrorIs(t, err, ErrOutOfRange)

		var oor *OutOfRangeError
		require.ErrorAs(t, err, &oor)
		assert.Equal(t, pos, oor.Position)
		assert.Equal(t, 4, oor.Len)
	}
	assert.Equal(t, before, r.Entries())
}

func TestRegistry_EditBlank(t *testing.T) {
	r := newTestRegistry()
	before := r.Entries()

	_, err := r.Edit(0, "   ")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, before, r.Entries())
}

func TestRegistry_Remove(t *testing.T) {
	r := newTestRegistry()

	old, err := r.Remove(0)
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", old.Version)
	assert.Equal(t, 3, r.Len())

	// positions shift down
	got, err := r.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "v0.0.1", got.Version)

	_, err = r.Remove(3)
	require.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_MalformedEntriesReported(t *testing.T) {
	r := NewRegistry(Entry{Version: "nightly"}, Entry{Version: "v0.2"})

	latest, ok, err := r.Latest()
	require.ErrorIs(t, err, version.ErrMalformed)
	require.True(t, ok)
	assert.Equal(t, "v0.2", latest.Version)

	all, err := r.All()
	require.ErrorIs(t, err, version.ErrMalformed)
	assert.Equal(t, []string{"v0.2", "nightly"}, versions(all))
}

func TestRegistry_EntriesIsCopy(t *testing.T) {
	r := newTestRegistry()
	entries := r.Entries()
	entries[0].Version = "changed"

	got, err := r.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", got.Version)
}
