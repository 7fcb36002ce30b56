package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-release-tui/internal/activity"
	"github.com/litescript/ls-release-tui/internal/manifest"
	"github.com/litescript/ls-release-tui/internal/release"
	"github.com/litescript/ls-release-tui/internal/session"
	"github.com/litescript/ls-release-tui/internal/store"
	"github.com/litescript/ls-release-tui/internal/update"
	"github.com/litescript/ls-release-tui/internal/version"
)

type fixedSource struct{ latest string }

func (f fixedSource) Name() string { return "fixed" }

func (f fixedSource) Fetch(context.Context) (manifest.Manifest, error) {
	return manifest.Manifest{LatestVersion: f.latest}, nil
}

type downSource struct{}

func (downSource) Name() string { return "down" }

func (downSource) Fetch(context.Context) (manifest.Manifest, error) {
	return manifest.Manifest{}, errors.New("connection refused")
}

func clock() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }

func newTestModel(t *testing.T, st store.Store, checker *update.Checker) (Model, *session.Session) {
	t.Helper()
	if st == nil {
		st = store.NewMemoryStore()
	}
	view := NewProjection()
	sess := session.New(session.WithStore(st), session.WithSink(view), session.WithClock(clock))
	require.NoError(t, sess.Load())

	m := NewModel(sess, view, checker)
	nm, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return nm.(Model), sess
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var nm tea.Model
		nm, cmd = m.Update(keyMsg(k))
		m = nm.(Model)
	}
	return m, cmd
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		nm, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = nm.(Model)
	}
	return m
}

func rowVersions(m Model) []string {
	out := make([]string, len(m.view.items))
	for i, it := range m.view.items {
		out[i] = it.Version
	}
	return out
}

func TestModel_InitialView(t *testing.T) {
	m, _ := newTestModel(t, nil, nil)

	assert.Equal(t, []string{"v1.0.0", "v0.0.1"}, rowVersions(m))
	out := m.View()
	assert.Contains(t, out, "Releases (2)")
	assert.Contains(t, out, "latest")
	assert.Contains(t, out, "Initialized default releases")
	assert.Contains(t, out, "not checked")
}

func TestModel_AddPrefillsNextVersion(t *testing.T) {
	m, sess := newTestModel(t, nil, nil)

	m, _ = press(m, "a")
	require.Equal(t, viewAdd, m.mode)
	assert.Equal(t, "v1.0.1", m.addInputs[fieldVersion].Value())

	m, _ = press(m, "enter", "enter")
	assert.Equal(t, viewBrowse, m.mode)
	assert.Len(t, sess.Entries(), 3)
	assert.Equal(t, []string{"v1.0.1", "v1.0.0", "v0.0.1"}, rowVersions(m))
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, "Added v1.0.1", m.view.notice)
}

func TestModel_AddWithArchive(t *testing.T) {
	m, sess := newTestModel(t, nil, nil)

	m, _ = press(m, "a", "tab")
	m = typeText(m, "build.zip")
	m, _ = press(m, "enter")

	entries := sess.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, release.Entry{Version: "v1.0.1", Date: "2024-06-01", DownloadURL: "download/v1.0.1/build.zip"}, entries[2])
}

func TestModel_AddRejectedKeepsForm(t *testing.T) {
	m, sess := newTestModel(t, nil, nil)

	m, _ = press(m, "a")
	m.addInputs[fieldVersion].SetValue("bogus")
	m, _ = press(m, "enter", "enter")

	assert.Equal(t, viewAdd, m.mode)
	assert.Len(t, sess.Entries(), 2)
	assert.Equal(t, activity.SeverityError, m.view.noticeSev)
	assert.Contains(t, m.View(), "Invalid version")

	m, _ = press(m, "esc")
	assert.Equal(t, viewBrowse, m.mode)
}

func TestModel_EditUsesRegistryPosition(t *testing.T) {
	m, sess := newTestModel(t, nil, nil)
	_, err := sess.Add(release.Entry{Version: "v1.0.10"})
	require.NoError(t, err)
	m.view.items = sess.Releases()

	// Rows: v1.0.10 (pos 2), v1.0.0 (pos 0), v0.0.1 (pos 1)
	m, _ = press(m, "j", "e")
	require.Equal(t, viewEdit, m.mode)
	assert.Equal(t, 0, m.editPos)
	assert.Equal(t, "v1.0.0", m.editInput.Value())

	m.editInput.SetValue("v1.0.5")
	m, _ = press(m, "enter")
	assert.Equal(t, viewBrowse, m.mode)
	assert.Equal(t, "v1.0.5", sess.Entries()[0].Version)
	assert.Equal(t, "v1.0.5", rowVersions(m)[m.cursor])
}

func TestModel_EditBlankRejected(t *testing.T) {
	m, sess := newTestModel(t, nil, nil)

	m, _ = press(m, "e")
	m.editInput.SetValue("  ")
	m, _ = press(m, "enter")

	assert.Equal(t, viewEdit, m.mode)
	assert.Equal(t, "v1.0.0", sess.Entries()[0].Version)
	assert.Contains(t, m.view.notice, "must not be blank")
}

func TestModel_DeleteConfirm(t *testing.T) {
	m, sess := newTestModel(t, nil, nil)

	m, _ = press(m, "x")
	require.Equal(t, viewConfirmDelete, m.mode)
	assert.Contains(t, m.View(), "Delete v1.0.0?")

	m, _ = press(m, "n")
	assert.Equal(t, viewBrowse, m.mode)
	assert.Len(t, sess.Entries(), 2)

	m, _ = press(m, "j", "d", "y")
	assert.Equal(t, []string{"v1.0.0"}, rowVersions(m))
	assert.Equal(t, 0, m.cursor)
}

func TestModel_QuitConfirm(t *testing.T) {
	m, _ := newTestModel(t, nil, nil)

	m, _ = press(m, "q")
	require.Equal(t, viewConfirmQuit, m.mode)

	_, cmd := press(m, "enter")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m, _ = press(m, "esc")
	assert.Equal(t, viewBrowse, m.mode)
}

func TestModel_UpdateCheckDiscardsStale(t *testing.T) {
	checker := update.NewChecker(fixedSource{latest: "v2.0.0"})
	m, _ := newTestModel(t, nil, checker)

	seq1, ctx1 := checker.Start(context.Background())
	stale := checker.Run(ctx1, seq1, "v1.0.0")
	seq2, ctx2 := checker.Start(context.Background())
	fresh := checker.Run(ctx2, seq2, "v1.0.0")

	nm, _ := m.Update(updateCheckMsg{res: stale})
	m = nm.(Model)
	assert.Nil(t, m.view.info)

	nm, _ = m.Update(updateCheckMsg{res: fresh})
	m = nm.(Model)
	require.NotNil(t, m.view.info)
	assert.Equal(t, version.StatusUpdateAvailable, m.view.info.Status)
	assert.Contains(t, m.View(), "v2.0.0 available")
}

func TestModel_UpdateCheckFailureIsError(t *testing.T) {
	checker := update.NewChecker(downSource{})
	m, _ := newTestModel(t, nil, checker)

	seq, ctx := checker.Start(context.Background())
	res := checker.Run(ctx, seq, "v1.0.0")

	nm, _ := m.Update(updateCheckMsg{res: res})
	m = nm.(Model)
	assert.Equal(t, activity.SeverityError, m.view.noticeSev)
	assert.Contains(t, m.view.notice, "connection refused")
	assert.Contains(t, m.View(), "remote unavailable")
}

func TestModel_UpdateKeyStartsCheck(t *testing.T) {
	checker := update.NewChecker(fixedSource{latest: "v1.0.0"})
	m, _ := newTestModel(t, nil, checker)

	m, cmd := press(m, "u")
	require.NotNil(t, cmd)
	assert.True(t, m.checking)
	assert.Contains(t, m.view.notice, "Checking fixed")
}

func TestModel_UpdateKeyWithoutChecker(t *testing.T) {
	m, _ := newTestModel(t, nil, nil)
	m, _ = press(m, "u")
	assert.False(t, m.checking)
	assert.Equal(t, "No manifest configured", m.view.notice)
}

func TestModel_ReloadsOnStoreChange(t *testing.T) {
	st := store.NewMemoryStore()
	m, _ := newTestModel(t, st, nil)

	other := session.New(session.WithStore(st), session.WithClock(clock))
	require.NoError(t, other.Load())
	_, err := other.Add(release.Entry{Version: "v3.0.0"})
	require.NoError(t, err)

	nm, _ := m.Update(storeChangedMsg{})
	m = nm.(Model)
	assert.Equal(t, "v3.0.0", rowVersions(m)[0])
	assert.Equal(t, "Releases changed on disk, reloaded", m.view.notice)
}

func TestModel_ReloadCancelsPendingDelete(t *testing.T) {
	st := store.NewMemoryStore()
	m, sess := newTestModel(t, st, nil)

	m, _ = press(m, "x")
	require.Equal(t, viewConfirmDelete, m.mode)
	require.Equal(t, 0, m.deletePos)

	// Another process removes v1.0.0 and adds v2.0.0; position 0 is now v0.0.1
	other := session.New(session.WithStore(st), session.WithClock(clock))
	require.NoError(t, other.Load())
	_, err := other.Remove(0)
	require.NoError(t, err)
	_, err = other.Add(release.Entry{Version: "v2.0.0"})
	require.NoError(t, err)

	nm, _ := m.Update(storeChangedMsg{})
	m = nm.(Model)
	assert.Equal(t, viewBrowse, m.mode)
	assert.Equal(t, "Releases changed on disk, action cancelled", m.view.notice)

	m, _ = press(m, "y")
	assert.Equal(t, []string{"v2.0.0", "v0.0.1"}, rowVersions(m))
	assert.Len(t, sess.Entries(), 2)
}

func TestModel_ReloadCancelsPendingEdit(t *testing.T) {
	st := store.NewMemoryStore()
	m, sess := newTestModel(t, st, nil)

	m, _ = press(m, "e")
	require.Equal(t, viewEdit, m.mode)

	other := session.New(session.WithStore(st), session.WithClock(clock))
	require.NoError(t, other.Load())
	_, err := other.Remove(0)
	require.NoError(t, err)

	nm, _ := m.Update(storeChangedMsg{})
	m = nm.(Model)
	assert.Equal(t, viewBrowse, m.mode)
	assert.Equal(t, activity.SeverityError, m.view.noticeSev)
	assert.Equal(t, []string{"v0.0.1"}, rowVersions(m))
	assert.Equal(t, "v0.0.1", sess.Entries()[0].Version)
}

func TestModel_CursorBounds(t *testing.T) {
	m, _ := newTestModel(t, nil, nil)
	m, _ = press(m, "k", "k")
	assert.Equal(t, 0, m.cursor)
	m, _ = press(m, "j", "j", "j")
	assert.Equal(t, 1, m.cursor)
	m, _ = press(m, "g")
	assert.Equal(t, 0, m.cursor)
	m, _ = press(m, "G")
	assert.Equal(t, 1, m.cursor)
}
