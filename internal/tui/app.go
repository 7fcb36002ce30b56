// Package tui implements the terminal user interface using Bubble Tea.
// It renders the release registry, the activity log and the result of the
// last update check, and turns key presses into session operations.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-release-tui/internal/activity"
	"github.com/litescript/ls-release-tui/internal/log"
	"github.com/litescript/ls-release-tui/internal/session"
	"github.com/litescript/ls-release-tui/internal/theme"
	"github.com/litescript/ls-release-tui/internal/update"
	"github.com/litescript/ls-release-tui/internal/version"
)

// View modes
type viewMode int

const (
	viewBrowse viewMode = iota
	viewAdd
	viewEdit
	viewConfirmDelete
	viewConfirmQuit
)

// Add form fields
const (
	fieldVersion = iota
	fieldFile
	fieldCount
)

// Model is the main application state
type Model struct {
	sess    *session.Session
	view    *Projection
	checker *update.Checker

	// Components
	spinner   spinner.Model
	addInputs []textinput.Model
	addFocus  int
	editInput textinput.Model

	// State
	mode      viewMode
	cursor    int
	editPos   int // registry position being edited
	deletePos int // registry position awaiting delete confirmation
	checking  bool
	changes   <-chan struct{}
	checkInit bool

	// Dimensions
	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithChanges makes the model reload the session whenever ch fires,
// typically from a store.Watcher.
func WithChanges(ch <-chan struct{}) Option {
	return func(m *Model) { m.changes = ch }
}

// WithCheckOnStart runs an update check as soon as the program starts.
func WithCheckOnStart(check bool) Option {
	return func(m *Model) { m.checkInit = check }
}

// Messages
type updateCheckMsg struct {
	res update.Result
}

type storeChangedMsg struct{}

type startCheckMsg struct{}

// NewModel creates the initial model. sess must already be loaded with
// view as its sink. checker may be nil when no manifest is configured.
func NewModel(sess *session.Session, view *Projection, checker *update.Checker, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.CurrentPalette.Accent))

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].CharLimit = 256
		inputs[i].Width = 40
	}
	inputs[fieldVersion].Prompt = "Version: "
	inputs[fieldVersion].Placeholder = "v1.0.0"
	inputs[fieldFile].Prompt = "File:    "
	inputs[fieldFile].Placeholder = "release.zip (optional)"

	edit := textinput.New()
	edit.Prompt = "Version: "
	edit.CharLimit = 256
	edit.Width = 40

	view.syncActivity(sess.RecentActivity(activityBacklog))
	if len(view.items) == 0 {
		view.items = sess.Releases()
		if latest, ok := sess.Latest(); ok {
			view.latest = &latest
		}
	}

	m := Model{
		sess:      sess,
		view:      view,
		checker:   checker,
		spinner:   sp,
		addInputs: inputs,
		editInput: edit,
		mode:      viewBrowse,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForChange(m.changes)}
	if m.checkInit && m.checker != nil {
		cmds = append(cmds, func() tea.Msg { return startCheckMsg{} })
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		newModel, cmd := m.handleKeyPress(msg)
		if cmd != nil {
			// Key was handled, return with command
			return newModel, cmd
		}
		// Key wasn't fully handled, continue to text input
		m = newModel.(Model)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		if m.checking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case startCheckMsg:
		nm, cmd := m.startCheck()
		return nm, cmd

	case updateCheckMsg:
		if !m.checker.Accept(msg.res) {
			log.Debug(log.CatUI, "discarding stale update check", "seq", msg.res.Seq)
			return m, nil
		}
		m.checker.Cancel()
		m.checking = false
		m.sess.RecordCheck(msg.res.Info, msg.res.Err)
		// Failures were already posted as error notices by the session
		if msg.res.Err == nil && msg.res.Info.Status != version.StatusRemoteUnavailable {
			m.view.setStatus(msg.res.Info.Summary())
		}

	case storeChangedMsg:
		changed, err := m.sess.Reload()
		switch {
		case err != nil:
			m.view.Notify(activity.SeverityError, fmt.Sprintf("Reload failed: %v", err))
		case changed:
			m.view.syncActivity(m.sess.RecentActivity(activityBacklog))
			m.clampCursor()
			if m.mode == viewEdit || m.mode == viewConfirmDelete {
				// Positions may have shifted under the open modal
				m.editInput.Blur()
				m.mode = viewBrowse
				m.view.Notify(activity.SeverityError, "Releases changed on disk, action cancelled")
			} else {
				m.view.setStatus("Releases changed on disk, reloaded")
			}
		}
		cmds = append(cmds, waitForChange(m.changes))
	}

	// Feed the focused text input
	switch m.mode {
	case viewAdd:
		var cmd tea.Cmd
		m.addInputs[m.addFocus], cmd = m.addInputs[m.addFocus].Update(msg)
		cmds = append(cmds, cmd)
	case viewEdit:
		var cmd tea.Cmd
		m.editInput, cmd = m.editInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// startCheck begins an update check; any check still running is cancelled
// and its result will be discarded.
func (m Model) startCheck() (Model, tea.Cmd) {
	if m.checker == nil {
		m.view.Notify(activity.SeverityError, "No manifest configured")
		return m, handled()
	}
	seq, ctx := m.checker.Start(context.Background())
	local := m.sess.LocalVersion()
	checker := m.checker

	m.checking = true
	m.view.setStatus("Checking " + checker.Source().Name() + "...")

	check := func() tea.Msg {
		return updateCheckMsg{res: checker.Run(ctx, seq, local)}
	}
	return m, tea.Batch(m.spinner.Tick, check)
}

// waitForChange blocks until the store reports an external write.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.view.items) {
		m.cursor = len(m.view.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selectPosition moves the cursor to the row showing registry position pos.
func (m *Model) selectPosition(pos int) {
	for i, it := range m.view.items {
		if it.Position == pos {
			m.cursor = i
			return
		}
	}
	m.clampCursor()
}
