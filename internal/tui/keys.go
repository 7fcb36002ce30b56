package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-release-tui/internal/release"
)

// handled returns a no-op command to signal the key was handled
func handled() tea.Cmd {
	return func() tea.Msg { return nil }
}

// handledWith is cmd, or handled() when cmd is nil.
func handledWith(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return handled()
	}
	return cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global quit - always works
	if key == "ctrl+c" {
		m.cancelCheck()
		return m, tea.Quit
	}

	switch m.mode {
	case viewConfirmQuit:
		switch key {
		case "q", "y", "enter":
			m.cancelCheck()
			return m, tea.Quit
		default:
			// Any other key cancels
			m.mode = viewBrowse
			return m, handled()
		}

	case viewConfirmDelete:
		switch key {
		case "y", "enter":
			return m.confirmDelete()
		default:
			m.mode = viewBrowse
			m.view.setStatus("Delete cancelled")
			return m, handled()
		}

	case viewAdd:
		return m.handleAddKey(key)

	case viewEdit:
		return m.handleEditKey(key)
	}

	switch key {
	case "q":
		m.mode = viewConfirmQuit
		return m, handled()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, handled()

	case "down", "j":
		if m.cursor < len(m.view.items)-1 {
			m.cursor++
		}
		return m, handled()

	case "g", "home":
		m.cursor = 0
		return m, handled()

	case "G", "end":
		m.cursor = len(m.view.items) - 1
		m.clampCursor()
		return m, handled()

	case "a":
		return m.openAddForm()

	case "e", "enter":
		item, ok := m.selected()
		if !ok {
			return m, handled()
		}
		m.mode = viewEdit
		m.editPos = item.Position
		m.editInput.SetValue(item.Version)
		m.editInput.CursorEnd()
		cmd := m.editInput.Focus()
		return m, handledWith(cmd)

	case "x", "d", "delete":
		item, ok := m.selected()
		if !ok {
			return m, handled()
		}
		m.mode = viewConfirmDelete
		m.deletePos = item.Position
		return m, handled()

	case "u":
		nm, cmd := m.startCheck()
		return nm, cmd

	case "r":
		changed, err := m.sess.Reload()
		switch {
		case err != nil:
			m.view.setStatus(fmt.Sprintf("Reload failed: %v", err))
		case changed:
			m.view.syncActivity(m.sess.RecentActivity(activityBacklog))
			m.clampCursor()
			m.view.setStatus("Reloaded")
		case !m.sess.Persistent():
			m.view.setStatus("Running in memory, nothing to reload")
		default:
			m.view.setStatus("Already up to date with the store")
		}
		return m, handled()
	}

	return m, handled()
}

func (m Model) openAddForm() (tea.Model, tea.Cmd) {
	next, err := m.sess.NextVersion()
	if err != nil {
		// The latest label cannot be bumped, so let the user type one
		next = ""
	}

	m.mode = viewAdd
	m.addFocus = fieldVersion
	m.addInputs[fieldVersion].SetValue(next)
	m.addInputs[fieldVersion].CursorEnd()
	m.addInputs[fieldFile].SetValue("")
	m.addInputs[fieldFile].Blur()
	cmd := m.addInputs[fieldVersion].Focus()
	return m, handledWith(cmd)
}

func (m Model) handleAddKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.closeAddForm()
		return m, handled()

	case "tab", "down":
		cmd := m.focusField((m.addFocus + 1) % fieldCount)
		return m, cmd

	case "shift+tab", "up":
		cmd := m.focusField((m.addFocus + fieldCount - 1) % fieldCount)
		return m, cmd

	case "enter":
		if m.addFocus < fieldCount-1 {
			cmd := m.focusField(m.addFocus + 1)
			return m, cmd
		}
		return m.submitAdd()
	}

	// Let the text input have it
	return m, nil
}

// focusField moves focus within the add form.
func (m *Model) focusField(i int) tea.Cmd {
	m.addInputs[m.addFocus].Blur()
	m.addFocus = i
	return handledWith(m.addInputs[i].Focus())
}

func (m Model) submitAdd() (tea.Model, tea.Cmd) {
	label := strings.TrimSpace(m.addInputs[fieldVersion].Value())
	file := strings.TrimSpace(m.addInputs[fieldFile].Value())

	var (
		pos int
		err error
	)
	if file == "" {
		pos, err = m.sess.Add(release.Entry{Version: label})
	} else {
		_, err = m.sess.Upload(label, file)
		pos = len(m.sess.Entries()) - 1
	}
	if err != nil {
		// The session already logged it and set the notice; keep the form open
		return m, handled()
	}

	m.closeAddForm()
	m.selectPosition(pos)
	m.view.setStatus(fmt.Sprintf("Added %s", label))
	return m, handled()
}

func (m *Model) closeAddForm() {
	for i := range m.addInputs {
		m.addInputs[i].Blur()
	}
	m.mode = viewBrowse
}

func (m Model) handleEditKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.editInput.Blur()
		m.mode = viewBrowse
		return m, handled()

	case "enter":
		old, err := m.sess.Edit(m.editPos, m.editInput.Value())
		if err != nil {
			return m, handled()
		}
		m.editInput.Blur()
		m.mode = viewBrowse
		m.selectPosition(m.editPos)
		m.view.setStatus(fmt.Sprintf("Updated %s to %s", old.Version, strings.TrimSpace(m.editInput.Value())))
		return m, handled()
	}

	return m, nil
}

func (m Model) confirmDelete() (tea.Model, tea.Cmd) {
	m.mode = viewBrowse
	old, err := m.sess.Remove(m.deletePos)
	if err != nil {
		return m, handled()
	}
	m.clampCursor()
	m.view.setStatus(fmt.Sprintf("Deleted %s", old.Version))
	return m, handled()
}

func (m Model) selected() (release.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.items) {
		return release.Item{}, false
	}
	return m.view.items[m.cursor], true
}

func (m Model) cancelCheck() {
	if m.checker != nil {
		m.checker.Cancel()
	}
}
