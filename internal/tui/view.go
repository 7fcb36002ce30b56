package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-release-tui/internal/activity"
	"github.com/litescript/ls-release-tui/internal/version"
)

// Column widths of the release table
const (
	colMarker  = 2
	colVersion = 18
	colDate    = 12
	colLatest  = 8
)

// View renders the model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	// Header ~4 lines, activity pane ~8
	activityHeight := 6
	tableHeight := m.height - 14 - activityHeight
	if tableHeight < 5 {
		tableHeight = 5
	}

	b.WriteString(m.renderReleases(tableHeight))
	b.WriteString("\n")
	b.WriteString(m.renderActivity(activityHeight))

	base := b.String()

	switch m.mode {
	case viewAdd:
		return m.overlayModal(base, m.renderAddModal())
	case viewEdit:
		return m.overlayModal(base, m.renderEditModal())
	case viewConfirmDelete:
		return m.overlayModal(base, m.renderDeleteModal())
	case viewConfirmQuit:
		return m.overlayModal(base, m.renderQuitModal())
	}
	return base
}

func (m Model) renderHeader() string {
	styles := GetStyles()

	title := styles.Header.Render("release-tui") + styles.Muted.Render("v"+version.Version)

	var storage string
	if m.sess.Persistent() {
		storage = styles.Success.Render("● saved")
	} else {
		storage = styles.Warning.Render("● memory only")
	}

	padding := m.width - lipgloss.Width(title) - lipgloss.Width(storage) - 2
	if padding < 1 {
		padding = 1
	}
	return title + strings.Repeat(" ", padding) + storage
}

func (m Model) renderStatusBar() string {
	styles := GetStyles()

	// Left: last notice
	var left string
	if m.view.notice != "" {
		if m.view.noticeSev == activity.SeverityError {
			left = styles.Error.Render(m.view.notice)
		} else {
			left = m.view.notice
		}
	}

	// Right: update status
	var right string
	switch {
	case m.checking:
		right = m.spinner.View() + " checking"
	case m.view.info != nil:
		right = renderUpdateStatus(*m.view.info)
	default:
		right = styles.Muted.Render("not checked")
	}

	var help string
	switch m.mode {
	case viewAdd:
		help = helpLine("tab", "Next field", "enter", "Save", "esc", "Cancel")
	case viewEdit:
		help = helpLine("enter", "Save", "esc", "Cancel")
	default:
		help = helpLine("a", "Add", "e", "Edit", "x", "Delete", "u", "Check update", "r", "Reload", "q", "Quit")
	}

	padding1 := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if padding1 < 1 {
		padding1 = 1
	}
	line1 := " " + left + strings.Repeat(" ", padding1) + right

	padding2 := m.width - lipgloss.Width(help) - 2
	if padding2 < 0 {
		padding2 = 0
	}
	line2 := strings.Repeat(" ", padding2) + help

	return line1 + "\n" + line2
}

func renderUpdateStatus(info version.UpdateInfo) string {
	styles := GetStyles()
	switch info.Status {
	case version.StatusUpdateAvailable:
		return styles.Warning.Render("↑ " + info.LatestVersion + " available")
	case version.StatusUpToDate:
		return styles.Success.Render("✓ up to date")
	default:
		return styles.Error.Render("✗ remote unavailable")
	}
}

func (m Model) renderReleases(height int) string {
	styles := GetStyles()

	width := m.width - 4
	if width < 50 {
		width = 50
	}
	colURL := width - colMarker - colVersion - colDate - colLatest - 4
	if colURL < 10 {
		colURL = 10
	}

	var b strings.Builder
	b.WriteString(styles.PanelTitle.Render(fmt.Sprintf("Releases (%d)", len(m.view.items))))
	b.WriteString("\n")

	header := PadRight("", colMarker) +
		PadRight("VERSION", colVersion) + " " +
		PadRight("DATE", colDate) + " " +
		PadRight("", colLatest) + " " +
		PadRight("DOWNLOAD", colURL)
	b.WriteString(styles.TableHeader.Render(header))
	b.WriteString("\n")

	if len(m.view.items) == 0 {
		b.WriteString(styles.Muted.Render("No releases yet. Press a to add one."))
		return b.String()
	}

	// Scroll to keep the cursor visible
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := start + height
	if end > len(m.view.items) {
		end = len(m.view.items)
	}

	for i := start; i < end; i++ {
		item := m.view.items[i]

		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		badge := PadRight("", colLatest)
		if i == 0 && m.view.hasLatest() {
			tag := styles.Latest.Render("latest")
			badge = tag + strings.Repeat(" ", max(0, colLatest-lipgloss.Width(tag)))
		}
		date := item.Date
		if date == "" {
			date = "-"
		}

		row := marker +
			PadRight(item.Version, colVersion) + " " +
			styles.Muted.Render(PadRight(date, colDate)) + " " +
			badge + " " +
			PadRight(item.DownloadURL, colURL)

		if i == m.cursor {
			b.WriteString(styles.Selected.Render(row))
		} else if !version.Valid(item.Version) {
			b.WriteString(styles.Error.Render(row))
		} else {
			b.WriteString(styles.Row.Render(row))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderActivity(height int) string {
	styles := GetStyles()

	var b strings.Builder
	b.WriteString(styles.PanelTitle.Render("Activity"))
	b.WriteString("\n")

	if len(m.view.activity) == 0 {
		b.WriteString(styles.Muted.Render("Nothing yet"))
		return b.String()
	}

	msgWidth := m.width - 16
	if msgWidth < 20 {
		msgWidth = 20
	}

	for i, e := range m.view.activity {
		if i >= height {
			break
		}
		stamp := styles.Muted.Render("[" + e.Timestamp.Local().Format("15:04:05") + "]")
		msg := TruncateString(e.Message, msgWidth)
		if e.IsError() {
			msg = styles.Error.Render(msg)
		}
		b.WriteString(stamp + " " + msg + "\n")
	}
	return b.String()
}

// overlayModal renders a modal over the base content with the base still visible
func (m Model) overlayModal(base, modal string) string {
	// Safety: if dimensions not set, just return the modal
	if m.width == 0 || m.height == 0 {
		return modal
	}

	baseLines := strings.Split(base, "\n")
	modalLines := strings.Split(modal, "\n")

	// Below the header and status bar, centered horizontally
	topOffset := 4
	leftOffset := (m.width - lipgloss.Width(modal)) / 2
	if leftOffset < 0 {
		leftOffset = 0
	}

	padding := strings.Repeat(" ", leftOffset)
	for i, line := range modalLines {
		idx := topOffset + i
		for len(baseLines) <= idx {
			baseLines = append(baseLines, "")
		}
		baseLines[idx] = padding + line
	}

	return strings.Join(baseLines, "\n")
}

func (m Model) renderAddModal() string {
	styles := GetStyles()

	var b strings.Builder
	b.WriteString(styles.Title.Render("Add release"))
	b.WriteString("\n\n")
	for _, in := range m.addInputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render("A .zip file is published as download/<version>/<file>"))
	if m.view.notice != "" && m.view.noticeSev == activity.SeverityError {
		b.WriteString("\n")
		b.WriteString(styles.Error.Render(m.view.notice))
	}

	return styles.Modal.Render(b.String())
}

func (m Model) renderEditModal() string {
	styles := GetStyles()

	var b strings.Builder
	b.WriteString(styles.Title.Render("Edit version"))
	b.WriteString("\n\n")
	b.WriteString(m.editInput.View())
	if m.view.notice != "" && m.view.noticeSev == activity.SeverityError {
		b.WriteString("\n\n")
		b.WriteString(styles.Error.Render(m.view.notice))
	}

	return styles.Modal.Render(b.String())
}

func (m Model) renderDeleteModal() string {
	styles := GetStyles()

	label := "this release"
	if entries := m.sess.Entries(); m.deletePos < len(entries) {
		label = entries[m.deletePos].Version
	}

	content := styles.Title.Render("Delete "+label+"?") + "\n\n" +
		styles.Muted.Render("Press ") + styles.HelpKey.Render("y") + styles.Muted.Render(" or ") +
		styles.HelpKey.Render("enter") + styles.Muted.Render(" to delete, any other key to cancel")

	return styles.Modal.Render(content)
}

// renderQuitModal renders the quit confirmation modal
func (m Model) renderQuitModal() string {
	styles := GetStyles()

	content := styles.Title.Render("Quit?") + "\n\n" +
		styles.Muted.Render("Press ") + styles.HelpKey.Render("q") + styles.Muted.Render(" or ") +
		styles.HelpKey.Render("enter") + styles.Muted.Render(" to quit, any other key to cancel")

	return styles.Modal.Render(content)
}
