// Package theme derives the TUI colors from the user's terminal
// configuration (Omarchy, Alacritty, Kitty or Foot), with RELEASE_TUI_*
// environment variables taking precedence.
package theme

import "github.com/charmbracelet/lipgloss"

// Palette holds the color scheme for the TUI
type Palette struct {
	BG       string // background
	FG       string // primary text
	Muted    string // dates, help, secondary info
	Accent   string // latest release badge
	AccentBg string // selected row
	Error    string
	Success  string
	Warning  string
}

// DefaultPalette returns the fallback amber-on-dark theme
func DefaultPalette() Palette {
	return Palette{
		BG:       "#0a0a0a",
		FG:       "#d4a017",
		Muted:    "#6b6b4f",
		Accent:   "#8bc34a",
		AccentBg: "#1a1a14",
		Error:    "#ff6b6b",
		Success:  "#8bc34a",
		Warning:  "#ffb347",
	}
}

// Styles holds the lipgloss styles derived from a palette
type Styles struct {
	Header      lipgloss.Style
	Title       lipgloss.Style
	StatusBar   lipgloss.Style
	TableHeader lipgloss.Style
	Row         lipgloss.Style
	Selected    lipgloss.Style
	Latest      lipgloss.Style // badge next to the newest release
	Muted       lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	HelpKey     lipgloss.Style
	HelpDesc    lipgloss.Style
	Panel       lipgloss.Style
	PanelTitle  lipgloss.Style
	Modal       lipgloss.Style
	Prompt      lipgloss.Style
}

// NewStyles creates styles from a palette
func NewStyles(p Palette) Styles {
	fg := lipgloss.Color(p.FG)
	muted := lipgloss.Color(p.Muted)

	return Styles{
		Header:    lipgloss.NewStyle().Foreground(fg).Bold(true).Padding(0, 1),
		Title:     lipgloss.NewStyle().Foreground(fg).Bold(true),
		StatusBar: lipgloss.NewStyle().Foreground(muted).Padding(0, 1),

		TableHeader: lipgloss.NewStyle().
			Foreground(muted).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(muted),

		Row: lipgloss.NewStyle().Foreground(fg),

		Selected: lipgloss.NewStyle().
			Foreground(fg).
			Background(lipgloss.Color(p.AccentBg)).
			Bold(true),

		Latest: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.BG)).
			Background(lipgloss.Color(p.Accent)).
			Bold(true).
			Padding(0, 1),

		Muted:   lipgloss.NewStyle().Foreground(muted),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Error)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Success)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Warning)),

		HelpKey:  lipgloss.NewStyle().Foreground(muted),
		HelpDesc: lipgloss.NewStyle().Foreground(fg),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),

		PanelTitle: lipgloss.NewStyle().Foreground(fg).Bold(true),

		Modal: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Accent)).
			Padding(1, 2),

		Prompt: lipgloss.NewStyle().Foreground(muted),
	}
}

// Current holds the active palette and styles. Refresh replaces them.
var (
	CurrentPalette = DefaultPalette()
	Current        = NewStyles(CurrentPalette)
)

// Refresh reloads the theme from terminal config files
func Refresh() {
	CurrentPalette = Detect()
	Current = NewStyles(CurrentPalette)
}
