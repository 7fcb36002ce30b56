package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/litescript/ls-release-tui/internal/theme"
)

// GetStyles returns current themed styles
func GetStyles() theme.Styles {
	return theme.Current
}

// TruncateString truncates s to max display cells with an ellipsis
func TruncateString(s string, max int) string {
	if max <= 0 {
		return ""
	}
	return runewidth.Truncate(s, max, "…")
}

// PadRight truncates or pads s to exactly width display cells
func PadRight(s string, width int) string {
	return runewidth.FillRight(TruncateString(s, width), width)
}

// PadLeft truncates or pads s on the left to exactly width display cells
func PadLeft(s string, width int) string {
	return runewidth.FillLeft(TruncateString(s, width), width)
}

// helpLine renders "[k]Desc" pairs.
func helpLine(pairs ...string) string {
	styles := GetStyles()
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(styles.HelpKey.Render("[" + pairs[i] + "]"))
		b.WriteString(styles.HelpDesc.Render(pairs[i+1]))
	}
	return b.String()
}
