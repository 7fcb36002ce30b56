package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func clearEnv(t *testing.T) {
	for _, k := range []string{EnvBG, EnvFG, EnvMuted, EnvAccent} {
		t.Setenv(k, "")
	}
}

func TestDetectFrom_Default(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, DefaultPalette(), DetectFrom(t.TempDir()))
}

func TestDetectFrom_Alacritty(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".config", "alacritty", "alacritty.toml"), `
[colors.primary]
background = "0x1e1e2e"
foreground = "#CDD6F4"

[colors.normal]
red = "#f38ba8"
green = "#a6e3a1"
`)

	p := DetectFrom(home)
	assert.Equal(t, "#1e1e2e", p.BG)
	assert.Equal(t, "#cdd6f4", p.FG)
	assert.Equal(t, "#f38ba8", p.Error)
	assert.Equal(t, "#a6e3a1", p.Accent)
	assert.Equal(t, "#666b7a", p.Muted)
}

func TestDetectFrom_OmarchyWinsOverKitty(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".config", "kitty", "kitty.conf"), "background #000000\nforeground #ffffff\n")
	writeFile(t, filepath.Join(home, ".config", "omarchy", "current", "theme", "alacritty.toml"),
		"[colors.primary]\nbackground = \"#111111\"\nforeground = \"#eeeeee\"\n")

	assert.Equal(t, "#111111", DetectFrom(home).BG)
}

func TestDetectFrom_Kitty(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".config", "kitty", "kitty.conf"), `
# theme
background #282a36
foreground #f8f8f2
selection_background #44475a
color3 #f1fa8c
`)

	p := DetectFrom(home)
	assert.Equal(t, "#282a36", p.BG)
	assert.Equal(t, "#44475a", p.AccentBg)
	assert.Equal(t, "#f1fa8c", p.Warning)
}

func TestDetectFrom_Foot(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".config", "foot", "foot.ini"), `
[colors]
background=002b36
foreground=839496
`)

	p := DetectFrom(home)
	assert.Equal(t, "#002b36", p.BG)
	assert.Equal(t, "#839496", p.FG)
	assert.Equal(t, MixColors("#002b36", "#839496", 0.15), p.AccentBg)
}

func TestDetectFrom_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAccent, "#abc")
	p := DetectFrom(t.TempDir())
	assert.Equal(t, "#aabbcc", p.Accent)
}

func TestColorHelpers(t *testing.T) {
	assert.Equal(t, "#ffffff", normalizeHex("0xFFFFFF"))
	assert.Equal(t, "#112233", normalizeHex("#123"))
	assert.Equal(t, "#nothex", normalizeHex("nothex"))
	assert.Equal(t, "#7f7f7f", dimColor("#ffffff", 0.5))
	assert.Equal(t, "#7f7f7f", MixColors("#000000", "#ffffff", 0.5))
	// Unparseable input falls back to the first colour unchanged
	assert.Equal(t, "zzz", MixColors("zzz", "#ffffff", 0.5))
	assert.Equal(t, "#000000", MixColors("#000000", "zzz", 0.5))
	// Three hex digits are a colour, not a fallback
	assert.Equal(t, "#ddd4ee", MixColors("bad", "#ffffff", 0.5))
}
