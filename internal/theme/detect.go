package theme

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
)

// Environment variables that override detected colors.
const (
	EnvBG     = "RELEASE_TUI_BG"
	EnvFG     = "RELEASE_TUI_FG"
	EnvMuted  = "RELEASE_TUI_MUTED"
	EnvAccent = "RELEASE_TUI_ACCENT"
)

// Detect loads the palette for the current user.
func Detect() Palette {
	home, err := os.UserHomeDir()
	if err != nil {
		return applyEnvOverrides(DefaultPalette())
	}
	return DetectFrom(home)
}

// DetectFrom looks for terminal configs under home. The first one that
// yields both a background and a foreground wins: Omarchy, Alacritty,
// Kitty, then Foot.
func DetectFrom(home string) Palette {
	config := filepath.Join(home, ".config")
	detectors := []func() (Palette, bool){
		func() (Palette, bool) {
			return parseAlacrittyTOML(filepath.Join(config, "omarchy", "current", "theme", "alacritty.toml"))
		},
		func() (Palette, bool) { return parseAlacrittyTOML(filepath.Join(config, "alacritty", "alacritty.toml")) },
		func() (Palette, bool) { return parseAlacrittyTOML(filepath.Join(home, ".alacritty.toml")) },
		func() (Palette, bool) { return parseKittyConf(filepath.Join(config, "kitty", "kitty.conf")) },
		func() (Palette, bool) { return parseFootINI(filepath.Join(config, "foot", "foot.ini")) },
	}

	for _, detect := range detectors {
		if p, ok := detect(); ok {
			return applyEnvOverrides(p)
		}
	}
	return applyEnvOverrides(DefaultPalette())
}

// alacrittyColors is the part of alacritty.toml we read
type alacrittyColors struct {
	Colors struct {
		Primary struct {
			Background string `toml:"background"`
			Foreground string `toml:"foreground"`
		} `toml:"primary"`
		Selection struct {
			Background string `toml:"background"`
		} `toml:"selection"`
		Normal struct {
			Red    string `toml:"red"`
			Green  string `toml:"green"`
			Yellow string `toml:"yellow"`
		} `toml:"normal"`
	} `toml:"colors"`
}

func parseAlacrittyTOML(path string) (Palette, bool) {
	var cfg alacrittyColors
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Palette{}, false
	}

	c := cfg.Colors
	p, ok := fromPrimary(c.Primary.Background, c.Primary.Foreground, c.Selection.Background)
	if !ok {
		return Palette{}, false
	}
	setIf(&p.Error, c.Normal.Red)
	setIf(&p.Success, c.Normal.Green)
	setIf(&p.Accent, c.Normal.Green)
	setIf(&p.Warning, c.Normal.Yellow)
	return p, true
}

func parseKittyConf(path string) (Palette, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Palette{}, false
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			values[fields[0]] = fields[1]
		}
	}

	p, ok := fromPrimary(values["background"], values["foreground"], values["selection_background"])
	if !ok {
		return Palette{}, false
	}
	// color1 red, color2 green, color3 yellow
	setIf(&p.Error, values["color1"])
	setIf(&p.Success, values["color2"])
	setIf(&p.Accent, values["color2"])
	setIf(&p.Warning, values["color3"])
	return p, true
}

func parseFootINI(path string) (Palette, bool) {
	cfg, err := ini.Load(path)
	if err != nil {
		return Palette{}, false
	}

	colors := cfg.Section("colors")
	p, ok := fromPrimary(
		colors.Key("background").String(),
		colors.Key("foreground").String(),
		colors.Key("selection-background").String(),
	)
	if !ok {
		return Palette{}, false
	}
	setIf(&p.Error, colors.Key("regular1").String())
	setIf(&p.Success, colors.Key("regular2").String())
	setIf(&p.Accent, colors.Key("regular2").String())
	setIf(&p.Warning, colors.Key("regular3").String())
	return p, true
}

// fromPrimary builds a palette from the terminal's main colors.
// Background and foreground are both required.
func fromPrimary(bg, fg, selection string) (Palette, bool) {
	if bg == "" || fg == "" {
		return Palette{}, false
	}

	p := DefaultPalette()
	p.BG = normalizeHex(bg)
	p.FG = normalizeHex(fg)
	p.Muted = dimColor(p.FG, 0.5)
	if selection != "" {
		p.AccentBg = normalizeHex(selection)
	} else {
		p.AccentBg = MixColors(p.BG, p.FG, 0.15)
	}
	return p, true
}

func setIf(dst *string, color string) {
	if color != "" {
		*dst = normalizeHex(color)
	}
}

func applyEnvOverrides(p Palette) Palette {
	setIf(&p.BG, os.Getenv(EnvBG))
	setIf(&p.FG, os.Getenv(EnvFG))
	setIf(&p.Muted, os.Getenv(EnvMuted))
	setIf(&p.Accent, os.Getenv(EnvAccent))
	return p
}

var (
	hex6 = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	hex3 = regexp.MustCompile(`^#[0-9a-fA-F]{3}$`)
)

// normalizeHex turns 0xRRGGBB, RRGGBB and #RGB into #rrggbb.
// Anything else is returned unchanged.
func normalizeHex(color string) string {
	color = strings.TrimSpace(color)
	if strings.HasPrefix(color, "0x") || strings.HasPrefix(color, "0X") {
		color = "#" + color[2:]
	}
	if !strings.HasPrefix(color, "#") {
		color = "#" + color
	}

	switch {
	case hex6.MatchString(color):
		return strings.ToLower(color)
	case hex3.MatchString(color):
		r, g, b := color[1:2], color[2:3], color[3:4]
		return strings.ToLower("#" + r + r + g + g + b + b)
	}
	return color
}

type rgb struct{ r, g, b float64 }

func parseRGB(hex string) (rgb, bool) {
	hex = normalizeHex(hex)
	if !hex6.MatchString(hex) {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{float64(v >> 16 & 0xff), float64(v >> 8 & 0xff), float64(v & 0xff)}, true
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", uint8(c.r), uint8(c.g), uint8(c.b))
}

// dimColor scales a color's channels by factor.
func dimColor(hex string, factor float64) string {
	c, ok := parseRGB(hex)
	if !ok {
		return hex
	}
	return rgb{c.r * factor, c.g * factor, c.b * factor}.hex()
}

// MixColors blends hex2 into hex1 by t (0 keeps hex1, 1 gives hex2).
func MixColors(hex1, hex2 string, t float64) string {
	a, ok1 := parseRGB(hex1)
	b, ok2 := parseRGB(hex2)
	if !ok1 || !ok2 {
		return hex1
	}
	mix := func(x, y float64) float64 { return x*(1-t) + y*t }
	return rgb{mix(a.r, b.r), mix(a.g, b.g), mix(a.b, b.b)}.hex()
}
