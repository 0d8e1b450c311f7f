package web

import (
	"strings"

	"github.com/edyou/engine-dashboard/internal/config"
)

// Theme modes
const (
	ModeLight  = "light"
	ModeDark   = "dark"
	ModeSystem = "system"
)

// palettes maps an accent palette to its primary and secondary colors
var palettes = map[string][2]string{
	"indigo":  {"#4f46e5", "#a5b4fc"},
	"emerald": {"#059669", "#6ee7b7"},
	"rose":    {"#e11d48", "#fda4af"},
	"amber":   {"#d97706", "#fcd34d"},
	"sky":     {"#0284c7", "#7dd3fc"},
	"violet":  {"#7c3aed", "#c4b5fd"},
}

const defaultPalette = "indigo"

// Theme is passed into every render. It is read-only after construction.
type Theme struct {
	Mode   string
	Accent string
}

// NewTheme builds a theme from config, falling back to system mode and the
// indigo palette for unknown values
func NewTheme(cfg config.ThemeConfig) Theme {
	t := Theme{
		Mode:   strings.ToLower(strings.TrimSpace(cfg.Mode)),
		Accent: strings.ToLower(strings.TrimSpace(cfg.AccentPalette)),
	}
	switch t.Mode {
	case ModeLight, ModeDark, ModeSystem:
	default:
		t.Mode = ModeSystem
	}
	if _, ok := palettes[t.Accent]; !ok {
		t.Accent = defaultPalette
	}
	return t
}

// Primary is the main accent color
func (t Theme) Primary() string {
	return t.palette()[0]
}

// Secondary is the lighter accent color
func (t Theme) Secondary() string {
	return t.palette()[1]
}

// ColorScheme is the CSS color-scheme value for the mode
func (t Theme) ColorScheme() string {
	switch t.Mode {
	case ModeLight:
		return "light"
	case ModeDark:
		return "dark"
	default:
		return "light dark"
	}
}

func (t Theme) palette() [2]string {
	if p, ok := palettes[t.Accent]; ok {
		return p
	}
	return palettes[defaultPalette]
}
