// Package plot renders ranked suspicion results as interactive go-echarts pages.
package plot

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownTheme is returned by ParseTheme for names without a palette.
var ErrUnknownTheme = errors.New("unknown chart theme")

// Theme names a chart palette.
type Theme string

// Built-in themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Palette is the set of colors one theme paints a chart with.
type Palette struct {
	Background string
	Grid       string
	Axis       string
	Text       string
	Muted      string

	// Formula holds one color per suspicion formula, Tarantula first.
	Formula [4]string

	// ECharts is the name of the built-in go-echarts theme, empty for the default.
	ECharts string
}

// Stone neutrals with red, amber, blue and green formula colors.
var palettes = map[Theme]Palette{
	ThemeLight: {
		Background: "transparent",
		Grid:       "#e7e5e4",
		Axis:       "#a8a29e",
		Text:       "#44403c",
		Muted:      "#78716c",
		Formula:    [4]string{"#dc2626", "#ca8a04", "#2563eb", "#16a34a"},
	},
	ThemeDark: {
		Background: "transparent",
		Grid:       "#292524",
		Axis:       "#57534e",
		Text:       "#e7e5e4",
		Muted:      "#a8a29e",
		Formula:    [4]string{"#f87171", "#facc15", "#60a5fa", "#4ade80"},
		ECharts:    "dark",
	},
}

// Themes returns the names of the built-in themes, sorted.
func Themes() []string {
	names := make([]string, 0, len(palettes))
	for theme := range palettes {
		names = append(names, string(theme))
	}

	slices.Sort(names)

	return names
}

// ParseTheme resolves a theme name case-insensitively. Empty means light.
func ParseTheme(name string) (Theme, error) {
	if name == "" {
		return ThemeLight, nil
	}

	theme := Theme(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := palettes[theme]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}

	return theme, nil
}

// PaletteFor returns the palette of theme, falling back to light.
func PaletteFor(theme Theme) Palette {
	if p, ok := palettes[theme]; ok {
		return p
	}

	return palettes[ThemeLight]
}
