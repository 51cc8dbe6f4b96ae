// Package tui is the full-screen terminal interface: a note browser
// with live markdown preview, incremental search, and link navigation.
package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light mode colors
	lightForeground = lipgloss.Color("#1c2333")
	lightPrimary    = lipgloss.Color("#3b5bdb")
	lightAccent     = lipgloss.Color("#7048e8")
	lightMuted      = lipgloss.Color("#868e96")
	lightBorder     = lipgloss.Color("#dee2e6")

	// Dark mode colors
	darkForeground = lipgloss.Color("#e9ecef")
	darkPrimary    = lipgloss.Color("#74c0fc")
	darkAccent     = lipgloss.Color("#b197fc")
	darkMuted      = lipgloss.Color("#5c6370")
	darkBorder     = lipgloss.Color("#3b4252")

	// Semantic colors, the same in both modes
	errorColor   = lipgloss.Color("#fa5252")
	successColor = lipgloss.Color("#69db7c")
)

// Theme holds the active color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light color scheme.
func LightTheme() Theme {
	return Theme{
		Foreground: lightForeground,
		Primary:    lightPrimary,
		Accent:     lightAccent,
		Muted:      lightMuted,
		Border:     lightBorder,
		IsDark:     false,
	}
}

// DarkTheme returns the dark color scheme.
func DarkTheme() Theme {
	return Theme{
		Foreground: darkForeground,
		Primary:    darkPrimary,
		Accent:     darkAccent,
		Muted:      darkMuted,
		Border:     darkBorder,
		IsDark:     true,
	}
}

// ThemeFor maps the configured theme name to a color scheme. "auto"
// inspects the terminal background.
func ThemeFor(name string) Theme {
	switch name {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	default:
		return detectTheme()
	}
}

// detectTheme guesses dark/light from COLORFGBG ("fg;bg", ANSI indexes
// 0-6 and 8 are dark backgrounds). Defaults to dark, the common case
// for terminal users.
func detectTheme() Theme {
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bg, err := strconv.Atoi(parts[1]); err == nil {
				if bg == 7 || bg >= 9 {
					return LightTheme()
				}
			}
		}
	}
	return DarkTheme()
}

// Styles holds the styled components for every view.
type Styles struct {
	Theme Theme

	Header    lipgloss.Style
	Footer    lipgloss.Style
	Title     lipgloss.Style
	Muted     lipgloss.Style
	Pane      lipgloss.Style
	FocusPane lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Prompt    lipgloss.Style
	Badge     lipgloss.Style
}

// NewStyles builds the component styles for a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		FocusPane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Padding(0, 1),

		Status: lipgloss.NewStyle().
			Foreground(successColor),

		Error: lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1),
	}
}
