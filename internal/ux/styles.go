// Package ux renders recommendations and catalog listings for people and
// for machines: indented JSON, styled terminal text, or Markdown.
package ux

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	lightForeground = lipgloss.Color("#101F38")
	lightMuted      = lipgloss.Color("#5c6b80")
	darkForeground  = lipgloss.Color("#f2f2f2")
	darkMuted       = lipgloss.Color("#8a97ab")

	accent      = lipgloss.Color("#8BC34A")
	destructive = lipgloss.Color("#e53935")
	warning     = lipgloss.Color("#FFC107")
	info        = lipgloss.Color("#2196F3")
)

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{Foreground: lightForeground, Muted: lightMuted}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{Foreground: darkForeground, Muted: darkMuted, IsDark: true}
}

// DetectTheme picks a theme from COLORFGBG or ADVISOR_DARK_MODE, light by
// default.
func DetectTheme() Theme {
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil && ((bg >= 0 && bg <= 6) || bg == 8) {
			return DarkTheme()
		}
	}
	if os.Getenv("ADVISOR_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds the styled components used by text output.
type Styles struct {
	Theme Theme

	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Path    lipgloss.Style
	OK      lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Code    lipgloss.Style
}

// NewStyles builds styles bound to w's color profile, so a buffer or pipe
// gets plain text.
func NewStyles(w io.Writer, theme Theme) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Theme:   theme,
		Title:   r.NewStyle().Bold(true).Foreground(theme.Foreground),
		Label:   r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(theme.Muted),
		Path:    r.NewStyle().Foreground(info).Bold(true),
		OK:      r.NewStyle().Foreground(accent).Bold(true),
		Warning: r.NewStyle().Foreground(warning).Bold(true),
		Error:   r.NewStyle().Foreground(destructive).Bold(true),
		Info:    r.NewStyle().Foreground(info),
		Code:    r.NewStyle().PaddingLeft(4).Foreground(theme.Muted),
	}
}
