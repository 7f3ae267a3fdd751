// SPDX-FileCopyrightText: 2025 The Widgetctl Authors
// SPDX-License-Identifier: EUPL-1.2

// Package styles defines consistent visual styling for TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the styles used in the TUI.
type Styles struct {
	// Color palette
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color

	// Component styles
	Title           lipgloss.Style
	Subtitle        lipgloss.Style
	Card            lipgloss.Style
	Button          lipgloss.Style
	ButtonDisabled  lipgloss.Style
	ButtonSecondary lipgloss.Style
	Selected        lipgloss.Style
	Unselected      lipgloss.Style
	Dimmed          lipgloss.Style
	Badge           lipgloss.Style

	// Text styles (cached for performance)
	MutedText   lipgloss.Style
	SuccessText lipgloss.Style
	ErrorText   lipgloss.Style

	// Layout styles
	Container lipgloss.Style
	Sidebar   lipgloss.Style
	Detail    lipgloss.Style
}

// New creates a new Styles instance with the Tokyo Night palette.
func New() *Styles {
	primary := lipgloss.Color("#7aa2f7")    // Blue
	secondary := lipgloss.Color("#bb9af7")  // Purple
	success := lipgloss.Color("#9ece6a")    // Green
	warning := lipgloss.Color("#e0af68")    // Yellow
	errorColor := lipgloss.Color("#f7768e") // Red
	muted := lipgloss.Color("#565f89")      // Gray

	background := lipgloss.Color("#1a1b26")
	foreground := lipgloss.Color("#c0caf5")

	return &Styles{
		Primary:   primary,
		Secondary: secondary,
		Success:   success,
		Warning:   warning,
		Error:     errorColor,
		Muted:     muted,

		Title: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(secondary).
			Italic(true),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(1, 2),

		Button: lipgloss.NewStyle().
			Background(primary).
			Foreground(background).
			Bold(true).
			Padding(0, 2).
			MarginRight(1),

		ButtonDisabled: lipgloss.NewStyle().
			Background(muted).
			Foreground(background).
			Padding(0, 2).
			MarginRight(1),

		ButtonSecondary: lipgloss.NewStyle().
			Foreground(foreground).
			Border(lipgloss.NormalBorder(), false, false, false, false).
			Padding(0, 2).
			MarginRight(1),

		Selected: lipgloss.NewStyle().
			Background(primary).
			Foreground(background).
			Padding(0, 1),

		Unselected: lipgloss.NewStyle().
			Foreground(foreground).
			Padding(0, 1),

		Dimmed: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),

		Badge: lipgloss.NewStyle().
			Foreground(warning).
			Bold(true),

		MutedText: lipgloss.NewStyle().
			Foreground(muted),

		SuccessText: lipgloss.NewStyle().
			Foreground(success),

		ErrorText: lipgloss.NewStyle().
			Foreground(errorColor),

		Container: lipgloss.NewStyle().
			Padding(1, 2),

		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),

		Detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 2),
	}
}

// StatusIcon returns the styled marker for a widget row.
func (s *Styles) StatusIcon(status string) string {
	switch status {
	case "loaded":
		return lipgloss.NewStyle().Foreground(s.Success).Render("✓")
	case "broken":
		return lipgloss.NewStyle().Foreground(s.Error).Render("✗")
	case "update":
		return lipgloss.NewStyle().Foreground(s.Warning).Render("↑")
	case "pending":
		return lipgloss.NewStyle().Foreground(s.Muted).Render("○")
	default:
		return "•"
	}
}

// Keybinding returns styled keybinding text.
func (s *Styles) Keybinding(key, desc string) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(s.Primary).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(s.Muted)

	return keyStyle.Render("["+key+"]") + " " + descStyle.Render(desc)
}
