// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night color palette.
var (
	ColorGreen  = lipgloss.Color("#9ece6a")
	ColorYellow = lipgloss.Color("#e0af68")
	ColorBlue   = lipgloss.Color("#7aa2f7")
	ColorRed    = lipgloss.Color("#f7768e")
	ColorGray   = lipgloss.Color("#565f89")
	ColorWhite  = lipgloss.Color("#c0caf5")
)

// Banner ASCII art for the header.
const Banner = `
 ╦  ╦╔╗╔╔═╗╔═╗
 ║  ║║║║║ ╦║ ║
 ╩═╝╩╝╚╝╚═╝╚═╝`

// BannerStyle styles the ASCII art banner.
var BannerStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// HeaderStyle styles section headers.
var HeaderStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// TextStyle styles primary text.
var TextStyle = lipgloss.NewStyle().
	Foreground(ColorWhite)

// MutedStyle styles secondary text such as ids and language pairs.
var MutedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// DividerStyle styles horizontal dividers.
var DividerStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// FormTheme is the huh theme used by interactive prompts.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(ColorBlue)
	t.Focused.Title = t.Focused.Title.Foreground(ColorBlue).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorGray)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorRed)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorRed)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Foreground(lipgloss.Color("#1a1b26")).Background(ColorBlue)
	t.Focused.BlurredButton = t.Focused.BlurredButton.Foreground(ColorWhite).Background(lipgloss.Color("#292e42"))
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(ColorYellow)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(ColorBlue)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())

	return t
}
