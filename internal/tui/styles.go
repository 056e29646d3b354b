// Package tui implements the Bubble Tea TUI for lingo.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/lingo/internal/styles"
)

var (
	colorGreen  = styles.ColorGreen
	colorYellow = styles.ColorYellow
	colorBlue   = styles.ColorBlue
	colorRed    = styles.ColorRed
	colorGray   = styles.ColorGray
	colorWhite  = styles.ColorWhite
)

var (
	bannerStyle = styles.BannerStyle.
			PaddingLeft(1).
			PaddingBottom(1)

	// Tab labels in the header.
	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1a1b26")).
			Background(colorBlue).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(colorGray).
				Padding(0, 1)

	// Language pair shown above the input.
	pairStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			PaddingLeft(1)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Padding(0, 1)

	// Latest translation result.
	resultStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			PaddingLeft(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	selectedBorderStyle = lipgloss.NewStyle().
				Foreground(colorBlue)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			PaddingLeft(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	helpStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			PaddingTop(1)
)

const (
	iconDot      = "•"
	iconSelected = "▌"
)
