package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/lingo/internal/core/translation"
	"github.com/hay-kot/lingo/internal/styles"
)

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		bannerStyle.Render(styles.Banner),
		m.renderTabs(),
		"",
	}

	if m.active == screenTranslate {
		sections = append(sections, m.renderInput())
	}
	sections = append(sections, m.renderList(), m.renderStatus())
	sections = append(sections, helpStyle.Render(m.help.View(m.keys)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(m.screens))
	for i, s := range m.screens {
		label := fmt.Sprintf("%s (%d)", s.title, len(s.records))
		if i == m.active {
			tabs[i] = tabActiveStyle.Render(label)
		} else {
			tabs[i] = tabInactiveStyle.Render(label)
		}
	}
	return " " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderInput() string {
	pair := fmt.Sprintf("%s → %s", languageLabel(m.source), languageLabel(m.target))

	box := inputStyle
	if m.width > 0 {
		box = box.Width(max(m.width-4, 20))
	}

	lines := []string{pairStyle.Render(pair), box.Render(m.input.View())}

	switch {
	case m.translating:
		lines = append(lines, " "+m.spinner.View()+" Translating...")
	case m.last != nil:
		lines = append(lines, resultStyle.Render(m.last.Record.TranslatedText))
		if m.last.Detected {
			lines = append(lines, mutedStyle.PaddingLeft(1).Render("detected "+languageLabel(m.last.Record.SourceLang)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func (m Model) renderList() string {
	s := m.screens[m.active]
	if len(s.records) == 0 {
		return mutedStyle.PaddingLeft(1).Render("No translations yet")
	}

	width := m.width
	if width <= 0 {
		width = 80
	}

	rows := make([]string, 0, len(s.records))
	for i, r := range s.records {
		rows = append(rows, renderRow(r, i == s.cursor, width))
	}
	return strings.Join(rows, "\n")
}

func renderRow(r translation.Record, selected bool, width int) string {
	pair := fmt.Sprintf("%s→%s", r.SourceLang, r.TargetLang)
	// prefix, pair, separators
	room := max(width-len(pair)-8, 10)
	text := truncate(r.SourceText, room/2) + " " + iconDot + " " + truncate(r.TranslatedText, room/2)

	if selected {
		return selectedBorderStyle.Render(iconSelected) + " " +
			mutedStyle.Render(pair) + " " + selectedStyle.Render(text)
	}
	return "  " + mutedStyle.Render(pair) + " " + normalStyle.Render(text)
}

func (m Model) renderStatus() string {
	if m.err != nil {
		return errorStyle.Render(m.err.Error())
	}
	return statusStyle.Render(m.status)
}

func languageLabel(code string) string {
	if code == translation.AutoDetect {
		return "Detect"
	}
	if l, ok := translation.Lookup(code); ok {
		return l.Name
	}
	return code
}

// truncate clips s to n runes on a single line.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
