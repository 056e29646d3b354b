package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/lingo/internal/core/history"
	"github.com/hay-kot/lingo/internal/core/translation"
	"github.com/hay-kot/lingo/internal/lingo"
)

// Service is the part of lingo.Service the TUI drives.
type Service interface {
	TranslateText(ctx context.Context, req lingo.TextRequest) (*lingo.Result, error)
	NewView(p history.Partition) *history.View
	CharLimit() int
}

// Options configures the TUI behavior.
type Options struct {
	Source   string // initial source language, "auto" to detect
	Target   string // initial target language
	Provider string // translation provider, empty for the default
}

const (
	screenTranslate = iota
	screenNotes
)

// screen is one tab and its private cache of a history partition.
type screen struct {
	title   string
	view    *history.View
	records []translation.Record
	cursor  int
}

func (s *screen) selected() (translation.Record, bool) {
	if s.cursor < 0 || s.cursor >= len(s.records) {
		return translation.Record{}, false
	}
	return s.records[s.cursor], true
}

// sync pulls the view's snapshot and keeps the cursor in range.
func (s *screen) sync() {
	s.records = s.view.Records()
	s.cursor = min(s.cursor, max(len(s.records)-1, 0))
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx      context.Context
	service  Service
	keys     keyMap
	help     help.Model
	input    textinput.Model
	spinner  spinner.Model
	screens  []*screen
	active   int
	sources  []string
	targets  []string
	source   string
	target   string
	provider string

	translating bool
	last        *lingo.Result
	status      string
	err         error
	width       int
	height      int
	quitting    bool
}

// refreshedMsg is sent when a screen's view has been reloaded from the store.
type refreshedMsg struct {
	screen int
}

// translatedMsg is sent when a translation request finishes.
type translatedMsg struct {
	result *lingo.Result
	err    error
}

// opDoneMsg is sent when a background history operation completes.
type opDoneMsg struct {
	screen int
	action string
	err    error
}

// New creates a new TUI model.
func New(ctx context.Context, service Service, opts Options) Model {
	codes := translation.Codes()

	source := translation.NormalizeCode(opts.Source)
	if !translation.IsSupported(source) {
		source = translation.AutoDetect
	}
	target := translation.NormalizeCode(opts.Target)
	if !translation.IsSupported(target) {
		target = codes[0]
	}

	input := textinput.New()
	input.Placeholder = "Type text to translate"
	input.CharLimit = service.CharLimit()
	input.Prompt = "› "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		ctx:     ctx,
		service: service,
		keys:    defaultKeyMap(),
		help:    help.New(),
		input:   input,
		spinner: sp,
		screens: []*screen{
			screenTranslate: {title: "Translate", view: service.NewView(history.Recent)},
			screenNotes:     {title: "Notes", view: service.NewView(history.Notes)},
		},
		sources:  append([]string{translation.AutoDetect}, codes...),
		targets:  codes,
		source:   source,
		target:   target,
		provider: opts.Provider,
	}
}

// Init loads the first screen.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.refresh(m.active))
}

func (m Model) refresh(idx int) tea.Cmd {
	view := m.screens[idx].view
	ctx := m.ctx
	return func() tea.Msg {
		view.Refresh(ctx)
		return refreshedMsg{screen: idx}
	}
}

func (m Model) translate(text string) tea.Cmd {
	req := lingo.TextRequest{
		Text:        text,
		Source:      m.source,
		Target:      m.target,
		Provider:    m.provider,
		SkipHistory: true,
	}
	svc, ctx := m.service, m.ctx
	return func() tea.Msg {
		res, err := svc.TranslateText(ctx, req)
		return translatedMsg{result: res, err: err}
	}
}

// waitOp turns a background history operation into a message.
func waitOp(idx int, action string, op *history.Op) tea.Cmd {
	return func() tea.Msg {
		_, err := op.Wait()
		return opDoneMsg{screen: idx, action: action, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-8, 10)
		return m, nil

	case refreshedMsg:
		m.screens[msg.screen].sync()
		return m, nil

	case translatedMsg:
		return m.handleTranslated(msg)

	case opDoneMsg:
		m.screens[msg.screen].sync()
		if msg.err != nil {
			m.err = fmt.Errorf("%s: %w", msg.action, msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.translating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleTranslated(msg translatedMsg) (tea.Model, tea.Cmd) {
	m.translating = false
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}

	m.last = msg.result
	m.err = nil
	m.status = ""
	m.input.Reset()

	s := m.screens[screenTranslate]
	op := s.view.OptimisticAppend(m.ctx, msg.result.Record)
	s.cursor = 0
	s.sync()
	return m, waitOp(screenTranslate, "record translation", op)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.SwitchScreen):
		return m.switchScreen()
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.move(1)
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		return m.deleteSelected()
	case key.Matches(msg, m.keys.Save):
		return m.saveSelected()
	}

	if m.active != screenTranslate {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Translate):
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.translating {
			return m, nil
		}
		m.translating = true
		m.err = nil
		return m, tea.Batch(m.translate(text), m.spinner.Tick)
	case key.Matches(msg, m.keys.Swap):
		m.source, m.target = translation.Swap(m.source, m.target)
		return m, nil
	case key.Matches(msg, m.keys.CycleSource):
		m.source = cycle(m.sources, m.source)
		return m, nil
	case key.Matches(msg, m.keys.CycleTarget):
		m.target = cycle(m.targets, m.target)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// switchScreen activates the next screen and reloads its view.
func (m Model) switchScreen() (tea.Model, tea.Cmd) {
	m.active = (m.active + 1) % len(m.screens)
	m.status = ""
	m.err = nil
	if m.active == screenTranslate {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	return m, m.refresh(m.active)
}

func (m *Model) move(delta int) {
	s := m.screens[m.active]
	if len(s.records) == 0 {
		return
	}
	s.cursor = min(max(s.cursor+delta, 0), len(s.records)-1)
}

func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	s := m.screens[m.active]
	r, ok := s.selected()
	if !ok {
		return m, nil
	}

	op := s.view.OptimisticRemove(m.ctx, r.ID)
	s.sync()
	m.status = "Deleted"
	return m, waitOp(m.active, "delete", op)
}

// saveSelected copies the selected recent translation into the notes view.
func (m Model) saveSelected() (tea.Model, tea.Cmd) {
	if m.active != screenTranslate {
		return m, nil
	}
	r, ok := m.screens[screenTranslate].selected()
	if !ok {
		return m, nil
	}

	notes := m.screens[screenNotes]
	op := notes.view.OptimisticAppend(m.ctx, r)
	notes.sync()
	m.status = "Saved to notes"
	return m, waitOp(screenNotes, "save", op)
}

func cycle(options []string, current string) string {
	i := slices.Index(options, current)
	return options[(i+1)%len(options)]
}
