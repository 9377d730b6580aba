// Package tui provides the live dashboard using Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"flowtrack/internal/category"
	"flowtrack/internal/render"
	"flowtrack/internal/session"
	"flowtrack/internal/store"
	"flowtrack/internal/timer"
	"flowtrack/internal/tracker"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	breakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			MarginLeft(4)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// Model is the dashboard model.
type Model struct {
	tracker *tracker.Tracker
	store   store.Store
	refresh time.Duration

	cats     []*category.Category
	states   map[string]timer.State
	selected int
	now      time.Time

	noting bool
	input  textinput.Model

	spinner  spinner.Model
	lastEnd  []session.Record
	err      error
	ready    bool
	quitting bool
	width    int
}

// Message types
type tickMsg time.Time
type refreshMsg struct {
	cats   []*category.Category
	states map[string]timer.State
}
type actionMsg struct {
	records []session.Record
	err     error
}

// New creates the dashboard model. refresh is the tick interval driving
// the timer evaluation.
func New(trk *tracker.Tracker, st store.Store, refresh time.Duration) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "How did it go? (enter to save, esc to skip)"
	ti.CharLimit = 500
	ti.Width = 60

	return Model{
		tracker: trk,
		store:   st,
		refresh: refresh,
		states:  map[string]timer.State{},
		spinner: sp,
		input:   ti,
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshCmd evaluates all timers and reloads the category list. The
// tracker's TickAll is idempotent, so repeated ticks are safe.
func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		states, err := m.tracker.TickAll(ctx)
		if err != nil {
			return actionMsg{err: err}
		}
		cats, err := m.store.ListCategories(ctx, false)
		if err != nil {
			return actionMsg{err: err}
		}
		return refreshMsg{cats: cats, states: states}
	}
}

func (m Model) current() *category.Category {
	if len(m.cats) == 0 {
		return nil
	}
	return m.cats[m.selected]
}

func (m Model) toggleCmd(cat *category.Category) tea.Cmd {
	return func() tea.Msg {
		_, err := m.tracker.Toggle(context.Background(), cat)
		return actionMsg{err: err}
	}
}

func (m Model) endCmd(cat *category.Category, notes string) tea.Cmd {
	return func() tea.Msg {
		recs, err := m.tracker.End(context.Background(), cat, session.Metadata{Notes: notes})
		return actionMsg{records: recs, err: err}
	}
}

func (m Model) skipBreakCmd(cat *category.Category) tea.Cmd {
	return func() tea.Msg {
		_, err := m.tracker.SkipBreak(context.Background(), cat)
		return actionMsg{err: err}
	}
}

func (m Model) extendBreakCmd(cat *category.Category) tea.Cmd {
	return func() tea.Msg {
		_, err := m.tracker.ExtendBreak(context.Background(), cat, 5*time.Minute)
		return actionMsg{err: err}
	}
}

// Init starts the spinner and the tick loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshCmd(), m.tickCmd())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.noting {
			return m.updateNoting(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case " ":
			if cat := m.current(); cat != nil {
				m.err = nil
				return m, m.toggleCmd(cat)
			}
		case "e":
			cat := m.current()
			if cat == nil {
				break
			}
			if s, ok := m.states[cat.ID]; ok && s.ChainOpen() {
				m.noting = true
				m.input.SetValue("")
				m.input.Focus()
				return m, textinput.Blink
			}
		case "s":
			if cat := m.current(); cat != nil {
				m.err = nil
				return m, m.skipBreakCmd(cat)
			}
		case "x":
			if cat := m.current(); cat != nil {
				m.err = nil
				return m, m.extendBreakCmd(cat)
			}
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.cats)-1 {
				m.selected++
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.ready = true

	case tickMsg:
		m.now = m.tracker.Now()
		cmds = append(cmds, m.refreshCmd(), m.tickCmd())

	case refreshMsg:
		m.cats = msg.cats
		m.states = msg.states
		m.now = m.tracker.Now()
		m.ready = true
		if m.selected >= len(m.cats) {
			m.selected = 0
		}

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		if len(msg.records) > 0 {
			m.lastEnd = msg.records
		}
		cmds = append(cmds, m.refreshCmd())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateNoting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.noting = false
		m.input.Blur()
		if cat := m.current(); cat != nil {
			return m, m.endCmd(cat, strings.TrimSpace(m.input.Value()))
		}
		return m, nil
	case "esc":
		// Skip the note but still end the chain.
		m.noting = false
		m.input.Blur()
		if cat := m.current(); cat != nil {
			return m, m.endCmd(cat, "")
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return "Keep the flow.\n"
	}
	if !m.ready {
		return fmt.Sprintf("\n  %s Loading...", m.spinner.View())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("⏱ flowtrack") + "\n\n")

	if len(m.cats) == 0 {
		b.WriteString(infoStyle.Render("  No categories yet. Run: flowtrack category add <name>\n"))
		b.WriteString(helpStyle.Render("  q: quit"))
		return b.String()
	}

	for i, cat := range m.cats {
		m.renderCategory(&b, i, cat)
	}

	if m.noting {
		b.WriteString("\n  " + m.input.View() + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  "+m.err.Error()) + "\n")
	}
	if len(m.lastEnd) > 0 && !m.noting {
		var total time.Duration
		for _, r := range m.lastEnd {
			total += r.Duration
		}
		b.WriteString("\n" + infoStyle.Render(fmt.Sprintf("  saved %s of focus", render.FormatDuration(total))) + "\n")
	}

	help := "space: start/stop │ e: end │ s: skip break │ x: +5m break │ j/k: category │ q: quit"
	b.WriteString(helpStyle.Render("  " + help))

	return b.String()
}

func (m Model) renderCategory(b *strings.Builder, i int, cat *category.Category) {
	s, ok := m.states[cat.ID]
	if !ok {
		s = timer.NewState(cat.Mode)
	}

	cursor := "  "
	if i == m.selected {
		cursor = "▶ "
	}

	var word string
	switch s.Status {
	case timer.StatusRunning:
		word = runningStyle.Render("running")
	case timer.StatusBreak:
		word = breakStyle.Render("break")
	case timer.StatusPaused:
		word = pausedStyle.Render("paused")
	default:
		word = infoStyle.Render("idle")
	}

	line := fmt.Sprintf("%s%-16s %s", cursor, render.Truncate(cat.Name, 16), word)
	b.WriteString(line + "\n")

	if i != m.selected {
		return
	}

	var clock string
	switch {
	case s.Status == timer.StatusBreak:
		clock = fmt.Sprintf("break %s left", render.FormatDuration(timer.Remaining(s, m.now)))
	case s.Mode == timer.ModeCountdown && s.Active():
		clock = fmt.Sprintf("%s / %s",
			render.FormatDuration(timer.Elapsed(s, m.now)),
			render.FormatDuration(s.Target))
	default:
		clock = render.FormatDuration(timer.Elapsed(s, m.now))
	}
	if s.Status == timer.StatusRunning {
		clock = m.spinner.View() + " " + clock
	}

	box := boxStyle.Render(clockStyle.Render(clock))
	for _, l := range strings.Split(box, "\n") {
		b.WriteString("  " + l + "\n")
	}
	if n := len(s.CompletedTasks); n > 0 {
		b.WriteString(infoStyle.Render(fmt.Sprintf("    %d task(s) done this session", n)) + "\n")
	}
}
