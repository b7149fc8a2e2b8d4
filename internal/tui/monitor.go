// Package tui renders live install progress while background workers run.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/miamibc/ubuntu-make/internal/events"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

type taskState struct {
	framework string
	percent   float64
	done      bool
	failed    bool
	errText   string
}

type eventMsg events.Event

// Model is the Bubble Tea model for install progress.
type Model struct {
	hub      *events.Hub
	expected int

	ch     <-chan events.Event
	cancel func()

	spinner spinner.Model
	bar     progress.Model

	tasks map[string]*taskState
	order []string
}

// New creates a monitor expecting the given number of tasks to finish.
func New(hub *events.Hub, expected int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ch, cancel := hub.Subscribe()
	return Model{
		hub:      hub,
		expected: expected,
		ch:       ch,
		cancel:   cancel,
		spinner:  sp,
		bar:      progress.New(progress.WithDefaultGradient()),
		tasks:    make(map[string]*taskState),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.nextEvent())
}

func (m Model) nextEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.ch
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		(&m).apply(events.Event(msg))
		if m.finished() {
			m.cancel()
			return m, tea.Quit
		}
		return m, m.nextEvent()
	}
	return m, nil
}

func (m *Model) apply(ev events.Event) {
	st, ok := m.tasks[ev.TaskID]
	if !ok {
		st = &taskState{framework: ev.Framework}
		m.tasks[ev.TaskID] = st
		m.order = append(m.order, ev.TaskID)
	}

	switch ev.Type {
	case events.TaskProgress:
		st.percent = ev.Percent
	case events.TaskDone:
		st.percent = 100
		st.done = true
	case events.TaskFailed:
		st.done = true
		st.failed = true
		st.errText = ev.Error
	}
}

func (m Model) finished() bool {
	if len(m.tasks) < m.expected {
		return false
	}
	for _, st := range m.tasks {
		if !st.done {
			return false
		}
	}
	return true
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Installing frameworks"))
	b.WriteString("\n\n")

	for _, id := range m.order {
		st := m.tasks[id]
		switch {
		case st.failed:
			b.WriteString(fmt.Sprintf("%s %s  %s\n",
				failStyle.Render("✗"), st.framework, dimStyle.Render(st.errText)))
		case st.done:
			b.WriteString(fmt.Sprintf("%s %s\n", okStyle.Render("✓"), st.framework))
		default:
			b.WriteString(fmt.Sprintf("%s %s %s\n",
				m.spinner.View(), st.framework, m.bar.ViewAs(st.percent/100)))
		}
	}

	if len(m.order) == 0 {
		b.WriteString(dimStyle.Render("waiting for tasks..."))
		b.WriteString("\n")
	}
	return b.String()
}

// Run blocks until every expected task reaches a terminal state.
func Run(hub *events.Hub, expected int) error {
	p := tea.NewProgram(New(hub, expected))
	_, err := p.Run()
	return err
}
