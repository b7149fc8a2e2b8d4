package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miamibc/ubuntu-make/internal/events"
)

func applyEvent(t *testing.T, m Model, ev events.Event) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(eventMsg(ev))
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestViewShowsTaskLifecycle(t *testing.T) {
	hub := events.NewHub(16)
	m := New(hub, 1)

	m, _ = applyEvent(t, m, events.Event{Type: events.TaskStarted, TaskID: "t1", Framework: "go-lang"})
	assert.Contains(t, m.View(), "go-lang")

	m, _ = applyEvent(t, m, events.Event{Type: events.TaskProgress, TaskID: "t1", Framework: "go-lang", Percent: 50})
	assert.Contains(t, m.View(), "go-lang")

	m, _ = applyEvent(t, m, events.Event{Type: events.TaskDone, TaskID: "t1", Framework: "go-lang"})
	assert.Contains(t, m.View(), "✓")
}

func TestFailureShownWithError(t *testing.T) {
	hub := events.NewHub(16)
	m := New(hub, 1)

	m, _ = applyEvent(t, m, events.Event{Type: events.TaskFailed, TaskID: "t1", Framework: "idea", Error: "download failed"})

	view := m.View()
	assert.Contains(t, view, "✗")
	assert.Contains(t, view, "download failed")
}

func TestQuitsWhenAllTasksTerminal(t *testing.T) {
	hub := events.NewHub(16)
	m := New(hub, 2)

	m, _ = applyEvent(t, m, events.Event{Type: events.TaskDone, TaskID: "t1", Framework: "a"})
	assert.False(t, m.finished(), "one of two tasks is not enough")

	m, cmd := applyEvent(t, m, events.Event{Type: events.TaskDone, TaskID: "t2", Framework: "b"})
	assert.True(t, m.finished())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd(), "terminal state must quit the program")
}

func TestEmptyViewShowsWaiting(t *testing.T) {
	hub := events.NewHub(16)
	m := New(hub, 1)

	assert.True(t, strings.Contains(m.View(), "waiting for tasks"))
}
