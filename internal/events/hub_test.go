package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAndSubscribe(t *testing.T) {
	h := NewHub(10)
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(Event{Type: TaskStarted, TaskID: "t1", Framework: "android-studio"})

	select {
	case ev := <-ch:
		assert.Equal(t, TaskStarted, ev.Type)
		assert.Equal(t, "t1", ev.TaskID)
		assert.NotZero(t, ev.ID)
		assert.False(t, ev.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestSnapshotSince(t *testing.T) {
	h := NewHub(10)

	h.Publish(Event{Type: TaskStarted, TaskID: "t1"})
	h.Publish(Event{Type: TaskProgress, TaskID: "t1", Percent: 50})
	h.Publish(Event{Type: TaskDone, TaskID: "t1"})

	all := h.SnapshotSince(0)
	require.Len(t, all, 3)

	rest := h.SnapshotSince(all[0].ID)
	require.Len(t, rest, 2)
	assert.Equal(t, TaskProgress, rest[0].Type)
	assert.Equal(t, TaskDone, rest[1].Type)
}

func TestRingOverwritesOldest(t *testing.T) {
	h := NewHub(2)

	h.Publish(Event{Type: TaskStarted, TaskID: "t1"})
	h.Publish(Event{Type: TaskProgress, TaskID: "t1"})
	h.Publish(Event{Type: TaskDone, TaskID: "t1"})

	all := h.SnapshotSince(0)
	require.Len(t, all, 2)
	assert.Equal(t, TaskProgress, all[0].Type)
	assert.Equal(t, TaskDone, all[1].Type)
}

func TestCancelStopsDelivery(t *testing.T) {
	h := NewHub(10)
	ch, cancel := h.Subscribe()
	cancel()

	h.Publish(Event{Type: TaskStarted, TaskID: "t1"})

	_, open := <-ch
	assert.False(t, open, "cancelled subscription channel must be closed")
}

func TestTerminal(t *testing.T) {
	assert.False(t, Event{Type: TaskStarted}.Terminal())
	assert.False(t, Event{Type: TaskProgress}.Terminal())
	assert.True(t, Event{Type: TaskDone}.Terminal())
	assert.True(t, Event{Type: TaskFailed}.Terminal())
}
