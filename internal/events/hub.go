// Package events carries install-task progress between background workers
// and their observers (the TUI, logging).
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Type classifies a task event.
type Type string

const (
	TaskStarted  Type = "task.started"
	TaskProgress Type = "task.progress"
	TaskDone     Type = "task.done"
	TaskFailed   Type = "task.failed"
)

// Event is one progress notification for an install task.
type Event struct {
	ID        int64     `json:"id"`
	Type      Type      `json:"type"`
	At        time.Time `json:"at"`
	TaskID    string    `json:"task_id"`
	Framework string    `json:"framework"`
	Percent   float64   `json:"percent,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Terminal reports whether the event ends its task.
func (e Event) Terminal() bool {
	return e.Type == TaskDone || e.Type == TaskFailed
}

// Hub is an in-memory pub/sub with a small ring buffer for late observers.
type Hub struct {
	nextID atomic.Int64

	mu    sync.Mutex
	ring  []Event
	start int
	size  int

	subs      map[int]chan Event
	nextSubID int
}

// NewHub creates a Hub retaining the last capacity events.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 100
	}
	return &Hub{
		ring: make([]Event, capacity),
		subs: make(map[int]chan Event),
	}
}

// Publish stamps ev with an ID and timestamp and fans it out.
func (h *Hub) Publish(ev Event) {
	ev.ID = h.nextID.Add(1)
	ev.At = time.Now().UTC()

	h.mu.Lock()
	h.pushLocked(ev)
	for _, ch := range h.subs {
		// Don't let slow observers block workers.
		select {
		case ch <- ev:
		default:
		}
	}
	h.mu.Unlock()
}

// Subscribe returns a channel of future events and a cancel function.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSubID
	h.nextSubID++
	ch := make(chan Event, 128)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
		h.mu.Unlock()
	}

	return ch, cancel
}

// SnapshotSince returns buffered events with ID > lastID, oldest-first.
// lastID of 0 returns the full buffer.
func (h *Hub) SnapshotSince(lastID int64) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Event, 0, h.size)
	for i := 0; i < h.size; i++ {
		ev := h.ring[(h.start+i)%len(h.ring)]
		if lastID == 0 || ev.ID > lastID {
			out = append(out, ev)
		}
	}
	return out
}

func (h *Hub) pushLocked(ev Event) {
	capacity := len(h.ring)
	if capacity == 0 {
		return
	}

	if h.size < capacity {
		idx := (h.start + h.size) % capacity
		h.ring[idx] = ev
		h.size++
		return
	}

	// Overwrite oldest.
	h.ring[h.start] = ev
	h.start = (h.start + 1) % capacity
}
