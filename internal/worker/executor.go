// Package worker runs install tasks on background goroutines. Completion
// callbacks never run on a worker: they are marshalled onto the main loop,
// so all post-install bookkeeping happens on one goroutine.
package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/miamibc/ubuntu-make/internal/events"
	"github.com/miamibc/ubuntu-make/internal/log"
	"github.com/miamibc/ubuntu-make/internal/mainloop"
)

// TaskFunc is the body of a background task. progress reports completion in
// [0, 100] and is safe to call from the task goroutine.
type TaskFunc func(ctx context.Context, progress func(float64)) error

// Executor runs tasks on a bounded pool of goroutines.
type Executor struct {
	loop   *mainloop.Loop
	hub    *events.Hub
	sem    chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewExecutor creates an Executor dispatching completions onto loop.
// concurrency bounds the number of tasks running at once.
func NewExecutor(loop *mainloop.Loop, hub *events.Hub, concurrency int) *Executor {
	if concurrency <= 0 {
		concurrency = 2
	}
	return &Executor{
		loop:   loop,
		hub:    hub,
		sem:    make(chan struct{}, concurrency),
		logger: log.WithComponent("worker"),
	}
}

// Submit schedules a task and returns its ID immediately. onDone, if not
// nil, runs on the loop goroutine once the task finishes.
func (e *Executor) Submit(ctx context.Context, framework string, run TaskFunc, onDone func(error)) string {
	id := uuid.NewString()
	taskLogger := log.WithTask(id).With("framework", framework)

	var complete func(error)
	if onDone != nil {
		complete = mainloop.WrapArg(e.loop, onDone)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		e.sem <- struct{}{}
		defer func() { <-e.sem }()

		taskLogger.Info("task started")
		e.hub.Publish(events.Event{Type: events.TaskStarted, TaskID: id, Framework: framework})

		progress := func(pct float64) {
			e.hub.Publish(events.Event{Type: events.TaskProgress, TaskID: id, Framework: framework, Percent: pct})
		}

		err := run(ctx, progress)
		if err != nil {
			taskLogger.Error("task failed", "error", err)
			e.hub.Publish(events.Event{Type: events.TaskFailed, TaskID: id, Framework: framework, Error: err.Error()})
		} else {
			taskLogger.Info("task completed")
			e.hub.Publish(events.Event{Type: events.TaskDone, TaskID: id, Framework: framework, Percent: 100})
		}

		if complete != nil {
			complete(err)
		}
	}()

	return id
}

// Wait blocks until every submitted task has finished.
func (e *Executor) Wait() {
	e.wg.Wait()
}
