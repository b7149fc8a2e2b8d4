package mainloop

import (
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync/atomic"

	"github.com/miamibc/ubuntu-make/internal/log"
	"github.com/miamibc/ubuntu-make/internal/registry"
)

// FaultExitCode is the process exit code used when dispatched work panics.
const FaultExitCode = 1

// taskQueueCapacity bounds the deferred-call queue. Enqueueing only blocks
// when this many calls are already pending.
const taskQueueCapacity = 1024

var (
	// ErrAlreadyRunning is returned when Run is called on a running loop.
	ErrAlreadyRunning = errors.New("mainloop: loop is already running")

	// ErrTerminated is returned when Run is called on a stopped loop.
	ErrTerminated = errors.New("mainloop: loop has terminated")
)

// State is the loop lifecycle state.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Loop is the cross-goroutine dispatcher. Work submitted from any goroutine
// runs serially on the goroutine that called Run.
type Loop struct {
	// tasks is the only structure written by multiple goroutines.
	tasks chan func()

	// quitCh is closed exactly once, when the exit code is recorded.
	quitCh chan struct{}

	exitOnce quitOnce
	faulted  atomic.Bool

	state           atomic.Int32
	loopGoroutineID atomic.Uint64

	logger *slog.Logger
}

// quitOnce records the terminal exit code; the first caller wins.
type quitOnce struct {
	done atomic.Bool
	code atomic.Int32
	seal chan struct{}
}

// New creates a Loop in the created state. Run must be called to bind it to
// a goroutine.
func New() *Loop {
	l := &Loop{
		tasks:  make(chan func(), taskQueueCapacity),
		quitCh: make(chan struct{}),
		logger: log.WithComponent("mainloop"),
	}
	l.exitOnce.seal = l.quitCh
	return l
}

// Default returns the one process-wide Loop, constructed through the
// singleton registry on first use.
func Default() *Loop {
	l, _ := registry.Get(registry.Default(), func() (*Loop, error) {
		return New(), nil
	})
	return l
}

// Run binds the calling goroutine as the loop goroutine and blocks, draining
// deferred calls in FIFO order until Quit is observed or dispatched work
// faults. It returns the recorded exit code. Run may be invoked exactly once
// per Loop; further calls fail fast.
func (l *Loop) Run() (int, error) {
	if !l.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) {
		if State(l.state.Load()) == StateStopped {
			return 0, ErrTerminated
		}
		return 0, ErrAlreadyRunning
	}

	// The loop owns its OS thread for its whole lifetime. Collaborators that
	// require thread affinity (desktop toolkits, GLib-style mainloops) rely
	// on this, not just on goroutine identity.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	l.loopGoroutineID.Store(goroutineID())
	defer l.loopGoroutineID.Store(0)
	defer l.state.Store(int32(StateStopped))

	l.logger.Debug("main loop started")

	for {
		select {
		case <-l.quitCh:
			if !l.faulted.Load() {
				l.drain()
			}
			code := int(l.exitOnce.code.Load())
			if l.faulted.Load() {
				// A fault while draining trumps the recorded clean code.
				code = FaultExitCode
			}
			l.logger.Debug("main loop stopped", "exit_code", code)
			return code, nil
		case fn := <-l.tasks:
			l.runTask(fn)
			if l.faulted.Load() {
				// A fault stops the loop promptly; pending calls are not
				// drained once the sequence is suspect.
				l.logger.Debug("main loop stopped", "exit_code", FaultExitCode)
				return FaultExitCode, nil
			}
		}
	}
}

// drain runs the deferred calls already queued when a clean quit was
// observed, then returns. Late enqueues racing with shutdown may or may not
// make the cut; calls present before Quit always run.
func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.tasks:
			l.runTask(fn)
			if l.faulted.Load() {
				return
			}
		default:
			return
		}
	}
}

// runTask executes one deferred call with panic recovery. A panic is a
// dispatch fault: it is logged here, before the controlled exit, and never
// propagates to the goroutine that enqueued the call.
func (l *Loop) runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("unhandled fault in dispatched call",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			l.faulted.Store(true)
			l.requestQuit(FaultExitCode)
		}
	}()
	fn()
}

// Quit requests the loop to stop and records code as the process exit code.
// Safe from any goroutine. Idempotent: the first recorded code wins and
// later calls are ignored.
func (l *Loop) Quit(code int) {
	l.requestQuit(code)
}

// QuitOK is Quit(0).
func (l *Loop) QuitOK() {
	l.requestQuit(0)
}

func (l *Loop) requestQuit(code int) {
	if !l.exitOnce.done.CompareAndSwap(false, true) {
		return
	}
	l.exitOnce.code.Store(int32(code))
	l.state.CompareAndSwap(int32(StateRunning), int32(StateStopping))
	close(l.exitOnce.seal)
}

// Dispatch runs fn on the loop goroutine. Called from the loop goroutine it
// executes fn inline; from any other goroutine it enqueues fn and returns
// without waiting for it. Callers that need a result must arrange their own
// completion signal inside fn.
func (l *Loop) Dispatch(fn func()) {
	if l.OnLoop() {
		fn()
		return
	}
	if State(l.state.Load()) == StateStopped {
		l.logger.Debug("dispatch after loop stop dropped")
		return
	}
	l.tasks <- fn
}

// Wrap returns a callable that marshals fn onto the loop goroutine. The
// returned callable may be invoked from any goroutine.
func (l *Loop) Wrap(fn func()) func() {
	return func() {
		l.Dispatch(fn)
	}
}

// WrapArg is Wrap for callbacks taking one argument. The argument is
// captured at invocation time and travels with the deferred call.
func WrapArg[T any](l *Loop, fn func(T)) func(T) {
	return func(v T) {
		l.Dispatch(func() {
			fn(v)
		})
	}
}

// OnLoop reports whether the caller is running on the loop goroutine.
func (l *Loop) OnLoop() bool {
	id := l.loopGoroutineID.Load()
	return id != 0 && goroutineID() == id
}

// State returns the loop lifecycle state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Running reports whether Run has bound the loop and not yet returned.
func (l *Loop) Running() bool {
	return l.State() == StateRunning
}

// goroutineID parses the current goroutine's ID from its stack header.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
