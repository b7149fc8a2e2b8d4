// Package mainloop owns the single main execution context of the process.
//
// One goroutine, pinned to its OS thread, runs the loop; every other
// goroutine hands work to it through Dispatch or a Wrap-decorated callback.
// Deferred calls execute one at a time, in the order they were enqueued.
// The loop also owns shutdown: Quit records a terminal exit code (first call
// wins), and a panic inside dispatched work is logged and converted into a
// controlled exit with FaultExitCode instead of unwinding into the caller.
//
// The rest of the application sees exactly two entry points: the decorator
// (Wrap / WrapArg) and Quit.
package mainloop
