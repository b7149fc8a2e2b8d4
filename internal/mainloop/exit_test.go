package mainloop

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitControllerExitsOnce(t *testing.T) {
	var codes []int
	c := NewExitControllerFunc(func(code int) { codes = append(codes, code) })

	c.Exit(42)
	c.Exit(0)
	c.Exit(7)

	assert.Equal(t, []int{42}, codes, "only the first termination request takes effect")
}

func TestRunAndExitCleanQuit(t *testing.T) {
	exited := make(chan int, 1)
	c := NewExitControllerFunc(func(code int) { exited <- code })

	l := New()
	go func() {
		require.Eventually(t, l.Running, testTimeout, testPoll)
		l.QuitOK()
	}()

	c.RunAndExit(l)
	assert.Equal(t, 0, <-exited)
}

func TestRunAndExitExplicitCode(t *testing.T) {
	exited := make(chan int, 1)
	c := NewExitControllerFunc(func(code int) { exited <- code })

	l := New()
	go func() {
		require.Eventually(t, l.Running, testTimeout, testPoll)
		l.Quit(42)
	}()

	c.RunAndExit(l)
	assert.Equal(t, 42, <-exited)
}

func TestRunAndExitFault(t *testing.T) {
	exited := make(chan int, 1)
	c := NewExitControllerFunc(func(code int) { exited <- code })

	l := New()
	l.logger = slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	l.tasks <- func() { panic("fatal callback") }

	c.RunAndExit(l)
	assert.Equal(t, FaultExitCode, <-exited)
}

func TestRunAndExitUnrunnableLoop(t *testing.T) {
	exited := make(chan int, 1)
	c := NewExitControllerFunc(func(code int) { exited <- code })

	l := New()
	done := startLoop(t, l)

	// A second RunAndExit on the same loop is a programming error and must
	// terminate with the failure code rather than hang.
	c.RunAndExit(l)
	assert.Equal(t, FaultExitCode, <-exited)

	l.QuitOK()
	waitExit(t, done)
}
