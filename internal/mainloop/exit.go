package mainloop

import (
	"log/slog"
	"os"
	"sync"

	"github.com/miamibc/ubuntu-make/internal/log"
)

// ExitController owns the process-termination side effect. It terminates the
// process at most once; a second request is a no-op.
type ExitController struct {
	once   sync.Once
	exitFn func(int)
	logger *slog.Logger
}

// NewExitController creates a controller that terminates via os.Exit.
func NewExitController() *ExitController {
	return NewExitControllerFunc(os.Exit)
}

// NewExitControllerFunc creates a controller with a custom exit function.
// Tests use this to observe the exit code instead of dying.
func NewExitControllerFunc(exitFn func(int)) *ExitController {
	return &ExitController{
		exitFn: exitFn,
		logger: log.WithComponent("exit"),
	}
}

// Exit terminates the process with code. Only the first call has any effect.
func (c *ExitController) Exit(code int) {
	c.once.Do(func() {
		if code != 0 {
			c.logger.Warn("exiting with failure", "exit_code", code)
		}
		c.exitFn(code)
	})
}

// RunAndExit drives the loop on the calling goroutine and terminates the
// process with the loop's recorded exit code. A loop that cannot run at all
// is a programming error and exits with FaultExitCode.
func (c *ExitController) RunAndExit(l *Loop) {
	code, err := l.Run()
	if err != nil {
		c.logger.Error("main loop failed to run", "error", err)
		c.Exit(FaultExitCode)
		return
	}
	c.Exit(code)
}
