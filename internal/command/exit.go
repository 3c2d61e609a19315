// Where: internal/command/exit.go
// What: Map workflow outcomes onto process exit codes and diagnostics.
// Why: CI pipelines rely on the wrapper exiting exactly like the wrapped tool.
package command

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/emarketeer/em-commons/internal/domain/tooling"
	"github.com/emarketeer/em-commons/internal/infra/config"
	"github.com/emarketeer/em-commons/internal/infra/process"
	"github.com/emarketeer/em-commons/internal/infra/ui"
	"github.com/emarketeer/em-commons/internal/usecase/dispatch"
	"go.uber.org/multierr"
)

const (
	exitFailure = 1
	exitSIGKILL = 128 + int(syscall.SIGKILL)
	exitSIGTERM = 128 + int(syscall.SIGTERM)
)

const (
	msgKilled = "The build failed because the process exited too early. " +
		"This probably means the system ran out of memory or someone called " +
		"`kill -9` on the process."
	msgTerminated = "The build failed because the process exited too early. " +
		"Someone might have called `kill` or `killall`, or the system could " +
		"be shutting down."
)

// exitCode reports diagnostics for res and err and returns the code the
// wrapper exits with. npx relays a grandchild's death as a plain 137 or 143,
// so those codes get the same diagnostics as a direct signal.
func exitCode(out, errOut ui.UserInterface, res process.Result, err error) int {
	var sigErr *dispatch.SignalError
	switch {
	case errors.As(err, &sigErr):
		out.Info(signalMessage(sigErr.Result.Signal))
	case res.ExitCode == exitSIGKILL:
		out.Info(signalMessage(syscall.SIGKILL))
	case res.ExitCode == exitSIGTERM:
		out.Info(signalMessage(syscall.SIGTERM))
	}
	if err == nil {
		return res.ExitCode
	}

	for _, e := range multierr.Errors(err) {
		if errors.As(e, &sigErr) {
			continue
		}
		reportError(errOut, e)
	}
	if res.ExitCode != 0 {
		return res.ExitCode
	}
	return exitFailure
}

func signalMessage(sig syscall.Signal) string {
	switch sig {
	case syscall.SIGKILL:
		return msgKilled
	case syscall.SIGTERM:
		return msgTerminated
	}
	return fmt.Sprintf("The build failed because the process was terminated by signal %d (%s).", int(sig), sig)
}

func reportError(errOut ui.UserInterface, err error) {
	var (
		unrecognized *tooling.UnrecognizedCommandError
		readErr      *config.ReadError
		writeErr     *config.WriteError
		cleanupErr   *dispatch.CleanupError
	)
	switch {
	case errors.As(err, &unrecognized):
		exitWithSuggestion(errOut, err.Error(), []string{
			fmt.Sprintf("Run `%s --help` to list commands", cliName()),
		})
	case errors.As(err, &readErr):
		exitWithSuggestion(errOut, err.Error(), []string{
			"Check that serverless.yml exists in the project directory and declares `service`",
		})
	case errors.As(err, &writeErr):
		exitWithSuggestion(errOut, err.Error(), []string{
			"Check that the project directory is writable",
		})
	case errors.As(err, &cleanupErr):
		exitWithSuggestion(errOut, err.Error(), []string{
			"Remove generated.serverless.yml and tsconfig.json by hand before the next run",
		})
	case errors.Is(err, dispatch.ErrBucketMissing):
		exitWithSuggestion(errOut, err.Error(), []string{
			"Check the stage and region, or create the deployment bucket first",
		})
	default:
		exitWithError(errOut, err)
	}
}
