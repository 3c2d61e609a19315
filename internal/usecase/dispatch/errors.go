// Where: internal/usecase/dispatch/errors.go
// What: Errors surfaced by the dispatch workflow.
// Why: The CLI maps these onto exit codes and diagnostics in one place.
package dispatch

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/emarketeer/em-commons/internal/infra/process"
)

var (
	errRunnerNotConfigured    = errors.New("command runner is not configured")
	errGeneratorNotConfigured = errors.New("config generator is not configured")
	ErrBucketMissing          = errors.New("deployment bucket does not exist")
)

// SignalError reports a child terminated by a signal.
type SignalError struct {
	Command string
	Result  process.Result
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("%s terminated by signal %s", e.Command, signalName(e.Result.Signal))
}

// CleanupError reports transient files that could not be removed or restored.
type CleanupError struct {
	Err error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleanup: %v", e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}

func signalName(sig syscall.Signal) string {
	switch sig {
	case syscall.SIGKILL:
		return "SIGKILL"
	case syscall.SIGTERM:
		return "SIGTERM"
	case syscall.SIGINT:
		return "SIGINT"
	}
	return sig.String()
}
