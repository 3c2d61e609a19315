// Where: internal/infra/process/runner.go
// What: Spawn the delegated tool and report how it ended.
// Why: The wrapper's exit status mirrors the child's, including signal deaths.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/emarketeer/em-commons/internal/domain/tooling"
)

// Result describes how a child process ended.
type Result struct {
	ExitCode int
	Signal   syscall.Signal
}

// Signaled reports whether the child was terminated by a signal.
func (r Result) Signaled() bool {
	return r.Signal != 0
}

// CommandRunner defines the interface for executing the delegated tool.
// A non-zero exit or a signal is a Result, not an error; errors mean the
// process could not be started or waited on.
type CommandRunner interface {
	Run(ctx context.Context, inv tooling.Invocation) (Result, error)
}

// ExecRunner is a concrete implementation of CommandRunner using os/exec.
// The child inherits the wrapper's stdio unless overridden.
//
// With RelaySignals set, the wrapper survives SIGINT and SIGTERM while the
// child runs so its cleanup still happens. SIGINT already reaches the child
// through the terminal's process group; SIGTERM is forwarded explicitly.
type ExecRunner struct {
	Stdin        io.Reader
	Stdout       io.Writer
	Stderr       io.Writer
	RelaySignals bool
}

func (r ExecRunner) Run(ctx context.Context, inv tooling.Invocation) (Result, error) {
	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = append(os.Environ(), inv.Env...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if r.Stdin != nil {
		cmd.Stdin = r.Stdin
	}
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	}
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	}

	// Signals are caught before Start so one arriving mid-spawn cannot end
	// the wrapper ahead of its cleanup.
	var forward func(*os.Process)
	if r.RelaySignals {
		var stop func()
		forward, stop = relay()
		defer stop()
	}
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("run %s: %w", inv.Program, err)
	}
	if forward != nil {
		forward(cmd.Process)
	}

	err := cmd.Wait()
	if err == nil {
		return Result{}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return resultFromState(exitErr.ProcessState), nil
	}
	return Result{}, fmt.Errorf("run %s: %w", inv.Program, err)
}

// relay starts catching SIGINT and SIGTERM. SIGTERMs received before the
// child exists are held and delivered once forward hands over the process.
func relay() (forward func(*os.Process), stop func()) {
	signals := make(chan os.Signal, 4)
	started := make(chan *os.Process, 1)
	done := make(chan struct{})
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		var proc *os.Process
		pending := false
		for {
			select {
			case p := <-started:
				proc = p
				if pending {
					_ = proc.Signal(syscall.SIGTERM)
					pending = false
				}
			case sig := <-signals:
				if sig != syscall.SIGTERM {
					continue
				}
				if proc == nil {
					pending = true
					continue
				}
				_ = proc.Signal(sig)
			case <-done:
				return
			}
		}
	}()
	forward = func(p *os.Process) { started <- p }
	stop = func() {
		signal.Stop(signals)
		close(done)
	}
	return forward, stop
}

func resultFromState(state *os.ProcessState) Result {
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		sig := status.Signal()
		return Result{ExitCode: 128 + int(sig), Signal: sig}
	}
	return Result{ExitCode: state.ExitCode()}
}
