package process

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"syscall"
	"testing"

	"github.com/emarketeer/em-commons/internal/domain/tooling"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecRunnerSuccess(t *testing.T) {
	skipWithoutShell(t)
	var out bytes.Buffer
	runner := ExecRunner{Stdout: &out}
	res, err := runner.Run(context.Background(), tooling.Invocation{
		Dir:     t.TempDir(),
		Program: "sh",
		Args:    []string{"-c", "echo $EM_TEST_VALUE"},
		Env:     []string{"EM_TEST_VALUE=forwarded"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 0 || res.Signaled() {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := strings.TrimSpace(out.String()); got != "forwarded" {
		t.Fatalf("stdout = %q", got)
	}
}

func TestExecRunnerPropagatesExitCode(t *testing.T) {
	skipWithoutShell(t)
	res, err := ExecRunner{}.Run(context.Background(), tooling.Invocation{
		Program: "sh",
		Args:    []string{"-c", "exit 3"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 3 || res.Signaled() {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestExecRunnerReportsSignal(t *testing.T) {
	skipWithoutShell(t)
	res, err := ExecRunner{}.Run(context.Background(), tooling.Invocation{
		Program: "sh",
		Args:    []string{"-c", "kill -9 $$"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Signal != syscall.SIGKILL {
		t.Fatalf("signal = %v, want SIGKILL", res.Signal)
	}
	if res.ExitCode != 137 {
		t.Fatalf("exit code = %d, want 137", res.ExitCode)
	}
}

func TestExecRunnerMissingProgram(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), tooling.Invocation{
		Program: "em-commons-definitely-not-installed",
	})
	if err == nil {
		t.Fatalf("expected spawn error")
	}
}
