// Where: internal/command/app_test.go
// What: Tests for CLI run behavior.
// Why: Ensure forwarding, exit codes and cleanup remain stable.
package command

import (
	"errors"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/emarketeer/em-commons/internal/infra/process"
	"github.com/emarketeer/em-commons/internal/meta"
	"github.com/google/go-cmp/cmp"
)

const serverlessYAML = "service: orders\nprovider:\n  stage: dev\n"

func TestRunLintForwardsFix(t *testing.T) {
	h := newHarness(t)
	if code := h.run("lint", "--fix"); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, h.errOut.String())
	}
	if len(h.runner.calls) != 1 {
		t.Fatalf("expected one spawn, got %d", len(h.runner.calls))
	}
	inv := h.runner.calls[0]
	want := []string{"eslint", "-c", meta.DefaultPackageDir + "/" + meta.ESLintConfig, "--fix"}
	if inv.Program != "npx" {
		t.Fatalf("program = %q", inv.Program)
	}
	if diff := cmp.Diff(want, inv.Args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(h.out.String(), "running npx eslint -c") {
		t.Fatalf("missing running line: %q", h.out.String())
	}
}

func TestRunWrapperFlagsNotForwarded(t *testing.T) {
	h := newHarness(t)
	project := h.dir
	writeFile(t, filepath.Join(project, meta.ProjectConfigFile), serverlessYAML)
	h.dir = t.TempDir() // -C must win over the working directory.

	code := h.run("-v", "--node-memory", "2048", "-C", project, "deploy", "--stage", "prod")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, h.errOut.String())
	}
	if len(h.runner.calls) != 1 || h.runner.calls[0].Dir != project {
		t.Fatalf("unexpected spawn: %+v", h.runner.calls)
	}
	inv := h.runner.calls[0]
	want := []string{"serverless", "deploy", "--config", meta.GeneratedConfigFile, "--stage", "prod"}
	if diff := cmp.Diff(want, inv.Args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"NODE_OPTIONS=--max_old_space_size=2048"}, inv.Env); diff != "" {
		t.Fatalf("env mismatch (-want +got):\n%s", diff)
	}
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name       string
		result     process.Result
		err        error
		wantCode   int
		wantOutput string
	}{
		{name: "success", wantCode: 0},
		{name: "child failure", result: process.Result{ExitCode: 2}, wantCode: 2},
		{name: "sigkill", result: process.Result{ExitCode: 137, Signal: syscall.SIGKILL}, wantCode: 137, wantOutput: "`kill -9`"},
		{name: "sigterm", result: process.Result{ExitCode: 143, Signal: syscall.SIGTERM}, wantCode: 143, wantOutput: "`kill` or `killall`"},
		{name: "relayed 137", result: process.Result{ExitCode: 137}, wantCode: 137, wantOutput: "ran out of memory"},
		{name: "spawn failure", err: errors.New("exec: \"npx\": executable file not found"), wantCode: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.runner.result = tt.result
			h.runner.err = tt.err

			code := h.run("tsc")
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d", code, tt.wantCode)
			}
			if tt.wantOutput != "" && !strings.Contains(h.out.String(), tt.wantOutput) {
				t.Fatalf("missing diagnostic %q in %q", tt.wantOutput, h.out.String())
			}
			if exists(filepath.Join(h.dir, meta.TSConfigFile)) {
				t.Fatalf("tsconfig.json survived the run")
			}
		})
	}
}

func TestRunDeployCleansUpAfterFailure(t *testing.T) {
	h := newHarness(t)
	writeFile(t, filepath.Join(h.dir, meta.ProjectConfigFile), serverlessYAML)
	h.runner.result = process.Result{ExitCode: 1}

	if code := h.run("deploy"); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	for _, name := range []string{meta.GeneratedConfigFile, meta.TSConfigFile} {
		if exists(filepath.Join(h.dir, name)) {
			t.Fatalf("%s survived the run", name)
		}
	}
}

func TestRunMissingConfigDoesNotSpawn(t *testing.T) {
	h := newHarness(t)
	if code := h.run("deploy"); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if len(h.runner.calls) != 0 {
		t.Fatalf("runner must not be called")
	}
	if !strings.Contains(h.errOut.String(), meta.ProjectConfigFile) {
		t.Fatalf("expected config error, got %q", h.errOut.String())
	}
}

func TestRunUnrecognizedStrict(t *testing.T) {
	h := newHarness(t)
	if code := h.run("--strict", "info"); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if len(h.runner.calls) != 0 {
		t.Fatalf("runner must not be called")
	}
	if !strings.Contains(h.errOut.String(), `unrecognized command "info"`) {
		t.Fatalf("unexpected stderr: %q", h.errOut.String())
	}
}

func TestRunPassthrough(t *testing.T) {
	h := newHarness(t)
	writeFile(t, filepath.Join(h.dir, meta.ProjectConfigFile), serverlessYAML)
	if code := h.run("remove", "--stage", "dev"); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, h.errOut.String())
	}
	want := []string{"serverless", "remove", "--config", meta.GeneratedConfigFile, "--stage", "dev"}
	if diff := cmp.Diff(want, h.runner.calls[0].Args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestRunIgnoresUnknownLeadingTokens(t *testing.T) {
	tests := []struct {
		name string
		args []string
		warn string
	}{
		{"bare word", []string{"foo", "lint", "--fix"}, "foo"},
		{"unknown flag", []string{"--unknown", "lint", "--fix"}, "--unknown"},
		{"mixed with known flags", []string{"-v", "--unknown=1", "--node-memory", "2048", "lint", "--fix"}, "--unknown=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if code := h.run(tt.args...); code != 0 {
				t.Fatalf("exit code = %d, stderr: %s", code, h.errOut.String())
			}
			if len(h.runner.calls) != 1 {
				t.Fatalf("expected one spawn, got %d", len(h.runner.calls))
			}
			want := []string{"eslint", "-c", meta.DefaultPackageDir + "/" + meta.ESLintConfig, "--fix"}
			if diff := cmp.Diff(want, h.runner.calls[0].Args); diff != "" {
				t.Fatalf("args mismatch (-want +got):\n%s", diff)
			}
			if !strings.Contains(h.errOut.String(), "Ignoring unknown argument "+tt.warn) {
				t.Fatalf("missing warning for %s: %q", tt.warn, h.errOut.String())
			}
		})
	}
}

func TestRunInvalidWrapperFlagValue(t *testing.T) {
	for _, args := range [][]string{
		{"--node-memory", "lots", "lint"},
		{"--node-memory", "0", "lint"},
	} {
		h := newHarness(t)
		if code := h.run(args...); code != 1 {
			t.Fatalf("%v: exit code = %d", args, code)
		}
		if len(h.runner.calls) != 0 {
			t.Fatalf("%v: runner must not be called", args)
		}
	}
}

func TestRunNoArgsWithoutTTY(t *testing.T) {
	h := newHarness(t)
	if code := h.run(); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(h.errOut.String(), "Usage:") {
		t.Fatalf("expected usage, got %q", h.errOut.String())
	}
	if len(h.prompt.titles) != 0 {
		t.Fatalf("picker must not open without a terminal")
	}
}

func TestRunNoArgsPicker(t *testing.T) {
	h := newHarness(t)
	h.tty = true
	h.prompt.choice = "type-check"

	if code := h.run(); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, h.errOut.String())
	}
	if len(h.runner.calls) != 1 {
		t.Fatalf("expected one spawn")
	}
	if diff := cmp.Diff([]string{"tsc", "--noEmit"}, h.runner.calls[0].Args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestRunDryRun(t *testing.T) {
	h := newHarness(t)
	writeFile(t, filepath.Join(h.dir, meta.ProjectConfigFile), serverlessYAML)
	if code := h.run("--dry-run", "deploy"); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, h.errOut.String())
	}
	if len(h.runner.calls) != 0 {
		t.Fatalf("dry run must not spawn")
	}
	out := h.out.String()
	if !strings.Contains(out, "running npx serverless deploy --config generated.serverless.yml") {
		t.Fatalf("missing running line: %q", out)
	}
	if !strings.Contains(out, "service: orders") {
		t.Fatalf("missing generated config: %q", out)
	}
}

func TestRunLoadsDotEnv(t *testing.T) {
	h := newHarness(t)
	writeFile(t, filepath.Join(h.dir, meta.DotEnvFile), "AWS_PROFILE=dev\n")
	if code := h.run("lint"); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if diff := cmp.Diff([]string{filepath.Join(h.dir, meta.DotEnvFile)}, h.envLoad); diff != "" {
		t.Fatalf("env files mismatch (-want +got):\n%s", diff)
	}
}

func TestRunExplicitEnvFile(t *testing.T) {
	h := newHarness(t)
	if code := h.run("--env-file", "ci.env", "lint"); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if diff := cmp.Diff([]string{"ci.env"}, h.envLoad); diff != "" {
		t.Fatalf("env files mismatch (-want +got):\n%s", diff)
	}
	if len(h.runner.calls) != 1 || len(h.runner.calls[0].Args) != 3 {
		t.Fatalf("env-file must not be forwarded: %+v", h.runner.calls)
	}
}

func TestRunVersion(t *testing.T) {
	h := newHarness(t)
	if code := h.run("--version"); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(h.out.String(), meta.AppName+" ") {
		t.Fatalf("unexpected version output: %q", h.out.String())
	}
}

func TestRunHelp(t *testing.T) {
	h := newHarness(t)
	if code := h.run("--help"); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(h.out.String(), "invoke-local") {
		t.Fatalf("help should list commands: %q", h.out.String())
	}
	if len(h.runner.calls) != 0 {
		t.Fatalf("help must not spawn")
	}
}
