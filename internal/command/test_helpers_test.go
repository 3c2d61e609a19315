package command

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/emarketeer/em-commons/internal/domain/tooling"
	"github.com/emarketeer/em-commons/internal/infra/interaction"
	"github.com/emarketeer/em-commons/internal/infra/process"
	"github.com/emarketeer/em-commons/internal/meta"
	"go.uber.org/zap"
)

type fakeRunner struct {
	calls  []tooling.Invocation
	result process.Result
	err    error
}

func (r *fakeRunner) Run(_ context.Context, inv tooling.Invocation) (process.Result, error) {
	r.calls = append(r.calls, inv)
	return r.result, r.err
}

type fakePrompter struct {
	choice string
	titles []string
}

func (p *fakePrompter) SelectValue(title string, _ []interaction.SelectOption) (string, error) {
	p.titles = append(p.titles, title)
	return p.choice, nil
}

type harness struct {
	dir     string
	out     bytes.Buffer
	errOut  bytes.Buffer
	runner  *fakeRunner
	envLoad []string
	tty     bool
	prompt  *fakePrompter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, meta.DefaultPackageDir, meta.TSConfigSource), `{"compilerOptions":{}}`)
	return &harness{dir: dir, runner: &fakeRunner{}, prompt: &fakePrompter{}}
}

func (h *harness) deps() Dependencies {
	return Dependencies{
		Out:       &h.out,
		ErrOut:    &h.errOut,
		Prompter:  h.prompt,
		IsTTY:     func() bool { return h.tty },
		Getwd:     func() (string, error) { return h.dir, nil },
		LookupEnv: func(string) (string, bool) { return "", false },
		LoadEnv: func(files ...string) error {
			h.envLoad = append(h.envLoad, files...)
			return nil
		},
		Runner:    h.runner,
		NewLogger: func(bool, io.Writer) *zap.Logger { return zap.NewNop() },
	}
}

func (h *harness) run(args ...string) int {
	return Run(args, h.deps())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
