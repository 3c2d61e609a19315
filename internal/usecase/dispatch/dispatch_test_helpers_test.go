package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/emarketeer/em-commons/internal/domain/tooling"
	"github.com/emarketeer/em-commons/internal/infra/process"
	"github.com/emarketeer/em-commons/internal/infra/ui"
	"github.com/emarketeer/em-commons/internal/meta"
)

type testUI struct {
	success []string
	info    []string
	warn    []string
	error   []string
	blocks  map[string][]ui.KeyValue
}

func (u *testUI) Success(msg string) { u.success = append(u.success, msg) }
func (u *testUI) Info(msg string)    { u.info = append(u.info, msg) }
func (u *testUI) Warn(msg string)    { u.warn = append(u.warn, msg) }
func (u *testUI) Error(msg string)   { u.error = append(u.error, msg) }

func (u *testUI) Block(_, title string, rows []ui.KeyValue) {
	if u.blocks == nil {
		u.blocks = map[string][]ui.KeyValue{}
	}
	u.blocks[title] = rows
}

// fakeRunner records invocations and observes the project directory at spawn time.
type fakeRunner struct {
	calls    []tooling.Invocation
	result   process.Result
	err      error
	observed map[string]bool
}

func (r *fakeRunner) Run(_ context.Context, inv tooling.Invocation) (process.Result, error) {
	r.calls = append(r.calls, inv)
	r.observed = map[string]bool{
		meta.GeneratedConfigFile: exists(filepath.Join(inv.Dir, meta.GeneratedConfigFile)),
		meta.TSConfigFile:        exists(filepath.Join(inv.Dir, meta.TSConfigFile)),
	}
	return r.result, r.err
}

type fakeBuckets struct {
	exists bool
	err    error
	region string
	bucket string
}

func (b *fakeBuckets) BucketExists(_ context.Context, region, bucket string) (bool, error) {
	b.region, b.bucket = region, bucket
	return b.exists, b.err
}

const packageDir = "node_modules/shared/dist"

// newProject lays out a project directory with a serverless.yml and the
// shared package's tsconfig.json.
func newProject(t *testing.T, serverless string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, packageDir, meta.TSConfigSource), `{"compilerOptions":{"strict":true}}`)
	if serverless != "" {
		writeFile(t, filepath.Join(dir, meta.ProjectConfigFile), serverless)
	}
	return dir
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

func selection(t *testing.T, args ...string) tooling.Selection {
	t.Helper()
	sel, err := tooling.Split(args, tooling.SplitOptions{})
	if err != nil {
		t.Fatalf("Split(%v): %v", args, err)
	}
	return sel
}

func noEnv(string) (string, bool) { return "", false }
