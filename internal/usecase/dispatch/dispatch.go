// Where: internal/usecase/dispatch/dispatch.go
// What: Orchestrate one wrapped tool run: prepare files, spawn, clean up.
// Why: Keep the run sequence testable without a real toolchain or filesystem side effects.
package dispatch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/emarketeer/em-commons/internal/domain/tooling"
	"github.com/emarketeer/em-commons/internal/infra/config"
	"github.com/emarketeer/em-commons/internal/infra/fileops"
	"github.com/emarketeer/em-commons/internal/infra/process"
	"github.com/emarketeer/em-commons/internal/infra/ui"
	"github.com/emarketeer/em-commons/internal/meta"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ConfigGenerator produces the merged deployment config for a project directory.
type ConfigGenerator interface {
	Generate(dir string) (config.Generated, error)
	Render(dir string) ([]byte, *yaml.Node, error)
}

// Files tracks transient files for a single run.
type Files interface {
	Track(path string)
	CopyIn(src, dst string) error
	Release() error
}

// BucketChecker reports whether an S3 bucket exists.
type BucketChecker interface {
	BucketExists(ctx context.Context, region, bucket string) (bool, error)
}

// Request captures the inputs required to run one command.
type Request struct {
	Dir       string
	Selection tooling.Selection
	Layout    tooling.Layout
	DryRun    bool
	Preflight bool
	LookupEnv func(string) (string, bool)
}

// Workflow executes the dispatch steps.
type Workflow struct {
	Runner        process.CommandRunner
	Generator     ConfigGenerator
	NewFiles      func() Files
	Buckets       BucketChecker
	UserInterface ui.UserInterface
	Logger        *zap.Logger
}

// NewWorkflow constructs a Workflow backed by a fileops.Scope.
func NewWorkflow(
	runner process.CommandRunner,
	generator ConfigGenerator,
	buckets BucketChecker,
	userInterface ui.UserInterface,
	logger *zap.Logger,
) Workflow {
	return Workflow{
		Runner:        runner,
		Generator:     generator,
		NewFiles:      func() Files { return fileops.NewScope() },
		Buckets:       buckets,
		UserInterface: userInterface,
		Logger:        logger,
	}
}

// Run prepares the project directory, runs the selected tool and removes
// every transient file before returning, whatever the outcome.
func (w Workflow) Run(ctx context.Context, req Request) (res process.Result, err error) {
	if w.Runner == nil {
		return process.Result{}, errRunnerNotConfigured
	}
	spec := req.Selection.Spec
	if spec.NeedsGeneratedConfig && w.Generator == nil {
		return process.Result{}, errGeneratorNotConfigured
	}
	logger := w.logger()

	files := w.files()
	defer func() {
		if releaseErr := files.Release(); releaseErr != nil {
			logger.Warn("cleanup failed", zap.Error(releaseErr))
			err = multierr.Append(err, &CleanupError{Err: releaseErr})
			return
		}
		logger.Debug("transient files released")
	}()

	layout := req.Layout
	layout.Token = req.Selection.Token
	layout.GeneratedConfig = meta.GeneratedConfigFile

	var rendered []byte
	var root *yaml.Node
	if spec.NeedsGeneratedConfig {
		rendered, root, err = w.prepareConfig(req, files)
		if err != nil {
			return process.Result{}, err
		}
	}

	if req.Preflight && spec.Deploys {
		if err := w.checkBucket(ctx, root, req); err != nil {
			return process.Result{}, err
		}
	}

	if spec.NeedsTSConfig && !req.DryRun {
		src := packagePath(req.Dir, layout.PackageDir, meta.TSConfigSource)
		dst := filepath.Join(req.Dir, meta.TSConfigFile)
		if err := files.CopyIn(src, dst); err != nil {
			return process.Result{}, fmt.Errorf("prepare tsconfig: %w", err)
		}
		logger.Debug("copied tsconfig", zap.String("from", src), zap.String("to", dst))
	}

	inv, err := tooling.Render(spec, layout, req.Selection.Forwarded, req.LookupEnv)
	if err != nil {
		return process.Result{}, err
	}
	inv.Dir = req.Dir
	logger.Debug("rendered invocation",
		zap.String("program", inv.Program),
		zap.Strings("args", inv.Args),
		zap.Strings("env", inv.Env),
		zap.String("dir", inv.Dir),
	)

	w.info(fmt.Sprintf("running %s", inv.CommandLine()))
	if req.DryRun {
		if w.UserInterface != nil {
			rows := []ui.KeyValue{
				{Key: "Directory", Value: inv.Dir},
				{Key: "Command", Value: spec.Name},
			}
			if spec.NeedsTSConfig {
				rows = append(rows, ui.KeyValue{Key: "TSConfig", Value: packagePath(req.Dir, layout.PackageDir, meta.TSConfigSource)})
			}
			w.UserInterface.Block("🧪", "Dry run", rows)
		}
		if rendered != nil {
			w.info(string(rendered))
		}
		return process.Result{}, nil
	}

	res, err = w.Runner.Run(ctx, inv)
	if err != nil {
		return res, err
	}
	logger.Debug("child exited", zap.Int("code", res.ExitCode), zap.Bool("signaled", res.Signaled()))
	if res.Signaled() {
		return res, &SignalError{Command: spec.Name, Result: res}
	}
	return res, nil
}

func (w Workflow) prepareConfig(req Request, files Files) ([]byte, *yaml.Node, error) {
	if req.DryRun {
		return w.Generator.Render(req.Dir)
	}
	files.Track(filepath.Join(req.Dir, meta.GeneratedConfigFile))
	generated, err := w.Generator.Generate(req.Dir)
	if err != nil {
		return nil, nil, err
	}
	w.logger().Debug("generated config", zap.String("path", generated.Path))
	return nil, generated.Root, nil
}

func (w Workflow) files() Files {
	if w.NewFiles != nil {
		return w.NewFiles()
	}
	return fileops.NewScope()
}

func (w Workflow) logger() *zap.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return zap.NewNop()
}

func (w Workflow) info(msg string) {
	if w.UserInterface != nil {
		w.UserInterface.Info(msg)
	}
}

func packagePath(dir, packageDir, name string) string {
	if filepath.IsAbs(packageDir) {
		return filepath.Join(packageDir, name)
	}
	return filepath.Join(dir, packageDir, name)
}
