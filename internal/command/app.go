// Where: internal/command/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/emarketeer/em-commons/internal/domain/tooling"
	"github.com/emarketeer/em-commons/internal/infra/config"
	"github.com/emarketeer/em-commons/internal/infra/fileops"
	"github.com/emarketeer/em-commons/internal/infra/interaction"
	"github.com/emarketeer/em-commons/internal/infra/preflight"
	"github.com/emarketeer/em-commons/internal/infra/process"
	"github.com/emarketeer/em-commons/internal/infra/ui"
	"github.com/emarketeer/em-commons/internal/meta"
	"github.com/emarketeer/em-commons/internal/usecase/dispatch"
	"github.com/emarketeer/em-commons/internal/version"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Dependencies holds all injected dependencies required for CLI command execution.
// Zero fields fall back to the real implementations.
type Dependencies struct {
	Out       io.Writer
	ErrOut    io.Writer
	Prompter  interaction.Prompter
	IsTTY     func() bool
	Getwd     func() (string, error)
	LookupEnv func(string) (string, bool)
	LoadEnv   func(filenames ...string) error
	Runner    process.CommandRunner
	Generator dispatch.ConfigGenerator
	Buckets   dispatch.BucketChecker
	NewLogger func(verbose bool, out io.Writer) *zap.Logger
}

// CLI defines the wrapper flags parsed by Kong. They must precede the
// command; everything after the command is forwarded untouched.
type CLI struct {
	Dir        string `short:"C" name:"dir" placeholder:"PATH" help:"Project directory (default: current directory)"`
	EnvFile    string `name:"env-file" placeholder:"PATH" help:"Path to .env file (default: <dir>/.env when present)"`
	PackageDir string `name:"package-dir" env:"EM_COMMONS_PACKAGE_DIR" default:"${package_dir}" help:"Shared package directory holding tsconfig, eslint and jest configs"`
	NodeMemory int    `name:"node-memory" env:"EM_COMMONS_NODE_MEMORY" default:"${node_memory}" help:"Heap size in MB for serverless commands (NODE_OPTIONS)"`
	Strict     bool   `help:"Reject unknown commands instead of passing them to serverless"`
	DryRun     bool   `name:"dry-run" help:"Print the command and generated config without running anything"`
	Preflight  bool   `help:"Check that the deployment bucket exists before deploy"`
	Verbose    bool   `short:"v" help:"Verbose output"`
	Emoji      bool   `name:"emoji" help:"Enable emoji output (default: auto)"`
	NoEmoji    bool   `name:"no-emoji" help:"Disable emoji output"`
	Version    bool   `help:"Show version information"`
}

// Run is the main entry point for CLI command execution.
// It returns the process exit code.
func Run(args []string, deps Dependencies) int {
	deps = withDefaults(deps)

	flags := wrapperFlagSet()
	sel, splitErr := tooling.Split(args, tooling.SplitOptions{ValueFlags: flags})

	wrapperArgs, ignored := knownWrapperArgs(sel.WrapperArgs, flags)
	cli, exited, err := parseFlags(wrapperArgs, deps.Out, deps.ErrOut)
	if exited {
		return 0
	}
	if err != nil {
		errUI := ui.NewUI(deps.ErrOut, false)
		printUsage(deps.ErrOut)
		return exitWithError(errUI, err)
	}

	emoji := ui.ResolveEmoji(emojiFlag(cli), deps.IsTTY(), deps.LookupEnv)
	out := ui.NewUI(deps.Out, emoji)
	errOut := ui.NewUI(deps.ErrOut, emoji)

	for _, arg := range ignored {
		errOut.Warn(fmt.Sprintf("Ignoring unknown argument %s before the command", arg))
	}

	if cli.Version {
		out.Info(version.String())
		return 0
	}

	dir, err := projectDir(cli.Dir, deps.Getwd)
	if err != nil {
		return exitWithError(errOut, err)
	}
	if loadEnvFile(cli.EnvFile, dir, deps.LoadEnv, errOut) {
		// Env-backed flag defaults may have changed.
		if reparsed, _, err := parseFlags(wrapperArgs, io.Discard, io.Discard); err == nil {
			cli = reparsed
		}
	}

	logger := deps.NewLogger(cli.Verbose, deps.ErrOut)
	defer func() { _ = logger.Sync() }()
	logger.Debug("arguments", zap.Strings("argv", args), zap.String("dir", dir))

	if splitErr == nil && cli.Strict && sel.Passthrough {
		splitErr = &tooling.UnrecognizedCommandError{Token: sel.Token}
	}
	if splitErr != nil {
		picked, ok := pickCommand(splitErr, deps)
		if !ok {
			if !isNamedCommand(splitErr) {
				printUsage(deps.ErrOut)
			}
			return exitCode(out, errOut, process.Result{}, splitErr)
		}
		sel = tooling.Selection{WrapperArgs: sel.WrapperArgs, Token: picked.Name, Spec: picked, Forwarded: []string{}}
	}
	logger.Debug("selection",
		zap.String("command", sel.Spec.Name),
		zap.String("token", sel.Token),
		zap.Bool("passthrough", sel.Passthrough),
		zap.Strings("wrapper", sel.WrapperArgs),
		zap.Strings("forwarded", sel.Forwarded),
	)

	var buckets dispatch.BucketChecker
	if cli.Preflight {
		buckets = deps.Buckets
	}
	workflow := dispatch.NewWorkflow(deps.Runner, deps.Generator, buckets, out, logger)
	res, err := workflow.Run(context.Background(), dispatch.Request{
		Dir:       dir,
		Selection: sel,
		Layout: tooling.Layout{
			PackageDir:   cli.PackageDir,
			NodeMemoryMB: cli.NodeMemory,
		},
		DryRun:    cli.DryRun,
		Preflight: cli.Preflight,
		LookupEnv: deps.LookupEnv,
	})
	return exitCode(out, errOut, res, err)
}

func withDefaults(deps Dependencies) Dependencies {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.ErrOut == nil {
		deps.ErrOut = os.Stderr
	}
	if deps.Prompter == nil {
		deps.Prompter = interaction.HuhPrompter{}
	}
	if deps.IsTTY == nil {
		deps.IsTTY = func() bool {
			return interaction.IsTerminal(os.Stdin) && interaction.IsTerminal(os.Stdout)
		}
	}
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}
	if deps.LookupEnv == nil {
		deps.LookupEnv = os.LookupEnv
	}
	if deps.LoadEnv == nil {
		deps.LoadEnv = godotenv.Load
	}
	if deps.Runner == nil {
		deps.Runner = process.ExecRunner{RelaySignals: true}
	}
	if deps.Generator == nil {
		deps.Generator = config.Generator{}
	}
	if deps.Buckets == nil {
		deps.Buckets = preflight.NewS3BucketChecker()
	}
	if deps.NewLogger == nil {
		deps.NewLogger = newLogger
	}
	return deps
}

// parseFlags parses wrapper flags. exited reports that kong already handled
// the invocation (for example --help).
func parseFlags(args []string, out, errOut io.Writer) (CLI, bool, error) {
	var cli CLI
	exited := false
	parser, err := kong.New(&cli,
		kong.Name(cliName()),
		kong.Description(describeCommands()),
		kong.Writers(out, errOut),
		kong.Exit(func(int) { exited = true }),
		flagVars(),
	)
	if err != nil {
		return CLI{}, false, err
	}
	if _, err := parser.Parse(args); err != nil {
		return CLI{}, exited, err
	}
	if cli.NodeMemory <= 0 {
		return CLI{}, exited, fmt.Errorf("--node-memory must be positive, got %d", cli.NodeMemory)
	}
	return cli, exited, nil
}

// knownWrapperArgs keeps the tokens that name a wrapper flag (and the value of
// a flag that takes one). Anything else before the command is returned as
// ignored so a stray token never blocks the run.
func knownWrapperArgs(args []string, takesValue map[string]bool) (known, ignored []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, _, inline := strings.Cut(arg, "=")
		needsValue, ok := takesValue[name]
		if !ok {
			ignored = append(ignored, arg)
			continue
		}
		known = append(known, arg)
		if needsValue && !inline && i+1 < len(args) {
			i++
			known = append(known, args[i])
		}
	}
	return known, ignored
}

// wrapperFlagSet maps every spelling of a wrapper flag to whether it takes a
// separate value.
func wrapperFlagSet() map[string]bool {
	flags := map[string]bool{"--help": false, "-h": false}
	parser, err := kong.New(&CLI{}, flagVars())
	if err != nil {
		return flags
	}
	for _, flag := range parser.Model.Flags {
		needsValue := !flag.IsBool()
		flags["--"+flag.Name] = needsValue
		if flag.Short != 0 {
			flags["-"+string(flag.Short)] = needsValue
		}
	}
	return flags
}

func flagVars() kong.Vars {
	return kong.Vars{
		"package_dir": meta.DefaultPackageDir,
		"node_memory": strconv.Itoa(meta.DefaultNodeMemoryMB),
	}
}

func emojiFlag(cli CLI) *bool {
	switch {
	case cli.NoEmoji:
		v := false
		return &v
	case cli.Emoji:
		v := true
		return &v
	}
	return nil
}

func projectDir(flag string, getwd func() (string, error)) (string, error) {
	dir := flag
	if dir == "" {
		wd, err := getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve project directory: %w", err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return "", fmt.Errorf("project directory %s does not exist", abs)
	}
	return abs, nil
}

// loadEnvFile loads the explicit env file, or <dir>/.env when present.
// Variables already set in the environment are left untouched.
func loadEnvFile(explicit, dir string, load func(...string) error, out ui.UserInterface) bool {
	path := explicit
	if path == "" {
		path = filepath.Join(dir, meta.DotEnvFile)
		if !fileops.FileExists(path) {
			return false
		}
	}
	if err := load(path); err != nil {
		out.Warn(fmt.Sprintf("Warning: failed to load env file %s: %v", path, err))
		return false
	}
	return true
}

// pickCommand offers the command picker when no command was given on an
// interactive terminal.
func pickCommand(splitErr error, deps Dependencies) (tooling.Spec, bool) {
	if isNamedCommand(splitErr) || deps.Prompter == nil || !deps.IsTTY() {
		return tooling.Spec{}, false
	}
	choice, err := deps.Prompter.SelectValue("Select a command", commandOptions())
	if err != nil || choice == "" {
		return tooling.Spec{}, false
	}
	return tooling.Lookup(choice)
}

func isNamedCommand(err error) bool {
	var unrecognized *tooling.UnrecognizedCommandError
	return errors.As(err, &unrecognized) && unrecognized.Token != ""
}
