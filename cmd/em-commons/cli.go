// Where: cmd/em-commons/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"fmt"
	"os"

	"github.com/emarketeer/em-commons/internal/command"
	"github.com/emarketeer/em-commons/internal/infra/config"
	"github.com/emarketeer/em-commons/internal/infra/interaction"
	"github.com/emarketeer/em-commons/internal/infra/preflight"
	"github.com/emarketeer/em-commons/internal/infra/process"
)

var getwd = os.Getwd

// buildDependencies constructs the runtime dependencies required by the CLI.
func buildDependencies() (command.Dependencies, error) {
	if _, err := getwd(); err != nil {
		return command.Dependencies{}, fmt.Errorf("resolve working directory: %w", err)
	}
	return command.Dependencies{
		Out:       os.Stdout,
		ErrOut:    os.Stderr,
		Prompter:  interaction.HuhPrompter{},
		IsTTY:     isInteractive,
		Getwd:     getwd,
		LookupEnv: os.LookupEnv,
		Runner:    process.ExecRunner{RelaySignals: true},
		Generator: config.Generator{},
		Buckets:   preflight.NewS3BucketChecker(),
	}, nil
}

func isInteractive() bool {
	return interaction.IsTerminal(os.Stdin) && interaction.IsTerminal(os.Stdout)
}
