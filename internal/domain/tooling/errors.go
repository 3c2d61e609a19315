// Where: internal/domain/tooling/errors.go
// What: Shared error definitions for command resolution.
// Why: Ensure consistent error wrapping without dynamic error creation.
package tooling

import (
	"errors"
	"fmt"
)

var (
	errProgramRequired = errors.New("command program is required")
	errInvalidEnvEntry = errors.New("env entry must be KEY=VALUE")
)

// UnrecognizedCommandError means no subcommand matched and no passthrough applied.
type UnrecognizedCommandError struct {
	Token string
}

func (e *UnrecognizedCommandError) Error() string {
	if e.Token == "" {
		return "no command given"
	}
	return fmt.Sprintf("unrecognized command %q", e.Token)
}
