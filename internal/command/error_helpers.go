// Where: internal/command/error_helpers.go
// What: Shared CLI error output.
// Why: Keep failure output consistent across every exit path.
package command

import (
	"github.com/emarketeer/em-commons/internal/infra/ui"
)

// exitWithError prints err and returns exit code 1.
func exitWithError(out ui.UserInterface, err error) int {
	out.Error(err.Error())
	return exitFailure
}

// exitWithSuggestion prints message followed by next steps and returns exit code 1.
func exitWithSuggestion(out ui.UserInterface, message string, suggestions []string) int {
	out.Error(message)
	if len(suggestions) == 0 {
		return exitFailure
	}
	out.Info("Next steps:")
	for _, s := range suggestions {
		out.Info("  - " + s)
	}
	return exitFailure
}
