package command

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emarketeer/em-commons/internal/domain/tooling"
	"github.com/emarketeer/em-commons/internal/infra/interaction"
	"github.com/emarketeer/em-commons/internal/meta"
)

// cliName is the name shown in help text. npm scripts that alias the binary
// set CLI_CMD so suggestions match what the developer typed.
func cliName() string {
	if name := strings.TrimSpace(os.Getenv("CLI_CMD")); name != "" {
		return name
	}
	return meta.Slug
}

// describeCommands renders the command table shown in --help and usage output.
func describeCommands() string {
	var b strings.Builder
	b.WriteString("Run the shared TypeScript microservice toolchain.\n\nCommands:\n")
	for _, spec := range tooling.Commands() {
		name := spec.Name
		if len(spec.Aliases) > 0 {
			name += " (" + strings.Join(spec.Aliases, ", ") + ")"
		}
		fmt.Fprintf(&b, "  %-20s %s\n", name, spec.Description)
	}
	b.WriteString("\nAny other command is passed to serverless with the generated config.\n")
	b.WriteString("Arguments after the command are forwarded unchanged.")
	return b.String()
}

func printUsage(out io.Writer) {
	cmd := cliName()
	fmt.Fprintf(out, "Usage: %s [flags] <command> [args...]\n\n", cmd)
	fmt.Fprintln(out, describeCommands())
	fmt.Fprintf(out, "\nTry: %s --help\n", cmd)
}

func commandOptions() []interaction.SelectOption {
	specs := tooling.Commands()
	options := make([]interaction.SelectOption, 0, len(specs))
	for _, spec := range specs {
		options = append(options, interaction.SelectOption{
			Label: fmt.Sprintf("%-13s %s", spec.Name, spec.Description),
			Value: spec.Name,
		})
	}
	return options
}
