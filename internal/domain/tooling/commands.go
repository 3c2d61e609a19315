// Where: internal/domain/tooling/commands.go
// What: Table of wrapped toolchain commands.
// Why: Every microservice runs lint/test/deploy the same way, so the invocations live in one place.
package tooling

import (
	"strings"

	"github.com/emarketeer/em-commons/internal/meta"
)

// Spec describes how one subcommand maps onto an external tool.
// Args and Env entries are text/template sources rendered against a Layout.
type Spec struct {
	Name        string
	Aliases     []string
	Description string
	Program     string
	Args        []string
	// Env entries are KEY=VALUE templates, only applied when KEY is not already
	// set in the wrapper's environment.
	Env                  []string
	NeedsTSConfig        bool
	NeedsGeneratedConfig bool
	Deploys              bool
}

// Matches reports whether token names this spec or one of its aliases.
func (s Spec) Matches(token string) bool {
	if token == s.Name {
		return true
	}
	for _, alias := range s.Aliases {
		if token == alias {
			return true
		}
	}
	return false
}

const (
	packageFile  = `{{ .PackageDir | clean }}/`
	configFlag   = "--config"
	generatedArg = "{{ .GeneratedConfig }}"
)

const nodeOptions = meta.NodeOptionsEnv + "=--max_old_space_size={{ .NodeMemoryMB | default 4096 }}"

var builtin = []Spec{
	{
		Name:          "lint",
		Description:   "Run eslint with the shared config",
		Program:       "npx",
		Args:          []string{"eslint", "-c", packageFile + meta.ESLintConfig},
		NeedsTSConfig: true,
	},
	{
		Name:          "type-check",
		Aliases:       []string{"tsc"},
		Description:   "Type-check the project with tsc --noEmit",
		Program:       "npx",
		Args:          []string{"tsc", "--noEmit"},
		NeedsTSConfig: true,
	},
	{
		Name:          "test",
		Aliases:       []string{"jest"},
		Description:   "Run jest with the shared config",
		Program:       "npx",
		Args:          []string{"jest", configFlag, packageFile + meta.JestConfig},
		NeedsTSConfig: true,
	},
	{
		Name:                 "deploy",
		Description:          "Deploy the service with the generated serverless config",
		Program:              "npx",
		Args:                 []string{"serverless", "deploy", configFlag, generatedArg},
		Env:                  []string{nodeOptions},
		NeedsTSConfig:        true,
		NeedsGeneratedConfig: true,
		Deploys:              true,
	},
	{
		Name:                 "invoke-local",
		Description:          "Invoke a function locally with the generated serverless config",
		Program:              "npx",
		Args:                 []string{"serverless", "invoke", "local", configFlag, generatedArg},
		Env:                  []string{nodeOptions},
		NeedsTSConfig:        true,
		NeedsGeneratedConfig: true,
	},
}

// Commands returns the recognized subcommands in display order.
func Commands() []Spec {
	out := make([]Spec, len(builtin))
	copy(out, builtin)
	return out
}

// Lookup finds the spec for a recognized subcommand token.
func Lookup(token string) (Spec, bool) {
	for _, spec := range builtin {
		if spec.Matches(token) {
			return spec, true
		}
	}
	return Spec{}, false
}

// Passthrough forwards an arbitrary command to the deployment framework.
func Passthrough(token string) Spec {
	return Spec{
		Name:                 token,
		Description:          "serverless " + token,
		Program:              "npx",
		Args:                 []string{"serverless", "{{ .Token }}", configFlag, generatedArg},
		Env:                  []string{nodeOptions},
		NeedsTSConfig:        true,
		NeedsGeneratedConfig: true,
	}
}

// Names lists canonical command names, used in usage output.
func Names() string {
	names := make([]string, 0, len(builtin))
	for _, spec := range builtin {
		names = append(names, spec.Name)
	}
	return strings.Join(names, ", ")
}
