// Where: internal/domain/tooling/split.go
// What: Locate the subcommand inside argv.
// Why: Separate wrapper flags from the arguments forwarded to the wrapped tool.
package tooling

import "strings"

// Selection is the outcome of splitting argv around the subcommand token.
type Selection struct {
	// WrapperArgs precede the subcommand and configure the wrapper itself.
	WrapperArgs []string
	Token       string
	Spec        Spec
	// Forwarded follow the subcommand; the token itself is not included.
	Forwarded   []string
	Passthrough bool
}

// SplitOptions tune how unrecognized argv is handled.
type SplitOptions struct {
	// ValueFlags lists wrapper flags that consume the following token.
	ValueFlags map[string]bool
	// Strict disables passthrough of unrecognized commands.
	Strict bool
}

// Split finds the first recognized subcommand token. When none is present the
// first bare word after the wrapper flags is forwarded to the deployment
// framework, unless opts.Strict is set.
func Split(args []string, opts SplitOptions) (Selection, error) {
	skipNext := false
	for i, arg := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if isValueFlag(arg, opts.ValueFlags) {
			skipNext = true
			continue
		}
		spec, ok := Lookup(arg)
		if !ok {
			continue
		}
		return Selection{
			WrapperArgs: clone(args[:i]),
			Token:       arg,
			Spec:        spec,
			Forwarded:   clone(args[i+1:]),
		}, nil
	}

	idx := firstBareWord(args, opts.ValueFlags)
	if idx < 0 {
		return Selection{WrapperArgs: clone(args)}, &UnrecognizedCommandError{}
	}
	token := args[idx]
	if opts.Strict {
		return Selection{WrapperArgs: clone(args[:idx])}, &UnrecognizedCommandError{Token: token}
	}
	return Selection{
		WrapperArgs: clone(args[:idx]),
		Token:       token,
		Spec:        Passthrough(token),
		Forwarded:   clone(args[idx+1:]),
		Passthrough: true,
	}, nil
}

func firstBareWord(args []string, valueFlags map[string]bool) int {
	skipNext := false
	for i, arg := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.HasPrefix(arg, "-") && len(arg) > 1 {
			skipNext = isValueFlag(arg, valueFlags)
			continue
		}
		if strings.TrimSpace(arg) == "" {
			continue
		}
		return i
	}
	return -1
}

func isValueFlag(arg string, valueFlags map[string]bool) bool {
	return valueFlags[arg] && !strings.Contains(arg, "=")
}

func clone(args []string) []string {
	return append([]string{}, args...)
}
