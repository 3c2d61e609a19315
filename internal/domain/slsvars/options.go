// Where: internal/domain/slsvars/options.go
// What: Parse serverless CLI options out of forwarded arguments.
// Why: ${opt:...} references resolve against the flags the user passed to the framework.
package slsvars

import "strings"

var shortOptions = map[string]string{
	"s": "stage",
	"r": "region",
	"f": "function",
	"c": "config",
	"v": "verbose",
}

// ParseOptions extracts --name value, --name=value and short aliases.
// A flag followed by another flag (or nothing) is recorded as "true".
func ParseOptions(args []string) map[string]string {
	opts := map[string]string{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		var name string
		switch {
		case strings.HasPrefix(arg, "--") && len(arg) > 2:
			name = arg[2:]
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			name = arg[1:]
			if long, ok := shortOptions[name]; ok {
				name = long
			}
		default:
			continue
		}
		if key, val, ok := strings.Cut(name, "="); ok {
			opts[key] = val
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			opts[name] = args[i+1]
			i++
			continue
		}
		opts[name] = "true"
	}
	return opts
}
