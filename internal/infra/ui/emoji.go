package ui

import "strings"

// ResolveEmoji decides whether decorated output is used. An explicit flag
// wins; otherwise NO_EMOJI, NO_COLOR or TERM=dumb disable emoji, and
// non-terminal output never gets it.
func ResolveEmoji(explicit *bool, isTTY bool, lookupEnv func(string) (string, bool)) bool {
	if explicit != nil {
		return *explicit
	}
	if lookupEnv != nil {
		for _, key := range []string{"NO_EMOJI", "NO_COLOR"} {
			if v, ok := lookupEnv(key); ok && strings.TrimSpace(v) != "" {
				return false
			}
		}
		if term, ok := lookupEnv("TERM"); ok && term == "dumb" {
			return false
		}
	}
	return isTTY
}
