// Where: internal/domain/slsvars/resolver.go
// What: Resolve serverless-style ${source:address, fallback} references.
// Why: Wrapper-side checks need concrete values (stage, region, bucket) from the merged config.
package slsvars

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emarketeer/em-commons/internal/domain/value"
	"gopkg.in/yaml.v3"
)

const maxDepth = 32

// Resolver expands self:, opt:, env: and sls: references. Other sources
// (ssm:, file(), cf:, s3: ...) need the deployment framework and are rejected.
type Resolver struct {
	Self      *yaml.Node
	Options   map[string]string
	LookupEnv func(string) (string, bool)
}

// Resolve expands every reference in s.
func (r Resolver) Resolve(s string) (string, error) {
	return r.expand(s, 0)
}

// ResolvePath looks up a dotted path in Self and expands it.
func (r Resolver) ResolvePath(path string) (string, error) {
	return r.resolveSelf(path, 0)
}

func (r Resolver) expand(s string, depth int) (string, error) {
	if depth > maxDepth {
		return "", errTooDeep
	}
	var out strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			out.WriteString(s)
			return out.String(), nil
		}
		end, err := matchingBrace(s, start)
		if err != nil {
			return "", err
		}
		out.WriteString(s[:start])
		resolved, err := r.resolveRef(s[start+2:end], depth+1)
		if err != nil {
			return "", err
		}
		out.WriteString(resolved)
		s = s[end+1:]
	}
}

func (r Resolver) resolveRef(content string, depth int) (string, error) {
	var lastErr error
	for _, alt := range splitAlternatives(content) {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		if strings.HasPrefix(alt, "${") {
			val, err := r.expand(alt, depth)
			if err == nil && val != "" {
				return val, nil
			}
			if err != nil && !isMissing(err) {
				return "", err
			}
			lastErr = err
			continue
		}
		if unquoted, ok := unquote(alt); ok {
			return unquoted, nil
		}
		if strings.Contains(alt, "(") {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedSource, alt)
		}
		source, address, hasSource := strings.Cut(alt, ":")
		if !hasSource {
			return alt, nil
		}
		val, found, err := r.lookup(strings.TrimSpace(source), strings.TrimSpace(address), depth)
		if err != nil {
			if !isMissing(err) {
				return "", err
			}
			lastErr = err
			continue
		}
		if found {
			return val, nil
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", &UnresolvedError{Ref: content}
}

func (r Resolver) lookup(source, address string, depth int) (string, bool, error) {
	switch source {
	case "self":
		val, err := r.resolveSelf(address, depth)
		if err != nil {
			return "", false, err
		}
		return val, true, nil
	case "opt":
		val, ok := r.Options[address]
		return val, ok, nil
	case "env":
		if r.LookupEnv == nil {
			return "", false, nil
		}
		val, ok := r.LookupEnv(address)
		return val, ok && val != "", nil
	case "sls":
		if address != "stage" {
			return "", false, fmt.Errorf("%w: sls:%s", ErrUnsupportedSource, address)
		}
		val, err := r.expand("${opt:stage, self:provider.stage, 'dev'}", depth)
		return val, err == nil, err
	default:
		return "", false, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	}
}

func (r Resolver) resolveSelf(path string, depth int) (string, error) {
	if depth > maxDepth {
		return "", errTooDeep
	}
	var node *yaml.Node
	if path == "" {
		node = value.Unwrap(r.Self)
	} else {
		node = value.Lookup(r.Self, strings.Split(path, ".")...)
	}
	if value.IsNull(node) {
		return "", &UnresolvedError{Ref: "self:" + path}
	}
	raw, ok := value.AsString(node)
	if !ok {
		return "", fmt.Errorf("self:%s: %w", path, errNotScalar)
	}
	return r.expand(raw, depth+1)
}

func isMissing(err error) bool {
	var unresolved *UnresolvedError
	return errors.As(err, &unresolved)
}

// matchingBrace returns the index of the "}" closing the "${" at start.
func matchingBrace(s string, start int) (int, error) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "${"):
			depth++
			i++
		case s[i] == '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %s", errUnterminated, s[start:])
}

// splitAlternatives splits on commas that are outside nested references and quotes.
func splitAlternatives(content string) []string {
	var parts []string
	depth := 0
	var quote byte
	last := 0
	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case strings.HasPrefix(content[i:], "${"):
			depth++
			i++
		case c == '}':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, content[last:i])
			last = i + 1
		}
	}
	return append(parts, content[last:])
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return "", false
}
