// Where: internal/domain/merge/merge.go
// What: Deep merge of two YAML trees with set-union for sequences.
// Why: Combine the shared baseline with a project's serverless.yml deterministically.
package merge

import (
	"errors"
	"fmt"

	"github.com/emarketeer/em-commons/internal/domain/value"
	"gopkg.in/yaml.v3"
)

var (
	ErrNotMapping = errors.New("document root must be a mapping")
	errTooDeep    = errors.New("merge exceeds maximum depth")
)

// Merge combines base and overlay into a new tree. Neither input is modified.
//
// Mappings merge recursively: base keys keep their position and keys only
// present in overlay are appended in overlay order. Two sequences become their
// union (base items first, structural duplicates dropped, first occurrence
// wins); a non-null scalar joins a base sequence as one more item. Any other
// pairing is resolved in favour of overlay.
func Merge(base, overlay *yaml.Node) (*yaml.Node, error) {
	b, err := root(base, "base")
	if err != nil {
		return nil, err
	}
	o, err := root(overlay, "overlay")
	if err != nil {
		return nil, err
	}
	return mergeNodes(b, o, 0)
}

// Document wraps a merged root so yaml encoders emit it as a single document.
func Document(root *yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
}

func root(node *yaml.Node, name string) (*yaml.Node, error) {
	expanded, err := value.Expand(value.Unwrap(node))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if expanded == nil || expanded.Kind == 0 {
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
	}
	if !value.IsMapping(expanded) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotMapping)
	}
	return expanded, nil
}

func mergeNodes(base, overlay *yaml.Node, depth int) (*yaml.Node, error) {
	if depth > value.MaxDepth {
		return nil, errTooDeep
	}
	switch {
	case value.IsMapping(base) && value.IsMapping(overlay):
		return mergeMappings(base, overlay, depth)
	case value.IsSequence(base) && value.IsSequence(overlay):
		return Union(base, overlay), nil
	case value.IsSequence(base) && overlay.Kind == yaml.ScalarNode && !value.IsNull(overlay):
		return Union(base, &yaml.Node{Kind: yaml.SequenceNode, Content: []*yaml.Node{overlay}}), nil
	default:
		return value.Clone(overlay), nil
	}
}

func mergeMappings(base, overlay *yaml.Node, depth int) (*yaml.Node, error) {
	out := value.Clone(base)
	for i := 0; i+1 < len(overlay.Content); i += 2 {
		key, val := overlay.Content[i], overlay.Content[i+1]
		idx := value.MappingIndex(out, key.Value)
		if idx < 0 {
			out.Content = append(out.Content, value.Clone(key), value.Clone(val))
			continue
		}
		merged, err := mergeNodes(out.Content[idx], val, depth+1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key.Value, err)
		}
		out.Content[idx] = merged
	}
	return out, nil
}

// Union concatenates the items of a and b, keeping the first occurrence of
// every structurally equal item.
func Union(a, b *yaml.Node) *yaml.Node {
	out := value.Clone(a)
	out.Content = nil
	for _, seq := range []*yaml.Node{a, b} {
		for _, item := range seq.Content {
			if contains(out.Content, item) {
				continue
			}
			out.Content = append(out.Content, value.Clone(item))
		}
	}
	return out
}

func contains(items []*yaml.Node, candidate *yaml.Node) bool {
	for _, item := range items {
		if value.Equal(item, candidate) {
			return true
		}
	}
	return false
}
