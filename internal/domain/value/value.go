// Where: internal/domain/value/value.go
// What: Helpers over the generic YAML value tree.
// Why: Keep merge and variable resolution concise without infrastructure dependencies.
package value

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MaxDepth bounds recursion over user-supplied trees.
const MaxDepth = 64

var errTooDeep = errors.New("yaml tree exceeds maximum depth")

const tagNull = "!!null"

// Unwrap returns the root content of a document node, or the node itself.
func Unwrap(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		return node.Content[0]
	}
	return node
}

// IsMapping reports whether node is a mapping.
func IsMapping(node *yaml.Node) bool {
	return node != nil && node.Kind == yaml.MappingNode
}

// IsSequence reports whether node is a sequence.
func IsSequence(node *yaml.Node) bool {
	return node != nil && node.Kind == yaml.SequenceNode
}

// IsNull reports whether node is missing or an explicit null scalar.
func IsNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.ShortTag() == tagNull)
}

// MappingIndex returns the index of the value node for key, or -1.
func MappingIndex(mapping *yaml.Node, key string) int {
	if !IsMapping(mapping) {
		return -1
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return i + 1
		}
	}
	return -1
}

// Get returns the value stored under key in mapping, or nil.
func Get(mapping *yaml.Node, key string) *yaml.Node {
	idx := MappingIndex(mapping, key)
	if idx < 0 {
		return nil
	}
	return mapping.Content[idx]
}

// Lookup walks nested mappings along path.
func Lookup(root *yaml.Node, path ...string) *yaml.Node {
	current := Unwrap(root)
	for _, key := range path {
		current = Get(current, key)
		if current == nil {
			return nil
		}
	}
	return current
}

// AsString returns a scalar's value.
func AsString(node *yaml.Node) (string, bool) {
	if node == nil || node.Kind != yaml.ScalarNode || node.ShortTag() == tagNull {
		return "", false
	}
	return node.Value, true
}

// Clone deep-copies node, dropping anchors so the copy can be re-encoded on its own.
func Clone(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}
	out := *node
	out.Anchor = ""
	if len(node.Content) > 0 {
		out.Content = make([]*yaml.Node, len(node.Content))
		for i, child := range node.Content {
			out.Content[i] = Clone(child)
		}
	}
	return &out
}

// Expand returns a copy of node with every alias replaced by a copy of its
// target and every anchor cleared.
func Expand(node *yaml.Node) (*yaml.Node, error) {
	return expand(node, 0)
}

func expand(node *yaml.Node, depth int) (*yaml.Node, error) {
	if node == nil {
		return nil, nil
	}
	if depth > MaxDepth {
		return nil, errTooDeep
	}
	if node.Kind == yaml.AliasNode {
		if node.Alias == nil {
			return nil, fmt.Errorf("dangling alias *%s", node.Value)
		}
		return expand(node.Alias, depth+1)
	}
	out := *node
	out.Anchor = ""
	out.Alias = nil
	if len(node.Content) > 0 {
		out.Content = make([]*yaml.Node, len(node.Content))
		for i, child := range node.Content {
			expanded, err := expand(child, depth+1)
			if err != nil {
				return nil, err
			}
			out.Content[i] = expanded
		}
	}
	return &out, nil
}

// Equal reports structural equality. Styles, comments and positions are
// ignored, scalars compare by resolved tag and value, mappings compare
// regardless of key order.
func Equal(a, b *yaml.Node) bool {
	return equal(a, b, 0)
}

func equal(a, b *yaml.Node, depth int) bool {
	if depth > MaxDepth {
		return false
	}
	a, b = Unwrap(a), Unwrap(b)
	if a == nil || b == nil {
		return IsNull(a) && IsNull(b)
	}
	if a.Kind == yaml.AliasNode && a.Alias != nil {
		return equal(a.Alias, b, depth+1)
	}
	if b.Kind == yaml.AliasNode && b.Alias != nil {
		return equal(a, b.Alias, depth+1)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case yaml.ScalarNode:
		tagA, tagB := a.ShortTag(), b.ShortTag()
		if tagA != tagB {
			return false
		}
		return tagA == tagNull || a.Value == b.Value
	case yaml.SequenceNode:
		if len(a.Content) != len(b.Content) {
			return false
		}
		for i := range a.Content {
			if !equal(a.Content[i], b.Content[i], depth+1) {
				return false
			}
		}
		return true
	case yaml.MappingNode:
		if len(a.Content) != len(b.Content) {
			return false
		}
		for i := 0; i+1 < len(a.Content); i += 2 {
			other := Get(b, a.Content[i].Value)
			if other == nil || !equal(a.Content[i+1], other, depth+1) {
				return false
			}
		}
		return true
	}
	return false
}
