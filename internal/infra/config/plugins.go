package config

import (
	"github.com/emarketeer/em-commons/internal/domain/merge"
	"github.com/emarketeer/em-commons/internal/domain/value"
	"gopkg.in/yaml.v3"
)

const pluginsKey = "plugins"

// foldPluginObject keeps the baseline plugins when a project declares
// `plugins: {localPath, modules}`. The generic merge lets that mapping replace
// the baseline list; the list belongs in front of modules instead.
func foldPluginObject(base, merged *yaml.Node) {
	basePlugins := value.Lookup(base, pluginsKey)
	if !value.IsSequence(basePlugins) {
		return
	}
	object := value.Get(merged, pluginsKey)
	if !value.IsMapping(object) {
		return
	}
	idx := value.MappingIndex(object, "modules")
	if idx < 0 {
		object.Content = append(object.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "modules"},
			value.Clone(basePlugins),
		)
		return
	}
	if modules := object.Content[idx]; value.IsSequence(modules) {
		object.Content[idx] = merge.Union(basePlugins, modules)
	}
}
