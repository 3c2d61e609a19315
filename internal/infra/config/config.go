// Where: internal/infra/config/config.go
// What: Load the baseline and project configs and write the merged result.
// Why: The deployment framework reads one file; projects only maintain their overrides.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emarketeer/em-commons/internal/domain/merge"
	"github.com/emarketeer/em-commons/internal/infra/fileops"
	"github.com/emarketeer/em-commons/internal/meta"
	"gopkg.in/yaml.v3"
)

//go:embed baseline.serverless.yml
var baselineYAML []byte

// Generated describes a merged config written to disk.
type Generated struct {
	Path string
	Root *yaml.Node
}

// Generator exposes the package functions behind an injectable value.
type Generator struct{}

func (Generator) Generate(dir string) (Generated, error) { return Generate(dir) }

func (Generator) Render(dir string) ([]byte, *yaml.Node, error) { return Render(dir) }

// Baseline parses the embedded baseline. Every call returns a fresh tree.
func Baseline() (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(baselineYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse baseline: %w", err)
	}
	return &doc, nil
}

// LoadProject reads and validates dir/serverless.yml.
func LoadProject(dir string) (*yaml.Node, error) {
	path := filepath.Join(dir, meta.ProjectConfigFile)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, &ReadError{Path: path, Err: errEmptyProject}
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return nil, &ReadError{Path: path, Err: errNotMapping}
	}
	if err := validateProject(content); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return &doc, nil
}

// Render merges the baseline with the project config in dir and returns the
// encoded document without touching the filesystem.
func Render(dir string) ([]byte, *yaml.Node, error) {
	base, err := Baseline()
	if err != nil {
		return nil, nil, err
	}
	project, err := LoadProject(dir)
	if err != nil {
		return nil, nil, err
	}
	root, err := merge.Merge(base, project)
	if err != nil {
		if errors.Is(err, merge.ErrNotMapping) {
			return nil, nil, &ReadError{Path: filepath.Join(dir, meta.ProjectConfigFile), Err: err}
		}
		return nil, nil, fmt.Errorf("merge config: %w", err)
	}
	foldPluginObject(base, root)
	data, err := Encode(root)
	if err != nil {
		return nil, nil, err
	}
	return data, root, nil
}

// Generate writes the merged config to dir/generated.serverless.yml.
func Generate(dir string) (Generated, error) {
	data, root, err := Render(dir)
	if err != nil {
		return Generated{}, err
	}
	path := filepath.Join(dir, meta.GeneratedConfigFile)
	if err := fileops.WriteFileAtomic(path, data, 0o644); err != nil {
		return Generated{}, &WriteError{Path: path, Err: err}
	}
	return Generated{Path: path, Root: root}, nil
}

// Encode serialises a tree with two-space indentation.
func Encode(root *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(merge.Document(root)); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
