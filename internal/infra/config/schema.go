// Where: internal/infra/config/schema.go
// What: JSON schema validation for project serverless.yml files.
// Why: Reject malformed configs before anything is written or spawned.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"
)

const schemaURL = "mem://em-commons/serverless.schema.json"

//go:embed serverless.schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func validateProject(content []byte) error {
	sch, err := loadSchema()
	if err != nil {
		return err
	}

	jsonData, err := yaml.YAMLToJSON(content)
	if err != nil {
		return fmt.Errorf("convert yaml to json: %w", err)
	}

	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return sch.Validate(document)
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("load schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}
