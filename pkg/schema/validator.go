// Package schema compiles and enforces a tool's advertised input_schema
// against the arguments an Execution Request supplies, ahead of dispatch.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Compile parses a tool's advertised input_schema into a reusable compiled
// Schema. A blank schemaJSON compiles to a nil Schema, meaning "nothing to
// enforce" rather than an error.
func Compile(toolName, schemaJSON string) (*jsonschema.Schema, error) {
	if strings.TrimSpace(schemaJSON) == "" {
		return nil, nil
	}
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("mem://mcp-adapter/%s.schema.json", toolName)
	if err := c.AddResource(url, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("schema: add resource for %q: %w", toolName, err)
	}
	return c.Compile(url)
}

// ValidateArguments checks argumentsJSON against schema. A nil schema
// always validates.
func ValidateArguments(sch *jsonschema.Schema, argumentsJSON []byte) error {
	if sch == nil {
		return nil
	}
	var instance interface{}
	if err := json.Unmarshal(argumentsJSON, &instance); err != nil {
		return fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	if err := sch.Validate(instance); err != nil {
		return fmt.Errorf("arguments do not satisfy input_schema: %w", err)
	}
	return nil
}
