package manifest

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// manifestSchema is the JSON schema every course manifest must satisfy.
var manifestSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"title":            map[string]any{"type": "string"},
		"minPlayerVersion": map[string]any{"type": "string"},
		"parts": map[string]any{
			"type":  "array",
			"items": map[string]any{"$ref": "#/$defs/part"},
		},
	},
	"required":             []any{"name", "parts"},
	"additionalProperties": false,
	"$defs": map[string]any{
		"part": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type": map[string]any{
					"type": "string",
					"enum": []any{"content", "quiz", "course"},
				},
				"name": map[string]any{
					"type":      "string",
					"minLength": 1,
				},
				"mandatory": map[string]any{"type": "boolean"},
				"path":      map[string]any{"type": "string"},
				"text":      map[string]any{"type": "string"},
				"questions": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/$defs/question"},
				},
				"parts": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/$defs/part"},
				},
			},
			"required":             []any{"type", "name"},
			"additionalProperties": false,
		},
		"question": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prompt": map[string]any{
					"type":      "string",
					"minLength": 1,
				},
				"choices": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 2,
				},
				"answer": map[string]any{
					"type":    "integer",
					"minimum": 0,
				},
				"points": map[string]any{
					"type":             "number",
					"exclusiveMinimum": 0,
				},
			},
			"required":             []any{"prompt", "choices", "answer"},
			"additionalProperties": false,
		},
	},
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// validate checks raw manifest JSON against the manifest schema.
func validate(data []byte) error {
	schemaOnce.Do(compileSchema)
	if schemaErr != nil {
		return fmt.Errorf("compile manifest schema: %w", schemaErr)
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := compiledSchema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compileSchema() {
	// The jsonschema library expects a parsed JSON value, not raw bytes.
	defBytes, err := json.Marshal(manifestSchema)
	if err != nil {
		schemaErr = err
		return
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		schemaErr = err
		return
	}

	c := jsonschema.NewCompiler()
	const schemaURL = "schema://course-manifest.json"
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		schemaErr = err
		return
	}
	compiledSchema, schemaErr = c.Compile(schemaURL)
}
