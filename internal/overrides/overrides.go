// Package overrides loads externally supplied row -> label lists and
// validates them against a JSON Schema before they reach the extraction
// core.
package overrides

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["overrides"],
  "additionalProperties": false,
  "properties": {
    "overrides": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["row", "label"],
        "additionalProperties": false,
        "properties": {
          "row": {"type": "integer", "minimum": 1},
          "label": {"type": "string"}
        }
      }
    }
  }
}`

type document struct {
	Overrides []entry `json:"overrides"`
}

type entry struct {
	Row   int    `json:"row"`
	Label string `json:"label"`
}

// Load reads an override document from path and returns the row -> label
// map. The document must match the schema and may not repeat a row.
func Load(path string) (map[int]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse validates and decodes an override document.
func Parse(data []byte) (map[int]string, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("overrides.schema.json", strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to load override schema: %w", err)
	}
	schema, err := compiler.Compile("overrides.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile override schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid override document: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("override document does not match schema: %w", err)
	}

	var typed document
	if err := json.Unmarshal(data, &typed); err != nil {
		return nil, fmt.Errorf("invalid override document: %w", err)
	}

	out := make(map[int]string, len(typed.Overrides))
	for _, e := range typed.Overrides {
		if _, dup := out[e.Row]; dup {
			return nil, fmt.Errorf("override document repeats row %d", e.Row)
		}
		out[e.Row] = e.Label
	}
	return out, nil
}
