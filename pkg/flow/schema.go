package flow

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// definitionSchema describes the structure of a flow definition file.
const definitionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "minProperties": 1,
  "additionalProperties": {
    "type": "object",
    "required": ["text"],
    "properties": {
      "text": {"type": "string"},
      "save_as": {"type": "string"},
      "buttons": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["label", "value", "next_node"],
          "properties": {
            "label": {"type": "string"},
            "value": {"type": "string", "minLength": 1},
            "next_node": {"type": "string", "minLength": 1}
          }
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(definitionSchema)

// validateSchema checks the raw JSON document against definitionSchema.
func validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var msgs []string
	for _, desc := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return fmt.Errorf("invalid definition: %s", strings.Join(msgs, "; "))
}
