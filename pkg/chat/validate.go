package chat

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// chatRequestSchema mirrors components.schemas.ChatRequest of the HTTP API document.
const chatRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["message"],
  "properties": {
    "session_id": {"type": ["string", "null"]},
    "message": {"type": "string", "minLength": 2},
    "name": {"type": ["string", "null"]},
    "email": {
      "anyOf": [
        {"type": "string", "format": "email"},
        {"type": "null"}
      ]
    },
    "phone": {"type": ["string", "null"]},
    "zip_code": {"type": ["string", "null"]},
    "quote_type": {"type": ["string", "null"]},
    "coverage_category": {"type": ["string", "null"]},
    "vehicle_year": {"type": ["string", "null"]},
    "home_type": {"type": ["string", "null"]}
  }
}`

var chatRequestLoader = gojsonschema.NewStringLoader(chatRequestSchema)

// FieldError describes one validation failure of a request body.
type FieldError struct {
	Loc  string `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// ValidateRequest checks a syntactically valid JSON body against the request schema.
// Every transport runs it before Handle so they all accept the same inputs.
func ValidateRequest(body []byte) ([]FieldError, error) {
	result, err := gojsonschema.Validate(chatRequestLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, FieldError{
			Loc:  desc.Field(),
			Msg:  desc.Description(),
			Type: desc.Type(),
		})
	}
	return errs, nil
}

// Validate runs ValidateRequest on the request's JSON encoding.
func (r Request) Validate() ([]FieldError, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return ValidateRequest(body)
}

// String formats the error as "field: message".
func (e FieldError) String() string {
	return e.Loc + ": " + e.Msg
}
