// Package ai provides the AI client interface and implementations.
package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/file-intake/internal/domain"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// responseSchema is the shape of a successful AI service reply.
const responseSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "summary": { "type": ["string", "null"] }
  }
}`

// ResponseInterpreter implements Interpreter with a JSON schema check.
type ResponseInterpreter struct {
	schema *jsonschema.Schema
}

// NewResponseInterpreter compiles the response schema.
func NewResponseInterpreter() (*ResponseInterpreter, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("ai_response.json", strings.NewReader(responseSchema)); err != nil {
		return nil, fmt.Errorf("add response schema: %w", err)
	}
	schema, err := compiler.Compile("ai_response.json")
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}
	return &ResponseInterpreter{schema: schema}, nil
}

// Interpret extracts the summary. Bodies that are not JSON or do not match
// the schema are malformed; a missing or blank summary is empty.
func (i *ResponseInterpreter) Interpret(body []byte) (string, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", domain.WrapError(domain.KindMalformedResponse, "parse_response", err, false)
	}

	if err := i.schema.Validate(doc); err != nil {
		return "", domain.WrapError(domain.KindMalformedResponse, "validate_response", err, false)
	}

	obj, _ := doc.(map[string]interface{})
	summary, _ := obj["summary"].(string)
	if strings.TrimSpace(summary) == "" {
		return "", domain.WrapError(domain.KindEmptyResponse, "interpret", domain.ErrEmptyAIResponse, false)
	}

	return summary, nil
}
