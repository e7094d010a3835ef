package backend

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed conversations.schema.json
var schemaJSON []byte

// Validator checks inbound conversation payloads against the wire schema
// before they are decoded. Backend payloads cross a trust boundary; a
// malformed batch must fail loudly instead of producing half-decoded
// records.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded wire schema.
func NewValidator() (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse embedded schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("conversations.schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile("conversations.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks one raw payload against the wire schema.
func (v *Validator) Validate(payload []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}
	if err := v.schema.Validate(inst); err != nil {
		return fmt.Errorf("payload failed schema validation: %w", err)
	}
	return nil
}
