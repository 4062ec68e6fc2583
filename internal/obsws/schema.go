// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed schema/payloads.yaml
var payloadSchemaDoc []byte

// Validator checks inbound payloads against the embedded schema document
// before they are decoded into typed structs. It is safe for concurrent use.
type Validator struct {
	schemas openapi3.Schemas
}

// NewValidator loads and validates the embedded schema document.
func NewValidator() (*Validator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(payloadSchemaDoc)
	if err != nil {
		return nil, fmt.Errorf("load payload schemas: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate payload schemas: %w", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, fmt.Errorf("payload schema document has no components")
	}
	return &Validator{schemas: doc.Components.Schemas}, nil
}

// Validate checks raw against the named schema. Missing data validates as
// an empty object so required fields are still reported.
func (v *Validator) Validate(name string, raw json.RawMessage) error {
	ref, ok := v.schemas[name]
	if !ok || ref.Value == nil {
		return Malformed(name, "no_schema", nil)
	}
	var value any = map[string]any{}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &value); err != nil {
			return Malformed(name, "invalid_json", err)
		}
	}
	if err := ref.Value.VisitJSON(value); err != nil {
		return Malformed(name, "schema_violation", err)
	}
	return nil
}

func (v *Validator) decode(name string, raw json.RawMessage, target any) error {
	if err := v.Validate(name, raw); err != nil {
		return err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return Malformed(name, "decode_failed", err)
	}
	return nil
}
