package sections

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaValidator validates a host-defined section type against a compiled
// JSON schema. Every leaf cause is reported so the error list matches the
// built-in validators' one-pass behaviour.
type SchemaValidator struct {
	typeKey  string
	compiled *jsonschema.Schema
}

// NewSchemaValidator compiles the supplied schema for the given type key.
func NewSchemaValidator(typeKey string, schema map[string]any) (*SchemaValidator, error) {
	key := canonicalKey(typeKey)
	if key == "" {
		return nil, ErrTypeRequired
	}
	if len(schema) == 0 {
		return nil, fmt.Errorf("%w: schema is empty for type %q", ErrSchemaInvalid, key)
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}

	return &SchemaValidator{typeKey: key, compiled: compiled}, nil
}

func (v *SchemaValidator) Type() string { return v.typeKey }

func (v *SchemaValidator) Validate(settings map[string]any) []string {
	if v == nil || v.compiled == nil {
		return nil
	}
	err := v.compiled.Validate(settings)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if ok := asValidationError(err, &validationErr); ok {
		return collectLeafViolations(validationErr)
	}
	return []string{err.Error()}
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func asValidationError(err error, target **jsonschema.ValidationError) bool {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return false
	}
	*target = ve
	return true
}

func collectLeafViolations(err *jsonschema.ValidationError) []string {
	if err == nil {
		return nil
	}
	violations := []string{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			location := strings.TrimSpace(node.InstanceLocation)
			message := strings.TrimSpace(node.Message)
			if location == "" || location == "#" {
				violations = append(violations, message)
			} else {
				violations = append(violations, fmt.Sprintf("%s: %s", strings.TrimPrefix(location, "/"), message))
			}
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return violations
}
