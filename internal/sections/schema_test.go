package sections

import (
	"errors"
	"testing"
)

func quoteSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"quote"},
		"properties": map[string]any{
			"quote":  map[string]any{"type": "string", "minLength": 1},
			"author": map[string]any{"type": "string"},
		},
	}
}

func TestRegisterSchemaValidType(t *testing.T) {
	registry := DefaultRegistry()
	if err := registry.RegisterSchema("quote", quoteSchema()); err != nil {
		t.Fatalf("register schema: %v", err)
	}

	if result := registry.Validate("quote", `{"quote":"ship it","author":"ann"}`); !result.Valid {
		t.Fatalf("expected pass, got %v", result.Errors)
	}

	result := registry.Validate("quote", `{"author":7}`)
	if result.Valid {
		t.Fatal("expected failure")
	}
	if len(result.Errors) < 2 {
		t.Fatalf("expected missing quote and author type violations, got %v", result.Errors)
	}
}

func TestRegisterSchemaRejectsEmpty(t *testing.T) {
	registry := NewRegistry()

	if err := registry.RegisterSchema("quote", nil); !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
	if err := registry.RegisterSchema("  ", quoteSchema()); !errors.Is(err, ErrTypeRequired) {
		t.Fatalf("expected ErrTypeRequired, got %v", err)
	}
}

func TestSchemaValidatorRejectsMalformedSchema(t *testing.T) {
	_, err := NewSchemaValidator("broken", map[string]any{
		"type": 42,
	})
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}
