package sections

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Payload decode failures are reported as distinct, stable strings so that
// editors can tell an empty save apart from malformed JSON.
const (
	msgSettingsEmpty     = "settings must not be empty"
	msgSettingsNotJSON   = "settings is not valid JSON"
	msgSettingsNotObject = "settings must be a JSON object"
)

// Registry maps a canonical section-type key to the validator capable of
// that type. It is read-mostly and safe for concurrent use; an unknown type
// key is itself a validation failure, never a pass-through.
type Registry struct {
	mu         sync.RWMutex
	validators map[string]Validator
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		validators: make(map[string]Validator),
	}
}

// DefaultRegistry returns a registry seeded with the built-in section types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(HeroValidator{})
	r.Register(TextValidator{})
	r.Register(GalleryValidator{})
	return r
}

// Register adds a validator under its canonical type key. Later
// registrations replace earlier ones.
func (r *Registry) Register(v Validator) {
	if v == nil {
		return
	}
	key := canonicalKey(v.Type())
	if key == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.validators == nil {
		r.validators = make(map[string]Validator)
	}
	r.validators[key] = v
}

// RegisterSchema registers a host-defined section type validated against the
// supplied JSON schema.
func (r *Registry) RegisterSchema(typeKey string, schema map[string]any) error {
	validator, err := NewSchemaValidator(typeKey, schema)
	if err != nil {
		return err
	}
	r.Register(validator)
	return nil
}

// Validator resolves a registered validator by type key.
func (r *Registry) Validator(typeKey string) (Validator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.validators[canonicalKey(typeKey)]
	return v, ok
}

// Types returns the registered type keys.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.validators))
	for key := range r.validators {
		out = append(out, key)
	}
	return out
}

// Validate checks one settings payload against the rules of typeKey. All
// violations are collected in one pass; the payload must decode to a JSON
// object before type rules run.
func (r *Registry) Validate(typeKey string, settingsJSON string) Result {
	key := canonicalKey(typeKey)
	if key == "" {
		return Invalid("section type is required")
	}

	validator, ok := r.Validator(key)
	if !ok {
		return Invalid(fmt.Sprintf("unknown section type %q", key))
	}

	settings, errs := decodeSettings(settingsJSON)
	if len(errs) > 0 {
		return Invalid(errs...)
	}

	if violations := validator.Validate(settings); len(violations) > 0 {
		return Invalid(violations...)
	}
	return OK()
}

func decodeSettings(settingsJSON string) (map[string]any, []string) {
	trimmed := strings.TrimSpace(settingsJSON)
	if trimmed == "" {
		return nil, []string{msgSettingsEmpty}
	}

	var raw any
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, []string{msgSettingsNotJSON}
	}

	settings, ok := raw.(map[string]any)
	if !ok {
		return nil, []string{msgSettingsNotObject}
	}
	return settings, nil
}

func canonicalKey(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
