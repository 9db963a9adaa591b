package sections

// Result carries the outcome of validating one section settings payload.
// Errors lists every violated rule in a single pass so editors can surface
// the complete list at once.
type Result struct {
	Valid  bool     `json:"is_valid"`
	Errors []string `json:"errors,omitempty"`
}

// OK returns a passing result.
func OK() Result {
	return Result{Valid: true}
}

// Invalid returns a failing result carrying the supplied rule violations.
func Invalid(errs ...string) Result {
	return Result{Errors: errs}
}

// Validator applies the structural rules for one section type. The registry
// owns payload decoding; validators receive the parsed JSON object and return
// every violated rule, never failing fast.
type Validator interface {
	Type() string
	Validate(settings map[string]any) []string
}
