package logging

import (
	"maps"

	"github.com/goliatone/go-sites/pkg/interfaces"
)

// WithFields attaches structured fields when the logger implements the
// optional FieldsLogger extension; otherwise it hands the logger back
// unchanged. The field map is copied so callers can reuse theirs.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}
