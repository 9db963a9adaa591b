package sections

import "errors"

var (
	ErrTypeRequired  = errors.New("sections: section type is required")
	ErrSchemaInvalid = errors.New("sections: schema invalid")
)
