package sections

import sitesections "github.com/goliatone/go-sites/sections"

type (
	Result    = sitesections.Result
	Validator = sitesections.Validator
)

var (
	OK      = sitesections.OK
	Invalid = sitesections.Invalid

	ErrTypeRequired  = sitesections.ErrTypeRequired
	ErrSchemaInvalid = sitesections.ErrSchemaInvalid
)
