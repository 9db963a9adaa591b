package tenants

import sitetenants "github.com/goliatone/go-sites/tenants"

type (
	Tenant        = sitetenants.Tenant
	DomainMapping = sitetenants.DomainMapping
	Identity      = sitetenants.Identity
	Context       = sitetenants.Context
)

var (
	ErrTenantRequired = sitetenants.ErrTenantRequired
	ErrTenantNotFound = sitetenants.ErrTenantNotFound
	ErrHostRequired   = sitetenants.ErrHostRequired
	ErrSlugRequired   = sitetenants.ErrSlugRequired
	ErrSlugInvalid    = sitetenants.ErrSlugInvalid
)

// NewContext re-exports the public constructor for internal callers.
var NewContext = sitetenants.NewContext

type (
	TenantNotFoundError       = sitetenants.TenantNotFoundError
	MappingMisconfiguredError = sitetenants.MappingMisconfiguredError
)
