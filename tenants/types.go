package tenants

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tenant is one customer account: the unit of data isolation for the whole
// builder. Tenants are provisioned externally and only ever soft deleted.
type Tenant struct {
	bun.BaseModel `bun:"table:tenants,alias:t"`

	ID         uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Slug       string     `bun:"slug,notnull,unique" json:"slug"`
	Name       string     `bun:"name,notnull" json:"name"`
	Active     bool       `bun:"active,notnull,default:true" json:"active"`
	HomePageID *uuid.UUID `bun:"home_page_id,type:uuid,nullzero" json:"home_page_id,omitempty"`
	DeletedAt  *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// DomainMapping binds one normalized host name to a tenant. Hosts are stored
// lowercase with the trailing dot stripped; at most one mapping per tenant
// carries the primary flag.
type DomainMapping struct {
	bun.BaseModel `bun:"table:tenant_domains,alias:td"`

	ID         int64      `bun:",pk,autoincrement" json:"id"`
	Host       string     `bun:"host,notnull,unique" json:"host"`
	TenantID   uuid.UUID  `bun:"tenant_id,notnull,type:uuid" json:"tenant_id"`
	Primary    bool       `bun:"is_primary,notnull,default:false" json:"is_primary"`
	VerifiedAt *time.Time `bun:"verified_at,nullzero" json:"verified_at,omitempty"`
	DeletedAt  *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Tenant *Tenant `bun:"rel:belongs-to,join:tenant_id=id" json:"tenant,omitempty"`
}

// Identity is the resolved outcome of mapping a host to a tenant.
type Identity struct {
	ID   uuid.UUID `json:"id"`
	Slug string    `json:"slug"`
	Name string    `json:"name"`
}

// Context carries the resolved tenant identity for the lifetime of one
// request or operation. It is an immutable value threaded explicitly through
// every service call; tenant-scoped queries must apply Context.TenantID as a
// mandatory predicate.
type Context struct {
	TenantID uuid.UUID
	Slug     string
	Host     string
}

// NewContext builds a Context from a resolution result. A nil identity yields
// an unresolved context (the platform's own root surface).
func NewContext(identity *Identity, host string) Context {
	if identity == nil {
		return Context{Host: host}
	}
	return Context{
		TenantID: identity.ID,
		Slug:     identity.Slug,
		Host:     host,
	}
}

// IsResolved reports whether the context carries a tenant identity.
func (c Context) IsResolved() bool {
	return c.TenantID != uuid.Nil
}
