package tenants

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewTenantRepository(db *bun.DB) repository.Repository[*Tenant] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Tenant]{
		NewRecord: func() *Tenant { return &Tenant{} },
		GetID: func(t *Tenant) uuid.UUID {
			return t.ID
		},
		SetID: func(t *Tenant, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(t *Tenant) string {
			return t.Slug
		},
	})
}
