package pages

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewPageModelRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Page) string {
			return p.Slug
		},
	})
}

func NewPageSectionModelRepository(db *bun.DB) repository.Repository[*PageSection] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*PageSection]{
		NewRecord: func() *PageSection { return &PageSection{} },
		GetID: func(s *PageSection) uuid.UUID {
			return s.ID
		},
		SetID: func(s *PageSection, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(s *PageSection) string {
			return s.ID.String()
		},
	})
}

func NewPageRevisionModelRepository(db *bun.DB) repository.Repository[*PageRevision] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*PageRevision]{
		NewRecord: func() *PageRevision { return &PageRevision{} },
		GetID: func(r *PageRevision) uuid.UUID {
			return r.ID
		},
		SetID: func(r *PageRevision, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *PageRevision) string {
			return r.ID.String()
		},
	})
}
