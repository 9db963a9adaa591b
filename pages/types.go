package pages

import (
	"time"

	"github.com/goliatone/go-sites/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page is the editable record for one tenant page. The two revision pointers
// are non-owning references into the append-only history: deleting a page
// never cascades into its revisions.
type Page struct {
	bun.BaseModel `bun:"table:site_pages,alias:p"`

	ID                  uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	TenantID            uuid.UUID  `bun:"tenant_id,notnull,type:uuid" json:"tenant_id"`
	Slug                string     `bun:"slug,notnull" json:"slug"`
	Title               string     `bun:"title,notnull" json:"title"`
	Layout              string     `bun:"layout,notnull,default:'default'" json:"layout"`
	MetaTitle           *string    `bun:"meta_title" json:"meta_title,omitempty"`
	MetaDescription     *string    `bun:"meta_description" json:"meta_description,omitempty"`
	Status              string     `bun:"status,notnull,default:'draft'" json:"status"`
	DraftRevisionID     *uuid.UUID `bun:"draft_revision_id,type:uuid,nullzero" json:"draft_revision_id,omitempty"`
	PublishedRevisionID *uuid.UUID `bun:"published_revision_id,type:uuid,nullzero" json:"published_revision_id,omitempty"`
	PublishedAt         *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`
	PublishedBy         *uuid.UUID `bun:"published_by,type:uuid,nullzero" json:"published_by,omitempty"`
	CreatedBy           uuid.UUID  `bun:"created_by,notnull,type:uuid" json:"created_by"`
	UpdatedBy           uuid.UUID  `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	DeletedAt           *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt           time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt           time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Sections []*PageSection `bun:"rel:has-many,join:id=page_id" json:"sections,omitempty"`
}

// PageSection is one live, editable content block on a page. Live sections
// are never versioned directly; only their snapshot form is.
type PageSection struct {
	bun.BaseModel `bun:"table:page_sections,alias:ps"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	TenantID  uuid.UUID  `bun:"tenant_id,notnull,type:uuid" json:"tenant_id"`
	PageID    uuid.UUID  `bun:"page_id,notnull,type:uuid" json:"page_id"`
	Type      string     `bun:"type,notnull" json:"type"`
	SortOrder int        `bun:"sort_order,notnull" json:"sort_order"`
	Settings  string     `bun:"settings,notnull" json:"settings"`
	DeletedAt *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// PageRevision is an immutable snapshot of a page taken at publish time.
// Versions are unique and strictly increasing per (tenant, page), starting
// at 1. Rows are never updated once written.
type PageRevision struct {
	bun.BaseModel `bun:"table:page_revisions,alias:pr"`

	ID                uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	TenantID          uuid.UUID  `bun:"tenant_id,notnull,type:uuid" json:"tenant_id"`
	PageID            uuid.UUID  `bun:"page_id,notnull,type:uuid" json:"page_id"`
	Version           int        `bun:"version,notnull" json:"version"`
	Title             string     `bun:"title,notnull" json:"title"`
	Slug              string     `bun:"slug,notnull" json:"slug"`
	Layout            string     `bun:"layout,notnull" json:"layout"`
	MetaTitle         *string    `bun:"meta_title" json:"meta_title,omitempty"`
	MetaDescription   *string    `bun:"meta_description" json:"meta_description,omitempty"`
	PublishedSnapshot bool       `bun:"is_published_snapshot,notnull,default:false" json:"is_published_snapshot"`
	CreatedBy         uuid.UUID  `bun:"created_by,notnull,type:uuid" json:"created_by"`
	DeletedAt         *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`

	Sections []*PageRevisionSection `bun:"rel:has-many,join:id=revision_id" json:"sections,omitempty"`
}

// PageRevisionSection freezes one live section at publish time. The source
// pointer records provenance only; it carries no referential integrity.
type PageRevisionSection struct {
	bun.BaseModel `bun:"table:page_revision_sections,alias:prs"`

	ID              uuid.UUID `bun:",pk,type:uuid" json:"id"`
	TenantID        uuid.UUID `bun:"tenant_id,notnull,type:uuid" json:"tenant_id"`
	RevisionID      uuid.UUID `bun:"revision_id,notnull,type:uuid" json:"revision_id"`
	Type            string    `bun:"type,notnull" json:"type"`
	SortOrder       int       `bun:"sort_order,notnull" json:"sort_order"`
	Settings        string    `bun:"settings,notnull" json:"settings"`
	SourceSectionID uuid.UUID `bun:"source_section_id,notnull,type:uuid" json:"source_section_id"`
	CreatedAt       time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// PublishResult reports the outcome of one publish attempt. Refused publishes
// carry the complete per-section error list; Success is true only after the
// snapshot committed.
type PublishResult struct {
	Success    bool      `json:"success"`
	RevisionID uuid.UUID `json:"revision_id,omitempty"`
	Version    int       `json:"version,omitempty"`
	Errors     []string  `json:"errors,omitempty"`
}

// IsPublished reports whether the page currently serves a revision.
func (p *Page) IsPublished() bool {
	return p != nil && p.Status == string(domain.StatusPublished) && p.PublishedRevisionID != nil
}
