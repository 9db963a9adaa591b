package testsupport

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-sites/internal/identity"
	"github.com/goliatone/go-sites/pages"
	"github.com/goliatone/go-sites/tenants"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SeedTenant builds an active tenant with a deterministic identifier derived
// from its slug, so fixtures stay stable across test runs.
func SeedTenant(slug, name string) *tenants.Tenant {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &tenants.Tenant{
		ID:        identity.TenantUUID(slug),
		Slug:      slug,
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SeedPage builds a draft page owned by tenantID with a deterministic
// identifier derived from the tenant and slug.
func SeedPage(tenantID uuid.UUID, slug, title string) *pages.Page {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	actor := identity.UUID("go-sites:testsupport:actor")
	return &pages.Page{
		ID:        identity.PageUUID(tenantID, slug),
		TenantID:  tenantID,
		Slug:      slug,
		Title:     title,
		Layout:    "default",
		Status:    "draft",
		CreatedBy: actor,
		UpdatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SeedSection builds one live hero section with valid settings.
func SeedSection(tenantID, pageID uuid.UUID, sortOrder int) *pages.PageSection {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &pages.PageSection{
		ID:        identity.UUID(fmt.Sprintf("go-sites:section:%s:%d", pageID, sortOrder)),
		TenantID:  tenantID,
		PageID:    pageID,
		Type:      "hero",
		SortOrder: sortOrder,
		Settings:  `{"headline":"Welcome"}`,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateSchema provisions every table the module persists into, using bun's
// model DDL. Intended for sqlite-backed integration tests.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*tenants.Tenant)(nil),
		(*tenants.DomainMapping)(nil),
		(*pages.Page)(nil),
		(*pages.PageSection)(nil),
		(*pages.PageRevision)(nil),
		(*pages.PageRevisionSection)(nil),
	}
	for _, model := range models {
		if err := db.ResetModel(ctx, model); err != nil {
			return err
		}
	}

	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_site_pages_tenant_slug ON site_pages (tenant_id, slug) WHERE deleted_at IS NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_page_sections_sort_order ON page_sections (tenant_id, page_id, sort_order) WHERE deleted_at IS NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_page_revisions_version ON page_revisions (tenant_id, page_id, version)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_tenant_domains_host ON tenant_domains (host)",
	}
	for _, ddl := range indexes {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}
