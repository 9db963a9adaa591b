package sites_test

import (
	"context"
	"errors"
	"testing"
	"time"

	sites "github.com/goliatone/go-sites"
	"github.com/goliatone/go-sites/internal/di"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/tenants"
	sitetenants "github.com/goliatone/go-sites/tenants"
	"github.com/goliatone/go-sites/pkg/testsupport"
	"github.com/google/uuid"
)

func newMemoryModule(t *testing.T, tenantRepo *tenants.MemoryTenantRepository, mappingRepo *tenants.MemoryDomainMappingRepository) *sites.Module {
	t.Helper()

	cfg := sites.DefaultConfig()
	cfg.Resolver.BaseDomain = "sites.example.com"
	cfg.Cache.Enabled = false

	module, err := sites.New(cfg,
		di.WithTenantRepository(tenantRepo),
		di.WithDomainMappingRepository(mappingRepo),
	)
	if err != nil {
		t.Fatalf("new sites module: %v", err)
	}
	return module
}

func TestModuleResolveAndPublishFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tenantRepo := tenants.NewMemoryTenantRepository()
	mappingRepo := tenants.NewMemoryDomainMappingRepository()

	seeded := testsupport.SeedTenant("acme", "Acme Inc")
	tenantRepo.Put(seeded)
	mappingRepo.Put(&sitetenants.DomainMapping{Host: "acme.dev", TenantID: seeded.ID, Primary: true})

	module := newMemoryModule(t, tenantRepo, mappingRepo)

	// Subdomain and custom domain both resolve to the same tenant.
	bySubdomain, err := module.ResolveContext(ctx, "acme.sites.example.com", "")
	if err != nil {
		t.Fatalf("resolve subdomain: %v", err)
	}
	byDomain, err := module.ResolveContext(ctx, "acme.dev:443", "")
	if err != nil {
		t.Fatalf("resolve custom domain: %v", err)
	}
	if bySubdomain.TenantID != seeded.ID || byDomain.TenantID != seeded.ID {
		t.Fatalf("expected both hosts to resolve to %s", seeded.ID)
	}

	// The platform root is not a tenant.
	root, err := module.ResolveContext(ctx, "sites.example.com", "")
	if err != nil {
		t.Fatalf("resolve root: %v", err)
	}
	if root.IsResolved() {
		t.Fatalf("platform root should be unresolved, got %+v", root)
	}

	svc := module.Pages()
	author := uuid.New()

	page, err := svc.Create(ctx, bySubdomain, pages.CreatePageRequest{
		Slug:      "home",
		Title:     "Home",
		CreatedBy: author,
		UpdatedBy: author,
		Sections: []pages.SectionInput{
			{Type: "hero", SortOrder: 0, Settings: `{"headline":"Welcome to Acme"}`},
			{Type: "text", SortOrder: 1, Settings: `{"text":"We build things."}`},
		},
	})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	result, err := svc.Publish(ctx, byDomain, pages.PublishPageRequest{PageID: page.ID, PublishedBy: author})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !result.Success || result.Version != 1 {
		t.Fatalf("unexpected publish result: %+v", result)
	}

	revision, err := svc.GetRevision(ctx, bySubdomain, page.ID, 1)
	if err != nil {
		t.Fatalf("get revision: %v", err)
	}
	if len(revision.Sections) != 2 {
		t.Fatalf("expected 2 snapshot sections, got %d", len(revision.Sections))
	}

	// An unresolved context never reaches tenant data.
	if _, err := svc.Get(ctx, root, page.ID); !errors.Is(err, sitetenants.ErrTenantRequired) {
		t.Fatalf("expected ErrTenantRequired, got %v", err)
	}
}

func TestModuleCachedResolver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tenantRepo := tenants.NewMemoryTenantRepository()
	mappingRepo := tenants.NewMemoryDomainMappingRepository()
	tenantRepo.Put(testsupport.SeedTenant("acme", "Acme Inc"))

	cfg := sites.DefaultConfig()
	cfg.Resolver.BaseDomain = "sites.example.com"
	cfg.Cache.Enabled = true
	cfg.Cache.DefaultTTL = 50 * time.Millisecond

	module, err := sites.New(cfg,
		di.WithTenantRepository(tenantRepo),
		di.WithDomainMappingRepository(mappingRepo),
	)
	if err != nil {
		t.Fatalf("new sites module: %v", err)
	}

	first, err := module.ResolveContext(ctx, "acme.sites.example.com", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := module.ResolveContext(ctx, "acme.sites.example.com", "")
	if err != nil {
		t.Fatalf("resolve cached: %v", err)
	}
	if first.TenantID != second.TenantID {
		t.Fatal("cached resolution should be stable")
	}
}

func TestModuleRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := sites.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""

	if _, err := sites.New(cfg); !errors.Is(err, sites.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}

	cfg = sites.DefaultConfig()
	cfg.Cache.DefaultTTL = -time.Second
	if _, err := sites.New(cfg); !errors.Is(err, sites.ErrResolverCacheTTLInvalid) {
		t.Fatalf("expected ErrResolverCacheTTLInvalid, got %v", err)
	}
}
