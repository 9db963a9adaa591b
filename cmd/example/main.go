package main

import (
	"context"
	"fmt"
	"log"
	"time"

	sites "github.com/goliatone/go-sites"
	"github.com/goliatone/go-sites/internal/di"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/tenants"
	"github.com/google/uuid"
)

func main() {
	ctx := context.Background()

	cfg := sites.DefaultConfig()
	cfg.Resolver.BaseDomain = "sites.example.com"
	cfg.Resolver.StripWWW = true
	cfg.Cache.Enabled = false

	tenantRepo := tenants.NewMemoryTenantRepository()
	mappingRepo := tenants.NewMemoryDomainMappingRepository()

	module, err := sites.New(cfg,
		di.WithTenantRepository(tenantRepo),
		di.WithDomainMappingRepository(mappingRepo),
	)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	now := time.Now().UTC()
	acme := &tenants.Tenant{
		ID:        uuid.New(),
		Slug:      "acme",
		Name:      "Acme Corp",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	tenantRepo.Put(acme)
	mappingRepo.Put(&tenants.DomainMapping{
		TenantID:  acme.ID,
		Host:      "acme.dev",
		Primary:   true,
		CreatedAt: now,
		UpdatedAt: now,
	})

	for _, host := range []string{"acme.sites.example.com", "acme.dev", "sites.example.com"} {
		tc, err := module.ResolveContext(ctx, host, "")
		if err != nil {
			log.Fatalf("resolve %s: %v", host, err)
		}
		if !tc.IsResolved() {
			fmt.Printf("%-26s -> platform root\n", host)
			continue
		}
		fmt.Printf("%-26s -> tenant %s (%s)\n", host, tc.Slug, tc.TenantID)
	}

	tc, err := module.ResolveContext(ctx, "acme.dev", "")
	if err != nil {
		log.Fatalf("resolve acme.dev: %v", err)
	}

	svc := module.Pages()
	page, err := svc.Create(ctx, tc, pages.CreatePageRequest{
		Slug:   "landing",
		Title:  "Acme Landing",
		Layout: "default",
		Sections: []pages.SectionInput{
			{Type: "hero", SortOrder: 1, Settings: `{"headline":"Welcome to Acme"}`},
			{Type: "text", SortOrder: 2, Settings: `{"text":"We build things."}`},
		},
	})
	if err != nil {
		log.Fatalf("create page: %v", err)
	}
	fmt.Printf("created page %s (%s)\n", page.Slug, page.ID)

	editor := uuid.New()
	result, err := svc.Publish(ctx, tc, pages.PublishPageRequest{PageID: page.ID, PublishedBy: editor})
	if err != nil {
		log.Fatalf("publish: %v", err)
	}
	if !result.Success {
		log.Fatalf("publish refused: %v", result.Errors)
	}
	fmt.Printf("published version %d\n", result.Version)

	// A section with an invalid payload keeps the publish gate closed.
	if _, err := svc.UpsertSection(ctx, tc, pages.UpsertSectionRequest{
		PageID:    page.ID,
		Type:      "gallery",
		SortOrder: 3,
		Settings:  `{"images":[]}`,
	}); err != nil {
		fmt.Printf("section rejected: %v\n", err)
	}

	revisions, err := svc.ListRevisions(ctx, tc, page.ID)
	if err != nil {
		log.Fatalf("list revisions: %v", err)
	}
	for _, rev := range revisions {
		fmt.Printf("revision v%d created %s\n", rev.Version, rev.CreatedAt.Format(time.RFC3339))
	}
}
