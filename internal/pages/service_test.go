package pages

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-sites/internal/sections"
	"github.com/goliatone/go-sites/internal/tenants"
	"github.com/google/uuid"
)

var testClock = func() time.Time {
	return time.Date(2026, time.April, 1, 10, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (Service, *MemoryPageRepository, tenants.Context) {
	t.Helper()
	repo := NewMemoryPageRepository()
	svc := NewService(repo, sections.DefaultRegistry(), WithClock(testClock))
	tc := tenants.NewContext(&tenants.Identity{ID: uuid.New(), Slug: "acme"}, "acme.example.com")
	return svc, repo, tc
}

func createPageWithSections(t *testing.T, svc Service, tc tenants.Context, inputs ...SectionInput) *Page {
	t.Helper()
	page, err := svc.Create(context.Background(), tc, CreatePageRequest{
		Slug:     "home",
		Title:    "Home",
		Sections: inputs,
	})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	return page
}

func heroInput(order int) SectionInput {
	return SectionInput{Type: "hero", SortOrder: order, Settings: `{"headline":"Welcome"}`}
}

func TestCreateRejectsUnresolvedContext(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), tenants.Context{}, CreatePageRequest{Slug: "home", Title: "Home"})
	if !errors.Is(err, tenants.ErrTenantRequired) {
		t.Fatalf("expected ErrTenantRequired, got %v", err)
	}
}

func TestCreateValidatesSlug(t *testing.T) {
	svc, _, tc := newTestService(t)

	if _, err := svc.Create(context.Background(), tc, CreatePageRequest{Slug: "   ", Title: "Home"}); !errors.Is(err, ErrSlugRequired) {
		t.Fatalf("expected ErrSlugRequired, got %v", err)
	}
	if _, err := svc.Create(context.Background(), tc, CreatePageRequest{Slug: "Bad Slug!", Title: "Home"}); !errors.Is(err, ErrSlugInvalid) {
		t.Fatalf("expected ErrSlugInvalid, got %v", err)
	}
}

func TestCreateRejectsDuplicateSlugPerTenant(t *testing.T) {
	svc, _, tc := newTestService(t)
	createPageWithSections(t, svc, tc)

	_, err := svc.Create(context.Background(), tc, CreatePageRequest{Slug: "home", Title: "Another"})
	if !errors.Is(err, ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}

	// Same slug under a different tenant is fine.
	other := tenants.NewContext(&tenants.Identity{ID: uuid.New(), Slug: "globex"}, "globex.example.com")
	if _, err := svc.Create(context.Background(), other, CreatePageRequest{Slug: "home", Title: "Home"}); err != nil {
		t.Fatalf("create under second tenant: %v", err)
	}
}

func TestPublishEmptyPageReturnsResultNotError(t *testing.T) {
	svc, _, tc := newTestService(t)
	page := createPageWithSections(t, svc, tc)

	result, err := svc.Publish(context.Background(), tc, PublishPageRequest{PageID: page.ID})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if result.Success {
		t.Fatal("empty page must not publish")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Cannot publish: this page has no sections" {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
}

func TestPublishCollectsEverySectionViolation(t *testing.T) {
	svc, repo, tc := newTestService(t)
	page := createPageWithSections(t, svc, tc, heroInput(0))

	// Create validates section inputs, so invalid drafts are seeded directly
	// in the repository, the way stale data looks after a rule change.
	seedInvalid := func(order int, typ, settings string) {
		t.Helper()
		if _, err := repo.UpsertSection(context.Background(), &PageSection{
			ID:        uuid.New(),
			TenantID:  tc.TenantID,
			PageID:    page.ID,
			Type:      typ,
			SortOrder: order,
			Settings:  settings,
		}); err != nil {
			t.Fatalf("seed section: %v", err)
		}
	}
	seedInvalid(1, "text", `{}`)
	seedInvalid(2, "gallery", `{"images":[]}`)

	result, err := svc.Publish(context.Background(), tc, PublishPageRequest{PageID: page.ID})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if result.Success {
		t.Fatal("expected validation refusal")
	}

	want := []string{
		"Section 'text': text is required",
		"Section 'gallery': images must contain at least one entry",
	}
	if len(result.Errors) != len(want) {
		t.Fatalf("expected %d errors (valid hero excluded), got %v", len(want), result.Errors)
	}
	for i, message := range want {
		if result.Errors[i] != message {
			t.Fatalf("error %d: expected %q, got %q", i, message, result.Errors[i])
		}
	}

	// A refused publish must leave no revision behind.
	revisions, err := svc.ListRevisions(context.Background(), tc, page.ID)
	if err != nil {
		t.Fatalf("list revisions: %v", err)
	}
	if len(revisions) != 0 {
		t.Fatalf("expected no revisions, got %d", len(revisions))
	}
}

func TestPublishRoundTripPreservesHistory(t *testing.T) {
	svc, _, tc := newTestService(t)
	page := createPageWithSections(t, svc, tc, heroInput(0))
	publisher := uuid.New()

	first, err := svc.Publish(context.Background(), tc, PublishPageRequest{PageID: page.ID, PublishedBy: publisher})
	if err != nil {
		t.Fatalf("publish v1: %v", err)
	}
	if !first.Success || first.Version != 1 {
		t.Fatalf("unexpected first publish: %+v", first)
	}

	// Change the live content, then publish again.
	if _, err := svc.UpsertSection(context.Background(), tc, UpsertSectionRequest{
		PageID:    page.ID,
		Type:      "text",
		SortOrder: 1,
		Settings:  `{"text":"updated body"}`,
	}); err != nil {
		t.Fatalf("upsert section: %v", err)
	}

	second, err := svc.Publish(context.Background(), tc, PublishPageRequest{PageID: page.ID, PublishedBy: publisher})
	if err != nil {
		t.Fatalf("publish v2: %v", err)
	}
	if !second.Success || second.Version != 2 {
		t.Fatalf("unexpected second publish: %+v", second)
	}

	v1, err := svc.GetRevision(context.Background(), tc, page.ID, 1)
	if err != nil {
		t.Fatalf("get revision 1: %v", err)
	}
	if len(v1.Sections) != 1 || v1.Sections[0].Type != "hero" {
		t.Fatalf("v1 snapshot changed after v2 publish: %+v", v1.Sections)
	}

	v2, err := svc.GetRevision(context.Background(), tc, page.ID, 2)
	if err != nil {
		t.Fatalf("get revision 2: %v", err)
	}
	if len(v2.Sections) != 2 {
		t.Fatalf("expected 2 sections in v2, got %d", len(v2.Sections))
	}

	updated, err := svc.Get(context.Background(), tc, page.ID)
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if !updated.IsPublished() {
		t.Fatalf("page should be published: %+v", updated)
	}
	if updated.PublishedRevisionID == nil || *updated.PublishedRevisionID != second.RevisionID {
		t.Fatal("published cursor should point at v2")
	}
	if updated.PublishedAt == nil || !updated.PublishedAt.Equal(testClock().UTC()) {
		t.Fatalf("published_at should carry the clock time, got %v", updated.PublishedAt)
	}
}

func TestPublishSnapshotsCarryProvenance(t *testing.T) {
	svc, _, tc := newTestService(t)
	page := createPageWithSections(t, svc, tc, heroInput(0))

	live, err := svc.ListSections(context.Background(), tc, page.ID)
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}

	result, err := svc.Publish(context.Background(), tc, PublishPageRequest{PageID: page.ID})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	revision, err := svc.GetRevision(context.Background(), tc, page.ID, result.Version)
	if err != nil {
		t.Fatalf("get revision: %v", err)
	}
	if len(revision.Sections) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(revision.Sections))
	}
	snap := revision.Sections[0]
	if snap.SourceSectionID != live[0].ID {
		t.Fatalf("snapshot should record source section %s, got %s", live[0].ID, snap.SourceSectionID)
	}
	if snap.ID == live[0].ID {
		t.Fatal("snapshot must carry its own identifier")
	}
	if !revision.PublishedSnapshot {
		t.Fatal("revision should be flagged as a published snapshot")
	}
}

func TestPublishIsTenantScoped(t *testing.T) {
	svc, _, tc := newTestService(t)
	page := createPageWithSections(t, svc, tc, heroInput(0))

	other := tenants.NewContext(&tenants.Identity{ID: uuid.New(), Slug: "globex"}, "globex.example.com")
	_, err := svc.Publish(context.Background(), other, PublishPageRequest{PageID: page.ID})
	var notFound *PageNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected PageNotFoundError across tenants, got %v", err)
	}
}

type failingPublishRepo struct {
	*MemoryPageRepository
}

func (r *failingPublishRepo) PersistPublish(context.Context, *Page, *PageRevision, []*PageRevisionSection) (*PageRevision, error) {
	return nil, errors.New("disk full")
}

func TestPublishStorageFailureLeavesNoTrace(t *testing.T) {
	memory := NewMemoryPageRepository()
	svc := NewService(&failingPublishRepo{memory}, sections.DefaultRegistry(), WithClock(testClock))
	tc := tenants.NewContext(&tenants.Identity{ID: uuid.New(), Slug: "acme"}, "")

	page := createPageWithSections(t, svc, tc, heroInput(0))

	result, err := svc.Publish(context.Background(), tc, PublishPageRequest{PageID: page.ID})
	if err == nil {
		t.Fatal("expected storage failure to surface as an error")
	}
	if result != nil {
		t.Fatalf("failed publish must not produce a result, got %+v", result)
	}

	stored, err := memory.GetByID(context.Background(), tc.TenantID, page.ID)
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if stored.Status != "draft" || stored.PublishedRevisionID != nil {
		t.Fatalf("page must remain draft after failed publish: %+v", stored)
	}
	revisions, _ := memory.ListRevisions(context.Background(), tc.TenantID, page.ID)
	if len(revisions) != 0 {
		t.Fatalf("expected no revisions, got %d", len(revisions))
	}
}

func TestConcurrentPublishesAllocateUniqueVersions(t *testing.T) {
	svc, _, tc := newTestService(t)
	page := createPageWithSections(t, svc, tc, heroInput(0))

	const publishers = 8
	versions := make(chan int, publishers)
	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Publish(context.Background(), tc, PublishPageRequest{PageID: page.ID})
			if err != nil {
				t.Errorf("publish: %v", err)
				return
			}
			versions <- result.Version
		}()
	}
	wg.Wait()
	close(versions)

	seen := map[int]bool{}
	for version := range versions {
		if seen[version] {
			t.Fatalf("version %d allocated twice", version)
		}
		seen[version] = true
	}
	for v := 1; v <= publishers; v++ {
		if !seen[v] {
			t.Fatalf("version %d missing from %v", v, seen)
		}
	}
}

func TestUnpublishReturnsPageToDraft(t *testing.T) {
	svc, _, tc := newTestService(t)
	page := createPageWithSections(t, svc, tc, heroInput(0))

	if _, err := svc.Publish(context.Background(), tc, PublishPageRequest{PageID: page.ID}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	updated, err := svc.Unpublish(context.Background(), tc, UnpublishPageRequest{PageID: page.ID})
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if updated.Status != "draft" || updated.PublishedRevisionID != nil || updated.PublishedAt != nil {
		t.Fatalf("unpublish should clear the published cursor: %+v", updated)
	}

	// History stays retrievable.
	if _, err := svc.GetRevision(context.Background(), tc, page.ID, 1); err != nil {
		t.Fatalf("revision should survive unpublish: %v", err)
	}
}

func TestArchiveRetiresPage(t *testing.T) {
	svc, _, tc := newTestService(t)
	page := createPageWithSections(t, svc, tc, heroInput(0))

	updated, err := svc.Archive(context.Background(), tc, ArchivePageRequest{PageID: page.ID})
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if updated.Status != "archived" {
		t.Fatalf("expected archived status, got %q", updated.Status)
	}
}

func TestRestoreRevisionReplacesLiveSections(t *testing.T) {
	svc, _, tc := newTestService(t)
	page := createPageWithSections(t, svc, tc, heroInput(0))

	if _, err := svc.Publish(context.Background(), tc, PublishPageRequest{PageID: page.ID}); err != nil {
		t.Fatalf("publish v1: %v", err)
	}

	if _, err := svc.UpsertSection(context.Background(), tc, UpsertSectionRequest{
		PageID:    page.ID,
		Type:      "text",
		SortOrder: 1,
		Settings:  `{"text":"new body"}`,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := svc.Publish(context.Background(), tc, PublishPageRequest{PageID: page.ID}); err != nil {
		t.Fatalf("publish v2: %v", err)
	}

	restored, err := svc.RestoreRevision(context.Background(), tc, RestoreRevisionRequest{PageID: page.ID, Version: 1})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(restored) != 1 || restored[0].Type != "hero" {
		t.Fatalf("expected live sections to match v1, got %+v", restored)
	}

	live, err := svc.ListSections(context.Background(), tc, page.ID)
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(live) != 1 || live[0].Type != "hero" {
		t.Fatalf("live sections should be replaced, got %+v", live)
	}

	// Restore is draft state only; the published cursor still points at v2.
	current, err := svc.Get(context.Background(), tc, page.ID)
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if current.Status != "published" {
		t.Fatalf("restore must not change publish state, got %q", current.Status)
	}
}

func TestUpsertSectionRejectsInvalidSettings(t *testing.T) {
	svc, _, tc := newTestService(t)
	page := createPageWithSections(t, svc, tc)

	_, err := svc.UpsertSection(context.Background(), tc, UpsertSectionRequest{
		PageID:    page.ID,
		Type:      "text",
		SortOrder: 0,
		Settings:  `{"text":""}`,
	})
	var invalid *SectionValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected SectionValidationError, got %v", err)
	}
	if !errors.Is(err, ErrSectionInvalid) {
		t.Fatalf("expected wrap of ErrSectionInvalid, got %v", err)
	}
	if len(invalid.Violations) != 1 || invalid.Violations[0] != "text must not be empty" {
		t.Fatalf("unexpected violations: %v", invalid.Violations)
	}
}

func TestUpsertSectionRejectsDuplicateSortOrder(t *testing.T) {
	svc, _, tc := newTestService(t)
	page := createPageWithSections(t, svc, tc, heroInput(0))

	_, err := svc.UpsertSection(context.Background(), tc, UpsertSectionRequest{
		PageID:    page.ID,
		Type:      "text",
		SortOrder: 0,
		Settings:  `{"text":"body"}`,
	})
	if !errors.Is(err, ErrSortOrderTaken) {
		t.Fatalf("expected ErrSortOrderTaken, got %v", err)
	}

	// Updating the occupying section in place keeps its own slot.
	live, _ := svc.ListSections(context.Background(), tc, page.ID)
	if _, err := svc.UpsertSection(context.Background(), tc, UpsertSectionRequest{
		SectionID: &live[0].ID,
		PageID:    page.ID,
		Type:      "hero",
		SortOrder: 0,
		Settings:  `{"headline":"Updated"}`,
	}); err != nil {
		t.Fatalf("in-place update: %v", err)
	}
}

func TestRemoveSection(t *testing.T) {
	svc, _, tc := newTestService(t)
	page := createPageWithSections(t, svc, tc, heroInput(0))

	live, _ := svc.ListSections(context.Background(), tc, page.ID)
	if err := svc.RemoveSection(context.Background(), tc, RemoveSectionRequest{PageID: page.ID, SectionID: live[0].ID}); err != nil {
		t.Fatalf("remove: %v", err)
	}

	remaining, err := svc.ListSections(context.Background(), tc, page.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no live sections, got %d", len(remaining))
	}
}

func TestGetRevisionUnknownVersion(t *testing.T) {
	svc, _, tc := newTestService(t)
	page := createPageWithSections(t, svc, tc, heroInput(0))

	_, err := svc.GetRevision(context.Background(), tc, page.ID, 9)
	var notFound *RevisionNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected RevisionNotFoundError, got %v", err)
	}
}

func TestRevisionHistoryCanBeDisabled(t *testing.T) {
	repo := NewMemoryPageRepository()
	svc := NewService(repo, sections.DefaultRegistry(), WithClock(testClock), WithRevisionHistory(false))
	tc := tenants.NewContext(&tenants.Identity{ID: uuid.New(), Slug: "acme"}, "acme.example.com")

	page := createPageWithSections(t, svc, tc, heroInput(1))

	// Publishing still records revisions behind the scenes.
	result, err := svc.Publish(context.Background(), tc, PublishPageRequest{PageID: page.ID, PublishedBy: uuid.New()})
	if err != nil || !result.Success {
		t.Fatalf("publish: err=%v result=%+v", err, result)
	}

	if _, err := svc.ListRevisions(context.Background(), tc, page.ID); !errors.Is(err, ErrHistoryDisabled) {
		t.Fatalf("ListRevisions: expected ErrHistoryDisabled, got %v", err)
	}
	if _, err := svc.GetRevision(context.Background(), tc, page.ID, 1); !errors.Is(err, ErrHistoryDisabled) {
		t.Fatalf("GetRevision: expected ErrHistoryDisabled, got %v", err)
	}
	if _, err := svc.RestoreRevision(context.Background(), tc, RestoreRevisionRequest{PageID: page.ID, Version: 1}); !errors.Is(err, ErrHistoryDisabled) {
		t.Fatalf("RestoreRevision: expected ErrHistoryDisabled, got %v", err)
	}
}

func TestMemoryPersistPublishRejectsEmptySnapshot(t *testing.T) {
	svc, repo, tc := newTestService(t)
	page := createPageWithSections(t, svc, tc, heroInput(1))

	revision := &PageRevision{
		ID:        uuid.New(),
		TenantID:  tc.TenantID,
		PageID:    page.ID,
		Title:     page.Title,
		Slug:      page.Slug,
		Layout:    page.Layout,
		CreatedBy: uuid.New(),
		CreatedAt: testClock(),
	}
	if _, err := repo.PersistPublish(context.Background(), page, revision, nil); !errors.Is(err, ErrNoSections) {
		t.Fatalf("expected ErrNoSections, got %v", err)
	}
	revisions, err := repo.ListRevisions(context.Background(), tc.TenantID, page.ID)
	if err != nil {
		t.Fatalf("list revisions: %v", err)
	}
	if len(revisions) != 0 {
		t.Fatalf("expected no revisions, got %d", len(revisions))
	}
}
