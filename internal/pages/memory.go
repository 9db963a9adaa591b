package pages

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryPageRepository keeps pages, live sections, and revisions in process
// memory. It mirrors the relational repository's semantics, including
// per-page version monotonicity, and serializes publishes behind one mutex.
type MemoryPageRepository struct {
	mu        sync.RWMutex
	pages     map[uuid.UUID]*Page
	sections  map[uuid.UUID]*PageSection
	revisions map[uuid.UUID]*PageRevision
}

func NewMemoryPageRepository() *MemoryPageRepository {
	return &MemoryPageRepository{
		pages:     make(map[uuid.UUID]*Page),
		sections:  make(map[uuid.UUID]*PageSection),
		revisions: make(map[uuid.UUID]*PageRevision),
	}
}

func (r *MemoryPageRepository) Create(_ context.Context, record *Page) (*Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.pages {
		if existing.DeletedAt == nil &&
			existing.TenantID == record.TenantID &&
			existing.Slug == record.Slug {
			return nil, ErrSlugExists
		}
	}

	stored := clonePage(record)
	stored.Sections = nil
	r.pages[stored.ID] = stored
	for _, sec := range record.Sections {
		r.sections[sec.ID] = cloneSection(sec)
	}
	return clonePage(record), nil
}

func (r *MemoryPageRepository) GetByID(_ context.Context, tenantID, id uuid.UUID) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getPageLocked(tenantID, id)
}

func (r *MemoryPageRepository) GetBySlug(_ context.Context, tenantID uuid.UUID, slug string) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, page := range r.pages {
		if page.DeletedAt == nil && page.TenantID == tenantID && page.Slug == slug {
			return clonePage(page), nil
		}
	}
	return nil, &PageNotFoundError{Key: slug}
}

func (r *MemoryPageRepository) List(_ context.Context, tenantID uuid.UUID) ([]*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Page
	for _, page := range r.pages {
		if page.DeletedAt == nil && page.TenantID == tenantID {
			out = append(out, clonePage(page))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r *MemoryPageRepository) Update(_ context.Context, record *Page) (*Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.pages[record.ID]
	if !ok || existing.DeletedAt != nil || existing.TenantID != record.TenantID {
		return nil, &PageNotFoundError{Key: record.ID.String()}
	}

	stored := clonePage(record)
	stored.Sections = nil
	r.pages[stored.ID] = stored
	return clonePage(record), nil
}

func (r *MemoryPageRepository) ListSections(_ context.Context, tenantID, pageID uuid.UUID) ([]*PageSection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listSectionsLocked(tenantID, pageID), nil
}

func (r *MemoryPageRepository) UpsertSection(_ context.Context, record *PageSection) (*PageSection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sec := range r.sections {
		if sec.DeletedAt == nil &&
			sec.TenantID == record.TenantID &&
			sec.PageID == record.PageID &&
			sec.SortOrder == record.SortOrder &&
			sec.ID != record.ID {
			return nil, ErrSortOrderTaken
		}
	}

	if existing, ok := r.sections[record.ID]; ok && existing.DeletedAt == nil {
		record.CreatedAt = existing.CreatedAt
	}
	r.sections[record.ID] = cloneSection(record)
	return cloneSection(record), nil
}

func (r *MemoryPageRepository) RemoveSection(_ context.Context, tenantID, pageID, sectionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sec, ok := r.sections[sectionID]
	if !ok || sec.DeletedAt != nil || sec.TenantID != tenantID || sec.PageID != pageID {
		return ErrSectionRequired
	}
	deleted := sec.UpdatedAt
	sec.DeletedAt = &deleted
	return nil
}

func (r *MemoryPageRepository) ReplaceSections(_ context.Context, tenantID, pageID uuid.UUID, records []*PageSection) ([]*PageSection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sec := range r.sections {
		if sec.DeletedAt == nil && sec.TenantID == tenantID && sec.PageID == pageID {
			deleted := sec.UpdatedAt
			sec.DeletedAt = &deleted
		}
	}

	out := make([]*PageSection, 0, len(records))
	for _, sec := range records {
		r.sections[sec.ID] = cloneSection(sec)
		out = append(out, cloneSection(sec))
	}
	return out, nil
}

func (r *MemoryPageRepository) PersistPublish(_ context.Context, page *Page, revision *PageRevision, snapshots []*PageRevisionSection) (*PageRevision, error) {
	if len(snapshots) == 0 {
		return nil, ErrNoSections
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.pages[page.ID]
	if !ok || existing.DeletedAt != nil || existing.TenantID != page.TenantID {
		return nil, &PageNotFoundError{Key: page.ID.String()}
	}

	maxVersion := 0
	for _, rev := range r.revisions {
		if rev.TenantID == revision.TenantID && rev.PageID == revision.PageID && rev.Version > maxVersion {
			maxVersion = rev.Version
		}
	}
	revision.Version = maxVersion + 1

	stored := cloneRevision(revision)
	for _, snap := range snapshots {
		stored.Sections = append(stored.Sections, cloneRevisionSection(snap))
	}
	r.revisions[stored.ID] = stored

	updated := clonePage(page)
	updated.Sections = nil
	r.pages[updated.ID] = updated

	return cloneRevision(revision), nil
}

func (r *MemoryPageRepository) ListRevisions(_ context.Context, tenantID, pageID uuid.UUID) ([]*PageRevision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*PageRevision
	for _, rev := range r.revisions {
		if rev.TenantID == tenantID && rev.PageID == pageID {
			out = append(out, cloneRevisionDeep(rev))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (r *MemoryPageRepository) GetRevision(_ context.Context, tenantID, pageID uuid.UUID, version int) (*PageRevision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rev := range r.revisions {
		if rev.TenantID == tenantID && rev.PageID == pageID && rev.Version == version {
			return cloneRevisionDeep(rev), nil
		}
	}
	return nil, &RevisionNotFoundError{PageID: pageID, Version: version}
}

func (r *MemoryPageRepository) getPageLocked(tenantID, id uuid.UUID) (*Page, error) {
	page, ok := r.pages[id]
	if !ok || page.DeletedAt != nil || page.TenantID != tenantID {
		return nil, &PageNotFoundError{Key: id.String()}
	}
	return clonePage(page), nil
}

func (r *MemoryPageRepository) listSectionsLocked(tenantID, pageID uuid.UUID) []*PageSection {
	var out []*PageSection
	for _, sec := range r.sections {
		if sec.DeletedAt == nil && sec.TenantID == tenantID && sec.PageID == pageID {
			out = append(out, cloneSection(sec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

func clonePage(in *Page) *Page {
	if in == nil {
		return nil
	}
	out := *in
	out.MetaTitle = cloneStringPtr(in.MetaTitle)
	out.MetaDescription = cloneStringPtr(in.MetaDescription)
	out.DraftRevisionID = cloneUUIDPtr(in.DraftRevisionID)
	out.PublishedRevisionID = cloneUUIDPtr(in.PublishedRevisionID)
	out.PublishedAt = cloneTimePtr(in.PublishedAt)
	out.PublishedBy = cloneUUIDPtr(in.PublishedBy)
	out.DeletedAt = cloneTimePtr(in.DeletedAt)
	out.Sections = nil
	for _, sec := range in.Sections {
		out.Sections = append(out.Sections, cloneSection(sec))
	}
	return &out
}

func cloneSection(in *PageSection) *PageSection {
	if in == nil {
		return nil
	}
	out := *in
	out.DeletedAt = cloneTimePtr(in.DeletedAt)
	return &out
}

func cloneRevision(in *PageRevision) *PageRevision {
	if in == nil {
		return nil
	}
	out := *in
	out.MetaTitle = cloneStringPtr(in.MetaTitle)
	out.MetaDescription = cloneStringPtr(in.MetaDescription)
	out.DeletedAt = cloneTimePtr(in.DeletedAt)
	out.Sections = nil
	return &out
}

func cloneRevisionDeep(in *PageRevision) *PageRevision {
	out := cloneRevision(in)
	if out == nil {
		return nil
	}
	for _, snap := range in.Sections {
		out.Sections = append(out.Sections, cloneRevisionSection(snap))
	}
	return out
}

func cloneRevisionSection(in *PageRevisionSection) *PageRevisionSection {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}

func cloneTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}

func cloneUUIDPtr(in *uuid.UUID) *uuid.UUID {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}
