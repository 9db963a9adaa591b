package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-sites/internal/domain"
	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/sections"
	"github.com/goliatone/go-sites/internal/tenants"
	"github.com/goliatone/go-sites/pkg/interfaces"
	"github.com/google/uuid"
)

// Every publish refusal for an empty page carries this exact message;
// publishing a page without sections is disallowed by design.
const msgNoSections = "Cannot publish: this page has no sections"

// Service exposes tenant-scoped page management use-cases. Every operation
// takes the resolved tenant Context explicitly; an unresolved context is
// rejected before any storage access.
type Service interface {
	Create(ctx context.Context, tc tenants.Context, req CreatePageRequest) (*Page, error)
	Get(ctx context.Context, tc tenants.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, tc tenants.Context, slug string) (*Page, error)
	List(ctx context.Context, tc tenants.Context) ([]*Page, error)
	ListSections(ctx context.Context, tc tenants.Context, pageID uuid.UUID) ([]*PageSection, error)
	UpsertSection(ctx context.Context, tc tenants.Context, req UpsertSectionRequest) (*PageSection, error)
	RemoveSection(ctx context.Context, tc tenants.Context, req RemoveSectionRequest) error
	Publish(ctx context.Context, tc tenants.Context, req PublishPageRequest) (*PublishResult, error)
	Unpublish(ctx context.Context, tc tenants.Context, req UnpublishPageRequest) (*Page, error)
	Archive(ctx context.Context, tc tenants.Context, req ArchivePageRequest) (*Page, error)
	ListRevisions(ctx context.Context, tc tenants.Context, pageID uuid.UUID) ([]*PageRevision, error)
	GetRevision(ctx context.Context, tc tenants.Context, pageID uuid.UUID, version int) (*PageRevision, error)
	RestoreRevision(ctx context.Context, tc tenants.Context, req RestoreRevisionRequest) ([]*PageSection, error)
}

// CreatePageRequest captures the payload required to create a page.
type CreatePageRequest struct {
	Slug            string
	Title           string
	Layout          string
	MetaTitle       *string
	MetaDescription *string
	CreatedBy       uuid.UUID
	UpdatedBy       uuid.UUID
	Sections        []SectionInput
}

// SectionInput describes one live section supplied during create.
type SectionInput struct {
	Type      string
	SortOrder int
	Settings  string
}

// UpsertSectionRequest creates or updates one live section. A nil SectionID
// inserts a new section.
type UpsertSectionRequest struct {
	SectionID *uuid.UUID
	PageID    uuid.UUID
	Type      string
	SortOrder int
	Settings  string
	UpdatedBy uuid.UUID
}

// RemoveSectionRequest soft-deletes one live section.
type RemoveSectionRequest struct {
	PageID    uuid.UUID
	SectionID uuid.UUID
	RemovedBy uuid.UUID
}

// PublishPageRequest captures the inputs required to publish a page.
type PublishPageRequest struct {
	PageID      uuid.UUID
	PublishedBy uuid.UUID
}

// UnpublishPageRequest withdraws the published revision, returning the page
// to draft. History is untouched.
type UnpublishPageRequest struct {
	PageID    uuid.UUID
	UpdatedBy uuid.UUID
}

// ArchivePageRequest retires a page from serving while keeping its history.
type ArchivePageRequest struct {
	PageID    uuid.UUID
	UpdatedBy uuid.UUID
}

// RestoreRevisionRequest copies a historical revision's sections back over
// the live section set as new draft state. The published cursor is untouched.
type RestoreRevisionRequest struct {
	PageID     uuid.UUID
	Version    int
	RestoredBy uuid.UUID
}

// PageRepository abstracts storage for pages, live sections, and the
// append-only revision history. Every method scopes by tenant id.
type PageRepository interface {
	Create(ctx context.Context, record *Page) (*Page, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*Page, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*Page, error)
	Update(ctx context.Context, record *Page) (*Page, error)
	ListSections(ctx context.Context, tenantID, pageID uuid.UUID) ([]*PageSection, error)
	UpsertSection(ctx context.Context, record *PageSection) (*PageSection, error)
	RemoveSection(ctx context.Context, tenantID, pageID, sectionID uuid.UUID) error
	ReplaceSections(ctx context.Context, tenantID, pageID uuid.UUID, records []*PageSection) ([]*PageSection, error)
	// PersistPublish commits one publish atomically: it allocates the next
	// version number inside the transaction, inserts the revision and its
	// section snapshots, and re-points the page's published cursor. On a
	// version conflict with a concurrent publish it recomputes and retries.
	// An empty snapshot set is rejected with ErrNoSections; the service
	// refuses such publishes before reaching the repository.
	PersistPublish(ctx context.Context, page *Page, revision *PageRevision, snapshots []*PageRevisionSection) (*PageRevision, error)
	ListRevisions(ctx context.Context, tenantID, pageID uuid.UUID) ([]*PageRevision, error)
	GetRevision(ctx context.Context, tenantID, pageID uuid.UUID, version int) (*PageRevision, error)
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type IDGenerator func() uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger injects the module logger. Defaults to a no-op.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRevisionHistory toggles the history surface (ListRevisions,
// GetRevision, RestoreRevision). Publishing always records revisions; the
// flag only controls whether callers may read them back.
func WithRevisionHistory(enabled bool) ServiceOption {
	return func(s *service) {
		s.history = enabled
	}
}

type service struct {
	repo     PageRepository
	registry *sections.Registry
	now      func() time.Time
	id       IDGenerator
	logger   interfaces.Logger
	history  bool
}

// NewService constructs a page service over the supplied repository and
// section-validator registry.
func NewService(repo PageRepository, registry *sections.Registry, opts ...ServiceOption) Service {
	s := &service{
		repo:     repo,
		registry: registry,
		now:      time.Now,
		id:       uuid.New,
		logger:   logging.NoOp(),
		history:  true,
	}
	if s.registry == nil {
		s.registry = sections.DefaultRegistry()
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create inserts a page, optionally with an initial section set. Sections
// are validated before anything is written.
func (s *service) Create(ctx context.Context, tc tenants.Context, req CreatePageRequest) (*Page, error) {
	if !tc.IsResolved() {
		return nil, tenants.ErrTenantRequired
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	if !IsValidSlug(slug) {
		return nil, ErrSlugInvalid
	}

	if existing, err := s.repo.GetBySlug(ctx, tc.TenantID, slug); err == nil && existing != nil {
		return nil, ErrSlugExists
	} else if err != nil {
		var notFound *PageNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	for _, input := range req.Sections {
		if result := s.registry.Validate(input.Type, input.Settings); !result.Valid {
			return nil, &SectionValidationError{Type: input.Type, Violations: result.Errors}
		}
	}

	now := s.now().UTC()
	record := &Page{
		ID:              s.id(),
		TenantID:        tc.TenantID,
		Slug:            slug,
		Title:           strings.TrimSpace(req.Title),
		Layout:          chooseLayout(req.Layout),
		MetaTitle:       cloneStringPtr(req.MetaTitle),
		MetaDescription: cloneStringPtr(req.MetaDescription),
		Status:          string(domain.StatusDraft),
		CreatedBy:       req.CreatedBy,
		UpdatedBy:       req.UpdatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, input := range req.Sections {
		record.Sections = append(record.Sections, &PageSection{
			ID:        s.id(),
			TenantID:  tc.TenantID,
			PageID:    record.ID,
			Type:      strings.ToLower(strings.TrimSpace(input.Type)),
			SortOrder: input.SortOrder,
			Settings:  input.Settings,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	return s.repo.Create(ctx, record)
}

// Get fetches a page within the caller's tenant.
func (s *service) Get(ctx context.Context, tc tenants.Context, id uuid.UUID) (*Page, error) {
	if !tc.IsResolved() {
		return nil, tenants.ErrTenantRequired
	}
	if id == uuid.Nil {
		return nil, ErrPageRequired
	}
	return s.repo.GetByID(ctx, tc.TenantID, id)
}

// GetBySlug fetches a page by its tenant-scoped slug.
func (s *service) GetBySlug(ctx context.Context, tc tenants.Context, slug string) (*Page, error) {
	if !tc.IsResolved() {
		return nil, tenants.ErrTenantRequired
	}
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, ErrSlugRequired
	}
	return s.repo.GetBySlug(ctx, tc.TenantID, trimmed)
}

// List returns all live pages for the caller's tenant.
func (s *service) List(ctx context.Context, tc tenants.Context) ([]*Page, error) {
	if !tc.IsResolved() {
		return nil, tenants.ErrTenantRequired
	}
	return s.repo.List(ctx, tc.TenantID)
}

// ListSections returns the live sections of a page ordered by sort order.
func (s *service) ListSections(ctx context.Context, tc tenants.Context, pageID uuid.UUID) ([]*PageSection, error) {
	if !tc.IsResolved() {
		return nil, tenants.ErrTenantRequired
	}
	if pageID == uuid.Nil {
		return nil, ErrPageRequired
	}
	if _, err := s.repo.GetByID(ctx, tc.TenantID, pageID); err != nil {
		return nil, err
	}
	return s.repo.ListSections(ctx, tc.TenantID, pageID)
}

// UpsertSection saves one live section. The validator gates the save; the
// same rules run again, authoritatively, at publish time.
func (s *service) UpsertSection(ctx context.Context, tc tenants.Context, req UpsertSectionRequest) (*PageSection, error) {
	if !tc.IsResolved() {
		return nil, tenants.ErrTenantRequired
	}
	if req.PageID == uuid.Nil {
		return nil, ErrPageRequired
	}

	if _, err := s.repo.GetByID(ctx, tc.TenantID, req.PageID); err != nil {
		return nil, err
	}

	typeKey := strings.ToLower(strings.TrimSpace(req.Type))
	if result := s.registry.Validate(typeKey, req.Settings); !result.Valid {
		sectionID := uuid.Nil
		if req.SectionID != nil {
			sectionID = *req.SectionID
		}
		return nil, &SectionValidationError{SectionID: sectionID, Type: typeKey, Violations: result.Errors}
	}

	live, err := s.repo.ListSections(ctx, tc.TenantID, req.PageID)
	if err != nil {
		return nil, err
	}
	for _, sec := range live {
		if sec.SortOrder != req.SortOrder {
			continue
		}
		if req.SectionID == nil || *req.SectionID != sec.ID {
			return nil, ErrSortOrderTaken
		}
	}

	now := s.now().UTC()
	record := &PageSection{
		TenantID:  tc.TenantID,
		PageID:    req.PageID,
		Type:      typeKey,
		SortOrder: req.SortOrder,
		Settings:  req.Settings,
		UpdatedAt: now,
	}
	if req.SectionID != nil {
		record.ID = *req.SectionID
	} else {
		record.ID = s.id()
		record.CreatedAt = now
	}

	return s.repo.UpsertSection(ctx, record)
}

// RemoveSection soft-deletes one live section.
func (s *service) RemoveSection(ctx context.Context, tc tenants.Context, req RemoveSectionRequest) error {
	if !tc.IsResolved() {
		return tenants.ErrTenantRequired
	}
	if req.PageID == uuid.Nil {
		return ErrPageRequired
	}
	if req.SectionID == uuid.Nil {
		return ErrSectionRequired
	}
	return s.repo.RemoveSection(ctx, tc.TenantID, req.PageID, req.SectionID)
}

// Publish snapshots the page's live section graph into the next immutable
// revision and re-points the published cursor, all inside one transaction.
// Validation refusals come back in the result; storage failures roll back
// completely and surface as errors.
func (s *service) Publish(ctx context.Context, tc tenants.Context, req PublishPageRequest) (*PublishResult, error) {
	if !tc.IsResolved() {
		return nil, tenants.ErrTenantRequired
	}
	if req.PageID == uuid.Nil {
		return nil, ErrPageRequired
	}

	page, err := s.repo.GetByID(ctx, tc.TenantID, req.PageID)
	if err != nil {
		return nil, err
	}

	live, err := s.repo.ListSections(ctx, tc.TenantID, page.ID)
	if err != nil {
		return nil, err
	}
	if len(live) == 0 {
		s.logger.Debug("publish refused: page has no sections", "page_id", page.ID)
		return &PublishResult{Errors: []string{msgNoSections}}, nil
	}

	var violations []string
	for _, sec := range live {
		result := s.registry.Validate(sec.Type, sec.Settings)
		for _, violation := range result.Errors {
			violations = append(violations, fmt.Sprintf("Section '%s': %s", sec.Type, violation))
		}
	}
	if len(violations) > 0 {
		s.logger.Info("publish refused by section validation",
			"page_id", page.ID, "error_count", len(violations))
		return &PublishResult{Errors: violations}, nil
	}

	now := s.now().UTC()
	revision := &PageRevision{
		ID:                s.id(),
		TenantID:          tc.TenantID,
		PageID:            page.ID,
		Title:             page.Title,
		Slug:              page.Slug,
		Layout:            page.Layout,
		MetaTitle:         cloneStringPtr(page.MetaTitle),
		MetaDescription:   cloneStringPtr(page.MetaDescription),
		PublishedSnapshot: true,
		CreatedBy:         req.PublishedBy,
		CreatedAt:         now,
	}

	snapshots := make([]*PageRevisionSection, 0, len(live))
	for _, sec := range live {
		snapshots = append(snapshots, &PageRevisionSection{
			ID:              s.id(),
			TenantID:        tc.TenantID,
			RevisionID:      revision.ID,
			Type:            sec.Type,
			SortOrder:       sec.SortOrder,
			Settings:        sec.Settings,
			SourceSectionID: sec.ID,
			CreatedAt:       now,
		})
	}

	page.PublishedRevisionID = &revision.ID
	page.PublishedAt = &now
	if req.PublishedBy != uuid.Nil {
		published := req.PublishedBy
		page.PublishedBy = &published
		page.UpdatedBy = published
	}
	page.Status = string(domain.StatusPublished)
	page.UpdatedAt = now

	created, err := s.repo.PersistPublish(ctx, page, revision, snapshots)
	if err != nil {
		s.logger.Error("publish failed to commit", "page_id", page.ID, "error", err)
		return nil, err
	}

	s.logger.Info("page published",
		"page_id", page.ID, "version", created.Version, "revision_id", created.ID)
	return &PublishResult{
		Success:    true,
		RevisionID: created.ID,
		Version:    created.Version,
	}, nil
}

// Unpublish withdraws the published revision and returns the page to draft.
// The revision history stays intact and retrievable.
func (s *service) Unpublish(ctx context.Context, tc tenants.Context, req UnpublishPageRequest) (*Page, error) {
	if !tc.IsResolved() {
		return nil, tenants.ErrTenantRequired
	}
	if req.PageID == uuid.Nil {
		return nil, ErrPageRequired
	}

	page, err := s.repo.GetByID(ctx, tc.TenantID, req.PageID)
	if err != nil {
		return nil, err
	}

	page.PublishedRevisionID = nil
	page.PublishedAt = nil
	page.PublishedBy = nil
	page.Status = string(domain.StatusDraft)
	page.UpdatedAt = s.now().UTC()
	if req.UpdatedBy != uuid.Nil {
		page.UpdatedBy = req.UpdatedBy
	}

	return s.repo.Update(ctx, page)
}

// Archive retires a page from serving while keeping its revision history.
func (s *service) Archive(ctx context.Context, tc tenants.Context, req ArchivePageRequest) (*Page, error) {
	if !tc.IsResolved() {
		return nil, tenants.ErrTenantRequired
	}
	if req.PageID == uuid.Nil {
		return nil, ErrPageRequired
	}

	page, err := s.repo.GetByID(ctx, tc.TenantID, req.PageID)
	if err != nil {
		return nil, err
	}

	page.Status = string(domain.StatusArchived)
	page.UpdatedAt = s.now().UTC()
	if req.UpdatedBy != uuid.Nil {
		page.UpdatedBy = req.UpdatedBy
	}

	return s.repo.Update(ctx, page)
}

// ListRevisions returns the page's revision history in version order.
func (s *service) ListRevisions(ctx context.Context, tc tenants.Context, pageID uuid.UUID) ([]*PageRevision, error) {
	if !s.history {
		return nil, ErrHistoryDisabled
	}
	if !tc.IsResolved() {
		return nil, tenants.ErrTenantRequired
	}
	if pageID == uuid.Nil {
		return nil, ErrPageRequired
	}
	if _, err := s.repo.GetByID(ctx, tc.TenantID, pageID); err != nil {
		return nil, err
	}
	return s.repo.ListRevisions(ctx, tc.TenantID, pageID)
}

// GetRevision returns one historical revision with its section snapshots.
func (s *service) GetRevision(ctx context.Context, tc tenants.Context, pageID uuid.UUID, version int) (*PageRevision, error) {
	if !s.history {
		return nil, ErrHistoryDisabled
	}
	if !tc.IsResolved() {
		return nil, tenants.ErrTenantRequired
	}
	if pageID == uuid.Nil {
		return nil, ErrPageRequired
	}
	if version <= 0 {
		return nil, ErrRevisionRequired
	}
	return s.repo.GetRevision(ctx, tc.TenantID, pageID, version)
}

// RestoreRevision copies a historical revision's section snapshots back over
// the live section set. The published cursor and history are untouched; the
// caller publishes again to serve the restored state.
func (s *service) RestoreRevision(ctx context.Context, tc tenants.Context, req RestoreRevisionRequest) ([]*PageSection, error) {
	if !s.history {
		return nil, ErrHistoryDisabled
	}
	if !tc.IsResolved() {
		return nil, tenants.ErrTenantRequired
	}
	if req.PageID == uuid.Nil {
		return nil, ErrPageRequired
	}
	if req.Version <= 0 {
		return nil, ErrRevisionRequired
	}

	page, err := s.repo.GetByID(ctx, tc.TenantID, req.PageID)
	if err != nil {
		return nil, err
	}

	revision, err := s.repo.GetRevision(ctx, tc.TenantID, req.PageID, req.Version)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	restored := make([]*PageSection, 0, len(revision.Sections))
	for _, snap := range revision.Sections {
		restored = append(restored, &PageSection{
			ID:        s.id(),
			TenantID:  tc.TenantID,
			PageID:    page.ID,
			Type:      snap.Type,
			SortOrder: snap.SortOrder,
			Settings:  snap.Settings,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	replaced, err := s.repo.ReplaceSections(ctx, tc.TenantID, page.ID, restored)
	if err != nil {
		return nil, err
	}

	page.UpdatedAt = now
	if req.RestoredBy != uuid.Nil {
		page.UpdatedBy = req.RestoredBy
	}
	if _, err := s.repo.Update(ctx, page); err != nil {
		return nil, err
	}

	s.logger.Info("revision restored to live sections",
		"page_id", page.ID, "version", revision.Version, "section_count", len(replaced))
	return replaced, nil
}

func chooseLayout(layout string) string {
	layout = strings.TrimSpace(layout)
	if layout == "" {
		return "default"
	}
	return strings.ToLower(layout)
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
