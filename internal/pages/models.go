package pages

import sitepages "github.com/goliatone/go-sites/pages"

type (
	Page                = sitepages.Page
	PageSection         = sitepages.PageSection
	PageRevision        = sitepages.PageRevision
	PageRevisionSection = sitepages.PageRevisionSection
	PublishResult       = sitepages.PublishResult
)

type (
	PageNotFoundError      = sitepages.PageNotFoundError
	RevisionNotFoundError  = sitepages.RevisionNotFoundError
	SectionValidationError = sitepages.SectionValidationError
)

var (
	ErrPageRequired     = sitepages.ErrPageRequired
	ErrSlugRequired     = sitepages.ErrSlugRequired
	ErrSlugInvalid      = sitepages.ErrSlugInvalid
	ErrSlugExists       = sitepages.ErrSlugExists
	ErrSectionRequired  = sitepages.ErrSectionRequired
	ErrSectionInvalid   = sitepages.ErrSectionInvalid
	ErrSortOrderTaken   = sitepages.ErrSortOrderTaken
	ErrNoSections       = sitepages.ErrNoSections
	ErrRevisionRequired = sitepages.ErrRevisionRequired
	ErrHistoryDisabled  = sitepages.ErrHistoryDisabled
	ErrPublishConflict  = sitepages.ErrPublishConflict
)

var (
	NormalizeSlug = sitepages.NormalizeSlug
	IsValidSlug   = sitepages.IsValidSlug
)
