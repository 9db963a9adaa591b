package pages

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrPageRequired     = errors.New("pages: page id required")
	ErrSlugRequired     = errors.New("pages: slug is required")
	ErrSlugInvalid      = errors.New("pages: slug contains invalid characters")
	ErrSlugExists       = errors.New("pages: slug already exists")
	ErrSectionRequired  = errors.New("pages: section id required")
	ErrSectionInvalid   = errors.New("pages: section settings failed validation")
	ErrSortOrderTaken   = errors.New("pages: sort order already in use")
	ErrNoSections       = errors.New("pages: page has no sections")
	ErrRevisionRequired = errors.New("pages: revision version required")
	ErrHistoryDisabled  = errors.New("pages: revision history is disabled")
	ErrPublishConflict  = errors.New("pages: publish version conflict")
)

// PageNotFoundError represents a missing page within the caller's tenant.
type PageNotFoundError struct {
	Key string
}

func (e *PageNotFoundError) Error() string {
	if e == nil || e.Key == "" {
		return "page not found"
	}
	return fmt.Sprintf("page %q not found", e.Key)
}

// RevisionNotFoundError represents a missing revision lookup.
type RevisionNotFoundError struct {
	PageID  uuid.UUID
	Version int
}

func (e *RevisionNotFoundError) Error() string {
	if e == nil {
		return "page revision not found"
	}
	if e.Version > 0 {
		return fmt.Sprintf("revision %d not found for page %s", e.Version, e.PageID)
	}
	return fmt.Sprintf("no revisions found for page %s", e.PageID)
}

// SectionValidationError carries the full rule-violation list for one
// section save.
type SectionValidationError struct {
	SectionID  uuid.UUID
	Type       string
	Violations []string
}

func (e *SectionValidationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return ErrSectionInvalid.Error()
	}
	return fmt.Sprintf("%s: %s", ErrSectionInvalid.Error(), strings.Join(e.Violations, "; "))
}

func (e *SectionValidationError) Unwrap() error {
	return ErrSectionInvalid
}
