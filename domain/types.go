package domain

import internaldomain "github.com/goliatone/go-sites/internal/domain"

// Status represents lifecycle states for builder entities.
type Status = internaldomain.Status

const (
	// StatusDraft indicates a page still under preparation.
	StatusDraft = internaldomain.StatusDraft
	// StatusPublished identifies a page available to visitors.
	StatusPublished = internaldomain.StatusPublished
	// StatusArchived marks a page that is retained for history but not publicly visible.
	StatusArchived = internaldomain.StatusArchived
)
