package domain

// Status represents lifecycle states for builder entities
type Status string

const (
	// StatusDraft indicates a page still under preparation
	StatusDraft Status = "draft"
	// StatusPublished identifies a page available to visitors
	StatusPublished Status = "published"
	// StatusArchived marks a page retained for history but no longer served
	StatusArchived Status = "archived"
)
