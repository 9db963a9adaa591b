package tenants

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrTenantRequired = errors.New("tenants: tenant context required")
	ErrTenantNotFound = errors.New("tenants: tenant not found")
	ErrHostRequired   = errors.New("tenants: host is required")
	ErrSlugRequired   = errors.New("tenants: slug is required")
	ErrSlugInvalid    = errors.New("tenants: slug contains invalid characters")
)

// TenantNotFoundError captures a failed resolution for diagnostics. It
// unwraps to ErrTenantNotFound so callers can treat every negative result
// uniformly.
type TenantNotFoundError struct {
	Host string
	Slug string
}

func (e *TenantNotFoundError) Error() string {
	if e == nil {
		return ErrTenantNotFound.Error()
	}
	if slug := strings.TrimSpace(e.Slug); slug != "" {
		return fmt.Sprintf("%s: slug=%s", ErrTenantNotFound.Error(), slug)
	}
	if host := strings.TrimSpace(e.Host); host != "" {
		return fmt.Sprintf("%s: host=%s", ErrTenantNotFound.Error(), host)
	}
	return ErrTenantNotFound.Error()
}

func (e *TenantNotFoundError) Unwrap() error {
	return ErrTenantNotFound
}

// MappingMisconfiguredError marks a domain mapping whose target tenant is
// missing or inactive. The resolver fails closed: callers see the same
// not-found outcome, while the error detail feeds diagnostic logging.
type MappingMisconfiguredError struct {
	Host     string
	TenantID uuid.UUID
	Reason   string
}

func (e *MappingMisconfiguredError) Error() string {
	if e == nil {
		return ErrTenantNotFound.Error()
	}
	reason := strings.TrimSpace(e.Reason)
	if reason == "" {
		reason = "mapping target unavailable"
	}
	return fmt.Sprintf("%s: host=%s tenant=%s: %s", ErrTenantNotFound.Error(), e.Host, e.TenantID, reason)
}

func (e *MappingMisconfiguredError) Unwrap() error {
	return ErrTenantNotFound
}
