package tenants

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

// HostResolver maps an inbound host name to at most one tenant identity.
type HostResolver interface {
	Resolve(ctx context.Context, host string, hintedSlug string) (*Identity, error)
}

// TenantRepository resolves tenants from the directory store.
type TenantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
}

// DomainMappingRepository resolves custom-domain mappings by normalized host.
type DomainMappingRepository interface {
	GetByHost(ctx context.Context, host string) (*DomainMapping, error)
}

// NotFoundError represents missing records from directory lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// DefaultReservedLabels are subdomain labels that never resolve to a tenant.
var DefaultReservedLabels = []string{"www", "app", "admin", "api"}

// ResolverOption configures the resolver at construction time.
type ResolverOption func(*Resolver)

// WithBaseDomain sets the platform base domain used for subdomain-slug
// resolution. Empty disables slug matching entirely.
func WithBaseDomain(domain string) ResolverOption {
	return func(r *Resolver) {
		r.baseDomain = normalizeHost(domain, false)
	}
}

// WithReservedLabels replaces the set of labels excluded from slug matching.
func WithReservedLabels(labels ...string) ResolverOption {
	return func(r *Resolver) {
		r.reserved = make(map[string]struct{}, len(labels))
		for _, label := range labels {
			key := strings.ToLower(strings.TrimSpace(label))
			if key == "" {
				continue
			}
			r.reserved[key] = struct{}{}
		}
	}
}

// WithStripWWW controls whether a leading "www." is stripped during host
// normalization before any lookup.
func WithStripWWW(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.stripWWW = enabled
	}
}

// WithResolverLogger injects the diagnostic logger. Defaults to a no-op.
func WithResolverLogger(logger interfaces.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver maps inbound hosts to tenants: exact custom-domain matches win
// over subdomain-slug matches, inactive or deleted tenants never resolve,
// and a misconfigured mapping fails closed instead of falling through.
type Resolver struct {
	tenants    TenantRepository
	mappings   DomainMappingRepository
	baseDomain string
	reserved   map[string]struct{}
	stripWWW   bool
	logger     interfaces.Logger
}

// NewResolver constructs a resolver over the tenant directory.
func NewResolver(mappings DomainMappingRepository, tenants TenantRepository, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		tenants:  tenants,
		mappings: mappings,
		logger:   logging.NoOp(),
	}
	WithReservedLabels(DefaultReservedLabels...)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps host to a tenant identity. It returns (nil, nil) for the
// platform's own root surface, ErrTenantNotFound-wrapping errors for every
// negative outcome, and propagates storage failures unchanged. The lookup is
// read only.
func (r *Resolver) Resolve(ctx context.Context, host string, hintedSlug string) (*Identity, error) {
	normalized := normalizeHost(host, r.stripWWW)
	if normalized == "" {
		return nil, ErrHostRequired
	}

	identity, matched, err := r.resolveMapping(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if matched {
		return identity, nil
	}

	if r.baseDomain != "" {
		if normalized == r.baseDomain {
			// The bare platform domain is the host application's own
			// marketing/root surface, not a tenant.
			return nil, nil
		}
		if suffix := "." + r.baseDomain; strings.HasSuffix(normalized, suffix) {
			return r.resolveSlug(ctx, normalized, strings.TrimSuffix(normalized, suffix), hintedSlug)
		}
	}

	r.logger.Debug("host did not match any mapping or platform domain", "host", normalized)
	return nil, &TenantNotFoundError{Host: normalized}
}

// resolveMapping performs the custom-domain lookup. matched reports whether a
// mapping row claimed the host; when it did, the outcome is final and slug
// matching must not run.
func (r *Resolver) resolveMapping(ctx context.Context, host string) (*Identity, bool, error) {
	mapping, err := r.mappings.GetByHost(ctx, host)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	tenant, err := r.tenants.GetByID(ctx, mapping.TenantID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			r.logger.Warn("domain mapping targets a missing tenant",
				"host", host, "tenant_id", mapping.TenantID)
			return nil, true, &MappingMisconfiguredError{Host: host, TenantID: mapping.TenantID, Reason: "tenant missing"}
		}
		return nil, true, err
	}

	if !tenantServable(tenant) {
		r.logger.Warn("domain mapping targets an inactive tenant",
			"host", host, "tenant_id", tenant.ID, "slug", tenant.Slug)
		return nil, true, &MappingMisconfiguredError{Host: host, TenantID: tenant.ID, Reason: "tenant inactive"}
	}

	return identityFor(tenant), true, nil
}

// resolveSlug handles strict subdomains of the platform base domain.
func (r *Resolver) resolveSlug(ctx context.Context, host, prefix, hintedSlug string) (*Identity, error) {
	slug := strings.ToLower(strings.TrimSpace(hintedSlug))
	if slug == "" {
		slug = leftmostLabel(prefix)
	}
	if slug == "" {
		return nil, &TenantNotFoundError{Host: host}
	}

	if _, ok := r.reserved[slug]; ok {
		// Reserved labels belong to the platform surface (www, admin, ...),
		// never to a tenant.
		r.logger.Debug("reserved label skipped during slug resolution", "host", host, "label", slug)
		return nil, nil
	}

	tenant, err := r.tenants.GetBySlug(ctx, slug)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, &TenantNotFoundError{Host: host, Slug: slug}
		}
		return nil, err
	}

	if !tenantServable(tenant) {
		r.logger.Warn("subdomain slug matched an inactive tenant",
			"host", host, "slug", slug, "tenant_id", tenant.ID)
		return nil, &TenantNotFoundError{Host: host, Slug: slug}
	}

	return identityFor(tenant), nil
}

func identityFor(tenant *Tenant) *Identity {
	return &Identity{
		ID:   tenant.ID,
		Slug: tenant.Slug,
		Name: tenant.Name,
	}
}

func tenantServable(tenant *Tenant) bool {
	return tenant != nil && tenant.Active && tenant.DeletedAt == nil
}

// normalizeHost lowercases, strips an optional port, the trailing dot, and
// (when configured) a leading "www." label.
func normalizeHost(host string, stripWWW bool) string {
	normalized := strings.ToLower(strings.TrimSpace(host))
	if normalized == "" {
		return ""
	}
	if stripped, _, err := net.SplitHostPort(normalized); err == nil {
		normalized = stripped
	}
	normalized = strings.TrimSuffix(normalized, ".")
	if stripWWW {
		normalized = strings.TrimPrefix(normalized, "www.")
	}
	return normalized
}

func leftmostLabel(prefix string) string {
	labels := strings.Split(prefix, ".")
	for _, label := range labels {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
