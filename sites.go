package sites

import (
	"context"

	"github.com/goliatone/go-sites/internal/di"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/sections"
	"github.com/goliatone/go-sites/internal/tenants"
	sitetenants "github.com/goliatone/go-sites/tenants"
)

// PageService exports the page service contract for consumers of the sites package.
type PageService = pages.Service

// HostResolver exports the host-to-tenant resolution contract.
type HostResolver = tenants.HostResolver

// SectionRegistry exports the section validator registry.
type SectionRegistry = sections.Registry

// SectionValidator exports the per-type section validation contract.
type SectionValidator = sections.Validator

// Module represents the top level sites runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a sites module using the provided configuration and optional
// DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Pages returns the configured page service.
func (m *Module) Pages() PageService {
	return m.container.PageService()
}

// Resolver returns the configured host resolver.
func (m *Module) Resolver() HostResolver {
	return m.container.Resolver()
}

// Sections returns the configured section validator registry.
func (m *Module) Sections() *SectionRegistry {
	return m.container.SectionRegistry()
}

// Commands returns ready-to-dispatch command handlers for the page
// publishing lifecycle.
func (m *Module) Commands() *di.PageCommands {
	return m.container.PageCommands()
}

// ResolveContext resolves a request host into a tenant Context ready to be
// threaded through page operations. A nil identity (the platform's own root
// surface, or a reserved label) yields an unresolved context.
func (m *Module) ResolveContext(ctx context.Context, host, hintedSlug string) (sitetenants.Context, error) {
	identity, err := m.container.Resolver().Resolve(ctx, host, hintedSlug)
	if err != nil {
		return sitetenants.Context{Host: host}, err
	}
	return sitetenants.NewContext(identity, host), nil
}
