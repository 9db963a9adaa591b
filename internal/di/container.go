package di

import (
	"time"

	"github.com/goliatone/go-sites/internal/commands"
	pagescmd "github.com/goliatone/go-sites/internal/commands/pages"
	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/logging/gologger"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/runtimeconfig"
	"github.com/goliatone/go-sites/internal/sections"
	"github.com/goliatone/go-sites/internal/tenants"
	"github.com/goliatone/go-sites/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Container wires module dependencies. Memory-backed repositories are the
// defaults; providing a bun DB swaps in the relational implementations.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider
	clock          func() time.Time
	idGenerator    func() uuid.UUID

	tenantRepo  tenants.TenantRepository
	mappingRepo tenants.DomainMappingRepository
	pageRepo    pages.PageRepository
	registry    *sections.Registry

	resolver tenants.HostResolver
	pageSvc  pages.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache used for tenant lookups.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the logger provider for every module logger.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIDGenerator overrides record identifier generation.
func WithIDGenerator(generator func() uuid.UUID) Option {
	return func(c *Container) {
		if generator != nil {
			c.idGenerator = generator
		}
	}
}

// WithTenantRepository overrides the default tenant repository binding.
func WithTenantRepository(repo tenants.TenantRepository) Option {
	return func(c *Container) {
		c.tenantRepo = repo
	}
}

// WithDomainMappingRepository overrides the default mapping repository binding.
func WithDomainMappingRepository(repo tenants.DomainMappingRepository) Option {
	return func(c *Container) {
		c.mappingRepo = repo
	}
}

// WithPageRepository overrides the default page repository binding.
func WithPageRepository(repo pages.PageRepository) Option {
	return func(c *Container) {
		c.pageRepo = repo
	}
}

// WithSectionRegistry overrides the default section validator registry.
func WithSectionRegistry(registry *sections.Registry) Option {
	return func(c *Container) {
		c.registry = registry
	}
}

// WithPageService overrides the default page service binding.
func WithPageService(svc pages.Service) Option {
	return func(c *Container) {
		c.pageSvc = svc
	}
}

// WithHostResolver overrides the default host resolver binding.
func WithHostResolver(resolver tenants.HostResolver) Option {
	return func(c *Container) {
		c.resolver = resolver
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:      cfg,
		clock:       time.Now,
		idGenerator: uuid.New,
		registry:    sections.DefaultRegistry(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureRepositories()
	c.configureResolver()
	c.configureServices()

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	if c.Config.Logging.Provider != "gologger" {
		// "custom" keeps the no-op default until the host injects a provider.
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureRepositories() {
	if c.bunDB != nil {
		if c.tenantRepo == nil {
			c.tenantRepo = tenants.NewBunTenantRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		}
		if c.mappingRepo == nil {
			c.mappingRepo = tenants.NewBunDomainMappingRepository(c.bunDB)
		}
		if c.pageRepo == nil {
			c.pageRepo = pages.NewBunPageRepository(c.bunDB)
		}
		return
	}

	if c.tenantRepo == nil {
		c.tenantRepo = tenants.NewMemoryTenantRepository()
	}
	if c.mappingRepo == nil {
		c.mappingRepo = tenants.NewMemoryDomainMappingRepository()
	}
	if c.pageRepo == nil {
		c.pageRepo = pages.NewMemoryPageRepository()
	}
}

func (c *Container) configureResolver() {
	if c.resolver != nil {
		return
	}

	resolverOpts := []tenants.ResolverOption{
		tenants.WithStripWWW(c.Config.Resolver.StripWWW),
		tenants.WithResolverLogger(logging.TenantsLogger(c.loggerProvider)),
	}
	if c.Config.Resolver.BaseDomain != "" {
		resolverOpts = append(resolverOpts, tenants.WithBaseDomain(c.Config.Resolver.BaseDomain))
	}
	if len(c.Config.Resolver.ReservedLabels) > 0 {
		resolverOpts = append(resolverOpts, tenants.WithReservedLabels(c.Config.Resolver.ReservedLabels...))
	}

	resolver := tenants.NewResolver(c.mappingRepo, c.tenantRepo, resolverOpts...)

	if !c.Config.Cache.Enabled {
		c.resolver = resolver
		return
	}

	cacheOpts := []tenants.CacheOption{
		tenants.WithCacheClock(c.clock),
	}
	if c.Config.Cache.DefaultTTL > 0 {
		cacheOpts = append(cacheOpts, tenants.WithCacheTTL(c.Config.Cache.DefaultTTL))
	}
	c.resolver = tenants.NewCachingResolver(resolver, cacheOpts...)
}

func (c *Container) configureServices() {
	if c.pageSvc != nil {
		return
	}
	c.pageSvc = pages.NewService(c.pageRepo, c.registry,
		pages.WithClock(c.clock),
		pages.WithIDGenerator(c.idGenerator),
		pages.WithLogger(logging.PagesLogger(c.loggerProvider)),
		pages.WithRevisionHistory(c.Config.Features.Revisions),
	)
}

// Resolver returns the configured host resolver.
func (c *Container) Resolver() tenants.HostResolver {
	return c.resolver
}

// PageService returns the configured page service.
func (c *Container) PageService() pages.Service {
	return c.pageSvc
}

// SectionRegistry returns the configured section validator registry.
func (c *Container) SectionRegistry() *sections.Registry {
	return c.registry
}

// TenantRepository returns the configured tenant repository.
func (c *Container) TenantRepository() tenants.TenantRepository {
	return c.tenantRepo
}

// DomainMappingRepository returns the configured mapping repository.
func (c *Container) DomainMappingRepository() tenants.DomainMappingRepository {
	return c.mappingRepo
}

// PageRepository returns the configured page repository.
func (c *Container) PageRepository() pages.PageRepository {
	return c.pageRepo
}

// LoggerProvider returns the configured logger provider, which may be nil.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// PageCommands bundles the command handlers built on top of the page service.
type PageCommands struct {
	Publish   *pagescmd.PublishPageHandler
	Unpublish *pagescmd.UnpublishPageHandler
	Archive   *pagescmd.ArchivePageHandler
	Restore   *pagescmd.RestoreRevisionHandler
}

// PageCommands returns command handlers bound to the configured page service.
func (c *Container) PageCommands() *PageCommands {
	logger := commands.CommandLogger(c.loggerProvider, "pages")
	return &PageCommands{
		Publish:   pagescmd.NewPublishPageHandler(c.pageSvc, logger),
		Unpublish: pagescmd.NewUnpublishPageHandler(c.pageSvc, logger),
		Archive:   pagescmd.NewArchivePageHandler(c.pageSvc, logger),
		Restore:   pagescmd.NewRestoreRevisionHandler(c.pageSvc, logger),
	}
}
