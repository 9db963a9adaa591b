package tenants

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunTenantRepository reads tenants from the directory tables via bun.
type BunTenantRepository struct {
	db   *bun.DB
	repo repository.Repository[*Tenant]
}

func NewBunTenantRepository(db *bun.DB) *BunTenantRepository {
	return NewBunTenantRepositoryWithCache(db, nil, nil)
}

// NewBunTenantRepositoryWithCache constructs a TenantRepository backed by bun
// with optional caching; the directory is read-mostly so cached lookups are
// safe between invalidations.
func NewBunTenantRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunTenantRepository {
	base := NewTenantRepository(db)
	return &BunTenantRepository{
		db:   db,
		repo: wrapWithCache(base, cacheService, keySerializer),
	}
}

func (r *BunTenantRepository) Create(ctx context.Context, record *Tenant) (*Tenant, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.id = ?", id)
		}),
		repository.SelectRawProcessor(excludeDeleted),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "tenant", id.String())
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "tenant", Key: id.String()}
	}
	return records[0], nil
}

func (r *BunTenantRepository) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	normalized := strings.ToLower(strings.TrimSpace(slug))
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("lower(?TableAlias.slug) = ?", normalized)
		}),
		repository.SelectRawProcessor(excludeDeleted),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "tenant", normalized)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "tenant", Key: normalized}
	}
	return records[0], nil
}

// BunDomainMappingRepository manages custom-domain rows. DomainMapping keeps
// a surrogate integer key, so queries are written directly against bun
// instead of the uuid-keyed repository helpers.
type BunDomainMappingRepository struct {
	db *bun.DB
}

func NewBunDomainMappingRepository(db *bun.DB) *BunDomainMappingRepository {
	return &BunDomainMappingRepository{db: db}
}

func (r *BunDomainMappingRepository) GetByHost(ctx context.Context, host string) (*DomainMapping, error) {
	if r.db == nil {
		return nil, fmt.Errorf("domain mapping repository: database not configured")
	}

	mapping := new(DomainMapping)
	err := r.db.NewSelect().
		Model(mapping).
		Where("?TableAlias.host = ?", strings.ToLower(strings.TrimSpace(host))).
		Where("?TableAlias.deleted_at IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, &NotFoundError{Resource: "domain mapping", Key: host}
		}
		return nil, fmt.Errorf("domain mapping lookup: %w", err)
	}
	return mapping, nil
}

// ListByTenant returns every live mapping owned by a tenant, primary first.
func (r *BunDomainMappingRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*DomainMapping, error) {
	if r.db == nil {
		return nil, fmt.Errorf("domain mapping repository: database not configured")
	}

	var mappings []*DomainMapping
	err := r.db.NewSelect().
		Model(&mappings).
		Where("?TableAlias.tenant_id = ?", tenantID).
		Where("?TableAlias.deleted_at IS NULL").
		OrderExpr("?TableAlias.is_primary DESC, ?TableAlias.host ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("domain mapping list: %w", err)
	}
	return mappings, nil
}

// Create inserts a mapping. Marking it primary demotes any existing primary
// for the same tenant inside one transaction so the at-most-one invariant
// holds.
func (r *BunDomainMappingRepository) Create(ctx context.Context, mapping *DomainMapping) (*DomainMapping, error) {
	if r.db == nil {
		return nil, fmt.Errorf("domain mapping repository: database not configured")
	}

	mapping.Host = strings.ToLower(strings.TrimSpace(mapping.Host))
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if mapping.Primary {
			if _, err := tx.NewUpdate().
				Model((*DomainMapping)(nil)).
				Set("is_primary = ?", false).
				Where("tenant_id = ?", mapping.TenantID).
				Where("is_primary = ?", true).
				Exec(ctx); err != nil {
				return fmt.Errorf("demote primary mapping: %w", err)
			}
		}
		if _, err := tx.NewInsert().Model(mapping).Exec(ctx); err != nil {
			return fmt.Errorf("insert domain mapping: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapping, nil
}

func isNoRows(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no rows")
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}

func excludeDeleted(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("?TableAlias.deleted_at IS NULL")
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
