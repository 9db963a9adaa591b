package tenants

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryTenantRepository is an in-memory implementation for scaffolding and tests.
type MemoryTenantRepository struct {
	mu        sync.RWMutex
	tenants   map[uuid.UUID]*Tenant
	slugIndex map[string]uuid.UUID
}

// NewMemoryTenantRepository creates an empty in-memory tenant repository.
func NewMemoryTenantRepository() *MemoryTenantRepository {
	return &MemoryTenantRepository{
		tenants:   make(map[uuid.UUID]*Tenant),
		slugIndex: make(map[string]uuid.UUID),
	}
}

// Put inserts or replaces a tenant record.
func (m *MemoryTenantRepository) Put(record *Tenant) {
	if record == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneTenant(record)
	m.tenants[copied.ID] = copied
	m.slugIndex[strings.ToLower(copied.Slug)] = copied.ID
}

// GetByID retrieves a live tenant by identifier.
func (m *MemoryTenantRepository) GetByID(_ context.Context, id uuid.UUID) (*Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.tenants[id]
	if !ok || rec.DeletedAt != nil {
		return nil, &NotFoundError{Resource: "tenant", Key: id.String()}
	}
	return cloneTenant(rec), nil
}

// GetBySlug retrieves a live tenant by slug, case-insensitively.
func (m *MemoryTenantRepository) GetBySlug(_ context.Context, slug string) (*Tenant, error) {
	normalized := strings.ToLower(strings.TrimSpace(slug))

	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[normalized]
	if !ok {
		return nil, &NotFoundError{Resource: "tenant", Key: normalized}
	}
	rec := m.tenants[id]
	if rec == nil || rec.DeletedAt != nil {
		return nil, &NotFoundError{Resource: "tenant", Key: normalized}
	}
	return cloneTenant(rec), nil
}

// MemoryDomainMappingRepository stores host mappings in-memory.
type MemoryDomainMappingRepository struct {
	mu       sync.RWMutex
	byHost   map[string]*DomainMapping
	nextID   int64
	byTenant map[uuid.UUID][]int64
}

// NewMemoryDomainMappingRepository constructs the repository.
func NewMemoryDomainMappingRepository() *MemoryDomainMappingRepository {
	return &MemoryDomainMappingRepository{
		byHost:   make(map[string]*DomainMapping),
		byTenant: make(map[uuid.UUID][]int64),
	}
}

// Put inserts or replaces a mapping keyed by normalized host.
func (m *MemoryDomainMappingRepository) Put(record *DomainMapping) {
	if record == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneMapping(record)
	copied.Host = strings.ToLower(strings.TrimSpace(copied.Host))
	if copied.ID == 0 {
		m.nextID++
		copied.ID = m.nextID
	}
	m.byHost[copied.Host] = copied
	m.byTenant[copied.TenantID] = append(m.byTenant[copied.TenantID], copied.ID)
}

// GetByHost retrieves a live mapping by normalized host.
func (m *MemoryDomainMappingRepository) GetByHost(_ context.Context, host string) (*DomainMapping, error) {
	normalized := strings.ToLower(strings.TrimSpace(host))

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.byHost[normalized]
	if !ok || rec.DeletedAt != nil {
		return nil, &NotFoundError{Resource: "domain mapping", Key: normalized}
	}
	return cloneMapping(rec), nil
}

func cloneTenant(src *Tenant) *Tenant {
	if src == nil {
		return nil
	}
	copied := *src
	if src.HomePageID != nil {
		home := *src.HomePageID
		copied.HomePageID = &home
	}
	if src.DeletedAt != nil {
		deleted := *src.DeletedAt
		copied.DeletedAt = &deleted
	}
	return &copied
}

func cloneMapping(src *DomainMapping) *DomainMapping {
	if src == nil {
		return nil
	}
	copied := *src
	if src.VerifiedAt != nil {
		verified := *src.VerifiedAt
		copied.VerifiedAt = &verified
	}
	if src.DeletedAt != nil {
		deleted := *src.DeletedAt
		copied.DeletedAt = &deleted
	}
	copied.Tenant = nil
	return &copied
}
