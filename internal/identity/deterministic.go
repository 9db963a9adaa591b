package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// TenantUUID derives a stable identifier for seeded tenants keyed by slug.
func TenantUUID(slug string) uuid.UUID {
	return UUID("go-sites:tenant:" + strings.ToLower(strings.TrimSpace(slug)))
}

// PageUUID derives a stable identifier for seeded pages keyed by tenant and slug.
func PageUUID(tenantID uuid.UUID, slug string) uuid.UUID {
	return UUID("go-sites:page:" + tenantID.String() + ":" + strings.ToLower(strings.TrimSpace(slug)))
}

// SectionTypeUUID derives a stable identifier for built-in section types.
func SectionTypeUUID(key string) uuid.UUID {
	return UUID("go-sites:section_type:" + strings.ToLower(strings.TrimSpace(key)))
}
