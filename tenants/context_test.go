package tenants

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewContextWithIdentity(t *testing.T) {
	identity := &Identity{ID: uuid.New(), Slug: "acme", Name: "Acme Inc"}

	tc := NewContext(identity, "acme.example.com")
	if !tc.IsResolved() {
		t.Fatal("context with identity should be resolved")
	}
	if tc.TenantID != identity.ID || tc.Slug != "acme" || tc.Host != "acme.example.com" {
		t.Fatalf("unexpected context: %+v", tc)
	}
}

func TestNewContextNilIdentityIsUnresolved(t *testing.T) {
	tc := NewContext(nil, "sites.example.com")
	if tc.IsResolved() {
		t.Fatal("nil identity must yield an unresolved context")
	}
	if tc.Host != "sites.example.com" {
		t.Fatalf("host should be retained, got %q", tc.Host)
	}
}

func TestZeroContextIsUnresolved(t *testing.T) {
	var tc Context
	if tc.IsResolved() {
		t.Fatal("zero context must be unresolved")
	}
}
