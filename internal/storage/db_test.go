package storage_test

import (
	"context"
	"testing"

	sites "github.com/goliatone/go-sites"
	"github.com/goliatone/go-sites/internal/storage"
	"github.com/goliatone/go-sites/tenants"
	"github.com/google/uuid"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := storage.Open("oracle", "dsn"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpenSQLiteAndApplyMigrations(t *testing.T) {
	db, err := storage.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	migrations, err := sites.Migrations()
	if err != nil {
		t.Fatalf("migrations fs: %v", err)
	}
	if err := storage.ApplyMigrations(ctx, db, migrations, "."); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	// The migrated schema accepts and returns tenant rows.
	record := &tenants.Tenant{
		ID:     uuid.New(),
		Slug:   "acme",
		Name:   "Acme Inc",
		Active: true,
	}
	if _, err := db.NewInsert().Model(record).Exec(ctx); err != nil {
		t.Fatalf("insert tenant: %v", err)
	}

	fetched := new(tenants.Tenant)
	if err := db.NewSelect().Model(fetched).Where("slug = ?", "acme").Scan(ctx); err != nil {
		t.Fatalf("select tenant: %v", err)
	}
	if fetched.ID != record.ID {
		t.Fatalf("unexpected tenant: %+v", fetched)
	}

	// Running the same migrations twice is safe.
	if err := storage.ApplyMigrations(ctx, db, migrations, "."); err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}
}
