package pages

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// How many times PersistPublish recomputes the version after losing a race
// to a concurrent publish of the same page.
const publishRetryLimit = 3

// BunPageRepository stores pages, live sections, and revision history in
// relational tables via bun.
type BunPageRepository struct {
	db    *bun.DB
	pages repository.Repository[*Page]
}

func NewBunPageRepository(db *bun.DB) *BunPageRepository {
	return &BunPageRepository{
		db:    db,
		pages: NewPageModelRepository(db),
	}
}

func (r *BunPageRepository) Create(ctx context.Context, record *Page) (*Page, error) {
	if r.db == nil {
		return nil, fmt.Errorf("page repository: database not configured")
	}

	sections := record.Sections
	record.Sections = nil

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return ErrSlugExists
			}
			return fmt.Errorf("insert page: %w", err)
		}
		if len(sections) > 0 {
			if _, err := tx.NewInsert().Model(&sections).Exec(ctx); err != nil {
				return fmt.Errorf("insert page sections: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	record.Sections = sections
	return record, nil
}

func (r *BunPageRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Page, error) {
	records, _, err := r.pages.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.tenant_id = ?", tenantID).
				Where("?TableAlias.id = ?", id)
		}),
		repository.SelectRawProcessor(excludeDeleted),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapPageError(err, id.String())
	}
	if len(records) == 0 {
		return nil, &PageNotFoundError{Key: id.String()}
	}
	return records[0], nil
}

func (r *BunPageRepository) GetBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*Page, error) {
	records, _, err := r.pages.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.tenant_id = ?", tenantID).
				Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectRawProcessor(excludeDeleted),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapPageError(err, slug)
	}
	if len(records) == 0 {
		return nil, &PageNotFoundError{Key: slug}
	}
	return records[0], nil
}

func (r *BunPageRepository) List(ctx context.Context, tenantID uuid.UUID) ([]*Page, error) {
	records, _, err := r.pages.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.tenant_id = ?", tenantID).
				OrderExpr("?TableAlias.slug ASC")
		}),
		repository.SelectRawProcessor(excludeDeleted),
	)
	if err != nil {
		return nil, fmt.Errorf("page list: %w", err)
	}
	return records, nil
}

func (r *BunPageRepository) Update(ctx context.Context, record *Page) (*Page, error) {
	if r.db == nil {
		return nil, fmt.Errorf("page repository: database not configured")
	}

	res, err := r.db.NewUpdate().
		Model(record).
		WherePK().
		Where("tenant_id = ?", record.TenantID).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, &PageNotFoundError{Key: record.ID.String()}
	}
	return record, nil
}

func (r *BunPageRepository) ListSections(ctx context.Context, tenantID, pageID uuid.UUID) ([]*PageSection, error) {
	var records []*PageSection
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.tenant_id = ?", tenantID).
		Where("?TableAlias.page_id = ?", pageID).
		Where("?TableAlias.deleted_at IS NULL").
		OrderExpr("?TableAlias.sort_order ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("page section list: %w", err)
	}
	return records, nil
}

func (r *BunPageRepository) UpsertSection(ctx context.Context, record *PageSection) (*PageSection, error) {
	if r.db == nil {
		return nil, fmt.Errorf("page repository: database not configured")
	}

	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("type = EXCLUDED.type").
		Set("sort_order = EXCLUDED.sort_order").
		Set("settings = EXCLUDED.settings").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSortOrderTaken
		}
		return nil, fmt.Errorf("upsert page section: %w", err)
	}
	return record, nil
}

func (r *BunPageRepository) RemoveSection(ctx context.Context, tenantID, pageID, sectionID uuid.UUID) error {
	if r.db == nil {
		return fmt.Errorf("page repository: database not configured")
	}

	res, err := r.db.NewUpdate().
		Model((*PageSection)(nil)).
		Set("deleted_at = CURRENT_TIMESTAMP").
		Where("tenant_id = ?", tenantID).
		Where("page_id = ?", pageID).
		Where("id = ?", sectionID).
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("remove page section: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrSectionRequired
	}
	return nil
}

// ReplaceSections swaps the full live section set of a page in one
// transaction: existing rows are soft-deleted, then the replacement rows
// inserted.
func (r *BunPageRepository) ReplaceSections(ctx context.Context, tenantID, pageID uuid.UUID, records []*PageSection) ([]*PageSection, error) {
	if r.db == nil {
		return nil, fmt.Errorf("page repository: database not configured")
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*PageSection)(nil)).
			Set("deleted_at = CURRENT_TIMESTAMP").
			Where("tenant_id = ?", tenantID).
			Where("page_id = ?", pageID).
			Where("deleted_at IS NULL").
			Exec(ctx); err != nil {
			return fmt.Errorf("retire live sections: %w", err)
		}
		if len(records) > 0 {
			if _, err := tx.NewInsert().Model(&records).Exec(ctx); err != nil {
				return fmt.Errorf("insert replacement sections: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// PersistPublish commits one publish in a single transaction. The next
// version number is computed inside the transaction from the current
// maximum; losing a unique-index race to a concurrent publish triggers a
// bounded recompute-and-retry.
func (r *BunPageRepository) PersistPublish(ctx context.Context, page *Page, revision *PageRevision, snapshots []*PageRevisionSection) (*PageRevision, error) {
	if r.db == nil {
		return nil, fmt.Errorf("page repository: database not configured")
	}
	if len(snapshots) == 0 {
		return nil, ErrNoSections
	}

	var lastErr error
	for attempt := 0; attempt < publishRetryLimit; attempt++ {
		err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			var current sql.NullInt64
			if err := tx.NewSelect().
				Model((*PageRevision)(nil)).
				ColumnExpr("COALESCE(MAX(?TableAlias.version), 0)").
				Where("?TableAlias.tenant_id = ?", revision.TenantID).
				Where("?TableAlias.page_id = ?", revision.PageID).
				Scan(ctx, &current); err != nil {
				return fmt.Errorf("compute next version: %w", err)
			}
			revision.Version = int(current.Int64) + 1

			if _, err := tx.NewInsert().Model(revision).Exec(ctx); err != nil {
				if isUniqueViolation(err) {
					return ErrPublishConflict
				}
				return fmt.Errorf("insert revision: %w", err)
			}
			if len(snapshots) > 0 {
				if _, err := tx.NewInsert().Model(&snapshots).Exec(ctx); err != nil {
					return fmt.Errorf("insert revision sections: %w", err)
				}
			}

			res, err := tx.NewUpdate().
				Model(page).
				Column("status", "published_revision_id", "published_at", "published_by", "updated_by", "updated_at").
				WherePK().
				Where("tenant_id = ?", page.TenantID).
				Where("deleted_at IS NULL").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("advance published cursor: %w", err)
			}
			if affected, err := res.RowsAffected(); err == nil && affected == 0 {
				return &PageNotFoundError{Key: page.ID.String()}
			}
			return nil
		})
		if err == nil {
			return revision, nil
		}
		lastErr = err
		if err != ErrPublishConflict {
			return nil, err
		}
	}
	return nil, lastErr
}

func (r *BunPageRepository) ListRevisions(ctx context.Context, tenantID, pageID uuid.UUID) ([]*PageRevision, error) {
	var records []*PageRevision
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.tenant_id = ?", tenantID).
		Where("?TableAlias.page_id = ?", pageID).
		Where("?TableAlias.deleted_at IS NULL").
		OrderExpr("?TableAlias.version ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("revision list: %w", err)
	}
	return records, nil
}

func (r *BunPageRepository) GetRevision(ctx context.Context, tenantID, pageID uuid.UUID, version int) (*PageRevision, error) {
	record := new(PageRevision)
	err := r.db.NewSelect().
		Model(record).
		Relation("Sections", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("sort_order ASC")
		}).
		Where("?TableAlias.tenant_id = ?", tenantID).
		Where("?TableAlias.page_id = ?", pageID).
		Where("?TableAlias.version = ?", version).
		Where("?TableAlias.deleted_at IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, &RevisionNotFoundError{PageID: pageID, Version: version}
		}
		return nil, fmt.Errorf("revision lookup: %w", err)
	}
	return record, nil
}

// Unique-violation detection is by driver message, same strings SQLite,
// Postgres, and MySQL emit.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Error 1062")
}

func isNoRows(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no rows")
}

func mapPageError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &PageNotFoundError{Key: key}
	}
	return fmt.Errorf("page repository error: %w", err)
}

func excludeDeleted(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("?TableAlias.deleted_at IS NULL")
}
