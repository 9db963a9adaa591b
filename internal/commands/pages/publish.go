package pagescmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-sites/internal/commands"
	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/internal/pages"
	"github.com/goliatone/go-sites/internal/tenants"
	"github.com/goliatone/go-sites/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	publishPageMessageType   = "sites.pages.publish"
	unpublishPageMessageType = "sites.pages.unpublish"
	archivePageMessageType   = "sites.pages.archive"
)

// PublishPageCommand requests publication of one page's current live section
// graph as the next revision.
type PublishPageCommand struct {
	TenantID    uuid.UUID `json:"tenant_id"`
	TenantSlug  string    `json:"tenant_slug"`
	PageID      uuid.UUID `json:"page_id"`
	PublishedBy uuid.UUID `json:"published_by"`
}

// Type implements command.Message.
func (PublishPageCommand) Type() string { return publishPageMessageType }

// Validate ensures the command captures the required identifiers before
// reaching handlers.
func (m PublishPageCommand) Validate() error {
	errs := validation.Errors{}
	if m.TenantID == uuid.Nil {
		errs["tenant_id"] = validation.NewError("sites.pages.publish.tenant_id_required", "tenant_id is required")
	}
	if m.PageID == uuid.Nil {
		errs["page_id"] = validation.NewError("sites.pages.publish.page_id_required", "page_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PublishPageHandler publishes pages via the page service using the shared
// command handler foundation.
type PublishPageHandler struct {
	inner *commands.Handler[PublishPageCommand]
}

// NewPublishPageHandler constructs a handler wired to the provided page service.
func NewPublishPageHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishPageCommand]) *PublishPageHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg PublishPageCommand) error {
		tc := tenants.NewContext(&tenants.Identity{ID: msg.TenantID, Slug: msg.TenantSlug}, "")
		result, err := service.Publish(ctx, tc, pages.PublishPageRequest{
			PageID:      msg.PageID,
			PublishedBy: msg.PublishedBy,
		})
		if err != nil {
			return err
		}
		if !result.Success {
			return &pages.SectionValidationError{Violations: result.Errors}
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishPageCommand]{
		commands.WithLogger[PublishPageCommand](baseLogger),
		commands.WithOperation[PublishPageCommand]("pages.publish"),
		commands.WithMessageFields(func(msg PublishPageCommand) map[string]any {
			fields := map[string]any{}
			if msg.TenantID != uuid.Nil {
				fields["tenant_id"] = msg.TenantID
			}
			if msg.PageID != uuid.Nil {
				fields["page_id"] = msg.PageID
			}
			if msg.PublishedBy != uuid.Nil {
				fields["published_by"] = msg.PublishedBy
			}
			if len(fields) == 0 {
				return nil
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishPageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishPageCommand].Execute.
func (h *PublishPageHandler) Execute(ctx context.Context, msg PublishPageCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UnpublishPageCommand withdraws a page's published revision, returning the
// page to draft while leaving its history intact.
type UnpublishPageCommand struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	TenantSlug string    `json:"tenant_slug"`
	PageID     uuid.UUID `json:"page_id"`
	UpdatedBy  uuid.UUID `json:"updated_by"`
}

// Type implements command.Message.
func (UnpublishPageCommand) Type() string { return unpublishPageMessageType }

func (m UnpublishPageCommand) Validate() error {
	errs := validation.Errors{}
	if m.TenantID == uuid.Nil {
		errs["tenant_id"] = validation.NewError("sites.pages.unpublish.tenant_id_required", "tenant_id is required")
	}
	if m.PageID == uuid.Nil {
		errs["page_id"] = validation.NewError("sites.pages.unpublish.page_id_required", "page_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UnpublishPageHandler withdraws published pages via the page service.
type UnpublishPageHandler struct {
	inner *commands.Handler[UnpublishPageCommand]
}

func NewUnpublishPageHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UnpublishPageCommand]) *UnpublishPageHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg UnpublishPageCommand) error {
		tc := tenants.NewContext(&tenants.Identity{ID: msg.TenantID, Slug: msg.TenantSlug}, "")
		_, err := service.Unpublish(ctx, tc, pages.UnpublishPageRequest{
			PageID:    msg.PageID,
			UpdatedBy: msg.UpdatedBy,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[UnpublishPageCommand]{
		commands.WithLogger[UnpublishPageCommand](baseLogger),
		commands.WithOperation[UnpublishPageCommand]("pages.unpublish"),
		commands.WithMessageFields(func(msg UnpublishPageCommand) map[string]any {
			return map[string]any{
				"tenant_id": msg.TenantID,
				"page_id":   msg.PageID,
			}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UnpublishPageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

func (h *UnpublishPageHandler) Execute(ctx context.Context, msg UnpublishPageCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ArchivePageCommand retires a page from serving while keeping its history.
type ArchivePageCommand struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	TenantSlug string    `json:"tenant_slug"`
	PageID     uuid.UUID `json:"page_id"`
	UpdatedBy  uuid.UUID `json:"updated_by"`
}

// Type implements command.Message.
func (ArchivePageCommand) Type() string { return archivePageMessageType }

func (m ArchivePageCommand) Validate() error {
	errs := validation.Errors{}
	if m.TenantID == uuid.Nil {
		errs["tenant_id"] = validation.NewError("sites.pages.archive.tenant_id_required", "tenant_id is required")
	}
	if m.PageID == uuid.Nil {
		errs["page_id"] = validation.NewError("sites.pages.archive.page_id_required", "page_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ArchivePageHandler archives pages via the page service.
type ArchivePageHandler struct {
	inner *commands.Handler[ArchivePageCommand]
}

func NewArchivePageHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ArchivePageCommand]) *ArchivePageHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ArchivePageCommand) error {
		tc := tenants.NewContext(&tenants.Identity{ID: msg.TenantID, Slug: msg.TenantSlug}, "")
		_, err := service.Archive(ctx, tc, pages.ArchivePageRequest{
			PageID:    msg.PageID,
			UpdatedBy: msg.UpdatedBy,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[ArchivePageCommand]{
		commands.WithLogger[ArchivePageCommand](baseLogger),
		commands.WithOperation[ArchivePageCommand]("pages.archive"),
		commands.WithMessageFields(func(msg ArchivePageCommand) map[string]any {
			return map[string]any{
				"tenant_id": msg.TenantID,
				"page_id":   msg.PageID,
			}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ArchivePageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

func (h *ArchivePageHandler) Execute(ctx context.Context, msg ArchivePageCommand) error {
	return h.inner.Execute(ctx, msg)
}
