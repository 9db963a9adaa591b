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

const restoreRevisionMessageType = "sites.pages.restore_revision"

// RestoreRevisionCommand copies a historical revision's sections back over
// the live section set as new draft state.
type RestoreRevisionCommand struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	TenantSlug string    `json:"tenant_slug"`
	PageID     uuid.UUID `json:"page_id"`
	Version    int       `json:"version"`
	RestoredBy uuid.UUID `json:"restored_by"`
}

// Type implements command.Message.
func (RestoreRevisionCommand) Type() string { return restoreRevisionMessageType }

func (m RestoreRevisionCommand) Validate() error {
	errs := validation.Errors{}
	if m.TenantID == uuid.Nil {
		errs["tenant_id"] = validation.NewError("sites.pages.restore.tenant_id_required", "tenant_id is required")
	}
	if m.PageID == uuid.Nil {
		errs["page_id"] = validation.NewError("sites.pages.restore.page_id_required", "page_id is required")
	}
	if m.Version <= 0 {
		errs["version"] = validation.NewError("sites.pages.restore.version_invalid", "version must be greater than zero")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RestoreRevisionHandler restores historical revisions via the page service.
type RestoreRevisionHandler struct {
	inner *commands.Handler[RestoreRevisionCommand]
}

func NewRestoreRevisionHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RestoreRevisionCommand]) *RestoreRevisionHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RestoreRevisionCommand) error {
		tc := tenants.NewContext(&tenants.Identity{ID: msg.TenantID, Slug: msg.TenantSlug}, "")
		_, err := service.RestoreRevision(ctx, tc, pages.RestoreRevisionRequest{
			PageID:     msg.PageID,
			Version:    msg.Version,
			RestoredBy: msg.RestoredBy,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[RestoreRevisionCommand]{
		commands.WithLogger[RestoreRevisionCommand](baseLogger),
		commands.WithOperation[RestoreRevisionCommand]("pages.restore_revision"),
		commands.WithMessageFields(func(msg RestoreRevisionCommand) map[string]any {
			return map[string]any{
				"tenant_id": msg.TenantID,
				"page_id":   msg.PageID,
				"version":   msg.Version,
			}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RestoreRevisionHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

func (h *RestoreRevisionHandler) Execute(ctx context.Context, msg RestoreRevisionCommand) error {
	return h.inner.Execute(ctx, msg)
}
