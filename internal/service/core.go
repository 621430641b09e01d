package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sims-api/internal/identity"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/internal/registry"
	"github.com/noah-isme/sims-api/internal/repository"
	apperrors "github.com/noah-isme/sims-api/pkg/errors"
)

// Refs extracts the column values the error translator may need to name: the
// unique fields and the foreign keys of the in-flight entity. Entities
// without either pass nil.
type Refs[T any, P repository.Entity[T]] func(entity P) map[string]string

// Core composes the repository, archive guard, delete strategies and export
// hook for one entity kind. Per-entity services embed it and contribute their
// validated Create and Update paths; everything else is shared.
type Core[T any, P repository.Entity[T]] struct {
	repo   *repository.Lifecycle[T, P]
	deps   *repository.DependencyStore
	guard  *ArchiveGuard
	export *ExportService
	logger *zap.Logger
	table  registry.Table
	refs   Refs[T, P]
}

// NewCore wires the shared lifecycle engine for P's entity kind.
func NewCore[T any, P repository.Entity[T]](
	repo *repository.Lifecycle[T, P],
	deps *repository.DependencyStore,
	export *ExportService,
	logger *zap.Logger,
	refs Refs[T, P],
) *Core[T, P] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Core[T, P]{
		repo:   repo,
		deps:   deps,
		guard:  NewArchiveGuard(deps),
		export: export,
		logger: logger,
		table:  repo.Table(),
		refs:   refs,
	}
}

// Kind returns the entity kind served by this core.
func (c *Core[T, P]) Kind() models.EntityKind { return c.table.Kind }

// Get loads from the active view.
func (c *Core[T, P]) Get(ctx context.Context, id string) (P, error) {
	entity, err := c.repo.GetActive(ctx, id)
	if err != nil {
		return nil, c.Translate(err, "read", id, nil)
	}
	return entity, nil
}

// GetArchived loads from the archived view.
func (c *Core[T, P]) GetArchived(ctx context.Context, id string) (P, error) {
	entity, err := c.repo.GetArchived(ctx, id)
	if err != nil {
		return nil, c.Translate(err, "read", id, nil)
	}
	return entity, nil
}

// List queries the active view with the shared filter contract.
func (c *Core[T, P]) List(ctx context.Context, q models.ListQuery) ([]T, int, error) {
	items, total, err := c.repo.ListActive(ctx, q)
	if err != nil {
		return nil, 0, c.Translate(err, "list", "", nil)
	}
	return items, total, nil
}

// ListArchived queries the archived view.
func (c *Core[T, P]) ListArchived(ctx context.Context, q models.ListQuery) ([]T, int, error) {
	items, total, err := c.repo.ListArchived(ctx, q)
	if err != nil {
		return nil, 0, c.Translate(err, "list", "", nil)
	}
	return items, total, nil
}

// Audit returns the lifecycle envelope from whichever view holds the entity.
func (c *Core[T, P]) Audit(ctx context.Context, id string) (*models.Lifecycle, error) {
	entity, err := c.getEither(ctx, id)
	if err != nil {
		return nil, err
	}
	return entity.Envelope(), nil
}

// Archive consults the guard and, when nothing blocks, flips the entity into
// the archived view with full attribution. Archiving a row absent from the
// active view (including an already-archived one) reports NotFound.
func (c *Core[T, P]) Archive(ctx context.Context, id string, reason models.ArchiveReason) (P, error) {
	if !reason.Valid() {
		return nil, apperrors.Validation(apperrors.KindInvalidCode, "reason", string(reason), "archive reason is not recognised")
	}

	blockers, err := c.guard.BlockingDependents(ctx, c.table, id)
	if err != nil {
		return nil, err
	}
	if len(blockers) > 0 {
		return nil, apperrors.ArchiveDependency(string(c.table.Kind), id, blockers)
	}

	actor := identity.ActorID(ctx)
	if err := c.repo.Archive(ctx, id, actor, reason, time.Now().UTC()); err != nil {
		return nil, c.Translate(err, "archive", id, nil)
	}
	return c.GetArchived(ctx, id)
}

// Restore moves an archived entity back into the active view, clearing the
// archive triple.
func (c *Core[T, P]) Restore(ctx context.Context, id string) (P, error) {
	actor := identity.ActorID(ctx)
	if err := c.repo.Restore(ctx, id, actor, time.Now().UTC()); err != nil {
		return nil, c.Translate(err, "restore", id, nil)
	}
	return c.Get(ctx, id)
}

// Export renders the entity through the export hook. The entity may live in
// either view; rendering marks it as exported.
func (c *Core[T, P]) Export(ctx context.Context, id string, format ExportFormat) (*ExportResult, error) {
	if _, err := c.getEither(ctx, id); err != nil {
		return nil, err
	}
	return c.export.Export(ctx, c.table.Kind, id, format, c.repo)
}

func (c *Core[T, P]) getEither(ctx context.Context, id string) (P, error) {
	entity, err := c.repo.GetActive(ctx, id)
	if err == nil {
		return entity, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, c.Translate(err, "read", id, nil)
	}
	entity, err = c.repo.GetArchived(ctx, id)
	if err != nil {
		return nil, c.Translate(err, "read", id, nil)
	}
	return entity, nil
}

// Translate maps tagged store errors into domain errors using the per-entity
// constraint maps. The in-flight entity, when supplied, provides the field
// and foreign-key values named in the resulting error.
func (c *Core[T, P]) Translate(err error, operation, id string, entity P) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(string(c.table.Kind), id)
	}

	se, ok := repository.AsStoreError(err)
	if !ok {
		return apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
			apperrors.ErrInternal.Message, string(c.table.Kind)+" "+operation+" failed")
	}

	var refs map[string]string
	if c.refs != nil && entity != nil {
		refs = c.refs(entity)
	}

	switch se.Violation {
	case repository.ViolationUnique:
		if field, mapped := c.table.UniqueConstraints[se.Constraint]; mapped {
			return apperrors.Duplicate(string(c.table.Kind), field, refs[field])
		}
		return apperrors.Duplicate(string(c.table.Kind), se.Constraint, "")
	case repository.ViolationForeignKey:
		if target, mapped := c.table.FKConstraints[se.Constraint]; mapped {
			return apperrors.RelatedNotFound(string(target.Entity), refs[target.Attribute], operation)
		}
		return apperrors.RelationshipViolation(string(c.table.Kind), operation)
	case repository.ViolationConnection:
		return apperrors.Wrap(err, apperrors.KindConnection, apperrors.ErrUnavailable.Status,
			apperrors.ErrUnavailable.Message, string(c.table.Kind)+" "+operation+": store unreachable")
	}
	return apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
		apperrors.ErrInternal.Message, string(c.table.Kind)+" "+operation+" failed")
}

// checkReferences verifies every foreign key carried by the in-flight entity
// points at a row still in the active view. The store FK alone cannot tell an
// archived referent from a live one.
func (c *Core[T, P]) checkReferences(ctx context.Context, entity P, operation string) error {
	if c.refs == nil || len(c.table.FKConstraints) == 0 {
		return nil
	}
	refs := c.refs(entity)
	for _, target := range c.table.References() {
		id := refs[target.Attribute]
		if id == "" {
			continue
		}
		parent := registry.MustLookup(target.Entity)
		exists, err := c.deps.ActiveRowExists(ctx, parent.Name, id)
		if err != nil {
			return c.Translate(err, operation, id, nil)
		}
		if !exists {
			return apperrors.RelatedNotFound(string(target.Entity), id, operation)
		}
	}
	return nil
}

// insert stamps attribution and persists a freshly validated entity.
func (c *Core[T, P]) insert(ctx context.Context, entity P, newID string) (P, error) {
	if err := c.checkReferences(ctx, entity, "create"); err != nil {
		return nil, err
	}
	entity.Envelope().MarkCreated(newID, identity.ActorID(ctx), time.Now().UTC())
	if err := c.repo.Create(ctx, entity); err != nil {
		return nil, c.Translate(err, "create", newID, entity)
	}
	return entity, nil
}

// write persists field changes to an already-loaded active entity.
func (c *Core[T, P]) write(ctx context.Context, entity P) (P, error) {
	if err := c.checkReferences(ctx, entity, "update"); err != nil {
		return nil, err
	}
	entity.Envelope().MarkModified(identity.ActorID(ctx), time.Now().UTC())
	if err := c.repo.Update(ctx, entity); err != nil {
		return nil, c.Translate(err, "update", entity.Envelope().ID, entity)
	}
	return entity, nil
}
