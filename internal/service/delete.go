package service

// Delete strategies for the lifecycle core. Safe delete is the default on
// every DELETE route; cascade and nullify are explicit sub-routes for kinds
// whose registry declares those policies, and both require the export hook
// to have rendered the entity first.

import (
	"context"

	"go.uber.org/zap"

	apperrors "github.com/noah-isme/sims-api/pkg/errors"

	"github.com/noah-isme/sims-api/internal/repository"
)

// Delete hard-deletes from the active view, refusing while any referent
// exists in any declared relation.
func (c *Core[T, P]) Delete(ctx context.Context, id string) error {
	return c.safeDelete(ctx, id, false)
}

// DeleteArchived hard-deletes from the archived view under the same rule.
func (c *Core[T, P]) DeleteArchived(ctx context.Context, id string) error {
	return c.safeDelete(ctx, id, true)
}

func (c *Core[T, P]) safeDelete(ctx context.Context, id string, archived bool) error {
	if archived {
		if _, err := c.GetArchived(ctx, id); err != nil {
			return err
		}
	} else {
		if _, err := c.Get(ctx, id); err != nil {
			return err
		}
	}

	var dependents []string
	for _, rel := range c.table.Relations {
		exists, err := c.deps.ChildExists(ctx, rel.ChildTable, rel.FKColumn, id)
		if err != nil {
			return apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
				apperrors.ErrInternal.Message, "dependency check failed for "+rel.ChildTable)
		}
		if exists {
			dependents = append(dependents, rel.DisplayName)
		}
	}
	if len(dependents) > 0 {
		return apperrors.InUse(string(c.table.Kind), dependents)
	}

	var err error
	if archived {
		err = c.repo.DeleteArchived(ctx, id)
	} else {
		err = c.repo.DeleteActive(ctx, id)
	}
	if err != nil {
		return c.Translate(err, "delete", id, nil)
	}

	c.logger.Info("entity deleted",
		zap.String("entity", string(c.table.Kind)),
		zap.String("id", id),
		zap.Bool("archived_view", archived),
	)
	return nil
}

// CascadeDelete renders the entity and its cascade children through the
// export hook, then removes the children and the parent inside one
// transaction. Export failure aborts the deletion.
func (c *Core[T, P]) CascadeDelete(ctx context.Context, id string, format ExportFormat) error {
	if len(c.table.CascadeChildren()) == 0 {
		return apperrors.CascadeDeletion(string(c.table.Kind) + " declares no cascade relations")
	}

	entity, err := c.getEither(ctx, id)
	if err != nil {
		return err
	}

	if _, err := c.export.Export(ctx, c.table.Kind, id, format, c.repo); err != nil {
		return apperrors.CascadeDeletion("export before deletion failed: " + err.Error())
	}

	archived := entity.Envelope().IsArchived
	if err := c.deps.CascadeDelete(ctx, c.table, id, archived); err != nil {
		return c.Translate(err, "cascade delete", id, nil)
	}

	c.logger.Info("entity cascade deleted",
		zap.String("entity", string(c.table.Kind)),
		zap.String("id", id),
	)
	return nil
}

// NullifyDelete verifies every FK referencing this table is declared SET
// NULL, exports the entity, then deletes it and lets the store nullify the
// referents.
func (c *Core[T, P]) NullifyDelete(ctx context.Context, id string, format ExportFormat) error {
	if len(c.table.NullifyChildren()) == 0 {
		return apperrors.CascadeDeletion(string(c.table.Kind) + " declares no nullify relations")
	}

	entity, err := c.getEither(ctx, id)
	if err != nil {
		return err
	}

	actions, err := c.deps.ReferencingActions(ctx, c.table.Name)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
			apperrors.ErrInternal.Message, "read fk metadata for "+c.table.Name)
	}
	for _, action := range actions {
		if action.DeleteRule != repository.DeleteRuleSetNull {
			return apperrors.NullFKMisconfigured(action.Constraint, string(c.table.Kind))
		}
	}

	if _, err := c.export.Export(ctx, c.table.Kind, id, format, c.repo); err != nil {
		return apperrors.CascadeDeletion("export before deletion failed: " + err.Error())
	}

	if entity.Envelope().IsArchived {
		err = c.repo.DeleteArchived(ctx, id)
	} else {
		err = c.repo.DeleteActive(ctx, id)
	}
	if err != nil {
		return c.Translate(err, "nullify delete", id, nil)
	}

	c.logger.Info("entity nullify deleted",
		zap.String("entity", string(c.table.Kind)),
		zap.String("id", id),
	)
	return nil
}
