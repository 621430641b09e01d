package service

import (
	"context"

	apperrors "github.com/noah-isme/sims-api/pkg/errors"

	"github.com/noah-isme/sims-api/internal/registry"
)

type dependencyChecker interface {
	ActiveChildExists(ctx context.Context, childTable, fkColumn, id string) (bool, error)
	ChildExists(ctx context.Context, childTable, fkColumn, id string) (bool, error)
}

// ArchiveGuard decides whether an entity may leave the active view. It walks
// the registry's BLOCK_ARCHIVE relations and collects the display names of
// relations that still have active referents.
type ArchiveGuard struct {
	deps dependencyChecker
}

// NewArchiveGuard constructs an ArchiveGuard.
func NewArchiveGuard(deps dependencyChecker) *ArchiveGuard {
	return &ArchiveGuard{deps: deps}
}

// BlockingDependents returns the display names of relations blocking archive.
// Archive may proceed iff the returned list is empty.
func (g *ArchiveGuard) BlockingDependents(ctx context.Context, table registry.Table, id string) ([]string, error) {
	var blockers []string
	for _, rel := range table.Blocking() {
		exists, err := g.deps.ActiveChildExists(ctx, rel.ChildTable, rel.FKColumn, id)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
				apperrors.ErrInternal.Message, "archive guard check failed for "+rel.ChildTable)
		}
		if exists {
			blockers = append(blockers, rel.DisplayName)
		}
	}
	return blockers, nil
}
