package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sims-api/internal/registry"
)

// DependencyStore answers cross-table questions the archive guard and delete
// service ask: does an active child exist, how many referents remain, and
// what referential actions the schema declares.
type DependencyStore struct {
	db *sqlx.DB
}

// NewDependencyStore constructs a DependencyStore.
func NewDependencyStore(db *sqlx.DB) *DependencyStore {
	return &DependencyStore{db: db}
}

// ActiveChildExists checks the child's active view for any row referencing id.
func (s *DependencyStore) ActiveChildExists(ctx context.Context, childTable, fkColumn, id string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND is_archived = FALSE)", childTable, fkColumn)
	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, Tag(err)
	}
	return exists, nil
}

// ActiveRowExists checks the table's active view for the row itself. An
// archived row satisfies a store FK but not this check.
func (s *DependencyStore) ActiveRowExists(ctx context.Context, table, id string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1 AND is_archived = FALSE)", table)
	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, Tag(err)
	}
	return exists, nil
}

// ChildExists checks both views of the child table for referents.
func (s *DependencyStore) ChildExists(ctx context.Context, childTable, fkColumn, id string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1)", childTable, fkColumn)
	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, Tag(err)
	}
	return exists, nil
}

// CascadeDelete removes every declared cascade child and finally the parent
// row, all within a single transaction.
func (s *DependencyStore) CascadeDelete(ctx context.Context, table registry.Table, id string, archived bool) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Tag(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, rel := range table.CascadeChildren() {
		childDelete := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", rel.ChildTable, rel.FKColumn)
		if _, err := tx.ExecContext(ctx, childDelete, id); err != nil {
			return Tag(err)
		}
	}

	parentDelete := fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND is_archived = $2", table.Name)
	res, err := tx.ExecContext(ctx, parentDelete, id, archived)
	if err != nil {
		return Tag(err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// FKAction describes one FK constraint referencing a parent table.
type FKAction struct {
	Constraint string `db:"constraint_name"`
	ChildTable string `db:"child_table"`
	DeleteRule string `db:"delete_rule"`
}

// DeleteRuleSetNull is the pg_constraint confdeltype for ON DELETE SET NULL.
const DeleteRuleSetNull = "n"

// ReferencingActions reads the schema's referential-integrity metadata for
// every FK pointing at the given table.
func (s *DependencyStore) ReferencingActions(ctx context.Context, parentTable string) ([]FKAction, error) {
	const query = `SELECT c.conname AS constraint_name, child.relname AS child_table, c.confdeltype AS delete_rule
		FROM pg_constraint c
		JOIN pg_class child ON child.oid = c.conrelid
		JOIN pg_class parent ON parent.oid = c.confrelid
		WHERE c.contype = 'f' AND parent.relname = $1`
	var actions []FKAction
	if err := s.db.SelectContext(ctx, &actions, query, parentTable); err != nil {
		return nil, Tag(err)
	}
	return actions, nil
}
