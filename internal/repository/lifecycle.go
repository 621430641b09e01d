package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/internal/registry"
)

// Entity constrains the pointer side of a lifecycle model.
type Entity[T any] interface {
	*T
	Envelope() *models.Lifecycle
	Kind() models.EntityKind
}

// Lifecycle is the typed persistence layer for one entity kind. The SQL is
// derived once from the registry declaration; every table shares the same
// active/archived views, filter contract and archive primitives.
type Lifecycle[T any, P Entity[T]] struct {
	db    *sqlx.DB
	table registry.Table

	selectCols string
	insertSQL  string
	updateSQL  string
}

// NewLifecycle builds the repository for P's entity kind.
func NewLifecycle[T any, P Entity[T]](db *sqlx.DB) *Lifecycle[T, P] {
	var zero T
	table := registry.MustLookup(P(&zero).Kind())

	cols := table.AllColumns()
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		placeholders[i] = ":" + col
	}

	sets := make([]string, 0, len(table.Columns)+2)
	for _, col := range table.Columns {
		sets = append(sets, fmt.Sprintf("%s = :%s", col, col))
	}
	sets = append(sets, "last_modified_at = :last_modified_at", "last_modified_by = :last_modified_by")

	return &Lifecycle[T, P]{
		db:         db,
		table:      table,
		selectCols: strings.Join(cols, ", "),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			table.Name, strings.Join(cols, ", "), strings.Join(placeholders, ", ")),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE id = :id AND is_archived = FALSE",
			table.Name, strings.Join(sets, ", ")),
	}
}

// Table exposes the registry declaration backing this repository.
func (r *Lifecycle[T, P]) Table() registry.Table { return r.table }

// Create inserts the entity. Constraint failures come back tagged.
func (r *Lifecycle[T, P]) Create(ctx context.Context, entity P) error {
	if _, err := r.db.NamedExecContext(ctx, r.insertSQL, entity); err != nil {
		return Tag(err)
	}
	return nil
}

// GetActive fetches from the active view.
func (r *Lifecycle[T, P]) GetActive(ctx context.Context, id string) (P, error) {
	return r.get(ctx, id, false)
}

// GetArchived fetches from the archived view.
func (r *Lifecycle[T, P]) GetArchived(ctx context.Context, id string) (P, error) {
	return r.get(ctx, id, true)
}

func (r *Lifecycle[T, P]) get(ctx context.Context, id string, archived bool) (P, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 AND is_archived = $2", r.selectCols, r.table.Name)
	var out T
	if err := r.db.GetContext(ctx, &out, query, id, archived); err != nil {
		return nil, Tag(err)
	}
	return P(&out), nil
}

// ListActive queries the active view with the shared filter contract.
func (r *Lifecycle[T, P]) ListActive(ctx context.Context, q models.ListQuery) ([]T, int, error) {
	return r.list(ctx, q, false)
}

// ListArchived queries the archived view.
func (r *Lifecycle[T, P]) ListArchived(ctx context.Context, q models.ListQuery) ([]T, int, error) {
	return r.list(ctx, q, true)
}

func (r *Lifecycle[T, P]) list(ctx context.Context, q models.ListQuery, archived bool) ([]T, int, error) {
	q.Normalize()

	conditions := []string{"is_archived = $1"}
	args := []interface{}{archived}

	// Deterministic filter order keeps queries reproducible.
	keys := make([]string, 0, len(q.Filters))
	for key := range q.Filters {
		if _, ok := r.table.Filterable[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := q.Filters[key]
		if value == "" {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", r.table.Filterable[key], len(args)+1))
		args = append(args, value)
	}

	if q.Search != "" && len(r.table.Searchable) > 0 {
		idx := len(args) + 1
		ors := make([]string, len(r.table.Searchable))
		for i, col := range r.table.Searchable {
			ors[i] = fmt.Sprintf("LOWER(%s::text) LIKE $%d", col, idx)
		}
		conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
		args = append(args, "%"+strings.ToLower(q.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")
	orderCol := r.table.OrderableColumn(q.OrderBy)
	dir := strings.ToUpper(q.OrderDir)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		r.selectCols, r.table.Name, where, orderCol, dir, q.Limit, q.Offset)

	var out []T
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, Tag(err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", r.table.Name, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, Tag(err)
	}
	return out, total, nil
}

// Update writes the entity through to the active view. Updating an archived
// or missing row reports sql.ErrNoRows.
func (r *Lifecycle[T, P]) Update(ctx context.Context, entity P) error {
	res, err := r.db.NamedExecContext(ctx, r.updateSQL, entity)
	if err != nil {
		return Tag(err)
	}
	return requireRow(res)
}

// Archive flips the entity into the archived view, setting the archive
// triple and modification attribution in one statement.
func (r *Lifecycle[T, P]) Archive(ctx context.Context, id, actor string, reason models.ArchiveReason, now time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET is_archived = TRUE, archived_at = $2, archived_by = $3,
		archive_reason = $4, last_modified_at = $2, last_modified_by = $3
		WHERE id = $1 AND is_archived = FALSE`, r.table.Name)
	res, err := r.db.ExecContext(ctx, query, id, now, actor, reason)
	if err != nil {
		return Tag(err)
	}
	return requireRow(res)
}

// Restore clears the archive triple, moving the entity back to the active view.
func (r *Lifecycle[T, P]) Restore(ctx context.Context, id, actor string, now time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET is_archived = FALSE, archived_at = NULL, archived_by = NULL,
		archive_reason = NULL, last_modified_at = $2, last_modified_by = $3
		WHERE id = $1 AND is_archived = TRUE`, r.table.Name)
	res, err := r.db.ExecContext(ctx, query, id, now, actor)
	if err != nil {
		return Tag(err)
	}
	return requireRow(res)
}

// DeleteActive removes the row permanently from the active view.
func (r *Lifecycle[T, P]) DeleteActive(ctx context.Context, id string) error {
	return r.delete(ctx, id, false)
}

// DeleteArchived removes the row permanently from the archived view.
func (r *Lifecycle[T, P]) DeleteArchived(ctx context.Context, id string) error {
	return r.delete(ctx, id, true)
}

func (r *Lifecycle[T, P]) delete(ctx context.Context, id string, archived bool) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND is_archived = $2", r.table.Name)
	res, err := r.db.ExecContext(ctx, query, id, archived)
	if err != nil {
		return Tag(err)
	}
	return requireRow(res)
}

// MarkExported records that the export hook rendered this entity.
func (r *Lifecycle[T, P]) MarkExported(ctx context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET is_exported = TRUE WHERE id = $1", r.table.Name)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return Tag(err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
