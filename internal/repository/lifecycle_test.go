package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sims-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func levelRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "created_at", "created_by", "last_modified_at", "last_modified_by",
		"is_archived", "archived_at", "archived_by", "archive_reason", "is_exported",
		"name", "description", "rank_order",
	})
}

func addLevelRow(rows *sqlmock.Rows, id, name string, archived bool) *sqlmock.Rows {
	now := time.Now().UTC()
	return rows.AddRow(id, now, "actor", now, "actor", archived, nil, nil, nil, false, name, "Senior classes", 1)
}

func TestLifecycleCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLifecycle[models.Level](db)

	mock.ExpectExec("INSERT INTO levels").WillReturnResult(sqlmock.NewResult(0, 1))

	level := &models.Level{Name: "Senior Secondary", Description: "Senior classes", Order: 1}
	level.MarkCreated("id-1", "actor", time.Now().UTC())

	require.NoError(t, repo.Create(context.Background(), level))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLifecycleCreateTagsUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLifecycle[models.Level](db)

	mock.ExpectExec("INSERT INTO levels").WillReturnError(&pq.Error{
		Code: "23505", Constraint: "levels_name_key", Table: "levels",
	})

	level := &models.Level{Name: "Senior Secondary"}
	level.MarkCreated("id-1", "actor", time.Now().UTC())

	err := repo.Create(context.Background(), level)
	se, ok := AsStoreError(err)
	require.True(t, ok)
	assert.Equal(t, ViolationUnique, se.Violation)
	assert.Equal(t, "levels_name_key", se.Constraint)
}

func TestLifecycleGetActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLifecycle[models.Level](db)

	mock.ExpectQuery("SELECT .+ FROM levels WHERE id = \\$1 AND is_archived = \\$2").
		WithArgs("id-1", false).
		WillReturnRows(addLevelRow(levelRows(), "id-1", "Senior Secondary", false))

	level, err := repo.GetActive(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, "Senior Secondary", level.Name)
	assert.False(t, level.IsArchived)
}

func TestLifecycleGetActiveMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLifecycle[models.Level](db)

	mock.ExpectQuery("SELECT .+ FROM levels").
		WithArgs("missing", false).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetActive(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLifecycleArchive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLifecycle[models.Level](db)

	mock.ExpectExec("UPDATE levels SET is_archived = TRUE").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Archive(context.Background(), "id-1", "actor", models.ArchiveReasonAdministrative, time.Now().UTC())
	assert.NoError(t, err)
}

func TestLifecycleArchiveAlreadyArchived(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLifecycle[models.Level](db)

	mock.ExpectExec("UPDATE levels SET is_archived = TRUE").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Archive(context.Background(), "id-1", "actor", models.ArchiveReasonAdministrative, time.Now().UTC())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLifecycleRestore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLifecycle[models.Level](db)

	mock.ExpectExec("UPDATE levels SET is_archived = FALSE, archived_at = NULL").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Restore(context.Background(), "id-1", "actor", time.Now().UTC()))
}

func TestLifecycleListFiltersAndSearch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLifecycle[models.Level](db)

	mock.ExpectQuery("SELECT .+ FROM levels WHERE is_archived = \\$1 AND name = \\$2 AND \\(LOWER\\(name::text\\) LIKE \\$3 OR LOWER\\(description::text\\) LIKE \\$3\\) ORDER BY rank_order ASC LIMIT 50 OFFSET 0").
		WithArgs(false, "Senior Secondary", "%senior%").
		WillReturnRows(addLevelRow(levelRows(), "id-1", "Senior Secondary", false))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM levels").
		WithArgs(false, "Senior Secondary", "%senior%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.ListActive(context.Background(), models.ListQuery{
		Filters: map[string]string{"name": "Senior Secondary", "bogus": "dropped"},
		Search:  "Senior",
		OrderBy: "rank_order",
		Limit:   50,
	})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)
}

func TestLifecycleListRejectsUnknownOrderColumn(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLifecycle[models.Level](db)

	mock.ExpectQuery("ORDER BY created_at ASC").
		WithArgs(false).
		WillReturnRows(levelRows())
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM levels").
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.ListActive(context.Background(), models.ListQuery{OrderBy: "password_hash; DROP TABLE levels"})
	assert.NoError(t, err)
}

func TestLifecycleUpdateMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLifecycle[models.Level](db)

	mock.ExpectExec("UPDATE levels SET").WillReturnResult(sqlmock.NewResult(0, 0))

	level := &models.Level{Name: "Renamed"}
	level.MarkCreated("id-1", "actor", time.Now().UTC())
	assert.ErrorIs(t, repo.Update(context.Background(), level), sql.ErrNoRows)
}

func TestLifecycleDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLifecycle[models.Level](db)

	mock.ExpectExec("DELETE FROM levels WHERE id = \\$1 AND is_archived = \\$2").
		WithArgs("id-1", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.DeleteActive(context.Background(), "id-1"))
}

func TestLifecycleMarkExported(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLifecycle[models.Level](db)

	mock.ExpectExec("UPDATE levels SET is_exported = TRUE").
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkExported(context.Background(), "id-1"))
}
