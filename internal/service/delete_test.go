package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/pkg/export"
	apperrors "github.com/noah-isme/sims-api/pkg/errors"
	"github.com/noah-isme/sims-api/pkg/storage"
)

func newStagedExport(t *testing.T) (*ExportService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	return NewExportService(store, nil, nil), dir
}

func stubGatherer(title string) Gatherer {
	return func(ctx context.Context, id string) (export.Dataset, error) {
		return export.Dataset{
			Title:   title,
			Headers: []string{"ID"},
			Rows:    []map[string]string{{"ID": id}},
		}, nil
	}
}

func roleRow(id, name string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "created_at", "created_by", "last_modified_at", "last_modified_by",
		"is_archived", "archived_at", "archived_by", "archive_reason", "is_exported",
		"name", "description",
	}).AddRow(id, now, "actor", now, "actor", false, nil, nil, nil, false, name, "Keeps the grounds tidy")
}

func departmentRow(id, name string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "created_at", "created_by", "last_modified_at", "last_modified_by",
		"is_archived", "archived_at", "archived_by", "archive_reason", "is_exported",
		"name", "description", "code",
	}).AddRow(id, now, "actor", now, "actor", false, nil, nil, nil, false, name, "Applied sciences", "SCI")
}

func studentRow(id, name string) *sqlmock.Rows {
	now := time.Now().UTC()
	dob := now.AddDate(-12, 0, 0)
	return sqlmock.NewRows([]string{
		"id", "created_at", "created_by", "last_modified_at", "last_modified_by",
		"is_archived", "archived_at", "archived_by", "archive_reason", "is_exported",
		"name", "email", "student_number", "guardian_id", "level_id", "class_id",
		"department_id", "date_of_birth", "session_start_year", "password_hash",
	}).AddRow(id, now, "actor", now, "actor", false, nil, nil, nil, false,
		name, "ada@school.ng", "STU-001", nil, "level-1", "class-1", nil, dob, 2025, "hash")
}

func TestSafeDeleteBlockedByReferents(t *testing.T) {
	repos, mock := newMockRepos(t)
	svc := NewStaffRoleService(repos, NewExportService(nil, nil, nil), nil)

	mock.ExpectQuery("SELECT .+ FROM staff_roles WHERE id").
		WithArgs("role-1", false).
		WillReturnRows(roleRow("role-1", "Janitor"))
	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM staff WHERE role_id").
		WithArgs("role-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := svc.Delete(context.Background(), "role-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindEntityInUse))
	assert.Contains(t, err.(*apperrors.Error).Message, "staff members")
}

func TestSafeDeleteRemovesUnreferencedRow(t *testing.T) {
	repos, mock := newMockRepos(t)
	svc := NewStaffRoleService(repos, NewExportService(nil, nil, nil), nil)

	mock.ExpectQuery("SELECT .+ FROM staff_roles WHERE id").
		WithArgs("role-1", false).
		WillReturnRows(roleRow("role-1", "Janitor"))
	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM staff WHERE role_id").
		WithArgs("role-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("DELETE FROM staff_roles WHERE id = \\$1 AND is_archived = \\$2").
		WithArgs("role-1", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Delete(context.Background(), "role-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffSafeDeleteBlockedByGrades(t *testing.T) {
	repos, mock := newMockRepos(t)
	svc := NewStaffService(repos, NewExportService(nil, nil, nil), nil)

	mock.ExpectQuery("SELECT .+ FROM staff WHERE id").
		WithArgs("staff-1", false).
		WillReturnRows(staffRow("staff-1", models.AccessLevelStandard))
	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM subject_educators WHERE educator_id").
		WithArgs("staff-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM access_level_changes WHERE staff_id").
		WithArgs("staff-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM grades WHERE educator_id").
		WithArgs("staff-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := svc.Delete(context.Background(), "staff-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindEntityInUse))
	assert.Contains(t, err.(*apperrors.Error).Message, "grades")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSafeDeleteMissingRowReportsNotFound(t *testing.T) {
	repos, mock := newMockRepos(t)
	svc := NewStaffRoleService(repos, NewExportService(nil, nil, nil), nil)

	mock.ExpectQuery("SELECT .+ FROM staff_roles WHERE id").
		WithArgs("missing", false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := svc.Delete(context.Background(), "missing")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCascadeDeleteRequiresDeclaredRelations(t *testing.T) {
	repos, _ := newMockRepos(t)
	svc := NewLevelService(repos, NewExportService(nil, nil, nil), nil)

	err := svc.CascadeDelete(context.Background(), "level-1", FormatPDF)
	assert.True(t, apperrors.IsKind(err, apperrors.KindCascadeDeletion))
}

func TestCascadeDeleteExportsThenRemovesChildren(t *testing.T) {
	repos, mock := newMockRepos(t)
	exportSvc, dir := newStagedExport(t)
	exportSvc.Register(models.KindStudent, stubGatherer("Student"))
	svc := NewStudentService(repos, exportSvc, nil)

	mock.ExpectQuery("SELECT .+ FROM students WHERE id").
		WithArgs("stu-1", false).
		WillReturnRows(studentRow("stu-1", "Ada Obi"))
	mock.ExpectExec("UPDATE students SET is_exported = TRUE").
		WithArgs("stu-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM grades WHERE student_id = \\$1").
		WithArgs("stu-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM total_grades WHERE student_id = \\$1").
		WithArgs("stu-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM students WHERE id = \\$1 AND is_archived = \\$2").
		WithArgs("stu-1", false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.CascadeDelete(context.Background(), "stu-1", FormatCSV))
	assert.NoError(t, mock.ExpectationsWereMet())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".csv", filepath.Ext(entries[0].Name()))
}

func TestCascadeDeleteAbortsWhenExportFails(t *testing.T) {
	repos, mock := newMockRepos(t)
	exportSvc, dir := newStagedExport(t)
	svc := NewStudentService(repos, exportSvc, nil)

	mock.ExpectQuery("SELECT .+ FROM students WHERE id").
		WithArgs("stu-1", false).
		WillReturnRows(studentRow("stu-1", "Ada Obi"))

	err := svc.CascadeDelete(context.Background(), "stu-1", FormatPDF)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindCascadeDeletion))

	// Nothing staged, nothing deleted.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNullifyDeleteRejectsMisconfiguredFK(t *testing.T) {
	repos, mock := newMockRepos(t)
	svc := NewDepartmentService(repos, NewExportService(nil, nil, nil), nil)

	mock.ExpectQuery("SELECT .+ FROM departments WHERE id").
		WithArgs("dept-1", false).
		WillReturnRows(departmentRow("dept-1", "Science"))
	mock.ExpectQuery("FROM pg_constraint").
		WithArgs("departments").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name", "child_table", "delete_rule"}).
			AddRow("students_department_id_fkey", "students", "a"))

	err := svc.NullifyDelete(context.Background(), "dept-1", FormatPDF)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNullFKMisconfigured))
}

func TestNullifyDeleteExportsThenDeletes(t *testing.T) {
	repos, mock := newMockRepos(t)
	exportSvc, dir := newStagedExport(t)
	exportSvc.Register(models.KindDepartment, stubGatherer("Department"))
	svc := NewDepartmentService(repos, exportSvc, nil)

	mock.ExpectQuery("SELECT .+ FROM departments WHERE id").
		WithArgs("dept-1", false).
		WillReturnRows(departmentRow("dept-1", "Science"))
	mock.ExpectQuery("FROM pg_constraint").
		WithArgs("departments").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name", "child_table", "delete_rule"}).
			AddRow("students_department_id_fkey", "students", "n"))
	mock.ExpectExec("UPDATE departments SET is_exported = TRUE").
		WithArgs("dept-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM departments WHERE id = \\$1 AND is_archived = \\$2").
		WithArgs("dept-1", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.NullifyDelete(context.Background(), "dept-1", FormatPDF))
	assert.NoError(t, mock.ExpectationsWereMet())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
