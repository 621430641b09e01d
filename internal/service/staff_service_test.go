package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sims-api/internal/dto"
	"github.com/noah-isme/sims-api/internal/models"
	apperrors "github.com/noah-isme/sims-api/pkg/errors"
)

func staffRow(id string, level int) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "created_at", "created_by", "last_modified_at", "last_modified_by",
		"is_archived", "archived_at", "archived_by", "archive_reason", "is_exported",
		"staff_kind", "name", "email", "phone", "role_id", "department_id",
		"access_level", "password_hash", "date_joined",
	}).AddRow(id, now, "actor", now, "actor", false, nil, nil, nil, false,
		"EDUCATOR", "Ngozi Bello", "ngozi@school.ng", "+2348012345678", nil, nil,
		level, "hash", now.AddDate(-2, 0, 0))
}

func validStaffRequest() dto.CreateStaffRequest {
	return dto.CreateStaffRequest{
		StaffKind:   "educator",
		Name:        "ngozi bello",
		Email:       "Ngozi@School.NG",
		Phone:       "+2348012345678",
		AccessLevel: models.AccessLevelStandard,
		Password:    "Kincaid@22",
		DateJoined:  time.Now().UTC().AddDate(-1, 0, 0),
	}
}

func TestStaffCreateHashesPassword(t *testing.T) {
	repos, mock := newMockRepos(t)
	svc := NewStaffService(repos, NewExportService(nil, nil, nil), nil)

	mock.ExpectExec("INSERT INTO staff").WillReturnResult(sqlmock.NewResult(0, 1))

	member, err := svc.Create(actorContext("staff-admin"), validStaffRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StaffKind("EDUCATOR"), member.StaffKind)
	assert.Equal(t, "Ngozi Bello", member.Name)
	assert.Equal(t, "ngozi@school.ng", member.Email)
	assert.NotEqual(t, "Kincaid@22", member.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte("Kincaid@22")))
}

func TestStaffCreateRejectsBadAccessLevel(t *testing.T) {
	repos, _ := newMockRepos(t)
	svc := NewStaffService(repos, NewExportService(nil, nil, nil), nil)

	req := validStaffRequest()
	req.AccessLevel = 9
	_, err := svc.Create(actorContext("staff-admin"), req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidOrder))
}

func TestStaffCreateRejectsUnknownKind(t *testing.T) {
	repos, _ := newMockRepos(t)
	svc := NewStaffService(repos, NewExportService(nil, nil, nil), nil)

	req := validStaffRequest()
	req.StaffKind = "INTERN"
	_, err := svc.Create(actorContext("staff-admin"), req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidCode))
}

func TestChangeAccessLevelWritesAuditRow(t *testing.T) {
	repos, mock := newMockRepos(t)
	svc := NewStaffService(repos, NewExportService(nil, nil, nil), nil)

	mock.ExpectQuery("SELECT .+ FROM staff WHERE id").
		WithArgs("staff-1", false).
		WillReturnRows(staffRow("staff-1", models.AccessLevelStandard))
	mock.ExpectExec("UPDATE staff SET").WillReturnResult(sqlmock.NewResult(0, 1))

	args := append(envelopeArgs(),
		"staff-1", "staff-admin", models.AccessLevelStandard, models.AccessLevelElevated,
		"Promoted to exam officer")
	mock.ExpectExec("INSERT INTO access_level_changes").
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	member, err := svc.ChangeAccessLevel(actorContext("staff-admin"), "staff-1", dto.ChangeAccessLevelRequest{
		NewLevel: models.AccessLevelElevated,
		Reason:   "promoted to exam officer",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AccessLevelElevated, member.AccessLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeAccessLevelRejectsBlankReason(t *testing.T) {
	repos, _ := newMockRepos(t)
	svc := NewStaffService(repos, NewExportService(nil, nil, nil), nil)

	_, err := svc.ChangeAccessLevel(actorContext("staff-admin"), "staff-1", dto.ChangeAccessLevelRequest{
		NewLevel: models.AccessLevelElevated,
		Reason:   "  ",
	})
	assert.Error(t, err)
}
