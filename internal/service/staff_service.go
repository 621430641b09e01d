package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sims-api/internal/dto"
	"github.com/noah-isme/sims-api/internal/identity"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/internal/repository"
	apperrors "github.com/noah-isme/sims-api/pkg/errors"
	"github.com/noah-isme/sims-api/pkg/validation"
)

// StaffService manages staff members and their audited access levels.
type StaffService struct {
	*Core[models.Staff, *models.Staff]
	changes *repository.Lifecycle[models.AccessLevelChange, *models.AccessLevelChange]
	logger  *zap.Logger
}

// NewStaffService constructs the staff service.
func NewStaffService(repos *Repos, export *ExportService, logger *zap.Logger) *StaffService {
	if logger == nil {
		logger = zap.NewNop()
	}
	refs := func(m *models.Staff) map[string]string {
		out := map[string]string{"email": m.Email}
		if m.RoleID != nil {
			out["role_id"] = *m.RoleID
		}
		if m.DepartmentID != nil {
			out["department_id"] = *m.DepartmentID
		}
		return out
	}
	return &StaffService{
		Core:    NewCore(repos.Staff, repos.Deps, export, logger, refs),
		changes: repos.AccessLevelChanges,
		logger:  logger,
	}
}

// Create validates, hashes the password and persists a new staff member.
func (s *StaffService) Create(ctx context.Context, req dto.CreateStaffRequest) (*models.Staff, error) {
	member := &models.Staff{}
	if err := applyStaff(member, req.StaffKind, req.Name, req.Email, req.Phone, req.RoleID, req.DepartmentID, req.DateJoined); err != nil {
		return nil, err
	}
	if !models.ValidAccessLevel(req.AccessLevel) {
		return nil, apperrors.Validation(apperrors.KindInvalidOrder, "access_level", strconv.Itoa(req.AccessLevel),
			"access level must be between 1 and 4")
	}
	password, err := validation.Password("password", req.Password)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
			apperrors.ErrInternal.Message, "hash staff password")
	}
	member.AccessLevel = req.AccessLevel
	member.PasswordHash = string(hash)
	return s.insert(ctx, member, uuid.NewString())
}

// Update replaces the mutable fields of an active staff member. The access
// level and password are excluded; both mutate through dedicated paths.
func (s *StaffService) Update(ctx context.Context, id string, req dto.UpdateStaffRequest) (*models.Staff, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyStaff(member, req.StaffKind, req.Name, req.Email, req.Phone, req.RoleID, req.DepartmentID, req.DateJoined); err != nil {
		return nil, err
	}
	return s.write(ctx, member)
}

// ChangeAccessLevel mutates the access level and records an audit row naming
// the subject, the actor and both levels.
func (s *StaffService) ChangeAccessLevel(ctx context.Context, id string, req dto.ChangeAccessLevelRequest) (*models.Staff, error) {
	if !models.ValidAccessLevel(req.NewLevel) {
		return nil, apperrors.Validation(apperrors.KindInvalidOrder, "new_level", strconv.Itoa(req.NewLevel),
			"access level must be between 1 and 4")
	}
	reason, err := validation.Description("reason", req.Reason)
	if err != nil {
		return nil, err
	}

	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := member.AccessLevel
	member.AccessLevel = req.NewLevel
	member, err = s.write(ctx, member)
	if err != nil {
		return nil, err
	}

	actor := identity.ActorID(ctx)
	change := &models.AccessLevelChange{
		StaffID:       &member.ID,
		ChangedByID:   &actor,
		PreviousLevel: previous,
		NewLevel:      req.NewLevel,
		Reason:        reason,
	}
	change.MarkCreated(uuid.NewString(), actor, member.LastModifiedAt)
	if err := s.changes.Create(ctx, change); err != nil {
		s.logger.Error("access level audit write failed",
			zap.String("staff_id", member.ID), zap.Error(err))
		return nil, s.Translate(err, "record access level change", member.ID, nil)
	}

	s.logger.Info("access level changed",
		zap.String("staff_id", member.ID),
		zap.Int("previous_level", previous),
		zap.Int("new_level", req.NewLevel),
	)
	return member, nil
}

func applyStaff(member *models.Staff, kind, rawName, rawEmail, rawPhone string, roleID, departmentID *string, dateJoined time.Time) error {
	staffKind := models.StaffKind(strings.ToUpper(strings.TrimSpace(kind)))
	if !staffKind.Valid() {
		return apperrors.Validation(apperrors.KindInvalidCode, "staff_kind", kind,
			"staff kind must be EDUCATOR, ADMIN, SUPPORT or SYSTEM")
	}
	name, err := validation.Name("name", rawName)
	if err != nil {
		return err
	}
	email, err := validation.Email("email", rawEmail)
	if err != nil {
		return err
	}
	phone, err := validation.Phone("phone", rawPhone)
	if err != nil {
		return err
	}
	joined, err := validation.PastDate("date_joined", dateJoined)
	if err != nil {
		return err
	}
	member.StaffKind = staffKind
	member.Name = name
	member.Email = email
	member.Phone = phone
	member.RoleID = roleID
	member.DepartmentID = departmentID
	member.DateJoined = joined
	return nil
}
