package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sims-api/internal/dto"
	"github.com/noah-isme/sims-api/internal/models"
	apperrors "github.com/noah-isme/sims-api/pkg/errors"
	"github.com/noah-isme/sims-api/pkg/validation"
)

// StudentService manages student enrolment records.
type StudentService struct {
	*Core[models.Student, *models.Student]
}

// NewStudentService constructs the student service.
func NewStudentService(repos *Repos, export *ExportService, logger *zap.Logger) *StudentService {
	refs := func(m *models.Student) map[string]string {
		out := map[string]string{
			"email":          m.Email,
			"student_number": m.StudentNumber,
			"level_id":       m.LevelID,
			"class_id":       m.ClassID,
		}
		if m.GuardianID != nil {
			out["guardian_id"] = *m.GuardianID
		}
		if m.DepartmentID != nil {
			out["department_id"] = *m.DepartmentID
		}
		return out
	}
	return &StudentService{Core: NewCore(repos.Students, repos.Deps, export, logger, refs)}
}

// Create validates, hashes the password and enrols a new student.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	student := &models.Student{}
	if err := applyStudent(student, req); err != nil {
		return nil, err
	}
	password, err := validation.Password("password", req.Password)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
			apperrors.ErrInternal.Message, "hash student password")
	}
	student.PasswordHash = string(hash)
	return s.insert(ctx, student, uuid.NewString())
}

// Update replaces the mutable fields of an active student.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	create := dto.CreateStudentRequest{
		Name:             req.Name,
		Email:            req.Email,
		StudentNumber:    req.StudentNumber,
		GuardianID:       req.GuardianID,
		LevelID:          req.LevelID,
		ClassID:          req.ClassID,
		DepartmentID:     req.DepartmentID,
		DateOfBirth:      req.DateOfBirth,
		SessionStartYear: req.SessionStartYear,
	}
	if err := applyStudent(student, create); err != nil {
		return nil, err
	}
	return s.write(ctx, student)
}

func applyStudent(student *models.Student, req dto.CreateStudentRequest) error {
	name, err := validation.Name("name", req.Name)
	if err != nil {
		return err
	}
	email, err := validation.Email("email", req.Email)
	if err != nil {
		return err
	}
	number := strings.ToUpper(strings.TrimSpace(req.StudentNumber))
	if number == "" {
		return apperrors.Validation(apperrors.KindBlank, "student_number", req.StudentNumber, "student number cannot be blank")
	}
	birth, err := validation.PastDate("date_of_birth", req.DateOfBirth)
	if err != nil {
		return err
	}
	startYear, err := validation.SessionStartYear("session_start_year", req.SessionStartYear)
	if err != nil {
		return err
	}
	student.Name = name
	student.Email = email
	student.StudentNumber = number
	student.GuardianID = req.GuardianID
	student.LevelID = req.LevelID
	student.ClassID = req.ClassID
	student.DepartmentID = req.DepartmentID
	student.DateOfBirth = birth
	student.SessionStartYear = startYear
	return nil
}
