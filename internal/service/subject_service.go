package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sims-api/internal/dto"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/pkg/validation"
)

// SubjectService manages subjects.
type SubjectService struct {
	*Core[models.Subject, *models.Subject]
}

// NewSubjectService constructs the subject service.
func NewSubjectService(repos *Repos, export *ExportService, logger *zap.Logger) *SubjectService {
	refs := func(m *models.Subject) map[string]string {
		return map[string]string{"code": m.Code, "level_id": m.LevelID}
	}
	return &SubjectService{Core: NewCore(repos.Subjects, repos.Deps, export, logger, refs)}
}

// Create validates and persists a new subject.
func (s *SubjectService) Create(ctx context.Context, req dto.CreateSubjectRequest) (*models.Subject, error) {
	subject := &models.Subject{}
	if err := applySubject(subject, req); err != nil {
		return nil, err
	}
	return s.insert(ctx, subject, uuid.NewString())
}

// Update replaces the mutable fields of an active subject.
func (s *SubjectService) Update(ctx context.Context, id string, req dto.UpdateSubjectRequest) (*models.Subject, error) {
	subject, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applySubject(subject, req); err != nil {
		return nil, err
	}
	return s.write(ctx, subject)
}

func applySubject(subject *models.Subject, req dto.CreateSubjectRequest) error {
	name, err := validation.Name("name", req.Name)
	if err != nil {
		return err
	}
	code, err := validation.Code("code", req.Code)
	if err != nil {
		return err
	}
	subject.Name = name
	subject.Code = code
	subject.LevelID = req.LevelID
	return nil
}
