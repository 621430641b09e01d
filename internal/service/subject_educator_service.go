package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sims-api/internal/dto"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/pkg/validation"
)

// SubjectEducatorService manages educator-to-subject assignments.
type SubjectEducatorService struct {
	*Core[models.SubjectEducator, *models.SubjectEducator]
}

// NewSubjectEducatorService constructs the assignment service.
func NewSubjectEducatorService(repos *Repos, export *ExportService, logger *zap.Logger) *SubjectEducatorService {
	refs := func(a *models.SubjectEducator) map[string]string {
		out := map[string]string{"subject_id": a.SubjectID, "level_id": a.LevelID}
		if a.EducatorID != nil {
			out["educator_id"] = *a.EducatorID
		}
		return out
	}
	return &SubjectEducatorService{Core: NewCore(repos.SubjectEducators, repos.Deps, export, logger, refs)}
}

// Create validates and persists a new assignment.
func (s *SubjectEducatorService) Create(ctx context.Context, req dto.CreateSubjectEducatorRequest) (*models.SubjectEducator, error) {
	assignment := &models.SubjectEducator{}
	if err := applyAssignment(assignment, req); err != nil {
		return nil, err
	}
	return s.insert(ctx, assignment, uuid.NewString())
}

// Update replaces the fields of an active assignment.
func (s *SubjectEducatorService) Update(ctx context.Context, id string, req dto.UpdateSubjectEducatorRequest) (*models.SubjectEducator, error) {
	assignment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyAssignment(assignment, req); err != nil {
		return nil, err
	}
	return s.write(ctx, assignment)
}

func applyAssignment(assignment *models.SubjectEducator, req dto.CreateSubjectEducatorRequest) error {
	term, err := parseTerm(req.Term)
	if err != nil {
		return err
	}
	session, err := validation.Session("session", req.Session)
	if err != nil {
		return err
	}
	educatorID := req.EducatorID
	assignment.SubjectID = req.SubjectID
	assignment.EducatorID = &educatorID
	assignment.LevelID = req.LevelID
	assignment.Session = session
	assignment.Term = term
	return nil
}

// AccessLevelChangeService exposes the RBAC audit trail read-only; rows are
// written by the staff service when a level changes.
type AccessLevelChangeService struct {
	*Core[models.AccessLevelChange, *models.AccessLevelChange]
}

// NewAccessLevelChangeService constructs the audit trail service.
func NewAccessLevelChangeService(repos *Repos, export *ExportService, logger *zap.Logger) *AccessLevelChangeService {
	refs := func(c *models.AccessLevelChange) map[string]string {
		out := map[string]string{}
		if c.StaffID != nil {
			out["staff_id"] = *c.StaffID
		}
		if c.ChangedByID != nil {
			out["changed_by_id"] = *c.ChangedByID
		}
		return out
	}
	return &AccessLevelChangeService{Core: NewCore(repos.AccessLevelChanges, repos.Deps, export, logger, refs)}
}
