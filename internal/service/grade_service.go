package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sims-api/internal/dto"
	"github.com/noah-isme/sims-api/internal/identity"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/internal/repository"
	apperrors "github.com/noah-isme/sims-api/pkg/errors"
	"github.com/noah-isme/sims-api/pkg/validation"
)

// GradeService manages weighted scores and keeps the derived totals in step:
// every grade write or delete recomputes the total for the grade's
// (student, subject, session, term) group.
type GradeService struct {
	*Core[models.Grade, *models.Grade]
	grades *repository.Lifecycle[models.Grade, *models.Grade]
	totals *repository.Lifecycle[models.TotalGrade, *models.TotalGrade]
	logger *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(repos *Repos, export *ExportService, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	refs := func(g *models.Grade) map[string]string {
		out := map[string]string{"student_id": g.StudentID, "subject_id": g.SubjectID}
		if g.EducatorID != nil {
			out["educator_id"] = *g.EducatorID
		}
		return out
	}
	return &GradeService{
		Core:   NewCore(repos.Grades, repos.Deps, export, logger, refs),
		grades: repos.Grades,
		totals: repos.TotalGrades,
		logger: logger,
	}
}

// Create validates and records a new grade, then recomputes its group total.
func (s *GradeService) Create(ctx context.Context, req dto.CreateGradeRequest) (*models.Grade, error) {
	term, err := parseTerm(req.Term)
	if err != nil {
		return nil, err
	}
	session, err := validation.Session("session", req.Session)
	if err != nil {
		return nil, err
	}
	score, weight, err := validateScore(req.Score, req.Weight)
	if err != nil {
		return nil, err
	}

	grade := &models.Grade{
		StudentID:  req.StudentID,
		SubjectID:  req.SubjectID,
		EducatorID: req.EducatorID,
		Score:      score,
		Weight:     weight,
		Term:       term,
		Session:    session,
	}
	grade, err = s.insert(ctx, grade, uuid.NewString())
	if err != nil {
		return nil, err
	}
	if err := s.recomputeTotal(ctx, grade.StudentID, grade.SubjectID, grade.Session, grade.Term); err != nil {
		return nil, err
	}
	return grade, nil
}

// Update rescores an existing grade in place and recomputes its group total.
// The pairing and period stay fixed; moving a score means delete and re-enter.
func (s *GradeService) Update(ctx context.Context, id string, req dto.UpdateGradeRequest) (*models.Grade, error) {
	score, weight, err := validateScore(req.Score, req.Weight)
	if err != nil {
		return nil, err
	}

	grade, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	grade.EducatorID = req.EducatorID
	grade.Score = score
	grade.Weight = weight
	grade, err = s.write(ctx, grade)
	if err != nil {
		return nil, err
	}
	if err := s.recomputeTotal(ctx, grade.StudentID, grade.SubjectID, grade.Session, grade.Term); err != nil {
		return nil, err
	}
	return grade, nil
}

// Delete removes a grade and recomputes the group total it contributed to.
func (s *GradeService) Delete(ctx context.Context, id string) error {
	grade, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Core.Delete(ctx, id); err != nil {
		return err
	}
	return s.recomputeTotal(ctx, grade.StudentID, grade.SubjectID, grade.Session, grade.Term)
}

// Archive shelves a grade and recomputes the total its score leaves behind.
// The total tracks active grades only, so moving a grade between views must
// rebuild the group the same way a write does.
func (s *GradeService) Archive(ctx context.Context, id string, reason models.ArchiveReason) (*models.Grade, error) {
	grade, err := s.Core.Archive(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	if err := s.recomputeTotal(ctx, grade.StudentID, grade.SubjectID, grade.Session, grade.Term); err != nil {
		return nil, err
	}
	return grade, nil
}

// Restore returns a grade to the active view and folds its score back into
// the group total.
func (s *GradeService) Restore(ctx context.Context, id string) (*models.Grade, error) {
	grade, err := s.Core.Restore(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.recomputeTotal(ctx, grade.StudentID, grade.SubjectID, grade.Session, grade.Term); err != nil {
		return nil, err
	}
	return grade, nil
}

// DeleteArchived removes an archived grade and rebuilds its group total,
// covering totals left stale before the grade was shelved.
func (s *GradeService) DeleteArchived(ctx context.Context, id string) error {
	grade, err := s.GetArchived(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Core.DeleteArchived(ctx, id); err != nil {
		return err
	}
	return s.recomputeTotal(ctx, grade.StudentID, grade.SubjectID, grade.Session, grade.Term)
}

// recomputeTotal rebuilds the derived total from the active grades of one
// (student, subject, session, term) group. An empty group removes the total.
func (s *GradeService) recomputeTotal(ctx context.Context, studentID, subjectID, session string, term models.Term) error {
	query := models.ListQuery{
		Filters: map[string]string{
			"student_id": studentID,
			"subject_id": subjectID,
			"session":    session,
			"term":       string(term),
		},
		Limit: models.MaxLimit,
	}
	grades, _, err := s.grades.ListActive(ctx, query)
	if err != nil {
		return s.Translate(err, "recompute total", studentID, nil)
	}

	existing, _, err := s.totals.ListActive(ctx, query)
	if err != nil {
		return s.Translate(err, "recompute total", studentID, nil)
	}

	if len(grades) == 0 {
		if len(existing) > 0 {
			if err := s.totals.DeleteActive(ctx, existing[0].ID); err != nil {
				return s.Translate(err, "recompute total", existing[0].ID, nil)
			}
		}
		return nil
	}

	var weighted float64
	var weights int
	for _, g := range grades {
		weighted += g.Score * float64(g.Weight)
		weights += g.Weight
	}
	total := weighted / float64(weights)

	actor := identity.ActorID(ctx)
	now := time.Now().UTC()
	if len(existing) > 0 {
		current := existing[0]
		current.Total = total
		current.MarkModified(actor, now)
		if err := s.totals.Update(ctx, &current); err != nil {
			return s.Translate(err, "recompute total", current.ID, nil)
		}
		return nil
	}

	fresh := &models.TotalGrade{
		StudentID: studentID,
		SubjectID: subjectID,
		Total:     total,
		Term:      term,
		Session:   session,
	}
	fresh.MarkCreated(uuid.NewString(), actor, now)
	if err := s.totals.Create(ctx, fresh); err != nil {
		return s.Translate(err, "recompute total", fresh.ID, nil)
	}
	s.logger.Debug("total grade recomputed",
		zap.String("student_id", studentID),
		zap.String("subject_id", subjectID),
		zap.String("session", session),
		zap.String("term", string(term)),
	)
	return nil
}

func validateScore(rawScore float64, rawWeight int) (float64, int, error) {
	score, err := validation.Score("score", rawScore)
	if err != nil {
		return 0, 0, err
	}
	weight, err := validation.Order("weight", rawWeight)
	if err != nil {
		return 0, 0, err
	}
	return score, weight, nil
}

func parseTerm(raw string) (models.Term, error) {
	term := models.Term(strings.ToUpper(strings.TrimSpace(raw)))
	if !term.Valid() {
		return "", apperrors.Validation(apperrors.KindInvalidCode, "term", raw, "term must be FIRST, SECOND or THIRD")
	}
	return term, nil
}

// TotalGradeService exposes the derived totals read-only; writes happen only
// through grade recomputation.
type TotalGradeService struct {
	*Core[models.TotalGrade, *models.TotalGrade]
}

// NewTotalGradeService constructs the total grade service.
func NewTotalGradeService(repos *Repos, export *ExportService, logger *zap.Logger) *TotalGradeService {
	refs := func(t *models.TotalGrade) map[string]string {
		return map[string]string{"student_id": t.StudentID, "subject_id": t.SubjectID}
	}
	return &TotalGradeService{Core: NewCore(repos.TotalGrades, repos.Deps, export, logger, refs)}
}
