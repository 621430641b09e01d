package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sims-api/internal/dto"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/pkg/validation"
)

// ClassService manages classes within levels.
type ClassService struct {
	*Core[models.Class, *models.Class]
}

// NewClassService constructs the class service.
func NewClassService(repos *Repos, export *ExportService, logger *zap.Logger) *ClassService {
	refs := func(c *models.Class) map[string]string {
		return map[string]string{"code": c.Code, "level_id": c.LevelID}
	}
	return &ClassService{Core: NewCore(repos.Classes, repos.Deps, export, logger, refs)}
}

// Create validates and persists a new class.
func (s *ClassService) Create(ctx context.Context, req dto.CreateClassRequest) (*models.Class, error) {
	class := &models.Class{}
	if err := applyClass(class, req); err != nil {
		return nil, err
	}
	return s.insert(ctx, class, uuid.NewString())
}

// Update replaces the mutable fields of an active class.
func (s *ClassService) Update(ctx context.Context, id string, req dto.UpdateClassRequest) (*models.Class, error) {
	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyClass(class, req); err != nil {
		return nil, err
	}
	return s.write(ctx, class)
}

func applyClass(class *models.Class, req dto.CreateClassRequest) error {
	code, err := validation.Code("code", req.Code)
	if err != nil {
		return err
	}
	order, err := validation.Order("order", req.Order)
	if err != nil {
		return err
	}
	class.Code = code
	class.LevelID = req.LevelID
	class.Order = order
	return nil
}
