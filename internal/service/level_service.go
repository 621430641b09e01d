package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sims-api/internal/dto"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/pkg/validation"
)

// LevelService manages academic levels.
type LevelService struct {
	*Core[models.Level, *models.Level]
}

// NewLevelService constructs the level service.
func NewLevelService(repos *Repos, export *ExportService, logger *zap.Logger) *LevelService {
	refs := func(l *models.Level) map[string]string {
		return map[string]string{"name": l.Name}
	}
	return &LevelService{Core: NewCore(repos.Levels, repos.Deps, export, logger, refs)}
}

// Create validates and persists a new level.
func (s *LevelService) Create(ctx context.Context, req dto.CreateLevelRequest) (*models.Level, error) {
	level := &models.Level{}
	if err := applyLevel(level, req); err != nil {
		return nil, err
	}
	return s.insert(ctx, level, uuid.NewString())
}

// Update replaces the mutable fields of an active level.
func (s *LevelService) Update(ctx context.Context, id string, req dto.UpdateLevelRequest) (*models.Level, error) {
	level, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyLevel(level, req); err != nil {
		return nil, err
	}
	return s.write(ctx, level)
}

func applyLevel(level *models.Level, req dto.CreateLevelRequest) error {
	name, err := validation.Name("name", req.Name)
	if err != nil {
		return err
	}
	description, err := validation.Description("description", req.Description)
	if err != nil {
		return err
	}
	order, err := validation.Order("order", req.Order)
	if err != nil {
		return err
	}
	level.Name = name
	level.Description = description
	level.Order = order
	return nil
}
