package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sims-api/internal/dto"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/pkg/validation"
)

// DepartmentService manages class departments.
type DepartmentService struct {
	*Core[models.Department, *models.Department]
}

// NewDepartmentService constructs the department service.
func NewDepartmentService(repos *Repos, export *ExportService, logger *zap.Logger) *DepartmentService {
	refs := func(d *models.Department) map[string]string {
		return map[string]string{"name": d.Name, "code": d.Code}
	}
	return &DepartmentService{Core: NewCore(repos.Departments, repos.Deps, export, logger, refs)}
}

// Create validates and persists a new department.
func (s *DepartmentService) Create(ctx context.Context, req dto.CreateDepartmentRequest) (*models.Department, error) {
	department := &models.Department{}
	if err := applyDepartment(department, req); err != nil {
		return nil, err
	}
	return s.insert(ctx, department, uuid.NewString())
}

// Update replaces the mutable fields of an active department.
func (s *DepartmentService) Update(ctx context.Context, id string, req dto.UpdateDepartmentRequest) (*models.Department, error) {
	department, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyDepartment(department, req); err != nil {
		return nil, err
	}
	return s.write(ctx, department)
}

func applyDepartment(department *models.Department, req dto.CreateDepartmentRequest) error {
	name, err := validation.Name("name", req.Name)
	if err != nil {
		return err
	}
	description, err := validation.Description("description", req.Description)
	if err != nil {
		return err
	}
	code, err := validation.Code("code", req.Code)
	if err != nil {
		return err
	}
	department.Name = name
	department.Description = description
	department.Code = code
	return nil
}
