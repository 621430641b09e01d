package service

// Staff roles and staff departments share the same two-field shape; both
// services reuse one validation helper.

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sims-api/internal/dto"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/pkg/validation"
)

// StaffRoleService manages staff roles.
type StaffRoleService struct {
	*Core[models.StaffRole, *models.StaffRole]
}

// NewStaffRoleService constructs the staff role service.
func NewStaffRoleService(repos *Repos, export *ExportService, logger *zap.Logger) *StaffRoleService {
	refs := func(r *models.StaffRole) map[string]string {
		return map[string]string{"name": r.Name}
	}
	return &StaffRoleService{Core: NewCore(repos.StaffRoles, repos.Deps, export, logger, refs)}
}

// Create validates and persists a new staff role.
func (s *StaffRoleService) Create(ctx context.Context, req dto.CreateStaffRoleRequest) (*models.StaffRole, error) {
	name, description, err := validateNamed(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	role := &models.StaffRole{Name: name, Description: description}
	return s.insert(ctx, role, uuid.NewString())
}

// Update replaces the mutable fields of an active staff role.
func (s *StaffRoleService) Update(ctx context.Context, id string, req dto.UpdateStaffRoleRequest) (*models.StaffRole, error) {
	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	role.Name, role.Description, err = validateNamed(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	return s.write(ctx, role)
}

// StaffDepartmentService manages organisational staff departments.
type StaffDepartmentService struct {
	*Core[models.StaffDepartment, *models.StaffDepartment]
}

// NewStaffDepartmentService constructs the staff department service.
func NewStaffDepartmentService(repos *Repos, export *ExportService, logger *zap.Logger) *StaffDepartmentService {
	refs := func(d *models.StaffDepartment) map[string]string {
		return map[string]string{"name": d.Name}
	}
	return &StaffDepartmentService{Core: NewCore(repos.StaffDepartments, repos.Deps, export, logger, refs)}
}

// Create validates and persists a new staff department.
func (s *StaffDepartmentService) Create(ctx context.Context, req dto.CreateStaffDepartmentRequest) (*models.StaffDepartment, error) {
	name, description, err := validateNamed(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	department := &models.StaffDepartment{Name: name, Description: description}
	return s.insert(ctx, department, uuid.NewString())
}

// Update replaces the mutable fields of an active staff department.
func (s *StaffDepartmentService) Update(ctx context.Context, id string, req dto.UpdateStaffDepartmentRequest) (*models.StaffDepartment, error) {
	department, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	department.Name, department.Description, err = validateNamed(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	return s.write(ctx, department)
}

func validateNamed(rawName, rawDescription string) (string, string, error) {
	name, err := validation.Name("name", rawName)
	if err != nil {
		return "", "", err
	}
	description, err := validation.Description("description", rawDescription)
	if err != nil {
		return "", "", err
	}
	return name, description, nil
}
