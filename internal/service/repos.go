package service

import (
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/internal/repository"
)

// Repos bundles the typed lifecycle repositories plus the shared dependency
// store so the services and the export gatherers wire from one place.
type Repos struct {
	Levels             *repository.Lifecycle[models.Level, *models.Level]
	Classes            *repository.Lifecycle[models.Class, *models.Class]
	Departments        *repository.Lifecycle[models.Department, *models.Department]
	StaffRoles         *repository.Lifecycle[models.StaffRole, *models.StaffRole]
	StaffDepartments   *repository.Lifecycle[models.StaffDepartment, *models.StaffDepartment]
	Staff              *repository.Lifecycle[models.Staff, *models.Staff]
	Guardians          *repository.Lifecycle[models.Guardian, *models.Guardian]
	Students           *repository.Lifecycle[models.Student, *models.Student]
	Subjects           *repository.Lifecycle[models.Subject, *models.Subject]
	Grades             *repository.Lifecycle[models.Grade, *models.Grade]
	TotalGrades        *repository.Lifecycle[models.TotalGrade, *models.TotalGrade]
	SubjectEducators   *repository.Lifecycle[models.SubjectEducator, *models.SubjectEducator]
	AccessLevelChanges *repository.Lifecycle[models.AccessLevelChange, *models.AccessLevelChange]

	Deps *repository.DependencyStore
}

// NewRepos builds every lifecycle repository over one connection pool.
func NewRepos(db *sqlx.DB) *Repos {
	return &Repos{
		Levels:             repository.NewLifecycle[models.Level](db),
		Classes:            repository.NewLifecycle[models.Class](db),
		Departments:        repository.NewLifecycle[models.Department](db),
		StaffRoles:         repository.NewLifecycle[models.StaffRole](db),
		StaffDepartments:   repository.NewLifecycle[models.StaffDepartment](db),
		Staff:              repository.NewLifecycle[models.Staff](db),
		Guardians:          repository.NewLifecycle[models.Guardian](db),
		Students:           repository.NewLifecycle[models.Student](db),
		Subjects:           repository.NewLifecycle[models.Subject](db),
		Grades:             repository.NewLifecycle[models.Grade](db),
		TotalGrades:        repository.NewLifecycle[models.TotalGrade](db),
		SubjectEducators:   repository.NewLifecycle[models.SubjectEducator](db),
		AccessLevelChanges: repository.NewLifecycle[models.AccessLevelChange](db),
		Deps:               repository.NewDependencyStore(db),
	}
}
