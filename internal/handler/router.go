package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/noah-isme/sims-api/internal/dto"
	"github.com/noah-isme/sims-api/internal/middleware"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/internal/service"
	"github.com/noah-isme/sims-api/pkg/config"
	"github.com/noah-isme/sims-api/pkg/logger"
	"github.com/noah-isme/sims-api/pkg/middleware/cors"
	"github.com/noah-isme/sims-api/pkg/middleware/requestid"
	"github.com/noah-isme/sims-api/pkg/response"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth               *service.AuthService
	Levels             *service.LevelService
	Classes            *service.ClassService
	Departments        *service.DepartmentService
	StaffRoles         *service.StaffRoleService
	StaffDepartments   *service.StaffDepartmentService
	Staff              *service.StaffService
	Guardians          *service.GuardianService
	Students           *service.StudentService
	Subjects           *service.SubjectService
	Grades             *service.GradeService
	TotalGrades        *service.TotalGradeService
	SubjectEducators   *service.SubjectEducatorService
	AccessLevelChanges *service.AccessLevelChangeService

	// Ready reports whether the backing stores answer; /ready surfaces it.
	Ready func(ctx context.Context) error
}

// NewRouter assembles the gin engine: ambient middleware, the ops endpoints,
// the auth surface and the authenticated resource tree.
func NewRouter(cfg *config.Config, log *zap.Logger, svcs *Services) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(cors.New(cfg.CORS.AllowedOrigins))
	router.Use(logger.GinMiddleware(log))
	router.Use(middleware.Metrics())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ready", func(c *gin.Context) {
		if svcs.Ready != nil {
			if err := svcs.Ready(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	NewAuthHandler(svcs.Auth).Register(router.Group("/auth"))

	api := router.Group("/api/v1", middleware.RequireAuth(svcs.Auth))

	NewResource(svcs.Levels, svcs.Levels.Create, svcs.Levels.Update, false, false).
		Register(api.Group("/levels"))
	NewResource(svcs.Classes, svcs.Classes.Create, svcs.Classes.Update, false, false).
		Register(api.Group("/classes"))
	NewResource(svcs.Departments, svcs.Departments.Create, svcs.Departments.Update, false, true).
		Register(api.Group("/departments"))
	NewResource(svcs.StaffRoles, svcs.StaffRoles.Create, svcs.StaffRoles.Update, false, false).
		Register(api.Group("/staff-roles"))
	NewResource(svcs.StaffDepartments, svcs.StaffDepartments.Create, svcs.StaffDepartments.Update, false, false).
		Register(api.Group("/staff-departments"))
	NewResource(svcs.Guardians, svcs.Guardians.Create, svcs.Guardians.Update, false, false).
		Register(api.Group("/guardians"))
	NewResource(svcs.Students, svcs.Students.Create, svcs.Students.Update, true, false).
		Register(api.Group("/students"))
	NewResource(svcs.Subjects, svcs.Subjects.Create, svcs.Subjects.Update, false, false).
		Register(api.Group("/subjects"))
	NewResource(svcs.Grades, svcs.Grades.Create, svcs.Grades.Update, false, false).
		Register(api.Group("/grades"))
	NewResource[struct{}, struct{}, models.TotalGrade](svcs.TotalGrades, nil, nil, false, false).
		Register(api.Group("/total-grades"))
	NewResource(svcs.SubjectEducators, svcs.SubjectEducators.Create, svcs.SubjectEducators.Update, false, false).
		Register(api.Group("/subject-educators"))
	NewResource[struct{}, struct{}, models.AccessLevelChange](svcs.AccessLevelChanges, nil, nil, false, false).
		Register(api.Group("/access-level-changes"))

	staffGroup := api.Group("/staff")
	NewResource(svcs.Staff, svcs.Staff.Create, svcs.Staff.Update, false, true).Register(staffGroup)
	staffGroup.PATCH("/:id/access-level",
		middleware.RequireAccessLevel(models.AccessLevelElevated),
		changeAccessLevel(svcs.Staff))

	return router
}

func changeAccessLevel(staff *service.StaffService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ChangeAccessLevelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, bindError(err))
			return
		}
		member, err := staff.ChangeAccessLevel(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, member, nil)
	}
}
