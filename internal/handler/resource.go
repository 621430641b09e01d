// Package handler exposes the lifecycle services over HTTP. One generic
// resource handler serves every entity kind; per-kind differences are the
// request payloads and which destructive routes exist.
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sims-api/internal/middleware"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/internal/service"
	apperrors "github.com/noah-isme/sims-api/pkg/errors"
	"github.com/noah-isme/sims-api/pkg/response"
)

// CoreService is the shared lifecycle surface every resource exposes.
type CoreService[T any] interface {
	Kind() models.EntityKind
	Get(ctx context.Context, id string) (*T, error)
	GetArchived(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, q models.ListQuery) ([]T, int, error)
	ListArchived(ctx context.Context, q models.ListQuery) ([]T, int, error)
	Audit(ctx context.Context, id string) (*models.Lifecycle, error)
	Archive(ctx context.Context, id string, reason models.ArchiveReason) (*T, error)
	Restore(ctx context.Context, id string) (*T, error)
	Delete(ctx context.Context, id string) error
	DeleteArchived(ctx context.Context, id string) error
	CascadeDelete(ctx context.Context, id string, format service.ExportFormat) error
	NullifyDelete(ctx context.Context, id string, format service.ExportFormat) error
	Export(ctx context.Context, id string, format service.ExportFormat) (*service.ExportResult, error)
}

// Resource adapts one lifecycle service to the uniform route table. A nil
// create or update func leaves that route unregistered; read-only kinds pass
// struct{} for the request types.
type Resource[C any, U any, T any] struct {
	core    CoreService[T]
	create  func(ctx context.Context, req C) (*T, error)
	update  func(ctx context.Context, id string, req U) (*T, error)
	cascade bool
	nullify bool
}

// NewResource builds the handler for one entity kind.
func NewResource[C, U, T any](
	core CoreService[T],
	create func(ctx context.Context, req C) (*T, error),
	update func(ctx context.Context, id string, req U) (*T, error),
	cascade, nullify bool,
) *Resource[C, U, T] {
	return &Resource[C, U, T]{core: core, create: create, update: update, cascade: cascade, nullify: nullify}
}

type archiveRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Register mounts the uniform route table on the group.
func (h *Resource[C, U, T]) Register(rg *gin.RouterGroup) {
	if h.create != nil {
		rg.POST("", h.handleCreate)
	}
	rg.GET("", h.handleList)
	rg.GET("/:id", h.handleGet)
	rg.GET("/:id/audit", h.handleAudit)
	if h.update != nil {
		rg.PUT("/:id", h.handleUpdate)
	}
	rg.PATCH("/:id", h.handleArchive)
	rg.POST("/:id", h.handleExport)
	rg.DELETE("/:id", h.handleDelete)

	if h.cascade {
		rg.DELETE("/:id/cascade", h.handleCascadeDelete)
	}
	if h.nullify {
		rg.DELETE("/:id/nullify", h.handleNullifyDelete)
	}

	rg.GET("/archived", h.handleListArchived)
	rg.GET("/archived/:id", h.handleGetArchived)
	rg.PATCH("/archived/:id", h.handleRestore)
	rg.DELETE("/archived/:id", h.handleDeleteArchived)
}

func (h *Resource[C, U, T]) handleCreate(c *gin.Context) {
	var req C
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	entity, err := h.create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entity)
}

func (h *Resource[C, U, T]) handleUpdate(c *gin.Context) {
	var req U
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	entity, err := h.update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, entity, nil)
}

func (h *Resource[C, U, T]) handleGet(c *gin.Context) {
	entity, err := h.core.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, entity, nil)
}

func (h *Resource[C, U, T]) handleGetArchived(c *gin.Context) {
	entity, err := h.core.GetArchived(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, entity, nil)
}

func (h *Resource[C, U, T]) handleList(c *gin.Context) {
	query := bindListQuery(c)
	items, total, err := h.core.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, items, &response.Pagination{Limit: query.Limit, Offset: query.Offset, Total: total})
}

func (h *Resource[C, U, T]) handleListArchived(c *gin.Context) {
	query := bindListQuery(c)
	items, total, err := h.core.ListArchived(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, items, &response.Pagination{Limit: query.Limit, Offset: query.Offset, Total: total})
}

func (h *Resource[C, U, T]) handleAudit(c *gin.Context) {
	envelope, err := h.core.Audit(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, envelope, nil)
}

func (h *Resource[C, U, T]) handleArchive(c *gin.Context) {
	var req archiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	_, err := h.core.Archive(c.Request.Context(), c.Param("id"), models.ArchiveReason(req.Reason))
	middleware.CountLifecycleOp(string(h.core.Kind()), "archive", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Resource[C, U, T]) handleRestore(c *gin.Context) {
	entity, err := h.core.Restore(c.Request.Context(), c.Param("id"))
	middleware.CountLifecycleOp(string(h.core.Kind()), "restore", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, entity, nil)
}

func (h *Resource[C, U, T]) handleDelete(c *gin.Context) {
	err := h.core.Delete(c.Request.Context(), c.Param("id"))
	middleware.CountLifecycleOp(string(h.core.Kind()), "delete", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Resource[C, U, T]) handleDeleteArchived(c *gin.Context) {
	err := h.core.DeleteArchived(c.Request.Context(), c.Param("id"))
	middleware.CountLifecycleOp(string(h.core.Kind()), "delete", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Resource[C, U, T]) handleCascadeDelete(c *gin.Context) {
	format, err := exportFormat(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	err = h.core.CascadeDelete(c.Request.Context(), c.Param("id"), format)
	middleware.CountLifecycleOp(string(h.core.Kind()), "cascade_delete", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Resource[C, U, T]) handleNullifyDelete(c *gin.Context) {
	format, err := exportFormat(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	err = h.core.NullifyDelete(c.Request.Context(), c.Param("id"), format)
	middleware.CountLifecycleOp(string(h.core.Kind()), "nullify_delete", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Resource[C, U, T]) handleExport(c *gin.Context) {
	format, err := exportFormat(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.core.Export(c.Request.Context(), c.Param("id"), format)
	middleware.CountLifecycleOp(string(h.core.Kind()), "export", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, result.Path, result.Filename)
}

func exportFormat(c *gin.Context) (service.ExportFormat, error) {
	raw := c.Query("export_format")
	if raw == "" {
		return service.FormatPDF, nil
	}
	return service.ParseExportFormat(raw)
}

func bindError(err error) error {
	return apperrors.Wrap(err, apperrors.KindEmpty, 422, "request body failed validation", "bind request payload")
}
