package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sims-api/internal/dto"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/internal/service"
	apperrors "github.com/noah-isme/sims-api/pkg/errors"
)

type fakeLevelCore struct {
	levels     map[string]*models.Level
	archived   map[string]*models.Level
	lastQuery  models.ListQuery
	lastReason models.ArchiveReason
	deleteErr  error
	exportPath string
}

func (f *fakeLevelCore) Kind() models.EntityKind { return models.KindLevel }

func (f *fakeLevelCore) Get(_ context.Context, id string) (*models.Level, error) {
	if level, ok := f.levels[id]; ok {
		return level, nil
	}
	return nil, apperrors.NotFound(string(models.KindLevel), id)
}

func (f *fakeLevelCore) GetArchived(_ context.Context, id string) (*models.Level, error) {
	if level, ok := f.archived[id]; ok {
		return level, nil
	}
	return nil, apperrors.NotFound(string(models.KindLevel), id)
}

func (f *fakeLevelCore) List(_ context.Context, q models.ListQuery) ([]models.Level, int, error) {
	f.lastQuery = q
	out := make([]models.Level, 0, len(f.levels))
	for _, level := range f.levels {
		out = append(out, *level)
	}
	return out, len(out), nil
}

func (f *fakeLevelCore) ListArchived(_ context.Context, q models.ListQuery) ([]models.Level, int, error) {
	f.lastQuery = q
	return nil, 0, nil
}

func (f *fakeLevelCore) Audit(_ context.Context, id string) (*models.Lifecycle, error) {
	level, err := f.Get(context.Background(), id)
	if err != nil {
		return nil, err
	}
	return level.Envelope(), nil
}

func (f *fakeLevelCore) Archive(_ context.Context, id string, reason models.ArchiveReason) (*models.Level, error) {
	f.lastReason = reason
	level, ok := f.levels[id]
	if !ok {
		return nil, apperrors.NotFound(string(models.KindLevel), id)
	}
	level.IsArchived = true
	return level, nil
}

func (f *fakeLevelCore) Restore(_ context.Context, id string) (*models.Level, error) {
	level, ok := f.archived[id]
	if !ok {
		return nil, apperrors.NotFound(string(models.KindLevel), id)
	}
	level.IsArchived = false
	return level, nil
}

func (f *fakeLevelCore) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.levels, id)
	return nil
}

func (f *fakeLevelCore) DeleteArchived(_ context.Context, id string) error {
	delete(f.archived, id)
	return nil
}

func (f *fakeLevelCore) CascadeDelete(_ context.Context, _ string, _ service.ExportFormat) error {
	return nil
}

func (f *fakeLevelCore) NullifyDelete(_ context.Context, _ string, _ service.ExportFormat) error {
	return nil
}

func (f *fakeLevelCore) Export(_ context.Context, id string, format service.ExportFormat) (*service.ExportResult, error) {
	if _, ok := f.levels[id]; !ok {
		return nil, apperrors.NotFound(string(models.KindLevel), id)
	}
	return &service.ExportResult{Path: f.exportPath, Filename: filepath.Base(f.exportPath), Format: format}, nil
}

func newLevelRouter(t *testing.T, core *fakeLevelCore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	resource := NewResource(core,
		func(_ context.Context, req dto.CreateLevelRequest) (*models.Level, error) {
			return &models.Level{Name: req.Name, Description: req.Description, Order: req.Order}, nil
		},
		func(_ context.Context, id string, req dto.UpdateLevelRequest) (*models.Level, error) {
			level, err := core.Get(context.Background(), id)
			if err != nil {
				return nil, err
			}
			level.Name = req.Name
			return level, nil
		},
		false, false)
	resource.Register(router.Group("/levels"))
	return router
}

func seededCore() *fakeLevelCore {
	active := &models.Level{Name: "Senior Secondary", Description: "Senior classes", Order: 2}
	active.ID = "level-1"
	shelved := &models.Level{Name: "Junior Secondary", Description: "Junior classes", Order: 1}
	shelved.ID = "level-2"
	shelved.IsArchived = true
	return &fakeLevelCore{
		levels:   map[string]*models.Level{"level-1": active},
		archived: map[string]*models.Level{"level-2": shelved},
	}
}

func perform(router *gin.Engine, method, target string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestResourceCreate(t *testing.T) {
	router := newLevelRouter(t, seededCore())

	rec := perform(router, http.MethodPost, "/levels", gin.H{
		"name": "Primary", "description": "The primary classes", "order": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Primary", data["name"])
}

func TestResourceCreateBadPayload(t *testing.T) {
	router := newLevelRouter(t, seededCore())

	rec := perform(router, http.MethodPost, "/levels", gin.H{"description": "missing name"})
	require.Equal(t, 422, rec.Code)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, string(apperrors.KindEmpty), body["kind"])
	assert.NotEmpty(t, body["message"])
}

func TestResourceGetMissing(t *testing.T) {
	router := newLevelRouter(t, seededCore())

	rec := perform(router, http.MethodGet, "/levels/absent", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, string(apperrors.KindNotFound), body["kind"])
	assert.NotContains(t, body, "log_message")
}

func TestResourceListBindsQueryContract(t *testing.T) {
	core := seededCore()
	router := newLevelRouter(t, core)

	rec := perform(router, http.MethodGet,
		"/levels?search=senior&order_by=rank_order&order_dir=desc&limit=9999&offset=10&name=Senior+Secondary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "senior", core.lastQuery.Search)
	assert.Equal(t, "rank_order", core.lastQuery.OrderBy)
	assert.Equal(t, "DESC", core.lastQuery.OrderDir)
	assert.Equal(t, models.MaxLimit, core.lastQuery.Limit)
	assert.Equal(t, 10, core.lastQuery.Offset)
	assert.Equal(t, "Senior Secondary", core.lastQuery.Filters["name"])

	body := decodeEnvelope(t, rec)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["total"])
}

func TestResourceArchiveRequiresReason(t *testing.T) {
	core := seededCore()
	router := newLevelRouter(t, core)

	rec := perform(router, http.MethodPatch, "/levels/level-1", gin.H{})
	assert.Equal(t, 422, rec.Code)

	rec = perform(router, http.MethodPatch, "/levels/level-1", gin.H{"reason": "ADMINISTRATIVE"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
	assert.Equal(t, models.ArchiveReasonAdministrative, core.lastReason)
}

func TestResourceRestore(t *testing.T) {
	router := newLevelRouter(t, seededCore())

	rec := perform(router, http.MethodPatch, "/levels/archived/level-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, false, data["is_archived"])
}

func TestResourceDelete(t *testing.T) {
	core := seededCore()
	router := newLevelRouter(t, core)

	rec := perform(router, http.MethodDelete, "/levels/level-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, core.levels, "level-1")
}

func TestResourceDeleteConflict(t *testing.T) {
	core := seededCore()
	core.deleteErr = apperrors.InUse(string(models.KindLevel), []string{"classes"})
	router := newLevelRouter(t, core)

	rec := perform(router, http.MethodDelete, "/levels/level-1", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, string(apperrors.KindEntityInUse), body["kind"])
}

func TestResourceExportStreamsAttachment(t *testing.T) {
	core := seededCore()
	staged := filepath.Join(t.TempDir(), "level_export.pdf")
	require.NoError(t, os.WriteFile(staged, []byte("%PDF-1.4 test"), 0o644))
	core.exportPath = staged
	router := newLevelRouter(t, core)

	rec := perform(router, http.MethodPost, "/levels/level-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "level_export.pdf")
	assert.Equal(t, "%PDF-1.4 test", rec.Body.String())
}

func TestResourceExportRejectsUnknownFormat(t *testing.T) {
	router := newLevelRouter(t, seededCore())

	rec := perform(router, http.MethodPost, "/levels/level-1?export_format=docx", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestResourceDestructiveRoutesAreOptIn(t *testing.T) {
	router := newLevelRouter(t, seededCore())

	rec := perform(router, http.MethodDelete, "/levels/level-1/cascade", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = perform(router, http.MethodDelete, "/levels/level-1/nullify", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReadOnlyResourceHasNoWriteRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	core := seededCore()
	resource := NewResource[struct{}, struct{}, models.Level](core, nil, nil, false, false)
	resource.Register(router.Group("/totals"))

	rec := perform(router, http.MethodPost, "/totals", gin.H{})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = perform(router, http.MethodPut, "/totals/level-1", gin.H{})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = perform(router, http.MethodGet, "/totals/level-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
