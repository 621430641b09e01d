package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/pkg/export"
	apperrors "github.com/noah-isme/sims-api/pkg/errors"
	"github.com/noah-isme/sims-api/pkg/storage"
)

// ExportFormat selects the rendered document type.
type ExportFormat string

const (
	FormatPDF   ExportFormat = "pdf"
	FormatCSV   ExportFormat = "csv"
	FormatExcel ExportFormat = "excel"
)

// ParseExportFormat validates a query-supplied format string.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatPDF:
		return FormatPDF, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatExcel:
		return FormatExcel, nil
	}
	return "", apperrors.Validation(apperrors.KindInvalidCode, "export_format", raw, "export format must be pdf, csv or excel")
}

func (f ExportFormat) extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return string(f)
}

// Gatherer assembles the export dataset for one entity: its own fields plus
// the summary fields of its declared related collections.
type Gatherer func(ctx context.Context, id string) (export.Dataset, error)

// ExportMarker records that an entity was rendered. Only the export hook
// calls it; nothing else may set is_exported.
type ExportMarker interface {
	MarkExported(ctx context.Context, id string) error
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportResult describes a rendered document on the staging volume.
type ExportResult struct {
	Path     string
	Filename string
	Format   ExportFormat
}

// ExportService is the export hook fired before cascade and nullify deletes
// and by the per-resource export endpoint.
type ExportService struct {
	gatherers map[models.EntityKind]Gatherer
	csv       datasetRenderer
	pdf       datasetRenderer
	xlsx      datasetRenderer
	storage   *storage.LocalStorage
	mirror    *storage.S3Mirror
	logger    *zap.Logger
}

// NewExportService constructs the export hook. The mirror may be nil.
func NewExportService(store *storage.LocalStorage, mirror *storage.S3Mirror, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		gatherers: make(map[models.EntityKind]Gatherer),
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		xlsx:      export.NewXLSXExporter(),
		storage:   store,
		mirror:    mirror,
		logger:    logger,
	}
}

// Register installs the gatherer for an entity kind.
func (s *ExportService) Register(kind models.EntityKind, g Gatherer) {
	s.gatherers[kind] = g
}

// Export gathers, renders and stages the document, then marks the entity as
// exported through the supplied marker.
func (s *ExportService) Export(ctx context.Context, kind models.EntityKind, id string, format ExportFormat, marker ExportMarker) (*ExportResult, error) {
	gatherer, ok := s.gatherers[kind]
	if !ok {
		return nil, apperrors.UnimplementedGatherer(string(kind))
	}

	dataset, err := gatherer(ctx, id)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch format {
	case FormatCSV:
		payload, err = s.csv.Render(dataset)
	case FormatExcel:
		payload, err = s.xlsx.Render(dataset)
	default:
		payload, err = s.pdf.Render(dataset)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
			"failed to render export", fmt.Sprintf("render %s export for %s %s", format, kind, id))
	}

	filename := s.buildFilename(kind, id, format)
	path, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
			"failed to store export", fmt.Sprintf("stage %s export for %s %s", format, kind, id))
	}

	if s.mirror != nil {
		if err := s.mirror.Upload(ctx, filename, payload); err != nil {
			s.logger.Warn("export mirror upload failed", zap.String("file", filename), zap.Error(err))
		}
	}

	if marker != nil {
		if err := marker.MarkExported(ctx, id); err != nil {
			return nil, apperrors.Wrap(err, apperrors.KindInternal, apperrors.ErrInternal.Status,
				"failed to record export", fmt.Sprintf("mark exported %s %s", kind, id))
		}
	}

	s.logger.Info("export rendered",
		zap.String("entity", string(kind)),
		zap.String("id", id),
		zap.String("format", string(format)),
		zap.String("file", filename),
	)

	return &ExportResult{Path: path, Filename: filename, Format: format}, nil
}

func (s *ExportService) buildFilename(kind models.EntityKind, id string, format ExportFormat) string {
	slug := strings.ReplaceAll(string(kind), " ", "_")
	stamp := time.Now().UTC().Format("20060102T150405")
	return fmt.Sprintf("%s_%s_%s_%s.%s", slug, id, stamp, uuid.NewString()[:8], format.extension())
}
