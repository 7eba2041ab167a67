package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-record-api/internal/models"
	"github.com/noah-isme/academic-record-api/pkg/export"
	appErrors "github.com/noah-isme/academic-record-api/pkg/errors"
)

type progressReader interface {
	Progress(ctx context.Context, padron int64) (*models.StudentProgress, error)
}

type csvRenderer interface {
	Render(sections []export.Section) ([]byte, error)
}

type pdfRenderer interface {
	Render(sections []export.Section, title string) ([]byte, error)
}

var transcriptHeaders = []string{"code", "name"}

// TranscriptService renders a student's progress as a downloadable document.
type TranscriptService struct {
	records progressReader
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewTranscriptService constructs a TranscriptService.
func NewTranscriptService(records progressReader, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &TranscriptService{records: records, csv: csv, pdf: pdf, logger: logger}
}

// ParseTranscriptFormat normalises a user supplied format, defaulting to CSV.
func ParseTranscriptFormat(raw string) (models.TranscriptFormat, error) {
	switch models.TranscriptFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", models.TranscriptFormatCSV:
		return models.TranscriptFormatCSV, nil
	case models.TranscriptFormatPDF:
		return models.TranscriptFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported transcript format %q", raw))
	}
}

// Export renders the student's curricula, approved and enrolled courses.
func (s *TranscriptService) Export(ctx context.Context, padron int64, format models.TranscriptFormat) (*models.Transcript, error) {
	progress, err := s.records.Progress(ctx, padron)
	if err != nil {
		return nil, err
	}
	sections := buildTranscriptSections(progress)

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case models.TranscriptFormatCSV:
		payload, err = s.csv.Render(sections)
		contentType = "text/csv"
	case models.TranscriptFormatPDF:
		payload, err = s.pdf.Render(sections, fmt.Sprintf("Academic record %d", padron))
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported transcript format %q", format))
	}
	if err != nil {
		s.logger.Error("render transcript", zap.Int64("padron", padron), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrOperationFailed.Code, appErrors.ErrOperationFailed.Status, "failed to render transcript")
	}

	return &models.Transcript{
		Filename:    fmt.Sprintf("transcript-%d.%s", padron, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func buildTranscriptSections(progress *models.StudentProgress) []export.Section {
	curricula := export.Dataset{Headers: []string{"id", "name"}}
	for _, curriculum := range progress.Curricula {
		curricula.Rows = append(curricula.Rows, map[string]string{
			"id":   strconv.Itoa(curriculum.ID),
			"name": curriculum.Name,
		})
	}
	return []export.Section{
		{Title: "Curricula", Data: curricula},
		{Title: "Approved courses", Data: courseDataset(progress.Approved)},
		{Title: "Enrolled courses", Data: courseDataset(progress.Enrolled)},
	}
}

func courseDataset(courses []models.CourseProgress) export.Dataset {
	data := export.Dataset{Headers: transcriptHeaders}
	for _, course := range courses {
		data.Rows = append(data.Rows, map[string]string{"code": course.Code, "name": course.Name})
	}
	return data
}
