package service

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-coverage-api/internal/dto"
	appErrors "github.com/noah-isme/sma-coverage-api/pkg/errors"
	"github.com/noah-isme/sma-coverage-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var coverageSheetHeaders = []string{"Absent Staff", "Period", "Covered By", "Role", "Type", "Status", "Reason"}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// CoverageExportService renders coverage sheets as downloadable files.
type CoverageExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewCoverageExportService constructs the service; nil renderers fall back to the defaults.
func NewCoverageExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *CoverageExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &CoverageExportService{csv: csv, pdf: pdf, logger: logger}
}

// Render converts the sheet to the requested format.
func (s *CoverageExportService) Render(sheet *dto.CoverageSheet, format string) (*dto.ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	data := coverageDataset(sheet)
	base := "coverage-" + sheet.Date

	var (
		body []byte
		err  error
		file = &dto.ExportFile{}
	)
	switch format {
	case ExportFormatCSV:
		body, err = s.csv.Render(data)
		file.ContentType = "text/csv"
	case ExportFormatPDF:
		title := fmt.Sprintf("Coverage Sheet %s (%d covered, %d uncovered)", sheet.Date, sheet.Covered, sheet.Uncovered)
		body, err = s.pdf.Render(data, title)
		file.ContentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupported, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("coverage export failed", zap.String("date", sheet.Date), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render coverage sheet")
	}
	file.Filename = base + "." + format
	file.Body = body
	return file, nil
}

func coverageDataset(sheet *dto.CoverageSheet) export.Dataset {
	rows := make([]map[string]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		coveredBy := row.CandidateName
		if coveredBy == "" && row.CandidateID != nil {
			coveredBy = *row.CandidateID
		}
		label := row.PeriodLabel
		if label == "" {
			label = strconv.Itoa(row.Period)
		}
		rows = append(rows, map[string]string{
			"Absent Staff": row.StaffName,
			"Period":       label,
			"Covered By":   coveredBy,
			"Role":         row.CandidateRole,
			"Type":         row.AssignmentType,
			"Status":       row.Status,
			"Reason":       row.Reason,
		})
	}
	return export.Dataset{
		Headers: coverageSheetHeaders,
		Rows:    rows,
		Widths:  []float64{3, 1, 3, 2.5, 2.5, 2, 6},
	}
}
