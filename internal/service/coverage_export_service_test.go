package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-coverage-api/internal/dto"
	appErrors "github.com/noah-isme/sma-coverage-api/pkg/errors"
	"github.com/noah-isme/sma-coverage-api/pkg/export"
)

type pdfRendererStub struct {
	data  export.Dataset
	title string
	err   error
}

func (p *pdfRendererStub) Render(data export.Dataset, title string) ([]byte, error) {
	p.data, p.title = data, title
	return []byte("%PDF-stub"), p.err
}

func sheetFixture() *dto.CoverageSheet {
	sub := "sub-1"
	return &dto.CoverageSheet{
		Date:      "2024-09-02",
		Covered:   1,
		Uncovered: 1,
		Rows: []dto.CoverageSheetRow{
			{StaffName: "Tari", Period: 1, PeriodLabel: "1st", CandidateID: &sub, CandidateRole: "EXTERNAL_SUBSTITUTE", AssignmentType: "External Sub", Status: "ASSIGNED"},
			{StaffName: "Tari", Period: 2, AssignmentType: "No Coverage", Status: "UNCOVERED"},
		},
	}
}

func TestCoverageExportServicePDF(t *testing.T) {
	pdf := &pdfRendererStub{}
	svc := NewCoverageExportService(nil, pdf, nil)

	file, err := svc.Render(sheetFixture(), " pdf ")
	require.NoError(t, err)

	assert.Equal(t, "coverage-2024-09-02.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "Coverage Sheet 2024-09-02 (1 covered, 1 uncovered)", pdf.title)
	require.Len(t, pdf.data.Rows, 2)
	assert.Equal(t, "sub-1", pdf.data.Rows[0]["Covered By"], "falls back to the candidate id")
	assert.Equal(t, "2", pdf.data.Rows[1]["Period"])
}

func TestCoverageExportServiceErrors(t *testing.T) {
	svc := NewCoverageExportService(nil, &pdfRendererStub{err: errors.New("font missing")}, nil)

	_, err := svc.Render(sheetFixture(), "pdf")
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)

	file, err := svc.Render(sheetFixture(), "")
	require.NoError(t, err)
	assert.Equal(t, "coverage-2024-09-02.csv", file.Filename)
}
