package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterNeutralizesFormulas(t *testing.T) {
	data := Dataset{
		Headers: []string{"Staff", "Reason"},
		Rows: []map[string]string{
			{"Staff": "Tari", "Reason": "=HYPERLINK(\"x\")"},
			{"Staff": "Budi"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Staff,Reason\nTari,\"'=HYPERLINK(\"\"x\"\")\"\nBudi,\n", string(out))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "x")
	assert.Error(t, err)
}

func TestPDFExporterRendersDocument(t *testing.T) {
	data := Dataset{
		Headers: []string{"Staff", "Period", "Reason"},
		Widths:  []float64{2, 1, 4},
		Rows: []map[string]string{
			{"Staff": "Tari", "Period": "1st", "Reason": "Available substitute, lowest load (0) and a very long explanation that must be truncated to fit"},
		},
	}

	out, err := NewPDFExporter().Render(data, "Coverage Sheet 2024-09-02")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestColumnWidthsFallbackToEqualSplit(t *testing.T) {
	widths := columnWidths(Dataset{Headers: []string{"a", "b"}, Widths: []float64{1}})
	assert.InDelta(t, pageWidthLandscape/2, widths[0], 0.001)

	weighted := columnWidths(Dataset{Headers: []string{"a", "b"}, Widths: []float64{1, 3}})
	assert.InDelta(t, pageWidthLandscape/4, weighted[0], 0.001)
}
