package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func agenda() Dataset {
	return Dataset{
		Title:    "Agenda",
		Subtitle: "2025-03-10",
		Columns: []Column{
			{Key: "time", Title: "Hora", Width: 20},
			{Key: "patient", Title: "Paciente"},
			{Key: "title", Title: "Motivo"},
		},
		Rows: []map[string]string{
			{"time": "09:00", "patient": "Ana Pérez", "title": "Limpieza"},
			{"time": "09:30", "patient": "Luis, Jr", "title": "Revisión"},
		},
	}
}

func TestCSVRendersColumnsInOrder(t *testing.T) {
	out, err := NewCSVExporter().Render(agenda())
	require.NoError(t, err)
	assert.Equal(t, "Hora,Paciente,Motivo\n09:00,Ana Pérez,Limpieza\n09:30,\"Luis, Jr\",Revisión\n", string(out))
}

func TestRenderRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRendersDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(agenda())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestColumnWidthsShareRemainder(t *testing.T) {
	widths := columnWidths(agenda().Columns)
	assert.Equal(t, 20.0, widths[0])
	assert.InDelta(t, (pageWidthLandscape-20)/2, widths[1], 0.001)
}
