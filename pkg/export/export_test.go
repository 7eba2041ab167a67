package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSections() []Section {
	return []Section{
		{Title: "Approved", Data: Dataset{
			Headers: []string{"code", "name"},
			Rows:    []map[string]string{{"code": "75.12", "name": "Análisis Numérico"}},
		}},
		{Title: "Enrolled", Data: Dataset{
			Headers: []string{"code", "name"},
			Rows:    []map[string]string{{"code": "75.41", "name": "Algoritmos III"}},
		}},
	}
}

func TestCSVExporterRendersSections(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleSections())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, []string{
		"Approved",
		"code,name",
		"75.12,Análisis Numérico",
		"",
		"Enrolled",
		"code,name",
		"75.41,Algoritmos III",
	}, lines)
}

func TestCSVExporterRejectsHeaderlessSection(t *testing.T) {
	_, err := NewCSVExporter().Render([]Section{{Title: "empty"}})
	assert.Error(t, err)
}

func TestPDFExporterProducesDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleSections(), "Transcript 100000")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
