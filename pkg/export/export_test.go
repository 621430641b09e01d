package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Level Senior Secondary",
		Headers: []string{"ID", "Name"},
		Rows:    []map[string]string{{"ID": "level-1", "Name": "Senior Secondary"}},
		Sections: []Section{
			{
				Name:    "Classes",
				Headers: []string{"Code"},
				Rows:    []map[string]string{{"Code": "SSS-1"}, {"Code": "SSS-2"}},
			},
		},
	}
}

func TestCSVRenderIncludesSections(t *testing.T) {
	raw, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	content := string(raw)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	assert.Equal(t, "ID,Name", strings.TrimSpace(lines[0]))
	assert.Contains(t, content, "level-1,Senior Secondary")
	assert.Contains(t, content, "Classes")
	assert.Contains(t, content, "SSS-2")
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	raw, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestXLSXRenderProducesWorkbook(t *testing.T) {
	raw, err := NewXLSXExporter().Render(sampleDataset())
	require.NoError(t, err)
	// XLSX files are zip archives.
	assert.True(t, bytes.HasPrefix(raw, []byte("PK")))
}

func TestXLSXRenderRequiresHeaders(t *testing.T) {
	_, err := NewXLSXExporter().Render(Dataset{Title: "Empty"})
	assert.Error(t, err)
}
