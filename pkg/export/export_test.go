package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Weekly roster",
		Headers: []string{"#", "Date", "Status"},
		Rows: []Row{
			{Values: map[string]string{"#": "1", "Date": "2024-01-01", "Status": "scheduled"}},
			{Values: map[string]string{"#": "2", "Date": "2024-01-08", "Status": "exception"}, Muted: true},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "#,Date,Status\n1,2024-01-01,scheduled\n2,2024-01-08,exception\n", string(out))
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}
