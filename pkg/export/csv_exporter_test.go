package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"Employee Code", "Employee Name", "Work Date"},
		Rows: []map[string]string{
			{"Employee Code": "NV001", "Employee Name": "Nguyễn Văn A", "Work Date": "2024-03-04"},
		},
	})
	require.NoError(t, err)

	out := string(payload)
	assert.True(t, strings.HasPrefix(out, "\uFEFF"), "output must start with a UTF-8 BOM")

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(out, "\uFEFF")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Employee Code,Employee Name,Work Date", lines[0])
	assert.Equal(t, "NV001,Nguyễn Văn A,2024-03-04", lines[1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}
