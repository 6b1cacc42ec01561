package export

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVRenderOrdersColumnsByHeader(t *testing.T) {
	data := Dataset{
		Headers: []string{"ID", "Title"},
		Rows: []map[string]string{
			{"Title": "Essay", "ID": "a1"},
			{"ID": "a2"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	require.Equal(t, "ID,Title\na1,Essay\na2,\n", string(out))
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	data := Dataset{
		Headers: []string{"ID", "Title"},
		Rows:    []map[string]string{{"ID": "a1", "Title": "A very long title that should be truncated rather than overflow its table cell in the rendered page"}},
	}

	out, err := NewPDFExporter().Render(data, "Assignments")
	require.NoError(t, err)
	require.NotEmpty(t, out)
	require.Equal(t, "%PDF", string(out[:4]))
}

func TestPDFRenderSurvivesVeryNarrowColumns(t *testing.T) {
	headers := make([]string, 60)
	row := map[string]string{}
	for i := range headers {
		headers[i] = "c" + string(rune('A'+i%26)) + string(rune('0'+i/26))
		row[headers[i]] = "a value wider than any sixty-column cell"
	}

	out, err := NewPDFExporter().Render(Dataset{Headers: headers, Rows: []map[string]string{row}}, "")
	require.NoError(t, err)
	require.Equal(t, "%PDF", string(out[:4]))
}
