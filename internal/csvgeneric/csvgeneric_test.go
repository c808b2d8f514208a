package csvgeneric

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestAnalyzeCountsAllRowsButPreviewsOnlyRequested(t *testing.T) {
	body := "a,b\n1,2\n3,4\n5,6\n7,8\n"
	path := writeCSV(t, body)

	result, err := Analyze(path, 2, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, result.Columns)
	assert.Equal(t, 4, result.RowCount)
	assert.Len(t, result.PreviewData, 2)
	assert.Equal(t, "1", result.PreviewData[0]["a"])
	assert.Equal(t, "4", result.PreviewData[1]["b"])
}

func TestAnalyzeEmptyFile(t *testing.T) {
	path := writeCSV(t, "")
	result, err := Analyze(path, 0, 10)
	require.NoError(t, err)
	assert.Nil(t, result.Columns)
	assert.Equal(t, 0, result.RowCount)
}

func TestAnalyzeRaggedRows(t *testing.T) {
	body := "a,b,c\n1,2\n3,4,5,6\n"
	path := writeCSV(t, body)

	result, err := Analyze(path, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowCount)
	assert.Equal(t, "", result.PreviewData[0]["c"])
}

func TestAnalyzeMissingFile(t *testing.T) {
	_, err := Analyze("/nonexistent/path.csv", 10, 10)
	assert.Error(t, err)
}
