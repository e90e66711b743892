package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartFilePathIsDeterministic(t *testing.T) {
	first := PartFilePath("/data/out/file.bin", 4096)
	second := PartFilePath("/data/out/file.bin", 4096)
	assert.Equal(t, first, second, "same inputs must map to the same part path across runs")
	assert.Equal(t, filepath.Join("/data/out", TempDirName, "file.bin.part4096"), first)

	other := PartFilePath("/data/out/file.bin", 8192)
	assert.NotEqual(t, first, other)
}

func TestParseHeaderArgs(t *testing.T) {
	headers := ParseHeaderArgs([]string{
		"Authorization: Bearer abc123",
		"X-Custom:value",
		"malformed-header",
	})
	assert.Equal(t, map[string]string{
		"Authorization": "Bearer abc123",
		"X-Custom":      "value",
	}, headers)
}

func TestDetermineDownloadType(t *testing.T) {
	assert.Equal(t, "s3", DetermineDownloadType("s3://bucket/key/object.bin"))
	assert.Equal(t, "http", DetermineDownloadType("https://example.com/file.bin"))
	assert.Equal(t, "http", DetermineDownloadType("http://example.com/file.bin"))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.00 KB", FormatBytes(1024))
	assert.Equal(t, "8.00 MB", FormatBytes(8*1024*1024))
}

func TestReadDownloadList(t *testing.T) {
	listPath := filepath.Join(t.TempDir(), "list.yaml")
	content := `
- link: https://example.com/a.bin
  op: a.bin
- link: s3://bucket/b.bin
`
	require.NoError(t, os.WriteFile(listPath, []byte(content), 0644))

	entries, err := ReadDownloadList(listPath)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "http", entries[0].Type)
	assert.Equal(t, "a.bin", entries[0].OutputPath)
	assert.Equal(t, "s3", entries[1].Type, "type is inferred from the URL when omitted")
}

func TestCleanFunction(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "file.bin")
	tempDir := TempDirFor(outputPath)
	require.NoError(t, os.MkdirAll(tempDir, 0755))
	require.NoError(t, os.WriteFile(PartFilePath(outputPath, 0), []byte("abc"), 0644))
	require.NoError(t, os.WriteFile(PartFilePath(outputPath, 100), []byte("def"), 0644))

	require.NoError(t, CleanFunction(outputPath))
	assert.NoDirExists(t, tempDir)

	// Cleaning when nothing is left is not an error.
	assert.NoError(t, CleanFunction(outputPath))
}
