package pargethttp

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mveld/parget/internal/utils"
)

func writePart(t *testing.T, outputPath string, spec utils.RangeSpec, content []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(utils.TempDirFor(outputPath), 0755))
	partPath := utils.PartFilePath(outputPath, spec.Start)
	require.NoError(t, os.WriteFile(partPath, content, 0644))
	return partPath
}

func TestMergeConcatenatesInRangeOrder(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "merged.bin")
	specs := []utils.RangeSpec{
		{Index: 0, Start: 0, End: 3},
		{Index: 1, Start: 4, End: 7},
	}
	first := []byte{0xAA, 0xAB, 0xAC, 0xAD}
	second := []byte{0xB0, 0xB1, 0xB2, 0xB3}

	// Write parts in reverse completion order; merge order comes from the
	// specs, not from fetch completion.
	secondPath := writePart(t, outputPath, specs[1], second)
	firstPath := writePart(t, outputPath, specs[0], first)

	written, err := mergeParts(outputPath, specs)
	require.NoError(t, err)
	assert.Equal(t, int64(8), written)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, first...), second...), content)

	assert.NoFileExists(t, firstPath, "parts are deleted after a successful merge")
	assert.NoFileExists(t, secondPath)
	assert.NoDirExists(t, utils.TempDirFor(outputPath), "empty temp dir is removed")
}

func TestMergeMissingPart(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "merged.bin")
	specs := []utils.RangeSpec{
		{Index: 0, Start: 0, End: 3},
		{Index: 1, Start: 4, End: 7},
	}
	laterPath := writePart(t, outputPath, specs[1], []byte{1, 2, 3, 4})

	_, err := mergeParts(outputPath, specs)
	assert.ErrorIs(t, err, utils.ErrMissingPart)
	assert.FileExists(t, laterPath, "unconsumed parts survive a failed merge")
}

func TestMergeTruncatedPart(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "merged.bin")
	specs := []utils.RangeSpec{
		{Index: 0, Start: 0, End: 9},
	}
	writePart(t, outputPath, specs[0], bytes.Repeat([]byte{7}, 4))

	_, err := mergeParts(outputPath, specs)
	assert.ErrorIs(t, err, utils.ErrMissingPart)
}

func TestMergeNoRangesProducesEmptyFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.bin")
	written, err := mergeParts(outputPath, nil)
	require.NoError(t, err)
	assert.Zero(t, written)

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
