package pargethttp

import (
	"fmt"
	"io"
	"os"

	"github.com/mveld/parget/internal/utils"
)

// mergeParts concatenates part files into the output file, strictly in
// range order, and removes each part only after it copied in full. On any
// failure the remaining parts are left on disk so the job can resume; the
// output file is then partial and unusable.
func mergeParts(outputPath string, specs []utils.RangeSpec) (int64, error) {
	destFile, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("error creating output file: %v: %w", err, utils.ErrIO)
	}
	defer destFile.Close()

	var totalWritten int64
	for _, spec := range specs {
		partPath := utils.PartFilePath(outputPath, spec.Start)
		partFile, err := os.Open(partPath)
		if err != nil {
			if os.IsNotExist(err) {
				return totalWritten, fmt.Errorf("range [%d,%d]: %w", spec.Start, spec.End, utils.ErrMissingPart)
			}
			return totalWritten, fmt.Errorf("error opening part file %s: %v: %w", partPath, err, utils.ErrIO)
		}
		written, err := io.Copy(destFile, partFile)
		partFile.Close()
		if err != nil {
			return totalWritten, fmt.Errorf("error copying part file %s: %v: %w", partPath, err, utils.ErrIO)
		}
		if written != spec.Size() {
			return totalWritten, fmt.Errorf("range [%d,%d]: part holds %d of %d bytes: %w", spec.Start, spec.End, written, spec.Size(), utils.ErrMissingPart)
		}
		totalWritten += written
		os.Remove(partPath)
	}

	// Drop the temp dir once the last part is consumed
	tempDir := utils.TempDirFor(outputPath)
	if entries, err := os.ReadDir(tempDir); err == nil && len(entries) == 0 {
		os.Remove(tempDir)
	}
	return totalWritten, nil
}
