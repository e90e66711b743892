package pargethttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mveld/parget/internal/utils"
)

// PerformSimpleDownload streams the whole resource over one connection.
// Used when the server doesn't honor range requests or only one connection
// is configured. The body lands in a single part file that is renamed onto
// the output path when complete, so an interrupted run resumes from the
// part's length.
func PerformSimpleDownload(ctx context.Context, url, outputPath string, client utils.HTTPDoer, progressCh chan<- int64) (int64, error) {
	log := utils.GetLogger("http/simple")
	if err := os.MkdirAll(utils.TempDirFor(outputPath), 0755); err != nil {
		return 0, fmt.Errorf("error creating temp directory: %v: %w", err, utils.ErrIO)
	}
	tempOutputPath := utils.PartFilePath(outputPath, 0)

	var resumeOffset int64
	fileMode := os.O_CREATE | os.O_WRONLY
	if fileInfo, err := os.Stat(tempOutputPath); err == nil && fileInfo.Size() > 0 {
		resumeOffset = fileInfo.Size()
		fileMode |= os.O_APPEND
	} else {
		fileMode |= os.O_TRUNC
	}
	outFile, err := os.OpenFile(tempOutputPath, fileMode, 0644)
	if err != nil {
		return 0, fmt.Errorf("error opening part file: %v: %w", err, utils.ErrIO)
	}
	defer func() { outFile.Close() }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating GET request: %v: %w", err, utils.ErrTransport)
	}
	if resumeOffset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeOffset))
	}
	req.Header.Set("Connection", "keep-alive")
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("download aborted: %w", context.Cause(ctx))
		}
		return 0, fmt.Errorf("error executing GET request: %v: %w", err, utils.ErrTransport)
	}
	defer resp.Body.Close()

	if resumeOffset > 0 {
		if resp.StatusCode != http.StatusPartialContent {
			log.Warn().Int("status", resp.StatusCode).Msg("server ignored resume range, restarting from scratch")
			outFile.Close()
			outFile, err = os.OpenFile(tempOutputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
			if err != nil {
				return 0, fmt.Errorf("error recreating part file: %v: %w", err, utils.ErrIO)
			}
			resumeOffset = 0
		} else {
			progressCh <- resumeOffset
		}
	} else if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d: %w", resp.StatusCode, utils.ErrTransport)
	}

	buffer := make([]byte, utils.DefaultBufferSize)
	var written int64
	for {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("download cancelled: %w", context.Cause(ctx))
		}
		bytesRead, readErr := resp.Body.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := outFile.Write(buffer[:bytesRead]); writeErr != nil {
				return 0, fmt.Errorf("error writing part file: %v: %w", writeErr, utils.ErrIO)
			}
			written += int64(bytesRead)
			progressCh <- int64(bytesRead)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				return 0, fmt.Errorf("download cancelled: %w", context.Cause(ctx))
			}
			return 0, fmt.Errorf("error reading response body: %v: %w", readErr, utils.ErrTransport)
		}
	}
	outFile.Sync()
	outFile.Close()
	if err := os.Rename(tempOutputPath, outputPath); err != nil {
		return 0, fmt.Errorf("error finalizing output file: %v: %w", err, utils.ErrIO)
	}
	tempDir := filepath.Dir(tempOutputPath)
	if entries, err := os.ReadDir(tempDir); err == nil && len(entries) == 0 {
		os.Remove(tempDir)
	}
	return resumeOffset + written, nil
}
