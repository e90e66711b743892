package pargethttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/mveld/parget/internal/utils"
)

// fetchRange downloads one byte range into its part file. A part file that
// already holds a prefix of the range is resumed with a narrowed ranged
// request; an oversized part is refetched from scratch. Progress deltas go
// to progressCh and ctx is polled once per buffer, so cancellation lands
// between chunks and leaves the part file as a resumable prefix. The
// fetcher never retries and never touches any file but its own part.
func fetchRange(ctx context.Context, client utils.HTTPDoer, url, outputPath string, spec utils.RangeSpec, progressCh chan<- int64) error {
	partPath := utils.PartFilePath(outputPath, spec.Start)
	expectedSize := spec.Size()
	var resumeOffset int64
	if fileInfo, err := os.Stat(partPath); err == nil {
		existing := fileInfo.Size()
		switch {
		case existing == expectedSize:
			// Range already fully fetched in an earlier run
			progressCh <- existing
			return nil
		case existing > 0 && existing < expectedSize:
			resumeOffset = existing
		}
	}

	flag := os.O_WRONLY | os.O_CREATE
	if resumeOffset > 0 {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}
	partFile, err := os.OpenFile(partPath, flag, 0644)
	if err != nil {
		return fmt.Errorf("error opening part file %s: %v: %w", partPath, err, utils.ErrIO)
	}
	defer partFile.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("error creating range request: %v: %w", err, utils.ErrTransport)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", spec.Start+resumeOffset, spec.End))
	req.Header.Set("Connection", "keep-alive")
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("range [%d,%d] aborted: %w", spec.Start, spec.End, context.Cause(ctx))
		}
		return fmt.Errorf("error requesting range [%d,%d]: %v: %w", spec.Start, spec.End, err, utils.ErrTransport)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("unexpected status code %d for range [%d,%d]: %w", resp.StatusCode, spec.Start, spec.End, utils.ErrTransport)
	}

	if resumeOffset > 0 {
		progressCh <- resumeOffset
	}
	buffer := make([]byte, utils.DefaultBufferSize)
	var newBytes int64
	for {
		if ctx.Err() != nil {
			return fmt.Errorf("range [%d,%d] cancelled: %w", spec.Start, spec.End, context.Cause(ctx))
		}
		bytesRead, readErr := resp.Body.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := partFile.Write(buffer[:bytesRead]); writeErr != nil {
				return fmt.Errorf("error writing part file %s: %v: %w", partPath, writeErr, utils.ErrIO)
			}
			newBytes += int64(bytesRead)
			progressCh <- int64(bytesRead)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("range [%d,%d] cancelled: %w", spec.Start, spec.End, context.Cause(ctx))
			}
			return fmt.Errorf("error reading response body: %v: %w", readErr, utils.ErrTransport)
		}
	}
	if resumeOffset+newBytes != expectedSize {
		return fmt.Errorf("range [%d,%d]: got %d of %d bytes: %w", spec.Start, spec.End, resumeOffset+newBytes, expectedSize, utils.ErrTransport)
	}
	return nil
}
