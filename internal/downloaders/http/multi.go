package pargethttp

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/mveld/parget/internal/utils"
)

// PerformMultiDownload runs the full ranged download for a known file size:
// plan the partition, fetch every range concurrently, then merge the parts
// into the output file. The fetch phase waits for all ranges to reach a
// terminal state before acting on the first failure, so siblings of a
// failed range drain cooperatively and their part files stay resumable.
// Merging happens only when every range succeeded.
func PerformMultiDownload(ctx context.Context, config utils.DownloadConfig, client utils.HTTPDoer, fileSize int64, progressCh chan<- int64) (int64, error) {
	log := utils.GetLogger("http/multi")
	specs, err := Plan(fileSize, config.Connections)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(utils.TempDirFor(config.OutputPath), 0755); err != nil {
		return 0, fmt.Errorf("error creating temp directory: %v: %w", err, utils.ErrIO)
	}
	log.Debug().Int("ranges", len(specs)).Int64("fileSize", fileSize).Msg("starting ranged download")

	// A plain errgroup (no derived context) waits for every fetch and
	// keeps the first error, which is exactly the cooperative-drain
	// policy: a failed range must not kill its siblings mid-write.
	var eg errgroup.Group
	for _, spec := range specs {
		spec := spec
		eg.Go(func() error {
			return fetchRange(ctx, client, config.URL, config.OutputPath, spec, progressCh)
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("download cancelled: %w", context.Cause(ctx))
	}

	totalWritten, err := mergeParts(config.OutputPath, specs)
	if err != nil {
		return totalWritten, err
	}
	if totalWritten != fileSize {
		return totalWritten, fmt.Errorf("merged %d bytes, expected %d: %w", totalWritten, fileSize, utils.ErrMissingPart)
	}
	log.Debug().Int64("bytes", totalWritten).Str("output", config.OutputPath).Msg("ranged download complete")
	return totalWritten, nil
}
