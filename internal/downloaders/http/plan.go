package pargethttp

import (
	"fmt"

	"github.com/mveld/parget/internal/utils"
)

// Plan partitions [0, totalSize) into at most connections contiguous
// ranges. Every range except the last spans totalSize/connections bytes;
// the last one absorbs the division remainder so the union covers the full
// span with no gap or overlap. Zero-width slots (more connections than
// bytes) are dropped, so totalSize == 0 yields no ranges. The output
// depends only on the inputs.
func Plan(totalSize int64, connections int) ([]utils.RangeSpec, error) {
	if connections < 1 {
		return nil, fmt.Errorf("connection count %d: %w", connections, utils.ErrInvalidConfig)
	}
	if totalSize < 0 {
		return nil, fmt.Errorf("total size %d: %w", totalSize, utils.ErrInvalidConfig)
	}
	chunkSize := totalSize / int64(connections)
	var specs []utils.RangeSpec
	var currentPosition int64
	for i := 0; i < connections; i++ {
		startByte := currentPosition
		endByte := startByte + chunkSize - 1
		if i == connections-1 {
			endByte = totalSize - 1
		}
		if endByte < startByte {
			continue
		}
		specs = append(specs, utils.RangeSpec{
			Index: len(specs),
			Start: startByte,
			End:   endByte,
		})
		currentPosition = endByte + 1
	}
	return specs, nil
}
