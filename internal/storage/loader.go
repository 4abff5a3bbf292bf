package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultBatchSize is used when Config.BatchSize is zero.
const DefaultBatchSize = 5000

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// the provided rows (aligned to 'columns' order) and return the number of rows
// reported as inserted. It should cancel promptly when ctx is done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// CopyBatches slices rows into batches of batchSize and calls copyFn for each
// one. It returns the total reported by copyFn and the first error.
//
// Progress is logged per batch when there is more than one.
func CopyBatches(
	ctx context.Context,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total   int64
		batches int
		start   = time.Now()
		multi   = len(rows) > batchSize
	)
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := lo + batchSize
		if hi > len(rows) {
			hi = len(rows)
		}
		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			log.Printf("loader: copy failed batch=%d after=%d total=%d err=%v", batches+1, n, total, err)
			return total, err
		}
		batches++
		if multi {
			elapsed := time.Since(start)
			rps := float64(0)
			if elapsed > 0 {
				rps = float64(total) / elapsed.Seconds()
			}
			log.Printf("loader: batch #%d inserted=%s total=%s/%s rps=%.0f elapsed=%s",
				batches, humanize.Comma(n), humanize.Comma(total), humanize.Comma(int64(len(rows))),
				rps, elapsed.Truncate(time.Millisecond))
		}
	}
	return total, nil
}
