package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/guttosm/tradenorm/internal/domain/models"
	"github.com/guttosm/tradenorm/internal/storage"
)

// readFiles loads every path, stopping early if ctx is cancelled.
func readFiles(ctx context.Context, paths []string) ([][]byte, error) {
	files := make([][]byte, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, data)
	}
	return files, nil
}

// FileHash is the hex SHA-256 of a file's bytes; it keys import idempotency
// and the normalize cache.
func FileHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// persistTrades writes trades in batches of at most batch rows.
//
// Parameters:
//   - ctx:      context for cancellation/timeouts.
//   - repo:     repository for DB insertion.
//   - importID: owning import row, which must already exist.
//   - batch:    batch size for inserts (e.g., 5000).
func persistTrades(ctx context.Context, repo storage.TradesRepository, importID, brokerName string, trades []models.Trade, batch int) (int, error) {
	if batch <= 0 {
		batch = defaultBatchSize
	}
	total := 0
	for start := 0; start < len(trades); start += batch {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		end := start + batch
		if end > len(trades) {
			end = len(trades)
		}
		if err := repo.InsertTradesBatch(ctx, importID, brokerName, trades[start:end]); err != nil {
			return total, fmt.Errorf("flush batch ending row %d: %w", end, err)
		}
		total += end - start
	}
	return total, nil
}
