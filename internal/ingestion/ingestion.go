package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/tradenorm/internal/broker"
	"github.com/guttosm/tradenorm/internal/domain/models"
	"github.com/guttosm/tradenorm/internal/logger"
	"github.com/guttosm/tradenorm/internal/storage"
)

const (
	defaultBatchSize = 5000
	maxParallelFiles = 8
)

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.TradesRepository {
	return storage.NewTradesRepository(db)
}

// NormalizeFiles reads every path and runs one combined parse over them, in
// the order given, so cross-file lookups see all rows. A fatal decode error
// in any file fails the whole call.
func NormalizeFiles(ctx context.Context, brokerName string, paths []string) (broker.Result, error) {
	norm, err := GetNormalizer(brokerName)
	if err != nil {
		return broker.Result{}, err
	}
	files, err := readFiles(ctx, paths)
	if err != nil {
		return broker.Result{}, err
	}
	res, err := norm.ParseFiles(files...)
	if err != nil {
		return broker.Result{}, err
	}
	logger.L().Debug().Str("broker", brokerName).Int("files", len(paths)).Int("trades", len(res.Trades)).Int("warnings", len(res.Warnings)).Msg("normalized")
	return res, nil
}

// ImportFile normalizes one export and persists it.
//
// Behavior:
//   - Files are identified by the SHA-256 of their bytes.
//   - An already imported file is skipped unless force is set, in which case
//     the previous import (and its trades) is deleted first.
//   - The import row is written before the trades; if persisting the trades
//     fails the import row is removed again so a retry is not skipped.
func ImportFile(ctx context.Context, repo storage.TradesRepository, norm broker.Normalizer, fileName string, data []byte, force bool) (models.ImportResult, error) {
	rec := models.ImportRecord{
		Broker:   string(norm.Name()),
		FileName: fileName,
		FileHash: FileHash(data),
	}
	out := models.ImportResult{Record: rec, Warnings: []string{}}

	exists, err := repo.HasImport(ctx, rec.FileHash)
	if err != nil {
		return out, fmt.Errorf("check import log: %w", err)
	}
	if exists && !force {
		out.Skipped = true
		logger.L().Info().Str("file", fileName).Str("hash", rec.FileHash).Bool("skipped", true).Msg("already imported")
		return out, nil
	}

	res, err := norm.ParseWithWarnings(data)
	if err != nil {
		return out, err
	}

	if exists {
		if err := repo.DeleteImport(ctx, rec.FileHash); err != nil {
			return out, fmt.Errorf("delete existing import: %w", err)
		}
	}

	rec.ID = uuid.NewString()
	rec.TradeCount = len(res.Trades)
	rec.WarningCount = len(res.Warnings)
	if err := repo.UpsertImportLog(ctx, rec); err != nil {
		return out, fmt.Errorf("upsert import log: %w", err)
	}
	if _, err := persistTrades(ctx, repo, rec.ID, rec.Broker, res.Trades, defaultBatchSize); err != nil {
		if derr := repo.DeleteImport(ctx, rec.FileHash); derr != nil {
			logger.L().Error().Str("file", fileName).Err(derr).Msg("rollback import log failed")
		}
		return out, err
	}

	rec.ImportedAt = time.Now().UTC()
	out.Record = rec
	out.Warnings = res.Warnings
	return out, nil
}

// ProcessFiles imports each path as its own file.
//
//   - db: open *sql.DB (PostgreSQL).
//
// Behavior:
//   - Uses a concurrency limit based on CPU count (min(8, NumCPU)) unless
//     parallel is set (clamped to 1..8).
//   - If any file returns error, cancels the rest and returns that error.
func ProcessFiles(ctx context.Context, db *sql.DB, brokerName string, paths []string, parallel int, force bool) ([]models.ImportResult, error) {
	norm, err := GetNormalizer(brokerName)
	if err != nil {
		return nil, err
	}
	// use indirection to allow tests to swap repository constructor
	repo := repoCtor(db)

	maxParallel := maxParallelFiles
	if parallel > 0 {
		if parallel < maxParallel {
			maxParallel = parallel
		}
	} else if c := runtime.NumCPU(); c < maxParallel {
		maxParallel = c
	}

	logger.L().Info().Int("files", len(paths)).Str("broker", brokerName).Int("max_parallel", maxParallel).Msg("ingestion start")

	results := make([]models.ImportResult, len(paths))

	// errgroup will cancel siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

	for i, path := range paths {
		idx := i
		f := path
		sem <- struct{}{}

		g.Go(func() error {
			defer func() { <-sem }()
			start := time.Now()
			base := filepath.Base(f)
			logger.L().Info().Int("idx", idx+1).Int("total", len(paths)).Str("file", base).Msg("file start")

			files, err := readFiles(gctx, []string{f})
			if err != nil {
				logger.L().Error().Str("file", base).Err(err).Msg("read failed")
				return err
			}
			// Normalizers hold no state, so one instance serves every worker.
			res, err := ImportFile(gctx, repo, norm, base, files[0], force)
			if err != nil {
				logger.L().Error().Str("file", base).Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", f, err)
			}
			results[idx] = res
			logger.L().Info().Int("idx", idx+1).Int("total", len(paths)).Str("file", base).
				Int("trades", res.Record.TradeCount).Int("warnings", res.Record.WarningCount).
				Bool("skipped", res.Skipped).Dur("elapsed", time.Since(start)).Bool("force", force).Msg("file done")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
