package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/carpark-service/internal/pkg/errors"
	"github.com/carpark-service/internal/usecase"
	"github.com/carpark-service/internal/worker"
)

// runTimeout bounds a single sync against a hanging upstream.
const runTimeout = 5 * time.Minute

// AvailabilityWorker periodically pulls the live availability feed.
type AvailabilityWorker struct {
	*worker.BaseWorker
	ingestUC *usecase.IngestUseCase
	interval time.Duration
}

// NewAvailabilityWorker creates a new AvailabilityWorker
func NewAvailabilityWorker(
	ingestUC *usecase.IngestUseCase,
	interval time.Duration,
	logger *zap.Logger,
) *AvailabilityWorker {
	return &AvailabilityWorker{
		BaseWorker: worker.NewBaseWorker("availability-sync", logger),
		ingestUC:   ingestUC,
		interval:   interval,
	}
}

// Start runs the sync loop. The first sync happens immediately, then once
// per interval. A failed run is logged and retried on the next tick.
func (w *AvailabilityWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting AvailabilityWorker",
		zap.Duration("interval", w.interval))

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case <-ticker.C:
			// The stop signal can race a pending tick.
			if w.IsStopped() {
				logger.Info("Worker stopped")
				return nil
			}
			w.runOnce(ctx)
		}
	}
}

func (w *AvailabilityWorker) runOnce(ctx context.Context) {
	logger := w.Logger()

	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	result, err := w.ingestUC.SyncAvailability(runCtx)
	if err != nil {
		// A manually triggered run may already hold the slot; that is
		// not a failure of this worker.
		if err == errors.ErrImportInProgress {
			logger.Info("Sync already in progress, skipping tick")
			return
		}
		logger.Error("Availability sync failed", zap.Error(err))
		return
	}

	logger.Info("Availability sync completed",
		zap.String("run_id", result.RunID),
		zap.Int("received", result.Received),
		zap.Int64("updated", result.Updated),
		zap.Int("unmatched", result.Unmatched))
}
