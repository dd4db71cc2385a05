package usecase

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carpark-service/internal/domain"
	"github.com/carpark-service/internal/domain/repository"
	"github.com/carpark-service/internal/pkg/errors"
	"github.com/carpark-service/internal/pkg/svy21"
	"github.com/carpark-service/internal/usecase/dto"
)

// Positional columns of the bulk attribute feed.
const (
	colCarParkNo = iota
	colAddress
	colXCoord
	colYCoord
	colCarParkType
	colParkingSystem
	colShortTermParking
	colFreeParking
	colNightParking
	colDecks
	colGantryHeight
	colBasement

	attributeColumns = 12
)

// IngestUseCase runs the two feed pipelines: the bulk attribute import and
// the live availability sync. Each pipeline admits one run at a time.
type IngestUseCase struct {
	carParkRepo repository.CarParkRepository
	geoRepo     repository.GeoIndexRepository
	attrSource  repository.AttributeSource
	availSource repository.AvailabilitySource
	converter   *svy21.Converter
	logger      *zap.Logger
	batchSize   int

	importRunning atomic.Bool
	syncRunning   atomic.Bool
}

// NewIngestUseCase - creates a new IngestUseCase
func NewIngestUseCase(
	carParkRepo repository.CarParkRepository,
	geoRepo repository.GeoIndexRepository,
	attrSource repository.AttributeSource,
	availSource repository.AvailabilitySource,
	converter *svy21.Converter,
	logger *zap.Logger,
	batchSize int,
) *IngestUseCase {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &IngestUseCase{
		carParkRepo: carParkRepo,
		geoRepo:     geoRepo,
		attrSource:  attrSource,
		availSource: availSource,
		converter:   converter,
		logger:      logger,
		batchSize:   batchSize,
	}
}

// ImportCarParks streams the bulk attribute feed into the store. Rows that
// cannot be parsed or whose coordinates fall outside the configured bounds
// are skipped and counted; they never abort the run.
func (uc *IngestUseCase) ImportCarParks(ctx context.Context) (*dto.ImportResult, error) {
	if !uc.importRunning.CompareAndSwap(false, true) {
		return nil, errors.ErrImportInProgress
	}
	defer uc.importRunning.Store(false)

	runID := uuid.New().String()
	started := time.Now()
	log := uc.logger.With(zap.String("run_id", runID))
	log.Info("Starting car park import")

	result := &dto.ImportResult{RunID: runID}
	batch := make([]*domain.CarPark, 0, uc.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		for _, cp := range batch {
			if err := uc.carParkRepo.Upsert(ctx, cp); err != nil {
				log.Error("Failed to upsert car park",
					zap.String("car_park_no", cp.CarParkNo),
					zap.Error(err))
				return err
			}
			// Index the point right away so the row is findable before
			// the final rebuild.
			if err := uc.geoRepo.Upsert(ctx, cp.CarParkNo, cp.Latitude, cp.Longitude); err != nil {
				log.Warn("Failed to index car park position",
					zap.String("car_park_no", cp.CarParkNo),
					zap.Error(err))
			}
			result.Imported++
		}
		batch = batch[:0]
		return nil
	}

	malformed, err := uc.attrSource.StreamRows(ctx, func(record []string) error {
		result.Processed++

		carPark, ok := uc.parseAttributeRow(record, log)
		if !ok {
			result.Skipped++
			return nil
		}

		batch = append(batch, carPark)
		if len(batch) >= uc.batchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		log.Error("Car park import aborted", zap.Error(err))
		return nil, err
	}

	// Lines the feed codec could not parse never reach the callback; they
	// still count as processed and skipped.
	result.Processed += malformed
	result.Skipped += malformed

	// Fresh imports carry no lot counts yet, so the rebuild takes every
	// active record; the next sync narrows the index down again.
	if err := uc.rebuildGeoIndex(ctx, log, false); err != nil {
		// The store already holds the data; the index catches up on the
		// next rebuild.
		log.Warn("Geo index rebuild failed after import", zap.Error(err))
	}

	result.Duration = time.Since(started)
	result.DurationMs = result.Duration.Milliseconds()
	log.Info("Car park import finished",
		zap.Int("processed", result.Processed),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// parseAttributeRow turns one raw feed record into a car park. The second
// return value is false when the row must be skipped.
func (uc *IngestUseCase) parseAttributeRow(record []string, log *zap.Logger) (*domain.CarPark, bool) {
	if len(record) < attributeColumns {
		log.Debug("Skipping short row", zap.Int("columns", len(record)))
		return nil, false
	}

	carParkNo := strings.TrimSpace(record[colCarParkNo])
	if carParkNo == "" {
		log.Debug("Skipping row without car park number")
		return nil, false
	}

	easting, errX := strconv.ParseFloat(strings.TrimSpace(record[colXCoord]), 64)
	northing, errY := strconv.ParseFloat(strings.TrimSpace(record[colYCoord]), 64)
	if errX != nil || errY != nil {
		log.Debug("Skipping row with unparseable coordinates",
			zap.String("car_park_no", carParkNo))
		return nil, false
	}

	lat, lon, err := uc.converter.ToWGS84(easting, northing)
	if err != nil {
		log.Debug("Skipping row with out-of-bounds coordinates",
			zap.String("car_park_no", carParkNo),
			zap.Float64("x", easting),
			zap.Float64("y", northing))
		return nil, false
	}

	return &domain.CarPark{
		CarParkNo:           carParkNo,
		Address:             strings.TrimSpace(record[colAddress]),
		Latitude:            lat,
		Longitude:           lon,
		CarParkType:         strings.TrimSpace(record[colCarParkType]),
		TypeOfParkingSystem: strings.TrimSpace(record[colParkingSystem]),
		ShortTermParking:    strings.TrimSpace(record[colShortTermParking]),
		FreeParking:         strings.TrimSpace(record[colFreeParking]),
		NightParking:        strings.TrimSpace(record[colNightParking]),
		CarParkDecks:        strings.TrimSpace(record[colDecks]),
		GantryHeight:        strings.TrimSpace(record[colGantryHeight]),
		CarParkBasement:     strings.TrimSpace(record[colBasement]),
		CreatedBy:           domain.SystemUser,
		UpdatedBy:           domain.SystemUser,
	}, true
}

// SyncAvailability streams the live feed and applies lot counts to existing
// records. It never creates records: the feed carries no coordinates, so a
// code unknown to the store is counted as unmatched and dropped.
func (uc *IngestUseCase) SyncAvailability(ctx context.Context) (*dto.SyncResult, error) {
	if !uc.syncRunning.CompareAndSwap(false, true) {
		return nil, errors.ErrImportInProgress
	}
	defer uc.syncRunning.Store(false)

	runID := uuid.New().String()
	started := time.Now()
	log := uc.logger.With(zap.String("run_id", runID))
	log.Info("Starting availability sync")

	result := &dto.SyncResult{RunID: runID}
	batch := make([]domain.AvailabilitySample, 0, uc.batchSize)
	seen := make(map[string]int, uc.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		updated, err := uc.carParkRepo.BatchUpdateAvailability(ctx, batch, domain.SystemUser)
		if err != nil {
			log.Error("Failed to apply availability batch", zap.Error(err))
			return err
		}
		result.Updated += updated
		result.Unmatched += len(batch) - int(updated)
		batch = batch[:0]
		seen = make(map[string]int, uc.batchSize)
		return nil
	}

	err := uc.availSource.StreamAvailability(ctx, func(sample domain.AvailabilitySample) error {
		result.Received++
		// The feed can repeat a code; the batch update touches each row once,
		// so keep only the latest sample per code.
		if idx, ok := seen[sample.CarParkNo]; ok {
			batch[idx] = sample
			return nil
		}
		seen[sample.CarParkNo] = len(batch)
		batch = append(batch, sample)
		if len(batch) >= uc.batchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		// Batches flushed before the failure stay applied.
		log.Error("Availability sync aborted", zap.Error(err))
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr
		}
		return nil, errors.ErrUpstreamUnavailable.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}

	if err := uc.rebuildGeoIndex(ctx, log, true); err != nil {
		log.Warn("Geo index rebuild failed after sync", zap.Error(err))
	}

	result.Duration = time.Since(started)
	result.DurationMs = result.Duration.Milliseconds()
	log.Info("Availability sync finished",
		zap.Int("received", result.Received),
		zap.Int64("updated", result.Updated),
		zap.Int("unmatched", result.Unmatched),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// rebuildGeoIndex swaps the geo index to the current set of active car
// parks, optionally narrowed to ones with free lots.
func (uc *IngestUseCase) rebuildGeoIndex(ctx context.Context, log *zap.Logger, withAvailability bool) error {
	var carParks []*domain.CarPark
	var err error
	if withAvailability {
		carParks, err = uc.carParkRepo.FindActiveWithAvailability(ctx)
	} else {
		carParks, err = uc.carParkRepo.FindAllActive(ctx)
	}
	if err != nil {
		return err
	}

	entries := make([]domain.GeoEntry, 0, len(carParks))
	for _, cp := range carParks {
		entries = append(entries, domain.GeoEntry{
			CarParkNo: cp.CarParkNo,
			Latitude:  cp.Latitude,
			Longitude: cp.Longitude,
		})
	}

	if err := uc.geoRepo.Rebuild(ctx, entries); err != nil {
		return err
	}

	log.Info("Geo index rebuilt", zap.Int("entries", len(entries)))
	return nil
}
