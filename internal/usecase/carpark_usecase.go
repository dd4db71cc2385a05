package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/carpark-service/internal/domain"
	"github.com/carpark-service/internal/domain/repository"
	"github.com/carpark-service/internal/pkg/errors"
	"github.com/carpark-service/internal/pkg/utils"
	"github.com/carpark-service/internal/usecase/dto"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
	maxPerPage     = 100
)

// CarParkUseCase answers proximity lookups and carries the management
// operations (soft delete / restore).
type CarParkUseCase struct {
	carParkRepo repository.CarParkRepository
	geoRepo     repository.GeoIndexRepository
	logger      *zap.Logger

	searchRadiusKm    float64
	maxSearchRadiusKm float64
}

// NewCarParkUseCase - creates a new CarParkUseCase
func NewCarParkUseCase(
	carParkRepo repository.CarParkRepository,
	geoRepo repository.GeoIndexRepository,
	logger *zap.Logger,
	searchRadiusKm float64,
	maxSearchRadiusKm float64,
) *CarParkUseCase {
	return &CarParkUseCase{
		carParkRepo:       carParkRepo,
		geoRepo:           geoRepo,
		logger:            logger,
		searchRadiusKm:    searchRadiusKm,
		maxSearchRadiusKm: maxSearchRadiusKm,
	}
}

// FindNearest returns car parks with free lots around the point, closest
// first. Page 1 is served from the geo index when it can fill the page;
// anything else goes to the store directly.
func (uc *CarParkUseCase) FindNearest(ctx context.Context, req dto.NearestRequest) (*dto.NearestResponse, error) {
	if !utils.ValidateCoordinates(req.Lat, req.Lon) {
		return nil, errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
			"lat": req.Lat,
			"lon": req.Lon,
		})
	}

	if req.Page == 0 {
		req.Page = defaultPage
	}
	if req.PerPage == 0 {
		req.PerPage = defaultPerPage
	}
	if req.Page < 1 || req.PerPage < 1 || req.PerPage > maxPerPage {
		return nil, errors.ErrInvalidPageParameters.WithDetails(map[string]interface{}{
			"page":     req.Page,
			"per_page": req.PerPage,
		})
	}

	radius := uc.searchRadiusKm
	if req.RadiusKm != 0 {
		if !utils.ValidateRadius(req.RadiusKm) || req.RadiusKm > uc.maxSearchRadiusKm {
			return nil, errors.ErrInvalidRadius.WithDetails(map[string]interface{}{
				"radius_km": req.RadiusKm,
				"max_km":    uc.maxSearchRadiusKm,
			})
		}
		radius = req.RadiusKm
	}

	// The geo index has no notion of pagination, so only the first page can
	// be served from it.
	if req.Page == 1 {
		views, ok := uc.findNearestFromIndex(ctx, req.Lat, req.Lon, radius, req.PerPage)
		if ok {
			return &dto.NearestResponse{CarParks: views, Total: len(views)}, nil
		}
	}

	return uc.findNearestFromStore(ctx, req)
}

// findNearestFromIndex serves the first page from the geo index. The second
// return value reports whether the index produced a full page; a cold or
// expired index falls through to the store.
func (uc *CarParkUseCase) findNearestFromIndex(ctx context.Context, lat, lon, radiusKm float64, perPage int) ([]dto.CarParkView, bool) {
	hits, err := uc.geoRepo.RadiusSearch(ctx, lat, lon, radiusKm, perPage*2)
	if err != nil {
		uc.logger.Warn("Geo index search failed, falling back to store", zap.Error(err))
		return nil, false
	}
	if len(hits) == 0 {
		return nil, false
	}

	views := make([]dto.CarParkView, 0, perPage)
	for _, hit := range hits {
		if len(views) == perPage {
			break
		}

		carPark, err := uc.carParkRepo.FindByCode(ctx, hit.CarParkNo)
		if err != nil {
			// The index can be up to one TTL behind the store: deleted
			// entries simply drop out here.
			if err != errors.ErrCarParkNotFound {
				uc.logger.Warn("Failed to hydrate indexed car park",
					zap.String("car_park_no", hit.CarParkNo),
					zap.Error(err))
			}
			continue
		}
		if !carPark.HasAvailability() {
			continue
		}

		distance := hit.DistanceKm
		views = append(views, dto.ToCarParkView(carPark, &distance))
	}

	if len(views) < perPage {
		uc.logger.Debug("Geo index underfilled page, falling back to store",
			zap.Int("got", len(views)),
			zap.Int("per_page", perPage))
		return nil, false
	}

	return views, true
}

func (uc *CarParkUseCase) findNearestFromStore(ctx context.Context, req dto.NearestRequest) (*dto.NearestResponse, error) {
	offset := (req.Page - 1) * req.PerPage

	carParks, err := uc.carParkRepo.FindNearest(ctx, req.Lat, req.Lon, req.PerPage, offset)
	if err != nil {
		uc.logger.Error("Failed to find nearest car parks", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	views := make([]dto.CarParkView, 0, len(carParks))
	for _, carPark := range carParks {
		distance := utils.HaversineDistance(req.Lat, req.Lon, carPark.Latitude, carPark.Longitude)
		views = append(views, dto.ToCarParkView(carPark, &distance))
	}

	return &dto.NearestResponse{CarParks: views, Total: len(views)}, nil
}

// ListAvailable returns one page of car parks with free lots.
func (uc *CarParkUseCase) ListAvailable(ctx context.Context, req dto.ListAvailableRequest) (*dto.AvailableResponse, error) {
	if req.Page == 0 {
		req.Page = defaultPage
	}
	if req.PerPage == 0 {
		req.PerPage = defaultPerPage
	}
	if req.Page < 1 || req.PerPage < 1 || req.PerPage > maxPerPage {
		return nil, errors.ErrInvalidPageParameters.WithDetails(map[string]interface{}{
			"page":     req.Page,
			"per_page": req.PerPage,
		})
	}

	carParks, err := uc.carParkRepo.FindActiveWithAvailability(ctx)
	if err != nil {
		uc.logger.Error("Failed to list available car parks", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	total := len(carParks)
	start := (req.Page - 1) * req.PerPage
	if start > total {
		start = total
	}
	end := start + req.PerPage
	if end > total {
		end = total
	}

	views := make([]dto.CarParkView, 0, end-start)
	for _, carPark := range carParks[start:end] {
		views = append(views, dto.ToCarParkView(carPark, nil))
	}

	return &dto.AvailableResponse{
		CarParks: views,
		Total:    total,
		Page:     req.Page,
		PerPage:  req.PerPage,
	}, nil
}

// SoftDelete marks a car park deleted. The record is kept for audit and can
// be restored later.
func (uc *CarParkUseCase) SoftDelete(ctx context.Context, carParkNo string) error {
	deleted, err := uc.carParkRepo.SoftDelete(ctx, carParkNo, domain.SystemUser)
	if err != nil {
		uc.logger.Error("Failed to soft delete car park",
			zap.String("car_park_no", carParkNo),
			zap.Error(err))
		return errors.ErrDatabaseError
	}
	if !deleted {
		return errors.ErrCarParkNotFound
	}

	uc.logger.Info("Car park soft deleted", zap.String("car_park_no", carParkNo))
	return nil
}

// Restore clears the soft-delete marker of a car park. Restoring a car park
// that is already active is a no-op.
func (uc *CarParkUseCase) Restore(ctx context.Context, carParkNo string) error {
	carPark, err := uc.carParkRepo.FindByCodeIncludingDeleted(ctx, carParkNo)
	if err != nil {
		return err
	}
	if !carPark.IsDeleted() {
		return nil
	}

	restored, err := uc.carParkRepo.Restore(ctx, carParkNo, domain.SystemUser)
	if err != nil {
		uc.logger.Error("Failed to restore car park",
			zap.String("car_park_no", carParkNo),
			zap.Error(err))
		return errors.ErrDatabaseError
	}
	if !restored {
		return errors.ErrCarParkNotFound
	}

	uc.logger.Info("Car park restored", zap.String("car_park_no", carParkNo))
	return nil
}

// Stats reports store-level counters for the operational surface.
func (uc *CarParkUseCase) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	active, err := uc.carParkRepo.CountActive(ctx)
	if err != nil {
		uc.logger.Error("Failed to count active car parks", zap.Error(err))
		return nil, err
	}

	withAvailability, err := uc.carParkRepo.CountWithAvailability(ctx)
	if err != nil {
		uc.logger.Error("Failed to count car parks with availability", zap.Error(err))
		return nil, err
	}

	return &dto.StatsResponse{
		TotalActive:      active,
		WithAvailability: withAvailability,
	}, nil
}
