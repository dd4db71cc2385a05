package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/carpark-service/internal/domain"
	"github.com/carpark-service/internal/pkg/errors"
	"github.com/carpark-service/internal/domain/repository"
	"github.com/carpark-service/internal/pkg/svy21"
	"github.com/carpark-service/internal/usecase"
)

// Near the projection origin, well inside the Singapore bounds.
const (
	testEasting  = "28001.642"
	testNorthing = "38744.572"
)

func testConverter() *svy21.Converter {
	return svy21.New(svy21.SingaporeBounds)
}

func attributeRow(code string) []string {
	return []string{
		code, "BLK 1 TEST STREET", testEasting, testNorthing,
		"SURFACE CAR PARK", "ELECTRONIC PARKING", "WHOLE DAY",
		"NO", "YES", "1", "4.5", "N",
	}
}

func newIngestUC(
	repo *MockCarParkRepository,
	geo *MockGeoIndexRepository,
	attr *MockAttributeSource,
	avail repository.AvailabilitySource,
	batchSize int,
) *usecase.IngestUseCase {
	return usecase.NewIngestUseCase(repo, geo, attr, avail, testConverter(), zap.NewNop(), batchSize)
}

func TestIngestUseCase_ImportCarParks(t *testing.T) {
	ctx := context.Background()

	t.Run("imports rows and skips the broken ones", func(t *testing.T) {
		repo := &MockCarParkRepository{}
		geo := &MockGeoIndexRepository{}
		attr := &MockAttributeSource{Rows: [][]string{
			attributeRow("A1"),
			{"SHORT", "ROW"},
			{"B2", "ADDR", "not-a-number", testNorthing, "", "", "", "", "", "", "", ""},
			{"C3", "ADDR", testEasting, "1000000", "", "", "", "", "", "", "", ""},
			attributeRow("D4"),
		}}
		avail := &MockAvailabilitySource{}
		uc := newIngestUC(repo, geo, attr, avail, 2)

		attr.On("StreamRows", ctx).Return(nil)
		repo.On("Upsert", ctx, mock.AnythingOfType("*domain.CarPark")).Return(nil)
		geo.On("Upsert", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("float64"), mock.AnythingOfType("float64")).Return(nil)
		repo.On("FindAllActive", ctx).Return([]*domain.CarPark{
			{CarParkNo: "A1", Latitude: 1.3667, Longitude: 103.8333},
			{CarParkNo: "D4", Latitude: 1.3667, Longitude: 103.8333},
		}, nil)
		geo.On("Rebuild", ctx, mock.AnythingOfType("[]domain.GeoEntry")).Return(nil)

		result, err := uc.ImportCarParks(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 5, result.Processed)
		assert.Equal(t, 2, result.Imported)
		assert.Equal(t, 3, result.Skipped)
		assert.NotEmpty(t, result.RunID)
		repo.AssertNumberOfCalls(t, "Upsert", 2)
		geo.AssertCalled(t, "Rebuild", ctx, mock.AnythingOfType("[]domain.GeoEntry"))
	})

	t.Run("converted rows carry WGS84 coordinates", func(t *testing.T) {
		repo := &MockCarParkRepository{}
		geo := &MockGeoIndexRepository{}
		attr := &MockAttributeSource{Rows: [][]string{attributeRow("A1")}}
		uc := newIngestUC(repo, geo, attr, &MockAvailabilitySource{}, 100)

		var imported *domain.CarPark
		attr.On("StreamRows", ctx).Return(nil)
		repo.On("Upsert", ctx, mock.AnythingOfType("*domain.CarPark")).Run(func(args mock.Arguments) {
			imported = args.Get(1).(*domain.CarPark)
		}).Return(nil)
		geo.On("Upsert", ctx, "A1", mock.AnythingOfType("float64"), mock.AnythingOfType("float64")).Return(nil)
		repo.On("FindAllActive", ctx).Return([]*domain.CarPark{}, nil)
		geo.On("Rebuild", ctx, mock.AnythingOfType("[]domain.GeoEntry")).Return(nil)

		_, err := uc.ImportCarParks(ctx)

		assert.NoError(t, err)
		assert.NotNil(t, imported)
		assert.InDelta(t, 1.3667, imported.Latitude, 0.001)
		assert.InDelta(t, 103.8333, imported.Longitude, 0.001)
		assert.Equal(t, domain.SystemUser, imported.CreatedBy)
	})

	t.Run("malformed feed lines count as processed and skipped", func(t *testing.T) {
		repo := &MockCarParkRepository{}
		geo := &MockGeoIndexRepository{}
		attr := &MockAttributeSource{Rows: [][]string{attributeRow("A1")}, Malformed: 2}
		uc := newIngestUC(repo, geo, attr, &MockAvailabilitySource{}, 100)

		attr.On("StreamRows", ctx).Return(nil)
		repo.On("Upsert", ctx, mock.AnythingOfType("*domain.CarPark")).Return(nil)
		geo.On("Upsert", ctx, "A1", mock.AnythingOfType("float64"), mock.AnythingOfType("float64")).Return(nil)
		repo.On("FindAllActive", ctx).Return([]*domain.CarPark{}, nil)
		geo.On("Rebuild", ctx, mock.AnythingOfType("[]domain.GeoEntry")).Return(nil)

		result, err := uc.ImportCarParks(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 3, result.Processed)
		assert.Equal(t, 1, result.Imported)
		assert.Equal(t, 2, result.Skipped)
	})

	t.Run("store failure aborts the run", func(t *testing.T) {
		repo := &MockCarParkRepository{}
		geo := &MockGeoIndexRepository{}
		attr := &MockAttributeSource{Rows: [][]string{attributeRow("A1")}}
		uc := newIngestUC(repo, geo, attr, &MockAvailabilitySource{}, 1)

		attr.On("StreamRows", ctx).Return(nil)
		repo.On("Upsert", ctx, mock.AnythingOfType("*domain.CarPark")).Return(errors.ErrDatabaseError)

		_, err := uc.ImportCarParks(ctx)

		assert.Error(t, err)
		geo.AssertNotCalled(t, "Rebuild", mock.Anything, mock.Anything)
	})
}

func TestIngestUseCase_SyncAvailability(t *testing.T) {
	ctx := context.Background()

	sample := func(code string, available int) domain.AvailabilitySample {
		return domain.AvailabilitySample{
			CarParkNo:     code,
			TotalLots:     100,
			AvailableLots: available,
			LotType:       "C",
		}
	}

	t.Run("applies samples in batches and counts unmatched", func(t *testing.T) {
		repo := &MockCarParkRepository{}
		geo := &MockGeoIndexRepository{}
		avail := &MockAvailabilitySource{Samples: []domain.AvailabilitySample{
			sample("A1", 10),
			sample("B2", 0),
			sample("UNKNOWN", 7),
		}}
		uc := newIngestUC(repo, geo, &MockAttributeSource{}, avail, 2)

		avail.On("StreamAvailability", ctx).Return(nil)
		// First batch of 2 fully matches, the trailing batch of 1 does not.
		repo.On("BatchUpdateAvailability", ctx, mock.AnythingOfType("[]domain.AvailabilitySample"), domain.SystemUser).
			Return(int64(2), nil).Once()
		repo.On("BatchUpdateAvailability", ctx, mock.AnythingOfType("[]domain.AvailabilitySample"), domain.SystemUser).
			Return(int64(0), nil).Once()
		repo.On("FindActiveWithAvailability", ctx).Return([]*domain.CarPark{
			{CarParkNo: "A1", Latitude: 1.3667, Longitude: 103.8333},
		}, nil)
		geo.On("Rebuild", ctx, mock.AnythingOfType("[]domain.GeoEntry")).Return(nil)

		result, err := uc.SyncAvailability(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 3, result.Received)
		assert.Equal(t, int64(2), result.Updated)
		assert.Equal(t, 1, result.Unmatched)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate codes collapse to the latest sample", func(t *testing.T) {
		repo := &MockCarParkRepository{}
		geo := &MockGeoIndexRepository{}
		avail := &MockAvailabilitySource{Samples: []domain.AvailabilitySample{
			sample("A1", 10),
			sample("A1", 4),
			sample("B2", 7),
		}}
		uc := newIngestUC(repo, geo, &MockAttributeSource{}, avail, 100)

		var applied []domain.AvailabilitySample
		avail.On("StreamAvailability", ctx).Return(nil)
		repo.On("BatchUpdateAvailability", ctx, mock.AnythingOfType("[]domain.AvailabilitySample"), domain.SystemUser).
			Run(func(args mock.Arguments) {
				applied = append([]domain.AvailabilitySample(nil), args.Get(1).([]domain.AvailabilitySample)...)
			}).
			Return(int64(2), nil).Once()
		repo.On("FindActiveWithAvailability", ctx).Return([]*domain.CarPark{}, nil)
		geo.On("Rebuild", ctx, mock.AnythingOfType("[]domain.GeoEntry")).Return(nil)

		result, err := uc.SyncAvailability(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 3, result.Received)
		assert.Equal(t, int64(2), result.Updated)
		// The repeated code is one row in the store, not an unmatched sample.
		assert.Equal(t, 0, result.Unmatched)
		assert.Len(t, applied, 2)
		assert.Equal(t, "A1", applied[0].CarParkNo)
		assert.Equal(t, 4, applied[0].AvailableLots)
	})

	t.Run("repeating a sync leaves counters stable", func(t *testing.T) {
		repo := &MockCarParkRepository{}
		geo := &MockGeoIndexRepository{}
		avail := &MockAvailabilitySource{Samples: []domain.AvailabilitySample{sample("A1", 10)}}
		uc := newIngestUC(repo, geo, &MockAttributeSource{}, avail, 100)

		avail.On("StreamAvailability", ctx).Return(nil)
		repo.On("BatchUpdateAvailability", ctx, mock.AnythingOfType("[]domain.AvailabilitySample"), domain.SystemUser).
			Return(int64(1), nil)
		repo.On("FindActiveWithAvailability", ctx).Return([]*domain.CarPark{}, nil)
		geo.On("Rebuild", ctx, mock.AnythingOfType("[]domain.GeoEntry")).Return(nil)

		first, err := uc.SyncAvailability(ctx)
		assert.NoError(t, err)
		second, err := uc.SyncAvailability(ctx)
		assert.NoError(t, err)

		assert.Equal(t, first.Updated, second.Updated)
		assert.Equal(t, first.Unmatched, second.Unmatched)
	})

	t.Run("unreachable feed surfaces as upstream error", func(t *testing.T) {
		repo := &MockCarParkRepository{}
		geo := &MockGeoIndexRepository{}
		avail := &MockAvailabilitySource{}
		uc := newIngestUC(repo, geo, &MockAttributeSource{}, avail, 100)

		avail.On("StreamAvailability", ctx).Return(errors.ErrUpstreamUnavailable)

		_, err := uc.SyncAvailability(ctx)

		appErr, ok := err.(*errors.AppError)
		assert.True(t, ok)
		assert.Equal(t, "UPSTREAM_UNAVAILABLE", appErr.Code)
		geo.AssertNotCalled(t, "Rebuild", mock.Anything, mock.Anything)
	})

	t.Run("second concurrent run is rejected", func(t *testing.T) {
		repo := &MockCarParkRepository{}
		geo := &MockGeoIndexRepository{}

		release := make(chan struct{})
		started := make(chan struct{})
		avail := &blockingAvailabilitySource{started: started, release: release}
		uc := newIngestUC(repo, geo, &MockAttributeSource{}, avail, 100)

		repo.On("FindActiveWithAvailability", ctx).Return([]*domain.CarPark{}, nil)
		geo.On("Rebuild", ctx, mock.AnythingOfType("[]domain.GeoEntry")).Return(nil)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.SyncAvailability(ctx)
			assert.NoError(t, err)
		}()

		<-started
		_, err := uc.SyncAvailability(ctx)
		assert.Equal(t, errors.ErrImportInProgress, err)

		close(release)
		wg.Wait()
	})
}

// blockingAvailabilitySource holds the stream open until released, to model
// a run still in flight.
type blockingAvailabilitySource struct {
	started chan struct{}
	release chan struct{}
}

func (s *blockingAvailabilitySource) StreamAvailability(ctx context.Context, fn func(domain.AvailabilitySample) error) error {
	close(s.started)
	<-s.release
	return nil
}
