package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/carpark-service/internal/domain"
)

// MockCarParkRepository is a mock of CarParkRepository
type MockCarParkRepository struct {
	mock.Mock
}

func (m *MockCarParkRepository) FindByCode(ctx context.Context, carParkNo string) (*domain.CarPark, error) {
	args := m.Called(ctx, carParkNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CarPark), args.Error(1)
}

func (m *MockCarParkRepository) FindByCodeIncludingDeleted(ctx context.Context, carParkNo string) (*domain.CarPark, error) {
	args := m.Called(ctx, carParkNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CarPark), args.Error(1)
}

func (m *MockCarParkRepository) FindAllActive(ctx context.Context) ([]*domain.CarPark, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CarPark), args.Error(1)
}

func (m *MockCarParkRepository) FindActiveWithAvailability(ctx context.Context) ([]*domain.CarPark, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CarPark), args.Error(1)
}

func (m *MockCarParkRepository) FindNearest(ctx context.Context, lat, lon float64, limit, offset int) ([]*domain.CarPark, error) {
	args := m.Called(ctx, lat, lon, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CarPark), args.Error(1)
}

func (m *MockCarParkRepository) Upsert(ctx context.Context, carPark *domain.CarPark) error {
	args := m.Called(ctx, carPark)
	return args.Error(0)
}

func (m *MockCarParkRepository) BatchUpdateAvailability(ctx context.Context, samples []domain.AvailabilitySample, updatedBy string) (int64, error) {
	args := m.Called(ctx, samples, updatedBy)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCarParkRepository) SoftDelete(ctx context.Context, carParkNo, deletedBy string) (bool, error) {
	args := m.Called(ctx, carParkNo, deletedBy)
	return args.Bool(0), args.Error(1)
}

func (m *MockCarParkRepository) Restore(ctx context.Context, carParkNo, restoredBy string) (bool, error) {
	args := m.Called(ctx, carParkNo, restoredBy)
	return args.Bool(0), args.Error(1)
}

func (m *MockCarParkRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCarParkRepository) CountWithAvailability(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockGeoIndexRepository is a mock of GeoIndexRepository
type MockGeoIndexRepository struct {
	mock.Mock
}

func (m *MockGeoIndexRepository) Upsert(ctx context.Context, carParkNo string, lat, lon float64) error {
	args := m.Called(ctx, carParkNo, lat, lon)
	return args.Error(0)
}

func (m *MockGeoIndexRepository) RadiusSearch(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.CarParkDistance, error) {
	args := m.Called(ctx, lat, lon, radiusKm, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CarParkDistance), args.Error(1)
}

func (m *MockGeoIndexRepository) Rebuild(ctx context.Context, entries []domain.GeoEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

// MockAttributeSource is a mock of AttributeSource backed by fixed rows
type MockAttributeSource struct {
	mock.Mock
	Rows      [][]string
	Malformed int
}

func (m *MockAttributeSource) StreamRows(ctx context.Context, fn func(record []string) error) (int, error) {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return 0, err
	}
	for _, row := range m.Rows {
		if err := fn(row); err != nil {
			return m.Malformed, err
		}
	}
	return m.Malformed, nil
}

// MockAvailabilitySource is a mock of AvailabilitySource backed by fixed samples
type MockAvailabilitySource struct {
	mock.Mock
	Samples []domain.AvailabilitySample
}

func (m *MockAvailabilitySource) StreamAvailability(ctx context.Context, fn func(sample domain.AvailabilitySample) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	for _, sample := range m.Samples {
		if err := fn(sample); err != nil {
			return err
		}
	}
	return nil
}
