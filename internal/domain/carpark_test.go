package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carpark-service/internal/domain"
)

func TestSortByDistance(t *testing.T) {
	t.Run("orders by ascending distance", func(t *testing.T) {
		results := []domain.CarParkDistance{
			{CarParkNo: "C3", DistanceKm: 5.2},
			{CarParkNo: "A1", DistanceKm: 0.4},
			{CarParkNo: "B2", DistanceKm: 2.1},
		}

		domain.SortByDistance(results)

		assert.Equal(t, "A1", results[0].CarParkNo)
		assert.Equal(t, "B2", results[1].CarParkNo)
		assert.Equal(t, "C3", results[2].CarParkNo)
	})

	t.Run("equal distances break ties by code", func(t *testing.T) {
		results := []domain.CarParkDistance{
			{CarParkNo: "Z9", DistanceKm: 1.5},
			{CarParkNo: "A1", DistanceKm: 1.5},
			{CarParkNo: "M5", DistanceKm: 1.5},
		}

		domain.SortByDistance(results)

		assert.Equal(t, "A1", results[0].CarParkNo)
		assert.Equal(t, "M5", results[1].CarParkNo)
		assert.Equal(t, "Z9", results[2].CarParkNo)
	})
}

func TestCarParkState(t *testing.T) {
	now := time.Now()

	t.Run("deleted marker", func(t *testing.T) {
		cp := domain.CarPark{CarParkNo: "A1"}
		assert.False(t, cp.IsDeleted())

		cp.DeletedAt = &now
		assert.True(t, cp.IsDeleted())
	})

	t.Run("availability requires free lots", func(t *testing.T) {
		cp := domain.CarPark{CarParkNo: "A1", AvailableLots: 3}
		assert.True(t, cp.HasAvailability())

		cp.AvailableLots = 0
		assert.False(t, cp.HasAvailability())
	})
}
