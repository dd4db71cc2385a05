package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carpark-service/internal/pkg/utils"
)

func TestHaversineDistance(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		assert.Zero(t, utils.HaversineDistance(1.30, 103.85, 1.30, 103.85))
	})

	t.Run("one degree of latitude is about 111 km", func(t *testing.T) {
		d := utils.HaversineDistance(1.0, 103.85, 2.0, 103.85)
		assert.InDelta(t, 111.19, d, 0.5)
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := utils.HaversineDistance(1.30, 103.85, 1.35, 103.90)
		d2 := utils.HaversineDistance(1.35, 103.90, 1.30, 103.85)
		assert.Equal(t, d1, d2)
	})
}

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, utils.ValidateCoordinates(1.30, 103.85))
	assert.True(t, utils.ValidateCoordinates(-90, 180))
	assert.False(t, utils.ValidateCoordinates(90.1, 103.85))
	assert.False(t, utils.ValidateCoordinates(1.30, -180.5))
}

func TestValidateRadius(t *testing.T) {
	assert.True(t, utils.ValidateRadius(0.1))
	assert.True(t, utils.ValidateRadius(100))
	assert.False(t, utils.ValidateRadius(0.05))
	assert.False(t, utils.ValidateRadius(100.5))
	assert.False(t, utils.ValidateRadius(-1))
}
