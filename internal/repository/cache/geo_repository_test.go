package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carpark-service/internal/config"
	"github.com/carpark-service/internal/domain"
	"github.com/carpark-service/internal/repository/cache"
)

// getTestRedis connects to a local Redis or skips the test.
func getTestRedis(t *testing.T) *cache.Redis {
	r, err := cache.NewRedis(&config.RedisConfig{
		Host: "localhost",
		Port: 6379,
		DB:   1, // Use DB 1 for tests
	}, zap.NewNop())
	if err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	ctx := context.Background()
	require.NoError(t, r.Client().Del(ctx, "carpark:locations", "carpark:locations:rebuild").Err())

	return r
}

func TestGeoIndexRepository_UpsertAndRadiusSearch(t *testing.T) {
	r := getTestRedis(t)
	defer r.Close()

	repo := cache.NewGeoIndexRepository(r, 15*time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "NEAR", 1.301, 103.850))
	require.NoError(t, repo.Upsert(ctx, "MID", 1.320, 103.860))
	require.NoError(t, repo.Upsert(ctx, "FAR", 1.460, 103.990))

	t.Run("orders hits by ascending distance", func(t *testing.T) {
		hits, err := repo.RadiusSearch(ctx, 1.300, 103.850, 10, 0)

		assert.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "NEAR", hits[0].CarParkNo)
		assert.Equal(t, "MID", hits[1].CarParkNo)
		assert.Less(t, hits[0].DistanceKm, hits[1].DistanceKm)
	})

	t.Run("a wider radius only ever adds hits", func(t *testing.T) {
		narrow, err := repo.RadiusSearch(ctx, 1.300, 103.850, 5, 0)
		require.NoError(t, err)
		wide, err := repo.RadiusSearch(ctx, 1.300, 103.850, 50, 0)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, len(wide), len(narrow))
		wideCodes := make(map[string]bool, len(wide))
		for _, h := range wide {
			wideCodes[h.CarParkNo] = true
		}
		for _, h := range narrow {
			assert.True(t, wideCodes[h.CarParkNo])
		}
	})

	t.Run("limit caps the result", func(t *testing.T) {
		hits, err := repo.RadiusSearch(ctx, 1.300, 103.850, 50, 1)

		assert.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "NEAR", hits[0].CarParkNo)
	})

	t.Run("upsert moves an existing point", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, "NEAR", 1.460, 103.990))
		defer repo.Upsert(ctx, "NEAR", 1.301, 103.850)

		hits, err := repo.RadiusSearch(ctx, 1.300, 103.850, 5, 0)
		assert.NoError(t, err)
		for _, h := range hits {
			assert.NotEqual(t, "NEAR", h.CarParkNo)
		}
	})
}

func TestGeoIndexRepository_Rebuild(t *testing.T) {
	r := getTestRedis(t)
	defer r.Close()

	repo := cache.NewGeoIndexRepository(r, 15*time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "STALE", 1.301, 103.850))

	t.Run("replaces the index wholesale", func(t *testing.T) {
		err := repo.Rebuild(ctx, []domain.GeoEntry{
			{CarParkNo: "A1", Latitude: 1.301, Longitude: 103.850},
			{CarParkNo: "B2", Latitude: 1.320, Longitude: 103.860},
		})
		require.NoError(t, err)

		hits, err := repo.RadiusSearch(ctx, 1.300, 103.850, 50, 0)
		assert.NoError(t, err)
		require.Len(t, hits, 2)
		for _, h := range hits {
			assert.NotEqual(t, "STALE", h.CarParkNo)
		}

		ttl, err := r.Client().TTL(ctx, "carpark:locations").Result()
		assert.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("rebuild is idempotent", func(t *testing.T) {
		entries := []domain.GeoEntry{
			{CarParkNo: "A1", Latitude: 1.301, Longitude: 103.850},
			{CarParkNo: "B2", Latitude: 1.320, Longitude: 103.860},
		}
		require.NoError(t, repo.Rebuild(ctx, entries))
		first, err := repo.RadiusSearch(ctx, 1.300, 103.850, 50, 0)
		require.NoError(t, err)

		require.NoError(t, repo.Rebuild(ctx, entries))
		second, err := repo.RadiusSearch(ctx, 1.300, 103.850, 50, 0)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("empty rebuild clears the index", func(t *testing.T) {
		require.NoError(t, repo.Rebuild(ctx, nil))

		hits, err := repo.RadiusSearch(ctx, 1.300, 103.850, 50, 0)
		assert.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("expired index yields empty result, not an error", func(t *testing.T) {
		err := repo.Rebuild(ctx, []domain.GeoEntry{
			{CarParkNo: "A1", Latitude: 1.301, Longitude: 103.850},
		})
		require.NoError(t, err)
		require.NoError(t, r.Client().Del(ctx, "carpark:locations").Err())

		hits, err := repo.RadiusSearch(ctx, 1.300, 103.850, 50, 0)
		assert.NoError(t, err)
		assert.Empty(t, hits)
	})
}
