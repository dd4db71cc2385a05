package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/carpark-service/internal/domain"
	"github.com/carpark-service/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	locationsKey = "carpark:locations"
	// rebuildKey is staged off to the side and renamed over the live key so
	// readers never observe a half-built index.
	rebuildKey = "carpark:locations:rebuild"

	rebuildChunkSize = 500
)

type geoIndexRepository struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewGeoIndexRepository builds the Redis-backed geo index. The whole index
// shares one TTL; after expiry callers fall back to the backing store.
func NewGeoIndexRepository(r *Redis, ttl time.Duration) repository.GeoIndexRepository {
	return &geoIndexRepository{
		client: r.Client(),
		logger: r.logger,
		ttl:    ttl,
	}
}

func (g *geoIndexRepository) Upsert(ctx context.Context, carParkNo string, lat, lon float64) error {
	err := g.client.GeoAdd(ctx, locationsKey, &redis.GeoLocation{
		Name:      carParkNo,
		Longitude: lon,
		Latitude:  lat,
	}).Err()
	if err != nil {
		g.logger.Error("Failed to upsert geo index entry",
			zap.String("car_park_no", carParkNo), zap.Error(err))
		return fmt.Errorf("geo upsert error: %w", err)
	}

	return nil
}

func (g *geoIndexRepository) RadiusSearch(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.CarParkDistance, error) {
	query := &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  lon,
			Latitude:   lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithDist: true,
	}
	if limit > 0 {
		query.Count = limit
	}

	locations, err := g.client.GeoSearchLocation(ctx, locationsKey, query).Result()
	if err == redis.Nil {
		return nil, nil // index missing or expired, caller falls back
	}
	if err != nil {
		g.logger.Error("Geo radius search failed",
			zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		return nil, fmt.Errorf("geo radius search error: %w", err)
	}

	hits := make([]domain.CarParkDistance, 0, len(locations))
	for _, loc := range locations {
		hits = append(hits, domain.CarParkDistance{
			CarParkNo:  loc.Name,
			DistanceKm: loc.Dist,
		})
	}

	// Redis orders by distance already; re-sort for the deterministic
	// code tie-break on equal distances.
	domain.SortByDistance(hits)

	return hits, nil
}

func (g *geoIndexRepository) Rebuild(ctx context.Context, entries []domain.GeoEntry) error {
	if len(entries) == 0 {
		if err := g.client.Del(ctx, locationsKey, rebuildKey).Err(); err != nil {
			return fmt.Errorf("geo rebuild error: %w", err)
		}
		g.logger.Info("Geo index cleared, no located car parks")
		return nil
	}

	if err := g.client.Del(ctx, rebuildKey).Err(); err != nil {
		return fmt.Errorf("geo rebuild error: %w", err)
	}

	pipe := g.client.Pipeline()
	for i, entry := range entries {
		pipe.GeoAdd(ctx, rebuildKey, &redis.GeoLocation{
			Name:      entry.CarParkNo,
			Longitude: entry.Longitude,
			Latitude:  entry.Latitude,
		})

		if (i+1)%rebuildChunkSize == 0 {
			if _, err := pipe.Exec(ctx); err != nil {
				return fmt.Errorf("geo rebuild error: %w", err)
			}
			pipe = g.client.Pipeline()
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("geo rebuild error: %w", err)
	}

	// RENAME is atomic: readers see the old index right up until the new one
	// replaces it wholesale.
	if err := g.client.Rename(ctx, rebuildKey, locationsKey).Err(); err != nil {
		return fmt.Errorf("geo rebuild swap error: %w", err)
	}

	if err := g.client.Expire(ctx, locationsKey, g.ttl).Err(); err != nil {
		return fmt.Errorf("geo rebuild expire error: %w", err)
	}

	g.logger.Info("Geo index rebuilt",
		zap.Int("entries", len(entries)),
		zap.Duration("ttl", g.ttl))

	return nil
}
