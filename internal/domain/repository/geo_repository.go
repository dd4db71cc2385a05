package repository

import (
	"context"

	"github.com/carpark-service/internal/domain"
)

// GeoIndexRepository is the in-memory geo index over car park positions.
// It is a rebuildable mirror of the backing store: losing it costs latency,
// never correctness.
type GeoIndexRepository interface {
	// Upsert inserts or moves a single point; idempotent.
	Upsert(ctx context.Context, carParkNo string, lat, lon float64) error

	// RadiusSearch returns codes within radiusKm of the point, ordered by
	// ascending distance with ties broken by code. An expired or empty index
	// yields an empty slice, not an error.
	RadiusSearch(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.CarParkDistance, error)

	// Rebuild atomically replaces the whole index with the given entries and
	// re-arms the shared TTL. Readers see either the old or the new index,
	// never a partial one.
	Rebuild(ctx context.Context, entries []domain.GeoEntry) error
}
