package repository

import (
	"context"

	"github.com/carpark-service/internal/domain"
)

// CarParkRepository is the backing store contract. The store owns canonical
// state; every "active" query filters soft-deleted records transparently.
type CarParkRepository interface {
	// FindByCode returns an active car park by its facility code.
	FindByCode(ctx context.Context, carParkNo string) (*domain.CarPark, error)

	// FindByCodeIncludingDeleted returns a car park regardless of its
	// soft-delete marker. Used by restore.
	FindByCodeIncludingDeleted(ctx context.Context, carParkNo string) (*domain.CarPark, error)

	// FindAllActive returns every active car park.
	FindAllActive(ctx context.Context) ([]*domain.CarPark, error)

	// FindActiveWithAvailability returns active car parks with free lots.
	FindActiveWithAvailability(ctx context.Context) ([]*domain.CarPark, error)

	// FindNearest returns active car parks with free lots ordered by distance
	// from the point, paginated with limit/offset.
	FindNearest(ctx context.Context, lat, lon float64, limit, offset int) ([]*domain.CarPark, error)

	// Upsert inserts a car park or overwrites its descriptive fields and
	// position, keyed by facility code. Used by the bulk attribute feed.
	Upsert(ctx context.Context, carPark *domain.CarPark) error

	// BatchUpdateAvailability applies availability samples to existing active
	// records in one statement. Unknown codes are ignored; the number of rows
	// actually updated is returned.
	BatchUpdateAvailability(ctx context.Context, samples []domain.AvailabilitySample, updatedBy string) (int64, error)

	// SoftDelete marks a car park deleted. Returns false when no active record
	// matched the code.
	SoftDelete(ctx context.Context, carParkNo, deletedBy string) (bool, error)

	// Restore clears the soft-delete marker. Returns false when no deleted
	// record matched the code.
	Restore(ctx context.Context, carParkNo, restoredBy string) (bool, error)

	// CountActive returns the number of active car parks.
	CountActive(ctx context.Context) (int64, error)

	// CountWithAvailability returns the number of active car parks with free lots.
	CountWithAvailability(ctx context.Context) (int64, error)
}
