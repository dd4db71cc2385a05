package repository

import (
	"context"

	"github.com/carpark-service/internal/domain"
)

// AttributeSource streams raw rows from the bulk attribute feed. Only this feed
// may originate car park records: it is the sole source of coordinates. Columns
// map positionally to (code, address, x, y, type, system, short-term, free,
// night, decks, gantry height, basement).
type AttributeSource interface {
	// StreamRows reads the feed row by row, skipping the header, and invokes fn
	// for each raw record. Lines the codec cannot parse are dropped; their
	// count is returned so the caller can account for them. An fn error aborts
	// the stream.
	StreamRows(ctx context.Context, fn func(record []string) error) (int, error)
}

// AvailabilitySource streams availability samples from the live feed without
// materializing the payload. It carries no coordinates, so it can never create
// records, only update them.
type AvailabilitySource interface {
	// StreamAvailability fetches the feed and invokes fn per parsed sample.
	// Fetch or payload-level failures abort the stream; fn errors do too.
	StreamAvailability(ctx context.Context, fn func(sample domain.AvailabilitySample) error) error
}
