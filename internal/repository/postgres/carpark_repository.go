package postgres

import (
	"context"
	"database/sql"

	"github.com/carpark-service/internal/domain"
	"github.com/carpark-service/internal/domain/repository"
	"github.com/carpark-service/internal/pkg/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const carParkColumns = `
	id, car_park_no, address, latitude, longitude,
	total_lots, available_lots, lot_type, car_park_type, type_of_parking_system,
	short_term_parking, free_parking, night_parking,
	car_park_decks, gantry_height, car_park_basement,
	created_at, created_by, updated_at, updated_by, deleted_at
`

type carParkRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewCarParkRepository(db *DB) repository.CarParkRepository {
	return &carParkRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *carParkRepository) FindByCode(ctx context.Context, carParkNo string) (*domain.CarPark, error) {
	query := `
		SELECT ` + carParkColumns + `
		FROM car_parks
		WHERE car_park_no = $1 AND deleted_at IS NULL
	`

	cp, err := r.scanOne(r.db.QueryRowContext(ctx, query, carParkNo))
	if err == sql.ErrNoRows {
		return nil, errors.ErrCarParkNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get car park by code", zap.String("car_park_no", carParkNo), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	return cp, nil
}

func (r *carParkRepository) FindByCodeIncludingDeleted(ctx context.Context, carParkNo string) (*domain.CarPark, error) {
	query := `
		SELECT ` + carParkColumns + `
		FROM car_parks
		WHERE car_park_no = $1
	`

	cp, err := r.scanOne(r.db.QueryRowContext(ctx, query, carParkNo))
	if err == sql.ErrNoRows {
		return nil, errors.ErrCarParkNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get car park by code", zap.String("car_park_no", carParkNo), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	return cp, nil
}

func (r *carParkRepository) FindAllActive(ctx context.Context) ([]*domain.CarPark, error) {
	query := `
		SELECT ` + carParkColumns + `
		FROM car_parks
		WHERE deleted_at IS NULL
		ORDER BY car_park_no
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to get active car parks", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	defer rows.Close()

	return r.scanRows(rows)
}

func (r *carParkRepository) FindActiveWithAvailability(ctx context.Context) ([]*domain.CarPark, error) {
	query := `
		SELECT ` + carParkColumns + `
		FROM car_parks
		WHERE deleted_at IS NULL AND available_lots > 0
		ORDER BY car_park_no
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to get car parks with availability", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	defer rows.Close()

	return r.scanRows(rows)
}

func (r *carParkRepository) FindNearest(ctx context.Context, lat, lon float64, limit, offset int) ([]*domain.CarPark, error) {
	query := `
		WITH point AS (
			SELECT ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography AS geom
		)
		SELECT ` + carParkColumns + `
		FROM car_parks, point
		WHERE deleted_at IS NULL
		  AND available_lots > 0
		ORDER BY ST_Distance(location::geography, point.geom)
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, query, lon, lat, limit, offset)
	if err != nil {
		r.logger.Error("Failed to find nearest car parks",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err),
		)
		return nil, errors.ErrDatabaseError
	}
	defer rows.Close()

	return r.scanRows(rows)
}

func (r *carParkRepository) Upsert(ctx context.Context, cp *domain.CarPark) error {
	query := `
		INSERT INTO car_parks (
			car_park_no, address, latitude, longitude, location,
			total_lots, available_lots, car_park_type, type_of_parking_system,
			short_term_parking, free_parking, night_parking,
			car_park_decks, gantry_height, car_park_basement,
			created_at, created_by, updated_at, updated_by
		) VALUES (
			$1, $2, $3, $4, ST_SetSRID(ST_MakePoint($4, $3), 4326),
			$5, $6, $7, $8,
			$9, $10, $11,
			$12, $13, $14,
			NOW(), $15, NOW(), $15
		)
		ON CONFLICT (car_park_no) DO UPDATE SET
			address = EXCLUDED.address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			location = EXCLUDED.location,
			car_park_type = EXCLUDED.car_park_type,
			type_of_parking_system = EXCLUDED.type_of_parking_system,
			short_term_parking = EXCLUDED.short_term_parking,
			free_parking = EXCLUDED.free_parking,
			night_parking = EXCLUDED.night_parking,
			car_park_decks = EXCLUDED.car_park_decks,
			gantry_height = EXCLUDED.gantry_height,
			car_park_basement = EXCLUDED.car_park_basement,
			updated_at = NOW(),
			updated_by = EXCLUDED.updated_by
	`

	_, err := r.db.ExecContext(ctx, query,
		cp.CarParkNo, cp.Address, cp.Latitude, cp.Longitude,
		cp.TotalLots, cp.AvailableLots, cp.CarParkType, cp.TypeOfParkingSystem,
		cp.ShortTermParking, cp.FreeParking, cp.NightParking,
		cp.CarParkDecks, cp.GantryHeight, cp.CarParkBasement,
		domain.SystemUser,
	)
	if err != nil {
		r.logger.Error("Failed to upsert car park", zap.String("car_park_no", cp.CarParkNo), zap.Error(err))
		return errors.ErrDatabaseError
	}

	return nil
}

// BatchUpdateAvailability applies all samples in a single multi-row update.
// The availability feed carries no coordinates, so codes without an active
// record are simply not matched.
func (r *carParkRepository) BatchUpdateAvailability(ctx context.Context, samples []domain.AvailabilitySample, updatedBy string) (int64, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	codes := make([]string, len(samples))
	totals := make([]int64, len(samples))
	available := make([]int64, len(samples))
	lotTypes := make([]string, len(samples))
	for i, s := range samples {
		codes[i] = s.CarParkNo
		totals[i] = int64(s.TotalLots)
		available[i] = int64(s.AvailableLots)
		lotTypes[i] = s.LotType
	}

	query := `
		UPDATE car_parks AS cp
		SET total_lots = v.total_lots,
		    available_lots = v.available_lots,
		    lot_type = v.lot_type,
		    updated_at = NOW(),
		    updated_by = $5
		FROM (
			SELECT unnest($1::text[]) AS car_park_no,
			       unnest($2::int[]) AS total_lots,
			       unnest($3::int[]) AS available_lots,
			       unnest($4::text[]) AS lot_type
		) AS v
		WHERE cp.car_park_no = v.car_park_no
		  AND cp.deleted_at IS NULL
	`

	res, err := r.db.ExecContext(ctx, query,
		pq.Array(codes), pq.Array(totals), pq.Array(available), pq.Array(lotTypes), updatedBy,
	)
	if err != nil {
		r.logger.Error("Failed to batch update availability", zap.Int("batch_size", len(samples)), zap.Error(err))
		return 0, errors.ErrDatabaseError
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return 0, errors.ErrDatabaseError
	}

	return updated, nil
}

func (r *carParkRepository) SoftDelete(ctx context.Context, carParkNo, deletedBy string) (bool, error) {
	query := `
		UPDATE car_parks
		SET deleted_at = NOW(), updated_at = NOW(), updated_by = $2
		WHERE car_park_no = $1 AND deleted_at IS NULL
	`

	res, err := r.db.ExecContext(ctx, query, carParkNo, deletedBy)
	if err != nil {
		r.logger.Error("Failed to soft delete car park", zap.String("car_park_no", carParkNo), zap.Error(err))
		return false, errors.ErrDatabaseError
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.ErrDatabaseError
	}

	return affected > 0, nil
}

func (r *carParkRepository) Restore(ctx context.Context, carParkNo, restoredBy string) (bool, error) {
	query := `
		UPDATE car_parks
		SET deleted_at = NULL, updated_at = NOW(), updated_by = $2
		WHERE car_park_no = $1 AND deleted_at IS NOT NULL
	`

	res, err := r.db.ExecContext(ctx, query, carParkNo, restoredBy)
	if err != nil {
		r.logger.Error("Failed to restore car park", zap.String("car_park_no", carParkNo), zap.Error(err))
		return false, errors.ErrDatabaseError
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.ErrDatabaseError
	}

	return affected > 0, nil
}

func (r *carParkRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM car_parks WHERE deleted_at IS NULL`,
	).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count active car parks", zap.Error(err))
		return 0, errors.ErrDatabaseError
	}
	return count, nil
}

func (r *carParkRepository) CountWithAvailability(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM car_parks WHERE deleted_at IS NULL AND available_lots > 0`,
	).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count car parks with availability", zap.Error(err))
		return 0, errors.ErrDatabaseError
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *carParkRepository) scanOne(row rowScanner) (*domain.CarPark, error) {
	var cp domain.CarPark
	err := row.Scan(
		&cp.ID, &cp.CarParkNo, &cp.Address, &cp.Latitude, &cp.Longitude,
		&cp.TotalLots, &cp.AvailableLots, &cp.LotType, &cp.CarParkType, &cp.TypeOfParkingSystem,
		&cp.ShortTermParking, &cp.FreeParking, &cp.NightParking,
		&cp.CarParkDecks, &cp.GantryHeight, &cp.CarParkBasement,
		&cp.CreatedAt, &cp.CreatedBy, &cp.UpdatedAt, &cp.UpdatedBy, &cp.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (r *carParkRepository) scanRows(rows *sql.Rows) ([]*domain.CarPark, error) {
	var carParks []*domain.CarPark
	for rows.Next() {
		cp, err := r.scanOne(rows)
		if err != nil {
			r.logger.Error("Failed to scan car park row", zap.Error(err))
			return nil, errors.ErrDatabaseError
		}
		carParks = append(carParks, cp)
	}
	// A mid-iteration failure must surface as an error, never as a shorter
	// result set.
	if err := rows.Err(); err != nil {
		r.logger.Error("Car park row iteration failed", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return carParks, nil
}
