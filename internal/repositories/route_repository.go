package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "tripplanner/internal/config"
	"tripplanner/internal/db"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
)

var errNoDB = errors.New("database not connected")

// RouteRepository persists route facts keyed by ordered place pair.
type RouteRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func (r RouteRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Get loads the fact stored for exactly (origin, destination).
func (r RouteRepository) Get(ctx context.Context, origin, destination string) (models.RouteFact, error) {
	conn := r.db()
	if conn == nil {
		return models.RouteFact{}, errNoDB
	}
	var (
		out    models.RouteFact
		source string
	)
	err := conn.QueryRowContext(ctx, `SELECT origin, destination, distance_km, time_hours, fare_pkr, base_safety_score, source, fetched_at
FROM route_facts WHERE origin = ? AND destination = ?`, origin, destination).Scan(
		&out.Origin,
		&out.Destination,
		&out.DistanceKM,
		&out.TimeHours,
		&out.FarePKR,
		&out.BaseSafetyScore,
		&source,
		&out.FetchedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RouteFact{}, domain.NotFoundError{Resource: "route fact", Err: err}
		}
		return models.RouteFact{}, err
	}
	out.Source = domain.RouteSource(source)
	out.FetchedAt = out.FetchedAt.UTC()
	return out, nil
}

// Upsert writes the fact atomically; the last writer for a pair wins.
func (r RouteRepository) Upsert(ctx context.Context, f models.RouteFact) error {
	conn := r.db()
	if conn == nil {
		return errNoDB
	}
	_, err := conn.ExecContext(ctx, r.Dialect.UpsertRouteFactSQL(),
		f.Origin,
		f.Destination,
		f.DistanceKM,
		f.TimeHours,
		f.FarePKR,
		f.BaseSafetyScore,
		string(f.Source),
		f.FetchedAt.UTC(),
	)
	return err
}

// Count reports how many facts are stored, used by the db-check endpoint.
func (r RouteRepository) Count(ctx context.Context) (int, error) {
	conn := r.db()
	if conn == nil {
		return 0, errNoDB
	}
	var n int
	err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM route_facts`).Scan(&n)
	return n, err
}
