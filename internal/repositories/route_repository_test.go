package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	intconfig "tripplanner/internal/config"
	"tripplanner/internal/db"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteRepositoryUpsertMySQL(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	fetched := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO route_facts") + ".*ON DUPLICATE KEY UPDATE").
		WithArgs("islamabad", "murree", 64.2, 1.6, int64(211), 80, "live", fetched).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := RouteRepository{DB: conn, Dialect: db.MySQL}
	err = repo.Upsert(context.Background(), models.RouteFact{
		Origin:          "islamabad",
		Destination:     "murree",
		DistanceKM:      64.2,
		TimeHours:       1.6,
		FarePKR:         211,
		BaseSafetyScore: 80,
		Source:          domain.SourceLive,
		FetchedAt:       fetched,
	})
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRouteRepositoryGetMySQL(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	fetched := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT origin, destination, distance_km").
		WithArgs("islamabad", "murree").
		WillReturnRows(sqlmock.NewRows([]string{"origin", "destination", "distance_km", "time_hours", "fare_pkr", "base_safety_score", "source", "fetched_at"}).
			AddRow("islamabad", "murree", 64.2, 1.6, 211, 80, "live", fetched))
	mock.ExpectQuery("SELECT origin, destination, distance_km").
		WithArgs("murree", "islamabad").
		WillReturnRows(sqlmock.NewRows([]string{"origin"}))

	repo := RouteRepository{DB: conn, Dialect: db.MySQL}
	got, err := repo.Get(context.Background(), "islamabad", "murree")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.DistanceKM != 64.2 || got.Source != domain.SourceLive || !got.FetchedAt.Equal(fetched) {
		t.Fatalf("unexpected fact %+v", got)
	}

	_, err = repo.Get(context.Background(), "murree", "islamabad")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRouteRepositoryFallsBackToSharedDB(t *testing.T) {
	prev := intconfig.DB
	intconfig.DB = nil
	defer func() { intconfig.DB = prev }()

	_, err := RouteRepository{}.Get(context.Background(), "a", "b")
	if err == nil {
		t.Fatalf("expected error without a database")
	}
}

func TestRouteRepositorySQLiteRoundTrip(t *testing.T) {
	conn, err := intconfig.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer conn.Close()
	ctx := context.Background()
	require.NoError(t, db.EnsureSchema(ctx, conn, db.SQLite))

	repo := RouteRepository{DB: conn, Dialect: db.SQLite}
	first := models.RouteFact{
		Origin: "islamabad", Destination: "swat", DistanceKM: 270, TimeHours: 5, FarePKR: 725,
		BaseSafetyScore: 70, Source: domain.SourceLive, FetchedAt: time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Upsert(ctx, first))

	second := first
	second.DistanceKM = 268.5
	second.FetchedAt = first.FetchedAt.Add(24 * time.Hour)
	require.NoError(t, repo.Upsert(ctx, second))

	got, err := repo.Get(ctx, "islamabad", "swat")
	require.NoError(t, err)
	assert.Equal(t, 268.5, got.DistanceKM)
	assert.True(t, got.FetchedAt.Equal(second.FetchedAt))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = repo.Get(ctx, "swat", "islamabad")
	assert.True(t, domain.IsNotFound(err))
}
