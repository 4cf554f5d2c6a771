package db

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUpsertRouteFactSQLPerDialect(t *testing.T) {
	my := MySQL.UpsertRouteFactSQL()
	if !strings.Contains(my, "ON DUPLICATE KEY UPDATE") {
		t.Fatalf("mysql upsert missing ON DUPLICATE KEY: %s", my)
	}
	lite := SQLite.UpsertRouteFactSQL()
	if !strings.Contains(lite, "ON CONFLICT (origin, destination) DO UPDATE") {
		t.Fatalf("sqlite upsert missing ON CONFLICT: %s", lite)
	}
}

func TestParseDialect(t *testing.T) {
	if ParseDialect(" MySQL ") != MySQL {
		t.Fatalf("expected mysql dialect")
	}
	if ParseDialect("sqlite") != SQLite || ParseDialect("") != SQLite {
		t.Fatalf("expected sqlite dialect")
	}
}

func TestEnsureSchemaMySQL(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS route_facts").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS safety_alerts").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := EnsureSchema(context.Background(), conn, MySQL); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
