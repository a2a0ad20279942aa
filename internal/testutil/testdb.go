// Package testutil provides helpers shared by the tests of several packages
package testutil

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/derWhity/fyyur/internal/migrate"
	"github.com/derWhity/fyyur/internal/repos/sqldriver"
)

// Logger returns a logger that discards everything
func Logger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// OpenDB opens a fresh, fully migrated in-memory SQLite database that is closed when the test ends
func OpenDB(t testing.TB) *sqlx.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := sqlx.Open(sqldriver.SQLite, dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	// The in-memory database lives as long as its only connection
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := migrate.ExecuteMigrationsOnDb(context.Background(), db, Logger()); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}
