package main

import (
	"context"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Driver "pgx" for PostgreSQL servers
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/derWhity/fyyur/internal/log"
	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/repos/sqldriver"
)

const (
	dbFile         = "fyyur.db"
	pingTimeout    = 5 * time.Second
	maxWait        = 30 * time.Second
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// sqlDriver maps the configured database driver to the name of the registered database/sql driver
func sqlDriver(conf models.DatabaseConfig) (string, error) {
	switch conf.Driver {
	case models.DriverSQLite:
		return sqldriver.SQLite, nil
	case models.DriverPostgres:
		return sqldriver.PostgreSQL, nil
	}
	return "", errors.Errorf("sqlDriver: Unsupported database driver '%s'", conf.Driver)
}

// openDatabase connects to the configured database and retries until it responds. SQLite databases without DSN are
// placed inside the data directory.
func openDatabase(ctx context.Context, conf models.AppConfig, logger *logrus.Entry) (*sqlx.DB, error) {
	driver, err := sqlDriver(conf.Database)
	if err != nil {
		return nil, err
	}
	dsn := conf.Database.DSN
	if dsn == "" && driver == sqldriver.SQLite {
		dsn = "file:" + filepath.Join(conf.DataDir, dbFile) + "?_foreign_keys=1"
	}
	logger = logger.WithField(log.FldDriver, driver)
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "openDatabase: Failed to open database")
	}
	if driver == sqldriver.SQLite {
		// SQLite allows a single writer - sharing one connection avoids "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	deadline := time.Now().Add(maxWait)
	backoff := initialBackoff
	var lastErr error
	for {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()
		if lastErr == nil {
			logger.Info("Database connection established")
			return db, nil
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			break
		}
		logger.WithError(lastErr).Warnf("Database not reachable yet - retrying in %s", backoff)
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	db.Close()
	return nil, errors.Wrap(lastErr, "openDatabase: Database did not respond")
}
