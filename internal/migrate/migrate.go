// Package migrate handles SQL database migration for the Fyyur database
package migrate

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/derWhity/fyyur/internal/repos/sqldriver"
)

type dbMigration struct {
	Version uint
	Queries []string
}

// Execute runs the current DB migration on the given database. All queries of a migration and the bookkeeping entry
// are written inside one transaction.
func (mig *dbMigration) Execute(ctx context.Context, db *sqlx.DB, logger *logrus.Entry) error {
	// Check if the migration has already run
	query := db.Rebind(`SELECT success FROM Migrations WHERE version = ?`)
	var success = false
	err := db.QueryRowxContext(ctx, query, mig.Version).Scan(&success)
	if err != nil && err != sql.ErrNoRows {
		logger.WithError(err).Error("Failed to fetch version information")
		return err
	}
	if success {
		return nil
	}
	// We need to execute this migration
	logger.Infof("Executing DB migration #%d", mig.Version)
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "Execute: Failed to start transaction")
	}
	for i, query := range mig.Queries {
		logger.Debugf("Query %d of %d...", (i + 1), len(mig.Queries))
		if _, err := tx.ExecContext(ctx, query); err != nil {
			logger.WithError(err).Errorf("Query #%d failed", (i + 1))
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.WithError(rbErr).Error("Rollback of failed migration failed")
			}
			return err
		}
	}
	// Queries executed successfully - save our status
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM Migrations WHERE version = ?`), mig.Version); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "Execute: Failed to clear migration status")
	}
	query = tx.Rebind(`INSERT INTO Migrations(version, success) VALUES(?, ?)`)
	if _, err := tx.ExecContext(ctx, query, mig.Version, true); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "Execute: Failed to save migration status")
	}
	return errors.Wrap(tx.Commit(), "Execute: Failed to commit migration")
}

// ExecuteMigrationsOnDb executes the database migrations matching the database's driver on the given database
func ExecuteMigrationsOnDb(ctx context.Context, db *sqlx.DB, logger *logrus.Entry) error {
	migrations, err := migrationsFor(db.DriverName())
	if err != nil {
		return err
	}
	// Create the migrations table if it does not exist, yet
	query := `CREATE TABLE IF NOT EXISTS Migrations (
                version   INTEGER NOT NULL,
                success   BOOLEAN NOT NULL DEFAULT FALSE,
                PRIMARY KEY(version)
            )`
	if _, err := db.ExecContext(ctx, query); err != nil {
		logger.WithError(err).Error("Failed to create migrations table")
		return err
	}
	for _, mig := range migrations {
		if err := mig.Execute(ctx, db, logger); err != nil {
			logger.WithError(err).Errorf("Failed to execute migration #%d", mig.Version)
			return err
		}
	}
	return nil
}

func migrationsFor(driverName string) ([]dbMigration, error) {
	switch driverName {
	case "sqlite3", sqldriver.SQLite:
		return sqliteMigrations, nil
	case sqldriver.PostgreSQL, "postgres":
		return postgresMigrations, nil
	}
	return nil, errors.Errorf("migrationsFor: No migrations for database driver '%s'", driverName)
}

// Indices shared by all dialects
var indexQueries = []string{
	`CREATE UNIQUE INDEX idx_venue_name_address ON Venue (name, address);`,
	`CREATE INDEX idx_venue_location ON Venue (state, city);`,
	`CREATE INDEX idx_shows_venue ON Shows (venue_id, start_time);`,
	`CREATE INDEX idx_shows_artist ON Shows (artist_id, start_time);`,
}

var sqliteMigrations = []dbMigration{
	{
		Version: 1,
		Queries: []string{
			`CREATE TABLE Venue (
                id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
                name VARCHAR(120) NOT NULL,
                city VARCHAR(120) NOT NULL,
                state VARCHAR(2) NOT NULL,
                address VARCHAR(120) NOT NULL,
                phone VARCHAR(120) NOT NULL DEFAULT '',
                image_link VARCHAR(500) NOT NULL DEFAULT '',
                facebook_link VARCHAR(120) NOT NULL DEFAULT '',
                website_link VARCHAR(120) NOT NULL DEFAULT '',
                genres VARCHAR(500) NOT NULL DEFAULT '',
                seeking_talent BOOLEAN NOT NULL DEFAULT 0,
                seeking_description VARCHAR(500) NOT NULL DEFAULT '',
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
            );`,
			`CREATE TABLE Artist (
                id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
                name VARCHAR(120) NOT NULL,
                city VARCHAR(120) NOT NULL,
                state VARCHAR(2) NOT NULL,
                phone VARCHAR(120) NOT NULL,
                image_link VARCHAR(500) NOT NULL DEFAULT '',
                facebook_link VARCHAR(120) NOT NULL DEFAULT '',
                website_link VARCHAR(120) NOT NULL DEFAULT '',
                genres VARCHAR(500) NOT NULL DEFAULT '',
                seeking_venue BOOLEAN NOT NULL DEFAULT 0,
                seeking_description VARCHAR(500) NOT NULL DEFAULT '',
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
            );`,
			`CREATE TABLE Shows (
                id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
                artist_id INTEGER NOT NULL REFERENCES Artist(id),
                venue_id INTEGER NOT NULL REFERENCES Venue(id),
                start_time DATETIME NOT NULL
            );`,
		},
	},
	{
		Version: 2,
		Queries: indexQueries,
	},
}

var postgresMigrations = []dbMigration{
	{
		Version: 1,
		Queries: []string{
			`CREATE TABLE Venue (
                id SERIAL PRIMARY KEY,
                name VARCHAR(120) NOT NULL,
                city VARCHAR(120) NOT NULL,
                state VARCHAR(2) NOT NULL,
                address VARCHAR(120) NOT NULL,
                phone VARCHAR(120) NOT NULL DEFAULT '',
                image_link VARCHAR(500) NOT NULL DEFAULT '',
                facebook_link VARCHAR(120) NOT NULL DEFAULT '',
                website_link VARCHAR(120) NOT NULL DEFAULT '',
                genres VARCHAR(500) NOT NULL DEFAULT '',
                seeking_talent BOOLEAN NOT NULL DEFAULT FALSE,
                seeking_description VARCHAR(500) NOT NULL DEFAULT '',
                created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
                updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
            );`,
			`CREATE TABLE Artist (
                id SERIAL PRIMARY KEY,
                name VARCHAR(120) NOT NULL,
                city VARCHAR(120) NOT NULL,
                state VARCHAR(2) NOT NULL,
                phone VARCHAR(120) NOT NULL,
                image_link VARCHAR(500) NOT NULL DEFAULT '',
                facebook_link VARCHAR(120) NOT NULL DEFAULT '',
                website_link VARCHAR(120) NOT NULL DEFAULT '',
                genres VARCHAR(500) NOT NULL DEFAULT '',
                seeking_venue BOOLEAN NOT NULL DEFAULT FALSE,
                seeking_description VARCHAR(500) NOT NULL DEFAULT '',
                created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
                updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
            );`,
			`CREATE TABLE Shows (
                id SERIAL PRIMARY KEY,
                artist_id INTEGER NOT NULL REFERENCES Artist(id),
                venue_id INTEGER NOT NULL REFERENCES Venue(id),
                start_time TIMESTAMPTZ NOT NULL
            );`,
		},
	},
	{
		Version: 2,
		Queries: indexQueries,
	},
}
