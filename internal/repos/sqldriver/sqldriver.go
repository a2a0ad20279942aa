// Package sqldriver registers the SQLite driver used by Fyyur and classifies the errors returned by the supported
// database drivers
package sqldriver

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// SQLite is the name of the SQLite driver with Unicode-aware case folding
	SQLite = "sqlite3_fyyur"
	// PostgreSQL is the name of the pgx standard library driver
	PostgreSQL = "pgx"

	pgUniqueViolation = "23505"
)

func init() {
	sql.Register(SQLite, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// The built-in LOWER() only knows ASCII letters. Replace it so it folds like LikePattern does.
			return conn.RegisterFunc("lower", Lower, true)
		},
	})
	sqlx.BindDriver(SQLite, sqlx.QUESTION)
}

// Lower lower-cases the given string using Unicode rules
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// IsUniqueViolation checks if the error was caused by a UNIQUE constraint of the database
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
