package migrate

import (
	"context"
	"io"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemoryDB(t *testing.T) *sqlx.DB {
	db, err := sqlx.Open("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared&_foreign_keys=1")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestExecuteMigrationsOnDb(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)

	require.NoError(t, ExecuteMigrationsOnDb(ctx, db, quietLogger()))
	// Running a second time must be a no-op
	require.NoError(t, ExecuteMigrationsOnDb(ctx, db, quietLogger()))

	var versions []uint
	require.NoError(t, db.Select(&versions, `SELECT version FROM Migrations WHERE success ORDER BY version`))
	assert.Equal(t, []uint{1, 2}, versions)

	for _, table := range []string{"Venue", "Artist", "Shows"} {
		var n int
		require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table))
		assert.Equal(t, 1, n, table)
	}
}

func TestVenueNameAddressIsUnique(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)
	require.NoError(t, ExecuteMigrationsOnDb(ctx, db, quietLogger()))

	insert := `INSERT INTO Venue(name, city, state, address) VALUES('The Musical Hop', 'San Francisco', 'CA', ?)`
	_, err := db.Exec(insert, "1015 Folsom Street")
	require.NoError(t, err)
	_, err = db.Exec(insert, "1015 Folsom Street")
	assert.Error(t, err)
	_, err = db.Exec(insert, "1016 Folsom Street")
	assert.NoError(t, err)
}

func TestShowsReferenceVenueAndArtist(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)
	require.NoError(t, ExecuteMigrationsOnDb(ctx, db, quietLogger()))

	_, err := db.Exec(`INSERT INTO Shows(artist_id, venue_id, start_time) VALUES(99, 99, '2030-01-01 20:00:00')`)
	assert.Error(t, err, "foreign keys must be enforced")
}

func TestMigrationsFor(t *testing.T) {
	m, err := migrationsFor("sqlite3")
	require.NoError(t, err)
	assert.NotEmpty(t, m)
	m, err = migrationsFor("pgx")
	require.NoError(t, err)
	assert.NotEmpty(t, m)
	_, err = migrationsFor("mysql")
	assert.Error(t, err)
}
