package sqldriver

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowerFoldsUnicode(t *testing.T) {
	db, err := sqlx.Open(SQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	defer db.Close()

	var folded string
	require.NoError(t, db.Get(&folded, db.Rebind(`SELECT LOWER(?)`), "Über ÅRHUS Café"))
	assert.Equal(t, "über århus café", folded)
	assert.Equal(t, folded, Lower("Über ÅRHUS Café"))
	assert.Equal(t, sqlx.QUESTION, sqlx.BindType(SQLite))
}

func TestIsUniqueViolation(t *testing.T) {
	unique := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	notNull := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(errors.Wrap(unique, "Create: Failed to insert venue")))
	assert.False(t, IsUniqueViolation(notNull))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("connection lost")))
	assert.False(t, IsUniqueViolation(nil))
}
