package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/repos"
	"github.com/derWhity/fyyur/internal/testutil"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "sqlmock"), testutil.Logger()), mock
}

func TestInTxCommitsOnSuccess(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM Shows WHERE venue_id = ?`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	var removed int64
	err := s.InTx(context.Background(), func(tx repos.Tx) error {
		var err error
		removed, err = tx.Shows().DeleteByVenue(context.Background(), 7)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM Venue WHERE id = ?`)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.InTx(context.Background(), func(tx repos.Tx) error {
		return tx.Venues().Delete(context.Background(), 3)
	})
	assert.Equal(t, repos.ErrEntityNotExisting, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollsBackOnPanic(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		s.InTx(context.Background(), func(tx repos.Tx) error {
			panic("boom")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxReportsFailedCommit(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	err := s.InTx(context.Background(), func(tx repos.Tx) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxDiscardsWritesOfFailedTransaction(t *testing.T) {
	ctx := context.Background()
	s := New(testutil.OpenDB(t), testutil.Logger())
	failure := errors.New("validation failed")

	var id uint
	err := s.InTx(ctx, func(tx repos.Tx) error {
		v := &models.Venue{Name: "Boiler Room", City: "Chicago", State: "IL", Address: "123 Main St"}
		if err := tx.Venues().Create(ctx, v); err != nil {
			return err
		}
		id = v.ID
		return failure
	})
	assert.Equal(t, failure, err)
	require.NotZero(t, id)

	_, err = s.Venues().GetByID(ctx, id)
	assert.Equal(t, repos.ErrEntityNotExisting, err)

	err = s.InTx(ctx, func(tx repos.Tx) error {
		return tx.Venues().Create(ctx, &models.Venue{Name: "Boiler Room", City: "Chicago", State: "IL", Address: "123 Main St"})
	})
	require.NoError(t, err)
	list, err := s.Venues().ListWithLocation(ctx, time.Now())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
