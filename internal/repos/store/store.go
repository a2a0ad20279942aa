// Package store bundles the SQL repositories and runs them inside explicit transactions
package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/derWhity/fyyur/internal/repos"
	artistrepo "github.com/derWhity/fyyur/internal/repos/artist/sqldb"
	showrepo "github.com/derWhity/fyyur/internal/repos/show/sqldb"
	venuerepo "github.com/derWhity/fyyur/internal/repos/venue/sqldb"
)

// scope is a set of repositories bound to the same database handle or transaction
type scope struct {
	venues  *venuerepo.VenueRepo
	artists *artistrepo.ArtistRepo
	shows   *showrepo.ShowRepo
}

func newScope(db repos.DBTX, logger *logrus.Entry) *scope {
	return &scope{
		venues:  venuerepo.New(db, logger),
		artists: artistrepo.New(db, logger),
		shows:   showrepo.New(db, logger),
	}
}

func (s *scope) Venues() repos.VenueRepo   { return s.venues }
func (s *scope) Artists() repos.ArtistRepo { return s.artists }
func (s *scope) Shows() repos.ShowRepo     { return s.shows }

// Store is the SQL implementation of repos.Store
type Store struct {
	*scope
	db     *sqlx.DB
	logger *logrus.Entry
}

// New creates a new store working on the given database
func New(db *sqlx.DB, logger *logrus.Entry) *Store {
	return &Store{
		scope:  newScope(db, logger),
		db:     db,
		logger: logger,
	}
}

// InTx runs fn with repositories bound to a new transaction. The transaction is committed when fn returns nil and
// rolled back when fn fails or panics.
func (s *Store) InTx(ctx context.Context, fn func(tx repos.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "InTx: Failed to start transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.WithError(rbErr).Error("Rollback after panic failed")
			}
			panic(p)
		}
	}()
	if err = fn(newScope(tx, s.logger)); err != nil {
		return repos.DoRollback(tx, err)
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "InTx: Failed to commit transaction")
	}
	return nil
}
