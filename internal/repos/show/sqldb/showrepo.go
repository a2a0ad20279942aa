// Package sqldb provides a show repository that stores its data inside a SQL database (SQLite or PostgreSQL)
package sqldb

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/derWhity/fyyur/internal/log"
	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/repos"
)

const (
	listingSelect = `SELECT s.id, s.venue_id, v.name AS venue_name, v.image_link AS venue_image_link,
        s.artist_id, a.name AS artist_name, a.image_link AS artist_image_link, s.start_time
        FROM Shows s
        JOIN Venue v ON v.id = s.venue_id
        JOIN Artist a ON a.id = s.artist_id`
	listingOrder = `ORDER BY s.start_time ASC, s.id ASC`
)

// ShowRepo is a repository that stores shows inside a SQL database
type ShowRepo struct {
	db     repos.DBTX
	logger *logrus.Entry
}

// New creates a new show repository instance working on the given database handle or transaction
func New(db repos.DBTX, logger *logrus.Entry) *ShowRepo {
	return &ShowRepo{
		db:     db,
		logger: logger,
	}
}

// Create creates a new show and fills in its ID
func (r *ShowRepo) Create(ctx context.Context, s *models.Show) error {
	r.logger.WithFields(logrus.Fields{
		log.FldVenue:  s.VenueID,
		log.FldArtist: s.ArtistID,
	}).Debug("Adding new show")
	s.StartTime = repos.DBTime(s.StartTime)
	query := r.db.Rebind("INSERT INTO Shows(artist_id, venue_id, start_time) VALUES(?, ?, ?) RETURNING id")
	if err := r.db.QueryRowxContext(ctx, query, s.ArtistID, s.VenueID, s.StartTime).Scan(&s.ID); err != nil {
		return errors.Wrap(err, "Create: Failed to insert show")
	}
	return nil
}

// List returns all shows joined with their venue and artist
func (r *ShowRepo) List(ctx context.Context) ([]models.ShowListing, error) {
	return r.list(ctx, listingSelect+" "+listingOrder)
}

// ListByVenue returns all shows played at the given venue
func (r *ShowRepo) ListByVenue(ctx context.Context, venueID uint) ([]models.ShowListing, error) {
	return r.list(ctx, listingSelect+" WHERE s.venue_id = ? "+listingOrder, venueID)
}

// ListByArtist returns all shows played by the given artist
func (r *ShowRepo) ListByArtist(ctx context.Context, artistID uint) ([]models.ShowListing, error) {
	return r.list(ctx, listingSelect+" WHERE s.artist_id = ? "+listingOrder, artistID)
}

func (r *ShowRepo) list(ctx context.Context, query string, args ...interface{}) ([]models.ShowListing, error) {
	ret := []models.ShowListing{}
	if err := sqlx.SelectContext(ctx, r.db, &ret, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "Failed to query shows")
	}
	for i := range ret {
		ret[i].StartTime = ret[i].StartTime.UTC()
	}
	return ret, nil
}

// DeleteByVenue removes all shows of a venue and returns the number of removed shows
func (r *ShowRepo) DeleteByVenue(ctx context.Context, venueID uint) (int64, error) {
	r.logger.WithField(log.FldVenue, venueID).Debug("Removing shows of venue")
	return r.deleteWhere(ctx, "venue_id", venueID)
}

// DeleteByArtist removes all shows of an artist and returns the number of removed shows
func (r *ShowRepo) DeleteByArtist(ctx context.Context, artistID uint) (int64, error) {
	r.logger.WithField(log.FldArtist, artistID).Debug("Removing shows of artist")
	return r.deleteWhere(ctx, "artist_id", artistID)
}

// column is never user input
func (r *ShowRepo) deleteWhere(ctx context.Context, column string, id uint) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM Shows WHERE "+column+" = ?"), id)
	if err != nil {
		return 0, errors.Wrap(err, "Failed to delete shows")
	}
	return res.RowsAffected()
}
