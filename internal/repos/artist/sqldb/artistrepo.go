// Package sqldb provides an artist repository that stores its data inside a SQL database (SQLite or PostgreSQL)
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/derWhity/fyyur/internal/log"
	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/repos"
)

const (
	artistFields = `name, city, state, phone, image_link, facebook_link, website_link, genres, seeking_venue,
        seeking_description, created_at, updated_at`
	summarySelect = `SELECT a.id, a.name, a.city, a.state, COUNT(s.id) AS num_upcoming_shows
        FROM Artist a LEFT JOIN Shows s ON s.artist_id = a.id AND s.start_time > ?`
	summaryGroup = `GROUP BY a.id, a.name, a.city, a.state`
)

// ArtistRepo is a repository that stores artists inside a SQL database
type ArtistRepo struct {
	db     repos.DBTX
	logger *logrus.Entry
}

// New creates a new artist repository instance working on the given database handle or transaction
func New(db repos.DBTX, logger *logrus.Entry) *ArtistRepo {
	return &ArtistRepo{
		db:     db,
		logger: logger,
	}
}

// Create creates a new artist and fills in its ID
func (r *ArtistRepo) Create(ctx context.Context, a *models.Artist) error {
	r.logger.WithField(log.FldName, a.Name).Debug("Adding new artist")
	query := r.db.Rebind(fmt.Sprintf(
		"INSERT INTO Artist(%s) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id",
		artistFields,
	))
	now := repos.DBTime(time.Now())
	err := r.db.QueryRowxContext(ctx, query, a.Name, a.City, a.State, a.Phone, a.ImageLink, a.FacebookLink,
		a.WebsiteLink, a.Genres, a.SeekingVenue, a.SeekingDescription, now, now,
	).Scan(&a.ID)
	if err != nil {
		return errors.Wrap(err, "Create: Failed to insert artist")
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

// Update overwrites all fields of an existing artist
func (r *ArtistRepo) Update(ctx context.Context, a *models.Artist) error {
	r.logger.WithField(log.FldID, a.ID).Debug("Updating artist")
	query := r.db.Rebind(`UPDATE Artist SET name = ?, city = ?, state = ?, phone = ?, image_link = ?,
        facebook_link = ?, website_link = ?, genres = ?, seeking_venue = ?, seeking_description = ?,
        updated_at = ? WHERE id = ?`)
	now := repos.DBTime(time.Now())
	res, err := r.db.ExecContext(ctx, query, a.Name, a.City, a.State, a.Phone, a.ImageLink, a.FacebookLink,
		a.WebsiteLink, a.Genres, a.SeekingVenue, a.SeekingDescription, now, a.ID,
	)
	if err != nil {
		return errors.Wrap(err, "Update: Failed to update artist")
	}
	var num int64
	if num, err = res.RowsAffected(); err == nil {
		if num == 0 {
			return repos.ErrEntityNotExisting
		}
	}
	a.UpdatedAt = now
	return err
}

// Delete removes an existing artist
func (r *ArtistRepo) Delete(ctx context.Context, id uint) error {
	r.logger.WithField(log.FldID, id).Debug("Deleting artist")
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM Artist WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "Delete: Failed to delete artist")
	}
	var num int64
	if num, err = res.RowsAffected(); err == nil {
		if num == 0 {
			return repos.ErrEntityNotExisting
		}
	}
	return err
}

// GetByID returns the artist with the given ID
func (r *ArtistRepo) GetByID(ctx context.Context, id uint) (*models.Artist, error) {
	r.logger.WithField(log.FldID, id).Debug("Loading artist")
	query := r.db.Rebind(fmt.Sprintf("SELECT id, %s FROM Artist WHERE id = ?", artistFields))
	var a models.Artist
	if err := sqlx.GetContext(ctx, r.db, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			// Nothing found
			return nil, repos.ErrEntityNotExisting
		}
		return nil, errors.Wrap(err, "GetByID: Failed to load artist")
	}
	return &a, nil
}

// List returns all artists ordered by name
func (r *ArtistRepo) List(ctx context.Context, now time.Time) ([]models.Summary, error) {
	query := r.db.Rebind(fmt.Sprintf("%s %s ORDER BY a.name, a.id", summarySelect, summaryGroup))
	ret := []models.Summary{}
	if err := sqlx.SelectContext(ctx, r.db, &ret, query, repos.DBTime(now)); err != nil {
		return nil, errors.Wrap(err, "List: Failed to query artists")
	}
	return ret, nil
}

// Search returns all artists whose name contains the search term, ignoring case
func (r *ArtistRepo) Search(ctx context.Context, term string, now time.Time) ([]models.Summary, error) {
	r.logger.WithField(log.FldSearch, term).Debug("Searching for artist")
	query := r.db.Rebind(fmt.Sprintf(`%s WHERE LOWER(a.name) LIKE ? ESCAPE '\' %s ORDER BY a.name, a.id`,
		summarySelect, summaryGroup,
	))
	ret := []models.Summary{}
	if err := sqlx.SelectContext(ctx, r.db, &ret, query, repos.DBTime(now), repos.LikePattern(term)); err != nil {
		return nil, errors.Wrap(err, "Search: Failed to query artists")
	}
	return ret, nil
}

// Recent returns the most recently created artists
func (r *ArtistRepo) Recent(ctx context.Context, limit uint) ([]models.Summary, error) {
	query := r.db.Rebind(`SELECT id, name, city, state FROM Artist ORDER BY created_at DESC, id DESC LIMIT ?`)
	ret := []models.Summary{}
	if err := sqlx.SelectContext(ctx, r.db, &ret, query, limit); err != nil {
		return nil, errors.Wrap(err, "Recent: Failed to query artists")
	}
	return ret, nil
}
