// Package sqldb provides a venue repository that stores its data inside a SQL database (SQLite or PostgreSQL)
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
	"github.com/derWhity/fyyur/internal/repos/sqldriver"
)

const (
	venueFields = `name, city, state, address, phone, image_link, facebook_link, website_link, genres,
        seeking_talent, seeking_description, created_at, updated_at`
	// Venue summaries with the number of shows starting after the first query parameter
	summarySelect = `SELECT v.id, v.name, v.city, v.state, COUNT(s.id) AS num_upcoming_shows
        FROM Venue v LEFT JOIN Shows s ON s.venue_id = v.id AND s.start_time > ?`
	summaryGroup = `GROUP BY v.id, v.name, v.city, v.state`
)

// VenueRepo is a repository that stores venues inside a SQL database
type VenueRepo struct {
	db     repos.DBTX
	logger *logrus.Entry
}

// New creates a new venue repository instance working on the given database handle or transaction
func New(db repos.DBTX, logger *logrus.Entry) *VenueRepo {
	return &VenueRepo{
		db:     db,
		logger: logger,
	}
}

// Create creates a new venue and fills in its ID
func (r *VenueRepo) Create(ctx context.Context, v *models.Venue) error {
	r.logger.WithField(log.FldName, v.Name).Debug("Adding new venue")
	query := r.db.Rebind(fmt.Sprintf(
		"INSERT INTO Venue(%s) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id",
		venueFields,
	))
	now := repos.DBTime(time.Now())
	err := r.db.QueryRowxContext(ctx, query, v.Name, v.City, v.State, v.Address, v.Phone, v.ImageLink,
		v.FacebookLink, v.WebsiteLink, v.Genres, v.SeekingTalent, v.SeekingDescription, now, now,
	).Scan(&v.ID)
	if err != nil {
		if sqldriver.IsUniqueViolation(err) {
			return errors.Wrapf(repos.ErrDuplicateEntity, "Create: Venue '%s' at '%s'", v.Name, v.Address)
		}
		return errors.Wrap(err, "Create: Failed to insert venue")
	}
	v.CreatedAt = now
	v.UpdatedAt = now
	return nil
}

// Update overwrites all fields of an existing venue
func (r *VenueRepo) Update(ctx context.Context, v *models.Venue) error {
	r.logger.WithField(log.FldID, v.ID).Debug("Updating venue")
	query := r.db.Rebind(`UPDATE Venue SET name = ?, city = ?, state = ?, address = ?, phone = ?, image_link = ?,
        facebook_link = ?, website_link = ?, genres = ?, seeking_talent = ?, seeking_description = ?,
        updated_at = ? WHERE id = ?`)
	now := repos.DBTime(time.Now())
	res, err := r.db.ExecContext(ctx, query, v.Name, v.City, v.State, v.Address, v.Phone, v.ImageLink,
		v.FacebookLink, v.WebsiteLink, v.Genres, v.SeekingTalent, v.SeekingDescription, now, v.ID,
	)
	if err != nil {
		if sqldriver.IsUniqueViolation(err) {
			return errors.Wrapf(repos.ErrDuplicateEntity, "Update: Venue '%s' at '%s'", v.Name, v.Address)
		}
		return errors.Wrap(err, "Update: Failed to update venue")
	}
	var num int64
	if num, err = res.RowsAffected(); err == nil {
		if num == 0 {
			return repos.ErrEntityNotExisting
		}
	}
	v.UpdatedAt = now
	return err
}

// Delete removes an existing venue
func (r *VenueRepo) Delete(ctx context.Context, id uint) error {
	r.logger.WithField(log.FldID, id).Debug("Deleting venue")
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM Venue WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "Delete: Failed to delete venue")
	}
	var num int64
	if num, err = res.RowsAffected(); err == nil {
		if num == 0 {
			return repos.ErrEntityNotExisting
		}
	}
	return err
}

// GetByID returns the venue with the given ID
func (r *VenueRepo) GetByID(ctx context.Context, id uint) (*models.Venue, error) {
	r.logger.WithField(log.FldID, id).Debug("Loading venue")
	query := r.db.Rebind(fmt.Sprintf("SELECT id, %s FROM Venue WHERE id = ?", venueFields))
	return r.getOne(ctx, query, id)
}

// GetByNameAndAddress returns the venue identified by the given name and address
func (r *VenueRepo) GetByNameAndAddress(ctx context.Context, name, address string) (*models.Venue, error) {
	query := r.db.Rebind(fmt.Sprintf("SELECT id, %s FROM Venue WHERE name = ? AND address = ?", venueFields))
	return r.getOne(ctx, query, name, address)
}

func (r *VenueRepo) getOne(ctx context.Context, query string, args ...interface{}) (*models.Venue, error) {
	var v models.Venue
	if err := sqlx.GetContext(ctx, r.db, &v, query, args...); err != nil {
		if err == sql.ErrNoRows {
			// Nothing found
			return nil, repos.ErrEntityNotExisting
		}
		return nil, errors.Wrap(err, "Failed to load venue")
	}
	return &v, nil
}

// ListWithLocation returns all venues with their city, state and number of shows starting after now
func (r *VenueRepo) ListWithLocation(ctx context.Context, now time.Time) ([]models.Summary, error) {
	query := r.db.Rebind(fmt.Sprintf("%s %s ORDER BY v.state, v.city, v.name, v.id", summarySelect, summaryGroup))
	ret := []models.Summary{}
	if err := sqlx.SelectContext(ctx, r.db, &ret, query, repos.DBTime(now)); err != nil {
		return nil, errors.Wrap(err, "ListWithLocation: Failed to query venues")
	}
	return ret, nil
}

// Search returns all venues whose name contains the search term, ignoring case
func (r *VenueRepo) Search(ctx context.Context, term string, now time.Time) ([]models.Summary, error) {
	r.logger.WithField(log.FldSearch, term).Debug("Searching for venue")
	query := r.db.Rebind(fmt.Sprintf(`%s WHERE LOWER(v.name) LIKE ? ESCAPE '\' %s ORDER BY v.name, v.id`,
		summarySelect, summaryGroup,
	))
	ret := []models.Summary{}
	if err := sqlx.SelectContext(ctx, r.db, &ret, query, repos.DBTime(now), repos.LikePattern(term)); err != nil {
		return nil, errors.Wrap(err, "Search: Failed to query venues")
	}
	return ret, nil
}

// Recent returns the most recently created venues
func (r *VenueRepo) Recent(ctx context.Context, limit uint) ([]models.Summary, error) {
	query := r.db.Rebind(`SELECT id, name, city, state FROM Venue ORDER BY created_at DESC, id DESC LIMIT ?`)
	ret := []models.Summary{}
	if err := sqlx.SelectContext(ctx, r.db, &ret, query, limit); err != nil {
		return nil, errors.Wrap(err, "Recent: Failed to query venues")
	}
	return ret, nil
}
