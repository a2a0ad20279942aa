package internal

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/derWhity/fyyur/internal/log"
	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/repos"
	"github.com/derWhity/fyyur/internal/validate"
)

// VenueService provides service functions for creating, changing and removing venues
type VenueService interface {
	// Create validates and stores a new venue
	Create(ctx context.Context, v *models.Venue) (*models.Venue, error)
	// Update validates the given fields and overwrites the venue with the given ID with them
	Update(ctx context.Context, id uint, v *models.Venue) (*models.Venue, error)
	// Delete removes a venue together with all of its shows and returns the removed venue
	Delete(ctx context.Context, id uint) (*models.Venue, error)
	// Get returns the venue with the given ID
	Get(ctx context.Context, id uint) (*models.Venue, error)
}

// -- VenueService implementation --------------------------------------------------------------------------------------

type venueService struct {
	store  repos.Store
	logger *logrus.Entry
}

// NewVenueService creates a new venue service instance
func NewVenueService(store repos.Store, logger *logrus.Entry) VenueService {
	return &venueService{
		store:  store,
		logger: logger,
	}
}

// Create validates and stores a new venue
func (s *venueService) Create(ctx context.Context, v *models.Venue) (*models.Venue, error) {
	v.ID = 0
	err := s.store.InTx(ctx, func(tx repos.Tx) error {
		if err := validate.Venue(ctx, v, tx.Venues()); err != nil {
			return err
		}
		return tx.Venues().Create(ctx, v)
	})
	if err != nil {
		return nil, translateError(err, nil, fmt.Sprintf("Error while creating venue '%s'", v.Name))
	}
	s.logger.WithFields(logrus.Fields{log.FldVenue: v.ID, log.FldName: v.Name}).Info("Venue created")
	return v, nil
}

// Update validates the given fields and overwrites the venue with the given ID with them
func (s *venueService) Update(ctx context.Context, id uint, v *models.Venue) (*models.Venue, error) {
	var updated *models.Venue
	err := s.store.InTx(ctx, func(tx repos.Tx) error {
		if _, err := tx.Venues().GetByID(ctx, id); err != nil {
			return err
		}
		v.ID = id
		if err := validate.Venue(ctx, v, tx.Venues()); err != nil {
			return err
		}
		if err := tx.Venues().Update(ctx, v); err != nil {
			return err
		}
		var err error
		updated, err = tx.Venues().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, translateError(err, venueNotFound(id), fmt.Sprintf("Error while updating venue #%d", id))
	}
	s.logger.WithFields(logrus.Fields{log.FldVenue: id, log.FldName: updated.Name}).Info("Venue updated")
	return updated, nil
}

// Delete removes a venue together with all of its shows and returns the removed venue
func (s *venueService) Delete(ctx context.Context, id uint) (*models.Venue, error) {
	var (
		venue   *models.Venue
		removed int64
	)
	err := s.store.InTx(ctx, func(tx repos.Tx) error {
		var err error
		if venue, err = tx.Venues().GetByID(ctx, id); err != nil {
			return err
		}
		if removed, err = tx.Shows().DeleteByVenue(ctx, id); err != nil {
			return err
		}
		return tx.Venues().Delete(ctx, id)
	})
	if err != nil {
		return nil, translateError(err, venueNotFound(id), fmt.Sprintf("Error while deleting venue #%d", id))
	}
	s.logger.WithFields(logrus.Fields{log.FldVenue: id, log.FldName: venue.Name}).
		Infof("Venue deleted along with %d shows", removed)
	return venue, nil
}

// Get returns the venue with the given ID
func (s *venueService) Get(ctx context.Context, id uint) (*models.Venue, error) {
	v, err := s.store.Venues().GetByID(ctx, id)
	if err != nil {
		return nil, translateError(err, venueNotFound(id), fmt.Sprintf("Error while retrieving venue #%d", id))
	}
	return v, nil
}
