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

// ArtistService provides service functions for creating, changing and removing artists
type ArtistService interface {
	Create(ctx context.Context, a *models.Artist) (*models.Artist, error)
	Update(ctx context.Context, id uint, a *models.Artist) (*models.Artist, error)
	Delete(ctx context.Context, id uint) (*models.Artist, error)
	Get(ctx context.Context, id uint) (*models.Artist, error)
}

// -- ArtistService implementation -------------------------------------------------------------------------------------

type artistService struct {
	store  repos.Store
	logger *logrus.Entry
}

// NewArtistService creates a new artist service instance
func NewArtistService(store repos.Store, logger *logrus.Entry) ArtistService {
	return &artistService{
		store:  store,
		logger: logger,
	}
}

// Create validates and stores a new artist
func (s *artistService) Create(ctx context.Context, a *models.Artist) (*models.Artist, error) {
	a.ID = 0
	if err := validate.Artist(a); err != nil {
		return nil, err
	}
	err := s.store.InTx(ctx, func(tx repos.Tx) error {
		return tx.Artists().Create(ctx, a)
	})
	if err != nil {
		return nil, translateError(err, nil, fmt.Sprintf("Error while creating artist '%s'", a.Name))
	}
	s.logger.WithFields(logrus.Fields{log.FldArtist: a.ID, log.FldName: a.Name}).Info("Artist created")
	return a, nil
}

// Update validates the given fields and overwrites the artist with the given ID with them
func (s *artistService) Update(ctx context.Context, id uint, a *models.Artist) (*models.Artist, error) {
	a.ID = id
	var updated *models.Artist
	err := s.store.InTx(ctx, func(tx repos.Tx) error {
		if _, err := tx.Artists().GetByID(ctx, id); err != nil {
			return err
		}
		if err := validate.Artist(a); err != nil {
			return err
		}
		if err := tx.Artists().Update(ctx, a); err != nil {
			return err
		}
		var err error
		updated, err = tx.Artists().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, translateError(err, artistNotFound(id), fmt.Sprintf("Error while updating artist #%d", id))
	}
	s.logger.WithFields(logrus.Fields{log.FldArtist: id, log.FldName: updated.Name}).Info("Artist updated")
	return updated, nil
}

// Delete removes an artist together with all of its shows and returns the removed artist
func (s *artistService) Delete(ctx context.Context, id uint) (*models.Artist, error) {
	var (
		artist  *models.Artist
		removed int64
	)
	err := s.store.InTx(ctx, func(tx repos.Tx) error {
		var err error
		if artist, err = tx.Artists().GetByID(ctx, id); err != nil {
			return err
		}
		if removed, err = tx.Shows().DeleteByArtist(ctx, id); err != nil {
			return err
		}
		return tx.Artists().Delete(ctx, id)
	})
	if err != nil {
		return nil, translateError(err, artistNotFound(id), fmt.Sprintf("Error while deleting artist #%d", id))
	}
	s.logger.WithFields(logrus.Fields{log.FldArtist: id, log.FldName: artist.Name}).
		Infof("Artist deleted along with %d shows", removed)
	return artist, nil
}

// Get returns the artist with the given ID
func (s *artistService) Get(ctx context.Context, id uint) (*models.Artist, error) {
	a, err := s.store.Artists().GetByID(ctx, id)
	if err != nil {
		return nil, translateError(err, artistNotFound(id), fmt.Sprintf("Error while retrieving artist #%d", id))
	}
	return a, nil
}
