package internal

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/derWhity/fyyur/internal/log"
	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/repos"
	"github.com/derWhity/fyyur/internal/validate"
)

// ShowService books artists into venues
type ShowService interface {
	// Create validates a show submission and stores the resulting show
	Create(ctx context.Context, in validate.ShowInput) (*models.Show, error)
}

type showService struct {
	store  repos.Store
	logger *logrus.Entry
}

// NewShowService creates a new show service instance
func NewShowService(store repos.Store, logger *logrus.Entry) ShowService {
	return &showService{
		store:  store,
		logger: logger,
	}
}

func (s *showService) Create(ctx context.Context, in validate.ShowInput) (*models.Show, error) {
	var show *models.Show
	err := s.store.InTx(ctx, func(tx repos.Tx) error {
		var err error
		if show, err = validate.Show(ctx, in, tx.Artists(), tx.Venues()); err != nil {
			return err
		}
		return tx.Shows().Create(ctx, show)
	})
	if err != nil {
		return nil, translateError(err, nil, "Error while creating show")
	}
	s.logger.WithFields(logrus.Fields{
		log.FldID:     show.ID,
		log.FldArtist: show.ArtistID,
		log.FldVenue:  show.VenueID,
	}).Info("Show created")
	return show, nil
}
