package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/derWhity/fyyur/internal/log"
	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/repos"
)

// Number of venues and artists shown on the home page
const recentLimit = 10

// ListingService provides the read-only views on venues, artists and shows
type ListingService interface {
	// Areas returns all venues grouped by city and state
	Areas(ctx context.Context) ([]models.Area, error)
	// SearchVenues finds all venues whose name contains the term, ignoring case
	SearchVenues(ctx context.Context, term string) (*models.SearchResult, error)
	// SearchArtists finds all artists whose name contains the term, ignoring case
	SearchArtists(ctx context.Context, term string) (*models.SearchResult, error)
	// VenueDetail returns a venue with its past and upcoming shows
	VenueDetail(ctx context.Context, id uint) (*models.VenueDetail, error)
	// ArtistDetail returns an artist with its past and upcoming shows
	ArtistDetail(ctx context.Context, id uint) (*models.ArtistDetail, error)
	// Shows returns all shows ordered by their start time
	Shows(ctx context.Context) ([]models.ShowListing, error)
	// Artists returns all artists ordered by name
	Artists(ctx context.Context) ([]models.Summary, error)
	// Recent returns the most recently listed venues and artists
	Recent(ctx context.Context) (*models.Recent, error)
}

// -- ListingService implementation ------------------------------------------------------------------------------------

type listingService struct {
	repos  repos.Tx
	now    func() time.Time
	logger *logrus.Entry
}

// NewListingService creates a new listing service reading from the given repositories. The clock decides which
// shows count as past and which as upcoming.
func NewListingService(r repos.Tx, now func() time.Time, logger *logrus.Entry) ListingService {
	return &listingService{
		repos:  r,
		now:    now,
		logger: logger,
	}
}

func storageError(err error, message string) error {
	return translateError(err, nil, message)
}

// Areas returns all venues grouped by city and state. Areas keep the order of the venue listing: by state, city and
// venue name.
func (s *listingService) Areas(ctx context.Context) ([]models.Area, error) {
	venues, err := s.repos.Venues().ListWithLocation(ctx, s.now())
	if err != nil {
		return nil, storageError(err, "Error while listing venues")
	}
	areas := []models.Area{}
	for _, v := range venues {
		if n := len(areas); n == 0 || areas[n-1].City != v.City || areas[n-1].State != v.State {
			areas = append(areas, models.Area{City: v.City, State: v.State, Venues: []models.Summary{}})
		}
		last := &areas[len(areas)-1]
		last.Venues = append(last.Venues, v)
	}
	return areas, nil
}

// SearchVenues finds all venues whose name contains the term, ignoring case
func (s *listingService) SearchVenues(ctx context.Context, term string) (*models.SearchResult, error) {
	s.logger.WithField(log.FldSearch, term).Debug("Searching venues")
	found, err := s.repos.Venues().Search(ctx, term, s.now())
	if err != nil {
		return nil, storageError(err, "Error while searching venues")
	}
	return makeSearchResult(term, found), nil
}

// SearchArtists finds all artists whose name contains the term, ignoring case
func (s *listingService) SearchArtists(ctx context.Context, term string) (*models.SearchResult, error) {
	s.logger.WithField(log.FldSearch, term).Debug("Searching artists")
	found, err := s.repos.Artists().Search(ctx, term, s.now())
	if err != nil {
		return nil, storageError(err, "Error while searching artists")
	}
	return makeSearchResult(term, found), nil
}

func makeSearchResult(term string, found []models.Summary) *models.SearchResult {
	if found == nil {
		found = []models.Summary{}
	}
	return &models.SearchResult{Term: term, Count: len(found), Data: found}
}

// VenueDetail returns a venue with its past and upcoming shows
func (s *listingService) VenueDetail(ctx context.Context, id uint) (*models.VenueDetail, error) {
	v, err := s.repos.Venues().GetByID(ctx, id)
	if err != nil {
		return nil, translateError(err, venueNotFound(id), fmt.Sprintf("Error while retrieving venue #%d", id))
	}
	shows, err := s.repos.Shows().ListByVenue(ctx, id)
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("Error while listing shows of venue #%d", id))
	}
	past, upcoming := models.PartitionShows(shows, s.now())
	return &models.VenueDetail{
		Venue:              *v,
		PastShows:          past,
		UpcomingShows:      upcoming,
		PastShowsCount:     len(past),
		UpcomingShowsCount: len(upcoming),
	}, nil
}

// ArtistDetail returns an artist with its past and upcoming shows
func (s *listingService) ArtistDetail(ctx context.Context, id uint) (*models.ArtistDetail, error) {
	a, err := s.repos.Artists().GetByID(ctx, id)
	if err != nil {
		return nil, translateError(err, artistNotFound(id), fmt.Sprintf("Error while retrieving artist #%d", id))
	}
	shows, err := s.repos.Shows().ListByArtist(ctx, id)
	if err != nil {
		return nil, storageError(err, fmt.Sprintf("Error while listing shows of artist #%d", id))
	}
	past, upcoming := models.PartitionShows(shows, s.now())
	return &models.ArtistDetail{
		Artist:             *a,
		PastShows:          past,
		UpcomingShows:      upcoming,
		PastShowsCount:     len(past),
		UpcomingShowsCount: len(upcoming),
	}, nil
}

// Shows returns all shows ordered by their start time
func (s *listingService) Shows(ctx context.Context) ([]models.ShowListing, error) {
	shows, err := s.repos.Shows().List(ctx)
	if err != nil {
		return nil, storageError(err, "Error while listing shows")
	}
	if shows == nil {
		shows = []models.ShowListing{}
	}
	return shows, nil
}

// Artists returns all artists ordered by name
func (s *listingService) Artists(ctx context.Context) ([]models.Summary, error) {
	artists, err := s.repos.Artists().List(ctx, s.now())
	if err != nil {
		return nil, storageError(err, "Error while listing artists")
	}
	if artists == nil {
		artists = []models.Summary{}
	}
	return artists, nil
}

// Recent returns the most recently listed venues and artists
func (s *listingService) Recent(ctx context.Context) (*models.Recent, error) {
	venues, err := s.repos.Venues().Recent(ctx, recentLimit)
	if err != nil {
		return nil, storageError(err, "Error while listing recent venues")
	}
	artists, err := s.repos.Artists().Recent(ctx, recentLimit)
	if err != nil {
		return nil, storageError(err, "Error while listing recent artists")
	}
	return &models.Recent{Venues: venues, Artists: artists}, nil
}
