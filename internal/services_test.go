package internal

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derWhity/fyyur/internal/ctxhelper"
	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/repos/store"
	"github.com/derWhity/fyyur/internal/testutil"
	"github.com/derWhity/fyyur/internal/validate"
)

var testNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

type testServices struct {
	db       *sqlx.DB
	store    *store.Store
	venues   VenueService
	artists  ArtistService
	shows    ShowService
	listings ListingService
}

func newTestServices(t *testing.T) testServices {
	db := testutil.OpenDB(t)
	st := store.New(db, testutil.Logger())
	return testServices{
		db:       db,
		store:    st,
		venues:   NewVenueService(st, testutil.Logger()),
		artists:  NewArtistService(st, testutil.Logger()),
		shows:    NewShowService(st, testutil.Logger()),
		listings: NewListingService(st, func() time.Time { return testNow }, testutil.Logger()),
	}
}

func testContext() context.Context {
	return context.WithValue(context.Background(), ctxhelper.KeyLogger, testutil.Logger())
}

func boilerRoom() *models.Venue {
	return &models.Venue{
		Name:         "Boiler Room",
		City:         "Chicago",
		State:        "IL",
		Address:      "123 Main St",
		Phone:        "312-555-1212",
		Genres:       models.Genres{"Jazz", "Electronic"},
		FacebookLink: "https://www.facebook.com/boilerroom",
	}
}

func gunsNPetals() *models.Artist {
	return &models.Artist{
		Name:   "Guns N Petals",
		City:   "San Francisco",
		State:  "CA",
		Phone:  "326-123-5000",
		Genres: models.Genres{"Rock n Roll"},
	}
}

func requireHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	httpErr, ok := err.(*HTTPError)
	require.True(t, ok, "expected *HTTPError, got %T: %v", err, err)
	assert.Equal(t, status, httpErr.Status())
}

func TestVenueServiceCreateAndGet(t *testing.T) {
	ctx := testContext()
	s := newTestServices(t)

	v, err := s.venues.Create(ctx, boilerRoom())
	require.NoError(t, err)
	require.NotZero(t, v.ID)

	got, err := s.venues.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Boiler Room", got.Name)
	assert.Equal(t, "IL", got.State)

	_, err = s.venues.Get(ctx, v.ID+100)
	requireHTTPStatus(t, err, http.StatusNotFound)
}

func TestVenueServiceRejectsInvalidInput(t *testing.T) {
	ctx := testContext()
	s := newTestServices(t)
	_, err := s.venues.Create(ctx, boilerRoom())
	require.NoError(t, err)

	_, err = s.venues.Create(ctx, boilerRoom())
	assert.Equal(t, validate.FieldErrors{"name": validate.MsgVenueExists}, err)

	v := boilerRoom()
	v.Address = "1 Other St"
	v.State = "XX"
	_, err = s.venues.Create(ctx, v)
	assert.Equal(t, validate.FieldErrors{"state": validate.MsgInvalidState}, err)

	v.State = "IL"
	v.Phone = "abc"
	_, err = s.venues.Create(ctx, v)
	assert.Equal(t, validate.FieldErrors{"phone": validate.MsgInvalidPhone}, err)

	areas, err := s.listings.Areas(ctx)
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Len(t, areas[0].Venues, 1)
}

func TestVenueServiceUpdate(t *testing.T) {
	ctx := testContext()
	s := newTestServices(t)
	v, err := s.venues.Create(ctx, boilerRoom())
	require.NoError(t, err)

	changed := boilerRoom()
	changed.City = "Evanston"
	changed.Phone = "(312) 555-1212"
	updated, err := s.venues.Update(ctx, v.ID, changed)
	require.NoError(t, err)
	assert.Equal(t, v.ID, updated.ID)
	assert.Equal(t, "Evanston", updated.City)
	assert.False(t, updated.CreatedAt.IsZero())

	_, err = s.venues.Update(ctx, v.ID+100, boilerRoom())
	requireHTTPStatus(t, err, http.StatusNotFound)

	invalid := boilerRoom()
	invalid.Genres = models.Genres{"Polka"}
	_, err = s.venues.Update(ctx, v.ID, invalid)
	assert.Equal(t, validate.FieldErrors{"genres": validate.MsgInvalidGenre}, err)

	got, err := s.venues.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Evanston", got.City)
	assert.Equal(t, models.Genres{"Jazz", "Electronic"}, got.Genres)
}

func TestDeleteCascadesToShows(t *testing.T) {
	ctx := testContext()
	s := newTestServices(t)
	v, err := s.venues.Create(ctx, boilerRoom())
	require.NoError(t, err)
	a, err := s.artists.Create(ctx, gunsNPetals())
	require.NoError(t, err)
	_, err = s.shows.Create(ctx, validate.ShowInput{
		ArtistID:  "1",
		VenueID:   "1",
		StartTime: "2035-04-01 20:00:00",
	})
	require.NoError(t, err)

	deleted, err := s.venues.Delete(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Boiler Room", deleted.Name)

	shows, err := s.listings.Shows(ctx)
	require.NoError(t, err)
	assert.Empty(t, shows)
	detail, err := s.listings.ArtistDetail(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, detail.UpcomingShowsCount)

	_, err = s.venues.Delete(ctx, v.ID)
	requireHTTPStatus(t, err, http.StatusNotFound)

	_, err = s.artists.Delete(ctx, a.ID)
	require.NoError(t, err)
	_, err = s.artists.Get(ctx, a.ID)
	requireHTTPStatus(t, err, http.StatusNotFound)
}

func TestArtistService(t *testing.T) {
	ctx := testContext()
	s := newTestServices(t)

	a := gunsNPetals()
	a.State = "ca"
	created, err := s.artists.Create(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "CA", created.State)

	invalid := gunsNPetals()
	invalid.State = "ZZ"
	_, err = s.artists.Create(ctx, invalid)
	assert.Equal(t, validate.FieldErrors{"state": validate.MsgInvalidState}, err)

	changed := gunsNPetals()
	changed.SeekingVenue = true
	changed.SeekingDescription = "Looking for shows in the Bay Area"
	updated, err := s.artists.Update(ctx, created.ID, changed)
	require.NoError(t, err)
	assert.True(t, updated.SeekingVenue)

	_, err = s.artists.Update(ctx, created.ID+1, gunsNPetals())
	requireHTTPStatus(t, err, http.StatusNotFound)

	artists, err := s.listings.Artists(ctx)
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.Equal(t, "Guns N Petals", artists[0].Name)
}

func TestShowServiceChecksReferences(t *testing.T) {
	ctx := testContext()
	s := newTestServices(t)

	_, err := s.shows.Create(ctx, validate.ShowInput{ArtistID: "1", VenueID: "1", StartTime: "2035-04-01 20:00:00"})
	assert.Equal(t, validate.FieldErrors{
		"artist_id": validate.MsgArtistNotFound,
		"venue_id":  validate.MsgVenueNotFound,
	}, err)

	_, err = s.shows.Create(ctx, validate.ShowInput{ArtistID: "x", VenueID: "1", StartTime: "tomorrow"})
	assert.Equal(t, validate.FieldErrors{
		"artist_id":  validate.MsgInvalidID,
		"start_time": validate.MsgInvalidTime,
	}, err)
}

func TestListingPartitionsShowsByTime(t *testing.T) {
	ctx := testContext()
	s := newTestServices(t)
	v, err := s.venues.Create(ctx, boilerRoom())
	require.NoError(t, err)
	a, err := s.artists.Create(ctx, gunsNPetals())
	require.NoError(t, err)

	for _, start := range []string{"2019-05-21 21:30:00", "2035-04-01 20:00:00", "2035-04-08 20:00:00"} {
		_, err := s.shows.Create(ctx, validate.ShowInput{ArtistID: "1", VenueID: "1", StartTime: start})
		require.NoError(t, err)
	}

	vd, err := s.listings.VenueDetail(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, vd.PastShowsCount)
	assert.Equal(t, 2, vd.UpcomingShowsCount)
	assert.Equal(t, "Guns N Petals", vd.PastShows[0].ArtistName)
	assert.True(t, vd.UpcomingShows[0].StartTime.Before(vd.UpcomingShows[1].StartTime))

	ad, err := s.listings.ArtistDetail(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, ad.PastShowsCount)
	assert.Equal(t, 2, ad.UpcomingShowsCount)
	assert.Equal(t, "Boiler Room", ad.UpcomingShows[0].VenueName)

	_, err = s.listings.VenueDetail(ctx, v.ID+1)
	requireHTTPStatus(t, err, http.StatusNotFound)
	_, err = s.listings.ArtistDetail(ctx, a.ID+1)
	requireHTTPStatus(t, err, http.StatusNotFound)

	areas, err := s.listings.Areas(ctx)
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, 2, areas[0].Venues[0].NumUpcomingShows)
}

func TestListingSearch(t *testing.T) {
	ctx := testContext()
	s := newTestServices(t)
	_, err := s.venues.Create(ctx, boilerRoom())
	require.NoError(t, err)
	hop := boilerRoom()
	hop.Name = "The Musical Hop"
	hop.City = "San Francisco"
	hop.State = "CA"
	hop.Address = "1015 Folsom Street"
	_, err = s.venues.Create(ctx, hop)
	require.NoError(t, err)

	res, err := s.listings.SearchVenues(ctx, "room")
	require.NoError(t, err)
	assert.Equal(t, "room", res.Term)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "Boiler Room", res.Data[0].Name)

	res, err = s.listings.SearchVenues(ctx, "%")
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.NotNil(t, res.Data)

	areas, err := s.listings.Areas(ctx)
	require.NoError(t, err)
	require.Len(t, areas, 2)
	assert.Equal(t, "CA", areas[0].State)
	assert.Equal(t, "IL", areas[1].State)

	res, err = s.listings.SearchArtists(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, res.Count)

	recent, err := s.listings.Recent(ctx)
	require.NoError(t, err)
	assert.Len(t, recent.Venues, 2)
	assert.Empty(t, recent.Artists)
}
