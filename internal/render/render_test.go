package render

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/validate"
)

func TestNewParsesAllPages(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	for _, name := range []string{
		"pages/home", "pages/venues", "pages/search_venues", "pages/show_venue", "pages/artists",
		"pages/search_artists", "pages/show_artist", "pages/shows", "forms/new_venue", "forms/edit_venue",
		"forms/new_artist", "forms/edit_artist", "forms/new_show", "errors/400", "errors/404", "errors/500",
	} {
		assert.True(t, r.Has(name), name)
	}
	assert.False(t, r.Has("layouts/main"))
}

func TestHTMLRendersEveryPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	start := time.Date(2035, 4, 1, 20, 0, 0, 0, time.UTC)
	shows := []models.ShowListing{{ID: 1, VenueID: 1, VenueName: "The Musical Hop", ArtistID: 4, ArtistName: "Guns N Petals", StartTime: start}}
	venue := models.Venue{ID: 1, Name: "The Musical Hop", City: "San Francisco", State: "CA", Genres: models.Genres{"Jazz"}}
	artist := models.Artist{ID: 4, Name: "Guns N Petals", City: "San Francisco", State: "CA", Genres: models.Genres{"Rock n Roll"}}
	summaries := []models.Summary{{ID: 1, Name: "The Musical Hop", NumUpcomingShows: 1}}

	pages := []Page{
		{Template: "pages/home", Data: &models.Recent{Venues: summaries, Artists: summaries}},
		{Template: "pages/home"},
		{Template: "pages/venues", Data: []models.Area{{City: "San Francisco", State: "CA", Venues: summaries}}},
		{Template: "pages/search_venues", Data: &models.SearchResult{Term: "hop", Count: 1, Data: summaries}},
		{Template: "pages/search_artists", Data: &models.SearchResult{Term: "x", Count: 0, Data: []models.Summary{}}},
		{Template: "pages/show_venue", Data: &models.VenueDetail{Venue: venue, UpcomingShows: shows, PastShows: []models.ShowListing{}, UpcomingShowsCount: 1}},
		{Template: "pages/show_artist", Data: &models.ArtistDetail{Artist: artist, PastShows: shows, PastShowsCount: 1}},
		{Template: "pages/artists", Data: summaries},
		{Template: "pages/shows", Data: shows},
		{Template: "forms/new_venue", Data: &models.Venue{}},
		{Template: "forms/edit_venue", Data: &venue, Errors: validate.FieldErrors{"state": validate.MsgInvalidState}},
		{Template: "forms/new_artist", Data: &models.Artist{}},
		{Template: "forms/edit_artist", Data: &artist},
		{Template: "forms/new_show", Data: &validate.ShowInput{}},
		{Template: "errors/404", Status: http.StatusNotFound},
		{Template: "errors/500", Status: http.StatusInternalServerError, Data: "boom"},
	}
	for _, p := range pages {
		t.Run(p.Template, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, r.HTML(w, p))
			assert.Equal(t, p.StatusCode(), w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Body.String(), "</html>")
		})
	}
}

func TestHTMLShowsFlashAndFieldErrors(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	w := httptest.NewRecorder()
	require.NoError(t, r.HTML(w, Page{
		Status:   http.StatusBadRequest,
		Template: "forms/new_venue",
		Data:     &models.Venue{Name: "Boiler Room", State: "IL", Genres: models.Genres{"Jazz"}},
		Flash:    "Venue Boiler Room could not be listed.",
		Errors:   validate.FieldErrors{"phone": validate.MsgInvalidPhone},
	}))
	body := w.Body.String()
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body, "Venue Boiler Room could not be listed.")
	assert.Contains(t, body, "Invalid phone number.")
	assert.Contains(t, body, `<option value="IL" selected>`)
	assert.Contains(t, body, `<option value="Jazz" selected>`)
	assert.Contains(t, body, `<option value="Blues">`)
}

func TestHTMLUnknownTemplate(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	w := httptest.NewRecorder()
	assert.Error(t, r.HTML(w, Page{Template: "pages/nope"}))
	assert.Zero(t, w.Body.Len())
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, JSON(w, Page{
		Status:   http.StatusBadRequest,
		Template: "forms/new_artist",
		Errors:   map[string]string{"state": "Invalid state."},
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, false, got["ok"])
	assert.Equal(t, "forms/new_artist", got["template"])
	assert.Equal(t, map[string]interface{}{"state": "Invalid state."}, got["errors"])

	w = httptest.NewRecorder()
	require.NoError(t, JSON(w, Page{Template: "pages/home"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
}
