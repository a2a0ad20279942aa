package models

import "time"

// Show links an artist to a venue at a specific point in time
type Show struct {
	ID        uint      `db:"id" json:"id"`
	ArtistID  uint      `db:"artist_id" json:"artist_id"`
	VenueID   uint      `db:"venue_id" json:"venue_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
}

// ShowListing is a show joined with the names and images of its venue and artist
type ShowListing struct {
	ID              uint      `db:"id" json:"id"`
	VenueID         uint      `db:"venue_id" json:"venue_id"`
	VenueName       string    `db:"venue_name" json:"venue_name"`
	VenueImageLink  string    `db:"venue_image_link" json:"venue_image_link"`
	ArtistID        uint      `db:"artist_id" json:"artist_id"`
	ArtistName      string    `db:"artist_name" json:"artist_name"`
	ArtistImageLink string    `db:"artist_image_link" json:"artist_image_link"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
}

// Summary is the short form of a venue or an artist used in listings and search results
type Summary struct {
	ID               uint   `db:"id" json:"id"`
	Name             string `db:"name" json:"name"`
	City             string `db:"city" json:"-"`
	State            string `db:"state" json:"-"`
	NumUpcomingShows int    `db:"num_upcoming_shows" json:"num_upcoming_shows"`
}

// SearchResult is the outcome of a name search
type SearchResult struct {
	Term  string    `json:"search_term"`
	Count int       `json:"count"`
	Data  []Summary `json:"data"`
}

// Recent holds the most recently listed venues and artists shown on the home page
type Recent struct {
	Venues  []Summary `json:"venues"`
	Artists []Summary `json:"artists"`
}

// PartitionShows splits the given shows into those that started before and those that start after the given point
// in time. Shows starting exactly at that point belong to neither list.
func PartitionShows(shows []ShowListing, now time.Time) (past []ShowListing, upcoming []ShowListing) {
	past = []ShowListing{}
	upcoming = []ShowListing{}
	for _, s := range shows {
		switch {
		case s.StartTime.Before(now):
			past = append(past, s)
		case s.StartTime.After(now):
			upcoming = append(upcoming, s)
		}
	}
	return past, upcoming
}
