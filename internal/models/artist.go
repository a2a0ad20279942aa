package models

import "time"

// Artist describes a musician or band that plays shows at venues
type Artist struct {
	// Internal ID
	ID    uint   `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	City  string `db:"city" json:"city"`
	State string `db:"state" json:"state"`
	// Phone number, normalized to ###-###-####
	Phone        string `db:"phone" json:"phone"`
	ImageLink    string `db:"image_link" json:"image_link"`
	FacebookLink string `db:"facebook_link" json:"facebook_link"`
	WebsiteLink  string `db:"website_link" json:"website_link"`
	// The genres the artist plays
	Genres Genres `db:"genres" json:"genres"`
	// Is the artist currently looking for a venue to play at?
	SeekingVenue       bool   `db:"seeking_venue" json:"seeking_venue"`
	SeekingDescription string `db:"seeking_description" json:"seeking_description"`
	// Creation date of this entry
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	// Date of the last update of this entry
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ArtistDetail is an artist together with the shows the artist has played or will play
type ArtistDetail struct {
	Artist
	PastShows          []ShowListing `json:"past_shows"`
	UpcomingShows      []ShowListing `json:"upcoming_shows"`
	PastShowsCount     int           `json:"past_shows_count"`
	UpcomingShowsCount int           `json:"upcoming_shows_count"`
}
