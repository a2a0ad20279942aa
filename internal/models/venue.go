package models

import "time"

// Venue describes a location where artists can play shows
type Venue struct {
	// Internal ID
	ID uint `db:"id" json:"id"`
	// Name of the venue - together with the address, this identifies a venue
	Name    string `db:"name" json:"name"`
	City    string `db:"city" json:"city"`
	State   string `db:"state" json:"state"`
	Address string `db:"address" json:"address"`
	// Phone number, normalized to ###-###-####
	Phone        string `db:"phone" json:"phone"`
	ImageLink    string `db:"image_link" json:"image_link"`
	FacebookLink string `db:"facebook_link" json:"facebook_link"`
	WebsiteLink  string `db:"website_link" json:"website_link"`
	// The genres played at the venue
	Genres Genres `db:"genres" json:"genres"`
	// Is the venue currently looking for artists?
	SeekingTalent      bool   `db:"seeking_talent" json:"seeking_talent"`
	SeekingDescription string `db:"seeking_description" json:"seeking_description"`
	// Creation date of this entry
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	// Date of the last update of this entry
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// VenueDetail is a venue together with the shows that have been or will be played there
type VenueDetail struct {
	Venue
	PastShows          []ShowListing `json:"past_shows"`
	UpcomingShows      []ShowListing `json:"upcoming_shows"`
	PastShowsCount     int           `json:"past_shows_count"`
	UpcomingShowsCount int           `json:"upcoming_shows_count"`
}

// Area groups all venues located in the same city
type Area struct {
	City   string    `json:"city"`
	State  string    `json:"state"`
	Venues []Summary `json:"venues"`
}
