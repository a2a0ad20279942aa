package internal

import (
	"encoding/json"

	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/validate"
)

// -- Request data -----------------------------------------------------------------------------------------------------

// Search describes a name search
type Search struct {
	// The string to search for
	Term string `json:"search_term"`
}

// updateVenueRequest carries the submitted fields of a venue together with the ID taken from the path
type updateVenueRequest struct {
	ID    uint
	Venue models.Venue
}

// updateArtistRequest carries the submitted fields of an artist together with the ID taken from the path
type updateArtistRequest struct {
	ID     uint
	Artist models.Artist
}

// showJSONRequest is a show submitted as JSON. IDs may be sent as numbers or strings.
type showJSONRequest struct {
	ArtistID  json.Number `json:"artist_id"`
	VenueID   json.Number `json:"venue_id"`
	StartTime string      `json:"start_time"`
}

func (r showJSONRequest) input() validate.ShowInput {
	return validate.ShowInput{
		ArtistID:  r.ArtistID.String(),
		VenueID:   r.VenueID.String(),
		StartTime: r.StartTime,
	}
}
