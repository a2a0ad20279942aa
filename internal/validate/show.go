package validate

import (
	"context"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"

	"github.com/derWhity/fyyur/internal/models"
)

// Layouts accepted for the start time of a show. Times without zone information are taken as UTC.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC3339,
}

// ShowInput is a show submission as it arrives from a form
type ShowInput struct {
	ArtistID  string `json:"artist_id"`
	VenueID   string `json:"venue_id"`
	StartTime string `json:"start_time"`
}

// ParseStartTime parses the start time of a show in one of the accepted layouts
func ParseStartTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Errorf("ParseStartTime: '%s' is no valid date and time", value)
}

// ArtistGetter loads artists by ID
type ArtistGetter interface {
	GetByID(ctx context.Context, id uint) (*models.Artist, error)
}

// VenueGetter loads venues by ID
type VenueGetter interface {
	GetByID(ctx context.Context, id uint) (*models.Venue, error)
}

// Show validates a show submission and converts it into a show. The format of all fields is checked first, then the
// referenced artist and venue have to exist.
func Show(ctx context.Context, in ShowInput, artists ArtistGetter, venues VenueGetter) (*models.Show, error) {
	in.ArtistID = strings.TrimSpace(in.ArtistID)
	in.VenueID = strings.TrimSpace(in.VenueID)
	in.StartTime = strings.TrimSpace(in.StartTime)

	err := validation.ValidateStruct(&in,
		validation.Field(&in.ArtistID,
			validation.Required.Error(MsgRequired),
			validation.Match(idPattern).Error(MsgInvalidID),
		),
		validation.Field(&in.VenueID,
			validation.Required.Error(MsgRequired),
			validation.Match(idPattern).Error(MsgInvalidID),
		),
		validation.Field(&in.StartTime,
			validation.Required.Error(MsgRequired),
			validation.By(func(value interface{}) error {
				if _, err := ParseStartTime(value.(string)); err != nil {
					return errors.New(MsgInvalidTime)
				}
				return nil
			}),
		),
	)
	if err != nil {
		return nil, fieldErrors(err)
	}

	show := &models.Show{}
	artistID, err := strconv.ParseUint(in.ArtistID, 10, 32)
	if err != nil {
		return nil, FieldErrors{"artist_id": MsgInvalidID}
	}
	venueID, err := strconv.ParseUint(in.VenueID, 10, 32)
	if err != nil {
		return nil, FieldErrors{"venue_id": MsgInvalidID}
	}
	show.ArtistID = uint(artistID)
	show.VenueID = uint(venueID)
	show.StartTime, _ = ParseStartTime(in.StartTime)

	ferrs := FieldErrors{}
	if _, err := artists.GetByID(ctx, show.ArtistID); err != nil {
		if !isNotFound(err) {
			return nil, errors.Wrap(err, "Show: Failed to look up artist")
		}
		ferrs["artist_id"] = MsgArtistNotFound
	}
	if _, err := venues.GetByID(ctx, show.VenueID); err != nil {
		if !isNotFound(err) {
			return nil, errors.Wrap(err, "Show: Failed to look up venue")
		}
		ferrs["venue_id"] = MsgVenueNotFound
	}
	if len(ferrs) > 0 {
		return nil, ferrs
	}
	return show, nil
}
