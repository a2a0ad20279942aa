// Package validate checks and normalizes venue, artist and show submissions before they are stored
package validate

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/repos"
)

// Messages returned for failed checks
const (
	MsgRequired       = "This field is required."
	MsgInvalidURL     = "Invalid URL."
	MsgInvalidPhone   = "Invalid phone number."
	MsgVenueExists    = "Venue already exists."
	MsgInvalidState   = "Invalid state."
	MsgInvalidGenre   = "Invalid genre."
	MsgInvalidID      = "Invalid ID."
	MsgInvalidTime    = "Invalid date and time."
	MsgArtistNotFound = "Artist does not exist."
	MsgVenueNotFound  = "Venue does not exist."
)

var (
	phonePattern = regexp.MustCompile(`^\(?(\d{3})\)?[-.\s]?(\d{3})[-.\s]?(\d{4})$`)
	idPattern    = regexp.MustCompile(`^[1-9][0-9]*$`)

	urlRule   = is.URL.Error(MsgInvalidURL)
	stateRule = validation.In(toInterfaces(models.States)...).Error(MsgInvalidState)
	genreRule = validation.By(func(value interface{}) error {
		for _, g := range value.(models.Genres) {
			if !genreSet[g] {
				// Reject on the first genre not part of the choices
				return errors.New(MsgInvalidGenre)
			}
		}
		return nil
	})
	genreSet = map[string]bool{}
	upper    = cases.Upper(language.Und)
)

func init() {
	for _, g := range models.GenreChoices {
		genreSet[g] = true
	}
}

func toInterfaces(values []string) []interface{} {
	ret := make([]interface{}, len(values))
	for i, v := range values {
		ret[i] = v
	}
	return ret
}

// FieldErrors maps the names of the fields that failed validation to a human readable message
type FieldErrors map[string]string

// Error implements the error interface
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = fmt.Sprintf("%s: %s", field, e[field])
	}
	return strings.Join(parts, "; ")
}

// fieldErrors converts the result of an ozzo validation run
func fieldErrors(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validation.Errors)
	if !ok {
		// Internal errors of the validation library are no user errors
		return err
	}
	ret := FieldErrors{}
	for field, e := range verrs {
		ret[field] = e.Error()
	}
	return ret
}

// stages runs the given checks in order and stops at the first one that fails
func stages(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// normalizeGenres trims the given genres and drops empty entries and duplicates while keeping their order
func normalizeGenres(genres models.Genres) models.Genres {
	seen := map[string]bool{}
	ret := models.Genres{}
	for _, g := range genres {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		ret = append(ret, g)
	}
	return ret
}

func normalizeState(state string) string {
	return upper.String(strings.TrimSpace(state))
}

// NormalizePhone rewrites a phone number matching the accepted pattern to ###-###-####. Other input is returned
// unchanged.
func NormalizePhone(phone string) string {
	m := phonePattern.FindStringSubmatch(phone)
	if m == nil {
		return phone
	}
	return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
}

func checkPhone(phone *string) func() error {
	return func() error {
		err := validation.Errors{
			"phone": validation.Validate(*phone,
				validation.Required.Error(MsgInvalidPhone),
				validation.Match(phonePattern).Error(MsgInvalidPhone),
			),
		}.Filter()
		if err != nil {
			return fieldErrors(err)
		}
		*phone = NormalizePhone(*phone)
		return nil
	}
}

func checkState(state string) func() error {
	return func() error {
		return fieldErrors(validation.Errors{"state": validation.Validate(state, stateRule)}.Filter())
	}
}

func checkGenres(genres models.Genres) func() error {
	return func() error {
		return fieldErrors(validation.Errors{"genres": validation.Validate(genres, genreRule)}.Filter())
	}
}

// isNotFound checks if a repository error means that the entity does not exist
func isNotFound(err error) bool {
	return errors.Cause(err) == repos.ErrEntityNotExisting
}

// VenueFinder looks up venues by their identifying name and address
type VenueFinder interface {
	GetByNameAndAddress(ctx context.Context, name, address string) (*models.Venue, error)
}

// Venue validates and normalizes a venue submission. Validation happens in stages - required fields, phone number,
// duplicate check, state and genres - and stops at the first failing stage. Field problems are returned as
// FieldErrors, failed lookups as a plain error. The venue with the ID of v is never reported as its own duplicate.
func Venue(ctx context.Context, v *models.Venue, finder VenueFinder) error {
	v.Name = strings.TrimSpace(v.Name)
	v.City = strings.TrimSpace(v.City)
	v.State = normalizeState(v.State)
	v.Address = strings.TrimSpace(v.Address)
	v.Phone = strings.TrimSpace(v.Phone)
	v.ImageLink = strings.TrimSpace(v.ImageLink)
	v.FacebookLink = strings.TrimSpace(v.FacebookLink)
	v.WebsiteLink = strings.TrimSpace(v.WebsiteLink)
	v.SeekingDescription = strings.TrimSpace(v.SeekingDescription)
	v.Genres = normalizeGenres(v.Genres)

	return stages(
		func() error {
			return fieldErrors(validation.ValidateStruct(v,
				validation.Field(&v.Name, validation.Required.Error(MsgRequired)),
				validation.Field(&v.City, validation.Required.Error(MsgRequired)),
				validation.Field(&v.State, validation.Required.Error(MsgRequired)),
				validation.Field(&v.Address, validation.Required.Error(MsgRequired)),
				validation.Field(&v.Genres, validation.Required.Error(MsgRequired)),
				validation.Field(&v.FacebookLink, urlRule),
			))
		},
		checkPhone(&v.Phone),
		func() error {
			existing, err := finder.GetByNameAndAddress(ctx, v.Name, v.Address)
			if err != nil {
				if isNotFound(err) {
					return nil
				}
				return errors.Wrap(err, "Venue: Duplicate check failed")
			}
			if existing.ID != v.ID {
				return FieldErrors{"name": MsgVenueExists}
			}
			return nil
		},
		checkState(v.State),
		checkGenres(v.Genres),
	)
}

// Artist validates and normalizes an artist submission. Validation happens in stages - required fields, phone
// number, state and genres - and stops at the first failing stage.
func Artist(a *models.Artist) error {
	a.Name = strings.TrimSpace(a.Name)
	a.City = strings.TrimSpace(a.City)
	a.State = normalizeState(a.State)
	a.Phone = strings.TrimSpace(a.Phone)
	a.ImageLink = strings.TrimSpace(a.ImageLink)
	a.FacebookLink = strings.TrimSpace(a.FacebookLink)
	a.WebsiteLink = strings.TrimSpace(a.WebsiteLink)
	a.SeekingDescription = strings.TrimSpace(a.SeekingDescription)
	a.Genres = normalizeGenres(a.Genres)

	return stages(
		func() error {
			return fieldErrors(validation.ValidateStruct(a,
				validation.Field(&a.Name, validation.Required.Error(MsgRequired)),
				validation.Field(&a.City, validation.Required.Error(MsgRequired)),
				validation.Field(&a.State, validation.Required.Error(MsgRequired)),
				validation.Field(&a.Phone, validation.Required.Error(MsgRequired)),
				validation.Field(&a.Genres, validation.Required.Error(MsgRequired)),
				validation.Field(&a.FacebookLink, urlRule),
			))
		},
		checkPhone(&a.Phone),
		checkState(a.State),
		checkGenres(a.Genres),
	)
}
