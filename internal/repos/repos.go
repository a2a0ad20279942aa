// Package repos contains the repository interfaces needed in Fyyur
// It exists to prevent circular dependencies between fyyur and the repo implementations
package repos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/repos/sqldriver"
)

var (
	// ErrEntityNotExisting is fired by a repository when an entity that is read, updated or deleted does not exist
	ErrEntityNotExisting = fmt.Errorf("cannot update: Entity does not exist")
	// ErrDuplicateEntity is fired by a repository when a write collides with a unique index
	ErrDuplicateEntity = fmt.Errorf("cannot write: Entity already exists")
)

// DBTX is the part of sqlx shared by a database handle and a transaction. Repositories are bound to one of both.
type DBTX interface {
	sqlx.ExtContext
}

// VenueRepo defines a repository that handles storing and querying venues
type VenueRepo interface {
	// Create creates a new venue and fills in its ID
	Create(ctx context.Context, v *models.Venue) error
	// Update overwrites all fields of an existing venue
	Update(ctx context.Context, v *models.Venue) error
	// Delete removes an existing venue
	Delete(ctx context.Context, id uint) error
	// GetByID returns the venue with the given ID
	GetByID(ctx context.Context, id uint) (*models.Venue, error)
	// GetByNameAndAddress returns the venue identified by the given name and address
	GetByNameAndAddress(ctx context.Context, name, address string) (*models.Venue, error)
	// ListWithLocation returns all venues with their city, state and number of shows starting after now
	ListWithLocation(ctx context.Context, now time.Time) ([]models.Summary, error)
	// Search returns all venues whose name contains the search term, ignoring case
	Search(ctx context.Context, term string, now time.Time) ([]models.Summary, error)
	// Recent returns the most recently created venues
	Recent(ctx context.Context, limit uint) ([]models.Summary, error)
}

// ArtistRepo defines a repository that handles storing and querying artists
type ArtistRepo interface {
	// Create creates a new artist and fills in its ID
	Create(ctx context.Context, a *models.Artist) error
	// Update overwrites all fields of an existing artist
	Update(ctx context.Context, a *models.Artist) error
	// Delete removes an existing artist
	Delete(ctx context.Context, id uint) error
	// GetByID returns the artist with the given ID
	GetByID(ctx context.Context, id uint) (*models.Artist, error)
	// List returns all artists ordered by name
	List(ctx context.Context, now time.Time) ([]models.Summary, error)
	// Search returns all artists whose name contains the search term, ignoring case
	Search(ctx context.Context, term string, now time.Time) ([]models.Summary, error)
	// Recent returns the most recently created artists
	Recent(ctx context.Context, limit uint) ([]models.Summary, error)
}

// ShowRepo defines a repository that handles storing and querying shows
type ShowRepo interface {
	// Create creates a new show and fills in its ID
	Create(ctx context.Context, s *models.Show) error
	// List returns all shows joined with their venue and artist
	List(ctx context.Context) ([]models.ShowListing, error)
	// ListByVenue returns all shows played at the given venue
	ListByVenue(ctx context.Context, venueID uint) ([]models.ShowListing, error)
	// ListByArtist returns all shows played by the given artist
	ListByArtist(ctx context.Context, artistID uint) ([]models.ShowListing, error)
	// DeleteByVenue removes all shows of a venue and returns the number of removed shows
	DeleteByVenue(ctx context.Context, venueID uint) (int64, error)
	// DeleteByArtist removes all shows of an artist and returns the number of removed shows
	DeleteByArtist(ctx context.Context, artistID uint) (int64, error)
}

// Tx gives access to repositories that all work inside the same transaction
type Tx interface {
	Venues() VenueRepo
	Artists() ArtistRepo
	Shows() ShowRepo
}

// Store is the entry point to the persistence layer. The repositories returned directly are bound to the database
// handle - InTx runs the given function with repositories bound to a fresh transaction which is committed when the
// function returns without error and rolled back otherwise.
type Store interface {
	Tx
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// -- Helpers for SQLX repos -------------------------------------------------------------------------------------------

// DoRollback rolls back a transaction and catches any error resulting from it while appending the original error
func DoRollback(tx *sqlx.Tx, originalError error) error {
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("doRollback: Transaction rollback failed: %v; Recent error: %v", err, originalError)
	}
	return originalError
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern builds a case-folded pattern for a `LOWER(column) LIKE ? ESCAPE '\'` substring search. Wildcards inside
// the term are matched literally. The folding matches the LOWER() of both supported databases.
func LikePattern(term string) string {
	folded := sqldriver.Lower(strings.TrimSpace(term))
	return "%" + likeEscaper.Replace(folded) + "%"
}

// DBTime converts a timestamp into the form it is stored and compared in: UTC with second precision
func DBTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
