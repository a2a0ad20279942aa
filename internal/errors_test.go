package internal

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/derWhity/fyyur/internal/repos"
	"github.com/derWhity/fyyur/internal/validate"
)

func TestTranslateError(t *testing.T) {
	notFound := venueNotFound(3)

	assert.NoError(t, translateError(nil, notFound, "failed"))

	ferrs := validate.FieldErrors{"state": validate.MsgInvalidState}
	assert.Equal(t, ferrs, translateError(ferrs, notFound, "failed"))

	err := translateError(errors.Wrap(repos.ErrDuplicateEntity, "Create: Venue 'Boiler Room'"), notFound, "failed")
	assert.Equal(t, validate.FieldErrors{"name": validate.MsgVenueExists}, err)

	assert.Equal(t, notFound, translateError(repos.ErrEntityNotExisting, notFound, "failed"))

	err = translateError(errors.New("disk full"), notFound, "failed")
	requireHTTPStatus(t, err, http.StatusInternalServerError)
	assert.True(t, isStorageError(err))
	assert.False(t, isStorageError(notFound))
}
