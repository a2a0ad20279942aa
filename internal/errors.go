package internal

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/derWhity/fyyur/internal/repos"
	"github.com/derWhity/fyyur/internal/validate"
)

const (
	// ErrCodeUnknown is the error code for unknown errors
	ErrCodeUnknown = "UNKNOWN_ERROR"
	// ErrCodeRepoError is returned when the request to a repo fails with an error
	ErrCodeRepoError = "STORAGE_QUERY_FAILED"
	// ErrCodeIllegalJSON is returned when the request did not contain a valid JSON body
	ErrCodeIllegalJSON = "ILLEGAL_JSON_REQUEST"
	// ErrCodeIllegalForm is returned when the request did not contain a parseable form body
	ErrCodeIllegalForm = "ILLEGAL_FORM_REQUEST"
	// ErrCodeInvalidUint is returned when an ID is required inside a request, but is not provided or in a wrong format
	ErrCodeInvalidUint = "INVALID_UINT"
	// ErrCodeValidationFailed is returned when a submitted venue, artist or show does not pass validation
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	// ErrCodeVenueNotFound is returned when an operation works on a venue that does not exist
	ErrCodeVenueNotFound = "VENUE_NOT_FOUND"
	// ErrCodeArtistNotFound is returned when an operation works on an artist that does not exist
	ErrCodeArtistNotFound = "ARTIST_NOT_FOUND"
	// ErrCodePageNotFound is returned for routes that do not exist
	ErrCodePageNotFound = "PAGE_NOT_FOUND"
	// ErrCodeMethodNotAllowed is returned when a route exists, but not for the requested method
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// HTTPError is an error that contains information about the error message to return to the client
type HTTPError struct {
	message string
	code    string
	status  int
	data    interface{}
}

// MakeError creates a new HTTPError with the given contents
func MakeError(status int, code, message string) *HTTPError {
	return MakeErrorWithData(status, code, message, nil)
}

// MakeErrorWithData creates a new HTTPError with the given contents and an additional data element
func MakeErrorWithData(status int, code, message string, data interface{}) *HTTPError {
	return &HTTPError{message, code, status, data}
}

// Error implements the errorer interface
func (e *HTTPError) Error() string {
	return e.message
}

// Status returns the HTTP status that should be returned
func (e *HTTPError) Status() int {
	return e.status
}

// ErrorCode returns the machine-readable error code
func (e *HTTPError) ErrorCode() string {
	return e.code
}

// Data returns additional data about the error
func (e *HTTPError) Data() interface{} {
	return e.data
}

func venueNotFound(id uint) *HTTPError {
	return MakeError(http.StatusNotFound, ErrCodeVenueNotFound, fmt.Sprintf("Venue #%d does not exist", id))
}

func artistNotFound(id uint) *HTTPError {
	return MakeError(http.StatusNotFound, ErrCodeArtistNotFound, fmt.Sprintf("Artist #%d does not exist", id))
}

// translateError turns an error coming out of a store transaction into the error handed to the endpoints.
// Validation errors are kept as they are and a unique index violation is reported like a duplicate venue. A missing
// entity becomes notFound (when given) and everything else is a storage error carrying the original error as data.
func translateError(err error, notFound *HTTPError, message string) error {
	if err == nil {
		return nil
	}
	if ferrs, ok := errors.Cause(err).(validate.FieldErrors); ok {
		return ferrs
	}
	if errors.Cause(err) == repos.ErrDuplicateEntity {
		return validate.FieldErrors{"name": validate.MsgVenueExists}
	}
	if notFound != nil && errors.Cause(err) == repos.ErrEntityNotExisting {
		return notFound
	}
	if httpErr, ok := err.(*HTTPError); ok {
		return httpErr
	}
	return MakeErrorWithData(http.StatusInternalServerError, ErrCodeRepoError, message, err)
}

// isStorageError checks if the error is a failed repository call
func isStorageError(err error) bool {
	httpErr, ok := err.(*HTTPError)
	return ok && httpErr.ErrorCode() == ErrCodeRepoError
}
