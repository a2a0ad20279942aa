package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/derWhity/fyyur/internal/cache"
	"github.com/derWhity/fyyur/internal/ctxhelper"
	"github.com/derWhity/fyyur/internal/log"
	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/render"
	"github.com/derWhity/fyyur/internal/validate"
)

const idPath = "/{id:[0-9]+}"

// Defines an error that defines the HTTP status that should be returned
type httpStatuser interface {
	Status() int
}

// Defines an error that returns a machine-readable error code
type errorCoder interface {
	ErrorCode() string
}

// Defines an error that contains a data field with additional information
type dataBearer interface {
	Data() interface{}
}

// errorResponse is the JSON answer to a failed request
type errorResponse struct {
	OK      bool        `json:"ok"`
	Error   string      `json:"error"`
	Message string      `json:"errorMessage"`
	Details interface{} `json:"errorDetails,omitempty"`
}

// MakeHTTPHandler creates the main HTTP handler for the Fyyur service
func MakeHTTPHandler(
	vs VenueService,
	as ArtistService,
	ss ShowService,
	ls ListingService,
	renderer *render.Renderer,
	responseCache cache.Cache,
	logger *logrus.Entry,
) http.Handler {
	r := mux.NewRouter()
	r.Use(RequestLogger(logger))

	errorEncoder := makeErrorEncoder(renderer, logger)
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(errorEncoder),
		httptransport.ServerBefore(makeContextInjector(logger)),
	}
	encodeResponse := makeResponseEncoder(renderer)
	cached := ResponseCache(responseCache, logger)

	// handle registers an endpoint behind the response cache
	handle := func(method, path string, ep endpoint.Endpoint, dec httptransport.DecodeRequestFunc) {
		r.Methods(method).Path(path).Handler(cached(httptransport.NewServer(ep, dec, encodeResponse, options...)))
	}

	// -- Home -----------------------------------------
	{
		hEp := MakeHomeEndpoints(ls)
		handle(http.MethodGet, "/", hEp.Home, decodeNilRequest)
	}

	// -- Venues ---------------------------------------
	{
		vEp := MakeVenueEndpoints(vs, ls)
		handle(http.MethodGet, "/venues", vEp.List, decodeNilRequest)
		handle(http.MethodPost, "/venues/search", vEp.Search, decodeSearchRequest)
		handle(http.MethodGet, "/venues/create", vEp.CreateForm, decodeNilRequest)
		handle(http.MethodPost, "/venues/create", vEp.Create, decodeVenue)
		handle(http.MethodGet, "/venues"+idPath, vEp.Get, decodeIDFromPath)
		handle(http.MethodDelete, "/venues"+idPath, vEp.Delete, decodeIDFromPath)
		handle(http.MethodGet, "/venues"+idPath+"/edit", vEp.EditForm, decodeIDFromPath)
		handle(http.MethodPost, "/venues"+idPath+"/edit", vEp.Edit, decodeVenueUpdate)
	}

	// -- Artists --------------------------------------
	{
		aEp := MakeArtistEndpoints(as, ls)
		handle(http.MethodGet, "/artists", aEp.List, decodeNilRequest)
		handle(http.MethodPost, "/artists/search", aEp.Search, decodeSearchRequest)
		handle(http.MethodGet, "/artists/create", aEp.CreateForm, decodeNilRequest)
		handle(http.MethodPost, "/artists/create", aEp.Create, decodeArtist)
		handle(http.MethodGet, "/artists"+idPath, aEp.Get, decodeIDFromPath)
		handle(http.MethodDelete, "/artists"+idPath, aEp.Delete, decodeIDFromPath)
		handle(http.MethodGet, "/artists"+idPath+"/edit", aEp.EditForm, decodeIDFromPath)
		handle(http.MethodPost, "/artists"+idPath+"/edit", aEp.Edit, decodeArtistUpdate)
	}

	// -- Shows ----------------------------------------
	{
		sEp := MakeShowEndpoints(ss, ls)
		handle(http.MethodGet, "/shows", sEp.List, decodeNilRequest)
		handle(http.MethodGet, "/shows/create", sEp.CreateForm, decodeNilRequest)
		handle(http.MethodPost, "/shows/create", sEp.Create, decodeShow)
	}

	// Simple alive answer for checking if HTTP can be reached
	r.Methods(http.MethodGet).Path("/alive").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		data := map[string]bool{"ok": true}
		json.NewEncoder(w).Encode(data)
	})

	// Router middlewares are not applied to these two handlers
	injectContext := makeContextInjector(logger)
	requestLogger := RequestLogger(logger)
	r.NotFoundHandler = requestLogger(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		errorEncoder(injectContext(req.Context(), req), MakeError(
			http.StatusNotFound,
			ErrCodePageNotFound,
			fmt.Sprintf("Page '%s' does not exist", req.URL.Path),
		), w)
	}))
	r.MethodNotAllowedHandler = requestLogger(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		errorEncoder(injectContext(req.Context(), req), MakeError(
			http.StatusMethodNotAllowed,
			ErrCodeMethodNotAllowed,
			fmt.Sprintf("Method %s is not allowed for '%s'", req.Method, req.URL.Path),
		), w)
	}))

	return r
}

// decodeNilRequest just does nothing with the request. It is used for endpoints that don't need anything to be passed
func decodeNilRequest(_ context.Context, r *http.Request) (request interface{}, err error) {
	return nil, nil
}

// isJSONBody checks if the request's body is declared as JSON document
func isJSONBody(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// wantsJSON checks if the client accepts JSON answers
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// decodeJSONBody decodes the request's JSON body into target
func decodeJSONBody(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	return nil
}

// parseForm parses the request's form-encoded body
func parseForm(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalForm,
			fmt.Sprintf("Failed to decode form body: %v", err),
		)
	}
	return nil
}

// formBool interprets the value a checkbox sends when it is checked
func formBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "on", "true", "1":
		return true
	}
	return false
}

// decodeSearchRequest reads the search term from the "search_term" form field or JSON property
func decodeSearchRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var search Search
	if isJSONBody(r) {
		if err := decodeJSONBody(r, &search); err != nil {
			return nil, err
		}
		return search, nil
	}
	if err := parseForm(r); err != nil {
		return nil, err
	}
	search.Term = r.PostForm.Get("search_term")
	return search, nil
}

// decodeVenue reads a venue submission from a form or a JSON body
func decodeVenue(_ context.Context, r *http.Request) (interface{}, error) {
	var v models.Venue
	if isJSONBody(r) {
		if err := decodeJSONBody(r, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	if err := parseForm(r); err != nil {
		return nil, err
	}
	f := r.PostForm
	v = models.Venue{
		Name:               f.Get("name"),
		City:               f.Get("city"),
		State:              f.Get("state"),
		Address:            f.Get("address"),
		Phone:              f.Get("phone"),
		ImageLink:          f.Get("image_link"),
		FacebookLink:       f.Get("facebook_link"),
		WebsiteLink:        f.Get("website_link"),
		Genres:             models.Genres(f["genres"]),
		SeekingTalent:      formBool(f.Get("seeking_talent")),
		SeekingDescription: f.Get("seeking_description"),
	}
	return v, nil
}

// decodeArtist reads an artist submission from a form or a JSON body
func decodeArtist(_ context.Context, r *http.Request) (interface{}, error) {
	var a models.Artist
	if isJSONBody(r) {
		if err := decodeJSONBody(r, &a); err != nil {
			return nil, err
		}
		return a, nil
	}
	if err := parseForm(r); err != nil {
		return nil, err
	}
	f := r.PostForm
	a = models.Artist{
		Name:               f.Get("name"),
		City:               f.Get("city"),
		State:              f.Get("state"),
		Phone:              f.Get("phone"),
		ImageLink:          f.Get("image_link"),
		FacebookLink:       f.Get("facebook_link"),
		WebsiteLink:        f.Get("website_link"),
		Genres:             models.Genres(f["genres"]),
		SeekingVenue:       formBool(f.Get("seeking_venue")),
		SeekingDescription: f.Get("seeking_description"),
	}
	return a, nil
}

// decodeShow reads a show submission from a form or a JSON body
func decodeShow(_ context.Context, r *http.Request) (interface{}, error) {
	if isJSONBody(r) {
		var req showJSONRequest
		if err := decodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		return req.input(), nil
	}
	if err := parseForm(r); err != nil {
		return nil, err
	}
	return validate.ShowInput{
		ArtistID:  r.PostForm.Get("artist_id"),
		VenueID:   r.PostForm.Get("venue_id"),
		StartTime: r.PostForm.Get("start_time"),
	}, nil
}

// getUintFromPath is a helper function that gets a uint from the given path variable
func getUintFromPath(varname string, r *http.Request) (uint, error) {
	errmsg := fmt.Sprintf("Value for '%s' is no valid unsigned integer", varname)
	vars := mux.Vars(r)
	str, ok := vars[varname]
	if !ok {
		return 0, MakeError(http.StatusBadRequest, ErrCodeInvalidUint, errmsg)
	}
	id, err := strconv.ParseUint(str, 10, 32)
	if err != nil {
		return 0, MakeError(http.StatusBadRequest, ErrCodeInvalidUint, errmsg)
	}
	return uint(id), nil
}

// Decodes an ID from the "id" path variable provided by GoRilla
func decodeIDFromPath(_ context.Context, r *http.Request) (interface{}, error) {
	return getUintFromPath("id", r)
}

// Decodes a venue from an edit request where the ID of the venue is in the path
func decodeVenueUpdate(ctx context.Context, r *http.Request) (interface{}, error) {
	id, err := getUintFromPath("id", r)
	if err != nil {
		return nil, err
	}
	v, err := decodeVenue(ctx, r)
	if err != nil {
		return nil, err
	}
	return updateVenueRequest{ID: id, Venue: v.(models.Venue)}, nil
}

// Decodes an artist from an edit request where the ID of the artist is in the path
func decodeArtistUpdate(ctx context.Context, r *http.Request) (interface{}, error) {
	id, err := getUintFromPath("id", r)
	if err != nil {
		return nil, err
	}
	a, err := decodeArtist(ctx, r)
	if err != nil {
		return nil, err
	}
	return updateArtistRequest{ID: id, Artist: a.(models.Artist)}, nil
}

// makeResponseEncoder returns an encoder delivering pages as HTML or, if the client asked for it, as JSON
func makeResponseEncoder(renderer *render.Renderer) httptransport.EncodeResponseFunc {
	return func(ctx context.Context, w http.ResponseWriter, response interface{}) error {
		page, ok := response.(render.Page)
		if !ok {
			return errors.Errorf("encodeResponse: Unexpected response type %T", response)
		}
		return renderer.Write(w, page, ctxhelper.WantsJSON(ctx))
	}
}

// errorTemplate selects the error page for the given HTTP status
func errorTemplate(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "errors/404"
	case status >= 400 && status < 500:
		return "errors/400"
	}
	return "errors/500"
}

// makeErrorEncoder returns an encoder building an error response based on the incoming error. Server-side failures
// are logged and never expose their details to the client.
func makeErrorEncoder(renderer *render.Renderer, fallback *logrus.Entry) httptransport.ErrorEncoder {
	return func(ctx context.Context, err error, w http.ResponseWriter) {
		if err == nil {
			panic("encodeError with nil error")
		}
		logger, ok := ctx.Value(ctxhelper.KeyLogger).(*logrus.Entry)
		if !ok {
			logger = fallback
		}
		status := http.StatusInternalServerError
		if st, ok := err.(httpStatuser); ok {
			status = st.Status()
		}
		ret := errorResponse{
			Message: err.Error(),
			Error:   ErrCodeUnknown,
		}
		if cd, ok := err.(errorCoder); ok {
			ret.Error = cd.ErrorCode()
		}
		if status >= http.StatusInternalServerError {
			entry := logger.WithField(log.FldStatus, status)
			if db, ok := err.(dataBearer); ok {
				if cause, ok := db.Data().(error); ok {
					entry = entry.WithError(cause)
				}
			}
			entry.Errorf("Request failed: %v", err)
		} else if db, ok := err.(dataBearer); ok && db.Data() != nil {
			ret.Details = db.Data()
		}

		if ctxhelper.WantsJSON(ctx) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(&ret)
			return
		}
		page := render.Page{Status: status, Template: errorTemplate(status), Data: ret.Message}
		if status >= http.StatusInternalServerError {
			page.Data = nil
		}
		if err := renderer.HTML(w, page); err != nil {
			logger.WithError(err).Error("Failed to render error page")
			http.Error(w, http.StatusText(status), status)
		}
	}
}

// makeContextInjector returns a function putting the request-scoped logger and the negotiated answer format into the
// context of every call
func makeContextInjector(logger *logrus.Entry) httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		reqLogger := logger
		if id := ctxhelper.RequestID(ctx); id != "" {
			reqLogger = logger.WithField(log.FldRequestID, id)
		}
		ctx = context.WithValue(ctx, ctxhelper.KeyLogger, reqLogger)
		return context.WithValue(ctx, ctxhelper.KeyWantsJSON, wantsJSON(r))
	}
}
