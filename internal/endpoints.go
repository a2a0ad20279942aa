package internal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-kit/kit/endpoint"

	"github.com/derWhity/fyyur/internal/ctxhelper"
	"github.com/derWhity/fyyur/internal/models"
	"github.com/derWhity/fyyur/internal/render"
	"github.com/derWhity/fyyur/internal/validate"
)

// HomeEndpoints is a collection of endpoints for the landing page
type HomeEndpoints struct {
	Home endpoint.Endpoint
}

// VenueEndpoints is a collection of endpoints for browsing and maintaining venues
type VenueEndpoints struct {
	List       endpoint.Endpoint
	Search     endpoint.Endpoint
	Get        endpoint.Endpoint
	CreateForm endpoint.Endpoint
	Create     endpoint.Endpoint
	EditForm   endpoint.Endpoint
	Edit       endpoint.Endpoint
	Delete     endpoint.Endpoint
}

// ArtistEndpoints is a collection of endpoints for browsing and maintaining artists
type ArtistEndpoints struct {
	List       endpoint.Endpoint
	Search     endpoint.Endpoint
	Get        endpoint.Endpoint
	CreateForm endpoint.Endpoint
	Create     endpoint.Endpoint
	EditForm   endpoint.Endpoint
	Edit       endpoint.Endpoint
	Delete     endpoint.Endpoint
}

// ShowEndpoints is a collection of endpoints for listing and booking shows
type ShowEndpoints struct {
	List       endpoint.Endpoint
	CreateForm endpoint.Endpoint
	Create     endpoint.Endpoint
}

// homePage builds the landing page with the recently listed venues and artists. A failing listing leaves the lists
// out instead of failing the whole page.
func homePage(ctx context.Context, ls ListingService, status int, flash string) render.Page {
	p := render.Page{Status: status, Template: "pages/home", Flash: flash}
	recent, err := ls.Recent(ctx)
	if err != nil {
		ctxhelper.Logger(ctx).WithError(err).Warn("Cannot list recent venues and artists for the home page")
		return p
	}
	p.Data = recent
	return p
}

// failedSubmission decides how a failed create, edit or delete is answered: invalid input re-renders the form with
// the field errors, failed storage calls lead back to the home page and everything else is left to the error encoder
func failedSubmission(ctx context.Context, ls ListingService, err error, form render.Page, flash string) (interface{}, error) {
	if ferrs, ok := err.(validate.FieldErrors); ok {
		form.Status = http.StatusBadRequest
		form.Errors = ferrs
		form.Flash = flash
		return form, nil
	}
	if isStorageError(err) {
		logger := ctxhelper.Logger(ctx)
		if cause, ok := err.(*HTTPError).Data().(error); ok {
			logger = logger.WithError(cause)
		}
		logger.Error(err.Error())
		return homePage(ctx, ls, http.StatusInternalServerError, flash), nil
	}
	return nil, err
}

func requestID(request interface{}) (uint, error) {
	id, ok := request.(uint)
	if !ok {
		return 0, MakeError(http.StatusBadRequest, ErrCodeInvalidUint, "No valid ID provided")
	}
	return id, nil
}

// -- Home -------------------------------------------------------------------------------------------------------------

// MakeHomeEndpoints creates the endpoints of the landing page
func MakeHomeEndpoints(ls ListingService) HomeEndpoints {
	return HomeEndpoints{
		Home: func(ctx context.Context, _ interface{}) (interface{}, error) {
			return homePage(ctx, ls, http.StatusOK, ""), nil
		},
	}
}

// -- Venues -----------------------------------------------------------------------------------------------------------

// MakeVenueEndpoints creates the endpoints needed to work with venues
func MakeVenueEndpoints(vs VenueService, ls ListingService) VenueEndpoints {
	return VenueEndpoints{
		List:       MakeListVenuesEndpoint(ls),
		Search:     MakeSearchVenuesEndpoint(ls),
		Get:        MakeGetVenueEndpoint(ls),
		CreateForm: MakeVenueCreateFormEndpoint(),
		Create:     MakeCreateVenueEndpoint(vs, ls),
		EditForm:   MakeVenueEditFormEndpoint(vs),
		Edit:       MakeEditVenueEndpoint(vs, ls),
		Delete:     MakeDeleteVenueEndpoint(vs, ls),
	}
}

// MakeListVenuesEndpoint returns an endpoint listing all venues grouped by city and state
func MakeListVenuesEndpoint(ls ListingService) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		areas, err := ls.Areas(ctx)
		if err != nil {
			return nil, err
		}
		return render.Page{Template: "pages/venues", Data: areas}, nil
	}
}

// MakeSearchVenuesEndpoint returns an endpoint searching venues by name
func MakeSearchVenuesEndpoint(ls ListingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		search, _ := request.(Search)
		res, err := ls.SearchVenues(ctx, search.Term)
		if err != nil {
			return nil, err
		}
		return render.Page{Template: "pages/search_venues", Data: res}, nil
	}
}

// MakeGetVenueEndpoint returns an endpoint showing a venue with its shows
func MakeGetVenueEndpoint(ls ListingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, err := requestID(request)
		if err != nil {
			return nil, err
		}
		detail, err := ls.VenueDetail(ctx, id)
		if err != nil {
			return nil, err
		}
		return render.Page{Template: "pages/show_venue", Data: detail}, nil
	}
}

// MakeVenueCreateFormEndpoint returns an endpoint delivering the empty venue form
func MakeVenueCreateFormEndpoint() endpoint.Endpoint {
	return func(_ context.Context, _ interface{}) (interface{}, error) {
		return render.Page{Template: "forms/new_venue", Data: &models.Venue{}}, nil
	}
}

// MakeCreateVenueEndpoint returns an endpoint listing a new venue
func MakeCreateVenueEndpoint(vs VenueService, ls ListingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		v, ok := request.(models.Venue)
		if !ok {
			return nil, fmt.Errorf("missing venue data")
		}
		created, err := vs.Create(ctx, &v)
		if err != nil {
			return failedSubmission(ctx, ls, err,
				render.Page{Template: "forms/new_venue", Data: &v},
				fmt.Sprintf("An error occurred. Venue %s could not be listed.", v.Name),
			)
		}
		return homePage(ctx, ls, http.StatusOK, fmt.Sprintf("Venue %s was successfully listed!", created.Name)), nil
	}
}

// MakeVenueEditFormEndpoint returns an endpoint delivering the venue form filled with the stored venue
func MakeVenueEditFormEndpoint(vs VenueService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, err := requestID(request)
		if err != nil {
			return nil, err
		}
		v, err := vs.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return render.Page{Template: "forms/edit_venue", Data: v}, nil
	}
}

// MakeEditVenueEndpoint returns an endpoint overwriting a venue with the submitted fields
func MakeEditVenueEndpoint(vs VenueService, ls ListingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(updateVenueRequest)
		if !ok {
			return nil, fmt.Errorf("missing venue data")
		}
		v := req.Venue
		updated, err := vs.Update(ctx, req.ID, &v)
		if err != nil {
			v.ID = req.ID
			return failedSubmission(ctx, ls, err,
				render.Page{Template: "forms/edit_venue", Data: &v},
				fmt.Sprintf("An error occurred. Venue %s could not be edited.", v.Name),
			)
		}
		flash := fmt.Sprintf("Venue %s was successfully edited!", updated.Name)
		detail, err := ls.VenueDetail(ctx, updated.ID)
		if err != nil {
			return homePage(ctx, ls, http.StatusOK, flash), nil
		}
		return render.Page{Template: "pages/show_venue", Data: detail, Flash: flash}, nil
	}
}

// MakeDeleteVenueEndpoint returns an endpoint removing a venue and its shows
func MakeDeleteVenueEndpoint(vs VenueService, ls ListingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, err := requestID(request)
		if err != nil {
			return nil, err
		}
		v, err := vs.Delete(ctx, id)
		if err != nil {
			return failedSubmission(ctx, ls, err, render.Page{},
				fmt.Sprintf("An error occurred. Venue #%d could not be deleted.", id),
			)
		}
		return homePage(ctx, ls, http.StatusOK, fmt.Sprintf("Venue %s was successfully deleted!", v.Name)), nil
	}
}

// -- Artists ----------------------------------------------------------------------------------------------------------

// MakeArtistEndpoints creates the endpoints needed to work with artists
func MakeArtistEndpoints(as ArtistService, ls ListingService) ArtistEndpoints {
	return ArtistEndpoints{
		List:       MakeListArtistsEndpoint(ls),
		Search:     MakeSearchArtistsEndpoint(ls),
		Get:        MakeGetArtistEndpoint(ls),
		CreateForm: MakeArtistCreateFormEndpoint(),
		Create:     MakeCreateArtistEndpoint(as, ls),
		EditForm:   MakeArtistEditFormEndpoint(as),
		Edit:       MakeEditArtistEndpoint(as, ls),
		Delete:     MakeDeleteArtistEndpoint(as, ls),
	}
}

// MakeListArtistsEndpoint returns an endpoint listing all artists
func MakeListArtistsEndpoint(ls ListingService) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		artists, err := ls.Artists(ctx)
		if err != nil {
			return nil, err
		}
		return render.Page{Template: "pages/artists", Data: artists}, nil
	}
}

// MakeSearchArtistsEndpoint returns an endpoint searching artists by name
func MakeSearchArtistsEndpoint(ls ListingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		search, _ := request.(Search)
		res, err := ls.SearchArtists(ctx, search.Term)
		if err != nil {
			return nil, err
		}
		return render.Page{Template: "pages/search_artists", Data: res}, nil
	}
}

// MakeGetArtistEndpoint returns an endpoint showing an artist with its shows
func MakeGetArtistEndpoint(ls ListingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, err := requestID(request)
		if err != nil {
			return nil, err
		}
		detail, err := ls.ArtistDetail(ctx, id)
		if err != nil {
			return nil, err
		}
		return render.Page{Template: "pages/show_artist", Data: detail}, nil
	}
}

// MakeArtistCreateFormEndpoint returns an endpoint delivering the empty artist form
func MakeArtistCreateFormEndpoint() endpoint.Endpoint {
	return func(_ context.Context, _ interface{}) (interface{}, error) {
		return render.Page{Template: "forms/new_artist", Data: &models.Artist{}}, nil
	}
}

// MakeCreateArtistEndpoint returns an endpoint listing a new artist
func MakeCreateArtistEndpoint(as ArtistService, ls ListingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		a, ok := request.(models.Artist)
		if !ok {
			return nil, fmt.Errorf("missing artist data")
		}
		created, err := as.Create(ctx, &a)
		if err != nil {
			return failedSubmission(ctx, ls, err,
				render.Page{Template: "forms/new_artist", Data: &a},
				fmt.Sprintf("An error occurred. Artist %s could not be listed.", a.Name),
			)
		}
		return homePage(ctx, ls, http.StatusOK, fmt.Sprintf("Artist %s was successfully listed!", created.Name)), nil
	}
}

// MakeArtistEditFormEndpoint returns an endpoint delivering the artist form filled with the stored artist
func MakeArtistEditFormEndpoint(as ArtistService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, err := requestID(request)
		if err != nil {
			return nil, err
		}
		a, err := as.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return render.Page{Template: "forms/edit_artist", Data: a}, nil
	}
}

// MakeEditArtistEndpoint returns an endpoint overwriting an artist with the submitted fields
func MakeEditArtistEndpoint(as ArtistService, ls ListingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(updateArtistRequest)
		if !ok {
			return nil, fmt.Errorf("missing artist data")
		}
		a := req.Artist
		updated, err := as.Update(ctx, req.ID, &a)
		if err != nil {
			a.ID = req.ID
			return failedSubmission(ctx, ls, err,
				render.Page{Template: "forms/edit_artist", Data: &a},
				fmt.Sprintf("An error occurred. Artist %s could not be edited.", a.Name),
			)
		}
		flash := fmt.Sprintf("Artist %s was successfully edited!", updated.Name)
		detail, err := ls.ArtistDetail(ctx, updated.ID)
		if err != nil {
			return homePage(ctx, ls, http.StatusOK, flash), nil
		}
		return render.Page{Template: "pages/show_artist", Data: detail, Flash: flash}, nil
	}
}

// MakeDeleteArtistEndpoint returns an endpoint removing an artist and its shows
func MakeDeleteArtistEndpoint(as ArtistService, ls ListingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, err := requestID(request)
		if err != nil {
			return nil, err
		}
		a, err := as.Delete(ctx, id)
		if err != nil {
			return failedSubmission(ctx, ls, err, render.Page{},
				fmt.Sprintf("An error occurred. Artist #%d could not be deleted.", id),
			)
		}
		return homePage(ctx, ls, http.StatusOK, fmt.Sprintf("Artist %s was successfully deleted!", a.Name)), nil
	}
}

// -- Shows ------------------------------------------------------------------------------------------------------------

// MakeShowEndpoints creates the endpoints needed to work with shows
func MakeShowEndpoints(ss ShowService, ls ListingService) ShowEndpoints {
	return ShowEndpoints{
		List: func(ctx context.Context, _ interface{}) (interface{}, error) {
			shows, err := ls.Shows(ctx)
			if err != nil {
				return nil, err
			}
			return render.Page{Template: "pages/shows", Data: shows}, nil
		},
		CreateForm: func(_ context.Context, _ interface{}) (interface{}, error) {
			return render.Page{Template: "forms/new_show", Data: &validate.ShowInput{}}, nil
		},
		Create: MakeCreateShowEndpoint(ss, ls),
	}
}

// MakeCreateShowEndpoint returns an endpoint booking a new show
func MakeCreateShowEndpoint(ss ShowService, ls ListingService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		in, ok := request.(validate.ShowInput)
		if !ok {
			return nil, fmt.Errorf("missing show data")
		}
		if _, err := ss.Create(ctx, in); err != nil {
			return failedSubmission(ctx, ls, err,
				render.Page{Template: "forms/new_show", Data: &in},
				"An error occurred. Show could not be listed.",
			)
		}
		return homePage(ctx, ls, http.StatusOK, "Show was successfully listed!"), nil
	}
}
