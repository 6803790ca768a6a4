package main

import (
	"net/http"

	"vicinity/internal/domain/businesses"
	"vicinity/internal/domain/proximity"
)

// nearbyBusinessesHandler godoc
//
//	@Summary		Nearby businesses
//	@Description	Up to 10 businesses strictly within radius km of the given one, closest first. The origin itself is never included.
//	@Tags			businesses
//	@Produce		json
//	@Param			businessID	path		int		true	"Business ID"
//	@Param			radius		query		number	false	"Radius in km (default 5.0)"
//	@Success		200			{array}		proximity.Result
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Router			/businesses/{businessID}/nearby [get]
func (app *application) nearbyBusinessesHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := readIDParam(r, "businessID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	radius, err := proximity.ParseRadius(r.URL.Query().Get("radius"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	results, err := app.nearby.Nearby(r.Context(), businessID, radius)
	if err != nil {
		app.domainErrorResponse(w, r, err,
			badRequest(proximity.ErrNoCoordinates, proximity.ErrInvalidRadius),
			notFound(businesses.ErrNotFound),
		)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, results); err != nil {
		app.internalServerError(w, r, err)
	}
}
