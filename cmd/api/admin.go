package main

import (
	"net/http"

	"vicinity/internal/domain/businesses"
	"vicinity/internal/domain/ratings"
)

type VerificationPayload struct {
	IsVerified *bool `json:"is_verified" validate:"required"`
}

// setBusinessVerificationHandler godoc
//
//	@Summary		Verify or unverify a business
//	@Tags			admin
//	@Accept			json
//	@Param			businessID	path	int					true	"Business ID"
//	@Param			payload		body	VerificationPayload	true	"Verification flag"
//	@Success		204
//	@Failure		400	{object}	ErrorBadRequestResponse
//	@Failure		403	{object}	error
//	@Failure		404	{object}	error
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/businesses/{businessID}/verification [patch]
func (app *application) setBusinessVerificationHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := readIDParam(r, "businessID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload VerificationPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Businesses.SetVerified(r.Context(), businessID, *payload.IsVerified); err != nil {
		app.domainErrorResponse(w, r, err, notFound(businesses.ErrNotFound))
		return
	}

	app.logger.Infow("business verification changed", "business_id", businessID,
		"is_verified", *payload.IsVerified, "admin_id", getUserFromContext(r).ID)

	w.WriteHeader(http.StatusNoContent)
}

// recomputeAggregatesHandler godoc
//
//	@Summary		Recompute the rating of a business
//	@Description	Recounts the published reviews of the business and stores the average and count.
//	@Tags			admin
//	@Produce		json
//	@Param			businessID	path		int	true	"Business ID"
//	@Success		200			{object}	ratings.Aggregate
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/businesses/{businessID}/aggregates [post]
func (app *application) recomputeAggregatesHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := readIDParam(r, "businessID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	agg, err := app.aggregates.Recompute(r.Context(), businessID)
	if err != nil {
		app.domainErrorResponse(w, r, err, notFound(ratings.ErrBusinessNotFound))
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, agg); err != nil {
		app.internalServerError(w, r, err)
	}
}

// reconcileAggregatesHandler godoc
//
//	@Summary		Repair stale ratings
//	@Description	Recomputes every business whose stored rating disagrees with its published reviews.
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	map[string]int
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/aggregates/reconcile [post]
func (app *application) reconcileAggregatesHandler(w http.ResponseWriter, r *http.Request) {
	fixed, err := app.aggregates.Reconcile(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if fixed > 0 && app.metrics != nil {
		app.metrics.AggregatesFixed.Add(float64(fixed))
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]int{"fixed": fixed}); err != nil {
		app.internalServerError(w, r, err)
	}
}
