package main

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"vicinity/internal/domain/businesses"
	"vicinity/internal/domain/ratings"
	"vicinity/internal/domain/reviews"
	"vicinity/internal/params"
)

type CreateReviewPayload struct {
	Business    int64  `json:"business" validate:"required,gt=0"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Title       string `json:"title" validate:"required,max=200"`
	Content     string `json:"content" validate:"required"`
	IsPublished *bool  `json:"is_published"`
}

type UpdateReviewPayload struct {
	Rating      *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content     *string `json:"content" validate:"omitempty,min=1"`
	IsPublished *bool   `json:"is_published"`
}

// ReplaceReviewPayload is the full representation a PUT must carry.
type ReplaceReviewPayload struct {
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Title       string `json:"title" validate:"required,max=200"`
	Content     string `json:"content" validate:"required"`
	IsPublished *bool  `json:"is_published"`
}

// reviewWriteError handles the error of a review write. A failed aggregate
// refresh after a committed write is not a request failure; it has already
// been logged and counted, so the caller carries on with its success response.
func (app *application) reviewWriteError(w http.ResponseWriter, r *http.Request, err error) (handled bool) {
	if err == nil {
		return false
	}
	var aggErr *ratings.AggregateError
	if errors.As(err, &aggErr) {
		return false
	}
	app.domainErrorResponse(w, r, err,
		badRequest(reviews.ErrDuplicateReview, reviews.ErrInvalidRating, reviews.ErrNoFieldsToUpdate, reviews.ErrBusinessNotFound),
		notFound(reviews.ErrNotFound),
		forbidden(reviews.ErrForbidden),
	)
	return true
}

func (app *application) actor(r *http.Request) (reviews.Actor, error) {
	user := getUserFromContext(r)
	isAdmin, err := app.isAdmin(r.Context(), user.ID)
	if err != nil {
		return reviews.Actor{}, err
	}
	return reviews.Actor{UserID: user.ID, IsAdmin: isAdmin}, nil
}

// createReviewHandler godoc
//
//	@Summary		Create a review
//	@Description	One review per user and business. Published reviews update the business rating immediately.
//	@Description	Send JSON, or multipart with the payload in a "review" part plus up to 7 "images" and optional "captions".
//	@Tags			reviews
//	@Accept			json,mpfd
//	@Produce		json
//	@Param			payload	body		CreateReviewPayload	true	"Review"
//	@Success		201		{object}	reviews.Review
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews [post]
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var (
		payload CreateReviewPayload
		images  []reviews.Image
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		files, err := parseMultipart(w, r, "review", &payload)
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		if len(files) > 0 {
			urls, err := app.uploadImages(r, files, folderReviews, user.ID)
			if err != nil {
				app.internalServerError(w, r, err)
				return
			}
			captions := captionsFor(r, files)
			images = make([]reviews.Image, len(urls))
			for i, u := range urls {
				images[i] = reviews.Image{ImageURL: u, Caption: captions[i]}
			}
		}
	} else {
		if err := readJSON(w, r, &payload); err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		if err := Validate.Struct(payload); err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
	}

	rv := &reviews.Review{
		BusinessID:  payload.Business,
		UserID:      user.ID,
		Rating:      payload.Rating,
		Title:       payload.Title,
		Content:     payload.Content,
		IsPublished: true,
		Images:      images,
	}
	if payload.IsPublished != nil {
		rv.IsPublished = *payload.IsPublished
	}

	created, err := app.reviews.Create(r.Context(), rv)
	if app.reviewWriteError(w, r, err) {
		app.destroyQuietly(imageURLs(images)...)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, created); err != nil {
		app.internalServerError(w, r, err)
	}
}

func imageURLs(images []reviews.Image) []string {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.ImageURL)
	}
	return urls
}

// listReviewsHandler godoc
//
//	@Summary		List reviews
//	@Description	Paginated listing. Only published reviews are listed unless is_published is given.
//	@Tags			reviews
//	@Produce		json
//	@Param			business		query		int		false	"Business ID"
//	@Param			rating			query		int		false	"Rating 1-5"
//	@Param			is_published	query		bool	false	"Published flag"
//	@Param			ordering		query		string	false	"created_at or rating; prefix - for descending"
//	@Param			page			query		int		false	"Page"
//	@Param			limit			query		int		false	"Page size"
//	@Success		200				{object}	PaginatedResponse
//	@Failure		400				{object}	ErrorBadRequestResponse
//	@Failure		500				{object}	ErrorInternalServerResponse
//	@Router			/reviews [get]
func (app *application) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := reviewFilterFromQuery(q)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	p := params.ParsePagination(q)
	filter.Limit, filter.Offset = p.Limit, p.Offset

	list, total, err := app.store.Reviews.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	if err := app.paginatedResponse(w, list, p); err != nil {
		app.internalServerError(w, r, err)
	}
}

func reviewFilterFromQuery(q url.Values) (reviews.Filter, error) {
	var (
		filter reviews.Filter
		err    error
	)

	if filter.BusinessID, err = params.OptionalInt64(q, "business"); err != nil {
		return filter, err
	}

	if raw := strings.TrimSpace(q.Get("rating")); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil || !reviews.ValidRating(rating) {
			return filter, reviews.ErrInvalidRating
		}
		filter.Rating = &rating
	}

	if filter.IsPublished, err = params.OptionalBool(q, "is_published"); err != nil {
		return filter, err
	}
	if filter.IsPublished == nil {
		published := true
		filter.IsPublished = &published
	}

	filter.Ordering, err = params.ParseOrdering(q.Get("ordering"), reviews.OrderingFields, reviews.DefaultOrdering)
	return filter, err
}

// listBusinessReviewsHandler godoc
//
//	@Summary		Published reviews of a business
//	@Description	Every published review of the business, newest first.
//	@Tags			businesses
//	@Produce		json
//	@Param			businessID	path		int	true	"Business ID"
//	@Success		200			{array}		reviews.Review
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Router			/businesses/{businessID}/reviews [get]
func (app *application) listBusinessReviewsHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := readIDParam(r, "businessID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, err := app.store.Businesses.GetOwnerID(r.Context(), businessID); err != nil {
		app.domainErrorResponse(w, r, err, notFound(businesses.ErrNotFound))
		return
	}

	list, err := app.store.Reviews.ListPublished(r.Context(), businessID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getReviewHandler godoc
//
//	@Summary		Get a review
//	@Tags			reviews
//	@Produce		json
//	@Param			reviewID	path		int	true	"Review ID"
//	@Success		200			{object}	reviews.Review
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Router			/reviews/{reviewID} [get]
func (app *application) getReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := readIDParam(r, "reviewID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	rv, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		app.domainErrorResponse(w, r, err, notFound(reviews.ErrNotFound))
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, rv); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateReviewHandler godoc
//
//	@Summary		Update a review
//	@Description	Author only. Marks the review as edited; writing rating or is_published refreshes the business rating.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			reviewID	path		int					true	"Review ID"
//	@Param			payload		body		UpdateReviewPayload	true	"Fields to change"
//	@Success		200			{object}	reviews.Review
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID} [patch]
func (app *application) updateReviewHandler(w http.ResponseWriter, r *http.Request) {
	var payload UpdateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.writeReviewUpdate(w, r, reviews.ReviewUpdate{
		Rating:      payload.Rating,
		Title:       payload.Title,
		Content:     payload.Content,
		IsPublished: payload.IsPublished,
	})
}

// replaceReviewHandler godoc
//
//	@Summary		Replace a review
//	@Description	Author only. Rating, title and content are required; is_published is left unchanged when omitted.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			reviewID	path		int						true	"Review ID"
//	@Param			payload		body		ReplaceReviewPayload	true	"Review"
//	@Success		200			{object}	reviews.Review
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID} [put]
func (app *application) replaceReviewHandler(w http.ResponseWriter, r *http.Request) {
	var payload ReplaceReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.writeReviewUpdate(w, r, reviews.ReviewUpdate{
		Rating:      &payload.Rating,
		Title:       &payload.Title,
		Content:     &payload.Content,
		IsPublished: payload.IsPublished,
	})
}

func (app *application) writeReviewUpdate(w http.ResponseWriter, r *http.Request, upd reviews.ReviewUpdate) {
	reviewID, err := readIDParam(r, "reviewID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	actor := reviews.Actor{UserID: getUserFromContext(r).ID}
	updated, err := app.reviews.Update(r.Context(), actor, reviewID, upd)
	if app.reviewWriteError(w, r, err) {
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, updated); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteReviewHandler godoc
//
//	@Summary		Delete a review
//	@Description	Author or admin. Refreshes the business rating.
//	@Tags			reviews
//	@Param			reviewID	path	int	true	"Review ID"
//	@Success		204
//	@Failure		403	{object}	error
//	@Failure		404	{object}	error
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID} [delete]
func (app *application) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := readIDParam(r, "reviewID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	actor, err := app.actor(r)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// collected before the cascade removes the rows
	images, err := app.store.Reviews.ListImages(r.Context(), reviewID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	err = app.reviews.Delete(r.Context(), actor, reviewID)
	if app.reviewWriteError(w, r, err) {
		return
	}

	app.destroyQuietly(imageURLs(images)...)

	w.WriteHeader(http.StatusNoContent)
}
