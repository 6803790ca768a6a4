package main

import (
	"net/http"

	"vicinity/internal/domain/reviews"
)

// listReviewImagesHandler godoc
//
//	@Summary		List review images
//	@Tags			reviews
//	@Produce		json
//	@Param			reviewID	path		int	true	"Review ID"
//	@Success		200			{array}		reviews.Image
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Router			/reviews/{reviewID}/images [get]
func (app *application) listReviewImagesHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := readIDParam(r, "reviewID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, err := app.store.Reviews.GetByID(r.Context(), reviewID); err != nil {
		app.domainErrorResponse(w, r, err, notFound(reviews.ErrNotFound))
		return
	}

	images, err := app.store.Reviews.ListImages(r.Context(), reviewID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, images); err != nil {
		app.internalServerError(w, r, err)
	}
}

// uploadReviewImagesHandler godoc
//
//	@Summary		Upload review images
//	@Description	Author only. Up to 7 "images" with optional positional "captions".
//	@Tags			reviews
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			reviewID	path		int		true	"Review ID"
//	@Param			images		formData	file	true	"Images"
//	@Success		201			{array}		reviews.Image
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/images [post]
func (app *application) uploadReviewImagesHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := readIDParam(r, "reviewID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	actor := reviews.Actor{UserID: getUserFromContext(r).ID}
	if _, err := app.reviews.AuthorOf(r.Context(), actor, reviewID); err != nil {
		app.reviewWriteError(w, r, err)
		return
	}

	files, err := parseMultipart(w, r, "", nil)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if len(files) == 0 {
		app.badRequestResponse(w, r, errNoImages)
		return
	}

	urls, err := app.uploadImages(r, files, folderReviews, reviewID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	captions := captionsFor(r, files)
	images := make([]reviews.Image, len(urls))
	for i, url := range urls {
		images[i] = reviews.Image{ImageURL: url, Caption: captions[i]}
	}

	saved, err := app.store.Reviews.AddImages(r.Context(), reviewID, images)
	if err != nil {
		app.destroyQuietly(urls...)
		app.domainErrorResponse(w, r, err, notFound(reviews.ErrNotFound))
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, saved); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteReviewImageHandler godoc
//
//	@Summary		Delete a review image
//	@Tags			reviews
//	@Param			reviewID	path	int	true	"Review ID"
//	@Param			imageID		path	int	true	"Image ID"
//	@Success		204
//	@Failure		403	{object}	error
//	@Failure		404	{object}	error
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/images/{imageID} [delete]
func (app *application) deleteReviewImageHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := readIDParam(r, "reviewID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	imageID, err := readIDParam(r, "imageID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	actor := reviews.Actor{UserID: getUserFromContext(r).ID}
	if _, err := app.reviews.AuthorOf(r.Context(), actor, reviewID); err != nil {
		app.reviewWriteError(w, r, err)
		return
	}

	img, err := app.store.Reviews.DeleteImage(r.Context(), reviewID, imageID)
	if err != nil {
		app.domainErrorResponse(w, r, err, notFound(reviews.ErrImageNotFound))
		return
	}
	app.destroyQuietly(img.ImageURL)

	w.WriteHeader(http.StatusNoContent)
}
