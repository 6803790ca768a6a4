package main

import (
	"mime/multipart"
	"net/http"

	"vicinity/internal/domain/businesses"
)

// captionsFor pairs the i-th "captions" form value with the i-th file.
func captionsFor(r *http.Request, files []*multipart.FileHeader) []string {
	captions := make([]string, len(files))
	if r.MultipartForm == nil {
		return captions
	}
	copy(captions, r.MultipartForm.Value["captions"])
	return captions
}

// listBusinessImagesHandler godoc
//
//	@Summary		List business images
//	@Description	Primary image first, then oldest first.
//	@Tags			businesses
//	@Produce		json
//	@Param			businessID	path		int	true	"Business ID"
//	@Success		200			{array}		businesses.Image
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Router			/businesses/{businessID}/images [get]
func (app *application) listBusinessImagesHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := readIDParam(r, "businessID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, err := app.store.Businesses.GetOwnerID(r.Context(), businessID); err != nil {
		app.domainErrorResponse(w, r, err, notFound(businesses.ErrNotFound))
		return
	}

	images, err := app.store.Businesses.ListImages(r.Context(), businessID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, images); err != nil {
		app.internalServerError(w, r, err)
	}
}

// uploadBusinessImagesHandler godoc
//
//	@Summary		Upload business images
//	@Description	Owner only. Up to 7 "images" with optional positional "captions". The first image of a business without a primary image becomes primary.
//	@Tags			businesses
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			businessID	path		int		true	"Business ID"
//	@Param			images		formData	file	true	"Images"
//	@Success		201			{array}		businesses.Image
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/businesses/{businessID}/images [post]
func (app *application) uploadBusinessImagesHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := readIDParam(r, "businessID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.requireBusinessOwner(r.Context(), businessID, getUserFromContext(r).ID, false); err != nil {
		app.businessAccessError(w, r, err)
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

	urls, err := app.uploadImages(r, files, folderBusinesses, businessID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	captions := captionsFor(r, files)
	images := make([]businesses.Image, len(urls))
	for i, url := range urls {
		images[i] = businesses.Image{ImageURL: url, Caption: captions[i]}
	}

	saved, err := app.store.Businesses.AddImages(r.Context(), businessID, images)
	if err != nil {
		app.destroyQuietly(urls...)
		app.domainErrorResponse(w, r, err, notFound(businesses.ErrNotFound))
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, saved); err != nil {
		app.internalServerError(w, r, err)
	}
}

// setPrimaryBusinessImageHandler godoc
//
//	@Summary		Set the primary image
//	@Description	Owner only. Clears the flag on every other image of the business.
//	@Tags			businesses
//	@Param			businessID	path	int	true	"Business ID"
//	@Param			imageID		path	int	true	"Image ID"
//	@Success		204
//	@Failure		403	{object}	error
//	@Failure		404	{object}	error
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/businesses/{businessID}/images/{imageID}/primary [put]
func (app *application) setPrimaryBusinessImageHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := readIDParam(r, "businessID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	imageID, err := readIDParam(r, "imageID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.requireBusinessOwner(r.Context(), businessID, getUserFromContext(r).ID, false); err != nil {
		app.businessAccessError(w, r, err)
		return
	}

	if err := app.store.Businesses.SetPrimaryImage(r.Context(), businessID, imageID); err != nil {
		app.domainErrorResponse(w, r, err, notFound(businesses.ErrNotFound, businesses.ErrImageNotFound))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteBusinessImageHandler godoc
//
//	@Summary		Delete a business image
//	@Tags			businesses
//	@Param			businessID	path	int	true	"Business ID"
//	@Param			imageID		path	int	true	"Image ID"
//	@Success		204
//	@Failure		403	{object}	error
//	@Failure		404	{object}	error
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/businesses/{businessID}/images/{imageID} [delete]
func (app *application) deleteBusinessImageHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := readIDParam(r, "businessID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	imageID, err := readIDParam(r, "imageID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.requireBusinessOwner(r.Context(), businessID, getUserFromContext(r).ID, false); err != nil {
		app.businessAccessError(w, r, err)
		return
	}

	img, err := app.store.Businesses.DeleteImage(r.Context(), businessID, imageID)
	if err != nil {
		app.domainErrorResponse(w, r, err, notFound(businesses.ErrImageNotFound))
		return
	}
	app.destroyQuietly(img.ImageURL)

	w.WriteHeader(http.StatusNoContent)
}
