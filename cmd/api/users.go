package main

import (
	"net/http"

	"vicinity/internal/domain/users"
)

// getCurrentUserHandler godoc
//
//	@Summary		Current user
//	@Description	Returns the profile of the authenticated user.
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	users.User
//	@Failure		401	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/me [get]
func (app *application) getCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := app.jsonResponse(w, http.StatusOK, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateUserPayload struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=150"`
	LastName    *string `json:"last_name" validate:"omitempty,max=150"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,phone"`
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
}

// updateCurrentUserHandler godoc
//
//	@Summary		Update current user
//	@Description	Partially updates the profile of the authenticated user.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		UpdateUserPayload	true	"Fields to change"
//	@Success		200		{object}	users.User
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/users/me [patch]
func (app *application) updateCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload UpdateUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updated, err := app.store.Users.Update(r.Context(), user.ID, users.UserUpdate{
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		PhoneNumber: payload.PhoneNumber,
		Bio:         payload.Bio,
	})
	if err != nil {
		app.domainErrorResponse(w, r, err,
			badRequest(users.ErrNoFieldsToUpdate),
			notFound(users.ErrNotFound),
		)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, updated); err != nil {
		app.internalServerError(w, r, err)
	}
}

// uploadProfilePictureHandler godoc
//
//	@Summary		Upload profile picture
//	@Description	Replaces the profile picture; the previous one is removed from storage.
//	@Tags			users
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			images	formData	file	true	"Picture"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		500		{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/users/profile-picture [post]
func (app *application) uploadProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	files, err := parseMultipart(w, r, "", nil)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if len(files) != 1 {
		app.badRequestResponse(w, r, errNoImages)
		return
	}

	urls, err := app.uploadImages(r, files, folderProfiles, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	previous, err := app.store.Users.SetProfilePicture(r.Context(), user.ID, urls[0])
	if err != nil {
		app.destroyQuietly(urls...)
		app.domainErrorResponse(w, r, err, notFound(users.ErrNotFound))
		return
	}
	if previous != nil && *previous != "" {
		app.destroyQuietly(*previous)
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"profile_picture_url": urls[0]}); err != nil {
		app.internalServerError(w, r, err)
	}
}
