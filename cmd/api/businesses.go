package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"vicinity/internal/domain/businesses"
	"vicinity/internal/params"
)

var errNotBusinessOwner = errors.New("only the business owner may do this")

type CreateBusinessPayload struct {
	Name             string         `json:"name" validate:"required,max=200"`
	Category         string         `json:"category" validate:"required"`
	Description      string         `json:"description" validate:"max=5000"`
	Email            string         `json:"email" validate:"omitempty,email,max=254"`
	Phone            string         `json:"phone" validate:"omitempty,phone"`
	Website          string         `json:"website" validate:"omitempty,url,max=200"`
	Address          string         `json:"address" validate:"required,max=255"`
	City             string         `json:"city" validate:"required,max=100"`
	State            string         `json:"state" validate:"required,max=100"`
	ZipCode          string         `json:"zip_code" validate:"max=20"`
	Latitude         *float64       `json:"latitude" validate:"required_with=Longitude,omitempty,gte=-90,lte=90"`
	Longitude        *float64       `json:"longitude" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`
	HoursOfOperation map[string]any `json:"hours_of_operation"`
}

type UpdateBusinessPayload struct {
	Name             *string        `json:"name" validate:"omitempty,max=200"`
	Category         *string        `json:"category"`
	Description      *string        `json:"description" validate:"omitempty,max=5000"`
	Email            *string        `json:"email" validate:"omitempty,email,max=254"`
	Phone            *string        `json:"phone" validate:"omitempty,phone"`
	Website          *string        `json:"website" validate:"omitempty,url,max=200"`
	Address          *string        `json:"address" validate:"omitempty,max=255"`
	City             *string        `json:"city" validate:"omitempty,max=100"`
	State            *string        `json:"state" validate:"omitempty,max=100"`
	ZipCode          *string        `json:"zip_code" validate:"omitempty,max=20"`
	Latitude         *float64       `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64       `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	HoursOfOperation map[string]any `json:"hours_of_operation"`
	IsActive         *bool          `json:"is_active"`
}

func (p UpdateBusinessPayload) toUpdate() (businesses.BusinessUpdate, error) {
	upd := businesses.BusinessUpdate{
		Name:             p.Name,
		Description:      p.Description,
		Email:            p.Email,
		Phone:            p.Phone,
		Website:          p.Website,
		Address:          p.Address,
		City:             p.City,
		State:            p.State,
		ZipCode:          p.ZipCode,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		HoursOfOperation: p.HoursOfOperation,
		IsActive:         p.IsActive,
	}
	if p.Category != nil {
		c, err := businesses.ParseCategory(*p.Category)
		if err != nil {
			return upd, err
		}
		upd.Category = &c
	}
	return upd, nil
}

// createBusinessHandler godoc
//
//	@Summary		Create a business
//	@Description	Creates a business owned by the caller. Accepts multipart with a "business" JSON part and up to 7 "images", or a plain JSON body. The first image becomes the primary one.
//	@Tags			businesses
//	@Accept			multipart/form-data
//	@Accept			json
//	@Produce		json
//	@Param			business	formData	string	true	"CreateBusinessPayload as JSON"
//	@Param			images		formData	file	false	"Images (max 7)"
//	@Success		201			{object}	businesses.Business
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/businesses [post]
func (app *application) createBusinessHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var (
		payload CreateBusinessPayload
		urls    []string
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		files, err := parseMultipart(w, r, "business", &payload)
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		if _, err := businesses.ParseCategory(payload.Category); err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		if len(files) > 0 {
			urls, err = app.uploadImages(r, files, folderBusinesses, user.ID)
			if err != nil {
				app.internalServerError(w, r, err)
				return
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

	category, err := businesses.ParseCategory(payload.Category)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	b := &businesses.Business{
		OwnerID:          user.ID,
		OwnerName:        user.FullName(),
		Name:             payload.Name,
		Category:         category,
		Description:      payload.Description,
		Email:            payload.Email,
		Phone:            payload.Phone,
		Website:          payload.Website,
		Address:          payload.Address,
		City:             payload.City,
		State:            payload.State,
		ZipCode:          payload.ZipCode,
		Latitude:         payload.Latitude,
		Longitude:        payload.Longitude,
		HoursOfOperation: payload.HoursOfOperation,
	}

	if err := app.store.Businesses.Create(r.Context(), b, urls); err != nil {
		app.destroyQuietly(urls...)
		app.domainErrorResponse(w, r, err, badRequest(businesses.ErrDuplicateBusiness))
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, b); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listBusinessesHandler godoc
//
//	@Summary		List businesses
//	@Description	Paginated listing with filters, search and ordering.
//	@Tags			businesses
//	@Produce		json
//	@Param			category	query		string	false	"Category"
//	@Param			city		query		string	false	"City (case-insensitive)"
//	@Param			state		query		string	false	"State (case-insensitive)"
//	@Param			is_verified	query		bool	false	"Verified only"
//	@Param			search		query		string	false	"Substring of name, description or address"
//	@Param			ordering	query		string	false	"name, created_at, average_rating or review_count; prefix - for descending"
//	@Param			page		query		int		false	"Page"
//	@Param			limit		query		int		false	"Page size"
//	@Success		200			{object}	PaginatedResponse
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Router			/businesses [get]
func (app *application) listBusinessesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := businessFilterFromQuery(q)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	p := params.ParsePagination(q)
	filter.Limit, filter.Offset = p.Limit, p.Offset

	list, total, err := app.store.Businesses.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	if err := app.paginatedResponse(w, list, p); err != nil {
		app.internalServerError(w, r, err)
	}
}

func businessFilterFromQuery(q url.Values) (businesses.Filter, error) {
	var filter businesses.Filter
	get := q.Get

	if raw := strings.TrimSpace(get("category")); raw != "" {
		c, err := businesses.ParseCategory(raw)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	if city := strings.TrimSpace(get("city")); city != "" {
		filter.City = &city
	}
	if state := strings.TrimSpace(get("state")); state != "" {
		filter.State = &state
	}

	verified, err := params.OptionalBool(q, "is_verified")
	if err != nil {
		return filter, err
	}
	filter.IsVerified = verified
	filter.Search = get("search")

	filter.Ordering, err = params.ParseOrdering(get("ordering"), businesses.OrderingFields, businesses.DefaultOrdering)
	return filter, err
}

// getBusinessHandler godoc
//
//	@Summary		Get a business
//	@Tags			businesses
//	@Produce		json
//	@Param			businessID	path		int	true	"Business ID"
//	@Success		200			{object}	businesses.Business
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Router			/businesses/{businessID} [get]
func (app *application) getBusinessHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := readIDParam(r, "businessID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	b, err := app.store.Businesses.GetByID(r.Context(), businessID)
	if err != nil {
		app.domainErrorResponse(w, r, err, notFound(businesses.ErrNotFound))
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, b); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateBusinessHandler godoc
//
//	@Summary		Update a business
//	@Description	Owner only. Rating aggregates, owner and verification cannot be changed here.
//	@Tags			businesses
//	@Accept			json
//	@Produce		json
//	@Param			businessID	path		int						true	"Business ID"
//	@Param			payload		body		UpdateBusinessPayload	true	"Fields to change"
//	@Success		200			{object}	businesses.Business
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Failure		500			{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/businesses/{businessID} [patch]
func (app *application) updateBusinessHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := readIDParam(r, "businessID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateBusinessPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	upd, err := payload.toUpdate()
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.requireBusinessOwner(r.Context(), businessID, getUserFromContext(r).ID, false); err != nil {
		app.businessAccessError(w, r, err)
		return
	}

	b, err := app.store.Businesses.Update(r.Context(), businessID, upd)
	if err != nil {
		app.domainErrorResponse(w, r, err,
			badRequest(businesses.ErrNoFieldsToUpdate),
			notFound(businesses.ErrNotFound),
		)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, b); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteBusinessHandler godoc
//
//	@Summary		Delete a business
//	@Description	Owner or admin. Images and reviews go with it.
//	@Tags			businesses
//	@Param			businessID	path	int	true	"Business ID"
//	@Success		204
//	@Failure		403	{object}	error
//	@Failure		404	{object}	error
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Security		ApiKeyAuth
//	@Router			/businesses/{businessID} [delete]
func (app *application) deleteBusinessHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := readIDParam(r, "businessID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()
	if err := app.requireBusinessOwner(ctx, businessID, getUserFromContext(r).ID, true); err != nil {
		app.businessAccessError(w, r, err)
		return
	}

	// collected before the cascade removes the rows
	images, err := app.store.Businesses.ListImages(ctx, businessID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Businesses.Delete(ctx, businessID); err != nil {
		app.domainErrorResponse(w, r, err, notFound(businesses.ErrNotFound))
		return
	}

	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.ImageURL)
	}
	app.destroyQuietly(urls...)

	w.WriteHeader(http.StatusNoContent)
}

// requireBusinessOwner fails with errNotBusinessOwner unless userID owns the
// business, or allowAdmin is set and userID is an admin.
func (app *application) requireBusinessOwner(ctx context.Context, businessID, userID int64, allowAdmin bool) error {
	ownerID, err := app.store.Businesses.GetOwnerID(ctx, businessID)
	if err != nil {
		return err
	}
	if ownerID == userID {
		return nil
	}
	if allowAdmin {
		isAdmin, err := app.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if isAdmin {
			return nil
		}
	}
	return errNotBusinessOwner
}

func (app *application) businessAccessError(w http.ResponseWriter, r *http.Request, err error) {
	app.domainErrorResponse(w, r, err,
		notFound(businesses.ErrNotFound),
		forbidden(errNotBusinessOwner),
	)
}
