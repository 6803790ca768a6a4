package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
)

const (
	maxUploadBytes = 15 * 1024 * 1024
	maxImages      = 7
)

var errNoImages = errors.New("at least one image is required")

// parseMultipart reads a form with an optional JSON part under jsonField and
// up to maxImages files under "images".
func parseMultipart(w http.ResponseWriter, r *http.Request, jsonField string, data any) ([]*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	if data != nil {
		if err := json.Unmarshal([]byte(r.FormValue(jsonField)), data); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", jsonField, err)
		}
		if err := Validate.Struct(data); err != nil {
			return nil, err
		}
	}

	files := r.MultipartForm.File["images"]
	if len(files) > maxImages {
		return nil, fmt.Errorf("maximum %d images allowed", maxImages)
	}
	return files, nil
}

// uploadImages pushes every file to the image store. On failure the images
// already uploaded are removed again.
func (app *application) uploadImages(r *http.Request, files []*multipart.FileHeader, folder string, ownerID int64) ([]string, error) {
	if app.images == nil {
		return nil, errors.New("image uploads are not configured")
	}

	urls := make([]string, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			app.destroyQuietly(urls...)
			return nil, fmt.Errorf("open file: %w", err)
		}

		url, err := app.images.Upload(r.Context(), file, folder, ownerID)
		file.Close()
		if err != nil {
			app.destroyQuietly(urls...)
			return nil, err
		}

		urls = append(urls, url)
	}
	return urls, nil
}
