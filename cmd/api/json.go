package main

import (
	"encoding/json"
	"net/http"
	"regexp"

	"vicinity/internal/params"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

var phoneRE = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// digits with an optional leading +, 7 to 15 long
	Validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRE.MatchString(fl.Field().String())
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// readJSON decodes a body of at most 1MB, rejecting unknown fields.
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_578
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	type envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	}

	return writeJSON(w, status, &envelope{
		Success: false,
		Message: message,
		Status:  status,
	})
}

func (app *application) jsonResponse(w http.ResponseWriter, status int, data any) error {
	type envelope struct {
		Data any `json:"data"`
	}
	return writeJSON(w, status, &envelope{Data: data})
}

// PaginatedResponse is the body of every listing endpoint.
type PaginatedResponse struct {
	Results    any               `json:"results"`
	Pagination params.Pagination `json:"pagination"`
}

func (app *application) paginatedResponse(w http.ResponseWriter, results any, p params.Pagination) error {
	return app.jsonResponse(w, http.StatusOK, PaginatedResponse{Results: results, Pagination: p})
}
