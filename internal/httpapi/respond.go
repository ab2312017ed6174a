package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/modulehub/modulehub/internal/authz"
	"github.com/modulehub/modulehub/internal/models"
)

type detailResponse struct {
	Detail string `json:"detail"`
}

type errorsResponse struct {
	Errors map[string]string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

func writeFieldErrors(w http.ResponseWriter, errs map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorsResponse{Errors: errs})
}

// authorize runs the policy and writes the rejection response itself.
// Returns true when the request may proceed.
func authorize(w http.ResponseWriter, actor *models.Identity, res authz.Resource, action authz.Action) bool {
	switch authz.Decide(actor, res, action) {
	case authz.Allow:
		return true
	case authz.Unauthorized:
		writeDetail(w, http.StatusUnauthorized, "authentication required")
	case authz.Forbidden:
		writeDetail(w, http.StatusForbidden, "permission denied")
	case authz.NotFound:
		writeDetail(w, http.StatusNotFound, "not found")
	}
	return false
}

func newValidator() *validator.Validate {
	validate := validator.New()
	// Report errors under the json field name, not the Go field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

func validationErrors(err error) map[string]string {
	errs := make(map[string]string)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["non_field_errors"] = "invalid request body"
		return errs
	}
	for _, fieldErr := range fieldErrs {
		switch fieldErr.Tag() {
		case "required":
			errs[fieldErr.Field()] = "this field is required"
		case "email":
			errs[fieldErr.Field()] = "enter a valid email address"
		case "min":
			errs[fieldErr.Field()] = "value is too short"
		default:
			errs[fieldErr.Field()] = "invalid value"
		}
	}
	return errs
}
