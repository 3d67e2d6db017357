package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/checkoutkit/pkg/validator"
)

// ErrorBody is the JSON shape of error responses.
type ErrorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

// JSONResponse writes a JSON document with a status code.
type JSONResponse struct {
	status int
	body   any
}

// Render implements Response.
func (j JSONResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	if j.body == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(j.body)
}

// JSON responds 200 with v.
func JSON(v any) JSONResponse {
	return JSONResponse{status: http.StatusOK, body: v}
}

// JSONStatus responds with status and v.
func JSONStatus(status int, v any) JSONResponse {
	return JSONResponse{status: status, body: v}
}

type emptyResponse struct{}

func (emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// NoContent responds 204.
func NoContent() Response { return emptyResponse{} }

// Error maps err to a JSON error response. HTTPError keeps its status,
// validation errors become 422 with per-field details, anything else is 500.
func Error(err error) JSONResponse {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make(map[string][]string, len(ve))
		for _, e := range ve {
			details[e.Field] = append(details[e.Field], e.Message)
		}
		return JSONStatus(http.StatusUnprocessableEntity, ErrorBody{
			Code:    "validation_error",
			Message: ve.First(),
			Details: details,
		})
	}

	var he HTTPError
	if errors.As(err, &he) {
		return JSONStatus(he.Code, ErrorBody{Code: he.Key, Message: http.StatusText(he.Code)})
	}

	switch {
	case errors.Is(err, ErrInvalidJSON), errors.Is(err, ErrInvalidPath):
		return JSONStatus(http.StatusBadRequest, ErrorBody{Code: "bad_request", Message: err.Error()})
	case errors.Is(err, ErrUnsupportedMediaType):
		return JSONStatus(http.StatusUnsupportedMediaType, ErrorBody{Code: "unsupported_media_type", Message: err.Error()})
	}

	return JSONStatus(http.StatusInternalServerError, ErrorBody{
		Code:    "internal_error",
		Message: http.StatusText(http.StatusInternalServerError),
	})
}
