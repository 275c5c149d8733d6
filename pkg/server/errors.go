package server

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error codes
const (
	CodeBadRequest  = "BAD_REQUEST"
	CodeUnavailable = "UNAVAILABLE"
	CodeInternal    = "INTERNAL"
	CodeNotFound    = "NOT_FOUND"
)

// ErrorBody wraps the error object of an HTTP response.
type ErrorBody struct {
	Error ErrorItem `json:"error"`
}

// ErrorItem carries the code and message of an error.
type ErrorItem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIError is an error with an HTTP status and code
type APIError struct {
	Status int
	Code   string
	Err    error
}

func (e *APIError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return e.Err.Error()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func badRequest(err error) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: CodeBadRequest, Err: err}
}

func unavailable(err error) *APIError {
	return &APIError{Status: http.StatusServiceUnavailable, Code: CodeUnavailable, Err: err}
}

// WriteError maps err onto an HTTP status and JSON body. Errors that are
// not an *APIError become a 500 without their message.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := CodeInternal
	msg := "internal error"

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		status = apiErr.Status
		code = apiErr.Code
		if apiErr.Err != nil {
			msg = apiErr.Err.Error()
		}
	}

	writeJSON(w, status, ErrorBody{
		Error: ErrorItem{
			Code:    code,
			Message: msg,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
