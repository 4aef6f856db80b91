package handler

import (
	"errors"
	"net/http"

	"github.com/autohive/automarket-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// errorStatus maps service errors to HTTP responses. Validation problems are
// the caller's fault, a down store is reported as unavailable rather than a
// generic 500.
func errorStatus(err error, fallback string) (int, ErrorResponse) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, NewErrorResponse("validation_error", verr.Error())
	}
	if errors.Is(err, service.ErrNotFound) {
		return http.StatusNotFound, NewErrorResponse("not_found", "notification not found")
	}
	if errors.Is(err, service.ErrStoreUnavailable) {
		return http.StatusServiceUnavailable, NewErrorResponse("store_unavailable", fallback)
	}
	return http.StatusInternalServerError, NewErrorResponse("internal_error", fallback)
}
