// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/plant-identifier/backend/internal/identify"
	"github.com/plant-identifier/backend/internal/logging"
)

// APIError represents a structured API error response.
// Clients display Message (the "error" key) verbatim.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for the identification failure kinds.
const (
	CodeMissingInput      = "MISSING_INPUT"
	CodeUpstreamError     = "UPSTREAM_ERROR"
	CodeNoJSONFound       = "NO_JSON_FOUND"
	CodeMalformedResponse = "MALFORMED_RESPONSE"
)

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewMissingInputError creates the 400 returned when no image was uploaded.
func NewMissingInputError() *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeMissingInput,
		Message: "No image provided",
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// newBadGatewayError creates a 502 for a failed or unusable model reply.
func newBadGatewayError(code, message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadGateway,
		Code:    code,
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// FromIdentifyError maps an identify failure kind to its API error.
func FromIdentifyError(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, identify.ErrMissingInput):
		return NewMissingInputError()
	case errors.Is(err, identify.ErrUpstream):
		return newBadGatewayError(CodeUpstreamError, "Failed to process the image", err)
	case errors.Is(err, identify.ErrNoJSONFound):
		return newBadGatewayError(CodeNoJSONFound, "No JSON data found in response", err)
	case errors.Is(err, identify.ErrMalformedResponse):
		return newBadGatewayError(CodeMalformedResponse, "Invalid JSON format in response", err)
	default:
		return NewInternalError("An unexpected error occurred", err)
	}
}

// ErrorHandler returns the echo error handler that writes every error in the
// APIError JSON shape. Details are only sent when exposeDetails is set.
// Usage: e.HTTPErrorHandler = api.ErrorHandler(logger, false)
func ErrorHandler(logger *zap.Logger, exposeDetails bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var apiErr *APIError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &httpErr):
			apiErr = &APIError{
				Status:  httpErr.Code,
				Code:    "HTTP_ERROR",
				Message: fmt.Sprintf("%v", httpErr.Message),
			}
		default:
			apiErr = FromIdentifyError(err)
		}

		log := logging.FromContext(c.Request().Context(), logger)
		if apiErr.Status >= http.StatusInternalServerError {
			log.Error("request error", zap.String("code", apiErr.Code), zap.Error(err))
		}

		out := *apiErr
		if !exposeDetails {
			out.Details = ""
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(out.Status)
			return
		}
		_ = c.JSON(out.Status, &out)
	}
}
