package api

// error_response.go maps transport and pipeline errors to the JSON error body returned to clients.

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/digital-business-cards/walletpass/internal/logger"
	"github.com/digital-business-cards/walletpass/internal/pass"
)

// summary used for every pipeline failure after validation
const generationFailedMessage = "Failed to generate Apple Wallet pass"

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	// StatusCode is the HTTP status (not serialized)
	StatusCode int `json:"-"`

	// Error is a human-readable summary
	Error string `json:"error"`

	// Details carries the underlying message for server-side failures
	Details string `json:"details,omitempty"`

	// Fields lists missing request fields or configuration items
	Fields []string `json:"fields,omitempty"`

	// RequestID correlates the response with the server log
	RequestID string `json:"requestId,omitempty"`
}

// MapErrorToResponse maps pass.Error, api.Error or generic errors to an error response.
//
// Validation errors become 400s naming the fields, configuration errors become 500s listing
// every missing item, and every other pipeline failure becomes a 500 carrying the underlying
// message in details.
func MapErrorToResponse(err error, r *http.Request) *ErrorResponse {
	requestID := middleware.GetReqID(r.Context())

	var passErr *pass.PassError
	if errors.As(err, &passErr) {
		return errorResponseFromPass(passErr, requestID)
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return errorResponseFromAPI(apiErr, requestID)
	}

	// not expected - log the unmapped type
	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Error("BUG: Unmapped error type in MapErrorToResponse",
		slog.String("error_type", fmt.Sprintf("%T", err)),
		slog.String("error", err.Error()),
		slog.String("request_id", requestID),
	)
	return &ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Error:      generationFailedMessage,
		Details:    err.Error(),
		RequestID:  requestID,
	}
}

func errorResponseFromPass(err *pass.PassError, requestID string) *ErrorResponse {
	switch err.Code() {
	case pass.ErrCodeValidation:
		return &ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Error:      err.Error(),
			Fields:     err.Fields(),
			RequestID:  requestID,
		}
	case pass.ErrCodeConfiguration:
		return &ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Error:      "Apple Wallet configuration incomplete: " + strings.Join(err.Fields(), ", "),
			Details:    unwrapMessage(err),
			Fields:     err.Fields(),
			RequestID:  requestID,
		}
	default:
		return &ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Error:      generationFailedMessage,
			Details:    err.Error(),
			RequestID:  requestID,
		}
	}
}

func errorResponseFromAPI(err *Error, requestID string) *ErrorResponse {
	resp := &ErrorResponse{RequestID: requestID}

	switch err.Code() {
	case ErrCodeMalformedRequest:
		resp.StatusCode = http.StatusBadRequest
		resp.Error = "Invalid request body"
		resp.Details = err.Error()
	case ErrCodeRequestTooLarge:
		resp.StatusCode = http.StatusRequestEntityTooLarge
		resp.Error = "Request too large"
		resp.Details = err.Error()
	case ErrCodeRateLimitExceeded:
		resp.StatusCode = http.StatusTooManyRequests
		resp.Error = "Rate limit exceeded"
		resp.Details = err.Error()
	default:
		resp.StatusCode = http.StatusInternalServerError
		resp.Error = generationFailedMessage
		resp.Details = err.Error()
	}
	return resp
}

func unwrapMessage(err error) string {
	if inner := errors.Unwrap(err); inner != nil {
		return inner.Error()
	}
	return ""
}
