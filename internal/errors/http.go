package errors

import (
	"net/http"
)

// ErrorDetail is the user-facing portion of an error response.
type ErrorDetail struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the wire format for all error responses.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// NewErrorResponse builds the response body for err, preferring the
// user-safe hint over the internal message.
func NewErrorResponse(err error) *ErrorResponse {
	message := err.Error()
	if hint := HintOf(err); hint != "" {
		message = hint
	}
	return &ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Message: message,
			Details: DetailsOf(err),
		},
	}
}

// HTTPStatusFromErr maps the error's sentinel mark to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case IsPermissionDenied(err):
		return http.StatusUnauthorized
	case IsForbidden(err):
		return http.StatusForbidden
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err):
		return http.StatusConflict
	case IsVersionConflict(err):
		return http.StatusConflict
	case IsInvalidTransition(err):
		return http.StatusUnprocessableEntity
	case IsInsufficientAllowance(err):
		return http.StatusPaymentRequired
	case IsValidation(err):
		return http.StatusBadRequest
	case IsGeneration(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
