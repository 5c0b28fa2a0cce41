package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gigforge/gigforge/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// MapDomainError maps domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code string, message string) {
	message = err.Error()

	switch {
	// Not found
	case errors.Is(err, domain.ErrProjectNotFound):
		return http.StatusNotFound, "PROJECT_NOT_FOUND", message
	case errors.Is(err, domain.ErrMilestoneNotFound):
		return http.StatusNotFound, "MILESTONE_NOT_FOUND", message
	case errors.Is(err, domain.ErrBidNotFound):
		return http.StatusNotFound, "BID_NOT_FOUND", message
	case errors.Is(err, domain.ErrBiddingNotFound):
		return http.StatusNotFound, "BIDDING_NOT_FOUND", message
	case errors.Is(err, domain.ErrNotificationNotFound):
		return http.StatusNotFound, "NOTIFICATION_NOT_FOUND", message
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "USER_NOT_FOUND", message

	// Business conflicts
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION", message
	case errors.Is(err, domain.ErrBidAlreadyAccepted):
		return http.StatusConflict, "BID_ALREADY_ACCEPTED", message
	case errors.Is(err, domain.ErrBiddingDecided):
		return http.StatusConflict, "BIDDING_DECIDED", message
	case errors.Is(err, domain.ErrBiddingClosed):
		return http.StatusConflict, "BIDDING_CLOSED", message
	case errors.Is(err, domain.ErrProjectModified):
		return http.StatusConflict, "CONCURRENT_MODIFICATION", message
	case errors.Is(err, domain.ErrInvalidPaymentAdvance):
		return http.StatusConflict, "INVALID_PAYMENT_ADVANCE", message
	case errors.Is(err, domain.ErrMilestoneNotActive):
		return http.StatusConflict, "MILESTONE_NOT_ACTIVE", message
	case errors.Is(err, domain.ErrMilestoneAmountLocked):
		return http.StatusConflict, "MILESTONE_AMOUNT_LOCKED", message

	// Permission errors
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, "INSUFFICIENT_ACCESS", message
	case errors.Is(err, domain.ErrNotProjectOwner):
		return http.StatusForbidden, "INSUFFICIENT_ACCESS", message

	// Authentication errors
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "INVALID_TOKEN", message
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusUnauthorized, "USER_INACTIVE", message

	// Validation errors
	case errors.Is(err, domain.ErrMissingRemark):
		return http.StatusUnprocessableEntity, "MISSING_REMARK", message
	case errors.Is(err, domain.ErrMissingAssignment):
		return http.StatusUnprocessableEntity, "MISSING_ASSIGNMENT", message
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message
	case errors.Is(err, domain.ErrEmptyTitle):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message

	// Default: internal server error
	default:
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}
