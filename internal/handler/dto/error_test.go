package dto_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gigforge/gigforge/internal/domain"
	"github.com/gigforge/gigforge/internal/handler/dto"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"project not found", domain.ErrProjectNotFound, http.StatusNotFound, "PROJECT_NOT_FOUND"},
		{"bidding not found", domain.ErrBiddingNotFound, http.StatusNotFound, "BIDDING_NOT_FOUND"},
		{"invalid transition", domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{"bid already accepted", domain.ErrBidAlreadyAccepted, http.StatusConflict, "BID_ALREADY_ACCEPTED"},
		{"concurrent modification", domain.ErrProjectModified, http.StatusConflict, "CONCURRENT_MODIFICATION"},
		{"invalid payment advance", domain.ErrInvalidPaymentAdvance, http.StatusConflict, "INVALID_PAYMENT_ADVANCE"},
		{"permission denied", domain.ErrPermissionDenied, http.StatusForbidden, "INSUFFICIENT_ACCESS"},
		{"not project owner", domain.ErrNotProjectOwner, http.StatusForbidden, "INSUFFICIENT_ACCESS"},
		{"invalid token", domain.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"missing remark", domain.ErrMissingRemark, http.StatusUnprocessableEntity, "MISSING_REMARK"},
		{"missing assignment", domain.ErrMissingAssignment, http.StatusUnprocessableEntity, "MISSING_ASSIGNMENT"},
		{"invalid status", domain.ErrInvalidStatus, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"unmapped error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := dto.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestMapDomainErrorUnwrapsContext(t *testing.T) {
	wrapped := fmt.Errorf("%w: project p1 is completed", domain.ErrInvalidTransition)
	status, code, message := dto.MapDomainError(wrapped)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", code)
	assert.Contains(t, message, "project p1 is completed")
}

func TestMapDomainErrorHidesInternalDetail(t *testing.T) {
	_, _, message := dto.MapDomainError(errors.New("pq: connection refused"))
	assert.Equal(t, "Internal server error", message)
}
