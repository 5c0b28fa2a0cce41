package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Project errors
	ErrProjectNotFound   = errors.New("project not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingRemark     = errors.New("remark is required")
	ErrMissingAssignment = errors.New("project has no assigned freelancer")
	ErrProjectModified   = errors.New("project was modified concurrently")

	// Milestone errors
	ErrMilestoneNotFound     = errors.New("milestone not found")
	ErrInvalidPaymentAdvance = errors.New("invalid payment status advance")
	ErrMilestoneAmountLocked = errors.New("milestone amount is locked after payment")
	ErrMilestoneNotActive    = errors.New("milestone is not active")

	// Bidding errors
	ErrBidNotFound        = errors.New("bid not found")
	ErrBiddingNotFound    = errors.New("bidding not found")
	ErrBidAlreadyAccepted = errors.New("project already has an accepted bidding")
	ErrBiddingDecided     = errors.New("bidding already reached a final decision")
	ErrBiddingClosed      = errors.New("project is not open for bidding")

	// Permission errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotProjectOwner  = errors.New("not project owner")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("user is inactive")
	ErrInvalidToken = errors.New("invalid authentication token")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")

	// Validation errors
	ErrInvalidStatus = errors.New("invalid project status")
	ErrInvalidRole   = errors.New("invalid role")
	ErrEmptyTitle    = errors.New("title is required")
	ErrInvalidAmount = errors.New("amount must be positive")
)
