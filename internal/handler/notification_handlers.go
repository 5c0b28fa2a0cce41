package handler

import (
	"net/http"
	"strconv"

	"github.com/gigforge/gigforge/internal/handler/dto"
	"github.com/gigforge/gigforge/internal/middleware"
)

const (
	defaultNotificationPageSize = 20
	maxNotificationPageSize     = 100
)

// handleListNotifications returns the caller's notifications, newest
// first, with opaque cursor pagination.
func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	limit := defaultNotificationPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer")
			return
		}
		if parsed > maxNotificationPageSize {
			parsed = maxNotificationPageSize
		}
		limit = parsed
	}
	cursor := r.URL.Query().Get("cursor")

	notifications, next, err := h.notificationRepo.ListByUser(ctx, user.ID, cursor, limit)
	if err != nil {
		if cursor != "" {
			respondError(w, http.StatusBadRequest, "INVALID_CURSOR", "cursor is not valid")
			return
		}
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewNotificationList(notifications, next))
}

// handleMarkNotificationRead marks one of the caller's notifications read.
func (h *Handler) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	notificationID, ok := extractID(w, r, "notification")
	if !ok {
		return
	}

	if err := h.notificationRepo.MarkRead(ctx, notificationID, user.ID); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
