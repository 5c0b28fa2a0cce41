package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gigforge/gigforge/internal/domain"
	"github.com/gigforge/gigforge/internal/handler/dto"
	"github.com/gigforge/gigforge/internal/middleware"
)

// handleCreateMilestone adds a milestone to a project.
func (h *Handler) handleCreateMilestone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	var req dto.CreateMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}

	actor := domain.Actor{ID: user.ID, Role: user.Role}
	milestone, err := h.milestoneService.CreateMilestone(ctx, projectID, actor, req.Title, req.Amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewMilestoneDetail(milestone))
}

// handleListMilestones lists a project's milestones.
func (h *Handler) handleListMilestones(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	if _, err := h.projectRepo.GetByID(ctx, projectID); err != nil {
		respondDomainError(w, err)
		return
	}

	milestones, err := h.milestoneRepo.ListByProject(ctx, projectID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	out := make([]dto.MilestoneDetail, 0, len(milestones))
	for _, m := range milestones {
		out = append(out, dto.NewMilestoneDetail(m))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"milestones": out})
}

// handleCompleteMilestone marks an active milestone completed.
func (h *Handler) handleCompleteMilestone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	milestoneID, ok := extractID(w, r, "milestone")
	if !ok {
		return
	}

	actor := domain.Actor{ID: user.ID, Role: user.Role}
	if err := h.milestoneService.CompleteMilestone(ctx, milestoneID, actor); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleAdvancePayment moves a milestone's payment status forward.
func (h *Handler) handleAdvancePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	milestoneID, ok := extractID(w, r, "milestone")
	if !ok {
		return
	}

	var req dto.AdvancePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}
	if req.PaymentStatus == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "payment_status is required")
		return
	}

	actor := domain.Actor{ID: user.ID, Role: user.Role}
	if err := h.milestoneService.AdvancePayment(ctx, milestoneID, actor,
		domain.PaymentStatus(req.PaymentStatus)); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
