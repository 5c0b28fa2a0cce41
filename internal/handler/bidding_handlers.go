package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gigforge/gigforge/internal/domain"
	"github.com/gigforge/gigforge/internal/handler/dto"
	"github.com/gigforge/gigforge/internal/middleware"
)

// handlePostBid posts a bid for a project, moving it into bidding.
func (h *Handler) handlePostBid(w http.ResponseWriter, r *http.Request) {
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

	var req dto.PostBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}

	actor := domain.Actor{ID: user.ID, Role: user.Role}
	bid, err := h.biddingService.PostBid(ctx, projectID, actor, req.Description)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":          bid.ID,
		"project_id":  bid.ProjectID,
		"posted_by":   bid.PostedBy,
		"description": bid.Description,
		"created_at":  bid.CreatedAt,
	})
}

// handlePlaceBidding creates a freelancer proposal against a bid.
func (h *Handler) handlePlaceBidding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	bidID, ok := extractID(w, r, "bid")
	if !ok {
		return
	}

	var req dto.PlaceBiddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}

	actor := domain.Actor{ID: user.ID, Role: user.Role}
	bidding, err := h.biddingService.PlaceBidding(ctx, bidID, actor, req.Amount, req.TimelineDays, req.Proposal)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewBiddingDetail(bidding))
}

// handleGetBidding returns a bidding joined with its freelancer and project.
func (h *Handler) handleGetBidding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	biddingID, ok := extractID(w, r, "bidding")
	if !ok {
		return
	}

	joined, err := h.biddingRepo.GetWithFreelancerAndProject(ctx, biddingID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bidding":         dto.NewBiddingDetail(joined.Bidding),
		"freelancer_name": joined.Freelancer.Name,
		"project":         dto.NewProjectDetail(joined.Project),
	})
}

// handleListBiddings lists all biddings for a project.
func (h *Handler) handleListBiddings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	if _, err := h.projectRepo.GetByID(ctx, projectID); err != nil {
		respondDomainError(w, err)
		return
	}

	biddings, err := h.biddingRepo.ListByProject(ctx, projectID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	out := make([]dto.BiddingDetail, 0, len(biddings))
	for _, b := range biddings {
		out = append(out, dto.NewBiddingDetail(b))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"biddings": out})
}

// handleShortlistBidding shortlists a pending bidding.
func (h *Handler) handleShortlistBidding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	biddingID, ok := extractID(w, r, "bidding")
	if !ok {
		return
	}

	actor := domain.Actor{ID: user.ID, Role: user.Role}
	if err := h.biddingService.Shortlist(ctx, biddingID, actor); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleAcceptBidding accepts a bidding and awards its project.
func (h *Handler) handleAcceptBidding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	biddingID, ok := extractID(w, r, "bidding")
	if !ok {
		return
	}

	actor := domain.Actor{ID: user.ID, Role: user.Role}
	bidding, err := h.biddingService.AcceptBid(ctx, biddingID, actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewBiddingDetail(bidding))
}

// handleWithdrawBidding withdraws the caller's own bidding.
func (h *Handler) handleWithdrawBidding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	biddingID, ok := extractID(w, r, "bidding")
	if !ok {
		return
	}

	actor := domain.Actor{ID: user.ID, Role: user.Role}
	if err := h.biddingService.Withdraw(ctx, biddingID, actor); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
