package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gigforge/gigforge/internal/domain"
	"github.com/gigforge/gigforge/internal/handler/dto"
	"github.com/gigforge/gigforge/internal/middleware"
	"github.com/gigforge/gigforge/internal/service"
)

// handleCreateProject creates a project in draft.
func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID = user.ID
	}

	actor := domain.Actor{ID: user.ID, Role: user.Role}
	project, err := h.projectService.CreateProject(ctx, actor, clientID, req.Title, req.Description)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewProjectDetail(project))
}

// handleGetProject returns a single project with its owning client.
func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	joined, err := h.projectRepo.GetWithClient(ctx, projectID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	detail := dto.NewProjectDetail(joined.Project)
	detail.ClientName = joined.Client.Name
	respondJSON(w, http.StatusOK, detail)
}

// handleListProjects lists projects, optionally filtered by status.
// Statuses come as a comma-separated query parameter.
func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var statuses []domain.ProjectStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := domain.ProjectStatus(strings.TrimSpace(s))
			if !status.IsValid() {
				respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid status filter: "+s)
				return
			}
			statuses = append(statuses, status)
		}
	}

	projects, err := h.projectRepo.ListByStatus(ctx, statuses)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	out := make([]dto.ProjectDetail, 0, len(projects))
	for _, p := range projects {
		out = append(out, dto.NewProjectDetail(p))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"projects": out})
}

// handleTransitionStatus applies a lifecycle transition to a project.
func (h *Handler) handleTransitionStatus(w http.ResponseWriter, r *http.Request) {
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

	var req dto.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}
	if req.Status == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "status is required")
		return
	}

	actor := domain.Actor{ID: user.ID, Role: user.Role}
	var opts []service.TransitionOption
	if req.FreelancerID != "" {
		opts = append(opts, service.WithFreelancer(req.FreelancerID))
	}

	entry, err := h.projectService.ApplyTransition(ctx, projectID, actor,
		domain.ProjectStatus(req.Status), req.Remark, opts...)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewTimelineEntryDetail(entry))
}

// handleListTimeline returns a project's timeline, newest first.
func (h *Handler) handleListTimeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	// Listing against a missing project should 404, not return an empty page.
	if _, err := h.projectRepo.GetByID(ctx, projectID); err != nil {
		respondDomainError(w, err)
		return
	}

	entries, err := h.timelineRepo.ListByProject(ctx, projectID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	out := make([]dto.TimelineEntryDetail, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewTimelineEntryDetail(e))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"timeline": out})
}

// handleListAudit returns the audit trail for a project. Staff only.
func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	if !user.Role.IsStaff() {
		respondError(w, http.StatusForbidden, "INSUFFICIENT_ACCESS", "audit trail is staff-only")
		return
	}

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	entries, err := h.auditRepo.ListAuditByTarget(ctx, "project", projectID, 100)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	type auditView struct {
		ID             string         `json:"id"`
		ActorID        *string        `json:"actor_id,omitempty"`
		ActorRole      string         `json:"actor_role"`
		Action         string         `json:"action"`
		Severity       string         `json:"severity"`
		Description    string         `json:"description"`
		PreviousValues map[string]any `json:"previous_values,omitempty"`
		NewValues      map[string]any `json:"new_values,omitempty"`
		CreatedAt      time.Time      `json:"created_at"`
	}
	out := make([]auditView, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditView{
			ID:             e.ID,
			ActorID:        e.ActorID,
			ActorRole:      string(e.ActorRole),
			Action:         e.Action,
			Severity:       string(e.Severity),
			Description:    e.Description,
			PreviousValues: e.PreviousValues,
			NewValues:      e.NewValues,
			CreatedAt:      e.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"audit": out})
}
