package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigforge/gigforge/internal/bus"
	"github.com/gigforge/gigforge/internal/handler/dto"
	"github.com/gigforge/gigforge/internal/middleware"
	"github.com/gigforge/gigforge/internal/repository"
	"github.com/gigforge/gigforge/internal/service"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool             *pgxpool.Pool
	projectService   *service.ProjectService
	biddingService   *service.BiddingService
	milestoneService *service.MilestoneService
	projectRepo      *repository.ProjectRepository
	timelineRepo     *repository.TimelineRepository
	biddingRepo      *repository.BiddingRepository
	milestoneRepo    *repository.MilestoneRepository
	notificationRepo *repository.NotificationRepository
	auditRepo        *repository.AuditRepository
	authMiddleware   *middleware.AuthMiddleware
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool, eventBus *bus.Bus) *Handler {
	// Create repositories
	projectRepo := repository.NewProjectRepository(pool)
	timelineRepo := repository.NewTimelineRepository(pool)
	biddingRepo := repository.NewBiddingRepository(pool)
	milestoneRepo := repository.NewMilestoneRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	outboxRepo := repository.NewOutboxRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// Create services
	auditService := service.NewAuditService(auditRepo)
	projectService := service.NewProjectService(pool, projectRepo, timelineRepo, outboxRepo, userRepo, auditService, eventBus)
	biddingService := service.NewBiddingService(pool, biddingRepo, projectRepo, userRepo, outboxRepo, projectService, auditService, eventBus)
	milestoneService := service.NewMilestoneService(pool, milestoneRepo, projectRepo, outboxRepo, auditService, eventBus)

	// Create middleware
	authMiddleware := middleware.NewAuthMiddleware(userRepo)

	return &Handler{
		pool:             pool,
		projectService:   projectService,
		biddingService:   biddingService,
		milestoneService: milestoneService,
		projectRepo:      projectRepo,
		timelineRepo:     timelineRepo,
		biddingRepo:      biddingRepo,
		milestoneRepo:    milestoneRepo,
		notificationRepo: notificationRepo,
		auditRepo:        auditRepo,
		authMiddleware:   authMiddleware,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Projects
	mux.Handle("POST /api/v1/projects", h.authed(h.handleCreateProject))
	mux.Handle("GET /api/v1/projects", h.authed(h.handleListProjects))
	mux.Handle("GET /api/v1/projects/{id}", h.authed(h.handleGetProject))
	mux.Handle("PATCH /api/v1/projects/{id}/status", h.authed(h.handleTransitionStatus))
	mux.Handle("GET /api/v1/projects/{id}/timeline", h.authed(h.handleListTimeline))
	mux.Handle("GET /api/v1/projects/{id}/audit", h.authed(h.handleListAudit))

	// Bidding
	mux.Handle("POST /api/v1/projects/{id}/bids", h.authed(h.handlePostBid))
	mux.Handle("GET /api/v1/projects/{id}/biddings", h.authed(h.handleListBiddings))
	mux.Handle("POST /api/v1/bids/{id}/biddings", h.authed(h.handlePlaceBidding))
	mux.Handle("GET /api/v1/biddings/{id}", h.authed(h.handleGetBidding))
	mux.Handle("POST /api/v1/biddings/{id}/shortlist", h.authed(h.handleShortlistBidding))
	mux.Handle("POST /api/v1/biddings/{id}/accept", h.authed(h.handleAcceptBidding))
	mux.Handle("POST /api/v1/biddings/{id}/withdraw", h.authed(h.handleWithdrawBidding))

	// Milestones
	mux.Handle("POST /api/v1/projects/{id}/milestones", h.authed(h.handleCreateMilestone))
	mux.Handle("GET /api/v1/projects/{id}/milestones", h.authed(h.handleListMilestones))
	mux.Handle("POST /api/v1/milestones/{id}/complete", h.authed(h.handleCompleteMilestone))
	mux.Handle("PATCH /api/v1/milestones/{id}/payment", h.authed(h.handleAdvancePayment))

	// Notifications
	mux.Handle("GET /api/v1/notifications", h.authed(h.handleListNotifications))
	mux.Handle("PATCH /api/v1/notifications/{id}/read", h.authed(h.handleMarkNotificationRead))
}

func (h *Handler) authed(fn http.HandlerFunc) http.Handler {
	return h.authMiddleware.Authenticate(fn)
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps a domain error onto the wire format.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// extractID extracts and validates a UUID path parameter named "id".
// Returns (id, true) if valid, ("", false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request, what string) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", what+" id is required")
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", what+" id must be a valid UUID")
		return "", false
	}

	return id, true
}
