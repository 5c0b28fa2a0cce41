package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/gigforge/gigforge/internal/bus"
	"github.com/gigforge/gigforge/internal/database"
	"github.com/gigforge/gigforge/internal/domain"
	"github.com/gigforge/gigforge/internal/handler"
	"github.com/gigforge/gigforge/internal/handler/dto"
	"github.com/gigforge/gigforge/internal/notify"
	"github.com/gigforge/gigforge/internal/repository"
)

type HandlerTestSuite struct {
	suite.Suite
	pool    *pgxpool.Pool
	handler *handler.Handler

	// Test fixtures
	clientID         string
	clientToken      string
	freelancer1ID    string
	freelancer1Token string
	freelancer2ID    string
	freelancer2Token string
	adminID          string
	adminToken       string
}

func (s *HandlerTestSuite) SetupSuite() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		s.T().Skip("DATABASE_URL not set; skipping database-backed handler tests")
	}

	ctx := context.Background()
	db, err := database.New(ctx, databaseURL)
	s.Require().NoError(err)
	s.pool = db.Pool()

	err = database.RunMigrations(ctx, s.pool)
	s.Require().NoError(err)

	// Wire synchronous dispatch the way the server does.
	eventBus := bus.New()
	dispatcher := notify.BuildDispatcher(s.pool)
	outboxRepo := repository.NewOutboxRepository(s.pool)
	eventBus.Subscribe(func(ctx context.Context, event domain.Event) error {
		if _, err := dispatcher.Dispatch(ctx, event); err != nil {
			return err
		}
		return outboxRepo.MarkDispatched(ctx, event.ID)
	})

	s.handler = handler.New(s.pool, eventBus)
}

func (s *HandlerTestSuite) SetupTest() {
	ctx := context.Background()

	_, err := s.pool.Exec(ctx, `TRUNCATE users, projects, milestones, bids, biddings,
		project_timeline, notification_outbox, notifications, audit_logs, activity_logs CASCADE`)
	s.Require().NoError(err)

	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, role, token, is_active)
		VALUES
			('00000000-0000-0000-0000-000000000001', 'Carla Client', 'carla@example.com', 'client', 'token-client', true),
			('00000000-0000-0000-0000-000000000002', 'Fred Freelancer', 'fred@example.com', 'freelancer', 'token-free-1', true),
			('00000000-0000-0000-0000-000000000003', 'Fay Freelancer', 'fay@example.com', 'freelancer', 'token-free-2', true),
			('00000000-0000-0000-0000-000000000004', 'Ada Admin', 'ada@example.com', 'admin', 'token-admin', true)
	`)
	s.Require().NoError(err)

	s.clientID = "00000000-0000-0000-0000-000000000001"
	s.clientToken = "token-client"
	s.freelancer1ID = "00000000-0000-0000-0000-000000000002"
	s.freelancer1Token = "token-free-1"
	s.freelancer2ID = "00000000-0000-0000-0000-000000000003"
	s.freelancer2Token = "token-free-2"
	s.adminID = "00000000-0000-0000-0000-000000000004"
	s.adminToken = "token-admin"
}

func (s *HandlerTestSuite) request(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	mux := http.NewServeMux()
	s.handler.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerTestSuite) decode(rec *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(out))
}

func (s *HandlerTestSuite) createProject() string {
	rec := s.request(http.MethodPost, "/api/v1/projects", s.clientToken, dto.CreateProjectRequest{
		Title:       "Logo redesign",
		Description: "New logo for the spring launch",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	var project dto.ProjectDetail
	s.decode(rec, &project)
	return project.ID
}

// postProject moves a draft to active as the client.
func (s *HandlerTestSuite) postProject(projectID string) {
	rec := s.request(http.MethodPatch, "/api/v1/projects/"+projectID+"/status", s.clientToken,
		dto.TransitionRequest{Status: "active"})
	s.Require().Equal(http.StatusOK, rec.Code)
}

// openBidding posts a bid as admin, moving active to in_bidding.
func (s *HandlerTestSuite) openBidding(projectID string) string {
	rec := s.request(http.MethodPost, "/api/v1/projects/"+projectID+"/bids", s.adminToken,
		dto.PostBidRequest{Description: "Looking for a designer"})
	s.Require().Equal(http.StatusCreated, rec.Code)

	var bid map[string]any
	s.decode(rec, &bid)
	return bid["id"].(string)
}

func (s *HandlerTestSuite) placeBidding(bidID, token string) string {
	rec := s.request(http.MethodPost, "/api/v1/bids/"+bidID+"/biddings", token,
		dto.PlaceBiddingRequest{Amount: 50000, TimelineDays: 14, Proposal: "I can do this"})
	s.Require().Equal(http.StatusCreated, rec.Code)

	var bidding dto.BiddingDetail
	s.decode(rec, &bidding)
	return bidding.ID
}

func (s *HandlerTestSuite) TestHealthz() {
	rec := s.request(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerTestSuite) TestAuthRequired() {
	rec := s.request(http.MethodPost, "/api/v1/projects", "", dto.CreateProjectRequest{Title: "x"})
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.request(http.MethodPost, "/api/v1/projects", "bogus-token", dto.CreateProjectRequest{Title: "x"})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerTestSuite) TestCreateProject() {
	rec := s.request(http.MethodPost, "/api/v1/projects", s.clientToken, dto.CreateProjectRequest{
		Title:       "Logo redesign",
		Description: "New logo",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	var project dto.ProjectDetail
	s.decode(rec, &project)
	s.Equal("draft", project.Status)
	s.Equal(s.clientID, project.ClientID)
	s.False(project.IsOpenForBidding)
}

func (s *HandlerTestSuite) TestCreateProjectForOtherClientDenied() {
	rec := s.request(http.MethodPost, "/api/v1/projects", s.clientToken, dto.CreateProjectRequest{
		ClientID: s.freelancer1ID,
		Title:    "Sneaky",
	})
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerTestSuite) TestTransitionAndTimeline() {
	projectID := s.createProject()
	s.postProject(projectID)

	rec := s.request(http.MethodGet, "/api/v1/projects/"+projectID, s.clientToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var project dto.ProjectDetail
	s.decode(rec, &project)
	s.Equal("active", project.Status)

	rec = s.request(http.MethodGet, "/api/v1/projects/"+projectID+"/timeline", s.clientToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var page struct {
		Timeline []dto.TimelineEntryDetail `json:"timeline"`
	}
	s.decode(rec, &page)
	s.Require().Len(page.Timeline, 1)
	s.Equal("post_project", page.Timeline[0].Action)
	s.Equal("draft", page.Timeline[0].OldStatus)
	s.Equal("active", page.Timeline[0].NewStatus)
}

func (s *HandlerTestSuite) TestIllegalTransitionConflict() {
	projectID := s.createProject()

	rec := s.request(http.MethodPatch, "/api/v1/projects/"+projectID+"/status", s.clientToken,
		dto.TransitionRequest{Status: "completed"})
	s.Require().Equal(http.StatusConflict, rec.Code)

	var resp dto.ErrorResponse
	s.decode(rec, &resp)
	s.Equal("INVALID_TRANSITION", resp.Error.Code)
}

func (s *HandlerTestSuite) TestHoldWithoutRemarkRejected() {
	projectID := s.createProject()
	s.postProject(projectID)

	rec := s.request(http.MethodPatch, "/api/v1/projects/"+projectID+"/status", s.clientToken,
		dto.TransitionRequest{Status: "hold"})
	s.Require().Equal(http.StatusUnprocessableEntity, rec.Code)

	var resp dto.ErrorResponse
	s.decode(rec, &resp)
	s.Equal("MISSING_REMARK", resp.Error.Code)

	// With a remark it goes through, and no timeline entry leaked from
	// the failed attempt.
	rec = s.request(http.MethodPatch, "/api/v1/projects/"+projectID+"/status", s.clientToken,
		dto.TransitionRequest{Status: "hold", Remark: "Budget freeze"})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodGet, "/api/v1/projects/"+projectID+"/timeline", s.clientToken, nil)
	var page struct {
		Timeline []dto.TimelineEntryDetail `json:"timeline"`
	}
	s.decode(rec, &page)
	s.Len(page.Timeline, 2)
}

func (s *HandlerTestSuite) TestBiddingFlow() {
	projectID := s.createProject()
	s.postProject(projectID)
	bidID := s.openBidding(projectID)

	// Project is now open for bidding.
	rec := s.request(http.MethodGet, "/api/v1/projects/"+projectID, s.clientToken, nil)
	var project dto.ProjectDetail
	s.decode(rec, &project)
	s.Equal("in_bidding", project.Status)
	s.True(project.IsOpenForBidding)

	bidding1 := s.placeBidding(bidID, s.freelancer1Token)
	bidding2 := s.placeBidding(bidID, s.freelancer2Token)

	// Client cannot accept.
	rec = s.request(http.MethodPost, "/api/v1/biddings/"+bidding1+"/accept", s.clientToken, nil)
	s.Equal(http.StatusForbidden, rec.Code)

	// Admin accepts the first bidding.
	rec = s.request(http.MethodPost, "/api/v1/biddings/"+bidding1+"/accept", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var accepted dto.BiddingDetail
	s.decode(rec, &accepted)
	s.Equal("accepted", accepted.Status)
	s.True(accepted.IsAccepted)

	// Project was awarded to the winner in the same commit.
	rec = s.request(http.MethodGet, "/api/v1/projects/"+projectID, s.clientToken, nil)
	s.decode(rec, &project)
	s.Equal("in_progress", project.Status)
	s.Require().NotNil(project.AssignedFreelancerID)
	s.Equal(s.freelancer1ID, *project.AssignedFreelancerID)
	s.False(project.IsOpenForBidding)

	// The sibling was rejected.
	rec = s.request(http.MethodGet, "/api/v1/biddings/"+bidding2, s.adminToken, nil)
	var joined struct {
		Bidding dto.BiddingDetail `json:"bidding"`
	}
	s.decode(rec, &joined)
	s.Equal("rejected", joined.Bidding.Status)

	// The losing bidder heard about the rejection.
	rec = s.request(http.MethodGet, "/api/v1/notifications", s.freelancer2Token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var losses dto.NotificationList
	s.decode(rec, &losses)
	rejected := false
	for _, n := range losses.Notifications {
		if n.Type == "bid" && strings.Contains(n.Message, "not selected") {
			rejected = true
		}
	}
	s.True(rejected, "rejected bidder should be notified")

	// A second acceptance attempt conflicts.
	rec = s.request(http.MethodPost, "/api/v1/biddings/"+bidding2+"/accept", s.adminToken, nil)
	s.Require().Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerTestSuite) TestConcurrentAcceptSingleWinner() {
	projectID := s.createProject()
	s.postProject(projectID)
	bidID := s.openBidding(projectID)

	bidding1 := s.placeBidding(bidID, s.freelancer1Token)
	bidding2 := s.placeBidding(bidID, s.freelancer2Token)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i, id := range []string{bidding1, bidding2} {
		wg.Add(1)
		go func(i int, biddingID string) {
			defer wg.Done()
			rec := s.request(http.MethodPost, "/api/v1/biddings/"+biddingID+"/accept", s.adminToken, nil)
			codes[i] = rec.Code
		}(i, id)
	}
	wg.Wait()

	wins := 0
	for _, code := range codes {
		if code == http.StatusOK {
			wins++
		}
	}
	s.Equal(1, wins, "exactly one acceptance must win, got %v", codes)

	var acceptedCount int
	err := s.pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM biddings WHERE project_id = $1 AND is_accepted", projectID).Scan(&acceptedCount)
	s.Require().NoError(err)
	s.Equal(1, acceptedCount)
}

func (s *HandlerTestSuite) TestPlaceBiddingRequiresOpenProject() {
	projectID := s.createProject()
	s.postProject(projectID)
	bidID := s.openBidding(projectID)

	// Client closes the project; bidding attempts now fail.
	rec := s.request(http.MethodPatch, "/api/v1/projects/"+projectID+"/status", s.clientToken,
		dto.TransitionRequest{Status: "cancelled", Remark: "Changed plans"})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodPost, "/api/v1/bids/"+bidID+"/biddings", s.freelancer1Token,
		dto.PlaceBiddingRequest{Amount: 50000, TimelineDays: 7, Proposal: "late"})
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerTestSuite) TestMilestonePaymentWalk() {
	projectID := s.createProject()
	s.postProject(projectID)
	bidID := s.openBidding(projectID)
	bidding := s.placeBidding(bidID, s.freelancer1Token)
	rec := s.request(http.MethodPost, "/api/v1/biddings/"+bidding+"/accept", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodPost, "/api/v1/projects/"+projectID+"/milestones", s.clientToken,
		dto.CreateMilestoneRequest{Title: "First draft", Amount: 25000})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var milestone dto.MilestoneDetail
	s.decode(rec, &milestone)
	s.Equal("not_requested", milestone.PaymentStatus)

	// Freelancer requests payment.
	rec = s.request(http.MethodPatch, "/api/v1/milestones/"+milestone.ID+"/payment", s.freelancer1Token,
		dto.AdvancePaymentRequest{PaymentStatus: "payment_requested"})
	s.Require().Equal(http.StatusNoContent, rec.Code)

	// Freelancer may not move it further.
	rec = s.request(http.MethodPatch, "/api/v1/milestones/"+milestone.ID+"/payment", s.freelancer1Token,
		dto.AdvancePaymentRequest{PaymentStatus: "processing"})
	s.Equal(http.StatusForbidden, rec.Code)

	// Staff walks it to paid; skipping a step conflicts.
	rec = s.request(http.MethodPatch, "/api/v1/milestones/"+milestone.ID+"/payment", s.adminToken,
		dto.AdvancePaymentRequest{PaymentStatus: "paid"})
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.request(http.MethodPatch, "/api/v1/milestones/"+milestone.ID+"/payment", s.adminToken,
		dto.AdvancePaymentRequest{PaymentStatus: "processing"})
	s.Require().Equal(http.StatusNoContent, rec.Code)
	rec = s.request(http.MethodPatch, "/api/v1/milestones/"+milestone.ID+"/payment", s.adminToken,
		dto.AdvancePaymentRequest{PaymentStatus: "paid"})
	s.Require().Equal(http.StatusNoContent, rec.Code)

	rec = s.request(http.MethodGet, "/api/v1/projects/"+projectID+"/milestones", s.clientToken, nil)
	var page struct {
		Milestones []dto.MilestoneDetail `json:"milestones"`
	}
	s.decode(rec, &page)
	s.Require().Len(page.Milestones, 1)
	s.Equal("paid", page.Milestones[0].PaymentStatus)
	s.True(page.Milestones[0].IsPaid)
}

func (s *HandlerTestSuite) TestNotificationsDeliveredAndMarkedRead() {
	projectID := s.createProject()
	s.postProject(projectID)
	bidID := s.openBidding(projectID)
	bidding := s.placeBidding(bidID, s.freelancer1Token)
	rec := s.request(http.MethodPost, "/api/v1/biddings/"+bidding+"/accept", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	// The winning freelancer heard about the acceptance.
	rec = s.request(http.MethodGet, "/api/v1/notifications", s.freelancer1Token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var page dto.NotificationList
	s.decode(rec, &page)
	s.Require().NotEmpty(page.Notifications)

	var acceptance *dto.NotificationDetail
	for i := range page.Notifications {
		if page.Notifications[i].Type == "bid" {
			acceptance = &page.Notifications[i]
			break
		}
	}
	s.Require().NotNil(acceptance, "freelancer should have a bid notification")
	s.False(acceptance.IsRead)

	rec = s.request(http.MethodPatch, "/api/v1/notifications/"+acceptance.ID+"/read", s.freelancer1Token, nil)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	// Another user cannot touch it.
	rec = s.request(http.MethodPatch, "/api/v1/notifications/"+acceptance.ID+"/read", s.freelancer2Token, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerTestSuite) TestAuditTrailStaffOnly() {
	projectID := s.createProject()
	s.postProject(projectID)

	rec := s.request(http.MethodGet, "/api/v1/projects/"+projectID+"/audit", s.clientToken, nil)
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.request(http.MethodGet, "/api/v1/projects/"+projectID+"/audit", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var page struct {
		Audit []map[string]any `json:"audit"`
	}
	s.decode(rec, &page)
	s.Require().Len(page.Audit, 2)

	actions := map[string]bool{}
	for _, e := range page.Audit {
		actions[e["action"].(string)] = true
	}
	s.True(actions["create_project"])
	s.True(actions["post_project"])

	// A failed transition rolls its audit entry back with the change.
	rec = s.request(http.MethodPatch, "/api/v1/projects/"+projectID+"/status", s.clientToken,
		dto.TransitionRequest{Status: "completed"})
	s.Require().Equal(http.StatusConflict, rec.Code)

	rec = s.request(http.MethodGet, "/api/v1/projects/"+projectID+"/audit", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &page)
	s.Len(page.Audit, 2)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
