package notify_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/gigforge/gigforge/internal/domain"
)

type fakeProjects struct {
	projects map[string]*domain.Project
	err      error
}

func (f *fakeProjects) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.projects[projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return p, nil
}

type fakeUsers struct {
	users  map[string]*domain.User
	byRole map[domain.Role][]*domain.User
	err    error
}

func (f *fakeUsers) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) ListActiveByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byRole[role], nil
}

type fakeBiddings struct {
	shortlisted map[string][]*domain.Bidding
}

func (f *fakeBiddings) ListShortlisted(ctx context.Context, projectID string) ([]*domain.Bidding, error) {
	return f.shortlisted[projectID], nil
}

// fakeStore records created notifications and enforces the
// (event, user, rule) idempotency key the way the database does.
type fakeStore struct {
	created  []*domain.Notification
	seen     map[string]bool
	failUser string
}

func (f *fakeStore) Create(ctx context.Context, n *domain.Notification) (bool, error) {
	if f.failUser != "" && n.UserID == f.failUser {
		return false, errors.New("store unavailable")
	}
	key := fmt.Sprintf("%s|%s|%s", n.EventID, n.UserID, n.RuleKey)
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	n.ID = fmt.Sprintf("n-%d", len(f.created)+1)
	f.created = append(f.created, n)
	return true, nil
}

type emit struct {
	userID  string
	channel string
}

type roleEmit struct {
	role    domain.Role
	channel string
}

type fakeRealtime struct {
	emits     []emit
	roleEmits []roleEmit
	failUser  string
}

func (f *fakeRealtime) EmitToUser(ctx context.Context, userID, channel string, payload any) error {
	if f.failUser != "" && userID == f.failUser {
		return errors.New("socket gone")
	}
	f.emits = append(f.emits, emit{userID: userID, channel: channel})
	return nil
}

func (f *fakeRealtime) EmitToRole(ctx context.Context, role domain.Role, channel string, payload any) error {
	f.roleEmits = append(f.roleEmits, roleEmit{role: role, channel: channel})
	return nil
}

type sentMail struct {
	to      string
	subject string
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) SendTemplatedEmail(ctx context.Context, to, subject, htmlBody string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject})
	return nil
}
