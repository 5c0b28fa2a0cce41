package notify

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigforge/gigforge/internal/domain"
	"github.com/gigforge/gigforge/internal/repository"
)

// projectSource adapts ProjectRepository to the ProjectSource port.
type projectSource struct {
	repo *repository.ProjectRepository
}

func (s projectSource) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	return s.repo.GetByID(ctx, projectID)
}

// userDirectory adapts UserRepository to the UserDirectory port.
type userDirectory struct {
	repo *repository.UserRepository
}

func (d userDirectory) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return d.repo.GetByID(ctx, userID)
}

func (d userDirectory) ListActiveByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return d.repo.ListActiveByRole(ctx, role)
}

// BuildDispatcher wires the default routing table over database-backed
// stores. Realtime and mail transports are the log-only adapters; the
// socket gateway and SMTP relay live outside this service.
func BuildDispatcher(pool *pgxpool.Pool) *Dispatcher {
	projects := projectSource{repo: repository.NewProjectRepository(pool)}
	users := userDirectory{repo: repository.NewUserRepository(pool)}
	biddings := repository.NewBiddingRepository(pool)
	store := repository.NewNotificationRepository(pool)

	registry := NewRegistry(DefaultRules())
	resolver := NewResolver(projects, users, biddings)
	return NewDispatcher(registry, resolver, store, LogRealtime{}, LogMailer{}, users)
}
