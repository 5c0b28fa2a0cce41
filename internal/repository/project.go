package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigforge/gigforge/internal/domain"
)

// projectColumns is the shared list of columns for project queries.
var projectColumns = []string{
	"id", "client_id", "assigned_agent_id", "assigned_freelancer_id",
	"title", "description", "status", "status_remark", "is_open_for_bidding",
	"created_at", "updated_at",
}

// ProjectRepository handles database operations for projects.
type ProjectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// scanProject scans a single row into a Project struct.
func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID,
		&p.ClientID,
		&p.AssignedAgentID,
		&p.AssignedFreelancerID,
		&p.Title,
		&p.Description,
		&p.Status,
		&p.StatusRemark,
		&p.IsOpenForBidding,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &p, nil
}

// GetByID retrieves a project by ID.
func (r *ProjectRepository) GetByID(ctx context.Context, projectID string) (*domain.Project, error) {
	query, args, err := psql.
		Select(projectColumns...).
		From("projects").
		Where(sq.Eq{"id": projectID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for project: %w", err)
	}

	return scanProject(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves a project by ID with FOR UPDATE lock (within transaction).
func (r *ProjectRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, projectID string) (*domain.Project, error) {
	query, args, err := psql.
		Select(projectColumns...).
		From("projects").
		Where(sq.Eq{"id": projectID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for project %s: %w", projectID, err)
	}

	return scanProject(tx.QueryRow(ctx, query, args...))
}

// ProjectWithClient is a project hydrated with its owning client.
type ProjectWithClient struct {
	Project *domain.Project
	Client  *domain.User
}

// GetWithClient retrieves a project joined with its owning client,
// making the fetch cost explicit at the call site.
func (r *ProjectRepository) GetWithClient(ctx context.Context, projectID string) (*ProjectWithClient, error) {
	query, args, err := psql.
		Select(
			"p.id", "p.client_id", "p.assigned_agent_id", "p.assigned_freelancer_id",
			"p.title", "p.description", "p.status", "p.status_remark", "p.is_open_for_bidding",
			"p.created_at", "p.updated_at",
			"u.id", "u.name", "u.email", "u.role", "u.is_active", "u.created_at",
		).
		From("projects p").
		Join("users u ON u.id = p.client_id").
		Where(sq.Eq{"p.id": projectID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetWithClient query for project %s: %w", projectID, err)
	}

	var p domain.Project
	var u domain.User
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.ClientID, &p.AssignedAgentID, &p.AssignedFreelancerID,
		&p.Title, &p.Description, &p.Status, &p.StatusRemark, &p.IsOpenForBidding,
		&p.CreatedAt, &p.UpdatedAt,
		&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("scan project with client: %w", err)
	}

	return &ProjectWithClient{Project: &p, Client: &u}, nil
}

// Create creates a new project within a transaction. Returns the
// created project with ID, CreatedAt, and UpdatedAt populated.
func (r *ProjectRepository) Create(ctx context.Context, tx pgx.Tx, project *domain.Project) (*domain.Project, error) {
	if project.Status == "" {
		project.Status = domain.ProjectStatusDraft
	}

	query, args, err := psql.
		Insert("projects").
		Columns(
			"client_id", "assigned_agent_id", "assigned_freelancer_id",
			"title", "description", "status", "status_remark", "is_open_for_bidding",
		).
		Values(
			project.ClientID,
			project.AssignedAgentID,
			project.AssignedFreelancerID,
			project.Title,
			project.Description,
			project.Status,
			project.StatusRemark,
			project.IsOpenForBidding,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for project: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	return project, nil
}

// StatusPatch carries the side fields updated together with a status change.
type StatusPatch struct {
	AssignedFreelancerID *string
	SetFreelancer        bool // apply AssignedFreelancerID even when nil
	IsOpenForBidding     *bool
	StatusRemark         *string
}

// UpdateStatus updates the project status with an expected-old-status
// guard. Returns ErrProjectModified if the project was changed
// concurrently (oldStatus no longer matches).
func (r *ProjectRepository) UpdateStatus(
	ctx context.Context,
	tx pgx.Tx,
	projectID string,
	oldStatus domain.ProjectStatus,
	newStatus domain.ProjectStatus,
	patch StatusPatch,
) error {
	qb := psql.
		Update("projects").
		Set("status", newStatus).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":     projectID,
			"status": oldStatus,
		})

	if patch.SetFreelancer {
		qb = qb.Set("assigned_freelancer_id", patch.AssignedFreelancerID)
	}
	if patch.IsOpenForBidding != nil {
		qb = qb.Set("is_open_for_bidding", *patch.IsOpenForBidding)
	}
	if patch.StatusRemark != nil {
		qb = qb.Set("status_remark", *patch.StatusRemark)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("build UpdateStatus query for project %s: %w", projectID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update project status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrProjectModified
	}

	return nil
}

// ListByStatus retrieves projects in any of the given statuses.
func (r *ProjectRepository) ListByStatus(ctx context.Context, statuses []domain.ProjectStatus) ([]*domain.Project, error) {
	query, args, err := psql.
		Select(projectColumns...).
		From("projects").
		Where(sq.Eq{"status": statuses}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByStatus query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return projects, nil
}
