package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/gigforge/gigforge/internal/domain"
	"github.com/gigforge/gigforge/internal/repository"
)

// AuditService records durable audit and activity facts. Audit entries
// ride the mutating transaction, so the trail never misses a committed
// state change and never records a rolled-back one.
type AuditService struct {
	auditRepo *repository.AuditRepository
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo *repository.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// RecordInTx appends an audit log entry inside the caller's
// transaction. A failure aborts the transaction: a state change must
// not commit without its audit record.
func (s *AuditService) RecordInTx(
	ctx context.Context,
	tx pgx.Tx,
	actor domain.Actor,
	action string,
	targetKind string,
	targetID string,
	previousValues map[string]any,
	newValues map[string]any,
) error {
	entry := &domain.AuditLog{
		ActorID:        &actor.ID,
		ActorRole:      actor.Role,
		Action:         action,
		TargetKind:     targetKind,
		TargetID:       targetID,
		Severity:       domain.SeverityInfo,
		Description:    action + " on " + targetKind + " " + targetID,
		PreviousValues: previousValues,
		NewValues:      newValues,
	}
	if err := s.auditRepo.CreateAudit(ctx, tx, entry); err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}

// RecordActivity appends a routine activity log entry.
func (s *AuditService) RecordActivity(ctx context.Context, userID, action, targetKind, targetID, description string) {
	entry := &domain.ActivityLog{
		UserID:      userID,
		Action:      action,
		TargetKind:  targetKind,
		TargetID:    targetID,
		Description: description,
	}
	if err := s.auditRepo.CreateActivity(ctx, entry); err != nil {
		slog.Error("activity record failed",
			"action", action,
			"user_id", userID,
			"error", err,
		)
	}
}
