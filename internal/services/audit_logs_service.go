package services

import (
	"context"
	"time"

	"vetdesk/internal/apperrors"
	"vetdesk/internal/models"
	"vetdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuditLogsService records and queries the staff-management audit trail.
type AuditLogsService interface {
	Record(ctx context.Context, clinicID uuid.UUID, actorID *uuid.UUID, targetID, action string, detail *string) error
	ListByClinic(ctx context.Context, clinicID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
	PruneOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{auditLogsRepo: auditLogsRepo}
}

func (s *auditLogsService) Record(ctx context.Context, clinicID uuid.UUID, actorID *uuid.UUID, targetID, action string, detail *string) error {
	if action == "" {
		return apperrors.NewValidation("action", "is required")
	}
	return s.auditLogsRepo.Create(ctx, &models.AuditLog{
		ID:       uuid.New(),
		ClinicID: clinicID,
		ActorID:  actorID,
		TargetID: targetID,
		Action:   action,
		Detail:   detail,
	})
}

func (s *auditLogsService) ListByClinic(ctx context.Context, clinicID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}
	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if filters.Limit > 1000 {
		filters.Limit = 1000
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return nil, apperrors.NewValidation("end_date", "cannot be before start_date")
	}
	return s.auditLogsRepo.ListByClinic(ctx, clinicID, filters)
}

func (s *auditLogsService) PruneOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	deleted, err := s.auditLogsRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("pruned audit logs")
	}
	return deleted, nil
}
