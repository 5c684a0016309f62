package services

import (
	"context"
	"fmt"

	"dentalops/internal/common"
	"dentalops/internal/models"
	"dentalops/internal/repositories"

	"github.com/google/uuid"
)

// AuditService is the query surface over the append-only audit trail.
// Writes happen inside the services that own each transition, never here.
type AuditService interface {
	List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditFilters) ([]*models.AuditEntry, error)
	ExportRange(ctx context.Context, tenantID uuid.UUID, from, to string) ([]*models.AuditEntry, error)
}

type auditService struct {
	auditRepo repositories.AuditRepository
}

func NewAuditService(auditRepo repositories.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditFilters) ([]*models.AuditEntry, error) {
	if filters == nil {
		filters = &models.AuditFilters{}
	}
	if filters.Limit <= 0 || filters.Limit > 1000 {
		filters.Limit = 100
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	entries, err := s.auditRepo.List(ctx, tenantID, filters)
	if err != nil {
		return nil, fmt.Errorf("%w: list audit entries: %v", common.ErrTransient, err)
	}
	return entries, nil
}

func (s *auditService) ExportRange(ctx context.Context, tenantID uuid.UUID, from, to string) ([]*models.AuditEntry, error) {
	entries, err := s.auditRepo.ListByDateRange(ctx, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: export audit entries: %v", common.ErrTransient, err)
	}
	return entries, nil
}
