package repositories

import (
	"context"
	"fmt"

	"dentalops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AuditRepository is append-only. There is deliberately no update or delete.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditFilters) ([]*models.AuditEntry, error)
	ListByDateRange(ctx context.Context, tenantID uuid.UUID, from, to string) ([]*models.AuditEntry, error)
}

type auditRepo struct {
	db Database
}

func NewAuditRepo(db Database) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (id, tenant_id, subject_type, subject_id, action, from_state, to_state, actor_id, reason, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.TenantID, entry.SubjectType, entry.SubjectID, entry.Action,
		entry.FromState, entry.ToState, entry.ActorID, entry.Reason, entry.Details)
	return err
}

func (r *auditRepo) List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditFilters) ([]*models.AuditEntry, error) {
	queryBase := `
		SELECT id, tenant_id, subject_type, subject_id, action, from_state, to_state, actor_id, reason, details, created_at
		FROM audit_entries
		WHERE tenant_id = $1
	`
	args := []interface{}{tenantID}
	conditionCount := 1

	if filters.SubjectType != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND subject_type = $%d`, conditionCount)
		args = append(args, *filters.SubjectType)
	}
	if filters.SubjectID != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND subject_id = $%d`, conditionCount)
		args = append(args, *filters.SubjectID)
	}
	if filters.Action != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND action = $%d`, conditionCount)
		args = append(args, *filters.Action)
	}
	if filters.ActorID != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND actor_id = $%d`, conditionCount)
		args = append(args, *filters.ActorID)
	}
	if filters.StartDate != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND created_at >= $%d`, conditionCount)
		args = append(args, *filters.StartDate)
	}
	if filters.EndDate != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND created_at <= $%d`, conditionCount)
		args = append(args, *filters.EndDate)
	}

	queryBase += ` ORDER BY created_at DESC`

	conditionCount++
	queryBase += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filters.Limit)
	if filters.Offset > 0 {
		conditionCount++
		queryBase += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditEntries(rows)
}

// ListByDateRange is the archive job's export read; from/to are ISO dates.
func (r *auditRepo) ListByDateRange(ctx context.Context, tenantID uuid.UUID, from, to string) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, tenant_id, subject_type, subject_id, action, from_state, to_state, actor_id, reason, details, created_at
		FROM audit_entries
		WHERE tenant_id = $1 AND created_at >= $2::date AND created_at < $3::date
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditEntries(rows)
}

func scanAuditEntries(rows pgx.Rows) ([]*models.AuditEntry, error) {
	var entries []*models.AuditEntry
	for rows.Next() {
		entry := &models.AuditEntry{}
		if err := rows.Scan(&entry.ID, &entry.TenantID, &entry.SubjectType, &entry.SubjectID, &entry.Action,
			&entry.FromState, &entry.ToState, &entry.ActorID, &entry.Reason, &entry.Details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
