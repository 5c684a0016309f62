package repositories

import (
	"context"

	"dentalops/internal/models"

	"github.com/google/uuid"
)

type PermissionRepository interface {
	ListByRole(ctx context.Context, roleID uuid.UUID) ([]*models.Permission, error)
	GetByKey(ctx context.Context, key string) (*models.Permission, error)
}

type permissionRepo struct {
	db Database
}

func NewPermissionRepo(db Database) PermissionRepository {
	return &permissionRepo{db: db}
}

// ListByRole returns the role's permissions in grant order; capability
// merging relies on this ordering for display-conflict resolution.
func (r *permissionRepo) ListByRole(ctx context.Context, roleID uuid.UUID) ([]*models.Permission, error) {
	query := `
		SELECT p.id, p.key, p.label, p.grp, p.created_at
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY rp.position
	`
	rows, err := r.db.Query(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []*models.Permission
	for rows.Next() {
		perm := &models.Permission{}
		if err := rows.Scan(&perm.ID, &perm.Key, &perm.Label, &perm.Group, &perm.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}

func (r *permissionRepo) GetByKey(ctx context.Context, key string) (*models.Permission, error) {
	perm := &models.Permission{}
	query := `
		SELECT id, key, label, grp, created_at
		FROM permissions
		WHERE key = $1
	`
	err := r.db.QueryRow(ctx, query, key).Scan(&perm.ID, &perm.Key, &perm.Label, &perm.Group, &perm.CreatedAt)
	if err != nil {
		return nil, err
	}
	return perm, nil
}
