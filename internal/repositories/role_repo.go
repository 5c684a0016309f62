package repositories

import (
	"context"

	"dentalops/internal/models"

	"github.com/google/uuid"
)

type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Role, error)
	ListNamesByUser(ctx context.Context, userID uuid.UUID) ([]string, error)
	AssignToUser(ctx context.Context, userRole *models.UserRole) error
	GrantPermission(ctx context.Context, roleID, permissionID uuid.UUID, position int) error
}

type roleRepo struct {
	db Database
}

func NewRoleRepo(db Database) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) Create(ctx context.Context, role *models.Role) error {
	query := `
		INSERT INTO roles (id, tenant_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (tenant_id, name) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, role.ID, role.TenantID, role.Name, role.Description)
	return err
}

func (r *roleRepo) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Role, error) {
	role := &models.Role{}
	query := `
		SELECT id, tenant_id, name, description, created_at, updated_at
		FROM roles
		WHERE tenant_id = $1 AND name = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, name).Scan(&role.ID, &role.TenantID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return role, nil
}

// ListNamesByUser returns the user's role names in assignment order.
func (r *roleRepo) ListNamesByUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	query := `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id AND r.tenant_id = ur.tenant_id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GrantPermission binds a permission to a role at a position; position drives
// the merge order when a user holds the role.
func (r *roleRepo) GrantPermission(ctx context.Context, roleID, permissionID uuid.UUID, position int) error {
	query := `
		INSERT INTO role_permissions (role_id, permission_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, roleID, permissionID, position)
	return err
}

func (r *roleRepo) AssignToUser(ctx context.Context, userRole *models.UserRole) error {
	query := `
		INSERT INTO user_roles (user_id, role_id, tenant_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userRole.UserID, userRole.RoleID, userRole.TenantID)
	return err
}
