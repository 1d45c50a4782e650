package repositories

import (
	"context"

	"vetdesk/internal/models"

	"github.com/google/uuid"
)

type RolePermissionRepository interface {
	Create(ctx context.Context, rolePermission *models.RolePermission) error
	Delete(ctx context.Context, roleID, permissionID uuid.UUID) error
	ListByRole(ctx context.Context, roleID uuid.UUID) ([]*models.RolePermission, error)
}

type rolePermissionRepo struct {
	db Database
}

func NewRolePermissionRepo(db Database) RolePermissionRepository {
	return &rolePermissionRepo{db: db}
}

func (r *rolePermissionRepo) Create(ctx context.Context, rolePermission *models.RolePermission) error {
	query := `
		INSERT INTO role_permissions (id, role_id, permission_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, rolePermission.ID, rolePermission.RoleID, rolePermission.PermissionID)
	return err
}

func (r *rolePermissionRepo) Delete(ctx context.Context, roleID, permissionID uuid.UUID) error {
	query := `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`
	_, err := r.db.Exec(ctx, query, roleID, permissionID)
	return err
}

func (r *rolePermissionRepo) ListByRole(ctx context.Context, roleID uuid.UUID) ([]*models.RolePermission, error) {
	query := `
		SELECT id, role_id, permission_id, created_at
		FROM role_permissions
		WHERE role_id = $1
	`
	rows, err := r.db.Query(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rolePermissions []*models.RolePermission
	for rows.Next() {
		rp := &models.RolePermission{}
		if err := rows.Scan(&rp.ID, &rp.RoleID, &rp.PermissionID, &rp.CreatedAt); err != nil {
			return nil, err
		}
		rolePermissions = append(rolePermissions, rp)
	}
	return rolePermissions, rows.Err()
}
