package services

import (
	"context"
	"fmt"

	"vetdesk/internal/apperrors"
	"vetdesk/internal/models"
	"vetdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// seedPermissions and roleGrants are the fixed RBAC catalog. Grants are
// reconciled on startup, not merely inserted, so a role never keeps a
// permission that was removed from the catalog.
var seedPermissions = map[string]string{
	models.PermissionManageStaff: "create, update, activate and deactivate staff",
	models.PermissionListStaff:   "view and list staff",
	models.PermissionViewAudit:   "read the clinic audit trail",
}

var roleGrants = map[string][]string{
	models.RoleAdmin: {models.PermissionManageStaff, models.PermissionListStaff, models.PermissionViewAudit},
	models.RoleVet:   {models.PermissionListStaff},
	models.RoleOwner: nil,
}

// RBACService owns the role and permission catalog: it seeds the fixed
// roles at startup and manages which roles a staff member holds. Role
// grants to permissions are catalog-defined and never edited per user.
type RBACService interface {
	EnsureSeedData(ctx context.Context) error
	AssignRole(ctx context.Context, actorID, staffID uuid.UUID, roleName string) error
	RevokeRole(ctx context.Context, actorID, staffID uuid.UUID, roleName string) error
	ListStaffRoles(ctx context.Context, actorID, staffID uuid.UUID) ([]*models.Role, error)
	ListRoles(ctx context.Context) ([]*models.Role, error)
	ListPermissions(ctx context.Context) ([]*models.Permission, error)
}

type rbacService struct {
	lookupSvc          LookupService
	authzSvc           AuthzService
	roleRepo           repositories.RoleRepository
	permissionRepo     repositories.PermissionRepository
	rolePermissionRepo repositories.RolePermissionRepository
	userRoleRepo       repositories.UserRoleRepository
	auditSvc           AuditLogsService
}

func NewRBACService(lookupSvc LookupService, authzSvc AuthzService, roleRepo repositories.RoleRepository,
	permissionRepo repositories.PermissionRepository, rolePermissionRepo repositories.RolePermissionRepository,
	userRoleRepo repositories.UserRoleRepository, auditSvc AuditLogsService) RBACService {
	return &rbacService{
		lookupSvc:          lookupSvc,
		authzSvc:           authzSvc,
		roleRepo:           roleRepo,
		permissionRepo:     permissionRepo,
		rolePermissionRepo: rolePermissionRepo,
		userRoleRepo:       userRoleRepo,
		auditSvc:           auditSvc,
	}
}

// EnsureSeedData makes the catalog durable. Creates are idempotent, so
// concurrent instances racing at startup converge on the same rows.
func (s *rbacService) EnsureSeedData(ctx context.Context) error {
	permIDs := make(map[string]uuid.UUID, len(seedPermissions))
	for name, description := range seedPermissions {
		desc := description
		if err := s.permissionRepo.Create(ctx, &models.Permission{ID: uuid.New(), Name: name, Description: &desc}); err != nil {
			return fmt.Errorf("seed permission %s: %w", name, err)
		}
		perm, err := s.permissionRepo.GetByName(ctx, name)
		if err != nil {
			return fmt.Errorf("seed permission %s: %w", name, err)
		}
		if perm == nil {
			return fmt.Errorf("permission %s missing after seeding", name)
		}
		permIDs[name] = perm.ID
	}

	for roleName, grants := range roleGrants {
		if err := s.roleRepo.Create(ctx, &models.Role{ID: uuid.New(), Name: roleName}); err != nil {
			return fmt.Errorf("seed role %s: %w", roleName, err)
		}
		role, err := s.roleRepo.GetByName(ctx, roleName)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", roleName, err)
		}
		if role == nil {
			return fmt.Errorf("role %s missing after seeding", roleName)
		}
		if err := s.reconcileGrants(ctx, role.ID, grants, permIDs); err != nil {
			return fmt.Errorf("reconcile grants for %s: %w", roleName, err)
		}
	}
	return nil
}

func (s *rbacService) reconcileGrants(ctx context.Context, roleID uuid.UUID, grants []string, permIDs map[string]uuid.UUID) error {
	wanted := make(map[uuid.UUID]bool, len(grants))
	for _, name := range grants {
		wanted[permIDs[name]] = true
	}

	existing, err := s.rolePermissionRepo.ListByRole(ctx, roleID)
	if err != nil {
		return err
	}
	current := make(map[uuid.UUID]bool, len(existing))
	for _, rp := range existing {
		current[rp.PermissionID] = true
		if !wanted[rp.PermissionID] {
			if err := s.rolePermissionRepo.Delete(ctx, roleID, rp.PermissionID); err != nil {
				return err
			}
		}
	}
	for permID := range wanted {
		if current[permID] {
			continue
		}
		if err := s.rolePermissionRepo.Create(ctx, &models.RolePermission{ID: uuid.New(), RoleID: roleID, PermissionID: permID}); err != nil {
			return err
		}
	}
	return nil
}

func (s *rbacService) AssignRole(ctx context.Context, actorID, staffID uuid.UUID, roleName string) error {
	if _, ok := roleGrants[roleName]; !ok {
		return apperrors.NewValidation("role", fmt.Sprintf("unrecognized role %q", roleName))
	}

	actor, err := s.lookupSvc.FindStaffOrFail(ctx, actorID)
	if err != nil {
		return err
	}
	target, err := s.lookupSvc.FindStaffOrFail(ctx, staffID)
	if err != nil {
		return err
	}

	if err := s.authzSvc.Authorize(ctx, &AuthzRequest{
		Actor:      actor,
		Target:     target,
		ClinicID:   target.ClinicID,
		Action:     "assign roles",
		Permission: models.PermissionManageStaff,
	}); err != nil {
		return err
	}

	role, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		return err
	}
	if role == nil {
		return fmt.Errorf("role %s is not provisioned: %w", roleName, apperrors.ErrInvalidState)
	}

	if err := s.userRoleRepo.Create(ctx, &models.UserRole{ID: uuid.New(), UserID: target.ID, RoleID: role.ID}); err != nil {
		return err
	}

	s.authzSvc.InvalidatePermissions(ctx, target.ID)
	s.audit(ctx, target.ClinicID, actor.ID, target.ID, models.AuditActionAssignRole, fmt.Sprintf("assigned role %s", roleName))
	return nil
}

func (s *rbacService) RevokeRole(ctx context.Context, actorID, staffID uuid.UUID, roleName string) error {
	if _, ok := roleGrants[roleName]; !ok {
		return apperrors.NewValidation("role", fmt.Sprintf("unrecognized role %q", roleName))
	}

	actor, err := s.lookupSvc.FindStaffOrFail(ctx, actorID)
	if err != nil {
		return err
	}
	target, err := s.lookupSvc.FindStaffOrFail(ctx, staffID)
	if err != nil {
		return err
	}

	if err := s.authzSvc.Authorize(ctx, &AuthzRequest{
		Actor:      actor,
		Target:     target,
		ClinicID:   target.ClinicID,
		Action:     "revoke roles",
		Permission: models.PermissionManageStaff,
	}); err != nil {
		return err
	}

	role, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		return err
	}
	if role == nil {
		return fmt.Errorf("role %s is not provisioned: %w", roleName, apperrors.ErrInvalidState)
	}

	if err := s.userRoleRepo.Delete(ctx, target.ID, role.ID); err != nil {
		return err
	}

	s.authzSvc.InvalidatePermissions(ctx, target.ID)
	s.audit(ctx, target.ClinicID, actor.ID, target.ID, models.AuditActionRevokeRole, fmt.Sprintf("revoked role %s", roleName))
	return nil
}

func (s *rbacService) ListStaffRoles(ctx context.Context, actorID, staffID uuid.UUID) ([]*models.Role, error) {
	actor, err := s.lookupSvc.FindStaffOrFail(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := s.lookupSvc.FindStaffOrFail(ctx, staffID)
	if err != nil {
		return nil, err
	}

	if err := s.authzSvc.Authorize(ctx, &AuthzRequest{
		Actor:      actor,
		Target:     target,
		ClinicID:   target.ClinicID,
		Action:     "view staff roles",
		Permission: models.PermissionListStaff,
	}); err != nil {
		return nil, err
	}

	userRoles, err := s.userRoleRepo.ListByUser(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	roles := make([]*models.Role, 0, len(userRoles))
	for _, ur := range userRoles {
		role, err := s.roleRepo.GetByID(ctx, ur.RoleID)
		if err != nil {
			return nil, err
		}
		if role == nil {
			continue
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func (s *rbacService) ListRoles(ctx context.Context) ([]*models.Role, error) {
	return s.roleRepo.List(ctx, 100, 0)
}

func (s *rbacService) ListPermissions(ctx context.Context) ([]*models.Permission, error) {
	return s.permissionRepo.List(ctx, 100, 0)
}

func (s *rbacService) audit(ctx context.Context, clinicID, actorID, targetID uuid.UUID, action, detail string) {
	var detailPtr *string
	if detail != "" {
		detailPtr = &detail
	}
	if err := s.auditSvc.Record(ctx, clinicID, &actorID, targetID.String(), action, detailPtr); err != nil {
		log.Warn().Err(err).Str("action", action).Str("target_id", targetID.String()).Msg("failed to record audit log")
	}
}
