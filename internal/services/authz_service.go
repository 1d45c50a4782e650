package services

import (
	"context"
	"fmt"
	"time"

	"vetdesk/internal/apperrors"
	"vetdesk/internal/caching"
	"vetdesk/internal/models"
	"vetdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const permissionCacheTTL = 5 * time.Minute

// AuthzRequest describes one staff-management decision. Action is a
// human-readable operation name ("update staff") used in error messages.
type AuthzRequest struct {
	Actor      *models.ClinicStaff
	Target     *models.ClinicStaff
	ClinicID   uuid.UUID
	Action     string
	Permission string
	ForbidSelf bool
}

// AuthzService is a stateless predicate engine. Rules run in a fixed
// order (actor liveness, role membership, tenant scoping, self-action
// prohibition) and the first failure wins, so a caller lacking the role
// never learns anything about tenancy or target state.
type AuthzService interface {
	Authorize(ctx context.Context, req *AuthzRequest) error
	UserHasPermission(ctx context.Context, userID uuid.UUID, permissionName string) (bool, error)
	GetUserPermissions(ctx context.Context, userID uuid.UUID) ([]string, error)
	InvalidatePermissions(ctx context.Context, userID uuid.UUID)
}

type authzService struct {
	userRoleRepo       repositories.UserRoleRepository
	rolePermissionRepo repositories.RolePermissionRepository
	permissionRepo     repositories.PermissionRepository
	cacheSvc           caching.CacheService
}

func NewAuthzService(userRoleRepo repositories.UserRoleRepository, rolePermissionRepo repositories.RolePermissionRepository,
	permissionRepo repositories.PermissionRepository, cacheSvc caching.CacheService) AuthzService {
	return &authzService{
		userRoleRepo:       userRoleRepo,
		rolePermissionRepo: rolePermissionRepo,
		permissionRepo:     permissionRepo,
		cacheSvc:           cacheSvc,
	}
}

type policyRule struct {
	name  string
	check func(ctx context.Context, req *AuthzRequest) error
}

// rules returns the ordered policy. Reordering this slice is a policy
// change and must show up in review.
func (s *authzService) rules() []policyRule {
	return []policyRule{
		{name: "actor-active", check: s.checkActorActive},
		{name: "role-membership", check: s.checkRoleMembership},
		{name: "tenant-scope", check: s.checkTenantScope},
		{name: "self-action", check: s.checkSelfAction},
	}
}

func (s *authzService) Authorize(ctx context.Context, req *AuthzRequest) error {
	for _, rule := range s.rules() {
		if err := rule.check(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// checkActorActive stops deactivated staff from acting on a still-valid
// access token. Tokens can outlive a deactivation by up to the token
// TTL, so possession of one proves nothing here.
func (s *authzService) checkActorActive(_ context.Context, req *AuthzRequest) error {
	if !req.Actor.Active {
		return apperrors.NewForbidden(req.Actor.ID, fmt.Sprintf("is deactivated and cannot %s", req.Action))
	}
	return nil
}

func (s *authzService) checkRoleMembership(ctx context.Context, req *AuthzRequest) error {
	allowed, err := s.UserHasPermission(ctx, req.Actor.ID, req.Permission)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbidden(req.Actor.ID, fmt.Sprintf("is not allowed to %s", req.Action))
	}
	return nil
}

func (s *authzService) checkTenantScope(_ context.Context, req *AuthzRequest) error {
	if req.Actor.ClinicID != req.ClinicID {
		return apperrors.NewForbidden(req.Actor.ID, fmt.Sprintf("cannot %s in clinic %s", req.Action, req.ClinicID))
	}
	return nil
}

func (s *authzService) checkSelfAction(_ context.Context, req *AuthzRequest) error {
	if req.ForbidSelf && req.Target != nil && req.Target.ID == req.Actor.ID {
		return apperrors.NewForbidden(req.Actor.ID, "cannot deactivate their own account")
	}
	return nil
}

// UserHasPermission resolves the user's roles to permission names and
// reports whether the named permission is among them.
func (s *authzService) UserHasPermission(ctx context.Context, userID uuid.UUID, permissionName string) (bool, error) {
	permissions, err := s.GetUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range permissions {
		if p == permissionName {
			return true, nil
		}
	}
	return false, nil
}

func (s *authzService) GetUserPermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if cached, err := s.cacheSvc.GetUserPermissions(ctx, userID); err == nil {
		return cached, nil
	}

	userRoles, err := s.userRoleRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var permissions []string
	for _, ur := range userRoles {
		rolePermissions, err := s.rolePermissionRepo.ListByRole(ctx, ur.RoleID)
		if err != nil {
			return nil, err
		}
		for _, rp := range rolePermissions {
			perm, err := s.permissionRepo.GetByID(ctx, rp.PermissionID)
			if err != nil || perm == nil {
				continue
			}
			if !seen[perm.Name] {
				seen[perm.Name] = true
				permissions = append(permissions, perm.Name)
			}
		}
	}

	if err := s.cacheSvc.SetUserPermissions(ctx, userID, permissions, permissionCacheTTL); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to cache permissions")
	}
	return permissions, nil
}

func (s *authzService) InvalidatePermissions(ctx context.Context, userID uuid.UUID) {
	if err := s.cacheSvc.InvalidateUserPermissions(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to invalidate permission cache")
	}
}
