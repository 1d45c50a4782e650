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

// StaffService drives the staff lifecycle. Every operation follows the
// same dependency order: resolve entities, authorize, validate
// uniqueness, provision credentials, persist. Authorization always runs
// before state-validity checks so a forbidden actor learns nothing
// about the target's current state.
type StaffService interface {
	Create(ctx context.Context, actorID uuid.UUID, req *CreateStaffRequest) (*models.StaffProfile, error)
	Update(ctx context.Context, actorID, staffID uuid.UUID, req *UpdateStaffRequest) (*UpdateStaffResult, error)
	Activate(ctx context.Context, actorID, staffID uuid.UUID) (*models.StaffProfile, error)
	Deactivate(ctx context.Context, actorID, staffID uuid.UUID) (*models.StaffProfile, error)
	GetByID(ctx context.Context, actorID, staffID uuid.UUID) (*models.StaffProfile, error)
	ListByClinic(ctx context.Context, actorID, clinicID uuid.UUID, activeOnly *bool, limit, offset int) ([]*models.StaffProfile, error)
}

type staffService struct {
	lookupSvc     LookupService
	authzSvc      AuthzService
	uniquenessSvc UniquenessService
	credentialSvc CredentialService
	hasher        PasswordHasher
	staffRepo     repositories.StaffRepository
	roleRepo      repositories.RoleRepository
	auditSvc      AuditLogsService
}

func NewStaffService(lookupSvc LookupService, authzSvc AuthzService, uniquenessSvc UniquenessService,
	credentialSvc CredentialService, hasher PasswordHasher, staffRepo repositories.StaffRepository,
	roleRepo repositories.RoleRepository, auditSvc AuditLogsService) StaffService {
	return &staffService{
		lookupSvc:     lookupSvc,
		authzSvc:      authzSvc,
		uniquenessSvc: uniquenessSvc,
		credentialSvc: credentialSvc,
		hasher:        hasher,
		staffRepo:     staffRepo,
		roleRepo:      roleRepo,
		auditSvc:      auditSvc,
	}
}

type CreateStaffRequest struct {
	ClinicID      uuid.UUID        `json:"-"`
	Kind          models.StaffKind `json:"kind" validate:"required"`
	Username      string           `json:"username" validate:"required,min=3"`
	Email         string           `json:"email" validate:"required,email"`
	Password      string           `json:"password" validate:"required,min=8"`
	FirstName     string           `json:"first_name" validate:"required"`
	LastName      string           `json:"last_name" validate:"required"`
	AvatarURL     *string          `json:"avatar_url"`
	LicenseNumber string           `json:"license_number"`
	PublicKey     []byte           `json:"public_key"`
	PrivateKey    []byte           `json:"private_key"`
}

type UpdateStaffRequest struct {
	Username      *string `json:"username" validate:"omitempty,min=3"`
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	AvatarURL     *string `json:"avatar_url"`
	LicenseNumber *string `json:"license_number"`
	PublicKey     []byte  `json:"public_key"`
	PrivateKey    []byte  `json:"private_key"`
}

// UpdateStaffResult reports the resulting profile and whether a
// self-identifying field changed; the API layer uses that signal to
// mint a replacement session token. This service never talks to the
// token issuer itself.
type UpdateStaffResult struct {
	Profile         *models.StaffProfile
	UsernameChanged bool
}

func (s *staffService) Create(ctx context.Context, actorID uuid.UUID, req *CreateStaffRequest) (*models.StaffProfile, error) {
	if !models.ValidStaffKind(req.Kind) {
		return nil, apperrors.NewValidation("kind", fmt.Sprintf("unrecognized staff kind %q", req.Kind))
	}

	actor, err := s.lookupSvc.FindStaffOrFail(ctx, actorID)
	if err != nil {
		return nil, err
	}
	clinic, err := s.lookupSvc.FindClinicOrFail(ctx, req.ClinicID)
	if err != nil {
		return nil, err
	}

	if err := s.authzSvc.Authorize(ctx, &AuthzRequest{
		Actor:      actor,
		ClinicID:   clinic.ID,
		Action:     "create staff",
		Permission: models.PermissionManageStaff,
	}); err != nil {
		return nil, err
	}

	candidate := &StaffUniqueness{
		Email:    req.Email,
		Username: req.Username,
	}

	isVet := req.Kind == models.StaffKindVet
	if isVet {
		if req.LicenseNumber == "" {
			return nil, fmt.Errorf("vet staff requires a license number: %w", apperrors.ErrInvalidState)
		}
		material := &VetKeyMaterial{PublicKey: req.PublicKey, PrivateKey: req.PrivateKey}
		if err := s.credentialSvc.ValidateMaterial(material); err != nil {
			return nil, err
		}
		candidate.LicenseNumber = req.LicenseNumber
		candidate.PublicKeyFingerprint = s.credentialSvc.Fingerprint(req.PublicKey)
	}

	if err := s.uniquenessSvc.Validate(ctx, candidate); err != nil {
		return nil, err
	}

	staff := &models.ClinicStaff{
		User: models.User{
			ID:       uuid.New(),
			Username: req.Username,
			Email:    req.Email,
			Enabled:  true,
		},
		ClinicID:  clinic.ID,
		Kind:      req.Kind,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AvatarURL: req.AvatarURL,
		Active:    true,
		Roles:     []string{string(req.Kind)},
	}

	if isVet {
		provisioned, err := s.credentialSvc.Provision(ctx, clinic.ID, staff.ID, &VetKeyMaterial{
			PublicKey:  req.PublicKey,
			PrivateKey: req.PrivateKey,
		})
		if err != nil {
			return nil, err
		}
		staff.Vet = &models.VetCredentials{
			LicenseNumber:        req.LicenseNumber,
			PublicKeyFingerprint: provisioned.Fingerprint,
			PublicKeyPath:        &provisioned.PublicKeyPath,
			PrivateKeyPath:       provisioned.PrivateKeyPath,
		}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	staff.PasswordHash = hash

	role, err := s.roleRepo.GetByName(ctx, string(req.Kind))
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("role %s is not provisioned: %w", req.Kind, apperrors.ErrInvalidState)
	}

	if err := s.staffRepo.Create(ctx, staff, []uuid.UUID{role.ID}); err != nil {
		return nil, err
	}

	s.audit(ctx, clinic.ID, actor.ID, staff.ID, models.AuditActionCreate, fmt.Sprintf("created %s %s", req.Kind, req.Username))
	return staff.Profile(), nil
}

func (s *staffService) Update(ctx context.Context, actorID, staffID uuid.UUID, req *UpdateStaffRequest) (*UpdateStaffResult, error) {
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
		Action:     "update staff",
		Permission: models.PermissionManageStaff,
	}); err != nil {
		return nil, err
	}

	changed := false
	usernameChanged := false
	candidate := &StaffUniqueness{ExcludeID: &target.ID}

	if req.Username != nil && *req.Username != target.Username {
		candidate.Username = *req.Username
		usernameChanged = true
		changed = true
	}
	if req.FirstName != nil && *req.FirstName != target.FirstName {
		changed = true
	}
	if req.LastName != nil && *req.LastName != target.LastName {
		changed = true
	}
	if req.AvatarURL != nil && !equalPtr(req.AvatarURL, target.AvatarURL) {
		changed = true
	}

	licenseChanged := false
	rotateKeys := false
	var newFingerprint string

	// Vet-only fields are ignored outright for other staff kinds.
	if target.Kind == models.StaffKindVet && target.Vet != nil {
		if req.LicenseNumber != nil && *req.LicenseNumber != target.Vet.LicenseNumber {
			if *req.LicenseNumber == "" {
				return nil, fmt.Errorf("vet staff requires a license number: %w", apperrors.ErrInvalidState)
			}
			candidate.LicenseNumber = *req.LicenseNumber
			licenseChanged = true
			changed = true
		}
		if len(req.PublicKey) > 0 {
			newFingerprint = s.credentialSvc.Fingerprint(req.PublicKey)
			// Re-submitting the current key is not a rotation and not
			// a self-collision.
			if newFingerprint != target.Vet.PublicKeyFingerprint {
				candidate.PublicKeyFingerprint = newFingerprint
				rotateKeys = true
				changed = true
			}
		}
	}

	if err := s.uniquenessSvc.Validate(ctx, candidate); err != nil {
		return nil, err
	}

	if !changed {
		// Nothing differs from the stored row; skip the write entirely.
		return &UpdateStaffResult{Profile: target.Profile()}, nil
	}

	if req.Username != nil {
		target.Username = *req.Username
	}
	if req.FirstName != nil {
		target.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		target.LastName = *req.LastName
	}
	if req.AvatarURL != nil {
		target.AvatarURL = req.AvatarURL
	}
	if licenseChanged {
		target.Vet.LicenseNumber = *req.LicenseNumber
	}
	if rotateKeys {
		provisioned, err := s.credentialSvc.Provision(ctx, target.ClinicID, target.ID, &VetKeyMaterial{
			PublicKey:  req.PublicKey,
			PrivateKey: req.PrivateKey,
		})
		if err != nil {
			return nil, err
		}
		target.Vet.PublicKeyFingerprint = provisioned.Fingerprint
		target.Vet.PublicKeyPath = &provisioned.PublicKeyPath
		// A rotation without a fresh private blob must keep the stored
		// encrypted private key addressable.
		if provisioned.PrivateKeyPath != nil {
			target.Vet.PrivateKeyPath = provisioned.PrivateKeyPath
		}
	}

	if err := s.staffRepo.Save(ctx, target); err != nil {
		return nil, err
	}

	s.audit(ctx, target.ClinicID, actor.ID, target.ID, models.AuditActionUpdate, "updated staff profile")
	return &UpdateStaffResult{Profile: target.Profile(), UsernameChanged: usernameChanged}, nil
}

func (s *staffService) Activate(ctx context.Context, actorID, staffID uuid.UUID) (*models.StaffProfile, error) {
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
		Action:     "activate staff",
		Permission: models.PermissionManageStaff,
	}); err != nil {
		return nil, err
	}

	if target.Active {
		return nil, apperrors.ErrAlreadyActive
	}

	target.Active = true
	if err := s.staffRepo.Save(ctx, target); err != nil {
		return nil, err
	}

	s.audit(ctx, target.ClinicID, actor.ID, target.ID, models.AuditActionActivate, "")
	return target.Profile(), nil
}

func (s *staffService) Deactivate(ctx context.Context, actorID, staffID uuid.UUID) (*models.StaffProfile, error) {
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
		Action:     "deactivate staff",
		Permission: models.PermissionManageStaff,
		ForbidSelf: true,
	}); err != nil {
		return nil, err
	}

	if !target.Active {
		return nil, apperrors.ErrAlreadyInactive
	}

	target.Active = false
	if err := s.staffRepo.Save(ctx, target); err != nil {
		return nil, err
	}

	s.audit(ctx, target.ClinicID, actor.ID, target.ID, models.AuditActionDeactivate, "")
	return target.Profile(), nil
}

func (s *staffService) GetByID(ctx context.Context, actorID, staffID uuid.UUID) (*models.StaffProfile, error) {
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
		Action:     "view staff",
		Permission: models.PermissionListStaff,
	}); err != nil {
		return nil, err
	}

	return target.Profile(), nil
}

func (s *staffService) ListByClinic(ctx context.Context, actorID, clinicID uuid.UUID, activeOnly *bool, limit, offset int) ([]*models.StaffProfile, error) {
	actor, err := s.lookupSvc.FindStaffOrFail(ctx, actorID)
	if err != nil {
		return nil, err
	}
	clinic, err := s.lookupSvc.FindClinicOrFail(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	if err := s.authzSvc.Authorize(ctx, &AuthzRequest{
		Actor:      actor,
		ClinicID:   clinic.ID,
		Action:     "list staff",
		Permission: models.PermissionListStaff,
	}); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var members []*models.ClinicStaff
	if activeOnly != nil {
		members, err = s.staffRepo.ListByClinicAndActive(ctx, clinic.ID, *activeOnly, limit, offset)
	} else {
		members, err = s.staffRepo.ListByClinic(ctx, clinic.ID, limit, offset)
	}
	if err != nil {
		return nil, err
	}

	profiles := make([]*models.StaffProfile, 0, len(members))
	for _, member := range members {
		profiles = append(profiles, member.Profile())
	}
	return profiles, nil
}

// audit records the action after the mutation is durable. Audit failures
// are logged, not surfaced; the operation itself already succeeded.
func (s *staffService) audit(ctx context.Context, clinicID, actorID, targetID uuid.UUID, action, detail string) {
	var detailPtr *string
	if detail != "" {
		detailPtr = &detail
	}
	if err := s.auditSvc.Record(ctx, clinicID, &actorID, targetID.String(), action, detailPtr); err != nil {
		log.Warn().Err(err).Str("action", action).Str("target_id", targetID.String()).Msg("failed to record audit log")
	}
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
