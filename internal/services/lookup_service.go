package services

import (
	"context"

	"vetdesk/internal/apperrors"
	"vetdesk/internal/models"
	"vetdesk/internal/repositories"

	"github.com/google/uuid"
)

// LookupService resolves identifiers to entities or fails with a typed
// NotFound error. It runs before any authorization or mutation step;
// policy checks are never evaluated against entities that do not exist.
type LookupService interface {
	FindUserOrFail(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindClinicOrFail(ctx context.Context, id uuid.UUID) (*models.Clinic, error)
	FindStaffOrFail(ctx context.Context, id uuid.UUID) (*models.ClinicStaff, error)
	FindClinicStaffOrFail(ctx context.Context, clinicID, id uuid.UUID) (*models.ClinicStaff, error)
}

type lookupService struct {
	userRepo   repositories.UserRepository
	clinicRepo repositories.ClinicRepository
	staffRepo  repositories.StaffRepository
}

func NewLookupService(userRepo repositories.UserRepository, clinicRepo repositories.ClinicRepository, staffRepo repositories.StaffRepository) LookupService {
	return &lookupService{
		userRepo:   userRepo,
		clinicRepo: clinicRepo,
		staffRepo:  staffRepo,
	}
}

func (s *lookupService) FindUserOrFail(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewNotFound("User", id)
	}
	return user, nil
}

func (s *lookupService) FindClinicOrFail(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	clinic, err := s.clinicRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if clinic == nil {
		return nil, apperrors.NewNotFound("Clinic", id)
	}
	return clinic, nil
}

func (s *lookupService) FindStaffOrFail(ctx context.Context, id uuid.UUID) (*models.ClinicStaff, error) {
	staff, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, apperrors.NewNotFound("Staff", id)
	}
	return staff, nil
}

func (s *lookupService) FindClinicStaffOrFail(ctx context.Context, clinicID, id uuid.UUID) (*models.ClinicStaff, error) {
	staff, err := s.staffRepo.GetByClinicAndID(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, apperrors.NewNotFound("Staff", id)
	}
	return staff, nil
}
