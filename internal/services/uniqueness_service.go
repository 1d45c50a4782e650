package services

import (
	"context"

	"vetdesk/internal/apperrors"
	"vetdesk/internal/repositories"

	"github.com/google/uuid"
)

// StaffUniqueness carries the candidate values for a create or update.
// Empty fields are skipped, which is how updates express "unchanged".
// ExcludeID removes the entity being updated from the collision check.
type StaffUniqueness struct {
	Email                string
	Username             string
	LicenseNumber        string
	PublicKeyFingerprint string
	ExcludeID            *uuid.UUID
}

// UniquenessService checks candidate field values against existing
// records. Checks run in a fixed precedence order and the first
// conflict is reported: identity fields (email, username) before the
// vet-specific fields, since role-specific conflicts are meaningless
// when basic identity already collides.
type UniquenessService interface {
	Validate(ctx context.Context, candidate *StaffUniqueness) error
}

type uniquenessService struct {
	userRepo  repositories.UserRepository
	staffRepo repositories.StaffRepository
}

func NewUniquenessService(userRepo repositories.UserRepository, staffRepo repositories.StaffRepository) UniquenessService {
	return &uniquenessService{userRepo: userRepo, staffRepo: staffRepo}
}

type uniquenessCheck struct {
	name string
	run  func(ctx context.Context, c *StaffUniqueness) error
}

// checks is the explicit precedence order. Email is checked only for
// creates; updates never carry one because email is immutable here.
func (s *uniquenessService) checks() []uniquenessCheck {
	return []uniquenessCheck{
		{name: "email", run: s.checkEmail},
		{name: "username", run: s.checkUsername},
		{name: "license-number", run: s.checkLicenseNumber},
		{name: "public-key", run: s.checkPublicKey},
	}
}

func (s *uniquenessService) Validate(ctx context.Context, candidate *StaffUniqueness) error {
	for _, check := range s.checks() {
		if err := check.run(ctx, candidate); err != nil {
			return err
		}
	}
	return nil
}

func (s *uniquenessService) checkEmail(ctx context.Context, c *StaffUniqueness) error {
	if c.Email == "" {
		return nil
	}
	exists, err := s.userRepo.ExistsByEmail(ctx, c.Email)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.ErrEmailExists
	}
	return nil
}

func (s *uniquenessService) checkUsername(ctx context.Context, c *StaffUniqueness) error {
	if c.Username == "" {
		return nil
	}
	exists, err := s.userRepo.ExistsByUsername(ctx, c.Username, c.ExcludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.ErrUsernameExists
	}
	return nil
}

func (s *uniquenessService) checkLicenseNumber(ctx context.Context, c *StaffUniqueness) error {
	if c.LicenseNumber == "" {
		return nil
	}
	exists, err := s.staffRepo.ExistsByLicenseNumber(ctx, c.LicenseNumber, c.ExcludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.ErrLicenseNumberExists
	}
	return nil
}

func (s *uniquenessService) checkPublicKey(ctx context.Context, c *StaffUniqueness) error {
	if c.PublicKeyFingerprint == "" {
		return nil
	}
	exists, err := s.staffRepo.ExistsByPublicKey(ctx, c.PublicKeyFingerprint, c.ExcludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.ErrPublicKeyExists
	}
	return nil
}
