package models

import (
	"time"

	"github.com/google/uuid"
)

// StaffKind is a closed set of staff variants. Vet-only credential
// fields live in VetCredentials so they are structurally absent for
// every other kind.
type StaffKind string

const (
	StaffKindAdmin StaffKind = "ADMIN"
	StaffKindVet   StaffKind = "VET"
)

// ValidStaffKind reports whether k is one of the recognized variants.
func ValidStaffKind(k StaffKind) bool {
	return k == StaffKindAdmin || k == StaffKindVet
}

// VetCredentials holds the vet-specific attributes. LicenseNumber and
// PublicKeyFingerprint are unique across the whole platform, not per
// clinic.
type VetCredentials struct {
	LicenseNumber        string  `json:"license_number" db:"license_number"`
	PublicKeyFingerprint string  `json:"-" db:"public_key_fingerprint"`
	PublicKeyPath        *string `json:"-" db:"public_key_path"`
	PrivateKeyPath       *string `json:"-" db:"private_key_path"`
}

// ClinicStaff is a User working at exactly one clinic. Vet is nil
// unless Kind is StaffKindVet.
type ClinicStaff struct {
	User
	ClinicID  uuid.UUID       `json:"clinic_id" db:"clinic_id"`
	Kind      StaffKind       `json:"kind" db:"kind"`
	FirstName string          `json:"first_name" db:"first_name"`
	LastName  string          `json:"last_name" db:"last_name"`
	AvatarURL *string         `json:"avatar_url,omitempty" db:"avatar_url"`
	Active    bool            `json:"active" db:"active"`
	Roles     []string        `json:"roles" db:"-"`
	Vet       *VetCredentials `json:"vet,omitempty"`
}

// HasRole reports whether the staff member holds the named role.
func (s *ClinicStaff) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// StaffProfile is the outward representation returned by queries. The
// vet public key is reported only as present or absent.
type StaffProfile struct {
	ID            uuid.UUID  `json:"id"`
	ClinicID      uuid.UUID  `json:"clinic_id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	AvatarURL     *string    `json:"avatar_url,omitempty"`
	Kind          StaffKind  `json:"kind"`
	Roles         []string   `json:"roles"`
	Active        bool       `json:"active"`
	LicenseNumber *string    `json:"license_number,omitempty"`
	HasVetKeys    bool       `json:"has_vet_keys"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Profile converts the row into its outward representation.
func (s *ClinicStaff) Profile() *StaffProfile {
	p := &StaffProfile{
		ID:        s.ID,
		ClinicID:  s.ClinicID,
		Username:  s.Username,
		Email:     s.Email,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		AvatarURL: s.AvatarURL,
		Kind:      s.Kind,
		Roles:     s.Roles,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
	}
	if s.Vet != nil {
		p.LicenseNumber = &s.Vet.LicenseNumber
		p.HasVetKeys = s.Vet.PublicKeyPath != nil
	}
	return p
}
