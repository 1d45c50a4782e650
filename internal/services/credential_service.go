package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"vetdesk/internal/apperrors"

	"github.com/google/uuid"
)

// VetKeyMaterial is the externally-supplied credential pair for a vet.
// Both blobs are opaque to this service; the private key is expected to
// arrive already encrypted.
type VetKeyMaterial struct {
	PublicKey  []byte
	PrivateKey []byte
}

// ProvisionedCredentials reports where the material was stored and the
// fingerprint used for the global public-key uniqueness constraint.
type ProvisionedCredentials struct {
	Fingerprint    string
	PublicKeyPath  string
	PrivateKeyPath *string
}

// CredentialService accepts vet key material and delegates storage to
// the key store. Uniqueness pre-checks run in the lifecycle manager
// before Provision is invoked, so no storage write happens for a
// request that is doomed to fail; the key store's own collision report
// is still authoritative and is propagated unchanged.
type CredentialService interface {
	ValidateMaterial(material *VetKeyMaterial) error
	Fingerprint(publicKey []byte) string
	Provision(ctx context.Context, clinicID, userID uuid.UUID, material *VetKeyMaterial) (*ProvisionedCredentials, error)
}

type credentialService struct {
	keyStore KeyStoreService
}

func NewCredentialService(keyStore KeyStoreService) CredentialService {
	return &credentialService{keyStore: keyStore}
}

// ValidateMaterial rejects absent key material before any business
// check or storage write runs.
func (s *credentialService) ValidateMaterial(material *VetKeyMaterial) error {
	if material == nil || len(material.PublicKey) == 0 {
		return apperrors.NewValidation("public_key", "is required for vet staff")
	}
	return nil
}

// Fingerprint derives the stable identifier the uniqueness pre-check
// compares. Two byte-identical public keys always collide.
func (s *credentialService) Fingerprint(publicKey []byte) string {
	sum := sha256.Sum256(publicKey)
	return hex.EncodeToString(sum[:])
}

func (s *credentialService) Provision(ctx context.Context, clinicID, userID uuid.UUID, material *VetKeyMaterial) (*ProvisionedCredentials, error) {
	if err := s.ValidateMaterial(material); err != nil {
		return nil, err
	}

	namespace := fmt.Sprintf("clinic-%s", clinicID.String())
	hint := userID.String()

	publicPath, err := s.keyStore.StorePublicKey(ctx, material.PublicKey, namespace, hint)
	if err != nil {
		return nil, err
	}

	provisioned := &ProvisionedCredentials{
		Fingerprint:   s.Fingerprint(material.PublicKey),
		PublicKeyPath: publicPath,
	}

	if len(material.PrivateKey) > 0 {
		privatePath, err := s.keyStore.StoreEncryptedPrivateKey(ctx, material.PrivateKey, namespace, hint)
		if err != nil {
			return nil, err
		}
		provisioned.PrivateKeyPath = &privatePath
	}

	return provisioned, nil
}
