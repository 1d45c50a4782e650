package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vetdesk/internal/apperrors"
	"vetdesk/internal/caching"
	"vetdesk/internal/models"
	"vetdesk/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const refreshTokenKeyPrefix = "vetdesk:refresh_token:"

// AuthService authenticates staff and manages session tokens. It is the
// token issuer the staff lifecycle reports to indirectly: when a
// username changes the API layer calls GenerateTokens for a fresh pair.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GenerateTokens(ctx context.Context, userID, clinicID uuid.UUID) (*models.TokenResponse, error)
	CleanupExpiredTokens(ctx context.Context) error
}

// TokenClaims are the JWT claims carried by access tokens.
type TokenClaims struct {
	ClinicID string `json:"clinic_id"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo   repositories.UserRepository
	staffRepo  repositories.StaffRepository
	hasher     PasswordHasher
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	tokenTTL   time.Duration
	refreshTTL time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, staffRepo repositories.StaffRepository,
	hasher PasswordHasher, cacheSvc caching.CacheService, jwtSecret string, tokenTTL, refreshTTL time.Duration) AuthService {
	return &authService{
		userRepo:   userRepo,
		staffRepo:  staffRepo,
		hasher:     hasher,
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	if username == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Enabled {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	staff, err := s.staffRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if staff == nil || !staff.Active {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.GenerateTokens(ctx, staff.ID, staff.ClinicID)
}

func (s *authService) GenerateTokens(ctx context.Context, userID, clinicID uuid.UUID) (*models.TokenResponse, error) {
	now := time.Now()

	claims := TokenClaims{
		ClinicID: clinicID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "vetdesk-auth",
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{"vetdesk-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	refreshToken := generateSecureToken()
	expiry := now.Add(s.refreshTTL)
	tokenData := fmt.Sprintf("%s:%s:%d", userID.String(), clinicID.String(), expiry.Unix())
	cacheKey := refreshTokenKeyPrefix + hashToken(refreshToken)
	if err := s.cacheSvc.SetString(ctx, cacheKey, tokenData, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenTTL.Seconds()),
		RefreshToken: refreshToken,
		UserID:       userID.String(),
		ClinicID:     clinicID.String(),
		IssuedAt:     now,
	}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	cacheKey := refreshTokenKeyPrefix + hashToken(refreshToken)
	tokenData, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	parts := strings.Split(tokenData, ":")
	if len(parts) != 3 {
		return nil, apperrors.ErrInvalidCredentials
	}

	expiry, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || time.Now().Unix() > expiry {
		_ = s.cacheSvc.Delete(ctx, cacheKey)
		return nil, apperrors.ErrInvalidCredentials
	}

	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	clinicID, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	// Rotate: the presented token is single-use.
	if err := s.cacheSvc.Delete(ctx, cacheKey); err != nil {
		log.Warn().Err(err).Msg("failed to delete rotated refresh token")
	}

	return s.GenerateTokens(ctx, userID, clinicID)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	return s.cacheSvc.Delete(ctx, refreshTokenKeyPrefix+hashToken(refreshToken))
}

// CleanupExpiredTokens is a no-op for the Redis store because entries
// carry a TTL; it exists so the scheduler has a hook if token storage
// moves to the database.
func (s *authService) CleanupExpiredTokens(ctx context.Context) error {
	log.Debug().Msg("refresh tokens expire via redis TTL; nothing to clean")
	return nil
}

func generateSecureToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return base64.URLEncoding.EncodeToString(bytes)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
