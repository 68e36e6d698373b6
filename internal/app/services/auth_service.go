package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/lecturealert/internal/app/models"
	"github.com/yigit/lecturealert/internal/app/session"
	"github.com/yigit/lecturealert/internal/pkg/apperrors"
	"github.com/yigit/lecturealert/internal/pkg/auth"
	"github.com/yigit/lecturealert/internal/pkg/email"
	"github.com/yigit/lecturealert/internal/pkg/validation"
)

// VerificationTokenTTL is how long a sign-up confirmation link stays valid
const VerificationTokenTTL = 24 * time.Hour

// ProfileStore is the profile persistence used by AuthService
type ProfileStore interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	MarkEmailVerified(ctx context.Context, id string) error
}

// VerificationTokenStore is the verification token persistence used by AuthService
type VerificationTokenStore interface {
	CreateToken(ctx context.Context, profileID, token string, expiresAt time.Time) error
	ConsumeToken(ctx context.Context, token string, now time.Time) (string, error)
}

// AuthService handles authentication operations. It is the backend of every
// session.Provider.
type AuthService struct {
	profiles    ProfileStore
	tokens      VerificationTokenStore
	jwtService  *auth.JWTService
	revocations session.RevocationList
	mailer      email.Sender
	now         func() time.Time
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	profiles ProfileStore,
	tokens VerificationTokenStore,
	jwtService *auth.JWTService,
	revocations session.RevocationList,
	mailer email.Sender,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		profiles:    profiles,
		tokens:      tokens,
		jwtService:  jwtService,
		revocations: revocations,
		mailer:      mailer,
		now:         time.Now,
		logger:      logger,
	}
}

// SignIn checks credentials and issues an access token. Unknown emails and
// wrong passwords are indistinguishable.
func (s *AuthService) SignIn(ctx context.Context, emailAddr, password string) (*session.Grant, error) {
	profile, err := s.profiles.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrBackendUnavailable, err)
	}

	if !auth.CheckPassword(profile.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !profile.EmailVerified {
		return nil, apperrors.ErrEmailNotVerified
	}

	identity := profile.Identity()
	token, err := s.jwtService.GenerateAccessToken(identity)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	s.logger.Info().Str("userId", identity.ID).Str("role", string(identity.Role)).Msg("User signed in")
	return &session.Grant{
		Token:     token.Token,
		TokenID:   token.ID,
		ExpiresAt: token.ExpiresAt,
		Identity:  identity,
	}, nil
}

// SignUp creates an unverified account and mails its confirmation link.
// The form is expected to be normalized and validated already.
func (s *AuthService) SignUp(ctx context.Context, form validation.SignUpForm) error {
	role, ok := models.ParseRole(form.Role)
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidRole, form.Role)
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	profile := &models.Profile{
		Email:        form.Email,
		FullName:     form.FullName,
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return err
	}

	token, err := email.GenerateVerificationToken()
	if err != nil {
		return err
	}
	if err := s.tokens.CreateToken(ctx, profile.ID, token, s.now().Add(VerificationTokenTTL)); err != nil {
		return err
	}

	if err := s.mailer.SendVerificationEmail(profile.Email, profile.FullName, token); err != nil {
		// the account exists; the link can be reissued later
		s.logger.Error().Err(err).Str("userId", profile.ID).Msg("Failed to send verification email")
	}

	s.logger.Info().Str("userId", profile.ID).Str("role", string(role)).Msg("Account created, pending verification")
	return nil
}

// SignOut revokes the access token until it would have expired.
// Tokens that no longer validate are already unusable and succeed silently.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrBackendUnavailable, err)
	}

	s.logger.Info().Str("userId", claims.UserID).Msg("User signed out")
	return nil
}

// CurrentSession resolves a stored token to a fresh identity
func (s *AuthService) CurrentSession(ctx context.Context, token string) (*models.Identity, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrBackendUnavailable, err)
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	profile, err := s.profiles.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	identity := profile.Identity()
	return &identity, nil
}

// VerifyEmail consumes a confirmation token and activates its account
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.ErrInvalidEmailToken
	}

	profileID, err := s.tokens.ConsumeToken(ctx, token, s.now())
	if err != nil {
		return err
	}
	if err := s.profiles.MarkEmailVerified(ctx, profileID); err != nil {
		return err
	}

	s.logger.Info().Str("userId", profileID).Msg("Email verified")
	return nil
}

var _ session.AuthBackend = (*AuthService)(nil)
