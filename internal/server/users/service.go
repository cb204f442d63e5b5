package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/askgita/askgita/internal/common"
	"github.com/askgita/askgita/internal/server/auth"
	"github.com/askgita/askgita/internal/server/config"
	"github.com/askgita/askgita/internal/server/mail"
	"github.com/askgita/askgita/internal/server/models"
	"github.com/askgita/askgita/internal/server/repositories/redis"
)

// OTPStore issues and checks emailed verification codes.
// *redis.OTPStore satisfies it; tests substitute a fake.
type OTPStore interface {
	Issue(ctx context.Context, purpose, recipient string) (string, error)
	Verify(ctx context.Context, purpose, recipient, code string) error
	Peek(ctx context.Context, purpose, recipient, code string) error
}

// Service implements the account operations: OTP-verified signup, login,
// profile reads and updates, and OTP-confirmed deletion.
type Service struct {
	repo                        Repository
	otp                         OTPStore
	mailer                      mail.Mailer
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewService(repo Repository, otp OTPStore, mailer mail.Mailer, cfg *config.Config) *Service {
	return &Service{
		repo:                        repo,
		otp:                         otp,
		mailer:                      mailer,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// SendRegistrationOTP emails a verification code to an address that is not
// yet registered.
func (s *Service) SendRegistrationOTP(ctx context.Context, email string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return common.ErrAlreadyExists
	}
	if !errors.Is(err, common.ErrNotFound) {
		return common.ErrInternal
	}

	code, err := s.otp.Issue(ctx, redis.OTPPurposeRegister, email)
	if err != nil {
		return common.ErrInternal
	}
	return s.mailer.SendOTP(ctx, email, code, redis.OTPPurposeRegister)
}

// VerifyRegistrationOTP checks a code without consuming it, so the signup
// form can validate early and the code still works for Register.
func (s *Service) VerifyRegistrationOTP(ctx context.Context, email, code string) error {
	return s.otp.Peek(ctx, redis.OTPPurposeRegister, email, code)
}

// Register consumes the verification code and creates the account. The
// returned token authenticates the new session.
func (s *Service) Register(ctx context.Context, username, email, password, code string) (*models.User, string, error) {
	if err := s.otp.Verify(ctx, redis.OTPPurposeRegister, email, code); err != nil {
		return nil, "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, "", common.ErrAlreadyExists
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", common.ErrInternal
	}
	return user, token, nil
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", common.ErrInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", common.ErrInternal
	}
	return user, token, nil
}

// Profile returns the account for id.
func (s *Service) Profile(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile changes the display fields. Empty username keeps the
// current one; profileImage always overwrites (empty clears it).
func (s *Service) UpdateProfile(ctx context.Context, id, username, profileImage string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if username != "" {
		user.Username = username
	}
	user.ProfileImage = profileImage

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SendDeleteOTP emails a deletion-confirmation code to the account owner.
func (s *Service) SendDeleteOTP(ctx context.Context, id string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	code, err := s.otp.Issue(ctx, redis.OTPPurposeDelete, user.Email)
	if err != nil {
		return common.ErrInternal
	}
	return s.mailer.SendOTP(ctx, user.Email, code, redis.OTPPurposeDelete)
}

// Delete removes the account after consuming the confirmation code.
func (s *Service) Delete(ctx context.Context, id, code string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.otp.Verify(ctx, redis.OTPPurposeDelete, user.Email, code); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) generateAccessToken(user *models.User) (string, error) {
	return auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
}
