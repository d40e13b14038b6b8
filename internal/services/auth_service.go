package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/deyby01/nexus-pm-v2/internal/constants"
	"github.com/deyby01/nexus-pm-v2/internal/models"
	"github.com/deyby01/nexus-pm-v2/internal/repository"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrAccountLocked        = errors.New("account temporarily locked")
	ErrAccountInactive      = errors.New("account is deactivated")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	clock    clock.Clock
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, clk clock.Clock, logger *zap.Logger) *AuthService {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo: userRepo,
		clock:    clk,
		logger:   logger,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Timezone  string
	Language  string
	JobTitle  string
}

// Signup creates a new user account.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, rejected(RejectionInvalidInput, "a valid email is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Timezone:     input.Timezone,
		Language:     input.Language,
		JobTitle:     input.JobTitle,
		IsActive:     true,
	}
	if user.Timezone == "" {
		user.Timezone = "UTC"
	}
	if user.Language == "" {
		user.Language = "en"
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("action", "user_created"),
	)

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user. Consecutive
// failures lock the account for a cooldown window; a successful login resets
// the counter.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.clock.Now()
	if user.IsLocked(now) {
		return nil, ErrAccountLocked
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= constants.MaxFailedLogins {
			lockedUntil := now.Add(constants.AccountLockWindow)
			user.LockedUntil = &lockedUntil
			s.logger.Warn("account locked after repeated failed logins",
				zap.String("user_id", user.ID.String()),
				zap.Time("locked_until", lockedUntil),
				zap.String("action", "account_locked"),
			)
		}
		if err := s.userRepo.Update(user); err != nil {
			return nil, fmt.Errorf("failed to record login failure: %w", err)
		}
		return nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
		if err := s.userRepo.Update(user); err != nil {
			return nil, fmt.Errorf("failed to reset login counter: %w", err)
		}
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// UpdateProfileInput holds mutable profile fields.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Timezone  *string
	Language  *string
	JobTitle  *string
}

// UpdateProfile updates the user's profile fields.
func (s *AuthService) UpdateProfile(id uuid.UUID, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Timezone != nil {
		user.Timezone = *input.Timezone
	}
	if input.Language != nil {
		user.Language = *input.Language
	}
	if input.JobTitle != nil {
		user.JobTitle = *input.JobTitle
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// DeactivateUser soft-deletes the account. Memberships are left in place so
// history survives a later restore.
func (s *AuthService) DeactivateUser(id uuid.UUID) error {
	if _, err := s.GetUser(id); err != nil {
		return err
	}
	if err := s.userRepo.SoftDelete(id); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	s.logger.Info("user deactivated",
		zap.String("user_id", id.String()),
		zap.String("action", "user_deactivated"),
	)
	return nil
}

// RestoreUser reactivates a soft-deleted account.
func (s *AuthService) RestoreUser(id uuid.UUID) error {
	if err := s.userRepo.Restore(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to restore user: %w", err)
	}
	return nil
}
