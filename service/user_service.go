package service

import (
	"context"
	"errors"
	"fmt"
	"merchant-api/logger"
	"merchant-api/model"
	"merchant-api/repository"
	"strings"
	"time"
)

var (
	ErrEmailTaken         = errors.New("this e-mail address is already in use")
	ErrInvalidCredentials = errors.New("invalid e-mail or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidRole        = errors.New("invalid role specified")
	ErrNothingToUpdate    = errors.New("no changes were requested")
)

// UserService handles user-related business logic.
type UserService struct {
	userRepo repository.IUserRepository
	auth     *AuthService
	email    EmailService
	cache    ICacheClient
	clock    Clock
}

// NewUserService creates a new UserService. cache may be nil, which disables profile caching.
func NewUserService(userRepo repository.IUserRepository, auth *AuthService, email EmailService, cache ICacheClient, clock Clock) *UserService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &UserService{userRepo: userRepo, auth: auth, email: email, cache: cache, clock: clock}
}

// Register creates a merchant account with an unverified e-mail address.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	role := req.Role
	if role == "" {
		role = model.RoleMerchant
	}
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Password:    hash,
		Role:        string(role),
		CompanyName: req.CompanyName,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns a signed access token.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.auth.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	token, err := s.auth.GenerateJWT(user)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{AccessToken: token, ExpiresIn: int64(s.auth.TokenTTL().Seconds())}, nil
}

// GetProfile returns the user, using a cache-aside strategy.
func (s *UserService) GetProfile(ctx context.Context, userID int) (*model.User, error) {
	key := profileCacheKey(userID)
	var cached model.User
	if cacheGet(ctx, s.cache, key, &cached) {
		return &cached, nil
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	cacheSet(ctx, s.cache, key, user)
	return user, nil
}

// UpdateProfile changes the company profile of the user and returns the fresh record.
func (s *UserService) UpdateProfile(ctx context.Context, userID int, req model.UpdateProfileRequest) (*model.User, error) {
	return s.UpdateUser(ctx, userID, model.UpdateUserRequest{CompanyName: req.CompanyName})
}

// ListUsers returns every user ordered by id.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.GetAllUsers(ctx)
}

// UpdateUserRole validates the role and stores it. Access tokens already handed out
// keep the old role until they expire.
func (s *UserService) UpdateUserRole(ctx context.Context, userID int, newRole model.Role) error {
	switch newRole {
	case model.RoleAdmin, model.RoleMerchant, model.RoleCustomer:
	default:
		return ErrInvalidRole
	}
	if err := s.userRepo.UpdateUserRole(ctx, userID, string(newRole)); err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return ErrUserNotFound
		}
		return err
	}
	s.ForgetProfile(ctx, userID)
	return nil
}

// UpdateUser applies the non-empty fields of req to the user and returns the fresh record.
func (s *UserService) UpdateUser(ctx context.Context, userID int, req model.UpdateUserRequest) (*model.User, error) {
	companyName := strings.TrimSpace(req.CompanyName)
	if req.Role == "" && companyName == "" {
		return nil, ErrNothingToUpdate
	}
	if req.Role != "" {
		if err := s.UpdateUserRole(ctx, userID, req.Role); err != nil {
			return nil, err
		}
	}
	if companyName != "" {
		if err := s.userRepo.UpdateCompanyName(ctx, userID, companyName); err != nil {
			if errors.Is(err, repository.ErrNoRecord) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		s.ForgetProfile(ctx, userID)
	}
	return s.GetProfile(ctx, userID)
}

// DeleteUser removes the user without a confirmation code. Used by admins.
func (s *UserService) DeleteUser(ctx context.Context, userID int) error {
	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return ErrUserNotFound
		}
		return err
	}
	s.ForgetProfile(ctx, userID)
	logger.Log.WithField("user_id", userID).Info("User deleted by admin")
	return nil
}

// UpdatePassword changes the password after checking the current one and notifies the user.
func (s *UserService) UpdatePassword(ctx context.Context, userID int, req model.UpdatePasswordRequest) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return ErrUserNotFound
		}
		return err
	}
	if !s.auth.CheckPasswordHash(req.CurrentPassword, user.Password) {
		return ErrWrongPassword
	}
	if err := s.setPassword(ctx, user.ID, req.NewPassword); err != nil {
		return err
	}
	s.notifyPasswordChanged(user.Email)
	return nil
}

func (s *UserService) setPassword(ctx context.Context, userID int, password string) error {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.ForgetProfile(ctx, userID)
	return nil
}

// ForgetProfile drops the cached profile of the user.
func (s *UserService) ForgetProfile(ctx context.Context, userID int) {
	cacheDel(ctx, s.cache, profileCacheKey(userID))
}

// notifyPasswordChanged is best effort; the password is already changed.
func (s *UserService) notifyPasswordChanged(email string) {
	err := s.email.SendEmail(email, "Your password was changed", TemplatePasswordChanged, map[string]any{
		"Email": email,
		"Date":  s.clock.Now().UTC().Format(time.RFC1123),
	})
	if err != nil {
		logger.Log.WithError(err).WithField("email", email).Warn("Failed to send password changed notification")
	}
}
