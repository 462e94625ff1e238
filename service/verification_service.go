// file: service/verification_service.go

package service

import (
	"context"
	"errors"
	"fmt"
	"merchant-api/logger"
	"merchant-api/model"
	"merchant-api/repository"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmailAlreadyVerified = errors.New("this e-mail address is already verified")
	ErrEmailDelivery        = errors.New("the verification e-mail could not be sent")
)

// TokenManager is the token lifecycle as seen by the verification workflows.
type TokenManager interface {
	Issue(ctx context.Context, userID int, action model.TokenAction, payload any, lifetime Duration) (string, error)
	Verify(ctx context.Context, code string, action model.TokenAction) (*model.VerificationToken, error)
	VerifyForUser(ctx context.Context, userID int, code string, action model.TokenAction) (*model.VerificationToken, error)
	Invalidate(ctx context.Context, tokenID uuid.UUID) (bool, error)
}

// TokenLifetimes holds the lifetime of the code issued by each workflow.
type TokenLifetimes struct {
	EmailVerification Duration
	ResetPassword     Duration
	DeleteAccount     Duration
}

// DefaultTokenLifetimes are the lifetimes used when nothing is configured.
var DefaultTokenLifetimes = TokenLifetimes{
	EmailVerification: Minutes(10),
	ResetPassword:     Minutes(30),
	DeleteAccount:     Minutes(10),
}

// VerificationService drives the e-mail verification, password reset and account
// deletion workflows on top of the token lifecycle.
type VerificationService struct {
	tokens    TokenManager
	userRepo  repository.IUserRepository
	users     *UserService
	email     EmailService
	clock     Clock
	lifetimes TokenLifetimes
}

func NewVerificationService(tokens TokenManager, userRepo repository.IUserRepository, users *UserService, email EmailService, clock Clock, lifetimes TokenLifetimes) *VerificationService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &VerificationService{
		tokens:    tokens,
		userRepo:  userRepo,
		users:     users,
		email:     email,
		clock:     clock,
		lifetimes: lifetimes,
	}
}

// SendVerificationEmail issues an e-mail verification code and mails it to the user.
// Like ForgotPassword, an unknown address is answered with success.
func (s *VerificationService) SendVerificationEmail(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logger.Log.Info("Verification e-mail requested for unknown e-mail")
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return ErrEmailAlreadyVerified
	}
	return s.issueAndSend(ctx, user, model.ActionEmailVerification, s.lifetimes.EmailVerification,
		"E-mail verification", TemplateVerificationCode)
}

// VerifyEmail marks the owner of code as verified and burns the code.
func (s *VerificationService) VerifyEmail(ctx context.Context, code string) error {
	token, err := s.verify(ctx, code, model.ActionEmailVerification)
	if err != nil {
		return err
	}
	user, err := s.findByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	if !user.EmailVerified {
		if err := s.userRepo.MarkEmailVerified(ctx, user.ID); err != nil {
			return fmt.Errorf("verify email: %w", err)
		}
		s.users.ForgetProfile(ctx, user.ID)
	}
	_, err = s.tokens.Invalidate(ctx, token.ID)
	return err
}

// ForgotPassword mails a password reset code. Unknown addresses are answered with
// success so the endpoint does not reveal which accounts exist.
func (s *VerificationService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logger.Log.Info("Password reset requested for unknown e-mail")
			return nil
		}
		return err
	}
	return s.issueAndSend(ctx, user, model.ActionResetPassword, s.lifetimes.ResetPassword,
		"Password reset", TemplatePasswordReset)
}

// ResetPassword sets a new password for the owner of code. The code is burned only
// after the new password is stored.
func (s *VerificationService) ResetPassword(ctx context.Context, code, newPassword string) error {
	token, err := s.verify(ctx, code, model.ActionResetPassword)
	if err != nil {
		return err
	}
	user, err := s.findByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrTokenNotFound
		}
		return err
	}
	if err := s.users.setPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}
	if _, err := s.tokens.Invalidate(ctx, token.ID); err != nil {
		return err
	}
	s.users.notifyPasswordChanged(user.Email)
	return nil
}

// SendDeleteAccountEmail mails an account deletion code to the logged in user.
func (s *VerificationService) SendDeleteAccountEmail(ctx context.Context, userID int) error {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.issueAndSend(ctx, user, model.ActionDeleteAccount, s.lifetimes.DeleteAccount,
		"Account deletion code", TemplateDeleteAccountCode)
}

// DeleteAccount deletes the logged in user when code is that user's live deletion code.
func (s *VerificationService) DeleteAccount(ctx context.Context, userID int, code string) error {
	token, err := s.tokens.VerifyForUser(ctx, userID, code, model.ActionDeleteAccount)
	if err != nil {
		return err
	}
	if !token.IsLive(s.clock.Now()) {
		return ErrTokenNotFound
	}
	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete account: %w", err)
	}
	s.users.ForgetProfile(ctx, userID)
	// The row usually went with the user; a false result is expected here.
	_, err = s.tokens.Invalidate(ctx, token.ID)
	return err
}

// verify looks the code up and checks its expiry once more against the clock.
func (s *VerificationService) verify(ctx context.Context, code string, action model.TokenAction) (*model.VerificationToken, error) {
	token, err := s.tokens.Verify(ctx, code, action)
	if err != nil {
		return nil, err
	}
	if !token.IsLive(s.clock.Now()) {
		return nil, ErrTokenNotFound
	}
	return token, nil
}

func (s *VerificationService) issueAndSend(ctx context.Context, user *model.User, action model.TokenAction, lifetime Duration, subject, templateName string) error {
	log := logger.Log.WithFields(logrus.Fields{"user_id": user.ID, "action": action})

	payload := model.TokenPayload{UserID: user.ID, Email: user.Email, Action: action}
	code, err := s.tokens.Issue(ctx, user.ID, action, payload, lifetime)
	if err != nil {
		if errors.Is(err, ErrTokenConflict) {
			log.Info("Verification code already sent")
		}
		return err
	}

	err = s.email.SendEmail(user.Email, subject, templateName, map[string]any{
		"Email":     user.Email,
		"Code":      code,
		"ExpiresIn": lifetimeText(lifetime),
	})
	if err != nil {
		log.WithError(err).Warn("Delivery failed, retiring the issued code")
		s.retire(ctx, user.ID, action, code)
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}
	return nil
}

// retire burns a code that never reached its owner so a resend is not blocked.
func (s *VerificationService) retire(ctx context.Context, userID int, action model.TokenAction, code string) {
	token, err := s.tokens.VerifyForUser(ctx, userID, code, action)
	if err != nil {
		return
	}
	if _, err := s.tokens.Invalidate(ctx, token.ID); err != nil {
		logger.Log.WithError(err).WithField("token_id", token.ID).Error("Failed to retire undelivered token")
	}
}

func (s *VerificationService) findByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *VerificationService) findByID(ctx context.Context, id int) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func lifetimeText(d Duration) string {
	if d == (Duration{}) {
		d = DefaultDuration
	}
	unit := map[DurationUnit]string{Minute: "minute", Hour: "hour", Day: "day"}[d.Unit]
	if d.Magnitude != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", d.Magnitude, unit)
}
