// file: service/token_service.go

package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"merchant-api/logger"
	"merchant-api/model"
	"merchant-api/repository"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrTokenConflict matches every *ConflictError.
	ErrTokenConflict = errors.New("a verification code was already sent")
	// ErrTokenNotFound covers unknown, used and expired codes alike.
	ErrTokenNotFound = errors.New("invalid or expired verification code")
	// ErrStorage matches every *StorageError.
	ErrStorage = errors.New("token storage failure")
	// ErrInvalidAction is returned for an action outside the known set.
	ErrInvalidAction = errors.New("invalid token action")
)

// ConflictError reports that a live token already exists for the (user, action) pair.
type ConflictError struct {
	Remaining time.Duration
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s, try again in %s", ErrTokenConflict.Error(), e.Remaining.Round(time.Second))
}

func (e *ConflictError) Is(target error) bool { return target == ErrTokenConflict }

// StorageError wraps a failure of the token store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// TokenService manages the lifecycle of verification codes: issue, verify, invalidate and purge.
// It holds no locks; the store is the only shared state.
type TokenService struct {
	repo     repository.ITokenRepository
	clock    Clock
	generate CodeGenerator
}

// NewTokenService creates a TokenService. A nil clock or generator falls back to
// the wall clock and GenerateCode.
func NewTokenService(repo repository.ITokenRepository, clock Clock, generate CodeGenerator) *TokenService {
	if clock == nil {
		clock = SystemClock{}
	}
	if generate == nil {
		generate = GenerateCode
	}
	return &TokenService{repo: repo, clock: clock, generate: generate}
}

// Issue creates a new code for (userID, action) and returns it in plain text. It is
// the only place the plain code is handed out. If a live token already exists a
// *ConflictError with its remaining validity is returned instead.
func (s *TokenService) Issue(ctx context.Context, userID int, action model.TokenAction, payload any, lifetime Duration) (string, error) {
	if !action.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	now := s.clock.Now()
	expiresAt, err := ExpiresAt(lifetime, now)
	if err != nil {
		return "", err
	}
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode token payload: %w", err)
	}

	log := logger.Log.WithFields(logrus.Fields{"user_id": userID, "action": action})

	existing, err := s.repo.FindLiveByUserAndAction(ctx, userID, action)
	switch {
	case err == nil:
		if existing.IsLive(now) {
			log.Info("Live verification token exists, refusing to issue another")
			return "", &ConflictError{Remaining: existing.ExpiresAt.Sub(now)}
		}
		// The store saw it live, our clock did not: retire it like any stale token.
		if _, err := s.repo.Invalidate(ctx, existing.ID); err != nil {
			return "", &StorageError{Op: "invalidate stale token", Err: err}
		}
	case errors.Is(err, repository.ErrNoRecord):
	default:
		return "", &StorageError{Op: "find live token", Err: err}
	}

	// Rows still flagged valid after their expiry would otherwise block the insert.
	if n, err := s.repo.InvalidateExpired(ctx, userID, action); err != nil {
		return "", &StorageError{Op: "invalidate expired tokens", Err: err}
	} else if n > 0 {
		log.WithField("count", n).Info("Invalidated expired verification tokens before reissue")
	}

	token := &model.VerificationToken{
		ID:        uuid.New(),
		Code:      s.generate(),
		UserID:    userID,
		Action:    action,
		Payload:   rawPayload,
		ExpiresAt: expiresAt,
		IsValid:   true,
		CreatedAt: now,
	}
	if err := s.repo.Insert(ctx, token); err != nil {
		if errors.Is(err, repository.ErrTokenExists) {
			return "", s.conflictFromStore(ctx, userID, action)
		}
		return "", &StorageError{Op: "insert token", Err: err}
	}

	log.WithField("expires_at", expiresAt).Info("Verification token issued")
	return token.Code, nil
}

// conflictFromStore builds the Conflict answer after a concurrent issuance won the insert.
func (s *TokenService) conflictFromStore(ctx context.Context, userID int, action model.TokenAction) error {
	winner, err := s.repo.FindLiveByUserAndAction(ctx, userID, action)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return &ConflictError{}
		}
		return &StorageError{Op: "find live token", Err: err}
	}
	remaining := winner.ExpiresAt.Sub(s.clock.Now())
	if remaining < 0 {
		remaining = 0
	}
	return &ConflictError{Remaining: remaining}
}

// Verify returns the live token matching code for action. The token stays live; the
// caller invalidates it once its own side effect has succeeded.
func (s *TokenService) Verify(ctx context.Context, code string, action model.TokenAction) (*model.VerificationToken, error) {
	if !action.Valid() {
		return nil, ErrTokenNotFound
	}
	token, err := s.repo.FindLiveByCodeAndAction(ctx, action, code)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return nil, ErrTokenNotFound
		}
		return nil, &StorageError{Op: "find token by code", Err: err}
	}
	if !token.IsLive(s.clock.Now()) {
		return nil, ErrTokenNotFound
	}
	return token, nil
}

// VerifyForUser is Verify for flows that already know who the code was sent to. Only
// the user's own live token is considered, so codes held by other users never interfere.
func (s *TokenService) VerifyForUser(ctx context.Context, userID int, code string, action model.TokenAction) (*model.VerificationToken, error) {
	if !action.Valid() {
		return nil, ErrTokenNotFound
	}
	token, err := s.repo.FindLiveByUserAndAction(ctx, userID, action)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return nil, ErrTokenNotFound
		}
		return nil, &StorageError{Op: "find live token", Err: err}
	}
	if subtle.ConstantTimeCompare([]byte(token.Code), []byte(code)) != 1 || !token.IsLive(s.clock.Now()) {
		return nil, ErrTokenNotFound
	}
	return token, nil
}

// Invalidate retires the token. It reports false when the token was already gone.
func (s *TokenService) Invalidate(ctx context.Context, tokenID uuid.UUID) (bool, error) {
	ok, err := s.repo.Invalidate(ctx, tokenID)
	if err != nil {
		return false, &StorageError{Op: "invalidate token", Err: err}
	}
	if !ok {
		logger.Log.WithField("token_id", tokenID).Info("Verification token was already invalidated")
	}
	return ok, nil
}

// PurgeExpired deletes expired and invalid tokens and returns how many went away.
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.PurgeExpired(ctx)
	if err != nil {
		return 0, &StorageError{Op: "purge expired tokens", Err: err}
	}
	return n, nil
}
