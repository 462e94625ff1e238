// file: repository/token_repository.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"merchant-api/logger"
	"merchant-api/model"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for verification token storage.
// Every lookup applies the liveness filter (is_valid AND expires_at > now) at query time.
type ITokenRepository interface {
	Insert(ctx context.Context, token *model.VerificationToken) error
	FindLiveByUserAndAction(ctx context.Context, userID int, action model.TokenAction) (*model.VerificationToken, error)
	FindLiveByCodeAndAction(ctx context.Context, action model.TokenAction, code string) (*model.VerificationToken, error)
	InvalidateExpired(ctx context.Context, userID int, action model.TokenAction) (int64, error)
	Invalidate(ctx context.Context, tokenID uuid.UUID) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

// TokenRepository implements ITokenRepository on top of Postgres.
type TokenRepository struct {
	DB  *sql.DB
	Now func() time.Time
}

// NewTokenRepository creates a new TokenRepository. now is the clock used for every
// liveness comparison; nil means time.Now.
func NewTokenRepository(db *sql.DB, now func() time.Time) *TokenRepository {
	if now == nil {
		now = time.Now
	}
	return &TokenRepository{DB: db, Now: now}
}

const tokenColumns = `id, code, user_id, action, payload, expires_at, is_valid, created_at`

// Insert persists a new token. The id and created_at are assigned here when unset.
// A second valid row for the same (user, action) is rejected by the partial unique
// index and reported as ErrTokenExists.
func (r *TokenRepository) Insert(ctx context.Context, token *model.VerificationToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = r.Now()
	}
	payload := string(token.Payload)
	if payload == "" {
		payload = "{}"
	}

	log := logger.Log.WithFields(logrus.Fields{
		"token_id":   token.ID,
		"user_id":    token.UserID,
		"action":     token.Action,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new verification token")

	query := `INSERT INTO verification_tokens (` + tokenColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query, token.ID, token.Code, token.UserID, string(token.Action), payload, token.ExpiresAt, token.IsValid, token.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			log.Info("Verification token rejected by uniqueness constraint")
			return ErrTokenExists
		}
		log.WithError(err).Error("Failed to execute create verification token query")
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// FindLiveByUserAndAction returns the most recently created live token of the user for action.
func (r *TokenRepository) FindLiveByUserAndAction(ctx context.Context, userID int, action model.TokenAction) (*model.VerificationToken, error) {
	log := logger.Log.WithFields(logrus.Fields{"user_id": userID, "action": action})
	log.Info("Executing query to find live token by user and action")

	query := `SELECT ` + tokenColumns + ` FROM verification_tokens
		WHERE user_id = $1 AND action = $2 AND is_valid = TRUE AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1`
	token, err := scanToken(r.DB.QueryRowContext(ctx, query, userID, string(action), r.Now()))
	if err != nil {
		if !errors.Is(err, ErrNoRecord) {
			log.WithError(err).Error("Failed to execute find live token by user query")
		}
		return nil, err
	}
	return token, nil
}

// FindLiveByCodeAndAction looks a live token up by the code the user typed in.
// Ties are broken by the most recent created_at.
func (r *TokenRepository) FindLiveByCodeAndAction(ctx context.Context, action model.TokenAction, code string) (*model.VerificationToken, error) {
	// The code itself is never logged.
	log := logger.Log.WithField("action", action)
	log.Info("Executing query to find live token by code and action")

	query := `SELECT ` + tokenColumns + ` FROM verification_tokens
		WHERE action = $1 AND code = $2 AND is_valid = TRUE AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1`
	token, err := scanToken(r.DB.QueryRowContext(ctx, query, string(action), code, r.Now()))
	if err != nil {
		if !errors.Is(err, ErrNoRecord) {
			log.WithError(err).Error("Failed to execute find live token by code query")
		}
		return nil, err
	}
	return token, nil
}

// InvalidateExpired removes the rows of (user, action) that are still flagged valid
// but have passed their expiry. Live rows are never touched.
func (r *TokenRepository) InvalidateExpired(ctx context.Context, userID int, action model.TokenAction) (int64, error) {
	log := logger.Log.WithFields(logrus.Fields{"user_id": userID, "action": action})
	log.Info("Executing query to invalidate expired tokens of a user")

	query := `DELETE FROM verification_tokens WHERE user_id = $1 AND action = $2 AND expires_at <= $3`
	result, err := r.DB.ExecContext(ctx, query, userID, string(action), r.Now())
	if err != nil {
		log.WithError(err).Error("Failed to execute invalidate expired tokens query")
		return 0, fmt.Errorf("invalidate expired tokens: %w", err)
	}
	return result.RowsAffected()
}

// Invalidate deletes the token and reports whether exactly one row was removed.
// Invalidating a token that is already gone is not an error.
func (r *TokenRepository) Invalidate(ctx context.Context, tokenID uuid.UUID) (bool, error) {
	log := logger.Log.WithField("token_id", tokenID)
	log.Info("Executing query to invalidate verification token")

	result, err := r.DB.ExecContext(ctx, `DELETE FROM verification_tokens WHERE id = $1`, tokenID)
	if err != nil {
		log.WithError(err).Error("Failed to execute invalidate token query")
		return false, fmt.Errorf("invalidate token: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("invalidate token: %w", err)
	}
	return rows == 1, nil
}

// PurgeExpired deletes every row that is expired or already invalid.
func (r *TokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	log := logger.Log
	log.Info("Executing query to purge expired verification tokens")

	result, err := r.DB.ExecContext(ctx, `DELETE FROM verification_tokens WHERE expires_at <= $1 OR is_valid = FALSE`, r.Now())
	if err != nil {
		log.WithError(err).Error("Failed to execute purge expired tokens query")
		return 0, fmt.Errorf("purge expired tokens: %w", err)
	}
	return result.RowsAffected()
}

func scanToken(row *sql.Row) (*model.VerificationToken, error) {
	var (
		token   model.VerificationToken
		action  string
		payload []byte
	)
	err := row.Scan(&token.ID, &token.Code, &token.UserID, &action, &payload, &token.ExpiresAt, &token.IsValid, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("scan token: %w", err)
	}
	token.Action = model.TokenAction(action)
	token.Payload = payload
	return &token, nil
}
