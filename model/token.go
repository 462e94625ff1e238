// file: model/token.go

package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TokenAction scopes a verification code to the workflow it was issued for.
type TokenAction string

const (
	ActionResetPassword     TokenAction = "RESET_PASSWORD"
	ActionEmailVerification TokenAction = "EMAIL_VERIFICATION"
	ActionDeleteAccount     TokenAction = "DELETE_ACCOUNT"
)

// Valid reports whether a is one of the known actions.
func (a TokenAction) Valid() bool {
	switch a {
	case ActionResetPassword, ActionEmailVerification, ActionDeleteAccount:
		return true
	}
	return false
}

// VerificationToken is a short-lived numeric code bound to a (user, action) pair.
// The code is never exposed in JSON responses.
type VerificationToken struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"-"`
	UserID    int             `json:"user_id"`
	Action    TokenAction     `json:"action"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	ExpiresAt time.Time       `json:"expires_at"`
	IsValid   bool            `json:"is_valid"`
	CreatedAt time.Time       `json:"created_at"`
}

// IsLive reports whether the token can still be used at now. A token expiring
// exactly at now is already dead.
func (t *VerificationToken) IsLive(now time.Time) bool {
	return t.IsValid && t.ExpiresAt.After(now)
}

// TokenPayload is the auxiliary data every workflow captures at issuance.
type TokenPayload struct {
	UserID int         `json:"user_id"`
	Email  string      `json:"email"`
	Action TokenAction `json:"action"`
}
