package service

import (
	"context"
	"errors"
	"merchant-api/model"
	"merchant-api/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type verificationFixture struct {
	svc    *VerificationService
	tokens *TokenService
	repo   *memTokenRepo
	users  *mockUserRepo
	email  *fakeEmail
	clock  *fakeClock
}

func newVerificationFixture() *verificationFixture {
	clock := newFakeClock()
	repo := newMemTokenRepo(clock.Now)
	tokens := NewTokenService(repo, clock, sequentialCodes())
	users := new(mockUserRepo)
	email := &fakeEmail{}
	auth := NewAuthService("test-secret", time.Hour, bcrypt.MinCost)
	userService := NewUserService(users, auth, email, nil, clock)
	return &verificationFixture{
		svc:    NewVerificationService(tokens, users, userService, email, clock, DefaultTokenLifetimes),
		tokens: tokens,
		repo:   repo,
		users:  users,
		email:  email,
		clock:  clock,
	}
}

func merchant(verified bool) *model.User {
	return &model.User{ID: 1, Email: "shop@example.com", Role: string(model.RoleMerchant), CompanyName: "Shop", EmailVerified: verified}
}

func TestVerificationService_SendVerificationEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "shop@example.com").Return(merchant(false), nil)

		err := f.svc.SendVerificationEmail(context.Background(), " Shop@Example.com ")

		require.NoError(t, err)
		require.Equal(t, 1, f.email.count())
		sent := f.email.last()
		assert.Equal(t, "shop@example.com", sent.To)
		assert.Equal(t, TemplateVerificationCode, sent.Template)
		assert.Equal(t, "10 minutes", sent.Data["ExpiresIn"])

		token, err := f.tokens.Verify(context.Background(), f.email.lastCode(), model.ActionEmailVerification)
		require.NoError(t, err)
		assert.Equal(t, 1, token.UserID)
		f.users.AssertExpectations(t)
	})

	t.Run("resend while live is throttled", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "shop@example.com").Return(merchant(false), nil)
		require.NoError(t, f.svc.SendVerificationEmail(context.Background(), "shop@example.com"))

		f.clock.Advance(time.Minute)
		err := f.svc.SendVerificationEmail(context.Background(), "shop@example.com")

		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, 9*time.Minute, conflict.Remaining)
		assert.Equal(t, 1, f.email.count())
	})

	t.Run("already verified", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "shop@example.com").Return(merchant(true), nil)

		err := f.svc.SendVerificationEmail(context.Background(), "shop@example.com")

		assert.ErrorIs(t, err, ErrEmailAlreadyVerified)
		assert.Equal(t, 0, f.email.count())
		assert.Equal(t, 0, f.repo.count())
	})

	t.Run("unknown address answers success", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNoRecord)

		err := f.svc.SendVerificationEmail(context.Background(), "ghost@example.com")

		assert.NoError(t, err)
		assert.Equal(t, 0, f.email.count())
		assert.Equal(t, 0, f.repo.count())
	})

	t.Run("repository failure is reported", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "shop@example.com").Return(nil, errDB)

		err := f.svc.SendVerificationEmail(context.Background(), "shop@example.com")

		assert.ErrorIs(t, err, errDB)
	})

	t.Run("delivery failure retires the code", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "shop@example.com").Return(merchant(false), nil)
		f.email.err = errors.New("smtp: connection refused")

		err := f.svc.SendVerificationEmail(context.Background(), "shop@example.com")
		assert.ErrorIs(t, err, ErrEmailDelivery)
		assert.Equal(t, 0, f.repo.count())

		f.email.err = nil
		assert.NoError(t, f.svc.SendVerificationEmail(context.Background(), "shop@example.com"))
	})
}

func TestVerificationService_VerifyEmail(t *testing.T) {
	t.Run("marks the user verified and burns the code", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "shop@example.com").Return(merchant(false), nil)
		f.users.On("GetUserByID", mock.Anything, 1).Return(merchant(false), nil)
		f.users.On("MarkEmailVerified", mock.Anything, 1).Return(nil).Once()
		require.NoError(t, f.svc.SendVerificationEmail(context.Background(), "shop@example.com"))
		code := f.email.lastCode()

		require.NoError(t, f.svc.VerifyEmail(context.Background(), code))
		assert.Equal(t, 0, f.repo.count())

		err := f.svc.VerifyEmail(context.Background(), code)
		assert.ErrorIs(t, err, ErrTokenNotFound)
		f.users.AssertExpectations(t)
	})

	t.Run("already verified user still burns the code", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "shop@example.com").Return(merchant(false), nil)
		require.NoError(t, f.svc.SendVerificationEmail(context.Background(), "shop@example.com"))
		f.users.On("GetUserByID", mock.Anything, 1).Return(merchant(true), nil)

		require.NoError(t, f.svc.VerifyEmail(context.Background(), f.email.lastCode()))
		assert.Equal(t, 0, f.repo.count())
		f.users.AssertNotCalled(t, "MarkEmailVerified", mock.Anything, mock.Anything)
	})

	t.Run("expired code", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "shop@example.com").Return(merchant(false), nil)
		require.NoError(t, f.svc.SendVerificationEmail(context.Background(), "shop@example.com"))

		f.clock.Advance(10 * time.Minute)
		err := f.svc.VerifyEmail(context.Background(), f.email.lastCode())

		assert.ErrorIs(t, err, ErrTokenNotFound)
		f.users.AssertNotCalled(t, "MarkEmailVerified", mock.Anything, mock.Anything)
	})

	t.Run("code of another workflow", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "shop@example.com").Return(merchant(false), nil)
		require.NoError(t, f.svc.ForgotPassword(context.Background(), "shop@example.com"))

		err := f.svc.VerifyEmail(context.Background(), f.email.lastCode())

		assert.ErrorIs(t, err, ErrTokenNotFound)
		assert.Equal(t, 1, f.repo.count())
	})
}

func TestVerificationService_ForgotPassword(t *testing.T) {
	t.Run("unknown address answers success", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNoRecord)

		err := f.svc.ForgotPassword(context.Background(), "ghost@example.com")

		assert.NoError(t, err)
		assert.Equal(t, 0, f.email.count())
		assert.Equal(t, 0, f.repo.count())
	})

	t.Run("repository failure is reported", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "shop@example.com").Return(nil, errDB)

		err := f.svc.ForgotPassword(context.Background(), "shop@example.com")

		assert.ErrorIs(t, err, errDB)
	})

	t.Run("sends a reset code", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "shop@example.com").Return(merchant(true), nil)

		require.NoError(t, f.svc.ForgotPassword(context.Background(), "shop@example.com"))

		sent := f.email.last()
		assert.Equal(t, TemplatePasswordReset, sent.Template)
		assert.Equal(t, "30 minutes", sent.Data["ExpiresIn"])
	})
}

func TestVerificationService_ResetPassword(t *testing.T) {
	const newPassword = "n3w-passw0rd"
	matchesNewPassword := mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(newPassword)) == nil
	})

	t.Run("success", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "shop@example.com").Return(merchant(true), nil)
		f.users.On("GetUserByID", mock.Anything, 1).Return(merchant(true), nil)
		f.users.On("UpdatePassword", mock.Anything, 1, matchesNewPassword).Return(nil).Once()
		require.NoError(t, f.svc.ForgotPassword(context.Background(), "shop@example.com"))
		code := f.email.lastCode()

		require.NoError(t, f.svc.ResetPassword(context.Background(), code, newPassword))

		assert.Equal(t, 0, f.repo.count())
		assert.Equal(t, TemplatePasswordChanged, f.email.last().Template)
		assert.ErrorIs(t, f.svc.ResetPassword(context.Background(), code, newPassword), ErrTokenNotFound)
		f.users.AssertExpectations(t)
	})

	t.Run("failed update keeps the code usable", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByEmail", mock.Anything, "shop@example.com").Return(merchant(true), nil)
		f.users.On("GetUserByID", mock.Anything, 1).Return(merchant(true), nil)
		f.users.On("UpdatePassword", mock.Anything, 1, mock.Anything).Return(errDB).Once()
		require.NoError(t, f.svc.ForgotPassword(context.Background(), "shop@example.com"))
		code := f.email.lastCode()

		err := f.svc.ResetPassword(context.Background(), code, newPassword)

		assert.ErrorIs(t, err, errDB)
		_, err = f.tokens.Verify(context.Background(), code, model.ActionResetPassword)
		assert.NoError(t, err)
	})

	t.Run("unknown code", func(t *testing.T) {
		f := newVerificationFixture()

		err := f.svc.ResetPassword(context.Background(), "654321", newPassword)

		assert.ErrorIs(t, err, ErrTokenNotFound)
		f.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestVerificationService_DeleteAccount(t *testing.T) {
	t.Run("code issued to another user", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByID", mock.Anything, 1).Return(merchant(true), nil)
		require.NoError(t, f.svc.SendDeleteAccountEmail(context.Background(), 1))

		err := f.svc.DeleteAccount(context.Background(), 2, f.email.lastCode())

		assert.ErrorIs(t, err, ErrTokenNotFound)
		assert.Equal(t, 1, f.repo.count())
		f.users.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByID", mock.Anything, 1).Return(merchant(true), nil)
		f.users.On("DeleteUser", mock.Anything, 1).Return(nil).Once()
		require.NoError(t, f.svc.SendDeleteAccountEmail(context.Background(), 1))
		assert.Equal(t, TemplateDeleteAccountCode, f.email.last().Template)

		require.NoError(t, f.svc.DeleteAccount(context.Background(), 1, f.email.lastCode()))

		assert.Equal(t, 0, f.repo.count())
		f.users.AssertExpectations(t)
	})

	t.Run("same code held by another user does not get in the way", func(t *testing.T) {
		f := newVerificationFixture()
		f.tokens.generate = func() string { return "424242" }
		other := &model.User{ID: 2, Email: "other@example.com", Role: string(model.RoleMerchant), EmailVerified: true}
		f.users.On("GetUserByID", mock.Anything, 1).Return(merchant(true), nil)
		f.users.On("GetUserByID", mock.Anything, 2).Return(other, nil)
		f.users.On("DeleteUser", mock.Anything, 1).Return(nil).Once()

		require.NoError(t, f.svc.SendDeleteAccountEmail(context.Background(), 1))
		f.clock.Advance(time.Minute)
		require.NoError(t, f.svc.SendDeleteAccountEmail(context.Background(), 2))

		require.NoError(t, f.svc.DeleteAccount(context.Background(), 1, "424242"))

		assert.Equal(t, 1, f.repo.count(), "the other user's code stays live")
		_, err := f.tokens.VerifyForUser(context.Background(), 2, "424242", model.ActionDeleteAccount)
		assert.NoError(t, err)
		f.users.AssertExpectations(t)
	})

	t.Run("wrong code", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByID", mock.Anything, 1).Return(merchant(true), nil)
		require.NoError(t, f.svc.SendDeleteAccountEmail(context.Background(), 1))

		err := f.svc.DeleteAccount(context.Background(), 1, "999999")

		assert.ErrorIs(t, err, ErrTokenNotFound)
		f.users.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	})

	t.Run("second request is throttled", func(t *testing.T) {
		f := newVerificationFixture()
		f.users.On("GetUserByID", mock.Anything, 1).Return(merchant(true), nil)
		require.NoError(t, f.svc.SendDeleteAccountEmail(context.Background(), 1))

		err := f.svc.SendDeleteAccountEmail(context.Background(), 1)

		assert.ErrorIs(t, err, ErrTokenConflict)
	})
}
