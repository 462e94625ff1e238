package handler

import (
	"encoding/json"
	"errors"
	"merchant-api/common"
	"merchant-api/model"
	"merchant-api/service"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decodeAppError(t *testing.T, body []byte) common.AppError {
	var appErr common.AppError
	require.NoError(t, json.Unmarshal(body, &appErr))
	return appErr
}

func TestVerificationHandler_SendVerificationEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(mockVerificationManager)
		svc.On("SendVerificationEmail", mock.Anything, "shop@example.com").Return(nil).Once()
		h := NewVerificationHandler(svc)

		rr := serve(h.SendVerificationEmail, jsonRequest("POST", "/auth/send-verification", `{"email":"shop@example.com"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"If the address is registered, a verification code was sent"}`, rr.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("code already sent", func(t *testing.T) {
		svc := new(mockVerificationManager)
		svc.On("SendVerificationEmail", mock.Anything, "shop@example.com").
			Return(&service.ConflictError{Remaining: 4*time.Minute + 30*time.Second}).Once()
		h := NewVerificationHandler(svc)

		rr := serve(h.SendVerificationEmail, jsonRequest("POST", "/auth/send-verification", `{"email":"shop@example.com"}`))

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "270", rr.Header().Get("Retry-After"))
		appErr := decodeAppError(t, rr.Body.Bytes())
		assert.Equal(t, 270, appErr.RetryAfter)
	})

	t.Run("unknown address gets the same answer", func(t *testing.T) {
		svc := new(mockVerificationManager)
		svc.On("SendVerificationEmail", mock.Anything, "ghost@example.com").Return(nil).Once()

		rr := serve(NewVerificationHandler(svc).SendVerificationEmail,
			jsonRequest("POST", "/auth/send-verification", `{"email":"ghost@example.com"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"If the address is registered, a verification code was sent"}`, rr.Body.String())
	})

	t.Run("already verified", func(t *testing.T) {
		svc := new(mockVerificationManager)
		svc.On("SendVerificationEmail", mock.Anything, "shop@example.com").Return(service.ErrEmailAlreadyVerified).Once()

		rr := serve(NewVerificationHandler(svc).SendVerificationEmail,
			jsonRequest("POST", "/auth/send-verification", `{"email":"shop@example.com"}`))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("delivery failure", func(t *testing.T) {
		svc := new(mockVerificationManager)
		svc.On("SendVerificationEmail", mock.Anything, "shop@example.com").
			Return(errors.Join(service.ErrEmailDelivery, errors.New("smtp down"))).Once()

		rr := serve(NewVerificationHandler(svc).SendVerificationEmail,
			jsonRequest("POST", "/auth/send-verification", `{"email":"shop@example.com"}`))

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		svc := new(mockVerificationManager)

		rr := serve(NewVerificationHandler(svc).SendVerificationEmail,
			jsonRequest("POST", "/auth/send-verification", `{"email":"not-an-email"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "SendVerificationEmail", mock.Anything, mock.Anything)
	})
}

func TestVerificationHandler_VerifyEmail(t *testing.T) {
	t.Run("invalid or expired code", func(t *testing.T) {
		svc := new(mockVerificationManager)
		svc.On("VerifyEmail", mock.Anything, "123456").Return(service.ErrTokenNotFound).Once()

		rr := serve(NewVerificationHandler(svc).VerifyEmail, jsonRequest("POST", "/auth/verify-email", `{"code":"123456"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid or expired code", decodeAppError(t, rr.Body.Bytes()).Message)
	})

	t.Run("malformed code", func(t *testing.T) {
		svc := new(mockVerificationManager)

		for _, body := range []string{`{"code":"12345"}`, `{"code":"12a456"}`, `{}`, `not json`} {
			rr := serve(NewVerificationHandler(svc).VerifyEmail, jsonRequest("POST", "/auth/verify-email", body))
			assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		}
		svc.AssertNotCalled(t, "VerifyEmail", mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := new(mockVerificationManager)
		svc.On("VerifyEmail", mock.Anything, "123456").
			Return(&service.StorageError{Op: "find token by code", Err: errors.New("timeout")}).Once()

		rr := serve(NewVerificationHandler(svc).VerifyEmail, jsonRequest("POST", "/auth/verify-email", `{"code":"123456"}`))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestVerificationHandler_PasswordReset(t *testing.T) {
	svc := new(mockVerificationManager)
	svc.On("ForgotPassword", mock.Anything, "ghost@example.com").Return(nil).Once()
	svc.On("ResetPassword", mock.Anything, "654321", "n3w-passw0rd").Return(nil).Once()
	h := NewVerificationHandler(svc)

	rr := serve(h.ForgotPassword, jsonRequest("POST", "/auth/forgot-password", `{"email":"ghost@example.com"}`))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(h.ResetPassword, jsonRequest("POST", "/auth/reset-password", `{"code":"654321","new_password":"n3w-passw0rd"}`))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(h.ResetPassword, jsonRequest("POST", "/auth/reset-password", `{"code":"654321","new_password":"short"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	svc.AssertExpectations(t)
}

func TestVerificationHandler_DeleteAccount(t *testing.T) {
	t.Run("requires an authenticated user", func(t *testing.T) {
		svc := new(mockVerificationManager)

		rr := serve(NewVerificationHandler(svc).DeleteAccount, jsonRequest("DELETE", "/api/auth/delete-account", `{"code":"123456"}`))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("success", func(t *testing.T) {
		svc := new(mockVerificationManager)
		svc.On("SendDeleteAccountEmail", mock.Anything, 5).Return(nil).Once()
		svc.On("DeleteAccount", mock.Anything, 5, "123456").Return(nil).Once()
		h := NewVerificationHandler(svc)

		rr := serve(h.SendDeleteAccountEmail, asUser(jsonRequest("POST", "/api/auth/send-delete-account", ""), 5, model.RoleMerchant))
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = serve(h.DeleteAccount, asUser(jsonRequest("DELETE", "/api/auth/delete-account", `{"code":"123456"}`), 5, model.RoleMerchant))
		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("user gone", func(t *testing.T) {
		svc := new(mockVerificationManager)
		svc.On("DeleteAccount", mock.Anything, 5, "123456").Return(service.ErrUserNotFound).Once()

		rr := serve(NewVerificationHandler(svc).DeleteAccount,
			asUser(jsonRequest("DELETE", "/api/auth/delete-account", `{"code":"123456"}`), 5, model.RoleMerchant))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
