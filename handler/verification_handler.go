package handler

import (
	"context"
	"errors"
	"merchant-api/common"
	"merchant-api/model"
	"merchant-api/service"
	"net/http"
)

// VerificationManager runs the code based workflows; *service.VerificationService implements it.
type VerificationManager interface {
	SendVerificationEmail(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, code string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, code, newPassword string) error
	SendDeleteAccountEmail(ctx context.Context, userID int) error
	DeleteAccount(ctx context.Context, userID int, code string) error
}

// VerificationHandler exposes the e-mail verification, password reset and account deletion flows.
type VerificationHandler struct {
	service VerificationManager
}

func NewVerificationHandler(service VerificationManager) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// SendVerificationEmail godoc
// @Summary      Send an e-mail verification code
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        body body model.EmailRequest true "Address to verify"
// @Success      200  {object}  model.MessageResponse
// @Failure      400  {object}  common.AppError "Invalid request body"
// @Failure      409  {object}  common.AppError "E-mail already verified"
// @Failure      429  {object}  common.AppError "A code was already sent; see Retry-After"
// @Failure      502  {object}  common.AppError "The e-mail could not be delivered"
// @Router       /auth/send-verification [post]
func (h *VerificationHandler) SendVerificationEmail(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.EmailRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}
	if err := h.service.SendVerificationEmail(r.Context(), req.Email); err != nil {
		return verificationError(err, "Could not send verification e-mail")
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "If the address is registered, a verification code was sent"})
	return nil
}

// VerifyEmail godoc
// @Summary      Verify an e-mail address
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        body body model.CodeRequest true "Six digit code"
// @Success      200  {object}  model.MessageResponse
// @Failure      400  {object}  common.AppError "Invalid or expired code"
// @Router       /auth/verify-email [post]
func (h *VerificationHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CodeRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}
	if err := h.service.VerifyEmail(r.Context(), req.Code); err != nil {
		return verificationError(err, "Could not verify e-mail")
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "E-mail verified"})
	return nil
}

// ForgotPassword godoc
// @Summary      Request a password reset code
// @Description  Always answers success for a well formed address, known or not.
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        body body model.EmailRequest true "Account e-mail"
// @Success      200  {object}  model.MessageResponse
// @Failure      400  {object}  common.AppError "Invalid request body"
// @Failure      429  {object}  common.AppError "A code was already sent; see Retry-After"
// @Router       /auth/forgot-password [post]
func (h *VerificationHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.EmailRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}
	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		return verificationError(err, "Could not start password reset")
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "If the address is registered, a reset code was sent"})
	return nil
}

// ResetPassword godoc
// @Summary      Reset the password with a code
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        body body model.ResetPasswordRequest true "Code and new password"
// @Success      200  {object}  model.MessageResponse
// @Failure      400  {object}  common.AppError "Invalid or expired code"
// @Router       /auth/reset-password [post]
func (h *VerificationHandler) ResetPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ResetPasswordRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}
	if err := h.service.ResetPassword(r.Context(), req.Code, req.NewPassword); err != nil {
		return verificationError(err, "Could not reset password")
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Password has been reset"})
	return nil
}

// SendDeleteAccountEmail godoc
// @Summary      Send an account deletion code
// @Tags         verification
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.MessageResponse
// @Failure      401  {object}  common.AppError "Unauthorized: Invalid or missing token"
// @Failure      429  {object}  common.AppError "A code was already sent; see Retry-After"
// @Router       /api/auth/send-delete-account [post]
func (h *VerificationHandler) SendDeleteAccountEmail(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	if err := h.service.SendDeleteAccountEmail(r.Context(), userID); err != nil {
		return verificationError(err, "Could not send account deletion code")
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Account deletion code sent"})
	return nil
}

// DeleteAccount godoc
// @Summary      Delete the account with a code
// @Tags         verification
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body model.CodeRequest true "Six digit code"
// @Success      200  {object}  model.MessageResponse
// @Failure      400  {object}  common.AppError "Invalid or expired code"
// @Failure      401  {object}  common.AppError "Unauthorized: Invalid or missing token"
// @Router       /api/auth/delete-account [delete]
func (h *VerificationHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CodeRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	if err := h.service.DeleteAccount(r.Context(), userID, req.Code); err != nil {
		return verificationError(err, "Could not delete account")
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Account deleted"})
	return nil
}

func verificationError(err error, fallback string) *common.AppError {
	var conflict *service.ConflictError
	switch {
	case errors.As(err, &conflict):
		return common.NewAppError(http.StatusTooManyRequests, conflict.Error(), nil).WithRetryAfter(conflict.Remaining)
	case errors.Is(err, service.ErrTokenNotFound):
		return common.NewAppError(http.StatusBadRequest, "Invalid or expired code", nil)
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewAppError(http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrEmailAlreadyVerified):
		return common.NewAppError(http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrEmailDelivery):
		return common.NewAppError(http.StatusBadGateway, service.ErrEmailDelivery.Error(), err)
	default:
		return common.NewAppError(http.StatusInternalServerError, fallback, err)
	}
}
