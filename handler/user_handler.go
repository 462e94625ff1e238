package handler

import (
	"context"
	"encoding/json"
	"errors"
	"merchant-api/common"
	"merchant-api/logger"
	"merchant-api/model"
	"merchant-api/service"
	"net/http"

	"github.com/sirupsen/logrus"
)

// UserManager is the account side of the API; *service.UserService implements it.
type UserManager interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	GetProfile(ctx context.Context, userID int) (*model.User, error)
	UpdatePassword(ctx context.Context, userID int, req model.UpdatePasswordRequest) error
	UpdateProfile(ctx context.Context, userID int, req model.UpdateProfileRequest) (*model.User, error)
}

type UserHandler struct {
	service UserManager
}

func NewUserHandler(service UserManager) *UserHandler {
	return &UserHandler{service: service}
}

// Register godoc
// @Summary      Register a new merchant
// @Description  Creates a user with an unverified e-mail address. The default role is merchant.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user body model.RegisterRequest true "Registration details"
// @Success      201  {object}  model.User
// @Failure      400  {object}  common.AppError "Invalid request body"
// @Failure      409  {object}  common.AppError "E-mail already in use"
// @Failure      500  {object}  common.AppError
// @Router       /register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return common.NewAppError(http.StatusConflict, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not create user", err)
	}

	logger.Log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User registered")
	writeJSON(w, http.StatusCreated, user)
	return nil
}

// Login godoc
// @Summary      Log in
// @Description  Checks the credentials and returns a signed access token.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        credentials body model.LoginRequest true "Login credentials"
// @Success      200  {object}  model.LoginResponse
// @Failure      400  {object}  common.AppError "Invalid request body"
// @Failure      401  {object}  common.AppError "Invalid e-mail or password"
// @Failure      500  {object}  common.AppError
// @Router       /login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return common.NewAppError(http.StatusUnauthorized, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not log in", err)
	}

	writeJSON(w, http.StatusOK, resp)
	return nil
}

// Me godoc
// @Summary      Current user
// @Description  Returns the profile of the authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.User
// @Failure      401  {object}  common.AppError "Unauthorized: Invalid or missing token"
// @Failure      404  {object}  common.AppError "User not found"
// @Failure      500  {object}  common.AppError
// @Router       /api/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve user", err)
	}

	writeJSON(w, http.StatusOK, user)
	return nil
}

// UpdateProfile godoc
// @Summary      Update company profile
// @Description  Changes the company name of the authenticated user.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile body model.UpdateProfileRequest true "New company profile"
// @Success      200  {object}  model.User
// @Failure      400  {object}  common.AppError "Invalid request body"
// @Failure      401  {object}  common.AppError "Unauthorized: Invalid or missing token"
// @Failure      404  {object}  common.AppError "User not found"
// @Failure      500  {object}  common.AppError
// @Router       /api/me [put]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.UpdateProfileRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		return userError(err, "Could not update profile")
	}

	writeJSON(w, http.StatusOK, user)
	return nil
}

// UpdatePassword godoc
// @Summary      Change password
// @Description  Changes the password of the authenticated user and sends a notification e-mail.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        passwords body model.UpdatePasswordRequest true "Current and new password"
// @Success      200  {object}  model.MessageResponse
// @Failure      400  {object}  common.AppError "Invalid request body or wrong current password"
// @Failure      401  {object}  common.AppError "Unauthorized: Invalid or missing token"
// @Failure      404  {object}  common.AppError "User not found"
// @Failure      500  {object}  common.AppError
// @Router       /api/me/password [post]
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.UpdatePasswordRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	if err := h.service.UpdatePassword(r.Context(), userID, req); err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrUserNotFound):
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not update password", err)
		}
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Password updated successfully"})
	return nil
}

// userError maps the account errors shared by the profile and admin endpoints.
func userError(err error, fallback string) *common.AppError {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewAppError(http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidRole), errors.Is(err, service.ErrNothingToUpdate):
		return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
	default:
		return common.NewAppError(http.StatusInternalServerError, fallback, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
