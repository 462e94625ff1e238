package handler

import (
	"context"
	"merchant-api/common"
	"merchant-api/logger"
	"merchant-api/model"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

// UserAdministrator is the admin side of user management; *service.UserService implements it.
type UserAdministrator interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	GetProfile(ctx context.Context, userID int) (*model.User, error)
	UpdateUser(ctx context.Context, userID int, req model.UpdateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, userID int) error
}

// AdminHandler serves the /api/users endpoints. Routes are expected behind AdminMiddleware.
type AdminHandler struct {
	service UserAdministrator
}

func NewAdminHandler(service UserAdministrator) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListUsers godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.User
// @Failure      401  {object}  common.AppError "Unauthorized: Invalid or missing token"
// @Failure      403  {object}  common.AppError "Admin privileges required"
// @Failure      500  {object}  common.AppError
// @Router       /api/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) *common.AppError {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve users", err)
	}
	writeJSON(w, http.StatusOK, users)
	return nil
}

// GetUser godoc
// @Summary      Get a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  model.User
// @Failure      400  {object}  common.AppError "Invalid user ID"
// @Failure      403  {object}  common.AppError "Admin privileges required"
// @Failure      404  {object}  common.AppError "User not found"
// @Router       /api/users/{id} [get]
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := userIDParam(r)
	if appErr != nil {
		return appErr
	}
	user, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		return userError(err, "Could not retrieve user")
	}
	writeJSON(w, http.StatusOK, user)
	return nil
}

// UpdateUser godoc
// @Summary      Update a user
// @Description  Changes the role and/or company name of a user. Admins cannot change their own role here.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                      true  "User ID"
// @Param        user  body      model.UpdateUserRequest  true  "Fields to change"
// @Success      200  {object}  model.User
// @Failure      400  {object}  common.AppError "Invalid request body or user ID"
// @Failure      403  {object}  common.AppError "Admin privileges required"
// @Failure      404  {object}  common.AppError "User not found"
// @Router       /api/users/{id} [put]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := userIDParam(r)
	if appErr != nil {
		return appErr
	}
	var req model.UpdateUserRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}
	if req.Role != "" && isCaller(r, id) {
		return common.NewAppError(http.StatusForbidden, "Admins cannot change their own role", nil)
	}

	user, err := h.service.UpdateUser(r.Context(), id, req)
	if err != nil {
		return userError(err, "Could not update user")
	}

	logger.Log.WithFields(logrus.Fields{"user_id": id, "role": user.Role}).Info("User updated by admin")
	writeJSON(w, http.StatusOK, user)
	return nil
}

// DeleteUser godoc
// @Summary      Delete a user
// @Description  Deletes a user without a confirmation code. Admins delete their own account through the code flow.
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  int  true  "User ID"
// @Success      204
// @Failure      400  {object}  common.AppError "Invalid user ID"
// @Failure      403  {object}  common.AppError "Admin privileges required"
// @Failure      404  {object}  common.AppError "User not found"
// @Router       /api/users/{id} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := userIDParam(r)
	if appErr != nil {
		return appErr
	}
	if isCaller(r, id) {
		return common.NewAppError(http.StatusForbidden, "Use the account deletion flow to delete your own account", nil)
	}
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		return userError(err, "Could not delete user")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func userIDParam(r *http.Request) (int, *common.AppError) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid user ID", nil)
	}
	return id, nil
}

func isCaller(r *http.Request, id int) bool {
	callerID, ok := r.Context().Value(UserIDKey).(int)
	return ok && callerID == id
}
