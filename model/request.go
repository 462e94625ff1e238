// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new merchant account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	CompanyName string `json:"company_name" validate:"required,min=2,max=100"`
	Role        Role   `json:"role" validate:"omitempty,oneof=merchant customer"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// EmailRequest is used by the flows that start from an e-mail address.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CodeRequest carries a verification code typed in by the user.
type CodeRequest struct {
	Code string `json:"code" validate:"required,numeric,len=6"`
}

// ResetPasswordRequest defines the payload for finishing a password reset.
type ResetPasswordRequest struct {
	Code        string `json:"code" validate:"required,numeric,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UpdatePasswordRequest defines the payload for changing the password of the logged in user.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// UpdateProfileRequest defines the payload for changing the company profile of the logged in user.
type UpdateProfileRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=2,max=100"`
}

// UpdateUserRequest defines the payload an admin sends to change another user.
// Fields left empty are not touched.
type UpdateUserRequest struct {
	Role        Role   `json:"role" validate:"omitempty,oneof=admin merchant customer"`
	CompanyName string `json:"company_name" validate:"omitempty,min=2,max=100"`
}

// MessageResponse is the generic body of the verification endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse holds the access token returned after a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// UploadResponse describes a stored object.
type UploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
