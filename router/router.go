package router

import (
	"merchant-api/handler"
	"merchant-api/model"
	"net/http"

	_ "merchant-api/docs"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter(userHandler *handler.UserHandler, adminHandler *handler.AdminHandler, verificationHandler *handler.VerificationHandler, uploadHandler *handler.UploadHandler, tokens handler.TokenParser) http.Handler {
	mux := http.NewServeMux()
	auth := handler.AuthMiddleware(tokens)
	documents := handler.RoleMiddleware(model.RoleMerchant, model.RoleAdmin)

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Public routes
	mux.Handle("POST /register", handler.ErrorHandlingMiddleware(userHandler.Register))
	mux.Handle("POST /login", handler.ErrorHandlingMiddleware(userHandler.Login))
	mux.Handle("POST /auth/send-verification", handler.ErrorHandlingMiddleware(verificationHandler.SendVerificationEmail))
	mux.Handle("POST /auth/verify-email", handler.ErrorHandlingMiddleware(verificationHandler.VerifyEmail))
	mux.Handle("POST /auth/forgot-password", handler.ErrorHandlingMiddleware(verificationHandler.ForgotPassword))
	mux.Handle("POST /auth/reset-password", handler.ErrorHandlingMiddleware(verificationHandler.ResetPassword))

	// Authenticated routes
	mux.Handle("GET /api/me", auth(handler.ErrorHandlingMiddleware(userHandler.Me)))
	mux.Handle("PUT /api/me", auth(handler.ErrorHandlingMiddleware(userHandler.UpdateProfile)))
	mux.Handle("POST /api/me/password", auth(handler.ErrorHandlingMiddleware(userHandler.UpdatePassword)))
	mux.Handle("POST /api/auth/send-delete-account", auth(handler.ErrorHandlingMiddleware(verificationHandler.SendDeleteAccountEmail)))
	mux.Handle("DELETE /api/auth/delete-account", auth(handler.ErrorHandlingMiddleware(verificationHandler.DeleteAccount)))
	mux.Handle("POST /api/uploads", auth(documents(handler.ErrorHandlingMiddleware(uploadHandler.Upload))))
	mux.Handle("DELETE /api/uploads/{key...}", auth(documents(handler.ErrorHandlingMiddleware(uploadHandler.DeleteUpload))))

	// Admin routes
	mux.Handle("GET /api/users", auth(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(adminHandler.ListUsers))))
	mux.Handle("GET /api/users/{id}", auth(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(adminHandler.GetUser))))
	mux.Handle("PUT /api/users/{id}", auth(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(adminHandler.UpdateUser))))
	mux.Handle("DELETE /api/users/{id}", auth(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(adminHandler.DeleteUser))))

	return handler.LoggingMiddleware(mux)
}
