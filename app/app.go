// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"merchant-api/config"
	"merchant-api/db"
	"merchant-api/handler"
	"merchant-api/logger"
	"merchant-api/repository"
	"merchant-api/router"
	"merchant-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// Services groups the layers built on top of the database.
type Services struct {
	Auth         *service.AuthService
	Tokens       *service.TokenService
	Users        *service.UserService
	Verification *service.VerificationService
}

// TestApp exposes the wired router and its dependencies to integration tests.
type TestApp struct {
	DB       *sql.DB
	Router   http.Handler
	Services Services
}

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.SetLevel(config.AppConfig.Log.Level)
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		logger.Log.Fatalf("Error running database migrations: %v", err)
	}

	var cache service.ICacheClient
	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.WithError(err).Warn("Redis unavailable, profile caching disabled")
	} else {
		defer redisClient.Close()
		cache = redisClient
	}

	mail := config.AppConfig.Mail
	emailService, err := service.NewSMTPEmailService(service.EmailSettings{
		Host:     mail.Host,
		Port:     mail.Port,
		Username: mail.Username,
		Password: mail.Password,
		Sender:   mail.Sender,
		AppName:  mail.AppName,
	})
	if err != nil {
		logger.Log.Fatalf("Error loading e-mail templates: %v", err)
	}

	lifetimes, err := tokenLifetimes()
	if err != nil {
		logger.Log.Fatalf("Invalid token lifetime configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var storage handler.FileStorage
	if storageService, err := connectStorage(ctx); err != nil {
		logger.Log.WithError(err).Warn("Object storage unavailable, uploads disabled")
	} else {
		storage = storageService
	}

	services := newServices(database, cache, emailService, lifetimes)
	r := newRouter(services, storage)

	sweeper := service.NewTokenSweeper(services.Tokens, config.AppConfig.Tokens.PurgeInterval)
	go sweeper.Run(ctx)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}

// NewTestApp wires the application against the given database and Redis client.
// Mail goes to email and uploads are disabled.
func NewTestApp(database *sql.DB, redisClient *redis.Client, email service.EmailService) *TestApp {
	var cache service.ICacheClient
	if redisClient != nil {
		cache = redisClient
	}
	services := newServices(database, cache, email, service.DefaultTokenLifetimes)
	return &TestApp{
		DB:       database,
		Router:   newRouter(services, nil),
		Services: services,
	}
}

func newServices(database *sql.DB, cache service.ICacheClient, email service.EmailService, lifetimes service.TokenLifetimes) Services {
	clock := service.SystemClock{}

	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database, clock.Now)

	authService := service.NewAuthService(config.AppConfig.JWT.SecretKey, config.AppConfig.JWT.TTL, config.AppConfig.Bcrypt.Cost)
	tokenService := service.NewTokenService(tokenRepo, clock, service.GenerateCode)
	userService := service.NewUserService(userRepo, authService, email, cache, clock)
	verificationService := service.NewVerificationService(tokenService, userRepo, userService, email, clock, lifetimes)

	return Services{
		Auth:         authService,
		Tokens:       tokenService,
		Users:        userService,
		Verification: verificationService,
	}
}

func newRouter(services Services, storage handler.FileStorage) http.Handler {
	userHandler := handler.NewUserHandler(services.Users)
	verificationHandler := handler.NewVerificationHandler(services.Verification)
	adminHandler := handler.NewAdminHandler(services.Users)
	uploadHandler := handler.NewUploadHandler(storage)
	return router.NewRouter(userHandler, adminHandler, verificationHandler, uploadHandler, services.Auth)
}

func connectStorage(ctx context.Context) (*service.StorageService, error) {
	cfg := config.AppConfig.Storage
	client, err := service.NewMinIOClient(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return service.NewStorageService(checkCtx, client, cfg.Bucket)
}

func tokenLifetimes() (service.TokenLifetimes, error) {
	cfg := config.AppConfig.Tokens
	lifetimes := service.DefaultTokenLifetimes
	for _, entry := range []struct {
		raw string
		dst *service.Duration
	}{
		{cfg.EmailVerification, &lifetimes.EmailVerification},
		{cfg.ResetPassword, &lifetimes.ResetPassword},
		{cfg.DeleteAccount, &lifetimes.DeleteAccount},
	} {
		if entry.raw == "" {
			continue
		}
		d, err := service.ParseDuration(entry.raw)
		if err != nil {
			return service.TokenLifetimes{}, err
		}
		*entry.dst = d
	}
	return lifetimes, nil
}
