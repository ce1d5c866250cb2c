package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	apiHttp "github.com/vibe-gaming/passwordless/internal/api/http"
	"github.com/vibe-gaming/passwordless/internal/cache"
	"github.com/vibe-gaming/passwordless/internal/config"
	"github.com/vibe-gaming/passwordless/internal/db"
	"github.com/vibe-gaming/passwordless/internal/queue/asynqserver"
	"github.com/vibe-gaming/passwordless/internal/queue/client"
	"github.com/vibe-gaming/passwordless/internal/repository"
	"github.com/vibe-gaming/passwordless/internal/server"
	"github.com/vibe-gaming/passwordless/internal/service"
	"github.com/vibe-gaming/passwordless/pkg/auth"
	"github.com/vibe-gaming/passwordless/pkg/email/smtp"
	"github.com/vibe-gaming/passwordless/pkg/hash"
	"github.com/vibe-gaming/passwordless/pkg/limiter"
	"github.com/vibe-gaming/passwordless/pkg/logger"
	"github.com/vibe-gaming/passwordless/pkg/otp"
)

func main() {
	// Optional local .env, real environment wins
	_ = godotenv.Load()

	// Init cfg from environment variables
	cfg := config.MustLoad()

	// Dependencies
	appLogger := logger.SetupLogger(cfg.Env)
	defer logger.Sync()

	appLogger.Info("starting passwordless api", zap.String("env", cfg.Env))
	appLogger.Debug("debug messages are enabled")

	// Init database
	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		appLogger.Error("mysql connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		err = dbMySQL.Close()
		if err != nil {
			appLogger.Error("error when closing", zap.Error(err))
		}
	}()
	appLogger.Info("mysql connection done")

	if cfg.Database.MigrateOnStart {
		if err := db.Migrate(dbMySQL); err != nil {
			appLogger.Error("mysql migrate problem", zap.Error(err))
			return
		}
		appLogger.Info("mysql migrations applied")
	}

	// Redis is optional for the api: without it the per-IP issuance throttle fails open
	redisClient, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		appLogger.Warn("redis unavailable, issuance ip throttle disabled", zap.Error(err))
		if redisClient != nil {
			_ = redisClient.Close()
		}
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	queueClient := asynq.NewClient(asynqserver.RedisOptions(cfg.Cache))
	defer queueClient.Close()
	restoreClient := client.SetClient(queueClient)
	defer restoreClient()

	emailSender, err := smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port)
	if err != nil {
		appLogger.Error("smtp sender creation failed", zap.Error(err))
		return
	}

	tokenManager, err := auth.NewManager(cfg.Auth.JWT)
	if err != nil {
		appLogger.Error("auth manager creation err", zap.Error(err))
		return
	}

	// Services, Repos & API Handlers
	repos := repository.NewRepositories(dbMySQL)
	services := service.NewServices(service.Deps{
		Config:        cfg,
		Repos:         repos,
		TokenManager:  tokenManager,
		OtpGenerator:  otp.NewCryptoGenerator(),
		TokenHasher:   hash.NewSHA256Hasher(cfg.Auth.TokenSalt),
		EmailSender:   emailSender,
		WelcomeMailer: client.WelcomeMailer{},
	})

	issueWindow := limiter.NewWindow(redisClient, "issue:ip:", cfg.Limiter.IssueIPWindow, cfg.Limiter.IssuePerIP)
	handlers := apiHttp.NewHandlers(services, issueWindow, cfg)

	// HTTP Server
	srv := server.NewServer(cfg.HttpServer, handlers.Init(cfg))
	go func() {
		if err := srv.Run(); !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("error occurred while running http server", zap.Error(err))
		}
	}()
	appLogger.Info("server started", zap.String("port", cfg.HttpServer.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	const timeout = 5 * time.Second

	ctx, shutdown := context.WithTimeout(context.Background(), timeout)
	defer shutdown()

	if err := srv.Stop(ctx); err != nil {
		appLogger.Error("failed to stop server", zap.Error(err))
	}

	appLogger.Info("app stopped")
}
