package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vibe-gaming/passwordless/internal/config"
	"github.com/vibe-gaming/passwordless/internal/db"
	"github.com/vibe-gaming/passwordless/internal/queue/asynqserver"
	"github.com/vibe-gaming/passwordless/internal/repository"
	"github.com/vibe-gaming/passwordless/internal/service"
	"github.com/vibe-gaming/passwordless/internal/worker"
	"github.com/vibe-gaming/passwordless/pkg/auth"
	"github.com/vibe-gaming/passwordless/pkg/email/smtp"
	"github.com/vibe-gaming/passwordless/pkg/hash"
	"github.com/vibe-gaming/passwordless/pkg/logger"
	"github.com/vibe-gaming/passwordless/pkg/otp"
)

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()

	appLogger := logger.SetupLogger(cfg.Env)
	defer logger.Sync()

	appLogger.Info("starting passwordless worker", zap.String("env", cfg.Env))

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

	// WelcomeMailer stays unset: the worker sends inline
	services := service.NewServices(service.Deps{
		Config:       cfg,
		Repos:        repository.NewRepositories(dbMySQL),
		TokenManager: tokenManager,
		OtpGenerator: otp.NewCryptoGenerator(),
		TokenHasher:  hash.NewSHA256Hasher(cfg.Auth.TokenSalt),
		EmailSender:  emailSender,
	})

	workers := worker.NewWorkers(worker.Deps{Services: services})

	srv, mux := asynqserver.New(cfg.Cache, cfg.Worker, workers)
	if err := srv.Start(mux); err != nil {
		appLogger.Error("asynq server start failed", zap.Error(err))
		return
	}

	scheduler, err := asynqserver.NewScheduler(cfg.Cache, cfg.Worker)
	if err != nil {
		appLogger.Error("asynq scheduler creation failed", zap.Error(err))
		srv.Shutdown()
		return
	}
	if err := scheduler.Start(); err != nil {
		appLogger.Error("asynq scheduler start failed", zap.Error(err))
		srv.Shutdown()
		return
	}
	appLogger.Info("worker started", zap.String("sweep_cron", cfg.Worker.SweepCron))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	scheduler.Shutdown()
	srv.Shutdown()

	appLogger.Info("worker stopped")
}
