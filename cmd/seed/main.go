// Command seed creates the administrator account configured by SEED_ADMIN_*.
package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/fastygo/taskr/domain"
	"github.com/fastygo/taskr/internal/config"
	"github.com/fastygo/taskr/internal/infrastructure/database"
	"github.com/fastygo/taskr/pkg/logger"
	credentialUC "github.com/fastygo/taskr/usecase/credential"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Service:     cfg.AppName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.Seed.AdminPassword == "" {
		zapLogger.Fatal("SEED_ADMIN_PASSWORD is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Context.ShutdownTimeout)
	defer cancel()

	store, err := database.Open(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("database connection failed", zap.Error(err))
	}
	defer store.Close()

	credentials := credentialUC.New(store.Users, credentialUC.Options{
		EmailCaseInsensitive: cfg.Auth.EmailCaseInsensitive,
	}, zapLogger)

	admin, err := credentials.RegisterAdmin(ctx, cfg.Seed.AdminName, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
	switch {
	case err == nil:
		zapLogger.Info("admin account created", zap.String("user_id", admin.ID), zap.String("name", admin.Name))
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		zapLogger.Info("admin account already exists", zap.String("name", cfg.Seed.AdminName))
	default:
		zapLogger.Fatal("seed failed", zap.Error(err))
	}
}
