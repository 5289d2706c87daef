package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskr/api/handler"
	"github.com/fastygo/taskr/internal/config"
	"github.com/fastygo/taskr/internal/infrastructure/audit"
	"github.com/fastygo/taskr/internal/infrastructure/database"
	"github.com/fastygo/taskr/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/taskr/internal/infrastructure/redis"
	"github.com/fastygo/taskr/internal/infrastructure/token"
	"github.com/fastygo/taskr/internal/middleware"
	"github.com/fastygo/taskr/internal/router"
	"github.com/fastygo/taskr/internal/services"
	"github.com/fastygo/taskr/internal/services/lifecycle"
	"github.com/fastygo/taskr/pkg/httpcontext"
	"github.com/fastygo/taskr/pkg/logger"
	redisRepo "github.com/fastygo/taskr/repository/redis"
	authUC "github.com/fastygo/taskr/usecase/auth"
	credentialUC "github.com/fastygo/taskr/usecase/credential"
	profileUC "github.com/fastygo/taskr/usecase/profile"
	taskUC "github.com/fastygo/taskr/usecase/task"
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

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	store, err := database.Open(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("database connection failed", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	manager.Register("database", func(ctx context.Context) error {
		store.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.RegisterCloser("redis", redisClient)

	auditStore, err := audit.Open(cfg.Audit.Path, "audit")
	if err != nil {
		zapLogger.Fatal("failed to open audit store", zap.Error(err))
	}
	manager.RegisterCloser("audit", auditStore)

	mon := monitor.New(monitor.Probes{
		Database: store.Ping,
		Redis: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
		Audit: auditStore.Size,
	}, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	janitor := services.NewAuditJanitor(auditStore, zapLogger, services.JanitorConfig{
		Interval:  cfg.Audit.CleanupInterval,
		Retention: cfg.Audit.Retention,
	})
	janitor.Start()
	manager.Register("audit_janitor", func(ctx context.Context) error {
		janitor.Stop(ctx)
		return nil
	})

	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Auth.SessionTTL)
	recorder := services.NewAuditRecorder(auditStore)

	credentialUseCase := credentialUC.New(store.Users, credentialUC.Options{
		EmailCaseInsensitive: cfg.Auth.EmailCaseInsensitive,
	}, zapLogger)
	authUseCase := authUC.New(credentialUseCase, sessionRepo, cfg.Auth.SessionTTL, zapLogger)
	profileUseCase := profileUC.New(store.Users, zapLogger)
	taskUseCase := taskUC.New(store.Tasks, recorder, zapLogger)

	tokens := token.NewService(cfg.JWT.Secret, cfg.JWT.Issuer)
	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(credentialUseCase, authUseCase, tokens, ctxAdapter, zapLogger, cfg.Auth.SessionTTL),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Audit:   apiHandler.NewAuditHandler(recorder, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	limiter := middleware.NewRateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst)
	if err := limiter.TrustProxies(cfg.Auth.TrustedProxies); err != nil {
		zapLogger.Fatal("invalid AUTH_TRUSTED_PROXIES", zap.Error(err))
	}
	r := router.New(handlers, router.Middleware{
		Auth:      middleware.SessionAuth(tokens, authUseCase, zapLogger),
		RateLimit: limiter.Wrap,
	})

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("driver", store.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
