package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/quizmentor/auth-service/config"
	"github.com/quizmentor/auth-service/db"
	"github.com/quizmentor/auth-service/internal/audit"
	"github.com/quizmentor/auth-service/internal/auth/csrf"
	"github.com/quizmentor/auth-service/internal/auth/handler"
	"github.com/quizmentor/auth-service/internal/auth/lockout"
	"github.com/quizmentor/auth-service/internal/auth/password"
	"github.com/quizmentor/auth-service/internal/auth/ratelimit"
	repo "github.com/quizmentor/auth-service/internal/auth/repository/postgres"
	"github.com/quizmentor/auth-service/internal/auth/service"
	"github.com/quizmentor/auth-service/internal/logging"
	"github.com/quizmentor/auth-service/internal/metrics"
	"github.com/quizmentor/auth-service/pkg/constant"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Env, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	var userRepo *repo.Repository
	if cfg.BcryptCost > 0 {
		userRepo = repo.NewRepositoryWithCost(pool, cfg.BcryptCost)
	} else {
		userRepo = repo.NewRepository(pool)
	}

	m := metrics.New(nil)

	dispatcher := audit.NewDispatcher(audit.NewLogSink(logger), 256)
	defer dispatcher.Close()

	loginLimits := ratelimit.Config{
		MaxAttempts:   cfg.LoginRateMax,
		Window:        time.Duration(cfg.LoginRateWindowMin) * time.Minute,
		BlockDuration: time.Duration(cfg.LoginRateBlockMin) * time.Minute,
		SweepInterval: cfg.SweepInterval(),
	}
	apiLimits := ratelimit.Config{
		MaxAttempts:   cfg.APIRateMax,
		Window:        time.Duration(cfg.APIRateWindowMin) * time.Minute,
		BlockDuration: time.Duration(cfg.APIRateBlockMin) * time.Minute,
		SweepInterval: cfg.SweepInterval(),
	}

	var loginLimiter, apiLimiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis connection failed", zap.Error(err))
		}
		defer func() { _ = client.Close() }()

		loginLimiter = ratelimit.NewRedisLimiter(client, loginLimits)
		apiLimiter = ratelimit.NewRedisLimiter(client, apiLimits)
		logger.Info("rate limiting backed by redis", zap.String("addr", cfg.RedisAddr))
	} else {
		loginMem := ratelimit.NewMemoryLimiter(loginLimits)
		defer loginMem.Close()
		apiMem := ratelimit.NewMemoryLimiter(apiLimits)
		defer apiMem.Close()

		loginLimiter = loginMem
		apiLimiter = apiMem
		logger.Info("rate limiting in process memory")
	}

	csrfStore := csrf.NewStore(cfg.CSRFTTL(), cfg.SweepInterval())
	defer csrfStore.Close()

	tokenService := service.NewTokenService(
		cfg.TokenSecret,
		cfg.TokenIssuer,
		cfg.TokenAudience,
		cfg.AccessTokenExpiry(),
		cfg.RefreshTokenExpiry(),
	)

	authService := service.NewAuthService(service.AuthServiceDeps{
		Repo:      userRepo,
		Tokens:    tokenService,
		Sessions:  service.NewSessionService(userRepo, tokenService, logger.Named("session"), cfg.MaxSessionsPerUser),
		Guard:     lockout.NewGuard(userRepo, dispatcher, logger.Named("lockout"), cfg.LoginMaxAttempts, cfg.LockoutDuration()),
		Limiter:   loginLimiter,
		CSRF:      csrfStore,
		Passwords: password.NewValidator(),
		Events:    dispatcher,
		Metrics:   m,
		Logger:    logger.Named("auth"),
	})

	authHandler := handler.NewAuthHandler(authService, handler.CookieSettings{
		Secure:        cfg.CookieSecure,
		Domain:        cfg.CookieDomain,
		AccessMaxAge:  cfg.AccessTokenExpiry(),
		RefreshMaxAge: cfg.RefreshTokenExpiry(),
	}, logger.Named("http"))

	app := fiber.New()
	app.Use(handler.RequestMetrics(m))
	app.Use("/api", handler.Throttle(apiLimiter, constant.PurposeAPI))
	handler.RegisterRoutes(app, authHandler)

	metricsSrv := newMetricsServer(cfg.MetricsPort, m)
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener failed", zap.Error(err))
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	logger.Info("auth service started",
		zap.String("port", cfg.Port),
		zap.String("metrics_port", cfg.MetricsPort),
		zap.String("environment", cfg.Env),
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", zap.Error(err))
	}

	logger.Info("auth service stopped")
}

// newMetricsServer exposes the Prometheus registry and a liveness probe on a
// separate listener, keeping them off the public API port.
func newMetricsServer(port string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
