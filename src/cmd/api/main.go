package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jackyeh168/saveforperks/src/internal/application/reward"
	"github.com/jackyeh168/saveforperks/src/internal/application/scan"
	"github.com/jackyeh168/saveforperks/src/internal/config"
	"github.com/jackyeh168/saveforperks/src/internal/domain/shared"
	"github.com/jackyeh168/saveforperks/src/internal/infrastructure/auth"
	"github.com/jackyeh168/saveforperks/src/internal/infrastructure/events"
	"github.com/jackyeh168/saveforperks/src/internal/infrastructure/idempotency"
	"github.com/jackyeh168/saveforperks/src/internal/infrastructure/metrics"
	"github.com/jackyeh168/saveforperks/src/internal/infrastructure/persistence"
	"github.com/jackyeh168/saveforperks/src/internal/infrastructure/redis"
	"github.com/jackyeh168/saveforperks/src/internal/interfaces/httpapi"
	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

func main() {
	cfg, err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.AppEnv, cfg.LogLevel); err != nil {
		logger.Error("failed to init logger", "error", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	// 資料庫
	if cfg.DBDriver == config.DriverPostgres && cfg.DBMigrate {
		if err := persistence.Migrate(cfg.PostgresDSN()); err != nil {
			return err
		}
	}
	db, err := persistence.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = persistence.Close(db) }()

	// Redis（可選）：事件串流與 Idempotency-Key
	var publisher shared.EventPublisher = events.NewLogPublisher(nil)
	var store httpapi.IdempotencyStore
	if cfg.RedisEnabled() {
		client, err := redis.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		publisher = events.NewRedisStreamPublisher(client, cfg.RedisUniversalKeyPrefix+cfg.EventStream, cfg.EventStreamMaxLen)
		store = idempotency.NewStore(client, idempotency.Config{
			KeyPrefix:   cfg.RedisUniversalKeyPrefix,
			LockTTL:     cfg.IdempotencyLockTTL,
			ResponseTTL: cfg.IdempotencyTTL,
		})
	} else {
		logger.Warn("REDIS_ADDR not set: events go to the log and Idempotency-Key is ignored")
	}

	// 指標
	var recorder scan.MetricsRecorder
	var gatherer prometheus.Gatherer
	if cfg.MetricsEnabled {
		host, _ := os.Hostname()
		prom, err := metrics.NewPrometheusRecorder(prometheus.DefaultRegisterer, cfg.PromNamespace, prometheus.Labels{
			"env":      cfg.AppEnv,
			"instance": host,
		})
		if err != nil {
			return err
		}
		recorder = prom
		gatherer = prometheus.DefaultGatherer
	}

	// 應用層
	txManager := persistence.NewGORMTransactionManager(db)
	operators := persistence.NewOperatorRepository(db)
	rewards := persistence.NewRewardRepository(db)

	opts := scan.DefaultOptions()
	opts.MaxAttempts = cfg.TxMaxRetries
	service := scan.NewService(scan.Dependencies{
		Customers:   persistence.NewCustomerRepository(db),
		Operators:   operators,
		Rewards:     rewards,
		Balances:    persistence.NewBalanceRepository(db),
		ScanEvents:  persistence.NewScanEventRepository(db),
		Redemptions: persistence.NewRedemptionRepository(db),
		TxManager:   txManager,
		Publisher:   publisher,
		Metrics:     recorder,
	}, opts)
	createReward := reward.NewCreateRewardUseCase(operators, persistence.NewBusinessRepository(db), rewards, txManager, nil)

	verifier, err := auth.NewVerifier(auth.Config{
		Secret:       cfg.AuthJWTSecret,
		PublicKeyPEM: cfg.AuthJWTPublicKey,
		Issuer:       cfg.AuthIssuer,
		Audience:     cfg.AuthAudience,
		Leeway:       30 * time.Second,
	})
	if err != nil {
		return err
	}

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	accessLog := zerolog.New(os.Stdout).With().Timestamp().Str("app", cfg.AppName).Logger()
	if !cfg.IsProduction() {
		accessLog = accessLog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	metricsPath := ""
	if cfg.MetricsEnabled {
		metricsPath = cfg.MetricsPath
	}
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Handler:        httpapi.NewHandler(service, createReward, store),
		Verifier:       verifier,
		Health:         func(ctx context.Context) error { return persistence.Ping(ctx, db) },
		AccessLog:      accessLog,
		RequestTimeout: cfg.HttpRequestTimeout,
		MetricsPath:    metricsPath,
		Gatherer:       gatherer,
	})

	srv := &http.Server{
		Addr:         cfg.HttpListenAddr,
		Handler:      router,
		ReadTimeout:  cfg.HttpReadTimeout,
		WriteTimeout: cfg.HttpWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", "addr", srv.Addr, "db_driver", cfg.DBDriver, "redis", cfg.RedisEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}

// argContainsEnvPath 取出 --env=<path> 參數
func argContainsEnvPath() string {
	for _, v := range os.Args[1:] {
		if path, ok := strings.CutPrefix(v, "--env="); ok {
			if _, err := os.Stat(path); err != nil {
				logger.Error("failed to open the passed env file", "path", path, "error", err)
				return ""
			}
			return path
		}
	}
	return ""
}
