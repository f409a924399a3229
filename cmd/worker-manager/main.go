// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"phoneplan-workers/internal/common/auth"
	"phoneplan-workers/internal/common/aws"
	"phoneplan-workers/internal/common/camunda"
	"phoneplan-workers/internal/common/config"
	"phoneplan-workers/internal/common/database"
	"phoneplan-workers/internal/common/logger"
	"phoneplan-workers/internal/common/observability"
	"phoneplan-workers/internal/store"

	// Plan Workers (3)
	mp "phoneplan-workers/internal/workers/plans/manage-plan"
	qp "phoneplan-workers/internal/workers/plans/query-plans"
	rp "phoneplan-workers/internal/workers/plans/recommend-plans"

	// Subscription Workers (4)
	cas "phoneplan-workers/internal/workers/subscriptions/cancel-subscription"
	crs "phoneplan-workers/internal/workers/subscriptions/create-subscription"
	qs "phoneplan-workers/internal/workers/subscriptions/query-subscriptions"
	ups "phoneplan-workers/internal/workers/subscriptions/update-subscription"

	// User Workers (1)
	mu "phoneplan-workers/internal/workers/users/manage-user"

	// Authentication Workers (3)
	acs "phoneplan-workers/internal/workers/auth/auth-check-session"
	ali "phoneplan-workers/internal/workers/auth/auth-login"
	alo "phoneplan-workers/internal/workers/auth/auth-logout"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

type validatable interface {
	Validate() error
}

func mustValidate(taskType string, cfg validatable, log *zap.Logger) {
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid worker configuration", zap.String("taskType", taskType), zap.Error(err))
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, log)

	ctx := context.Background()

	// --- Init Zeebe Client ---
	zeebe, err := camunda.Connect(ctx, camunda.ConfigFromApp(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	zapLog.Info("Redis connected successfully")

	// --- Init Shared Services ---
	tokens, err := auth.NewTokenManager(cfg.Auth.JWT, redis.GetClient())
	if err != nil {
		zapLog.Fatal("token manager init failed", zap.Error(err))
	}

	var notifier crs.Notifier
	if cfg.Notifications.Enabled() {
		n, err := aws.NewNotifierFromConfig(ctx, cfg.Notifications, log)
		if err != nil {
			zapLog.Fatal("notifier init failed", zap.Error(err))
		}
		notifier = n
	}

	plans := store.NewPlanStore(pg.GetDB(), redis.GetClient(),
		time.Duration(cfg.Database.Redis.CacheTTL)*time.Second, log)
	users := store.NewUserStore(pg.GetDB())
	subscriptions := store.NewSubscriptionStore(pg.GetDB())

	zapLog.Info("All shared services initialized")

	// --- START: Register Workers ---
	client := zeebe.GetClient()
	var workers []*camunda.Worker
	start := func(taskType string, enabled bool, handler camunda.JobHandler) {
		if !enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		wcfg := config.GetWorkerConfig(cfg, taskType)
		workers = append(workers, camunda.StartWorker(client, taskType, wcfg, handler, obs, log))
	}

	// --- 1. Plan Workers (3) ---
	rpCfg := rp.LoadConfig(cfg)
	mustValidate(rp.TaskType, rpCfg, zapLog)
	start(rp.TaskType, rpCfg.Enabled, rp.NewHandler(rpCfg, plans, log))

	qpCfg := qp.LoadConfig(cfg)
	mustValidate(qp.TaskType, qpCfg, zapLog)
	start(qp.TaskType, qpCfg.Enabled, qp.NewHandler(qpCfg, plans, log))

	mpCfg := mp.LoadConfig(cfg)
	mustValidate(mp.TaskType, mpCfg, zapLog)
	start(mp.TaskType, mpCfg.Enabled, mp.NewHandler(mpCfg, plans, tokens, log))

	// --- 2. Subscription Workers (4) ---
	crsCfg := crs.LoadConfig(cfg)
	mustValidate(crs.TaskType, crsCfg, zapLog)
	start(crs.TaskType, crsCfg.Enabled, crs.NewHandler(crsCfg, crs.Dependencies{
		Subscriptions: subscriptions,
		Users:         users,
		Plans:         plans,
		Tokens:        tokens,
		Notifier:      notifier,
	}, log))

	qsCfg := qs.LoadConfig(cfg)
	mustValidate(qs.TaskType, qsCfg, zapLog)
	start(qs.TaskType, qsCfg.Enabled, qs.NewHandler(qsCfg, subscriptions, tokens, log))

	casCfg := cas.LoadConfig(cfg)
	mustValidate(cas.TaskType, casCfg, zapLog)
	start(cas.TaskType, casCfg.Enabled, cas.NewHandler(casCfg, subscriptions, tokens, log))

	upsCfg := ups.LoadConfig(cfg)
	mustValidate(ups.TaskType, upsCfg, zapLog)
	start(ups.TaskType, upsCfg.Enabled, ups.NewHandler(upsCfg, subscriptions, tokens, log))

	// --- 3. User Workers (1) ---
	muCfg := mu.LoadConfig(cfg)
	mustValidate(mu.TaskType, muCfg, zapLog)
	start(mu.TaskType, muCfg.Enabled, mu.NewHandler(muCfg, users, tokens, log))

	// --- 4. Authentication Workers (3) ---
	aliCfg := ali.LoadConfig(cfg)
	mustValidate(ali.TaskType, aliCfg, zapLog)
	start(ali.TaskType, aliCfg.Enabled, ali.NewHandler(aliCfg, ali.NewService(ali.ServiceDependencies{
		Users:  users,
		Tokens: tokens,
		Logger: log,
	}, aliCfg), log))

	aloCfg := alo.LoadConfig(cfg)
	mustValidate(alo.TaskType, aloCfg, zapLog)
	start(alo.TaskType, aloCfg.Enabled, alo.NewHandler(aloCfg, alo.NewService(alo.ServiceDependencies{
		Tokens: tokens,
		Redis:  redis.GetClient(),
		Logger: log,
	}, aloCfg), log))

	acsCfg := acs.LoadConfig(cfg)
	mustValidate(acs.TaskType, acsCfg, zapLog)
	start(acs.TaskType, acsCfg.Enabled, acs.NewHandler(acsCfg, tokens, log))

	zapLog.Info("Workers registered successfully", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		status := http.StatusOK
		for name, check := range map[string]func(context.Context) error{
			"postgres": pg.Ping,
			"redis":    redis.Ping,
			"zeebe":    zeebe.HealthCheck,
		} {
			if err := check(checkCtx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		body := map[string]interface{}{
			"status": "ready",
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		}
		if status != http.StatusOK {
			body["status"] = "not ready"
		}
		writeStatus(w, status, body)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := redis.Close(); err != nil {
		zapLog.Error("Error closing Redis client", zap.Error(err))
	}
	if err := pg.Close(); err != nil {
		zapLog.Error("Error closing PostgreSQL client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down observability", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
