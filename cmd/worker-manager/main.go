// cmd/worker-manager/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"career-predictor/internal/career/guard"
	"career-predictor/internal/career/notify"
	"career-predictor/internal/career/predictor"
	"career-predictor/internal/career/share"
	awsutil "career-predictor/internal/common/aws"
	"career-predictor/internal/common/camunda"
	"career-predictor/internal/common/config"
	"career-predictor/internal/common/database"
	"career-predictor/internal/common/logger"
	"career-predictor/internal/common/observability"

	pc "career-predictor/internal/workers/career/predict-career"
	sp "career-predictor/internal/workers/career/share-prediction"
	vcf "career-predictor/internal/workers/career/validate-career-form"
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if err := config.ValidateForWorkers(cfg); err != nil {
		zapLog.Fatal("invalid worker configuration", zap.Error(err))
	}
	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs := observability.New(observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
	}, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Redis (session guard) ---
	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- PostgreSQL (catalog predictor only) ---
	var pg *database.PostgresClient
	if cfg.Prediction.Provider == "catalog" {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.Connect(ctx, cfg.Database.Postgres, 5*time.Second)
			return err
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- AWS ---
	var snsClient *sns.Client
	if cfg.Integrations.AWS.Region != "" && (cfg.Notifications.SNSTopicARN != "" || cfg.Share.SNSTopicARN != "") {
		snsClient, err = awsutil.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		zapLog.Info("SNS client initialized", zap.String("region", cfg.Integrations.AWS.Region))
	}

	// --- Shared dependencies ---
	var db *sql.DB
	if pg != nil {
		db = pg.DB
	}
	pred, err := predictor.NewFromConfig(cfg, db, log)
	if err != nil {
		zapLog.Fatal("predictor init failed", zap.Error(err))
	}
	zapLog.Info("Predictor ready", zap.String("provider", cfg.Prediction.Provider))

	notifiers := notify.Multi{notify.NewLogNotifier(log)}
	var snsNotifier *notify.SNSNotifier
	if snsClient != nil && cfg.Notifications.SNSTopicARN != "" {
		snsNotifier = notify.NewSNSNotifier(snsClient, cfg.Notifications.SNSTopicARN, log)
		notifiers = append(notifiers, snsNotifier)
	}

	lock := guard.NewLock(redis.Client, cfg.Guard.KeyPrefix, config.GetDuration(cfg.Guard.LockTTL))

	var shareTarget share.NativeSharer
	if snsClient != nil && cfg.Share.SNSTopicARN != "" {
		shareTarget = share.NewSNSSharer(snsClient, cfg.Share.SNSTopicARN)
	}

	// --- Workers ---
	var workers []*camunda.CamundaWorker
	start := func(taskType string, h camunda.JobHandler) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      taskType,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, camunda.Instrument(taskType, h, obs), zapLog))
	}

	start(vcf.TaskType, vcf.NewHandler(vcf.LoadConfig(cfg), log))
	start(pc.TaskType, pc.NewHandler(pc.LoadConfig(cfg), pc.Dependencies{
		Predictor: pred,
		Notifier:  notifiers,
		Lock:      lock,
	}, log))
	start(sp.TaskType, sp.NewHandler(sp.LoadConfig(cfg), sp.Dependencies{
		Native:   shareTarget,
		Notifier: notifiers,
	}, log))
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err)
			return
		}
		if err := redis.Ping(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err)
			return
		}
		writeStatus(w, http.StatusOK, "ready", nil)
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: cfg.Observability.MetricsAddr, Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
		w.Stop(shutdownCtx)
	}
	if snsNotifier != nil {
		snsNotifier.Flush()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string, err error) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if err != nil {
		body["error"] = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
