// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"staffing-workers/internal/common/camunda"
	"staffing-workers/internal/common/config"
	"staffing-workers/internal/common/database"
	"staffing-workers/internal/common/logger"
	"staffing-workers/internal/common/observability"
	"staffing-workers/internal/matching"

	// Staffing Workers (4)
	cp "staffing-workers/internal/workers/staffing/create-placement"
	mc "staffing-workers/internal/workers/staffing/match-candidates"
	np "staffing-workers/internal/workers/staffing/notify-placement"
	vt "staffing-workers/internal/workers/staffing/validate-ticket"

	// Data Access Workers (1)
	qp "staffing-workers/internal/workers/data-access/query-postgresql"

	// Intelligence Workers (1)
	ms "staffing-workers/internal/workers/intelligence/market-snapshot"

	// CV Workers (1)
	as "staffing-workers/internal/workers/cv/assess-skills"

	// Onboarding Workers (1)
	io "staffing-workers/internal/workers/onboarding/initiate-onboarding"
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
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
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
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	var workers []*camunda.CamundaWorker
	startWorker := func(taskType string, handlerFunc camunda.HandlerFunc) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		w := camunda.NewWorker(
			zeebeClient,
			taskType,
			wcfg.MaxJobsActive,
			config.GetDuration(wcfg.Timeout),
			handlerFunc,
			zapLog,
		)
		workers = append(workers, w)
	}

	// --- 1. Staffing Workers (4) ---
	var weights *matching.Weights
	if w := cfg.Matching.Weights; w.Skills+w.Experience+w.Location+w.Availability+w.Budget > 0 {
		weights = &matching.Weights{
			Skills:       w.Skills,
			Experience:   w.Experience,
			Location:     w.Location,
			Availability: w.Availability,
			Budget:       w.Budget,
		}
	}

	mcHandler := mc.NewHandler(
		&mc.Config{
			PoolCacheTTL: time.Duration(cfg.Matching.PoolCacheTTL) * time.Second,
			Timeout:      config.GetDuration(config.GetWorkerConfig(cfg, mc.TaskType).Timeout),
			MaxResults:   cfg.Matching.MaxResults,
			Weights:      weights,
		},
		pg.DB, redisClient.Client, log,
	)
	startWorker(mc.TaskType, mcHandler.Handle)

	vtHandler := vt.NewHandler(&vt.Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, vt.TaskType).Timeout),
	}, log)
	startWorker(vt.TaskType, vtHandler.Handle)

	cpHandler := cp.NewHandler(&cp.Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, cp.TaskType).Timeout),
	}, pg.DB, log)
	startWorker(cp.TaskType, cpHandler.Handle)

	npHandler, err := np.NewHandler(
		&np.Config{
			EmailEnabled:     cfg.Notifications.Email.Enabled,
			SMSEnabled:       cfg.Notifications.SMS.Enabled,
			FromEmail:        cfg.Notifications.Email.FromEmail,
			AWSRegion:        cfg.Notifications.AWS.Region,
			TemplateRegistry: cfg.Notifications.TemplateRegistryPath,
			Timeout:          config.GetDuration(config.GetWorkerConfig(cfg, np.TaskType).Timeout),
		},
		pg.DB, log,
	)
	if err != nil {
		zapLog.Fatal("failed to create notify-placement handler", zap.Error(err))
	}
	startWorker(np.TaskType, npHandler.Handle)

	// --- 2. Data Access Workers (1) ---
	qpHandler := qp.NewHandler(&qp.Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, qp.TaskType).Timeout),
	}, pg.DB, log)
	startWorker(qp.TaskType, qpHandler.Handle)

	// --- 3. Intelligence Workers (1) ---
	msHandler := ms.NewHandler(ms.LoadConfig(), esClient.Client, redisClient.Client, log)
	startWorker(ms.TaskType, msHandler.Handle)

	// --- 4. CV Workers (1) ---
	asLogAdapter := &assessSkillsLoggerAdapter{log}
	asHandler := as.NewHandler(
		&as.Config{
			GenAIBaseURL: cfg.APIs.GenAI.BaseURL,
			Timeout:      config.GetDuration(cfg.APIs.GenAI.Timeout),
			MaxRetries:   1,
			MaxTokens:    500,
			Temperature:  0.2,
		},
		asLogAdapter,
	)
	startWorker(as.TaskType, asHandler.Handle)

	// --- 5. Onboarding Workers (1) ---
	ioHandler := io.NewHandler(&io.Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, io.TaskType).Timeout),
	}, pg.DB, log)
	startWorker(io.TaskType, ioHandler.Handle)

	zapLog.Info("All workers registered successfully", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			status := "ready"
			code := http.StatusOK
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				status = "not ready"
				code = http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range workers {
		w.Stop()
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// assessSkillsLoggerAdapter bridges the shared logger to the worker-local
// Logger interface.
type assessSkillsLoggerAdapter struct {
	logger.Logger
}

func (a *assessSkillsLoggerAdapter) With(fields map[string]interface{}) as.Logger {
	return &assessSkillsLoggerAdapter{a.Logger.With(fields)}
}
