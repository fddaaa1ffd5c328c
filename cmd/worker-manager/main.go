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

	commonaws "carbon-workers/internal/common/aws"
	"carbon-workers/internal/common/camunda"
	"carbon-workers/internal/common/config"
	"carbon-workers/internal/common/database"
	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/common/observability"
	"carbon-workers/internal/common/registry"

	// Infrastructure Workers (1)
	vs "carbon-workers/internal/workers/infrastructure/validate-subscription"

	// Project Workers (5)
	cpr "carbon-workers/internal/workers/project/create-project-record"
	fpr "carbon-workers/internal/workers/project/fetch-project-record"
	psf "carbon-workers/internal/workers/project/parse-search-filters"
	sp "carbon-workers/internal/workers/project/search-projects"
	vpd "carbon-workers/internal/workers/project/validate-project-data"

	// Estimation Workers (2)
	cce "carbon-workers/internal/workers/estimation/calculate-credit-estimate"
	ee "carbon-workers/internal/workers/estimation/evaluate-eligibility"

	// Marketplace, Registry & Communication Workers (3)
	sn "carbon-workers/internal/workers/communication/send-notification"
	mbp "carbon-workers/internal/workers/marketplace/match-buyer-projects"
	sr "carbon-workers/internal/workers/registry/submit-registration"
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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         30 * time.Second,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

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
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init External Service Clients ---
	registryClient := registry.NewClient(
		cfg.Registry.Name,
		cfg.Registry.BaseURL,
		cfg.Registry.APIKey,
		cfg.Registry.AccountID,
		config.GetDuration(cfg.Registry.Timeout),
	)

	sesClient, err := commonaws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("ses client failed", zap.Error(err))
	}
	snsClient, err := commonaws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("sns client failed", zap.Error(err))
	}

	zapLog.Info("All external service clients initialized")

	// --- START: Register ALL 11 Workers ---
	var workers []*camunda.Worker

	// --- 1. Infrastructure Workers (1) ---
	if cfg.Workers[vs.TaskType].Enabled {
		handler := vs.NewHandler(
			&vs.Config{
				Timeout:  config.GetDuration(cfg.Workers[vs.TaskType].Timeout),
				CacheTTL: 5 * time.Minute,
			},
			pg.DB, redis.Client, log,
		)
		workers = append(workers, startWorker(camClient, vs.TaskType, cfg.Workers[vs.TaskType], handler.Handle, log))
	}

	// --- 2. Project Workers (5) ---
	if cfg.Workers[vpd.TaskType].Enabled {
		handler := vpd.NewHandler(
			&vpd.Config{
				Timeout: config.GetDuration(cfg.Workers[vpd.TaskType].Timeout),
			},
			log,
		)
		workers = append(workers, startWorker(camClient, vpd.TaskType, cfg.Workers[vpd.TaskType], handler.Handle, log))
	}

	if cfg.Workers[cpr.TaskType].Enabled {
		handler := cpr.NewHandler(
			&cpr.Config{
				Timeout: config.GetDuration(cfg.Workers[cpr.TaskType].Timeout),
			},
			pg.DB, log,
		)
		workers = append(workers, startWorker(camClient, cpr.TaskType, cfg.Workers[cpr.TaskType], handler.Handle, log))
	}

	if cfg.Workers[fpr.TaskType].Enabled {
		handler := fpr.NewHandler(
			&fpr.Config{
				Timeout:  config.GetDuration(cfg.Workers[fpr.TaskType].Timeout),
				CacheTTL: 10 * time.Minute,
			},
			pg.DB, redis.Client, log,
		)
		workers = append(workers, startWorker(camClient, fpr.TaskType, cfg.Workers[fpr.TaskType], handler.Handle, log))
	}

	if cfg.Workers[psf.TaskType].Enabled {
		handler := psf.NewHandler(
			&psf.Config{
				Timeout: config.GetDuration(cfg.Workers[psf.TaskType].Timeout),
			},
			log,
		)
		workers = append(workers, startWorker(camClient, psf.TaskType, cfg.Workers[psf.TaskType], handler.Handle, log))
	}

	if cfg.Workers[sp.TaskType].Enabled {
		handler := sp.NewHandler(
			&sp.Config{
				Timeout:      config.GetDuration(cfg.Workers[sp.TaskType].Timeout),
				DefaultIndex: cfg.Search.ProjectIndex,
			},
			esClient.Client, log,
		)
		workers = append(workers, startWorker(camClient, sp.TaskType, cfg.Workers[sp.TaskType], handler.Handle, log))
	}

	// --- 3. Estimation Workers (2) ---
	if cfg.Workers[ee.TaskType].Enabled {
		handler := ee.NewHandler(
			&ee.Config{
				Timeout:  config.GetDuration(cfg.Workers[ee.TaskType].Timeout),
				CacheTTL: 10 * time.Minute,
			},
			pg.DB, redis.Client, log,
		)
		workers = append(workers, startWorker(camClient, ee.TaskType, cfg.Workers[ee.TaskType], handler.Handle, log))
	}

	if cfg.Workers[cce.TaskType].Enabled {
		handler := cce.NewHandler(
			&cce.Config{
				Timeout: config.GetDuration(cfg.Workers[cce.TaskType].Timeout),
			},
			log,
		)
		workers = append(workers, startWorker(camClient, cce.TaskType, cfg.Workers[cce.TaskType], handler.Handle, log))
	}

	// --- 4. Marketplace Workers (1) ---
	if cfg.Workers[mbp.TaskType].Enabled {
		handler := mbp.NewHandler(
			&mbp.Config{
				Timeout:  config.GetDuration(cfg.Workers[mbp.TaskType].Timeout),
				CacheTTL: 5 * time.Minute,
			},
			pg.DB, redis.Client, log,
		)
		workers = append(workers, startWorker(camClient, mbp.TaskType, cfg.Workers[mbp.TaskType], handler.Handle, log))
	}

	// --- 5. Registry Workers (1) ---
	if cfg.Workers[sr.TaskType].Enabled {
		handler := sr.NewHandler(
			&sr.Config{
				Timeout: config.GetDuration(cfg.Workers[sr.TaskType].Timeout),
			},
			registryClient, log,
		)
		workers = append(workers, startWorker(camClient, sr.TaskType, cfg.Workers[sr.TaskType], handler.Handle, log))
	}

	// --- 6. Communication Workers (1) ---
	if cfg.Workers[sn.TaskType].Enabled {
		handler := sn.NewHandler(
			&sn.Config{
				Timeout:     config.GetDuration(cfg.Workers[sn.TaskType].Timeout),
				FromAddress: cfg.Notifications.Email.FromEmail,
				Enabled:     cfg.Notifications.Email.Enabled,
			},
			sesClient, snsClient, log,
		)
		workers = append(workers, startWorker(camClient, sn.TaskType, cfg.Workers[sn.TaskType], handler.Handle, log))
	}

	zapLog.Info("All 11 workers registered successfully")

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
			w.Header().Set("Content-Type", "application/json")
			if err := camClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
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
		if w != nil {
			w.Close()
		}
	}

	if err := camClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.JobHandler, log logger.Logger) *camunda.Worker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	return client.NewWorker(taskType, wcfg.MaxJobsActive, time.Duration(wcfg.Timeout)*time.Millisecond, handlerFunc, log)
}
