// Background worker entry point: consumes discovery and scoring triggers
// from Kafka, runs the corresponding pipeline, and publishes completion
// events.  Exposes /metrics and /healthz for the surrounding platform.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appdiscovery "github.com/dealsense/icp-engine/internal/application/discovery"
	appscoring "github.com/dealsense/icp-engine/internal/application/scoring"
	"github.com/dealsense/icp-engine/internal/config"
	"github.com/dealsense/icp-engine/internal/domain/features"
	"github.com/dealsense/icp-engine/internal/domain/readiness"
	"github.com/dealsense/icp-engine/internal/domain/scoring"
	"github.com/dealsense/icp-engine/internal/infrastructure/database/postgres"
	"github.com/dealsense/icp-engine/internal/infrastructure/database/postgres/repositories"
	"github.com/dealsense/icp-engine/internal/infrastructure/database/redis"
	"github.com/dealsense/icp-engine/internal/infrastructure/messaging/kafka"
	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/logging"
	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/prometheus"
	appErrors "github.com/dealsense/icp-engine/pkg/errors"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

const (
	defaultMetricsAddr  = ":9090"
	shutdownGracePeriod = 30 * time.Second
	runHandlerTimeout   = 15 * time.Minute
	healthProbeTimeout  = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ICP_* environment variables)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := postgres.NewConnection(ctx, postgresConfig(cfg.Database), logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	redisClient, err := redis.NewClient(redisConfig(cfg.Redis), logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := redisClient.Close(); closeErr != nil {
			logger.Warn("failed to close redis client", logging.Err(closeErr))
		}
	}()

	namespace := cfg.Metrics.Namespace
	if namespace == "" {
		namespace = "icp_engine"
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return err
	}
	metrics := prometheus.NewEngineMetrics(collector)

	producer, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := producer.Close(); closeErr != nil {
			logger.Warn("failed to close kafka producer", logging.Err(closeErr))
		}
	}()

	w := &worker{
		discovery: newDiscoveryService(conn, redisClient, cfg, metrics, logger),
		scoring:   newScoringService(conn, cfg, metrics, logger),
		producer:  producer,
		metrics:   metrics,
		logger:    logger,
	}

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:         cfg.Kafka.Brokers,
		GroupID:         cfg.Kafka.GroupID,
		Topics:          []string{kafka.TopicDiscoveryRequested, kafka.TopicScoringRequested},
		SessionTimeout:  cfg.Kafka.SessionTimeout,
		DeadLetterTopic: kafka.TopicDeadLetter,
	}, producer, logger)
	if err != nil {
		return err
	}

	consumer.Subscribe(kafka.TopicDiscoveryRequested, w.handleDiscoveryRequested)
	consumer.Subscribe(kafka.TopicScoringRequested, w.handleScoringRequested)

	httpServer := newHTTPServer(cfg, collector, conn, redisClient)
	go func() {
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("metrics server failed", logging.Err(serveErr))
		}
	}()

	if err := consumer.Start(ctx); err != nil {
		return err
	}
	if configPath != "" {
		config.Watch(configPath, func(next *config.Config) {
			if logging.SetLevel(logger, next.Log.Level) {
				logger.Info("log level updated", logging.String("level", next.Log.Level))
			}
		})
	}
	logger.Info("worker started",
		logging.String("group", cfg.Kafka.GroupID),
		logging.String("metrics_addr", httpServer.Addr))

	<-ctx.Done()
	logger.Info("shutdown signal received, draining")

	if err := consumer.Stop(); err != nil {
		logger.Warn("consumer stop failed", logging.Err(err))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown failed", logging.Err(err))
	}
	logger.Info("worker stopped")
	return nil
}

// worker holds the two pipelines and publishes a completion event after each
// consumed trigger.
type worker struct {
	discovery *appdiscovery.Service
	scoring   *appscoring.Service
	producer  *kafka.Producer
	metrics   *prometheus.EngineMetrics
	logger    logging.Logger
}

func newDiscoveryService(
	conn *postgres.Connection,
	redisClient *redis.Client,
	cfg *config.Config,
	metrics *prometheus.EngineMetrics,
	logger logging.Logger,
) *appdiscovery.Service {
	crm := repositories.NewCRMReader(conn.Pool(), logger)
	builder := features.NewBuilder(crm, crm, crm, crm, crm, logger,
		features.WithFetchConcurrency(cfg.Engine.FeatureFetchConcurrency))
	locker := redis.NewWorkspaceLocker(redisClient, cfg.Engine.DiscoveryLockTTL, logger)
	return appdiscovery.NewService(
		lockerAdapter{locker: locker},
		readiness.NewClassifier(crm),
		builder,
		crm,
		repositories.NewProfileRepository(conn.Pool(), logger),
		metrics,
		logger,
	)
}

func newScoringService(
	conn *postgres.Connection,
	cfg *config.Config,
	metrics *prometheus.EngineMetrics,
	logger logging.Logger,
) *appscoring.Service {
	crm := repositories.NewCRMReader(conn.Pool(), logger)
	builder := features.NewBuilder(crm, crm, crm, crm, crm, logger,
		features.WithFetchConcurrency(cfg.Engine.FeatureFetchConcurrency))
	return appscoring.NewService(
		builder,
		repositories.NewProfileRepository(conn.Pool(), logger),
		repositories.NewScoreRepository(conn.Pool(), logger),
		scoring.Config{
			InactivityPenaltyPerWeek: cfg.Engine.InactivityPenaltyPerWeek,
			NoCallsLateStagePenalty:  cfg.Engine.NoCallsLateStagePenalty,
		},
		metrics,
		logger,
	)
}

func (w *worker) handleDiscoveryRequested(ctx context.Context, env *kafka.EventEnvelope) error {
	var payload kafka.DiscoveryRequestedPayload
	if err := env.DecodePayload(&payload); err != nil {
		w.metrics.TriggersConsumed.WithLabelValues(kafka.TopicDiscoveryRequested, "invalid").Inc()
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, runHandlerTimeout)
	defer cancel()

	summary, err := w.discovery.Run(runCtx, common.WorkspaceID(payload.WorkspaceID))
	completed := kafka.RunCompletedPayload{
		WorkspaceID: payload.WorkspaceID,
		RunType:     "discovery",
		Status:      "succeeded",
		CompletedAt: time.Now().UTC(),
	}
	if err != nil {
		completed.Status = "failed"
		completed.Error = err.Error()
	} else {
		completed.Mode = string(summary.Mode)
		completed.ProfileID = string(summary.ProfileID)
		completed.ProfileVersion = summary.ProfileVersion
	}
	return w.finish(ctx, kafka.TopicDiscoveryRequested, payload.WorkspaceID, completed, err)
}

func (w *worker) handleScoringRequested(ctx context.Context, env *kafka.EventEnvelope) error {
	var payload kafka.ScoringRequestedPayload
	if err := env.DecodePayload(&payload); err != nil {
		w.metrics.TriggersConsumed.WithLabelValues(kafka.TopicScoringRequested, "invalid").Inc()
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, runHandlerTimeout)
	defer cancel()

	summary, err := w.scoring.Run(runCtx, common.WorkspaceID(payload.WorkspaceID))
	completed := kafka.RunCompletedPayload{
		WorkspaceID: payload.WorkspaceID,
		RunType:     "scoring",
		Status:      "succeeded",
		CompletedAt: time.Now().UTC(),
	}
	if err != nil {
		completed.Status = "failed"
		completed.Error = err.Error()
	} else {
		completed.DealsScored = summary.DealsScored
		completed.ContactsScored = summary.ContactsScored
	}
	return w.finish(ctx, kafka.TopicScoringRequested, payload.WorkspaceID, completed, err)
}

// finish publishes the completion event and decides whether the trigger
// should be retried.  Run failures with a well-defined business cause are
// terminal: retrying an insufficient corpus or a locked workspace would just
// repeat the same outcome, so the offset is committed and only the completion
// event carries the failure.
func (w *worker) finish(ctx context.Context, topic, workspaceID string, completed kafka.RunCompletedPayload, runErr error) error {
	status := "succeeded"
	if runErr != nil {
		status = "failed"
	}
	w.metrics.TriggersConsumed.WithLabelValues(topic, status).Inc()

	env, err := kafka.NewEnvelope(kafka.TopicRunCompleted, completed)
	if err != nil {
		return err
	}
	if err := w.producer.Publish(ctx, kafka.TopicRunCompleted, workspaceID, env); err != nil {
		w.logger.Error("failed to publish run completion",
			logging.String("workspace_id", workspaceID),
			logging.Err(err))
		return err
	}

	if runErr != nil && !terminalRunError(runErr) {
		return runErr
	}
	return nil
}

func terminalRunError(err error) bool {
	return appErrors.IsCode(err, appErrors.ErrCodeInsufficientData) ||
		appErrors.IsCode(err, appErrors.ErrCodeDiscoveryLocked) ||
		appErrors.IsCode(err, appErrors.ErrCodeModeNotImplemented) ||
		appErrors.IsCode(err, appErrors.ErrCodeNoOpenRecords)
}

func newHTTPServer(cfg *config.Config, collector prometheus.MetricsCollector, conn *postgres.Connection, redisClient *redis.Client) *http.Server {
	addr := cfg.Metrics.ListenAddr
	if addr == "" {
		addr = defaultMetricsAddr
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		probeCtx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()
		if err := conn.HealthCheck(probeCtx); err != nil {
			http.Error(rw, "postgres: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		if err := redisClient.HealthCheck(probeCtx); err != nil {
			http.Error(rw, "redis: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

//Personal.AI order the ending
