package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/bakeshop/internal/health"
	"github.com/vladislavdragonenkov/bakeshop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/bakeshop/internal/service/outbox"
	"github.com/vladislavdragonenkov/bakeshop/internal/version"
)

// Run собирает зависимости и держит приложение до отмены контекста.
// Поднимается операционный HTTP-сервер (метрики и health checks) и, если
// настроены брокеры, outbox-воркер, публикующий события в Kafka.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	producer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		// Без Kafka события копятся в outbox и будут опубликованы после
		// восстановления соединения при следующем запуске.
		logger.WithError(err).Warn("continuing without kafka")
	}
	defer closeKafka(producer, logger)

	healthHandler := newHealthHandler(cfg, deps)
	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	workerDone := make(chan struct{})
	if producer != nil {
		worker := outbox.NewWorker(
			deps.Outbox,
			kafka.NewOutboxPublisher(producer, cfg.KafkaTopic),
			outbox.WithLogger(logger),
			outbox.WithDLQPublisher(kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
		go func() {
			worker.Run(ctx)
			close(workerDone)
		}()
	} else {
		close(workerDone)
	}

	logger.WithFields(log.Fields{
		"storage": cfg.StorageDriver,
		"kafka":   producer != nil,
	}).Info("bakeshop workflow engine started")

	<-ctx.Done()
	logger.Info("received stop signal, shutting down")

	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		logger.Warn("outbox worker did not stop in time")
	}
	shutdownHTTP(metricsSrv, logger)
	return ctx.Err()
}

// newHealthHandler регистрирует проверки хранилища и backlog outbox.
func newHealthHandler(cfg Config, deps *Dependencies) *healthcheck.Handler {
	handler := healthcheck.NewHandler(version.String())

	handler.RegisterChecker("outbox", healthcheck.NewSimpleChecker("outbox", func() error {
		stats, err := deps.Outbox.Stats()
		if err != nil {
			return err
		}
		if stats.PendingCount > cfg.OutboxMaxPending {
			return fmt.Errorf("outbox backlog too large: %d pending", stats.PendingCount)
		}
		return nil
	}))

	if deps.Store != nil {
		handler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return deps.Store.Ping(pingCtx)
		}))
	}

	return handler
}

// startMetricsServer запускает операционный HTTP-сервер: /metrics для
// Prometheus, /healthz и /readyz для проверок, /livez для liveness probe.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
