package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bakeshop/internal/app"
	"github.com/vladislavdragonenkov/bakeshop/internal/version"
)

// setupLogger настраивает формат и уровень логирования для сервиса.
// Уровень переопределяется через BAKESHOP_LOG_LEVEL (debug, info, warn, error).
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	if raw := strings.TrimSpace(os.Getenv("BAKESHOP_LOG_LEVEL")); raw != "" {
		level, err := log.ParseLevel(raw)
		if err != nil {
			log.WithField("value", raw).Warn("unknown log level, using info")
			return
		}
		log.SetLevel(level)
	}
}

func main() {
	setupLogger()
	cfg := app.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"version":      version.GetVersion(),
		"metrics_addr": cfg.MetricsAddr,
		"storage":      cfg.StorageDriver,
		"kafka":        cfg.KafkaBrokers != "",
	}).Info("запускаем bakeshop workflow engine")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("bakeshop workflow engine остановлен")
}
