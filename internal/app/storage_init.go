package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
	"github.com/vladislavdragonenkov/bakeshop/internal/storage/memory"
	"github.com/vladislavdragonenkov/bakeshop/internal/storage/postgres"
)

// storageBundle собирает репозитории одного драйвера хранилища.
// Store не nil только для postgres.
type storageBundle struct {
	orders   domain.OrderRepository
	customs  domain.CustomOrderRepository
	products domain.ProductRepository
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository
	store    *postgres.Store
}

// initStorage создаёт хранилище по cfg.StorageDriver. Для postgres при
// PostgresAutoMigrate прогоняются все миграции.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (storageBundle, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		logger.Info("using in-memory storage")
		return storageBundle{
			orders:   memory.NewOrderRepository(),
			customs:  memory.NewCustomOrderRepository(),
			products: memory.NewProductRepository(),
			outbox:   memory.NewOutboxRepository(),
			timeline: memory.NewTimelineRepository(),
		}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return storageBundle{}, fmt.Errorf("postgres storage requires BAKESHOP_POSTGRES_DSN")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return storageBundle{}, fmt.Errorf("open postgres store: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return storageBundle{}, fmt.Errorf("apply migrations: %w", err)
			}
		}
		logger.Info("using postgres storage")
		return storageBundle{
			orders:   postgres.NewOrderRepository(store),
			customs:  postgres.NewCustomOrderRepository(store),
			products: postgres.NewProductRepository(store),
			outbox:   postgres.NewOutboxRepository(store),
			timeline: postgres.NewTimelineRepository(store),
			store:    store,
		}, nil

	default:
		return storageBundle{}, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}
