package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/printshop-backend/internal/cartsync"
	"github.com/yungbote/printshop-backend/internal/clients/redis"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
)

type Clients struct {
	Redis     *goredis.Client
	Snapshots cartsync.SnapshotStore
}

// wireClients connects Redis when REDIS_ADDR is set. Without it anonymous
// cart snapshots live in process memory.
func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		log.Warn("REDIS_ADDR not set; anonymous carts are kept in memory")
		return Clients{Snapshots: cartsync.NewMemorySnapshotStore()}, nil
	}
	rdb, err := redis.NewClient(log, redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	return Clients{
		Redis:     rdb,
		Snapshots: redis.NewSnapshotStore(log, rdb, cfg.Cart.SnapshotTTL),
	}, nil
}

func (c *Clients) Ping(ctx context.Context) error {
	if c == nil || c.Redis == nil {
		return nil
	}
	return c.Redis.Ping(ctx).Err()
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
