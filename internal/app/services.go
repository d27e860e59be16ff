package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/printshop-backend/internal/cartsync"
	"github.com/yungbote/printshop-backend/internal/observability"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
	"github.com/yungbote/printshop-backend/internal/services"
)

type Services struct {
	Identity services.IdentityService
	Cart     services.CartService
	Catalog  services.CatalogService

	Sessions *cartsync.Registry
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	identity := services.NewIdentityService(log, cfg.JWTSecretKey)
	cartService := services.NewCartService(db, log, repos.User, repos.CartLine)
	catalogService := services.NewCatalogService(db, log, repos.Product)

	breaker := cartsync.NewRemoteBreaker(log, cartsync.BreakerConfig{
		Name:     "cart-remote",
		Failures: uint32(cfg.Cart.BreakerFailures),
		Cooldown: cfg.Cart.BreakerCooldown,
		OnState:  metrics.SetBreakerState,
	})
	registryCfg := cartsync.RegistryConfig{IdleTTL: cfg.Cart.SessionIdleTTL}
	if metrics != nil {
		registryCfg.Recorder = metrics
	}
	sessions := cartsync.NewRegistry(
		log,
		clients.Snapshots,
		cartsync.NewRemoteFactory(cartService, breaker, cfg.Cart.RemoteTimeout),
		registryCfg,
	)

	return Services{
		Identity: identity,
		Cart:     cartService,
		Catalog:  catalogService,
		Sessions: sessions,
	}
}
