package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	httpapi "github.com/yungbote/printshop-backend/internal/http"
	httpH "github.com/yungbote/printshop-backend/internal/http/handlers"
	httpMW "github.com/yungbote/printshop-backend/internal/http/middleware"
	"github.com/yungbote/printshop-backend/internal/observability"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Catalog    *httpH.CatalogHandler
	Cart       *httpH.CartHandler
	Storefront *httpH.StorefrontHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, clients *Clients, services Services) Handlers {
	log.Info("Wiring handlers...")
	checks := map[string]httpH.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if clients.Redis != nil {
		checks["redis"] = clients.Ping
	}
	return Handlers{
		Health:     httpH.NewHealthHandler(checks),
		Catalog:    httpH.NewCatalogHandler(services.Catalog),
		Cart:       httpH.NewCartHandler(log, services.Cart),
		Storefront: httpH.NewStorefrontHandler(log, services.Sessions, services.Catalog),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Identity),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpapi.NewRouter(httpapi.RouterConfig{
		Log:         log,
		ServiceName: serviceName,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Profile: httpMW.ProfileConfig{
			Secure: cfg.HTTP.ProfileCookieSecure,
		},
		Metrics:           metrics,
		AuthMiddleware:    middleware.Auth,
		HealthHandler:     handlers.Health,
		CatalogHandler:    handlers.Catalog,
		CartHandler:       handlers.Cart,
		StorefrontHandler: handlers.Storefront,
	})
}
