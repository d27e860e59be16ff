package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/printshop-backend/internal/http/handlers"
	httpMW "github.com/yungbote/printshop-backend/internal/http/middleware"
	"github.com/yungbote/printshop-backend/internal/observability"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	Profile        httpMW.ProfileConfig
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler     *httpH.HealthHandler
	CatalogHandler    *httpH.CatalogHandler
	CartHandler       *httpH.CartHandler
	StorefrontHandler *httpH.StorefrontHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")

	// Catalog (public)
	if cfg.CatalogHandler != nil {
		api.GET("/products", cfg.CatalogHandler.ListProducts)
		api.GET("/products/:id", cfg.CatalogHandler.GetProduct)
	}

	// Storefront cart (anonymous or signed in)
	if cfg.StorefrontHandler != nil {
		storefront := api.Group("/storefront")
		storefront.Use(httpMW.BrowserProfile(cfg.Profile))
		if cfg.AuthMiddleware != nil {
			storefront.Use(cfg.AuthMiddleware.OptionalAuth())
		}
		storefront.GET("/cart", cfg.StorefrontHandler.GetCart)
		storefront.POST("/cart/items", cfg.StorefrontHandler.AddItem)
		storefront.PATCH("/cart/items/:id", cfg.StorefrontHandler.UpdateItem)
		storefront.DELETE("/cart/items/:id", cfg.StorefrontHandler.RemoveItem)
		storefront.DELETE("/cart", cfg.StorefrontHandler.ClearCart)
		storefront.POST("/cart/refresh", cfg.StorefrontHandler.Refresh)
		storefront.DELETE("/cart/error", cfg.StorefrontHandler.ClearError)
		storefront.DELETE("/session", cfg.StorefrontHandler.EndSession)
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Server cart
		if cfg.CartHandler != nil {
			protected.GET("/cart", cfg.CartHandler.List)
			protected.POST("/cart/items", cfg.CartHandler.AddItem)
			protected.PATCH("/cart/items/:id", cfg.CartHandler.UpdateItem)
			protected.DELETE("/cart/items/:id", cfg.CartHandler.RemoveItem)
			protected.DELETE("/cart", cfg.CartHandler.Clear)
		}
	}

	return r
}
