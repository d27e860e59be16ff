package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/printshop-backend/internal/cartsync"
	"github.com/yungbote/printshop-backend/internal/data/repos"
	"github.com/yungbote/printshop-backend/internal/data/repos/testutil"
	httpMW "github.com/yungbote/printshop-backend/internal/http/middleware"
	"github.com/yungbote/printshop-backend/internal/services"
)

const testSecret = "handler-test-secret"

type harness struct {
	db       *gorm.DB
	engine   *gin.Engine
	registry *cartsync.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(db, log)
	cartSvc := services.NewCartService(db, log, userRepo, repos.NewCartLineRepo(db, log))
	catalogSvc := services.NewCatalogService(db, log, repos.NewProductRepo(db, log))
	identity := services.NewIdentityService(log, testSecret)

	breaker := cartsync.NewRemoteBreaker(log, cartsync.BreakerConfig{Name: "cart-test"})
	registry := cartsync.NewRegistry(log, cartsync.NewMemorySnapshotStore(), cartsync.NewRemoteFactory(cartSvc, breaker, 5*time.Second), cartsync.RegistryConfig{})
	t.Cleanup(registry.Close)

	auth := httpMW.NewAuthMiddleware(log, identity)
	cartH := NewCartHandler(log, cartSvc)
	storefrontH := NewStorefrontHandler(log, registry, catalogSvc)
	catalogH := NewCatalogHandler(catalogSvc)

	r := gin.New()
	r.Use(httpMW.AttachRequestContext())
	api := r.Group("/api")
	api.GET("/products", catalogH.ListProducts)
	api.GET("/products/:id", catalogH.GetProduct)

	sf := api.Group("/storefront")
	sf.Use(httpMW.BrowserProfile(httpMW.ProfileConfig{}), auth.OptionalAuth())
	sf.GET("/cart", storefrontH.GetCart)
	sf.POST("/cart/items", storefrontH.AddItem)
	sf.PATCH("/cart/items/:id", storefrontH.UpdateItem)
	sf.DELETE("/cart/items/:id", storefrontH.RemoveItem)
	sf.DELETE("/cart", storefrontH.ClearCart)
	sf.POST("/cart/refresh", storefrontH.Refresh)
	sf.DELETE("/cart/error", storefrontH.ClearError)
	sf.DELETE("/session", storefrontH.EndSession)

	protected := api.Group("/")
	protected.Use(auth.RequireAuth())
	protected.GET("/cart", cartH.List)
	protected.POST("/cart/items", cartH.AddItem)
	protected.PATCH("/cart/items/:id", cartH.UpdateItem)
	protected.DELETE("/cart/items/:id", cartH.RemoveItem)
	protected.DELETE("/cart", cartH.Clear)

	return &harness{db: db, engine: r, registry: registry}
}

type requestOpt func(*http.Request)

func withToken(tok string) requestOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func withProfile(profileID string) requestOpt {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: httpMW.ProfileCookieName, Value: profileID})
	}
}

func (h *harness) do(t *testing.T, method, path, body string, opts ...requestOpt) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func (h *harness) user(t *testing.T) (uuid.UUID, string) {
	t.Helper()
	u := testutil.SeedUser(t, context.Background(), h.db, uuid.NewString()+"@example.com")
	return u.ID, signToken(t, u.ID)
}

func signToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}
