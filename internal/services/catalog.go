package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/printshop-backend/internal/data/repos"
	types "github.com/yungbote/printshop-backend/internal/domain"
	"github.com/yungbote/printshop-backend/internal/domain/cart"
	"github.com/yungbote/printshop-backend/internal/pkg/dbctx"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
)

type CatalogService interface {
	GetProduct(ctx context.Context, productID string) (*types.Product, error)
	ListProducts(ctx context.Context, limit, offset int) ([]*types.Product, error)
}

type catalogService struct {
	db          *gorm.DB
	log         *logger.Logger
	productRepo repos.ProductRepo
}

func NewCatalogService(db *gorm.DB, log *logger.Logger, productRepo repos.ProductRepo) CatalogService {
	serviceLog := log.With("service", "CatalogService")
	return &catalogService{db: db, log: serviceLog, productRepo: productRepo}
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (*types.Product, error) {
	const op = "catalog.get"
	id, err := uuid.Parse(strings.TrimSpace(productID))
	if err != nil {
		return nil, cart.Validation(op, "malformed product id")
	}
	found, err := s.productRepo.GetByIDs(dbctx.New(ctx), []uuid.UUID{id})
	if err != nil {
		return nil, cart.Wrap(cart.CodePersistence, op, err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, cart.NewError(cart.CodeProductNotFound, op, "product "+id.String()+" not found", nil)
	}
	return found[0], nil
}

func (s *catalogService) ListProducts(ctx context.Context, limit, offset int) ([]*types.Product, error) {
	products, err := s.productRepo.List(dbctx.New(ctx), limit, offset)
	if err != nil {
		return nil, cart.Wrap(cart.CodePersistence, "catalog.list", err)
	}
	return products, nil
}
