package repos

import (
	"github.com/yungbote/printshop-backend/internal/data/repos/cart"
	"github.com/yungbote/printshop-backend/internal/data/repos/catalog"
	"github.com/yungbote/printshop-backend/internal/data/repos/user"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type ProductRepo = catalog.ProductRepo
type CartLineRepo = cart.CartLineRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, baseLog)
}
func NewCartLineRepo(db *gorm.DB, baseLog *logger.Logger) CartLineRepo {
	return cart.NewCartLineRepo(db, baseLog)
}
