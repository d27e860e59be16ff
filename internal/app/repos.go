package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/printshop-backend/internal/data/repos"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
)

type Repos struct {
	User     repos.UserRepo
	Product  repos.ProductRepo
	CartLine repos.CartLineRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:     repos.NewUserRepo(db, log),
		Product:  repos.NewProductRepo(db, log),
		CartLine: repos.NewCartLineRepo(db, log),
	}
}
