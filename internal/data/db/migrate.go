package db

import (
	"fmt"

	types "github.com/yungbote/printshop-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

// EnsureCartIndexes adds the ordering index used by list-by-owner. The
// (owner_id, product_id) unique index comes from the model tags.
func EnsureCartIndexes(db *gorm.DB) error {
	if db.Migrator().HasIndex(&types.CartLine{}, "idx_cart_line_owner_created") {
		return nil
	}
	if err := db.Exec(`CREATE INDEX idx_cart_line_owner_created ON cart_lines(owner_id, created_at);`).Error; err != nil {
		return fmt.Errorf("create idx_cart_line_owner_created: %w", err)
	}
	return nil
}

func (s *DatabaseService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureCartIndexes(s.db); err != nil {
		s.log.Error("Cart index migration failed", "error", err)
		return err
	}
	return nil
}
