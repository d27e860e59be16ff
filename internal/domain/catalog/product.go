package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/printshop-backend/internal/domain/cart"
)

// Product is a printable catalog item. DisplayPrice keeps the merchandising
// string ("12,000원"); the integer unit price is derived when the product is
// added to a cart.
type Product struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Image        string    `gorm:"type:text" json:"image"`
	Size         string    `gorm:"type:varchar(64)" json:"size"`
	DisplayPrice string    `gorm:"type:varchar(64);not null" json:"display_price"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string { return "products" }

// Ref snapshots the fields a cart line copies at add-time.
func (p Product) Ref() cart.ProductRef {
	return cart.ProductRef{
		ID:           p.ID.String(),
		Title:        p.Title,
		Image:        p.Image,
		Size:         p.Size,
		DisplayPrice: p.DisplayPrice,
	}
}
