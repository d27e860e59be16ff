package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/printshop-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: "Shopper",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, title, displayPrice string) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:           uuid.New(),
		Title:        title,
		Image:        "https://cdn.example.com/" + title + ".png",
		Size:         "A4",
		DisplayPrice: displayPrice,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedCartLine(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, productID string, unitPrice int64, quantity int) *types.CartLine {
	tb.Helper()
	l := &types.CartLine{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ProductID: productID,
		Title:     "line",
		UnitPrice: unitPrice,
		Quantity:  quantity,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed cart line: %v", err)
	}
	return l
}
