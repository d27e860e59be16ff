package domain

import (
	"github.com/yungbote/printshop-backend/internal/domain/cart"
	"github.com/yungbote/printshop-backend/internal/domain/catalog"
	"github.com/yungbote/printshop-backend/internal/domain/user"
)

type User = user.User

type Product = catalog.Product

type CartLine = cart.Line
type CartLineView = cart.LineView
type ProductRef = cart.ProductRef
type AddLineInput = cart.AddLineInput

// Models lists every table the storefront migrates.
func Models() []any {
	return []any{
		&User{},
		&Product{},
		&CartLine{},
	}
}
