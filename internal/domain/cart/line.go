package cart

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Line is one product row inside a cart. Server-side rows are owned by a
// user; anonymous lines live only in the profile snapshot and carry a
// client-generated id and a nil OwnerID.
type Line struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_line_owner_product,priority:1" json:"-"`
	ProductID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_cart_line_owner_product,priority:2" json:"product_id"`

	Title string `gorm:"type:varchar(255);not null" json:"title"`
	Image string `gorm:"type:text" json:"image"`
	Size  string `gorm:"type:varchar(64)" json:"size"`

	UnitPrice int64 `gorm:"not null" json:"unit_price"`
	Quantity  int   `gorm:"not null" json:"quantity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Per-line limits. A line at both limits still totals well inside int64.
const (
	MaxQuantity  = 9999
	MaxUnitPrice = int64(1_000_000_000_000)
)

func (Line) TableName() string { return "cart_lines" }

// Total is always derived, never stored. It saturates at math.MaxInt64 for
// rows that were written outside the validated paths.
func (l Line) Total() int64 {
	if l.Quantity <= 0 || l.UnitPrice <= 0 {
		return l.UnitPrice * int64(l.Quantity)
	}
	if l.UnitPrice > math.MaxInt64/int64(l.Quantity) {
		return math.MaxInt64
	}
	return l.UnitPrice * int64(l.Quantity)
}

// ValidateQuantity rejects quantities outside 1..MaxQuantity.
func ValidateQuantity(op string, quantity int) error {
	if quantity <= 0 {
		return Validation(op, "quantity must be a positive integer")
	}
	if quantity > MaxQuantity {
		return Validation(op, fmt.Sprintf("quantity must not exceed %d", MaxQuantity))
	}
	return nil
}

// ProductRef is the catalog snapshot consumed when a product is added.
type ProductRef struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Image        string `json:"image"`
	Size         string `json:"size"`
	DisplayPrice string `json:"display_price"`
}

// AddLineInput carries an add-or-increment request to a persistence backend.
type AddLineInput struct {
	ProductID string `json:"product_id"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Size      string `json:"size"`
}

// Validate checks the shape rules shared by both persistence modes.
func (in AddLineInput) Validate(op string) error {
	if in.ProductID == "" {
		return Validation(op, "product id is required")
	}
	if err := ValidateQuantity(op, in.Quantity); err != nil {
		return err
	}
	if in.UnitPrice < 0 {
		return Validation(op, "unit price must not be negative")
	}
	if in.UnitPrice > MaxUnitPrice {
		return Validation(op, "unit price is out of range")
	}
	return nil
}

// LineView is the display shape with the derived total filled in.
type LineView struct {
	Line
	LineTotal int64 `json:"line_total"`
}

func ViewOf(lines []Line) []LineView {
	out := make([]LineView, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineView{Line: l, LineTotal: l.Total()})
	}
	return out
}

// TotalPrice sums unit price times quantity over lines, saturating at
// math.MaxInt64.
func TotalPrice(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		t := l.Total()
		if t > 0 && sum > math.MaxInt64-t {
			return math.MaxInt64
		}
		sum += t
	}
	return sum
}

// TotalItems sums quantities over lines, saturating at math.MaxInt.
func TotalItems(lines []Line) int {
	n := 0
	for _, l := range lines {
		if l.Quantity > 0 && n > math.MaxInt-l.Quantity {
			return math.MaxInt
		}
		n += l.Quantity
	}
	return n
}
