package catalog

import (
	"strings"
	"time"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// RatingUnrated is the wire sentinel for an item without ratings.
const RatingUnrated = -1.0

// Item is a snapshot of a catalog record. Values returned by the store are
// copies; mutating them has no effect on the catalog.
type Item struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    enums.Category  `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Description string          `json:"description"`
	SellerID    string          `json:"seller_id"`
	Rating      float64         `json:"rating"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ItemInput is the candidate record supplied by a seller.
type ItemInput struct {
	SellerID    string
	Name        string
	Category    enums.Category
	Price       decimal.Decimal
	Quantity    int
	Description string
}

func (in ItemInput) normalize() (ItemInput, error) {
	in.SellerID = strings.TrimSpace(in.SellerID)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	if in.SellerID == "" {
		return in, pkgerrors.New(pkgerrors.CodeValidation, "seller identity is required")
	}
	if in.Name == "" {
		return in, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if !in.Category.IsValid() {
		return in, pkgerrors.New(pkgerrors.CodeValidation, "invalid item category").
			WithDetails(map[string]any{"category": in.Category.String()})
	}
	if err := validateStock(in.Quantity, in.Price); err != nil {
		return in, err
	}
	return in, nil
}

func validateStock(quantity int, price decimal.Decimal) error {
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative").
			WithDetails(map[string]any{"quantity": quantity})
	}
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative").
			WithDetails(map[string]any{"price": price.String()})
	}
	return nil
}
