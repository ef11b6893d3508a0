package masterdata

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the requested master record does not exist.
var ErrNotFound = errors.New("masterdata: not found")

// Supplier is the business a purchase is received from.
type Supplier struct {
	ID        uuid.UUID `json:"_id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	Phone     string    `json:"phone" db:"phone"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Product is a catalog item with its current purchase and selling price.
type Product struct {
	ID          uuid.UUID       `json:"_id" db:"id"`
	SupplierID  *uuid.UUID      `json:"supplier_id,omitempty" db:"supplier_id"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty" db:"category_id"`
	Name        string          `json:"name" db:"name"`
	InputPrice  decimal.Decimal `json:"input_price" db:"input_price"`
	OutputPrice decimal.Decimal `json:"output_price" db:"output_price"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Category carries the markup percentage applied to purchase prices.
type Category struct {
	ID        uuid.UUID       `json:"_id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Discount  decimal.Decimal `json:"discount" db:"discount"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// Unit converts a purchase quantity into base units.
type Unit struct {
	ID        uuid.UUID           `json:"_id" db:"id"`
	Name      string              `json:"name" db:"name"`
	Equal     decimal.NullDecimal `json:"equal" db:"equal"`
	CreatedAt time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt time.Time           `json:"updated_at" db:"updated_at"`
}

// Factor returns how many base units one unit represents. Missing or non-positive
// factors count as 1.
func (u Unit) Factor() decimal.Decimal {
	if !u.Equal.Valid || u.Equal.Decimal.Sign() <= 0 {
		return decimal.NewFromInt(1)
	}
	return u.Equal.Decimal
}
