package orderform

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order form.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ErrNotFound indicates the order form does not exist.
var ErrNotFound = errors.New("orderform: not found")

// OrderForm is a purchase request sent to a supplier and later fulfilled by a
// warehouse receipt.
type OrderForm struct {
	ID         uuid.UUID `json:"_id" db:"id"`
	SupplierID uuid.UUID `json:"supplier_id" db:"supplier_id"`
	Status     Status    `json:"status" db:"status"`
	Lines      []Line    `json:"product_details" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Line is a requested product on an order form.
type Line struct {
	ProductID  uuid.UUID           `json:"_id" db:"product_id"`
	UnitID     uuid.UUID           `json:"unit_id" db:"unit_id"`
	Quantity   decimal.Decimal     `json:"quantity" db:"quantity"`
	InputPrice decimal.NullDecimal `json:"input_price" db:"input_price"`
	Note       string              `json:"note" db:"note"`
}
