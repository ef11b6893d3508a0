package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Action classifies a stock movement.
type Action string

const (
	ActionImport   Action = "import"
	ActionExport   Action = "export"
	ActionReturn   Action = "return"
	ActionExchange Action = "exchange"
)

var (
	// ErrInvalidQuantity indicates a non-positive merge quantity.
	ErrInvalidQuantity = errors.New("inventory: quantity must be positive")
	// ErrBatchRequired indicates a merge without product or batch number.
	ErrBatchRequired = errors.New("inventory: product and batch number required")
)

// Batch is a lot of one product identified by (product_id, batch_number).
// Inventory always equals InputQuantity minus OutputQuantity.
type Batch struct {
	ID                uuid.UUID       `json:"_id" db:"id"`
	ProductID         uuid.UUID       `json:"product_id" db:"product_id"`
	BatchNumber       string          `json:"batch_number" db:"batch_number"`
	Barcode           string          `json:"barcode" db:"barcode"`
	InputQuantity     decimal.Decimal `json:"input_quantity" db:"input_quantity"`
	OutputQuantity    decimal.Decimal `json:"output_quantity" db:"output_quantity"`
	Inventory         decimal.Decimal `json:"inventory" db:"inventory"`
	DateOfManufacture time.Time       `json:"date_of_manufacture" db:"date_of_manufacture"`
	ExpiryDate        time.Time       `json:"expiry_date" db:"expiry_date"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// MergeInput adds received base-unit quantity to a batch, creating it when absent.
// The dates only apply to a newly created batch.
type MergeInput struct {
	ProductID      uuid.UUID
	BatchNumber    string
	Quantity       decimal.Decimal
	ManufacturedAt time.Time
	ExpiresAt      time.Time
	At             time.Time
}

// MergeResult is the batch state after a merge.
type MergeResult struct {
	Batch   Batch
	Created bool
}

// StockHistory is an append-only inventory movement record.
type StockHistory struct {
	ID               uuid.UUID       `json:"_id" db:"id"`
	ProductID        uuid.UUID       `json:"product_id" db:"product_id"`
	BatchNumber      string          `json:"batch_number" db:"batch_number"`
	Action           Action          `json:"action" db:"action"`
	Quantity         decimal.Decimal `json:"quantity" db:"quantity"`
	RelatedReceiptID *uuid.UUID      `json:"related_receipt_id,omitempty" db:"related_receipt_id"`
	Note             string          `json:"note" db:"note"`
	UserName         string          `json:"user_name" db:"user_name"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// PriceHistory is an append-only record of a product price change.
type PriceHistory struct {
	ID             uuid.UUID       `json:"_id" db:"id"`
	ProductID      uuid.UUID       `json:"product_id" db:"product_id"`
	OldInputPrice  decimal.Decimal `json:"old_input_price" db:"old_input_price"`
	NewInputPrice  decimal.Decimal `json:"new_input_price" db:"new_input_price"`
	OldOutputPrice decimal.Decimal `json:"old_output_price" db:"old_output_price"`
	NewOutputPrice decimal.Decimal `json:"new_output_price" db:"new_output_price"`
	ChangedAt      time.Time       `json:"changed_at" db:"changed_at"`
	UserName       string          `json:"user_name" db:"user_name"`
	Note           string          `json:"note" db:"note"`
}

// Validate checks the merge input before it reaches storage.
func (in MergeInput) Validate() error {
	if in.ProductID == uuid.Nil || in.BatchNumber == "" {
		return ErrBatchRequired
	}
	if in.Quantity.Sign() <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}
