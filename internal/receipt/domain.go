package receipt

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnspecifiedUser is recorded on audit entries when the submitter gave no name.
const UnspecifiedUser = "unspecified"

// WarehouseReceipt records goods received against one order form.
type WarehouseReceipt struct {
	ID                uuid.UUID       `json:"_id" db:"id"`
	SupplierID        uuid.UUID       `json:"supplier_id" db:"supplier_id"`
	SupplierReceiptID uuid.UUID       `json:"supplier_receipt_id" db:"supplier_receipt_id"`
	ReceiptCode       string          `json:"receipt_code" db:"receipt_code"`
	ProductDetails    json.RawMessage `json:"product_details" db:"product_details"`
	UserName          string          `json:"user_name" db:"user_name"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateInput is the submitted receipt payload.
type CreateInput struct {
	SupplierID        string      `json:"supplier_id" validate:"required"`
	SupplierReceiptID string      `json:"supplier_receipt_id" validate:"required"`
	ProductDetails    []LineInput `json:"product_details" validate:"dive"`
	ReceiptCode       string      `json:"receipt_code,omitempty"`
	UserName          string      `json:"user_name,omitempty"`

	rawDetails json.RawMessage
}

// LineInput is one received product line. InputPrice is kept raw so numeric strings
// and numbers are both accepted.
type LineInput struct {
	ProductID         string          `json:"_id" validate:"required"`
	UnitID            string          `json:"unit_id" validate:"required"`
	Quantity          decimal.Decimal `json:"quantity"`
	Note              string          `json:"note,omitempty"`
	InputPrice        json.RawMessage `json:"input_price,omitempty"`
	BatchNumber       string          `json:"batch_number,omitempty"`
	DateOfManufacture string          `json:"date_of_manufacture,omitempty"`
	ExpiryDate        string          `json:"expiry_date,omitempty"`
}

// UnmarshalJSON keeps the submitted product_details bytes so the receipt can store
// them exactly as sent.
func (in *CreateInput) UnmarshalJSON(data []byte) error {
	type alias CreateInput
	var aux struct {
		alias
		ProductDetails json.RawMessage `json:"product_details"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*in = CreateInput(aux.alias)
	in.ProductDetails = nil
	in.rawDetails = nil
	if len(aux.ProductDetails) == 0 || string(aux.ProductDetails) == "null" {
		return nil
	}
	if err := json.Unmarshal(aux.ProductDetails, &in.ProductDetails); err != nil {
		return err
	}
	in.rawDetails = aux.ProductDetails
	return nil
}

// Snapshot returns the product_details document persisted with the receipt.
func (in CreateInput) Snapshot() (json.RawMessage, error) {
	if len(in.rawDetails) > 0 {
		return in.rawDetails, nil
	}
	details := in.ProductDetails
	if details == nil {
		details = []LineInput{}
	}
	return json.Marshal(details)
}

// NewReceipt is the row inserted by the persister.
type NewReceipt struct {
	SupplierID        uuid.UUID
	SupplierReceiptID uuid.UUID
	ReceiptCode       string
	ProductDetails    json.RawMessage
	UserName          string
	At                time.Time
}

// LineStatus is the outcome of one receipt line.
type LineStatus string

const (
	LineApplied LineStatus = "applied"
	// LinePartial means stock was merged but product prices were not updated.
	LinePartial LineStatus = "partial"
	LineSkipped LineStatus = "skipped"
	LineFailed  LineStatus = "failed"
)

// Line result reasons.
const (
	ReasonProductNotFound   = "product_not_found"
	ReasonUnitNotFound      = "unit_not_found"
	ReasonPriceUpdateFailed = "price_update_failed"
	ReasonBatchMergeFailed  = "batch_merge_failed"
)

// Line result warnings.
const (
	WarnCategoryMissing    = "category_missing"
	WarnInvalidManufacture = "invalid_date_of_manufacture"
	WarnInvalidExpiry      = "invalid_expiry_date"
	WarnStockHistoryFailed = "stock_history_failed"
	WarnPriceHistoryFailed = "price_history_failed"
)

// LineResult reports what happened to one submitted line.
type LineResult struct {
	Index        int             `json:"index"`
	ProductID    string          `json:"product_id"`
	Status       LineStatus      `json:"status"`
	Reason       string          `json:"reason,omitempty"`
	BatchNumber  string          `json:"batch_number,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	BatchCreated bool            `json:"batch_created"`
	Warnings     []string        `json:"warnings,omitempty"`
}

// Result is the body returned after a receipt is created.
type Result struct {
	WarehouseReceipt
	LineResults        []LineResult `json:"line_results"`
	OrderFormCompleted bool         `json:"order_form_completed"`
}

// Range is a half-open [From, To) creation-time window.
type Range struct {
	From time.Time
	To   time.Time
}
