package receipt

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type preparedLine struct {
	index     int
	input     LineInput
	productID uuid.UUID
	unitID    uuid.UUID
	quantity  decimal.Decimal
	price     decimal.Decimal
}

type prepared struct {
	supplierID  uuid.UUID
	orderFormID uuid.UUID
	lines       []preparedLine
}

// productIDs returns the distinct product ids in submission order.
func (p prepared) productIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(p.lines))
	ids := make([]uuid.UUID, 0, len(p.lines))
	for _, line := range p.lines {
		if _, ok := seen[line.productID]; ok {
			continue
		}
		seen[line.productID] = struct{}{}
		ids = append(ids, line.productID)
	}
	return ids
}

// prepare checks every reference format, price and quantity before anything is
// written, so a rejected request leaves no trace.
func prepare(in CreateInput) (prepared, error) {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return prepared{}, &FieldError{
				Err:   ErrInvalidReference,
				Field: fieldPath(verrs[0].Namespace()),
				Value: fmt.Sprint(verrs[0].Value()),
			}
		}
		return prepared{}, err
	}

	var (
		out prepared
		err error
	)
	if out.supplierID, err = parseID("supplier_id", in.SupplierID); err != nil {
		return prepared{}, err
	}
	if out.orderFormID, err = parseID("supplier_receipt_id", in.SupplierReceiptID); err != nil {
		return prepared{}, err
	}

	out.lines = make([]preparedLine, len(in.ProductDetails))
	for i, line := range in.ProductDetails {
		prefix := fmt.Sprintf("product_details[%d]", i)
		pl := preparedLine{index: i, input: line}
		if pl.productID, err = parseID(prefix+"._id", line.ProductID); err != nil {
			return prepared{}, err
		}
		if pl.unitID, err = parseID(prefix+".unit_id", line.UnitID); err != nil {
			return prepared{}, err
		}
		out.lines[i] = pl
	}

	for i := range out.lines {
		line := &out.lines[i]
		prefix := fmt.Sprintf("product_details[%d]", i)
		if line.price, err = ParsePrice(line.input.InputPrice); err != nil {
			return prepared{}, &FieldError{Err: ErrInvalidPrice, Field: prefix + ".input_price", Value: line.input.ProductID}
		}
		if line.input.Quantity.Sign() <= 0 {
			return prepared{}, &FieldError{Err: ErrInvalidQuantity, Field: prefix + ".quantity", Value: line.input.ProductID}
		}
		line.quantity = line.input.Quantity
	}
	return out, nil
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, &FieldError{Err: ErrInvalidReference, Field: field, Value: raw}
	}
	return id, nil
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}
