package receipt

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-retail/internal/masterdata"
)

const (
	receiptCodePrefix = "NK-"
	defaultShelfLife  = 30 * 24 * time.Hour
	// priceScale matches the NUMERIC(18,2) price columns.
	priceScale = 2
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)

	dateLayouts = []string{time.RFC3339, "2006-01-02", "02/01/2006"}

	errPriceMissing     = errors.New("price missing")
	errPriceNotPositive = errors.New("price must be positive")
)

// ReceiptCode formats NK-DDMMYYYY-XXXX where XXXX are the last four characters of
// id, left padded with zeros. createdAt should already be in the display zone.
func ReceiptCode(id string, createdAt time.Time) string {
	suffix := id
	if len(suffix) >= 4 {
		suffix = suffix[len(suffix)-4:]
	} else {
		suffix = strings.Repeat("0", 4-len(suffix)) + suffix
	}
	return receiptCodePrefix + createdAt.Format("02012006") + "-" + suffix
}

// BatchNumber keeps a supplied batch number or derives YYMMDD-XXXXXXXX from the
// receiving date and the tail of the product id.
func BatchNumber(supplied string, productID uuid.UUID, receivedAt time.Time) string {
	if trimmed := strings.TrimSpace(supplied); trimmed != "" {
		return trimmed
	}
	hex := strings.ReplaceAll(productID.String(), "-", "")
	return receivedAt.Format("060102") + "-" + strings.ToUpper(hex[len(hex)-8:])
}

// LineDates normalises the manufacture and expiry dates of a line. Missing values
// default silently; unparseable values default and produce a warning.
func LineDates(rawMfg, rawExp string, now time.Time) (mfg, exp time.Time, warnings []string) {
	mfg, ok := parseDate(rawMfg, now.Location())
	if !ok {
		mfg = now
		if strings.TrimSpace(rawMfg) != "" {
			warnings = append(warnings, WarnInvalidManufacture)
		}
	}
	exp, ok = parseDate(rawExp, now.Location())
	if !ok {
		exp = now.Add(defaultShelfLife)
		if strings.TrimSpace(rawExp) != "" {
			warnings = append(warnings, WarnInvalidExpiry)
		}
	}
	return mfg, exp, warnings
}

func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BaseQuantity converts a purchase quantity into base units.
func BaseQuantity(quantity decimal.Decimal, unit masterdata.Unit) decimal.Decimal {
	return quantity.Mul(unit.Factor())
}

// OutputPrice applies the category markup to a purchase price, rounding half away
// from zero to a whole amount. The result is never below 1.
func OutputPrice(input, discount decimal.Decimal) decimal.Decimal {
	price := input.Add(input.Mul(discount).Div(hundred)).Round(0)
	if price.LessThan(one) {
		return one
	}
	return price
}

// ParsePrice reads a JSON number or numeric string, rounds it to the stored scale and
// requires the rounded value to be positive.
func ParsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return decimal.Zero, errPriceMissing
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, err
		}
		text = strings.TrimSpace(s)
	}
	price, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, err
	}
	price = price.Round(priceScale)
	if price.Sign() <= 0 {
		return decimal.Zero, errPriceNotPositive
	}
	return price, nil
}

// Date filter buckets accepted by the receipt list.
const (
	BucketToday     = "0"
	BucketYesterday = "1"
	BucketWeek      = "7"
	BucketMonth     = "30"
	BucketLastMonth = "60"
	BucketCustom    = "custom"
)

// DateRange resolves a list bucket into a creation-time window in loc. An empty
// bucket means no filter and yields nil.
func DateRange(bucket, customDate string, now time.Time, loc *time.Location) (*Range, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	switch strings.TrimSpace(bucket) {
	case "":
		return nil, nil
	case BucketToday:
		return &Range{From: today, To: today.AddDate(0, 0, 1)}, nil
	case BucketYesterday:
		return &Range{From: today.AddDate(0, 0, -1), To: today}, nil
	case BucketWeek:
		return &Range{From: today.AddDate(0, 0, -6), To: today.AddDate(0, 0, 1)}, nil
	case BucketMonth:
		return &Range{From: month, To: month.AddDate(0, 1, 0)}, nil
	case BucketLastMonth:
		return &Range{From: month.AddDate(0, -1, 0), To: month}, nil
	case BucketCustom:
		day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(customDate), loc)
		if err != nil {
			return nil, &FieldError{Err: ErrInvalidDateFilter, Field: "customDate", Value: customDate}
		}
		return &Range{From: day, To: day.AddDate(0, 0, 1)}, nil
	default:
		return nil, &FieldError{Err: ErrInvalidDateFilter, Field: "date", Value: bucket}
	}
}
