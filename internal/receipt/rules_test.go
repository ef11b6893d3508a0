package receipt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-retail/internal/masterdata"
)

func TestReceiptCode(t *testing.T) {
	created := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "NK-05032024-00ab", ReceiptCode("3f2a1c9e-7b41-4d2a-9c1e-5d6e7f8a00ab", created))
	assert.Equal(t, "NK-05032024-00ab", ReceiptCode("ab", created))
	assert.Equal(t, "NK-05032024-0000", ReceiptCode("", created))
	assert.Equal(t, "NK-05032024-wXyZ", ReceiptCode("id-wXyZ", created))
}

func TestOutputPrice(t *testing.T) {
	cases := []struct {
		input, discount, want string
	}{
		{"100", "20", "120"},
		{"1", "0", "1"},
		{"0.2", "0", "1"},
		{"1000", "20", "1200"},
		{"10", "5", "11"},  // 10.5 rounds up
		{"10", "4", "10"},  // 10.4 rounds down
		{"999", "15", "1149"},
	}
	for _, tc := range cases {
		got := OutputPrice(decimal.RequireFromString(tc.input), decimal.RequireFromString(tc.discount))
		assert.Truef(t, got.Equal(decimal.RequireFromString(tc.want)), "OutputPrice(%s, %s) = %s", tc.input, tc.discount, got)
	}
}

func TestBatchNumber(t *testing.T) {
	pid := uuid.MustParse("3f2a1c9e-7b41-4d2a-9c1e-5d6e7f8a00ab")
	at := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "LOT-7", BatchNumber("  LOT-7 ", pid, at))
	assert.Equal(t, "240305-7F8A00AB", BatchNumber("", pid, at))
	assert.Equal(t, "240305-7F8A00AB", BatchNumber("   ", pid, at))
}

func TestLineDates(t *testing.T) {
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

	mfg, exp, warnings := LineDates("2024-01-10", "31/12/2025", now)
	assert.Empty(t, warnings)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), mfg)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), exp)

	mfg, exp, warnings = LineDates("", "", now)
	assert.Empty(t, warnings)
	assert.Equal(t, now, mfg)
	assert.Equal(t, now.AddDate(0, 0, 30), exp)

	mfg, exp, warnings = LineDates("yesterday", "2025-02-30", now)
	assert.Equal(t, []string{WarnInvalidManufacture, WarnInvalidExpiry}, warnings)
	assert.Equal(t, now, mfg)
	assert.Equal(t, now.AddDate(0, 0, 30), exp)

	mfg, _, _ = LineDates("2024-01-10T08:00:00+07:00", "", now)
	assert.True(t, mfg.Equal(time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC)))
}

func TestBaseQuantity(t *testing.T) {
	qty := decimal.NewFromInt(5)
	ten := masterdata.Unit{Equal: decimal.NewNullDecimal(decimal.NewFromInt(10))}
	assert.True(t, BaseQuantity(qty, ten).Equal(decimal.NewFromInt(50)))
	assert.True(t, BaseQuantity(qty, masterdata.Unit{}).Equal(qty))
	zero := masterdata.Unit{Equal: decimal.NewNullDecimal(decimal.Zero)}
	assert.True(t, BaseQuantity(qty, zero).Equal(qty))
}

func TestParsePrice(t *testing.T) {
	for _, raw := range []string{`1000`, `"1000"`, `" 12.5 "`, `1e3`} {
		price, err := ParsePrice(json.RawMessage(raw))
		require.NoErrorf(t, err, "price %s", raw)
		assert.True(t, price.IsPositive())
	}
	for _, raw := range []string{``, `null`, `0`, `-5`, `"abc"`, `true`, `"0"`} {
		_, err := ParsePrice(json.RawMessage(raw))
		assert.Errorf(t, err, "price %s", raw)
	}
}

func TestParsePriceRoundsToStoredScale(t *testing.T) {
	price, err := ParsePrice(json.RawMessage(`"10.555"`))
	require.NoError(t, err)
	assert.Equal(t, "10.56", price.String())

	price, err = ParsePrice(json.RawMessage(`7.004`))
	require.NoError(t, err)
	assert.Equal(t, "7", price.String())

	_, err = ParsePrice(json.RawMessage(`0.001`))
	assert.ErrorIs(t, err, errPriceNotPositive)
}

func TestDateRange(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	// 2024-03-05 23:30 UTC is already 2024-03-06 in loc.
	now := time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, loc) }

	cases := []struct {
		bucket, custom string
		from, to       time.Time
	}{
		{BucketToday, "", day(2024, 3, 6), day(2024, 3, 7)},
		{BucketYesterday, "", day(2024, 3, 5), day(2024, 3, 6)},
		{BucketWeek, "", day(2024, 2, 29), day(2024, 3, 7)},
		{BucketMonth, "", day(2024, 3, 1), day(2024, 4, 1)},
		{BucketLastMonth, "", day(2024, 2, 1), day(2024, 3, 1)},
		{BucketCustom, "2024-01-15", day(2024, 1, 15), day(2024, 1, 16)},
	}
	for _, tc := range cases {
		window, err := DateRange(tc.bucket, tc.custom, now, loc)
		require.NoError(t, err, tc.bucket)
		require.NotNil(t, window, tc.bucket)
		assert.True(t, tc.from.Equal(window.From), "%s from %s", tc.bucket, window.From)
		assert.True(t, tc.to.Equal(window.To), "%s to %s", tc.bucket, window.To)
	}

	window, err := DateRange("", "", now, loc)
	require.NoError(t, err)
	assert.Nil(t, window)

	_, err = DateRange("14", "", now, loc)
	require.ErrorIs(t, err, ErrInvalidDateFilter)
	_, err = DateRange(BucketCustom, "15/01/2024", now, loc)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "customDate", fe.Field)
}

func TestCreateInputKeepsSubmittedDetails(t *testing.T) {
	body := `{"supplier_id":"s","supplier_receipt_id":"f","product_details":[{"_id":"p","unit_id":"u","quantity":5,"input_price":"1000","extra":true}]}`
	var in CreateInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	require.Len(t, in.ProductDetails, 1)
	assert.Equal(t, "p", in.ProductDetails[0].ProductID)
	assert.True(t, in.ProductDetails[0].Quantity.Equal(decimal.NewFromInt(5)))

	snapshot, err := in.Snapshot()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"_id":"p","unit_id":"u","quantity":5,"input_price":"1000","extra":true}]`, string(snapshot))

	var empty CreateInput
	require.NoError(t, json.Unmarshal([]byte(`{"supplier_id":"s"}`), &empty))
	snapshot, err = empty.Snapshot()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(snapshot))
}
