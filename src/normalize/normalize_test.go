package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/linkpulse/backend/src/models"
)

// decode runs a JSON document through encoding/json so raw values carry the
// exact dynamic types sync payloads have at runtime (numbers as float64).
func decode(t *testing.T, doc string) Payload {
	t.Helper()
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(doc), &p))
	return p
}

func TestString(t *testing.T) {
	p := decode(t, `{"name": "Spring Sale", "count": 3}`)

	got, ok := p.String("name", "")
	assert.Equal(t, "Spring Sale", got)
	assert.True(t, ok)

	// Wrong type defaults.
	got, ok = p.String("count", "")
	assert.Equal(t, "", got)
	assert.False(t, ok)

	// Absent key defaults.
	got, ok = p.String("missing", "fallback")
	assert.Equal(t, "fallback", got)
	assert.False(t, ok)
}

func TestOptionalString(t *testing.T) {
	p := decode(t, `{"balance_time": "2024-05", "bad": 12}`)

	got, ok := p.OptionalString("balance_time")
	require.NotNil(t, got)
	assert.Equal(t, "2024-05", *got)
	assert.True(t, ok)

	// Absence is not a substitution for an optional field.
	got, ok = p.OptionalString("missing")
	assert.Nil(t, got)
	assert.True(t, ok)

	got, ok = p.OptionalString("bad")
	assert.Nil(t, got)
	assert.False(t, ok)
}

func TestInt64(t *testing.T) {
	p := decode(t, `{"id": 900, "ratio": 0.5, "order_id": "O1"}`)

	got, ok := p.Int64("id", 0)
	assert.Equal(t, int64(900), got)
	assert.True(t, ok)

	// Non-integral number defaults.
	got, ok = p.Int64("ratio", -1)
	assert.Equal(t, int64(-1), got)
	assert.False(t, ok)

	// String is not coerced.
	got, ok = p.Int64("order_id", 0)
	assert.Equal(t, int64(0), got)
	assert.False(t, ok)
}

func TestOptionalInt64(t *testing.T) {
	p := decode(t, `{"user_id": 123, "campaign_id": "77"}`)

	got, ok := p.OptionalInt64("user_id")
	require.NotNil(t, got)
	assert.Equal(t, int64(123), *got)
	assert.True(t, ok)

	got, ok = p.OptionalInt64("missing")
	assert.Nil(t, got)
	assert.True(t, ok)

	got, ok = p.OptionalInt64("campaign_id")
	assert.Nil(t, got)
	assert.False(t, ok)
}

func TestDecimal(t *testing.T) {
	p := decode(t, `{"total_price": "200.00", "commission": 15.5, "bad": "abc"}`)

	got, ok := p.Decimal("total_price", "0")
	assert.Equal(t, "200", got) // canonical decimal form
	assert.True(t, ok)

	got, ok = p.Decimal("commission", "0")
	assert.Equal(t, "15.5", got)
	assert.True(t, ok)

	got, ok = p.Decimal("bad", "0")
	assert.Equal(t, "0", got)
	assert.False(t, ok)

	got, ok = p.Decimal("missing", "0")
	assert.Equal(t, "0", got)
	assert.False(t, ok)
}

func TestEnumFallbacks(t *testing.T) {
	p := decode(t, `{
		"currency": "XYZ",
		"order_status": 999,
		"mode": "BOGUS",
		"promotion_type": 3,
		"application_status": true,
		"cross_device": 1
	}`)

	currency, ok := p.Currency("currency")
	assert.Equal(t, models.CurrencyCNY, currency, "unknown currency degrades to CNY")
	assert.False(t, ok)

	status, ok := p.TransactionStatus("order_status")
	assert.Equal(t, models.StatusPending, status, "unknown order status degrades to PENDING")
	assert.False(t, ok)

	settleStatus, ok := p.SettlementStatus("order_status")
	assert.Equal(t, models.StatusPending, settleStatus)
	assert.False(t, ok)

	mode, ok := p.CommissionMode("mode")
	assert.Equal(t, models.ModePercentage, mode)
	assert.False(t, ok)

	promo, ok := p.PromotionType("promotion_type")
	assert.Equal(t, models.PromotionDiscount, promo)
	assert.False(t, ok)

	appStatus, ok := p.ApplicationStatus("application_status")
	assert.Equal(t, models.ApplicationNotApplied, appStatus)
	assert.False(t, ok)

	flag, ok := p.YesNo("cross_device")
	assert.Equal(t, models.Yes, flag, "numeric yes/no codes resolve")
	assert.True(t, ok)
}

func TestEnumKnownValues(t *testing.T) {
	p := decode(t, `{"currency": "USD", "order_status": 2, "mode": 2, "promotion_type": "COUPON"}`)

	currency, ok := p.Currency("currency")
	assert.Equal(t, models.CurrencyUSD, currency)
	assert.True(t, ok)

	status, ok := p.TransactionStatus("order_status")
	assert.Equal(t, models.StatusConfirmed, status)
	assert.True(t, ok)

	settleStatus, ok := p.SettlementStatus("order_status")
	assert.Equal(t, models.StatusApproved, settleStatus)
	assert.True(t, ok)

	mode, ok := p.CommissionMode("mode")
	assert.Equal(t, models.ModeFixed, mode)
	assert.True(t, ok)

	promo, ok := p.PromotionType("promotion_type")
	assert.Equal(t, models.PromotionCoupon, promo)
	assert.True(t, ok)
}

func TestHas(t *testing.T) {
	p := decode(t, `{"user_id": null}`)
	assert.True(t, p.Has("user_id"), "explicit null still counts as present")
	assert.False(t, p.Has("order_id"))
}
