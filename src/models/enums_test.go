package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCurrency_KnownAndUnknown(t *testing.T) {
	tests := []struct {
		code string
		want Currency
		ok   bool
	}{
		{"CNY", CurrencyCNY, true},
		{"USD", CurrencyUSD, true},
		{"EUR", CurrencyEUR, true},
		{"XYZ", CurrencyCNY, false},
		{"", CurrencyCNY, false},
		{"usd", CurrencyCNY, false}, // codes are case-sensitive on the wire
	}
	for _, tt := range tests {
		got, ok := ParseCurrency(tt.code)
		assert.Equal(t, tt.want, got, "code %q", tt.code)
		assert.Equal(t, tt.ok, ok, "code %q", tt.code)
	}
}

func TestParseYesNo(t *testing.T) {
	for _, s := range []string{"YES", "yes", "Y", "1", "true"} {
		got, ok := ParseYesNo(s)
		assert.Equal(t, Yes, got, "input %q", s)
		assert.True(t, ok, "input %q", s)
	}
	for _, s := range []string{"NO", "no", "N", "0", "false"} {
		got, ok := ParseYesNo(s)
		assert.Equal(t, No, got, "input %q", s)
		assert.True(t, ok, "input %q", s)
	}
	got, ok := ParseYesNo("maybe")
	assert.Equal(t, No, got)
	assert.False(t, ok)

	got, ok = YesNoFromCode(1)
	assert.Equal(t, Yes, got)
	assert.True(t, ok)
	got, ok = YesNoFromCode(42)
	assert.Equal(t, No, got)
	assert.False(t, ok)
}

func TestApplicationStatusFallback(t *testing.T) {
	got, ok := ParseApplicationStatus("APPROVED")
	assert.Equal(t, ApplicationApproved, got)
	assert.True(t, ok)

	got, ok = ParseApplicationStatus("WHATEVER")
	assert.Equal(t, ApplicationNotApplied, got)
	assert.False(t, ok)

	got, ok = ApplicationStatusFromCode(3)
	assert.Equal(t, ApplicationRejected, got)
	assert.True(t, ok)

	got, ok = ApplicationStatusFromCode(99)
	assert.Equal(t, ApplicationNotApplied, got)
	assert.False(t, ok)
}

func TestCommissionModeFallback(t *testing.T) {
	got, ok := ParseCommissionMode("FIXED")
	assert.Equal(t, ModeFixed, got)
	assert.True(t, ok)

	got, ok = ParseCommissionMode("PERCENT") // unrecognized
	assert.Equal(t, ModePercentage, got)
	assert.False(t, ok)

	got, ok = CommissionModeFromCode(2)
	assert.Equal(t, ModeFixed, got)
	assert.True(t, ok)

	got, ok = CommissionModeFromCode(0)
	assert.Equal(t, ModePercentage, got)
	assert.False(t, ok)
}

func TestPromotionTypeFallback(t *testing.T) {
	got, ok := ParsePromotionType("COUPON")
	assert.Equal(t, PromotionCoupon, got)
	assert.True(t, ok)

	got, ok = ParsePromotionType("FLASH_SALE")
	assert.Equal(t, PromotionDiscount, got)
	assert.False(t, ok)
}

func TestOrderStatusParsing(t *testing.T) {
	got, ok := TransactionStatusFromCode(2)
	assert.Equal(t, StatusConfirmed, got)
	assert.True(t, ok)

	got, ok = TransactionStatusFromCode(999)
	assert.Equal(t, StatusPending, got)
	assert.False(t, ok)

	got, ok = SettlementStatusFromCode(2)
	assert.Equal(t, StatusApproved, got)
	assert.True(t, ok)

	// CONFIRMED is a transaction-side status; settlements reject it.
	got, ok = ParseSettlementStatus("CONFIRMED")
	assert.Equal(t, StatusPending, got)
	assert.False(t, ok)
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
}
