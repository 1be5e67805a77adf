package models

// Closed-choice codes coming from the affiliate API. Upstream payloads carry
// them either as strings or as numeric codes and neither form is guaranteed
// to be well-formed, so every set resolves through a parse-or-default
// function with one fallback member. The fallback table:
//
//	currency                    -> CNY
//	yes/no flag                 -> NO
//	campaign application status -> NOT_APPLIED
//	commission mode             -> PERCENTAGE
//	promotion type              -> DISCOUNT
//	transaction order status    -> PENDING
//	settlement order status     -> PENDING

type Currency string

const (
	CurrencyCNY Currency = "CNY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"
	CurrencyHKD Currency = "HKD"
	CurrencyKRW Currency = "KRW"
	CurrencyAUD Currency = "AUD"
)

const DefaultCurrency = CurrencyCNY

var currencies = map[string]Currency{
	"CNY": CurrencyCNY,
	"USD": CurrencyUSD,
	"EUR": CurrencyEUR,
	"GBP": CurrencyGBP,
	"JPY": CurrencyJPY,
	"HKD": CurrencyHKD,
	"KRW": CurrencyKRW,
	"AUD": CurrencyAUD,
}

// ParseCurrency resolves a currency code against the known set.
// ok is false when the code is unrecognized and the default was substituted.
func ParseCurrency(code string) (Currency, bool) {
	if c, found := currencies[code]; found {
		return c, true
	}
	return DefaultCurrency, false
}

type YesNo string

const (
	No  YesNo = "NO"
	Yes YesNo = "YES"
)

const DefaultYesNo = No

func ParseYesNo(s string) (YesNo, bool) {
	switch s {
	case "YES", "Yes", "yes", "Y", "y", "1", "true":
		return Yes, true
	case "NO", "No", "no", "N", "n", "0", "false":
		return No, true
	}
	return DefaultYesNo, false
}

func YesNoFromCode(code int64) (YesNo, bool) {
	switch code {
	case 0:
		return No, true
	case 1:
		return Yes, true
	}
	return DefaultYesNo, false
}

// ApplicationStatus is the publisher's application state for a campaign.
type ApplicationStatus string

const (
	ApplicationNotApplied ApplicationStatus = "NOT_APPLIED"
	ApplicationApplying   ApplicationStatus = "APPLYING"
	ApplicationApproved   ApplicationStatus = "APPROVED"
	ApplicationRejected   ApplicationStatus = "REJECTED"
)

const DefaultApplicationStatus = ApplicationNotApplied

func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	switch ApplicationStatus(s) {
	case ApplicationNotApplied, ApplicationApplying, ApplicationApproved, ApplicationRejected:
		return ApplicationStatus(s), true
	}
	return DefaultApplicationStatus, false
}

func ApplicationStatusFromCode(code int64) (ApplicationStatus, bool) {
	switch code {
	case 0:
		return ApplicationNotApplied, true
	case 1:
		return ApplicationApplying, true
	case 2:
		return ApplicationApproved, true
	case 3:
		return ApplicationRejected, true
	}
	return DefaultApplicationStatus, false
}

// CommissionMode selects which field of a CommissionRule is meaningful:
// PERCENTAGE reads ratio, FIXED reads commission.
type CommissionMode string

const (
	ModePercentage CommissionMode = "PERCENTAGE"
	ModeFixed      CommissionMode = "FIXED"
)

const DefaultCommissionMode = ModePercentage

func ParseCommissionMode(s string) (CommissionMode, bool) {
	switch CommissionMode(s) {
	case ModePercentage, ModeFixed:
		return CommissionMode(s), true
	}
	return DefaultCommissionMode, false
}

func CommissionModeFromCode(code int64) (CommissionMode, bool) {
	switch code {
	case 1:
		return ModePercentage, true
	case 2:
		return ModeFixed, true
	}
	return DefaultCommissionMode, false
}

type PromotionType string

const (
	PromotionDiscount PromotionType = "DISCOUNT"
	PromotionCoupon   PromotionType = "COUPON"
)

const DefaultPromotionType = PromotionDiscount

func ParsePromotionType(s string) (PromotionType, bool) {
	switch PromotionType(s) {
	case PromotionDiscount, PromotionCoupon:
		return PromotionType(s), true
	}
	return DefaultPromotionType, false
}

func PromotionTypeFromCode(code int64) (PromotionType, bool) {
	switch code {
	case 1:
		return PromotionDiscount, true
	case 2:
		return PromotionCoupon, true
	}
	return DefaultPromotionType, false
}

// OrderStatus is shared by transactions and settlements. PENDING is the only
// non-terminal state; CONFIRMED is the transaction-side terminal success state
// and APPROVED the settlement-side one.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusApproved  OrderStatus = "APPROVED"
	StatusRejected  OrderStatus = "REJECTED"
)

const DefaultOrderStatus = StatusPending

// IsTerminal reports whether no further status transition is modeled.
func (s OrderStatus) IsTerminal() bool {
	return s != StatusPending
}

func ParseTransactionStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPending, StatusConfirmed, StatusRejected:
		return OrderStatus(s), true
	}
	return DefaultOrderStatus, false
}

func TransactionStatusFromCode(code int64) (OrderStatus, bool) {
	switch code {
	case 1:
		return StatusPending, true
	case 2:
		return StatusConfirmed, true
	case 3:
		return StatusRejected, true
	}
	return DefaultOrderStatus, false
}

func ParseSettlementStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return OrderStatus(s), true
	}
	return DefaultOrderStatus, false
}

func SettlementStatusFromCode(code int64) (OrderStatus, bool) {
	switch code {
	case 1:
		return StatusPending, true
	case 2:
		return StatusApproved, true
	case 3:
		return StatusRejected, true
	}
	return DefaultOrderStatus, false
}
