// Package normalize coerces loosely-typed affiliate API payload fields into
// safely-typed values. The API is a trust boundary: a wrong scalar type or an
// unrecognized enum code degrades to a documented default instead of failing
// the sync item. Every substitution is logged so data quality stays auditable.
package normalize

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
	"github.com/username/linkpulse/backend/src/logger"
	"github.com/username/linkpulse/backend/src/models"
)

// Payload is one decoded item from an affiliate API response array. No key's
// presence or type is guaranteed.
type Payload map[string]any

// Has reports whether the key is present at all, whatever its type.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func warnDefault(field string, raw any, substituted any) {
	if logger.L != nil {
		logger.L.Warn("payload field defaulted", "field", field, "raw", raw, "default", substituted)
	}
}

// String returns the raw value iff it is a string, else def.
// The second return is false when the default was substituted.
func (p Payload) String(key, def string) (string, bool) {
	raw, present := p[key]
	if present {
		if s, ok := raw.(string); ok {
			return s, true
		}
	}
	warnDefault(key, raw, def)
	return def, false
}

// OptionalString returns nil (without logging) when the key is absent, and
// defaults to nil when the value has the wrong type.
func (p Payload) OptionalString(key string) (*string, bool) {
	raw, present := p[key]
	if !present {
		return nil, true
	}
	if s, ok := raw.(string); ok {
		return &s, true
	}
	warnDefault(key, raw, nil)
	return nil, false
}

func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		// encoding/json decodes every number as float64; only integral
		// values count as integers here.
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int64(v), true
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Int64 returns the raw value iff it is an integer, else def.
func (p Payload) Int64(key string, def int64) (int64, bool) {
	raw, present := p[key]
	if present {
		if n, ok := toInt64(raw); ok {
			return n, true
		}
	}
	warnDefault(key, raw, def)
	return def, false
}

// OptionalInt64 returns nil (without logging) when the key is absent, and
// defaults to nil when the value is not an integer.
func (p Payload) OptionalInt64(key string) (*int64, bool) {
	raw, present := p[key]
	if !present {
		return nil, true
	}
	if n, ok := toInt64(raw); ok {
		return &n, true
	}
	warnDefault(key, raw, nil)
	return nil, false
}

// Decimal returns the canonical string form of a decimal field. Accepts a
// decimal string or a JSON number; anything else defaults.
func (p Payload) Decimal(key, def string) (string, bool) {
	raw, present := p[key]
	if present {
		switch v := raw.(type) {
		case string:
			if d, err := decimal.NewFromString(v); err == nil {
				return d.String(), true
			}
		case float64:
			return decimal.NewFromFloat(v).String(), true
		case json.Number:
			if d, err := decimal.NewFromString(v.String()); err == nil {
				return d.String(), true
			}
		}
	}
	warnDefault(key, raw, def)
	return def, false
}

// OptionalDecimal is Decimal for nullable fields: absent key means nil,
// wrong type means nil with a logged substitution.
func (p Payload) OptionalDecimal(key string) (*string, bool) {
	raw, present := p[key]
	if !present {
		return nil, true
	}
	switch v := raw.(type) {
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			s := d.String()
			return &s, true
		}
	case float64:
		s := decimal.NewFromFloat(v).String()
		return &s, true
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			s := d.String()
			return &s, true
		}
	}
	warnDefault(key, raw, nil)
	return nil, false
}

// enum resolves a closed-choice field delivered as either a string code or a
// numeric code. parse/fromCode each report whether the raw value was
// recognized; anything else falls back to the set's default member.
func enum[T ~string](p Payload, key string, parse func(string) (T, bool), fromCode func(int64) (T, bool), def T) (T, bool) {
	raw, present := p[key]
	if present {
		switch v := raw.(type) {
		case string:
			if out, ok := parse(v); ok {
				return out, true
			}
		default:
			if n, ok := toInt64(v); ok {
				if out, ok := fromCode(n); ok {
					return out, true
				}
			}
		}
	}
	warnDefault(key, raw, def)
	return def, false
}

func (p Payload) Currency(key string) (models.Currency, bool) {
	return enum(p, key,
		models.ParseCurrency,
		func(int64) (models.Currency, bool) { return models.DefaultCurrency, false },
		models.DefaultCurrency)
}

func (p Payload) YesNo(key string) (models.YesNo, bool) {
	return enum(p, key, models.ParseYesNo, models.YesNoFromCode, models.DefaultYesNo)
}

func (p Payload) ApplicationStatus(key string) (models.ApplicationStatus, bool) {
	return enum(p, key, models.ParseApplicationStatus, models.ApplicationStatusFromCode, models.DefaultApplicationStatus)
}

func (p Payload) CommissionMode(key string) (models.CommissionMode, bool) {
	return enum(p, key, models.ParseCommissionMode, models.CommissionModeFromCode, models.DefaultCommissionMode)
}

func (p Payload) PromotionType(key string) (models.PromotionType, bool) {
	return enum(p, key, models.ParsePromotionType, models.PromotionTypeFromCode, models.DefaultPromotionType)
}

func (p Payload) TransactionStatus(key string) (models.OrderStatus, bool) {
	return enum(p, key, models.ParseTransactionStatus, models.TransactionStatusFromCode, models.DefaultOrderStatus)
}

func (p Payload) SettlementStatus(key string) (models.OrderStatus, bool) {
	return enum(p, key, models.ParseSettlementStatus, models.SettlementStatusFromCode, models.DefaultOrderStatus)
}
