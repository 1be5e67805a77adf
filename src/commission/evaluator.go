// Package commission derives commission amounts from rules and order totals.
package commission

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/linkpulse/backend/src/models"
)

// Evaluate computes the commission a rule yields for an order total.
// PERCENTAGE multiplies the total by the rule's ratio; FIXED returns the
// rule's commission regardless of total. All arithmetic is decimal, never
// binary floating point.
func Evaluate(rule *models.CommissionRule, total decimal.Decimal) (decimal.Decimal, error) {
	switch rule.Mode {
	case models.ModeFixed:
		if rule.Commission == nil {
			return decimal.Zero, fmt.Errorf("commission rule %d is FIXED but has no commission value", rule.ID)
		}
		fixed, err := decimal.NewFromString(*rule.Commission)
		if err != nil {
			return decimal.Zero, fmt.Errorf("commission rule %d has invalid commission %q: %w", rule.ID, *rule.Commission, err)
		}
		return fixed, nil
	case models.ModePercentage:
		if rule.Ratio == nil {
			return decimal.Zero, fmt.Errorf("commission rule %d is PERCENTAGE but has no ratio value", rule.ID)
		}
		ratio, err := decimal.NewFromString(*rule.Ratio)
		if err != nil {
			return decimal.Zero, fmt.Errorf("commission rule %d has invalid ratio %q: %w", rule.ID, *rule.Ratio, err)
		}
		return total.Mul(ratio), nil
	default:
		return decimal.Zero, fmt.Errorf("commission rule %d has unknown mode %q", rule.ID, rule.Mode)
	}
}

// EvaluateString is Evaluate over decimal strings, the form amounts take on
// stored transactions.
func EvaluateString(rule *models.CommissionRule, total string) (string, error) {
	t, err := decimal.NewFromString(total)
	if err != nil {
		return "", fmt.Errorf("invalid order total %q: %w", total, err)
	}
	c, err := Evaluate(rule, t)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}
