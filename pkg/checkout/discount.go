package checkout

import (
	"context"
	"math"
	"strings"
)

// DiscountValidator validates a promo code against a plan and a base amount.
// Validation is stateless from the caller's perspective: re-validating the
// same code against a different base amount may yield a different discount
// amount. The base amount is always the plan's reference-currency price;
// percentage discounts must never be computed on a converted amount.
type DiscountValidator interface {
	Validate(ctx context.Context, code, planSlug string, baseAmount int64) (DiscountResult, error)
}

// DiscountResult is the outcome of a validation call. When Valid is false,
// Message carries the human-readable rejection reason and the amount fields
// are zero.
type DiscountResult struct {
	Valid          bool
	Code           string // canonicalized upper-case
	Type           DiscountType
	Value          float64
	DiscountAmount int64
	FinalAmount    int64
	Message        string
}

// NormalizeCode canonicalizes a promo code for case-insensitive matching.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DiscountAmount computes the reference-currency discount for a code type and
// value: percentage discounts round half-up, fixed discounts are capped at
// the base amount so the final amount never goes negative.
func DiscountAmount(typ DiscountType, baseAmount int64, value float64) int64 {
	switch typ {
	case DiscountPercentage:
		return int64(math.Round(float64(baseAmount) * value / 100))
	case DiscountFixed:
		return min(int64(value), baseAmount)
	default:
		return 0
	}
}

// FinalAmount clamps the discounted amount at zero.
func FinalAmount(baseAmount, discountAmount int64) int64 {
	return max(0, baseAmount-discountAmount)
}
