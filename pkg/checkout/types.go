package checkout

// BillingCycle selects which plan price applies.
type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

// ParseCycle normalizes a query-provided cycle value, defaulting to monthly
// for anything unrecognized.
func ParseCycle(s string) BillingCycle {
	if BillingCycle(s) == CycleYearly {
		return CycleYearly
	}
	return CycleMonthly
}

// Money represents a monetary amount in the smallest currency unit.
// For example, $10.99 USD would be Amount: 1099, Currency: "USD".
type Money struct {
	Amount   int64  // Amount in smallest currency unit
	Currency string // ISO 4217 currency code
}

// Phase is the orchestrator's lifecycle state.
type Phase string

const (
	PhaseLoading     Phase = "loading"
	PhaseLoadError   Phase = "load_error"
	PhaseReady       Phase = "ready"
	PhaseSubmitting  Phase = "submitting"
	PhaseRedirecting Phase = "redirecting"
	PhaseSucceeded   Phase = "succeeded"
	PhaseFailed      Phase = "failed"
)

// ConversionStatus tags the converted-price variant so an absent conversion is
// structurally distinct from a pending or failed one.
type ConversionStatus string

const (
	// ConversionNotRequired means the selected gateway settles in the
	// reference currency and the base price is charged directly.
	ConversionNotRequired ConversionStatus = "not_required"
	ConversionPending     ConversionStatus = "pending"
	ConversionReady       ConversionStatus = "ready"
	ConversionFailed      ConversionStatus = "failed"
)

// ConvertedPrice is a point-in-time snapshot of the reference price expressed
// in a gateway's settlement currency.
type ConvertedPrice struct {
	Amount   int64
	Currency string
	Rate     float64
}

// DiscountType distinguishes percentage and fixed-amount promo codes.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Discount is the applied-discount variant of CheckoutState. The zero value
// (Applied == false) represents no discount; amount fields are meaningless in
// that case and must not be read.
type Discount struct {
	Applied     bool
	Code        string // canonicalized upper-case
	Type        DiscountType
	Value       float64
	Amount      int64 // discount amount in reference currency
	FinalAmount int64 // max(0, base - Amount), reference currency
}

// roundDiv divides n by d rounding half away from zero for non-negative
// operands. Used for all fixed-point currency arithmetic in this package so
// displayed and charged amounts stay bit-identical.
func roundDiv(n, d int64) int64 {
	return (n + d/2) / d
}
