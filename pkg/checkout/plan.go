package checkout

// Feature is a single line of a plan's feature list, in display order.
type Feature struct {
	Name     string `yaml:"name" json:"name"`
	Included bool   `yaml:"included" json:"included"`
}

// Plan describes a purchasable subscription tier. Prices are fixed-point
// amounts in the platform reference currency. Immutable once fetched; the
// catalog owns it for the lifetime of the checkout session.
type Plan struct {
	Slug         string    `yaml:"slug" json:"slug"`
	Name         string    `yaml:"name" json:"name"`
	PriceMonthly int64     `yaml:"price_monthly" json:"price_monthly"`
	PriceYearly  int64     `yaml:"price_yearly" json:"price_yearly"`
	Features     []Feature `yaml:"features" json:"features"`
}

// PriceFor returns the plan price for the given billing cycle.
func (p Plan) PriceFor(cycle BillingCycle) int64 {
	if cycle == CycleYearly {
		return p.PriceYearly
	}
	return p.PriceMonthly
}

// MonthlyEquivalent returns the per-month cost of the yearly price.
func (p Plan) MonthlyEquivalent() int64 {
	return roundDiv(p.PriceYearly, 12)
}

// YearlySavings returns how much a year of monthly billing exceeds the yearly
// price. Non-negative whenever the yearly price is actually a deal.
func (p Plan) YearlySavings() int64 {
	return p.PriceMonthly*12 - p.PriceYearly
}
