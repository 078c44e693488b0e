package checkout

import "slices"

// Gateway is a configured payment provider instance. SupportedCurrencies is
// ordered: index 0 is the gateway's preferred settlement currency.
type Gateway struct {
	ID                  string   `yaml:"id" json:"id"`
	Name                string   `yaml:"name" json:"name"`
	Default             bool     `yaml:"is_default" json:"is_default"`
	Enabled             bool     `yaml:"is_enabled" json:"is_enabled"`
	SupportedCurrencies []string `yaml:"supported_currencies" json:"supported_currencies"`
	PaymentMethods      []string `yaml:"payment_methods" json:"payment_methods"`
}

// SupportsCurrency reports whether the gateway can settle in the given
// currency. An empty currency list means the gateway accepts anything, which
// by the conversion rule behaves the same as supporting the reference currency.
func (g Gateway) SupportsCurrency(code string) bool {
	return slices.Contains(g.SupportedCurrencies, code)
}

// SettlementCurrency returns the gateway's preferred settlement currency.
func (g Gateway) SettlementCurrency() (string, bool) {
	if len(g.SupportedCurrencies) == 0 {
		return "", false
	}
	return g.SupportedCurrencies[0], true
}

// DefaultGateway applies the default-selection rule: the first gateway marked
// as default, falling back to the first of the list. The second return is
// false for an empty list, in which case checkout cannot proceed.
func DefaultGateway(gateways []Gateway) (Gateway, bool) {
	if len(gateways) == 0 {
		return Gateway{}, false
	}
	for _, g := range gateways {
		if g.Default {
			return g, true
		}
	}
	return gateways[0], true
}
