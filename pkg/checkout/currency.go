package checkout

import "context"

// Converter turns a reference-currency amount into a target-currency amount
// using a point-in-time exchange rate. The rate source is an external
// collaborator; this package only decides when to call it and how to apply
// the result.
type Converter interface {
	Convert(ctx context.Context, amount int64, from, to string) (ConvertedPrice, error)
}

// ConversionTarget applies the conversion-required rule for a gateway: no
// conversion when the gateway supports the reference currency or declares no
// currencies at all; otherwise the gateway's preferred settlement currency.
func ConversionTarget(g Gateway, referenceCurrency string) (string, bool) {
	settlement, ok := g.SettlementCurrency()
	if !ok || g.SupportsCurrency(referenceCurrency) {
		return "", false
	}
	return settlement, true
}
