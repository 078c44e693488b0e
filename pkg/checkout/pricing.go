package checkout

// DiscountedConvertedAmount derives the converted-currency charge under a
// discount by preserving the discount ratio of the reference-currency amounts:
//
//	round(converted * finalAmount / baseAmount)
//
// Conversion and discounting are computed independently, so this deliberately
// does NOT re-convert the discounted amount. The formula accepts a small,
// bounded rounding deviation from convert-then-discount in exchange for
// determinism and one fewer rate-source round trip per discount change.
// Callers must not replace it with a fresh conversion call: that would change
// observable charged amounts.
func DiscountedConvertedAmount(convertedAmount, finalAmount, baseAmount int64) int64 {
	if baseAmount <= 0 {
		return 0
	}
	return roundDiv(convertedAmount*finalAmount, baseAmount)
}

// Quote is the single priced, currency-correct, discount-applied view of the
// current selection. It is recomputed by the orchestrator on every change to
// gateway or discount and is the sole input to the payment-session request.
type Quote struct {
	Base       Money // plan price for the selected cycle, reference currency
	Discount   Discount
	Conversion ConversionStatus
	Converted  ConvertedPrice // meaningful only when Conversion == ConversionReady
}

// FinalReference returns the reference-currency amount after any discount.
func (q Quote) FinalReference() int64 {
	if q.Discount.Applied {
		return q.Discount.FinalAmount
	}
	return q.Base.Amount
}

// Charge resolves the amount and currency the payment session will carry.
// Returns ErrConversionPending or ErrConversionFailed while the converted
// price is not usable; charging in the wrong currency or amount is a
// financial-correctness violation, so there is no fallback.
func (q Quote) Charge() (Money, error) {
	switch q.Conversion {
	case ConversionNotRequired:
		return Money{Amount: q.FinalReference(), Currency: q.Base.Currency}, nil
	case ConversionReady:
		amount := q.Converted.Amount
		if q.Discount.Applied {
			amount = DiscountedConvertedAmount(q.Converted.Amount, q.Discount.FinalAmount, q.Base.Amount)
		}
		return Money{Amount: amount, Currency: q.Converted.Currency}, nil
	case ConversionPending:
		return Money{}, ErrConversionPending
	default:
		return Money{}, ErrConversionFailed
	}
}
