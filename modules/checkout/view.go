package checkout

import (
	"github.com/google/uuid"

	"github.com/muhammadiwa/youtube-automation-sub003/pkg/checkout"
)

// StateView is the JSON rendering of a checkout session.
type StateView struct {
	SessionID uuid.UUID      `json:"session_id"`
	Phase     checkout.Phase `json:"phase"`

	Plan  PlanView `json:"plan"`
	Cycle string   `json:"cycle"`

	Base          MoneyView     `json:"base_price"`
	Gateways      []GatewayView `json:"gateways"`
	Gateway       *GatewayView  `json:"selected_gateway,omitempty"`
	TermsAccepted bool          `json:"terms_accepted"`

	Discount *DiscountView `json:"discount,omitempty"`

	Conversion      checkout.ConversionStatus `json:"conversion_status"`
	Converted       *MoneyView                `json:"converted_price,omitempty"`
	ConversionError string                    `json:"conversion_error,omitempty"`

	Validating bool `json:"validating_discount"`
	CanSubmit  bool `json:"can_submit"`

	LoadError      string `json:"load_error,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
	ContactSupport bool   `json:"contact_support,omitempty"`
}

type PlanView struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type MoneyView struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Formatted string `json:"formatted"`
}

type GatewayView struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	PaymentMethods []string `json:"payment_methods,omitempty"`
}

type DiscountView struct {
	Code        string    `json:"code"`
	Amount      MoneyView `json:"amount"`
	FinalAmount MoneyView `json:"final_amount"`
}

func moneyView(amount int64, currency string) MoneyView {
	return MoneyView{
		Amount:    amount,
		Currency:  currency,
		Formatted: checkout.FormatAmount(amount, currency),
	}
}

func gatewayView(g checkout.Gateway) GatewayView {
	return GatewayView{ID: g.ID, Name: g.Name, PaymentMethods: g.PaymentMethods}
}

// buildView flattens an orchestrator snapshot plus its quote into the wire
// representation.
func buildView(id uuid.UUID, snap checkout.Snapshot, quote checkout.Quote) StateView {
	view := StateView{
		SessionID:       id,
		Phase:           snap.Phase,
		Plan:            PlanView{Slug: snap.Plan.Slug, Name: snap.Plan.Name},
		Cycle:           string(snap.Cycle),
		Base:            moneyView(quote.Base.Amount, quote.Base.Currency),
		TermsAccepted:   snap.TermsAccepted,
		Conversion:      snap.Conversion,
		ConversionError: snap.ConversionError,
		Validating:      snap.Validating,
		CanSubmit:       snap.CanSubmit,
		LoadError:       snap.LoadError,
		FailureMessage:  snap.FailureMessage,
		ContactSupport:  snap.ContactSupport,
	}

	view.Gateways = make([]GatewayView, 0, len(snap.Gateways))
	for _, g := range snap.Gateways {
		view.Gateways = append(view.Gateways, gatewayView(g))
	}
	if snap.GatewaySelected {
		gv := gatewayView(snap.Gateway)
		view.Gateway = &gv
	}

	if snap.Discount.Applied {
		view.Discount = &DiscountView{
			Code:        snap.Discount.Code,
			Amount:      moneyView(snap.Discount.Amount, quote.Base.Currency),
			FinalAmount: moneyView(snap.Discount.FinalAmount, quote.Base.Currency),
		}
	}

	if snap.Conversion == checkout.ConversionReady {
		cv := moneyView(snap.Converted.Amount, snap.Converted.Currency)
		view.Converted = &cv
	}

	return view
}
