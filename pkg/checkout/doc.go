// Package checkout implements the pricing and payment-session orchestration
// core of the upgrade purchase flow: resolving a plan price for a billing
// cycle, converting it into a gateway's settlement currency when the gateway
// cannot accept the platform reference currency, applying a promotional
// discount consistently across both currency representations, and driving a
// short-lived state machine that submits a payment-session request and routes
// the buyer to success, failure, or an external redirect.
//
// # Architecture
//
// The package composes four read-only collaborators behind small interfaces:
//
//   - PlanSource / GatewaySource: session-scoped catalog lookups
//   - Converter: point-in-time currency conversion (external rate source)
//   - DiscountValidator: server-side promo code validation
//   - SessionCreator: payment-session creation with the selected provider
//
// The Orchestrator owns the single session-scoped CheckoutState aggregate and
// mutates it only through named transitions (Enter, SelectGateway,
// ApplyDiscount, RemoveDiscount, SetTermsAccepted, Submit). Phase changes are
// validated against an internal transition table so an illegal phase change is
// a programming error surfaced immediately rather than silent state drift.
//
// Currency conversions are supersede-on-change: every conversion request
// carries a generation token and a late-arriving result whose token no longer
// matches current state is discarded, never written. Discounts are applied to
// a converted price by ratio rather than by a second conversion call; the
// deviation from convert-then-discount is bounded and deterministic, which is
// the deliberate trade-off this package preserves.
//
// # Quick Start
//
//	o := checkout.New(checkout.Config{SuccessURL: "https://app.example.com/billing/success", CancelURL: "https://app.example.com/billing/upgrade"},
//		plans, gateways, converter, validator, sessions)
//
//	if err := o.Enter(ctx, "pro", checkout.CycleYearly); err != nil {
//		// fatal load state, render back-to-billing
//	}
//	o.SetTermsAccepted(ctx, true)
//	outcome, err := o.Submit(ctx)
//
// All submission failures are absorbed into the Failed phase with a message;
// no error escapes Submit except guard violations (ErrSubmitNotAllowed).
package checkout
