// Package billingapi is the HTTP client for the platform billing API, the
// remote collaborator behind every checkout read and write: plan catalog,
// gateway registry, currency conversion, discount validation, and
// payment-session creation.
//
// The Client implements all collaborator interfaces consumed by pkg/checkout,
// so wiring a live checkout is one construction:
//
//	client, err := billingapi.New(cfg)
//	o := checkout.New(checkoutCfg, client, client, client, client, client)
//
// Transport failures and non-2xx responses are reported as errors wrapping
// ErrRequestFailed; the checkout layer decides whether that is fatal (catalog),
// inline (conversion, discount), or a Failed submission. The client itself
// never retries and never falls back to canned data: financial flows fail
// loudly.
package billingapi
