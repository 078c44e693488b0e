// Package checkout exposes the checkout orchestration as a mountable JSON
// API module. Each API session owns one orchestrator; handlers translate
// HTTP requests into orchestrator calls and render state snapshots back as
// JSON.
//
// Mount it on any chi router:
//
//	svc := checkoutmod.NewService(cfg, plans, gateways, converter, validator, payments)
//	r.Mount("/checkout", checkoutmod.Router(svc))
package checkout
