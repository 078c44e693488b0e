package checkout

import "errors"

var (
	ErrPlanNotFound       = errors.New("checkout: plan not found")
	ErrNoGateways         = errors.New("checkout: no payment gateways enabled")
	ErrGatewayNotFound    = errors.New("checkout: gateway not found")
	ErrCatalogUnavailable = errors.New("checkout: failed to load checkout catalog")

	ErrNotReady           = errors.New("checkout: operation not allowed in current phase")
	ErrSubmitNotAllowed   = errors.New("checkout: submission blocked by guards")
	ErrValidationPending  = errors.New("checkout: discount validation already in progress")
	ErrConversionPending  = errors.New("checkout: currency conversion in progress")
	ErrConversionFailed   = errors.New("checkout: currency conversion failed")
	ErrInvalidPhaseChange = errors.New("checkout: invalid phase transition")

	// Provider/session errors
	ErrMissingAmount      = errors.New("checkout: session amount is required")
	ErrMissingCurrency    = errors.New("checkout: session currency is required")
	ErrNoNextStep         = errors.New("checkout: provider returned no checkout URL and no terminal status")
	ErrSessionCreateError = errors.New("checkout: failed to create payment session")
)
