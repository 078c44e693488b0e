package checkout

import "context"

// SessionStatus is the provider-reported status of a payment session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

// SessionRequest carries everything the provider needs to collect payment.
// PreferredGateway is a preference, not a guarantee: the backend may route to
// another configured instance of the same provider. Metadata captures the
// original reference-currency amount and any discount for reconciliation.
type SessionRequest struct {
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Description      string            `json:"description"`
	PreferredGateway string            `json:"preferred_gateway"`
	SuccessURL       string            `json:"success_url"`
	CancelURL        string            `json:"cancel_url"`
	Metadata         map[string]string `json:"metadata"`
}

// Metadata keys written by the orchestrator.
const (
	MetaPlan              = "plan"
	MetaCycle             = "cycle"
	MetaReferenceAmount   = "reference_amount"
	MetaReferenceCurrency = "reference_currency"
	MetaDiscountCode      = "discount_code"
	MetaDiscountAmount    = "discount_amount"
)

// SessionResult is the provider's answer to a session-creation request.
type SessionResult struct {
	Status       SessionStatus `json:"status"`
	CheckoutURL  string        `json:"checkout_url,omitempty"`
	PaymentID    string        `json:"payment_id,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// SessionCreator creates a payment session with a provider.
type SessionCreator interface {
	CreateSession(ctx context.Context, req SessionRequest) (SessionResult, error)
}
