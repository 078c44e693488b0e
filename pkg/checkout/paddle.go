package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// PaddleConfig holds configuration for the Paddle session creator.
type PaddleConfig struct {
	APIKey      string `env:"PADDLE_API_KEY,required"`
	Environment string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleSessionCreator implements SessionCreator on top of Paddle hosted
// checkouts. Paddle charges against catalog price IDs rather than raw
// amounts, so the creator is configured with a map from "planSlug:cycle" to
// the Paddle price ID; the request's metadata identifies the entry. The
// request amount is carried in custom data for reconciliation against the
// webhook, not sent as the charge amount.
type PaddleSessionCreator struct {
	client   *paddle.SDK
	priceIDs map[string]string
}

// PaddlePriceKey builds the price map key for a plan and cycle.
func PaddlePriceKey(planSlug string, cycle BillingCycle) string {
	return planSlug + ":" + string(cycle)
}

// NewPaddleSessionCreator creates a Paddle-backed session creator.
func NewPaddleSessionCreator(cfg PaddleConfig, priceIDs map[string]string) (*PaddleSessionCreator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("paddle API key is required")
	}
	if len(priceIDs) == 0 {
		return nil, errors.New("paddle price ID map is required")
	}

	var client *paddle.SDK
	var err error

	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("invalid paddle environment: %s", cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleSessionCreator{client: client, priceIDs: priceIDs}, nil
}

// CreateSession creates a Paddle transaction and returns its hosted checkout
// URL. Paddle checkouts always complete through the hosted flow, so the
// result is pending with a URL; a transaction without a checkout URL is
// reported as-is and surfaces as a provider misconfiguration upstream.
func (p *PaddleSessionCreator) CreateSession(ctx context.Context, req SessionRequest) (SessionResult, error) {
	priceID, ok := p.priceIDs[PaddlePriceKey(req.Metadata[MetaPlan], BillingCycle(req.Metadata[MetaCycle]))]
	if !ok {
		return SessionResult{}, fmt.Errorf("no paddle price configured for plan %q cycle %q",
			req.Metadata[MetaPlan], req.Metadata[MetaCycle])
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  priceID,
		Quantity: 1,
	})

	customData := paddle.CustomData{
		"description": req.Description,
		"gateway":     req.PreferredGateway,
	}
	for k, v := range req.Metadata {
		customData[k] = v
	}

	transactionReq := &paddle.CreateTransactionRequest{
		Items:      []paddle.CreateTransactionItems{*item},
		CustomData: customData,
	}
	if req.SuccessURL != "" {
		transactionReq.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(req.SuccessURL),
		}
	}

	transaction, err := p.client.TransactionsClient.CreateTransaction(ctx, transactionReq)
	if err != nil {
		return SessionResult{}, errors.Join(ErrSessionCreateError, err)
	}

	result := SessionResult{
		Status:    SessionPending,
		PaymentID: transaction.ID,
	}
	if transaction.Checkout != nil && transaction.Checkout.URL != nil {
		result.CheckoutURL = *transaction.Checkout.URL
	}
	return result, nil
}
