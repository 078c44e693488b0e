package billingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/muhammadiwa/youtube-automation-sub003/pkg/checkout"
)

// Config holds billing API client settings.
type Config struct {
	BaseURL string        `env:"BILLING_API_BASE_URL,required"` // e.g. https://api.example.com/v1
	APIKey  string        `env:"BILLING_API_KEY"`               // sent as a bearer token when set
	Timeout time.Duration `env:"BILLING_API_TIMEOUT" envDefault:"15s"`
}

// Client talks to the platform billing API. It satisfies every collaborator
// interface the checkout orchestrator consumes.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
}

// Compile-time interface checks keep the client and the checkout contracts in sync.
var (
	_ checkout.PlanSource        = (*Client)(nil)
	_ checkout.GatewaySource     = (*Client)(nil)
	_ checkout.Converter         = (*Client)(nil)
	_ checkout.DiscountValidator = (*Client)(nil)
	_ checkout.SessionCreator    = (*Client)(nil)
)

// Option configures a Client during construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, e.g. to inject a
// recording transport in tests. Nil clients are ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a billing API client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListPlans fetches the plan catalog.
func (c *Client) ListPlans(ctx context.Context) ([]checkout.Plan, error) {
	var plans []checkout.Plan
	if err := c.do(ctx, http.MethodGet, "plans", nil, nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// ListEnabledGateways fetches the enabled payment gateways.
func (c *Client) ListEnabledGateways(ctx context.Context) ([]checkout.Gateway, error) {
	var gateways []checkout.Gateway
	query := url.Values{"enabledOnly": {"true"}}
	if err := c.do(ctx, http.MethodGet, "gateways", query, nil, &gateways); err != nil {
		return nil, err
	}
	return gateways, nil
}

// Convert asks the platform rate source to convert a reference-currency
// amount into the target currency.
func (c *Client) Convert(ctx context.Context, amount int64, from, to string) (checkout.ConvertedPrice, error) {
	req := struct {
		Amount int64  `json:"amount"`
		From   string `json:"from"`
		To     string `json:"to"`
	}{Amount: amount, From: from, To: to}

	var resp struct {
		ConvertedAmount int64   `json:"converted_amount"`
		ExchangeRate    float64 `json:"exchange_rate"`
	}
	if err := c.do(ctx, http.MethodPost, "currency/convert", nil, req, &resp); err != nil {
		return checkout.ConvertedPrice{}, err
	}

	return checkout.ConvertedPrice{
		Amount:   resp.ConvertedAmount,
		Currency: to,
		Rate:     resp.ExchangeRate,
	}, nil
}

// Validate checks a promo code against a plan and reference-currency amount.
// A rejected code is a valid response, not an error.
func (c *Client) Validate(ctx context.Context, code, planSlug string, baseAmount int64) (checkout.DiscountResult, error) {
	req := struct {
		Code     string `json:"code"`
		PlanSlug string `json:"plan_slug"`
		Amount   int64  `json:"amount"`
	}{Code: checkout.NormalizeCode(code), PlanSlug: planSlug, Amount: baseAmount}

	var resp struct {
		IsValid        bool    `json:"is_valid"`
		Code           string  `json:"code"`
		DiscountType   string  `json:"discount_type"`
		DiscountValue  float64 `json:"discount_value"`
		DiscountAmount int64   `json:"discount_amount"`
		FinalAmount    int64   `json:"final_amount"`
		Message        string  `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "discount/validate", nil, req, &resp); err != nil {
		return checkout.DiscountResult{}, err
	}

	return checkout.DiscountResult{
		Valid:          resp.IsValid,
		Code:           resp.Code,
		Type:           checkout.DiscountType(resp.DiscountType),
		Value:          resp.DiscountValue,
		DiscountAmount: resp.DiscountAmount,
		FinalAmount:    resp.FinalAmount,
		Message:        resp.Message,
	}, nil
}

// CreateSession submits a payment-session request.
func (c *Client) CreateSession(ctx context.Context, req checkout.SessionRequest) (checkout.SessionResult, error) {
	var resp checkout.SessionResult
	if err := c.do(ctx, http.MethodPost, "payment/create", nil, req, &resp); err != nil {
		return checkout.SessionResult{}, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Join(ErrRequestFailed, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Join(ErrRequestFailed, statusError(resp))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Join(ErrDecodeFailed, err)
		}
	}
	return nil
}

func statusError(resp *http.Response) *StatusError {
	se := &StatusError{StatusCode: resp.StatusCode}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err == nil {
		switch {
		case payload.Message != "":
			se.Message = payload.Message
		case payload.Error != "":
			se.Message = payload.Error
		}
	}
	return se
}
