package billingapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadiwa/youtube-automation-sub003/pkg/billingapi"
	"github.com/muhammadiwa/youtube-automation-sub003/pkg/checkout"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *billingapi.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := billingapi.New(billingapi.Config{BaseURL: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires base URL", func(t *testing.T) {
		t.Parallel()
		_, err := billingapi.New(billingapi.Config{})
		assert.ErrorIs(t, err, billingapi.ErrMissingBaseURL)
	})

	t.Run("rejects relative base URL", func(t *testing.T) {
		t.Parallel()
		_, err := billingapi.New(billingapi.Config{BaseURL: "/v1"})
		assert.ErrorIs(t, err, billingapi.ErrInvalidBaseURL)
	})
}

func TestListPlans(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/plans", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode([]checkout.Plan{
			{Slug: "pro", Name: "Pro", PriceMonthly: 49, PriceYearly: 480},
		})
	})

	plans, err := client.ListPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "pro", plans[0].Slug)
	assert.Equal(t, int64(480), plans[0].PriceYearly)
}

func TestListEnabledGateways(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gateways", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("enabledOnly"))

		_ = json.NewEncoder(w).Encode([]checkout.Gateway{
			{ID: "midtrans", Name: "Midtrans", Enabled: true, SupportedCurrencies: []string{"IDR"}},
		})
	})

	gateways, err := client.ListEnabledGateways(context.Background())
	require.NoError(t, err)
	require.Len(t, gateways, 1)
	assert.Equal(t, []string{"IDR"}, gateways[0].SupportedCurrencies)
}

func TestConvert(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/currency/convert", r.URL.Path)

		var req struct {
			Amount int64  `json:"amount"`
			From   string `json:"from"`
			To     string `json:"to"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(480), req.Amount)
		assert.Equal(t, "USD", req.From)
		assert.Equal(t, "IDR", req.To)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"converted_amount": 7_200_000,
			"exchange_rate":    15000,
		})
	})

	price, err := client.Convert(context.Background(), 480, "USD", "IDR")
	require.NoError(t, err)
	assert.Equal(t, checkout.ConvertedPrice{Amount: 7_200_000, Currency: "IDR", Rate: 15000}, price)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/discount/validate", r.URL.Path)

			var req struct {
				Code     string `json:"code"`
				PlanSlug string `json:"plan_slug"`
				Amount   int64  `json:"amount"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			// The client canonicalizes before sending.
			assert.Equal(t, "SAVE10", req.Code)
			assert.Equal(t, "pro", req.PlanSlug)

			_ = json.NewEncoder(w).Encode(map[string]any{
				"is_valid":        true,
				"code":            "SAVE10",
				"discount_type":   "percentage",
				"discount_value":  10,
				"discount_amount": 48,
				"final_amount":    432,
			})
		})

		result, err := client.Validate(context.Background(), "save10", "pro", 480)
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, checkout.DiscountPercentage, result.Type)
		assert.Equal(t, int64(432), result.FinalAmount)
	})

	t.Run("rejected code is not an error", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"is_valid": false,
				"message":  "Unknown discount code.",
			})
		})

		result, err := client.Validate(context.Background(), "NOPE", "pro", 480)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, "Unknown discount code.", result.Message)
	})
}

func TestCreateSession(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/create", r.URL.Path)

		var req checkout.SessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(6_480_000), req.Amount)
		assert.Equal(t, "IDR", req.Currency)

		_ = json.NewEncoder(w).Encode(checkout.SessionResult{
			Status:      checkout.SessionPending,
			CheckoutURL: "https://pay.example.com/s/abc",
		})
	})

	result, err := client.CreateSession(context.Background(), checkout.SessionRequest{
		Amount:   6_480_000,
		Currency: "IDR",
	})
	require.NoError(t, err)
	assert.Equal(t, checkout.SessionPending, result.Status)
	assert.Equal(t, "https://pay.example.com/s/abc", result.CheckoutURL)
}

func TestStatusErrors(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "upstream unavailable"})
	})

	_, err := client.ListPlans(context.Background())
	require.ErrorIs(t, err, billingapi.ErrRequestFailed)

	var se *billingapi.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "upstream unavailable", se.Message)
}
