package checkout_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadiwa/youtube-automation-sub003/pkg/checkout"
)

type fakeCatalog struct {
	plans       []checkout.Plan
	gateways    []checkout.Gateway
	plansErr    error
	gatewaysErr error
}

func (f *fakeCatalog) ListPlans(ctx context.Context) ([]checkout.Plan, error) {
	return f.plans, f.plansErr
}

func (f *fakeCatalog) ListEnabledGateways(ctx context.Context) ([]checkout.Gateway, error) {
	return f.gateways, f.gatewaysErr
}

type fakeConverter struct {
	mu    sync.Mutex
	rates map[string]float64
	errs  map[string]error
	gates map[string]chan struct{} // Convert blocks on the gate for its target currency
	calls int
}

func (f *fakeConverter) Convert(ctx context.Context, amount int64, from, to string) (checkout.ConvertedPrice, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gates[to]
	rate := f.rates[to]
	err := f.errs[to]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return checkout.ConvertedPrice{}, err
	}
	return checkout.ConvertedPrice{
		Amount:   int64(math.Round(float64(amount) * rate)),
		Currency: to,
		Rate:     rate,
	}, nil
}

func (f *fakeConverter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeValidator struct {
	mu     sync.Mutex
	result checkout.DiscountResult
	err    error
	gate   chan struct{}
	calls  int
}

func (f *fakeValidator) Validate(ctx context.Context, code, planSlug string, baseAmount int64) (checkout.DiscountResult, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return f.result, f.err
}

func (f *fakeValidator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSessions struct {
	mu     sync.Mutex
	reqs   []checkout.SessionRequest
	result checkout.SessionResult
	err    error
}

func (f *fakeSessions) CreateSession(ctx context.Context, req checkout.SessionRequest) (checkout.SessionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.result, f.err
}

func (f *fakeSessions) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

func (f *fakeSessions) lastRequest() checkout.SessionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reqs[len(f.reqs)-1]
}

type testEnv struct {
	orchestrator *checkout.Orchestrator
	catalog      *fakeCatalog
	converter    *fakeConverter
	validator    *fakeValidator
	sessions     *fakeSessions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	catalog := &fakeCatalog{
		plans: []checkout.Plan{
			{Slug: "basic", Name: "Basic", PriceMonthly: 19, PriceYearly: 190},
			{Slug: "pro", Name: "Pro", PriceMonthly: 49, PriceYearly: 480},
		},
		gateways: []checkout.Gateway{
			{ID: "stripe", Name: "Stripe", Default: true, Enabled: true, SupportedCurrencies: []string{"USD", "EUR"}},
			{ID: "midtrans", Name: "Midtrans", Enabled: true, SupportedCurrencies: []string{"IDR"}},
			{ID: "payfast", Name: "PayFast", Enabled: true, SupportedCurrencies: []string{"EUR"}},
		},
	}
	converter := &fakeConverter{
		rates: map[string]float64{"IDR": 15000, "EUR": 0.9},
		errs:  map[string]error{},
		gates: map[string]chan struct{}{},
	}
	validator := &fakeValidator{}
	sessions := &fakeSessions{}

	cfg := checkout.Config{
		ReferenceCurrency: "USD",
		SuccessURL:        "https://app.test/billing/success",
		CancelURL:         "https://app.test/billing/plans",
	}

	return &testEnv{
		orchestrator: checkout.New(cfg, catalog, catalog, converter, validator, sessions),
		catalog:      catalog,
		converter:    converter,
		validator:    validator,
		sessions:     sessions,
	}
}

func waitConversion(t *testing.T, o *checkout.Orchestrator, want checkout.ConversionStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		return o.State().Conversion == want
	}, time.Second, 2*time.Millisecond)
}

func TestEnter(t *testing.T) {
	t.Parallel()

	t.Run("ready with default gateway", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))

		state := env.orchestrator.State()
		assert.Equal(t, checkout.PhaseReady, state.Phase)
		assert.Equal(t, "pro", state.Plan.Slug)
		assert.Equal(t, checkout.CycleYearly, state.Cycle)
		assert.Equal(t, "stripe", state.Gateway.ID)
		// Stripe settles in the reference currency, so no converted price exists.
		assert.Equal(t, checkout.ConversionNotRequired, state.Conversion)
		assert.Zero(t, env.converter.callCount())
	})

	t.Run("unknown plan slug is a fatal load error", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		err := env.orchestrator.Enter(context.Background(), "enterprise", checkout.CycleMonthly)
		assert.ErrorIs(t, err, checkout.ErrPlanNotFound)
		assert.Equal(t, checkout.PhaseLoadError, env.orchestrator.Phase())
	})

	t.Run("catalog fetch failure is a fatal load error", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.catalog.plansErr = errors.New("upstream down")

		err := env.orchestrator.Enter(context.Background(), "pro", checkout.CycleMonthly)
		assert.ErrorIs(t, err, checkout.ErrCatalogUnavailable)
		state := env.orchestrator.State()
		assert.Equal(t, checkout.PhaseLoadError, state.Phase)
		assert.NotEmpty(t, state.LoadError)
	})

	t.Run("zero enabled gateways is a fatal load error", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.catalog.gateways = nil

		err := env.orchestrator.Enter(context.Background(), "pro", checkout.CycleMonthly)
		assert.ErrorIs(t, err, checkout.ErrNoGateways)
		assert.Equal(t, checkout.PhaseLoadError, env.orchestrator.Phase())
	})

	t.Run("double enter is rejected", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleMonthly))
		assert.ErrorIs(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleMonthly), checkout.ErrNotReady)
	})
}

func TestSelectGateway(t *testing.T) {
	t.Parallel()

	t.Run("converts to the gateway settlement currency", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))

		require.NoError(t, env.orchestrator.SelectGateway(context.Background(), "midtrans"))
		waitConversion(t, env.orchestrator, checkout.ConversionReady)

		state := env.orchestrator.State()
		assert.Equal(t, int64(7_200_000), state.Converted.Amount)
		assert.Equal(t, "IDR", state.Converted.Currency)
		assert.Equal(t, float64(15000), state.Converted.Rate)
	})

	t.Run("switching back to a reference-currency gateway clears the conversion", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))

		require.NoError(t, env.orchestrator.SelectGateway(context.Background(), "midtrans"))
		waitConversion(t, env.orchestrator, checkout.ConversionReady)

		require.NoError(t, env.orchestrator.SelectGateway(context.Background(), "stripe"))
		state := env.orchestrator.State()
		assert.Equal(t, checkout.ConversionNotRequired, state.Conversion)
		assert.Zero(t, state.Converted)
	})

	t.Run("stale conversion result never overwrites the current selection", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))

		idrGate := make(chan struct{})
		env.converter.gates["IDR"] = idrGate

		require.NoError(t, env.orchestrator.SelectGateway(context.Background(), "midtrans"))
		assert.Equal(t, checkout.ConversionPending, env.orchestrator.State().Conversion)

		require.NoError(t, env.orchestrator.SelectGateway(context.Background(), "payfast"))
		waitConversion(t, env.orchestrator, checkout.ConversionReady)
		assert.Equal(t, "EUR", env.orchestrator.State().Converted.Currency)

		// Release the superseded IDR conversion; its result must be discarded.
		close(idrGate)
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, "EUR", env.orchestrator.State().Converted.Currency)
	})

	t.Run("conversion failure blocks submission until resolved", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.converter.errs["IDR"] = errors.New("rate source unavailable")

		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))
		require.NoError(t, env.orchestrator.SetTermsAccepted(context.Background(), true))
		require.NoError(t, env.orchestrator.SelectGateway(context.Background(), "midtrans"))
		waitConversion(t, env.orchestrator, checkout.ConversionFailed)

		state := env.orchestrator.State()
		assert.NotEmpty(t, state.ConversionError)
		assert.False(t, state.CanSubmit)

		_, err := env.orchestrator.Submit(context.Background())
		assert.ErrorIs(t, err, checkout.ErrSubmitNotAllowed)
		assert.Zero(t, env.sessions.callCount())

		// Picking a gateway that needs no conversion resolves the block.
		require.NoError(t, env.orchestrator.SelectGateway(context.Background(), "stripe"))
		assert.True(t, env.orchestrator.CanSubmit())
	})

	t.Run("unknown gateway id", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleMonthly))

		assert.ErrorIs(t, env.orchestrator.SelectGateway(context.Background(), "venmo"), checkout.ErrGatewayNotFound)
	})
}

func TestApplyDiscount(t *testing.T) {
	t.Parallel()

	accepted := checkout.DiscountResult{
		Valid:          true,
		Code:           "SAVE10",
		Type:           checkout.DiscountPercentage,
		Value:          10,
		DiscountAmount: 48,
		FinalAmount:    432,
	}

	t.Run("accepted code is applied", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.validator.result = accepted
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))

		result, err := env.orchestrator.ApplyDiscount(context.Background(), "save10")
		require.NoError(t, err)
		assert.True(t, result.Valid)

		state := env.orchestrator.State()
		assert.True(t, state.Discount.Applied)
		assert.Equal(t, "SAVE10", state.Discount.Code)
		assert.Equal(t, int64(432), state.Discount.FinalAmount)
	})

	t.Run("rejected code leaves state unchanged", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.validator.result = checkout.DiscountResult{Valid: false, Message: "This code has expired."}
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))

		result, err := env.orchestrator.ApplyDiscount(context.Background(), "OLDCODE")
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, "This code has expired.", result.Message)
		assert.False(t, env.orchestrator.State().Discount.Applied)
	})

	t.Run("validator transport error leaves state unchanged", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.validator.err = errors.New("network down")
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))

		_, err := env.orchestrator.ApplyDiscount(context.Background(), "SAVE10")
		require.Error(t, err)
		assert.False(t, env.orchestrator.State().Discount.Applied)
	})

	t.Run("duplicate apply while validation is outstanding", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.validator.result = accepted
		env.validator.gate = make(chan struct{})
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = env.orchestrator.ApplyDiscount(context.Background(), "SAVE10")
		}()

		require.Eventually(t, func() bool {
			return env.orchestrator.State().Validating
		}, time.Second, 2*time.Millisecond)

		_, err := env.orchestrator.ApplyDiscount(context.Background(), "SAVE10")
		assert.ErrorIs(t, err, checkout.ErrValidationPending)

		close(env.validator.gate)
		<-done
		assert.True(t, env.orchestrator.State().Discount.Applied)
	})

	t.Run("discount changes never re-trigger conversion", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.validator.result = accepted
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))
		require.NoError(t, env.orchestrator.SelectGateway(context.Background(), "midtrans"))
		waitConversion(t, env.orchestrator, checkout.ConversionReady)
		require.Equal(t, 1, env.converter.callCount())

		_, err := env.orchestrator.ApplyDiscount(context.Background(), "SAVE10")
		require.NoError(t, err)
		require.NoError(t, env.orchestrator.RemoveDiscount(context.Background()))

		assert.Equal(t, 1, env.converter.callCount())
	})
}

func TestRemoveDiscount(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.validator.result = checkout.DiscountResult{
		Valid: true, Code: "SAVE10", Type: checkout.DiscountPercentage,
		Value: 10, DiscountAmount: 48, FinalAmount: 432,
	}
	require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))

	_, err := env.orchestrator.ApplyDiscount(context.Background(), "SAVE10")
	require.NoError(t, err)
	require.Equal(t, int64(432), env.orchestrator.Quote().FinalReference())

	require.NoError(t, env.orchestrator.RemoveDiscount(context.Background()))
	assert.Equal(t, int64(480), env.orchestrator.Quote().FinalReference())
	assert.False(t, env.orchestrator.State().Discount.Applied)
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	t.Run("terms not accepted never issues a session request", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))

		_, err := env.orchestrator.Submit(context.Background())
		assert.ErrorIs(t, err, checkout.ErrSubmitNotAllowed)
		assert.Zero(t, env.sessions.callCount())
	})

	t.Run("pending conversion blocks submission", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		gate := make(chan struct{})
		t.Cleanup(func() { close(gate) })
		env.converter.gates["IDR"] = gate
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))
		require.NoError(t, env.orchestrator.SetTermsAccepted(context.Background(), true))
		require.NoError(t, env.orchestrator.SelectGateway(context.Background(), "midtrans"))

		_, err := env.orchestrator.Submit(context.Background())
		assert.ErrorIs(t, err, checkout.ErrSubmitNotAllowed)
		assert.Zero(t, env.sessions.callCount())
	})

	t.Run("checkout url redirects and disables further submission", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.sessions.result = checkout.SessionResult{Status: checkout.SessionPending, CheckoutURL: "https://pay.example.com/s/abc"}
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))
		require.NoError(t, env.orchestrator.SetTermsAccepted(context.Background(), true))

		outcome, err := env.orchestrator.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, checkout.PhaseRedirecting, outcome.Phase)
		assert.Equal(t, "https://pay.example.com/s/abc", outcome.RedirectURL)

		_, err = env.orchestrator.Submit(context.Background())
		assert.ErrorIs(t, err, checkout.ErrSubmitNotAllowed)
		assert.ErrorIs(t, env.orchestrator.SelectGateway(context.Background(), "stripe"), checkout.ErrNotReady)
	})

	t.Run("completed without url succeeds inline", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.sessions.result = checkout.SessionResult{Status: checkout.SessionCompleted, PaymentID: "pay_123"}
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))
		require.NoError(t, env.orchestrator.SetTermsAccepted(context.Background(), true))

		outcome, err := env.orchestrator.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, checkout.PhaseSucceeded, outcome.Phase)
		assert.Equal(t, "pay_123", outcome.PaymentID)
	})

	t.Run("failed status uses the provider message and re-enables submission", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.sessions.result = checkout.SessionResult{Status: checkout.SessionFailed, ErrorMessage: "Card declined."}
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))
		require.NoError(t, env.orchestrator.SetTermsAccepted(context.Background(), true))

		outcome, err := env.orchestrator.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, checkout.PhaseFailed, outcome.Phase)
		assert.Equal(t, "Card declined.", outcome.Message)
		assert.False(t, env.orchestrator.State().ContactSupport)
		assert.True(t, env.orchestrator.CanSubmit())

		// Retry succeeds once the provider recovers.
		env.sessions.result = checkout.SessionResult{Status: checkout.SessionPending, CheckoutURL: "https://pay.example.com/s/retry"}
		outcome, err = env.orchestrator.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, checkout.PhaseRedirecting, outcome.Phase)
	})

	t.Run("transport error falls back to the generic retry message", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.sessions.err = errors.New("connection reset")
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))
		require.NoError(t, env.orchestrator.SetTermsAccepted(context.Background(), true))

		outcome, err := env.orchestrator.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, checkout.PhaseFailed, outcome.Phase)
		assert.NotEmpty(t, outcome.Message)
		assert.False(t, env.orchestrator.State().ContactSupport)
	})

	t.Run("no terminal status and no url is a provider-side misconfiguration", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.sessions.result = checkout.SessionResult{Status: checkout.SessionPending}
		require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))
		require.NoError(t, env.orchestrator.SetTermsAccepted(context.Background(), true))

		outcome, err := env.orchestrator.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, checkout.PhaseFailed, outcome.Phase)
		assert.True(t, env.orchestrator.State().ContactSupport)
	})
}

// TestSubmitRequestContents pins the full fixture scenario: pro plan, yearly
// cycle, price 480 USD, gateway settling in IDR at rate 15000, 10% promo code.
func TestSubmitRequestContents(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.validator.result = checkout.DiscountResult{
		Valid: true, Code: "SAVE10", Type: checkout.DiscountPercentage,
		Value: 10, DiscountAmount: 48, FinalAmount: 432,
	}
	env.sessions.result = checkout.SessionResult{Status: checkout.SessionPending, CheckoutURL: "https://pay.example.com/s/abc"}

	ctx := context.Background()
	require.NoError(t, env.orchestrator.Enter(ctx, "pro", checkout.CycleYearly))
	require.NoError(t, env.orchestrator.SelectGateway(ctx, "midtrans"))
	waitConversion(t, env.orchestrator, checkout.ConversionReady)
	require.Equal(t, int64(7_200_000), env.orchestrator.State().Converted.Amount)

	_, err := env.orchestrator.ApplyDiscount(ctx, "save10")
	require.NoError(t, err)
	require.NoError(t, env.orchestrator.SetTermsAccepted(ctx, true))

	outcome, err := env.orchestrator.Submit(ctx)
	require.NoError(t, err)
	require.Equal(t, checkout.PhaseRedirecting, outcome.Phase)

	req := env.sessions.lastRequest()
	assert.Equal(t, int64(6_480_000), req.Amount)
	assert.Equal(t, "IDR", req.Currency)
	assert.Equal(t, "midtrans", req.PreferredGateway)
	assert.Contains(t, req.Description, "Pro plan")
	assert.Contains(t, req.Description, "SAVE10")
	assert.Contains(t, req.SuccessURL, "plan=pro")
	assert.Contains(t, req.SuccessURL, "cycle=yearly")
	assert.Contains(t, req.CancelURL, "plan=pro")
	assert.Equal(t, "432", req.Metadata[checkout.MetaReferenceAmount])
	assert.Equal(t, "USD", req.Metadata[checkout.MetaReferenceCurrency])
	assert.Equal(t, "SAVE10", req.Metadata[checkout.MetaDiscountCode])
	assert.Equal(t, "48", req.Metadata[checkout.MetaDiscountAmount])
}

func TestNewPanicsOnNilDependencies(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	assert.Panics(t, func() {
		checkout.New(checkout.Config{}, nil, env.catalog, env.converter, env.validator, env.sessions)
	})
	assert.Panics(t, func() {
		checkout.New(checkout.Config{}, env.catalog, env.catalog, env.converter, env.validator, nil)
	})
}

// cancelCheckingConverter honors context cancellation the way a real HTTP or
// Redis backed converter does: once released, it fails if the caller's
// context has already been cancelled.
type cancelCheckingConverter struct {
	gate chan struct{}
	rate float64
}

func (c *cancelCheckingConverter) Convert(ctx context.Context, amount int64, from, to string) (checkout.ConvertedPrice, error) {
	<-c.gate
	if err := ctx.Err(); err != nil {
		return checkout.ConvertedPrice{}, err
	}
	return checkout.ConvertedPrice{
		Amount:   int64(math.Round(float64(amount) * c.rate)),
		Currency: to,
		Rate:     c.rate,
	}, nil
}

func TestConversionOutlivesCallerContext(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	converter := &cancelCheckingConverter{gate: make(chan struct{}), rate: 15000}
	cfg := checkout.Config{
		ReferenceCurrency: "USD",
		SuccessURL:        "https://app.test/billing/success",
		CancelURL:         "https://app.test/billing/plans",
	}
	orch := checkout.New(cfg, env.catalog, env.catalog, converter, env.validator, env.sessions)

	require.NoError(t, orch.Enter(context.Background(), "pro", checkout.CycleYearly))

	// Callers like HTTP handlers hand over request-scoped contexts that are
	// cancelled as soon as the call returns. The conversion started by the
	// selection must not die with them.
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, orch.SelectGateway(ctx, "midtrans"))
	cancel()
	close(converter.gate)

	waitConversion(t, orch, checkout.ConversionReady)
	state := orch.State()
	assert.Equal(t, int64(7_200_000), state.Converted.Amount)
	assert.Equal(t, "IDR", state.Converted.Currency)
}

func TestApplyDiscountAfterTerminalPhaseIsDropped(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.validator.gate = make(chan struct{})
	env.validator.result = checkout.DiscountResult{
		Valid:          true,
		Code:           "SAVE10",
		Type:           checkout.DiscountPercentage,
		Value:          10,
		DiscountAmount: 48,
		FinalAmount:    432,
	}
	env.sessions.result = checkout.SessionResult{
		Status:      checkout.SessionPending,
		CheckoutURL: "https://pay.test/cs_1",
	}

	require.NoError(t, env.orchestrator.Enter(context.Background(), "pro", checkout.CycleYearly))
	require.NoError(t, env.orchestrator.SetTermsAccepted(context.Background(), true))

	applied := make(chan error, 1)
	go func() {
		_, err := env.orchestrator.ApplyDiscount(context.Background(), "SAVE10")
		applied <- err
	}()
	require.Eventually(t, func() bool {
		return env.validator.callCount() == 1
	}, time.Second, 2*time.Millisecond)

	outcome, err := env.orchestrator.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, checkout.PhaseRedirecting, outcome.Phase)

	// The validation finishing now targets a session that already redirected.
	close(env.validator.gate)
	select {
	case err := <-applied:
		assert.ErrorIs(t, err, checkout.ErrNotReady)
	case <-time.After(time.Second):
		t.Fatal("discount application did not return")
	}

	state := env.orchestrator.State()
	assert.Equal(t, checkout.PhaseRedirecting, state.Phase)
	assert.False(t, state.Discount.Applied)
}
