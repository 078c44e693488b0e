package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Config holds checkout orchestration settings.
type Config struct {
	ReferenceCurrency string `env:"CHECKOUT_REFERENCE_CURRENCY" envDefault:"USD"` // platform canonical currency plan prices are defined in
	SuccessURL        string `env:"CHECKOUT_SUCCESS_URL"`                         // internal success view; plan slug and cycle are appended
	CancelURL         string `env:"CHECKOUT_CANCEL_URL"`                          // plan selection view; plan slug and cycle are appended
}

// User-facing failure messages. Business failures show the provider's own
// message when it supplies one; configuration failures are not user-fixable
// and get the support framing instead of a retry prompt.
const (
	msgPaymentFailed    = "Payment could not be completed. Please try again."
	msgGatewayMisconfig = "The payment provider returned no usable next step. Please contact support."
	msgConversionFailed = "Could not fetch the current exchange rate. Pick another payment method or try again."
)

// phaseTransitions is the allowed phase graph. Failed is retryable: it can go
// back to Ready on any interaction and straight to Submitting on retry.
var phaseTransitions = map[Phase][]Phase{
	PhaseLoading:    {PhaseReady, PhaseLoadError},
	PhaseReady:      {PhaseSubmitting},
	PhaseFailed:     {PhaseReady, PhaseSubmitting},
	PhaseSubmitting: {PhaseRedirecting, PhaseSucceeded, PhaseFailed},
}

// Orchestrator owns the session-scoped CheckoutState aggregate and is the only
// writer to it. It is safe for concurrent use; conversion results arriving
// from superseded requests are discarded by generation-token comparison.
type Orchestrator struct {
	plans     PlanSource
	gateways  GatewaySource
	converter Converter
	validator DiscountValidator
	sessions  SessionCreator
	cfg       Config
	log       *slog.Logger
	newToken  func() uuid.UUID

	mu              sync.Mutex
	phase           Phase
	plan            Plan
	cycle           BillingCycle
	gatewayList     []Gateway
	gateway         Gateway
	gatewaySelected bool
	termsAccepted   bool
	discount        Discount
	conversion      ConversionStatus
	converted       ConvertedPrice
	conversionErr   string
	conversionToken uuid.UUID
	validating      bool
	loadErr         string
	failureMsg      string
	contactSupport  bool
}

// New creates a checkout orchestrator in the Loading phase.
// Panics if any collaborator is nil to fail fast during initialization.
func New(cfg Config, plans PlanSource, gateways GatewaySource, converter Converter, validator DiscountValidator, sessions SessionCreator, opts ...Option) *Orchestrator {
	if plans == nil {
		panic("checkout: PlanSource is required")
	}
	if gateways == nil {
		panic("checkout: GatewaySource is required")
	}
	if converter == nil {
		panic("checkout: Converter is required")
	}
	if validator == nil {
		panic("checkout: DiscountValidator is required")
	}
	if sessions == nil {
		panic("checkout: SessionCreator is required")
	}
	if cfg.ReferenceCurrency == "" {
		cfg.ReferenceCurrency = "USD"
	}

	o := &Orchestrator{
		plans:     plans,
		gateways:  gateways,
		converter: converter,
		validator: validator,
		sessions:  sessions,
		cfg:       cfg,
		log:       slog.New(slog.DiscardHandler),
		newToken:  uuid.New,
		phase:     PhaseLoading,
		cycle:     CycleMonthly,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Enter resolves the plan slug and loads the catalog, moving the session to
// Ready with the default gateway selected, or to the terminal LoadError phase.
// Plan and cycle are immutable afterwards; restarting the flow means creating
// a new orchestrator.
func (o *Orchestrator) Enter(ctx context.Context, planSlug string, cycle BillingCycle) error {
	o.mu.Lock()
	if o.phase != PhaseLoading {
		o.mu.Unlock()
		return ErrNotReady
	}
	o.mu.Unlock()

	data, err := LoadCatalog(ctx, o.plans, o.gateways)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		o.toLoadError(ctx, err.Error())
		return err
	}

	plan, ok := data.PlanBySlug(planSlug)
	if !ok {
		o.toLoadError(ctx, fmt.Sprintf("unknown plan %q", planSlug))
		return ErrPlanNotFound
	}

	gateway, ok := DefaultGateway(data.Gateways)
	if !ok {
		o.toLoadError(ctx, "no payment methods are available")
		return ErrNoGateways
	}

	o.plan = plan
	o.cycle = cycle
	o.gatewayList = data.Gateways
	o.gateway = gateway
	o.gatewaySelected = true
	o.setPhase(ctx, PhaseReady)
	o.refreshConversion(ctx)

	return nil
}

// SelectGateway switches the payment gateway and recomputes the conversion
// requirement. Re-selecting the current gateway is allowed and retries a
// failed conversion.
func (o *Orchestrator) SelectGateway(ctx context.Context, gatewayID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.interactive() {
		return ErrNotReady
	}

	var found bool
	for _, g := range o.gatewayList {
		if g.ID == gatewayID {
			o.gateway = g
			found = true
			break
		}
	}
	if !found {
		return ErrGatewayNotFound
	}

	o.gatewaySelected = true
	o.resumeFromFailure(ctx)
	o.refreshConversion(ctx)

	return nil
}

// ApplyDiscount validates a promo code against the plan's reference-currency
// base amount and applies it on acceptance. A rejected code leaves state
// unchanged and returns the rejection in the result, not as an error.
// Duplicate concurrent applications are refused with ErrValidationPending.
func (o *Orchestrator) ApplyDiscount(ctx context.Context, code string) (DiscountResult, error) {
	o.mu.Lock()
	if !o.interactive() {
		o.mu.Unlock()
		return DiscountResult{}, ErrNotReady
	}
	if o.validating {
		o.mu.Unlock()
		return DiscountResult{}, ErrValidationPending
	}
	o.validating = true
	plan, baseAmount := o.plan, o.plan.PriceFor(o.cycle)
	o.mu.Unlock()

	result, err := o.validator.Validate(ctx, code, plan.Slug, baseAmount)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.validating = false

	// The phase may have moved on while the lock was released; a submit
	// that already reached a terminal phase must not absorb a late result.
	if !o.interactive() {
		return DiscountResult{}, ErrNotReady
	}
	if err != nil {
		return DiscountResult{}, err
	}
	if !result.Valid {
		o.log.DebugContext(ctx, "discount code rejected",
			slog.String("plan", plan.Slug), slog.String("reason", result.Message))
		return result, nil
	}

	o.discount = Discount{
		Applied:     true,
		Code:        result.Code,
		Type:        result.Type,
		Value:       result.Value,
		Amount:      result.DiscountAmount,
		FinalAmount: result.FinalAmount,
	}
	o.resumeFromFailure(ctx)

	return result, nil
}

// RemoveDiscount resets pricing to the undiscounted base amount. It does not
// re-trigger currency conversion: the conversion result is gateway and cycle
// derived, independent of the discount.
func (o *Orchestrator) RemoveDiscount(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.interactive() {
		return ErrNotReady
	}

	o.discount = Discount{}
	o.resumeFromFailure(ctx)

	return nil
}

// SetTermsAccepted toggles the terms-acceptance flag.
func (o *Orchestrator) SetTermsAccepted(ctx context.Context, accepted bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.interactive() {
		return ErrNotReady
	}

	o.termsAccepted = accepted
	o.resumeFromFailure(ctx)

	return nil
}

// SubmitOutcome is the interpreted result of a submission attempt.
type SubmitOutcome struct {
	Phase       Phase
	RedirectURL string // external provider URL when Phase == PhaseRedirecting
	PaymentID   string // set when Phase == PhaseSucceeded
	Message     string // failure message when Phase == PhaseFailed
}

// Submit builds the payment-session request for the current quote and
// interprets the provider's response. Submission is single-shot per attempt:
// the session is locked into Submitting for the duration of the call, and
// only a Failed result re-enables it. Guard violations return
// ErrSubmitNotAllowed without issuing any request; every other failure is
// absorbed into the Failed phase.
func (o *Orchestrator) Submit(ctx context.Context) (SubmitOutcome, error) {
	o.mu.Lock()

	if !o.interactive() || !o.canSubmit() {
		o.mu.Unlock()
		return SubmitOutcome{}, ErrSubmitNotAllowed
	}

	charge, err := o.quote().Charge()
	if err != nil {
		o.mu.Unlock()
		return SubmitOutcome{}, ErrSubmitNotAllowed
	}

	req := o.buildSessionRequest(charge)
	o.setPhase(ctx, PhaseSubmitting)
	o.mu.Unlock()

	result, err := o.sessions.CreateSession(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case err != nil:
		o.fail(ctx, msgPaymentFailed, false)
		o.log.ErrorContext(ctx, "payment session request failed",
			slog.String("plan", o.plan.Slug), slog.Any("error", err))

	case result.Status == SessionFailed:
		msg := result.ErrorMessage
		if msg == "" {
			msg = msgPaymentFailed
		}
		o.fail(ctx, msg, false)

	case result.CheckoutURL != "":
		o.setPhase(ctx, PhaseRedirecting)
		return SubmitOutcome{Phase: PhaseRedirecting, RedirectURL: result.CheckoutURL}, nil

	case result.Status == SessionCompleted:
		o.setPhase(ctx, PhaseSucceeded)
		return SubmitOutcome{Phase: PhaseSucceeded, PaymentID: result.PaymentID}, nil

	default:
		// Not failed, not completed, no checkout URL: the gateway is
		// misconfigured on the provider side, not a user error.
		o.fail(ctx, msgGatewayMisconfig, true)
	}

	return SubmitOutcome{Phase: PhaseFailed, Message: o.failureMsg}, nil
}

// CanSubmit reports whether the submit guards currently pass.
func (o *Orchestrator) CanSubmit() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.interactive() && o.canSubmit()
}

// Quote returns the current priced view of the selection.
func (o *Orchestrator) Quote() Quote {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.quote()
}

// Phase returns the current lifecycle phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Snapshot is a consistent copy of the checkout state for rendering.
type Snapshot struct {
	Phase           Phase
	Plan            Plan
	Cycle           BillingCycle
	Gateways        []Gateway
	Gateway         Gateway
	GatewaySelected bool
	TermsAccepted   bool
	Discount        Discount
	Conversion      ConversionStatus
	Converted       ConvertedPrice
	ConversionError string
	Validating      bool
	CanSubmit       bool
	LoadError       string
	FailureMessage  string
	ContactSupport  bool
}

// State returns a snapshot of the aggregate.
func (o *Orchestrator) State() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	gateways := make([]Gateway, len(o.gatewayList))
	copy(gateways, o.gatewayList)

	return Snapshot{
		Phase:           o.phase,
		Plan:            o.plan,
		Cycle:           o.cycle,
		Gateways:        gateways,
		Gateway:         o.gateway,
		GatewaySelected: o.gatewaySelected,
		TermsAccepted:   o.termsAccepted,
		Discount:        o.discount,
		Conversion:      o.conversion,
		Converted:       o.converted,
		ConversionError: o.conversionErr,
		Validating:      o.validating,
		CanSubmit:       o.interactive() && o.canSubmit(),
		LoadError:       o.loadErr,
		FailureMessage:  o.failureMsg,
		ContactSupport:  o.contactSupport,
	}
}

// interactive reports whether user interactions are accepted. Failed is
// retryable, so it stays interactive; terminal and in-flight phases are not.
// Callers must hold o.mu.
func (o *Orchestrator) interactive() bool {
	return o.phase == PhaseReady || o.phase == PhaseFailed
}

// canSubmit evaluates the submit guards: gateway selected, terms accepted, no
// conversion in flight, and a usable charge currency. Callers must hold o.mu.
func (o *Orchestrator) canSubmit() bool {
	if !o.gatewaySelected || !o.termsAccepted {
		return false
	}
	return o.conversion == ConversionNotRequired || o.conversion == ConversionReady
}

func (o *Orchestrator) quote() Quote {
	return Quote{
		Base:       Money{Amount: o.plan.PriceFor(o.cycle), Currency: o.cfg.ReferenceCurrency},
		Discount:   o.discount,
		Conversion: o.conversion,
		Converted:  o.converted,
	}
}

// refreshConversion re-evaluates the conversion requirement for the current
// gateway and, when required, starts a superseding conversion request. Any
// in-flight request is invalidated by replacing the generation token before
// the new request starts. Callers must hold o.mu.
func (o *Orchestrator) refreshConversion(ctx context.Context) {
	target, required := ConversionTarget(o.gateway, o.cfg.ReferenceCurrency)
	if !required {
		o.conversion = ConversionNotRequired
		o.converted = ConvertedPrice{}
		o.conversionErr = ""
		o.conversionToken = uuid.Nil
		return
	}

	token := o.newToken()
	o.conversionToken = token
	o.conversion = ConversionPending
	o.converted = ConvertedPrice{}
	o.conversionErr = ""

	baseAmount := o.plan.PriceFor(o.cycle)
	from := o.cfg.ReferenceCurrency
	gatewayID := o.gateway.ID

	// The conversion must outlive the triggering call: HTTP handlers pass
	// request contexts that are cancelled as soon as the response is
	// written, which would abort the in-flight rate fetch. Cancellation is
	// handled by the supersede token instead.
	ctx = context.WithoutCancel(ctx)

	go func() {
		price, err := o.converter.Convert(ctx, baseAmount, from, target)

		o.mu.Lock()
		defer o.mu.Unlock()

		if o.conversionToken != token {
			o.log.DebugContext(ctx, "discarding superseded conversion result",
				slog.String("gateway", gatewayID), slog.String("currency", target))
			return
		}

		if err != nil {
			o.conversion = ConversionFailed
			o.converted = ConvertedPrice{}
			o.conversionErr = msgConversionFailed
			o.log.WarnContext(ctx, "currency conversion failed",
				slog.String("gateway", gatewayID),
				slog.String("currency", target),
				slog.Any("error", err))
			return
		}

		o.conversion = ConversionReady
		o.converted = price
	}()
}

func (o *Orchestrator) buildSessionRequest(charge Money) SessionRequest {
	description := fmt.Sprintf("%s plan, %s billing", o.plan.Name, o.cycle)
	if o.discount.Applied {
		description += fmt.Sprintf(" (promo %s)", o.discount.Code)
	}

	metadata := map[string]string{
		MetaPlan:              o.plan.Slug,
		MetaCycle:             string(o.cycle),
		MetaReferenceAmount:   strconv.FormatInt(o.quote().FinalReference(), 10),
		MetaReferenceCurrency: o.cfg.ReferenceCurrency,
	}
	if o.discount.Applied {
		metadata[MetaDiscountCode] = o.discount.Code
		metadata[MetaDiscountAmount] = strconv.FormatInt(o.discount.Amount, 10)
	}

	return SessionRequest{
		Amount:           charge.Amount,
		Currency:         charge.Currency,
		Description:      description,
		PreferredGateway: o.gateway.ID,
		SuccessURL:       redirectURL(o.cfg.SuccessURL, o.plan.Slug, o.cycle),
		CancelURL:        redirectURL(o.cfg.CancelURL, o.plan.Slug, o.cycle),
		Metadata:         metadata,
	}
}

// setPhase applies a phase change, panicking on a transition outside the
// allowed graph: that is a programming error, not a runtime condition.
// Callers must hold o.mu.
func (o *Orchestrator) setPhase(ctx context.Context, to Phase) {
	if o.phase == to {
		return
	}
	allowed := false
	for _, next := range phaseTransitions[o.phase] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		panic(fmt.Sprintf("checkout: invalid phase transition %s -> %s", o.phase, to))
	}

	o.log.InfoContext(ctx, "checkout phase changed",
		slog.String("from", string(o.phase)), slog.String("to", string(to)))
	o.phase = to
}

func (o *Orchestrator) toLoadError(ctx context.Context, reason string) {
	o.loadErr = reason
	o.setPhase(ctx, PhaseLoadError)
}

func (o *Orchestrator) fail(ctx context.Context, message string, support bool) {
	o.failureMsg = message
	o.contactSupport = support
	o.setPhase(ctx, PhaseFailed)
}

// resumeFromFailure clears a retryable failure when the user changes the
// selection. Callers must hold o.mu.
func (o *Orchestrator) resumeFromFailure(ctx context.Context) {
	if o.phase != PhaseFailed {
		return
	}
	o.failureMsg = ""
	o.contactSupport = false
	o.setPhase(ctx, PhaseReady)
}

// redirectURL round-trips the plan slug and cycle on a redirect target so the
// flow can be restarted or resolved from the query string alone.
func redirectURL(base string, plan string, cycle BillingCycle) string {
	if base == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("plan", plan)
	q.Set("cycle", string(cycle))
	u.RawQuery = q.Encode()
	return u.String()
}
