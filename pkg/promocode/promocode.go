package promocode

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/muhammadiwa/youtube-automation-sub003/pkg/checkout"
)

// Code is a promotional discount definition. The Code field is stored in
// canonical upper-case form; lookups normalize before matching.
type Code struct {
	Code           string
	Type           checkout.DiscountType
	Value          float64  // percentage 0-100, or a fixed reference-currency amount
	AppliesTo      []string // plan slugs; empty means all plans
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	MaxRedemptions int // 0 means unlimited
	Redemptions    int
	MinAmount      int64 // minimum base amount the code applies to
}

// Rejection messages shown inline to the buyer.
const (
	msgEmptyCode     = "Enter a discount code."
	msgUnknownCode   = "Unknown discount code."
	msgNotYetActive  = "This code is not active yet."
	msgExpired       = "This code has expired."
	msgNotApplicable = "This code does not apply to the selected plan."
	msgUsageLimit    = "This code has reached its usage limit."
	msgBelowMinimum  = "The order amount is too low for this code."
)

// Validator validates promo codes against a Store. It implements
// checkout.DiscountValidator.
type Validator struct {
	store Store
	now   func() time.Time
}

var _ checkout.DiscountValidator = (*Validator)(nil)

// NewValidator creates a validator. Panics on a nil store to fail fast.
func NewValidator(store Store, opts ...ValidatorOption) *Validator {
	if store == nil {
		panic("promocode: Store is required")
	}
	v := &Validator{store: store, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithClock overrides the time source for expiry checks. Intended for tests.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// Validate evaluates a code against a plan and a reference-currency base
// amount. Discount math always runs on the base amount: computing percentage
// discounts on a converted amount would compound rounding across two currency
// operations.
func (v *Validator) Validate(ctx context.Context, rawCode, planSlug string, baseAmount int64) (checkout.DiscountResult, error) {
	canonical := checkout.NormalizeCode(rawCode)
	if canonical == "" {
		return rejected(msgEmptyCode), nil
	}

	code, err := v.store.Get(ctx, canonical)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return rejected(msgUnknownCode), nil
		}
		return checkout.DiscountResult{}, errors.Join(ErrStoreFailure, err)
	}

	now := v.now().UTC()
	switch {
	case code.ValidFrom != nil && now.Before(*code.ValidFrom):
		return rejected(msgNotYetActive), nil
	case code.ValidUntil != nil && now.After(*code.ValidUntil):
		return rejected(msgExpired), nil
	case len(code.AppliesTo) > 0 && !slices.Contains(code.AppliesTo, planSlug):
		return rejected(msgNotApplicable), nil
	case code.MaxRedemptions > 0 && code.Redemptions >= code.MaxRedemptions:
		return rejected(msgUsageLimit), nil
	case code.MinAmount > 0 && baseAmount < code.MinAmount:
		return rejected(msgBelowMinimum), nil
	}

	amount := checkout.DiscountAmount(code.Type, baseAmount, code.Value)
	return checkout.DiscountResult{
		Valid:          true,
		Code:           code.Code,
		Type:           code.Type,
		Value:          code.Value,
		DiscountAmount: amount,
		FinalAmount:    checkout.FinalAmount(baseAmount, amount),
	}, nil
}

func rejected(message string) checkout.DiscountResult {
	return checkout.DiscountResult{Valid: false, Message: message}
}
