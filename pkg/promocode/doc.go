// Package promocode is a server-side implementation of discount code
// validation: the authority the checkout flow consults through the
// checkout.DiscountValidator contract.
//
// Validation is stateless per call and always runs against the plan's
// reference-currency base amount. A code is re-validated on every apply, so a
// different base amount legitimately yields a different discount amount. The
// Validator never mutates redemption counts; counting happens at payment
// reconciliation, outside this package's scope.
//
// Rejections (unknown, expired, not applicable, over the usage ceiling, below
// the minimum amount) are returned as results with a human-readable message,
// not as errors; errors mean the store itself failed.
package promocode
