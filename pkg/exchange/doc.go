// Package exchange provides checkout.Converter implementations: a fixed-table
// converter for tests and seeded deployments, and a Redis-backed caching
// decorator that keeps recently fetched rates warm so flipping between
// gateways within a session does not hammer the rate source.
//
// The cache stores rates, not amounts, under a short TTL. Each conversion is
// still a point-in-time snapshot from the orchestrator's perspective; the TTL
// only bounds how stale that point in time can be.
package exchange
