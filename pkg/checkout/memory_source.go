package checkout

import (
	"context"
	"slices"
	"sync"
)

type inMemCatalog struct {
	mu       sync.RWMutex
	plans    []Plan
	gateways []Gateway
}

// NewInMemCatalog returns an in-memory PlanSource/GatewaySource pair backed by
// deep copies of the given data, so later mutations by the caller cannot leak
// into a running session. Intended for tests and single-binary deployments
// where the catalog is compiled in.
func NewInMemCatalog(plans []Plan, gateways []Gateway) interface {
	PlanSource
	GatewaySource
} {
	c := &inMemCatalog{
		plans:    make([]Plan, 0, len(plans)),
		gateways: make([]Gateway, 0, len(gateways)),
	}
	for _, p := range plans {
		p.Features = slices.Clone(p.Features)
		c.plans = append(c.plans, p)
	}
	for _, g := range gateways {
		g.SupportedCurrencies = slices.Clone(g.SupportedCurrencies)
		g.PaymentMethods = slices.Clone(g.PaymentMethods)
		c.gateways = append(c.gateways, g)
	}
	return c
}

func (c *inMemCatalog) ListPlans(ctx context.Context) ([]Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	plans := make([]Plan, len(c.plans))
	for i, p := range c.plans {
		p.Features = slices.Clone(p.Features)
		plans[i] = p
	}
	return plans, nil
}

// ListEnabledGateways filters out disabled gateways, preserving order.
func (c *inMemCatalog) ListEnabledGateways(ctx context.Context) ([]Gateway, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	gateways := make([]Gateway, 0, len(c.gateways))
	for _, g := range c.gateways {
		if !g.Enabled {
			continue
		}
		g.SupportedCurrencies = slices.Clone(g.SupportedCurrencies)
		g.PaymentMethods = slices.Clone(g.PaymentMethods)
		gateways = append(gateways, g)
	}
	return gateways, nil
}
