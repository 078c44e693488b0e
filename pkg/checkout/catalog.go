package checkout

import (
	"context"
	"errors"

	"github.com/muhammadiwa/youtube-automation-sub003/pkg/async"
)

// PlanSource lists the purchasable plans. Fetch-and-cache-for-session reads;
// no retries beyond what the transport provides.
type PlanSource interface {
	ListPlans(ctx context.Context) ([]Plan, error)
}

// GatewaySource lists the enabled payment gateways.
type GatewaySource interface {
	ListEnabledGateways(ctx context.Context) ([]Gateway, error)
}

// CatalogData is the session-scoped snapshot of plans and gateways loaded at
// checkout entry. Immutable for the session.
type CatalogData struct {
	Plans    []Plan
	Gateways []Gateway
}

// PlanBySlug looks up a plan by its slug.
func (d CatalogData) PlanBySlug(slug string) (Plan, bool) {
	for _, p := range d.Plans {
		if p.Slug == slug {
			return p, true
		}
	}
	return Plan{}, false
}

// LoadCatalog fetches plans and gateways in parallel. A failure of either
// fetch is fatal for the session: the view cannot render a purchasable order
// without both, so the error is surfaced rather than silently retried.
func LoadCatalog(ctx context.Context, plans PlanSource, gateways GatewaySource) (CatalogData, error) {
	plansFuture := async.Run(ctx, plans.ListPlans)
	gatewaysFuture := async.Run(ctx, gateways.ListEnabledGateways)

	planList, planErr := plansFuture.Await()
	gatewayList, gatewayErr := gatewaysFuture.Await()

	if err := errors.Join(planErr, gatewayErr); err != nil {
		return CatalogData{}, errors.Join(ErrCatalogUnavailable, err)
	}

	return CatalogData{Plans: planList, Gateways: gatewayList}, nil
}
