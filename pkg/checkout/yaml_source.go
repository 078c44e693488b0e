package checkout

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileCatalog loads plans and gateways from a YAML file. The file is read
// once per List call; the orchestrator caches the result for the session, so
// edits take effect on the next checkout entry without a restart.
//
// Expected layout:
//
//	plans:
//	  - slug: pro
//	    name: Pro
//	    price_monthly: 49
//	    price_yearly: 480
//	    features:
//	      - {name: "Unlimited channels", included: true}
//	gateways:
//	  - id: stripe
//	    name: Stripe
//	    is_default: true
//	    is_enabled: true
//	    supported_currencies: [USD, EUR]
type FileCatalog struct {
	Path string
}

type catalogFile struct {
	Plans    []Plan    `yaml:"plans"`
	Gateways []Gateway `yaml:"gateways"`
}

func (f FileCatalog) load() (catalogFile, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return catalogFile{}, errors.Join(ErrCatalogUnavailable, err)
	}

	var parsed catalogFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return catalogFile{}, errors.Join(ErrCatalogUnavailable, fmt.Errorf("parse %s: %w", f.Path, err))
	}
	return parsed, nil
}

func (f FileCatalog) ListPlans(ctx context.Context) ([]Plan, error) {
	parsed, err := f.load()
	if err != nil {
		return nil, err
	}
	return parsed.Plans, nil
}

func (f FileCatalog) ListEnabledGateways(ctx context.Context) ([]Gateway, error) {
	parsed, err := f.load()
	if err != nil {
		return nil, err
	}

	gateways := make([]Gateway, 0, len(parsed.Gateways))
	for _, g := range parsed.Gateways {
		if g.Enabled {
			gateways = append(gateways, g)
		}
	}
	return gateways, nil
}
