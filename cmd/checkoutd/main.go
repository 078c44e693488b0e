// Command checkoutd serves the checkout session API. Plans and gateways come
// from a YAML catalog file, pricing collaborators from the platform billing
// API, discount codes from PostgreSQL, and payment sessions from Paddle.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	checkoutmod "github.com/muhammadiwa/youtube-automation-sub003/modules/checkout"
	"github.com/muhammadiwa/youtube-automation-sub003/pkg/billingapi"
	"github.com/muhammadiwa/youtube-automation-sub003/pkg/checkout"
	"github.com/muhammadiwa/youtube-automation-sub003/pkg/config"
	"github.com/muhammadiwa/youtube-automation-sub003/pkg/exchange"
	"github.com/muhammadiwa/youtube-automation-sub003/pkg/httpserver"
	"github.com/muhammadiwa/youtube-automation-sub003/pkg/logger"
	"github.com/muhammadiwa/youtube-automation-sub003/pkg/pg"
	"github.com/muhammadiwa/youtube-automation-sub003/pkg/promocode"
	"github.com/muhammadiwa/youtube-automation-sub003/pkg/redis"
)

type appConfig struct {
	CatalogPath    string `env:"CATALOG_PATH,required"`
	PaddlePriceIDs string `env:"PADDLE_PRICE_IDS,required"` // "plan:cycle=pri_xxx" pairs, comma separated
	CacheRates     bool   `env:"CACHE_EXCHANGE_RATES" envDefault:"true"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("checkoutd exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg      appConfig
		logCfg      logger.Config
		httpCfg     httpserver.Config
		checkoutCfg checkout.Config
		billingCfg  billingapi.Config
		paddleCfg   checkout.PaddleConfig
		pgCfg       pg.Config
		cacheCfg    exchange.CacheConfig
	)
	for _, err := range []error{
		config.Load(&appCfg),
		config.Load(&logCfg),
		config.Load(&httpCfg),
		config.Load(&checkoutCfg),
		config.Load(&billingCfg),
		config.Load(&paddleCfg),
		config.Load(&pgCfg),
		config.Load(&cacheCfg),
	} {
		if err != nil {
			return err
		}
	}

	log := logger.New(
		logger.WithConfig(logCfg),
		logger.WithAttr(slog.String("service", "checkoutd")),
	)
	logger.SetAsDefault(log)

	catalog := &checkout.FileCatalog{Path: appCfg.CatalogPath}

	billing, err := billingapi.New(billingCfg)
	if err != nil {
		return err
	}

	var converter checkout.Converter = billing
	if appCfg.CacheRates {
		redisCfg := redis.Config{}
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		redisClient, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		converter = exchange.NewCached(billing, redisClient, cacheCfg)
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	validator := promocode.NewValidator(promocode.NewPgStore(pool))

	priceIDs, err := parsePriceIDs(appCfg.PaddlePriceIDs)
	if err != nil {
		return err
	}
	payments, err := checkout.NewPaddleSessionCreator(paddleCfg, priceIDs)
	if err != nil {
		return err
	}

	svc := checkoutmod.NewService(checkoutCfg, catalog, catalog, converter, validator, payments,
		checkoutmod.WithLogger(log))

	r := chi.NewRouter()
	r.Mount("/checkout", checkoutmod.Router(svc))
	r.Get("/healthz", healthz(pg.Healthcheck(pool)))

	srv := httpserver.New(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

// parsePriceIDs turns "pro:yearly=pri_123,pro:monthly=pri_456" into the
// Paddle price map.
func parsePriceIDs(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for pair := range strings.SplitSeq(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, id, ok := strings.Cut(pair, "=")
		if !ok || key == "" || id == "" {
			return nil, fmt.Errorf("invalid paddle price mapping %q", pair)
		}
		out[key] = id
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no paddle price mappings configured")
	}
	return out, nil
}

func healthz(probes ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
