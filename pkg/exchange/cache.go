package exchange

import (
	"context"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/muhammadiwa/youtube-automation-sub003/pkg/checkout"
)

// CacheConfig holds rate cache settings.
type CacheConfig struct {
	TTL time.Duration `env:"EXCHANGE_CACHE_TTL" envDefault:"5m"`
}

// Cached decorates a Converter with a Redis rate cache. A cache hit recomputes
// the amount from the stored rate; a miss or any Redis failure falls through
// to the wrapped converter, so cache availability never blocks a conversion.
type Cached struct {
	next   checkout.Converter
	client *redis.Client
	ttl    time.Duration
}

var _ checkout.Converter = (*Cached)(nil)

// NewCached creates the caching decorator. Panics on nil dependencies.
func NewCached(next checkout.Converter, client *redis.Client, cfg CacheConfig) *Cached {
	if next == nil {
		panic("exchange: wrapped Converter is required")
	}
	if client == nil {
		panic("exchange: redis client is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cached{next: next, client: client, ttl: ttl}
}

func rateKey(from, to string) string {
	return "fx:" + from + ":" + to
}

func (c *Cached) Convert(ctx context.Context, amount int64, from, to string) (checkout.ConvertedPrice, error) {
	rate, err := c.client.Get(ctx, rateKey(from, to)).Float64()
	if err == nil && rate > 0 {
		return checkout.ConvertedPrice{
			Amount:   int64(math.Round(float64(amount) * rate)),
			Currency: to,
			Rate:     rate,
		}, nil
	}
	// redis.Nil is an expected miss; any other cache trouble is also not a
	// conversion failure, so either way go to the source.
	price, err := c.next.Convert(ctx, amount, from, to)
	if err != nil {
		return checkout.ConvertedPrice{}, err
	}

	// Best effort: a failed cache write only costs the next call a fetch.
	_ = c.client.Set(ctx, rateKey(from, to), price.Rate, c.ttl).Err()

	return price, nil
}
