package exchange

import (
	"context"
	"maps"
	"math"

	"github.com/muhammadiwa/youtube-automation-sub003/pkg/checkout"
)

// Pair identifies a directed currency pair.
type Pair struct {
	From string
	To   string
}

// Static converts using a fixed rate table. Unknown pairs fail with
// ErrRateUnavailable; there is no implicit inversion or triangulation.
type Static struct {
	rates map[Pair]float64
}

var _ checkout.Converter = (*Static)(nil)

// NewStatic creates a fixed-table converter from a copy of the given rates.
func NewStatic(rates map[Pair]float64) *Static {
	return &Static{rates: maps.Clone(rates)}
}

func (s *Static) Convert(ctx context.Context, amount int64, from, to string) (checkout.ConvertedPrice, error) {
	rate, ok := s.rates[Pair{From: from, To: to}]
	if !ok {
		return checkout.ConvertedPrice{}, ErrRateUnavailable
	}
	return checkout.ConvertedPrice{
		Amount:   int64(math.Round(float64(amount) * rate)),
		Currency: to,
		Rate:     rate,
	}, nil
}
