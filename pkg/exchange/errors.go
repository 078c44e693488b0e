package exchange

import "errors"

var ErrRateUnavailable = errors.New("exchange: no rate available for currency pair")
