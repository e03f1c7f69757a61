package port

import "context"

type Tick struct {
	Ticker   string  // "BTCUSDT"
	PriceStr string  // raw string
	PriceNum float64 // parsed float64 (best-effort)
	Ts       int64   // unix ms
}

type PriceFeed interface {
	Name() string
	Subscribe(ctx context.Context, tickers []string) (<-chan Tick, error)
}
