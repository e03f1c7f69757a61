package port

import (
	"context"

	"mmaker/internal/domain/model"
)

// MarketDataSource 市场数据源边界：每 ticker 提供 OHLCV K线与 top-N 订单簿
// 抓取失败通过 MarketSnapshot.Status 上报，不抛异常
type MarketDataSource interface {
	FetchSnapshot(ctx context.Context, ticker string) model.MarketSnapshot
}

// SignalProvider 技术面/情绪信号提供方（核心只消费不计算）
type SignalProvider interface {
	Signals(ctx context.Context, ticker string) (model.SignalSet, error)
}

// ValuationProvider 估值提供方，value 与现价可比
type ValuationProvider interface {
	Value(ctx context.Context, ticker string, currentPrice float64) (float64, error)
}
